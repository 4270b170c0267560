package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"lookupbot/internal/lookup/models"
	"lookupbot/internal/platform/config"
	"lookupbot/internal/platform/httpserver"
	"lookupbot/internal/platform/logger"
	httptransport "lookupbot/internal/transport/http"
	dErrors "lookupbot/pkg/domain-errors"
	"lookupbot/pkg/platform/httputil"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

// errLookupFailed makes the process exit non-zero after the trace has
// already been printed.
var errLookupFailed = errors.New("lookup failed")

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lookupbot",
		Short:         "Look up avatar-platform users and mobile-game players",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newServeCmd(), newLookupCmd(), newDebugCmd())
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve lookups, traces and conversations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			log := logger.New(cfg.Log.Level, cfg.Log.Format)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	a, err := buildApp(ctx, cfg, log)
	if err != nil {
		log.Error("failed to start", "error", err)
		return err
	}
	defer a.close()

	if a.sweeper != nil {
		go func() { _ = a.sweeper.StartCleanup(ctx, sweepInterval) }()
	}

	handler := httptransport.NewHandler(a.lookups, a.conversations, log)
	srv := httpserver.New(cfg.Server.Addr, httptransport.NewRouter(handler, log, a.registry))

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting lookupbot", "addr", cfg.Server.Addr, "domains", a.lookups.Domains())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server error", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func newLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <avatar|mlbb> <query>",
		Short: "Resolve and enrich a query, printing the result as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app, domain models.Domain) error {
				result, rec, err := a.lookups.ResolveAndEnrich(ctx, domain, args[1])
				out := cmd.OutOrStdout()
				if err != nil {
					if rec == nil {
						return err
					}
					_ = printJSON(out, map[string]any{"error": dErrors.CodeOf(err), "error_description": httputil.Describe(err), "trace": rec})
					return errLookupFailed
				}
				return printJSON(out, map[string]any{"result": result, "trace": rec})
			}, args[0])
		},
	}
}

func newDebugCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "debug <avatar|mlbb> <query>",
		Short: "Run a lookup bypassing the cache and print its trace",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app, domain models.Domain) error {
				rec, err := a.lookups.Debug(ctx, domain, args[1])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), rec)
			}, args[0])
		},
	}
}

// withApp runs fn with a fully wired app. Logs go to stderr so stdout stays
// machine readable.
func withApp(cmd *cobra.Command, fn func(context.Context, *app, models.Domain) error, rawDomain string) error {
	domain, err := models.ParseDomain(rawDomain)
	if err != nil {
		return err
	}
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := buildApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(ctx, a, domain)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
