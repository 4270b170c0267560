package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"lookupbot/internal/lookup/trace"
	"lookupbot/internal/platform/httpclient"
)

// Getter is the outbound HTTP capability the lookup core depends on.
// *httpclient.Client implements it.
type Getter interface {
	Get(ctx context.Context, rawURL string, timeout time.Duration) (*httpclient.Response, error)
}

// Call describes one recorded GET.
type Call struct {
	Step     string
	Endpoint string
	Timeout  time.Duration
	Note     string
}

// FetchJSON performs call, decodes a 200 body into dst (numbers as
// json.Number) and runs validate against it. It records exactly one attempt
// in rec whatever the outcome and never panics on upstream data.
func FetchJSON(ctx context.Context, g Getter, rec *trace.Trace, call Call, dst any, validate func() error) error {
	start := time.Now()
	attempt := trace.Attempt{Step: call.Step, Endpoint: call.Endpoint, Note: call.Note}
	err := fetch(ctx, g, call, dst, validate, &attempt)
	attempt.DurationMS = time.Since(start).Milliseconds()
	if err != nil {
		attempt.Category = string(GetCategory(err))
		attempt.Error = describe(err)
	}
	rec.Record(attempt)
	return err
}

func fetch(ctx context.Context, g Getter, call Call, dst any, validate func() error, attempt *trace.Attempt) error {
	resp, err := g.Get(ctx, call.Endpoint, call.Timeout)
	if err != nil {
		if isTimeout(ctx, err) {
			return NewProviderError(ErrorTimeout, call.Step, "request timed out", err)
		}
		return NewProviderError(ErrorTransport, call.Step, "request failed", err)
	}
	attempt.StatusCode = resp.StatusCode

	if err := CheckStatus(call.Step, resp.StatusCode); err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(resp.Body))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return NewProviderError(ErrorBadData, call.Step, "decode response", err)
	}

	if validate == nil {
		return nil
	}
	if err := validate(); err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) {
			return err
		}
		return NewProviderError(ErrorBadData, call.Step, err.Error(), nil)
	}
	return nil
}

// CheckStatus maps a non-200 status to its category.
func CheckStatus(step string, status int) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusNotFound:
		return NotFound(step, "upstream returned 404")
	case status == http.StatusTooManyRequests:
		return NewProviderError(ErrorRateLimited, step, "upstream rate limited", nil)
	case status >= 500:
		return NewProviderError(ErrorProviderOutage, step, fmt.Sprintf("upstream returned %d", status), nil)
	default:
		return NewProviderError(ErrorBadStatus, step, fmt.Sprintf("unexpected status %d", status), nil)
	}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// describe keeps the trace readable: the message plus the root cause.
func describe(err error) string {
	var pe *ProviderError
	if errors.As(err, &pe) {
		if pe.Underlying != nil {
			return pe.Message + ": " + pe.Underlying.Error()
		}
		return pe.Message
	}
	return err.Error()
}
