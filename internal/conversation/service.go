package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"lookupbot/internal/lookup/models"
	"lookupbot/internal/lookup/trace"
	dErrors "lookupbot/pkg/domain-errors"
	"lookupbot/pkg/platform/sentinel"
)

// Lookuper runs a lookup. *service.Service implements it.
type Lookuper interface {
	ResolveAndEnrich(ctx context.Context, domain models.Domain, query string) (*models.LookupResult, *trace.Trace, error)
}

// SelectResult is returned after a menu choice.
type SelectResult struct {
	Conversation Conversation `json:"conversation"`
	Prompt       string       `json:"prompt"`
}

// ReplyResult carries the lookup a reply triggered. Trace is set whenever
// the lookup ran, including when it found nothing.
type ReplyResult struct {
	Domain models.Domain        `json:"domain"`
	Result *models.LookupResult `json:"result,omitempty"`
	Trace  *trace.Trace         `json:"trace,omitempty"`
}

type Service struct {
	store   Store
	lookups Lookuper
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

type Option func(*Service)

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(store Store, lookups Lookuper, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("conversation store is required")
	}
	if lookups == nil {
		return nil, fmt.Errorf("lookup service is required")
	}
	svc := &Service{
		store:   store,
		lookups: lookups,
		ttl:     DefaultTTL,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Select starts waiting for a query in the domain the action names.
// Selecting again replaces any pending prompt.
func (s *Service) Select(ctx context.Context, id string, action Action) (*SelectResult, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	state, ok := stateFor(action)
	if !ok {
		return nil, dErrors.Wrap(fmt.Errorf("%w: %q", ErrUnknownAction, action), dErrors.CodeBadRequest, "unknown action")
	}

	conv := Conversation{ID: id, State: state, UpdatedAt: s.now().UTC()}
	if err := s.store.Save(ctx, conv, s.ttl); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save conversation")
	}
	s.logger.DebugContext(ctx, "conversation awaiting query", "conversation_id", id, "state", state)
	return &SelectResult{Conversation: conv, Prompt: Prompt(state)}, nil
}

// Reply consumes the pending prompt and runs the lookup with text as the
// query. The prompt is cleared before the lookup runs, so a failed lookup
// needs a fresh Select.
func (s *Service) Reply(ctx context.Context, id, text string) (*ReplyResult, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	conv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	domain, ok := conv.Awaiting()
	if !ok {
		return nil, dErrors.Wrap(ErrNotAwaiting, dErrors.CodeConflict, "no lookup is pending for this conversation")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear conversation")
	}

	result, rec, err := s.lookups.ResolveAndEnrich(ctx, domain, text)
	return &ReplyResult{Domain: domain, Result: result, Trace: rec}, err
}

// Cancel drops any pending prompt. Cancelling an idle conversation is not
// an error.
func (s *Service) Cancel(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to cancel conversation")
	}
	return nil
}

// Get returns the current state; unknown or expired conversations are
// reported as StateNone.
func (s *Service) Get(ctx context.Context, id string) (Conversation, error) {
	conv, err := s.store.Get(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Conversation{ID: id, State: StateNone}, nil
	}
	if err != nil {
		return Conversation{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load conversation")
	}
	return conv, nil
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "conversation id is required")
	}
	return nil
}
