package httptransport

import (
	"context"
	"log/slog"

	"lookupbot/internal/conversation"
	"lookupbot/internal/lookup/models"
	"lookupbot/internal/lookup/store"
	"lookupbot/internal/lookup/trace"
)

// LookupService is implemented by *service.Service.
type LookupService interface {
	ResolveAndEnrich(ctx context.Context, domain models.Domain, query string) (*models.LookupResult, *trace.Trace, error)
	Debug(ctx context.Context, domain models.Domain, query string) (*trace.Trace, error)
	History(ctx context.Context, limit int) ([]store.Record, error)
}

// ConversationService is implemented by *conversation.Service.
type ConversationService interface {
	Select(ctx context.Context, id string, action conversation.Action) (*conversation.SelectResult, error)
	Reply(ctx context.Context, id, text string) (*conversation.ReplyResult, error)
	Cancel(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (conversation.Conversation, error)
}

type Handler struct {
	lookups       LookupService
	conversations ConversationService
	logger        *slog.Logger
}

func NewHandler(lookups LookupService, conversations ConversationService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		lookups:       lookups,
		conversations: conversations,
		logger:        logger,
	}
}
