package conversation

import (
	"context"
	"time"
)

// Store persists conversation state with expiry. Get returns
// sentinel.ErrNotFound for unknown or expired conversations.
type Store interface {
	Get(ctx context.Context, id string) (Conversation, error)
	Save(ctx context.Context, c Conversation, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
