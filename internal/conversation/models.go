// Package conversation tracks, per chat, whether the bot is waiting for a
// lookup query. The state is explicit and expires, so a reply that arrives
// long after the prompt is not mistaken for a query.
package conversation

import (
	"errors"
	"time"

	"lookupbot/internal/lookup/models"
)

// State is the finite set of conversation states.
type State string

const (
	StateNone           State = "none"
	StateAwaitingAvatar State = "awaiting_avatar_query"
	StateAwaitingMLBB   State = "awaiting_mlbb_query"
)

// Action is a menu choice.
type Action string

const (
	ActionAvatarLookup Action = "avatar_lookup"
	ActionRobloxLookup Action = "roblox_lookup"
	ActionMLBBLookup   Action = "mlbb_lookup"
)

// DefaultTTL bounds how long a prompt waits for its reply.
const DefaultTTL = 10 * time.Minute

var (
	// ErrNotAwaiting is returned by Reply when no prompt is pending.
	ErrNotAwaiting = errors.New("conversation is not awaiting a query")
	// ErrUnknownAction is returned by Select for unrecognized menu choices.
	ErrUnknownAction = errors.New("unknown action")
)

// Conversation is the stored state of one chat.
type Conversation struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Awaiting reports the domain a pending prompt asked for.
func (c Conversation) Awaiting() (models.Domain, bool) {
	switch c.State {
	case StateAwaitingAvatar:
		return models.DomainAvatar, true
	case StateAwaitingMLBB:
		return models.DomainMLBB, true
	default:
		return "", false
	}
}

// stateFor maps a menu action to the state it starts.
func stateFor(a Action) (State, bool) {
	switch a {
	case ActionAvatarLookup, ActionRobloxLookup:
		return StateAwaitingAvatar, true
	case ActionMLBBLookup:
		return StateAwaitingMLBB, true
	default:
		return StateNone, false
	}
}

// Prompt is the message shown after a menu choice.
func Prompt(s State) string {
	switch s {
	case StateAwaitingAvatar:
		return "Send me a Roblox username or ID:"
	case StateAwaitingMLBB:
		return "Send me an MLBB username or ID:"
	default:
		return ""
	}
}
