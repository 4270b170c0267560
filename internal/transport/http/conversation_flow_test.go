package httptransport

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"lookupbot/internal/conversation"
	convmocks "lookupbot/internal/conversation/mocks"
	"lookupbot/internal/lookup/models"
	"lookupbot/internal/transport/http/mocks"
	"lookupbot/pkg/testutil"
)

// The menu flow runs against the real conversation service so the awaiting
// state survives across requests exactly as a chat client would see it.
func TestConversationFlow(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookuper := convmocks.NewMockLookuper(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	conversations, err := conversation.New(conversation.NewMemoryStore(), lookuper, conversation.WithLogger(logger))
	require.NoError(t, err)
	router := NewRouter(NewHandler(mocks.NewMockLookupService(ctrl), conversations, logger), logger, prometheus.NewRegistry())

	testutil.Given(t, "a chat that picked the avatar lookup", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/v1/conversations/chat-1/select",
			SelectRequest{Action: string(conversation.ActionRobloxLookup)}))
		testutil.AssertStatusOK(t, rr)
		body := testutil.DecodeJSON(t, rr)
		assert.Equal(t, "Send me a Roblox username or ID:", body["prompt"])

		testutil.When(t, "the next message arrives", func(t *testing.T) {
			lookuper.EXPECT().
				ResolveAndEnrich(gomock.Any(), models.DomainAvatar, "builderman").
				Return(&models.LookupResult{
					Domain:     models.DomainAvatar,
					Subject:    models.Subject{ID: "156", Name: "builderman"},
					LookedUpAt: time.Unix(0, 0).UTC(),
				}, sampleTrace(true), nil)

			rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/v1/conversations/chat-1/reply",
				ReplyRequest{Text: "builderman"}))

			testutil.Then(t, "it is looked up in the chosen domain", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
				body := testutil.DecodeJSON(t, rr)
				assert.Equal(t, "avatar", body["domain"])
				assert.Contains(t, body, "trace")
			})

			testutil.Then(t, "the prompt is consumed", func(t *testing.T) {
				rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/conversations/chat-1"))
				testutil.AssertStatusOK(t, rr)
				assert.Equal(t, string(conversation.StateNone), testutil.DecodeJSON(t, rr)["state"])

				rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/v1/conversations/chat-1/reply",
					ReplyRequest{Text: "builderman"}))
				testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
			})
		})
	})

	testutil.Given(t, "a chat that cancels its pending prompt", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/v1/conversations/chat-2/select",
			SelectRequest{Action: string(conversation.ActionMLBBLookup)}))
		testutil.AssertStatusOK(t, rr)

		testutil.When(t, "cancel is sent twice", func(t *testing.T) {
			for range 2 {
				rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodDelete, "/v1/conversations/chat-2"))
				testutil.AssertStatus(t, rr, http.StatusNoContent)
			}

			testutil.Then(t, "no lookup is pending", func(t *testing.T) {
				rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/conversations/chat-2"))
				assert.Equal(t, string(conversation.StateNone), testutil.DecodeJSON(t, rr)["state"])
			})
		})
	})
}
