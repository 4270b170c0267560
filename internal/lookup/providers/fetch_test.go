package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lookupbot/internal/lookup/trace"
	"lookupbot/internal/platform/httpclient"
)

type stubGetter struct {
	resp *httpclient.Response
	err  error
	url  string
}

func (s *stubGetter) Get(ctx context.Context, rawURL string, timeout time.Duration) (*httpclient.Response, error) {
	s.url = rawURL
	return s.resp, s.err
}

func ok(body string) *stubGetter {
	return &stubGetter{resp: &httpclient.Response{StatusCode: http.StatusOK, Body: []byte(body)}}
}

func newTrace() *trace.Trace {
	return trace.New("t", "avatar", "q", time.Now())
}

func TestFetchJSON(t *testing.T) {
	ctx := context.Background()
	call := Call{Step: "direct_id", Endpoint: "https://users.test/v1/users/1", Timeout: time.Second}

	t.Run("decodes a 200 body and records one clean attempt", func(t *testing.T) {
		rec := newTrace()
		var dst map[string]any
		err := FetchJSON(ctx, ok(`{"id": 12345, "name": "Foo"}`), rec, call, &dst, nil)
		require.NoError(t, err)

		assert.Equal(t, json.Number("12345"), dst["id"])
		r := rec.Report()
		require.Len(t, r.Attempts, 1)
		assert.Equal(t, 200, r.Attempts[0].StatusCode)
		assert.Equal(t, call.Endpoint, r.Attempts[0].Endpoint)
		assert.Empty(t, r.Attempts[0].Category)
	})

	t.Run("non-200 statuses map to categories", func(t *testing.T) {
		cases := map[int]ErrorCategory{
			404: ErrorNotFound,
			429: ErrorRateLimited,
			500: ErrorProviderOutage,
			503: ErrorProviderOutage,
			400: ErrorBadStatus,
		}
		for status, want := range cases {
			rec := newTrace()
			g := &stubGetter{resp: &httpclient.Response{StatusCode: status}}
			var dst map[string]any
			err := FetchJSON(ctx, g, rec, call, &dst, nil)
			require.Error(t, err)
			assert.Equal(t, want, GetCategory(err), "status %d", status)

			a := rec.Report().Attempts[0]
			assert.Equal(t, status, a.StatusCode)
			assert.Equal(t, string(want), a.Category)
		}
	})

	t.Run("transport errors are recorded not raised", func(t *testing.T) {
		rec := newTrace()
		g := &stubGetter{err: errors.New("connection refused")}
		var dst map[string]any
		err := FetchJSON(ctx, g, rec, call, &dst, nil)
		require.Error(t, err)
		assert.Equal(t, ErrorTransport, GetCategory(err))
		assert.True(t, IsRetryable(err))

		a := rec.Report().Attempts[0]
		assert.Zero(t, a.StatusCode)
		assert.Contains(t, a.Error, "connection refused")
	})

	t.Run("deadline errors are timeouts", func(t *testing.T) {
		rec := newTrace()
		g := &stubGetter{err: context.DeadlineExceeded}
		var dst map[string]any
		err := FetchJSON(ctx, g, rec, call, &dst, nil)
		assert.Equal(t, ErrorTimeout, GetCategory(err))
	})

	t.Run("malformed body is bad data", func(t *testing.T) {
		rec := newTrace()
		var dst map[string]any
		err := FetchJSON(ctx, ok(`{not json`), rec, call, &dst, nil)
		assert.Equal(t, ErrorBadData, GetCategory(err))
		assert.Equal(t, 200, rec.Report().Attempts[0].StatusCode)
	})

	t.Run("validation failures keep their category", func(t *testing.T) {
		rec := newTrace()
		var dst map[string]any
		err := FetchJSON(ctx, ok(`{"data": []}`), rec, call, &dst, func() error {
			return NotFound("search", "no results")
		})
		assert.Equal(t, ErrorNotFound, GetCategory(err))
		assert.Equal(t, "no results", rec.Report().Attempts[0].Error)
	})

	t.Run("plain validation errors become bad data", func(t *testing.T) {
		rec := newTrace()
		var dst map[string]any
		err := FetchJSON(ctx, ok(`{}`), rec, call, &dst, func() error {
			return errors.New("missing id")
		})
		assert.Equal(t, ErrorBadData, GetCategory(err))
		assert.Equal(t, "missing id", rec.Report().Attempts[0].Error)
	})
}

func TestProviderError(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := NewProviderError(ErrorTransport, "friends", "request failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "friends [transport]: request failed")
	assert.True(t, err.Retryable)

	assert.False(t, IsRetryable(NotFound("search", "no results")))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.Equal(t, ErrorInternal, GetCategory(errors.New("plain")))
}
