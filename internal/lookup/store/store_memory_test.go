package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lookupbot/internal/lookup/trace"
)

func record(i int) Record {
	return Record{
		LookupID:   fmt.Sprintf("lookup-%d", i),
		Domain:     "avatar",
		Query:      fmt.Sprintf("q%d", i),
		LookedUpAt: time.Unix(int64(i), 0),
	}
}

func ids(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.LookupID
	}
	return out
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store returns nothing", func(t *testing.T) {
		got, err := NewMemory(3).Recent(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("newest first, bounded by limit", func(t *testing.T) {
		s := NewMemory(5)
		for i := 1; i <= 3; i++ {
			require.NoError(t, s.Save(ctx, record(i)))
		}

		got, err := s.Recent(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"lookup-3", "lookup-2"}, ids(got))

		got, err = s.Recent(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"lookup-3", "lookup-2", "lookup-1"}, ids(got))
	})

	t.Run("ring overwrites the oldest", func(t *testing.T) {
		s := NewMemory(3)
		for i := 1; i <= 5; i++ {
			require.NoError(t, s.Save(ctx, record(i)))
		}

		got, err := s.Recent(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"lookup-5", "lookup-4", "lookup-3"}, ids(got))
	})

	t.Run("concurrent saves are all kept", func(t *testing.T) {
		s := NewMemory(100)
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_ = s.Save(ctx, record(i))
			}(i)
		}
		wg.Wait()

		got, err := s.Recent(ctx, 100)
		require.NoError(t, err)
		assert.Len(t, got, 50)
	})
}

func TestFromReport(t *testing.T) {
	rec := trace.New("abc", "mlbb", "99", time.Unix(0, 0)).WithLimit(1)
	rec.Record(trace.Attempt{Step: "nickname", Category: "not_found"})
	rec.Record(trace.Attempt{Step: "uid", StatusCode: 200})
	rec.Resolved("uid", "99")

	at := time.Unix(100, 0)
	got, err := FromReport(rec.Report(), at)
	require.NoError(t, err)

	assert.Equal(t, "abc", got.LookupID)
	assert.True(t, got.Success)
	assert.Equal(t, "uid", got.ResolvedBy)
	assert.Equal(t, "99", got.SubjectID)
	assert.Equal(t, 2, got.Attempts, "dropped attempts still count")
	assert.Equal(t, at, got.LookedUpAt)

	var decoded trace.Report
	require.NoError(t, json.Unmarshal(got.Trace, &decoded))
	assert.Equal(t, 1, decoded.Dropped)
}
