package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodes(t *testing.T) {
	t.Run("wrapped error keeps its code through fmt wrapping", func(t *testing.T) {
		cause := errors.New("boom")
		err := fmt.Errorf("outer: %w", Wrap(cause, CodeNotFound, "subject not found"))

		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeBadRequest))
		assert.Equal(t, CodeNotFound, CodeOf(err))
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "subject not found: boom")
	})

	t.Run("plain error maps to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("x")))
	})
}
