package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain error", err: stderrors.New("boom"), want: ErrCodeInternal},
		{name: "app error", err: New(ErrCodePaused, "paused"), want: ErrCodePaused},
		{name: "wrapped app error", err: fmt.Errorf("call: %w", New(ErrCodeNotAdmin, "nope")), want: ErrCodeNotAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestHasCode(t *testing.T) {
	err := NewGiveawayNotFoundError(7)
	assert.True(t, HasCode(err, ErrCodeGiveawayNotFound))
	assert.False(t, HasCode(err, ErrCodeNotFound))
	assert.False(t, HasCode(nil, ErrCodeInternal))
	assert.True(t, err.IsNotFound())
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := NewStorageError("apply", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, ErrCodeStorage, err.Code)
	assert.True(t, err.IsInternal())
	assert.Contains(t, err.Error(), "disk full")
}
