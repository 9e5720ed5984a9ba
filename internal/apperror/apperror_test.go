package apperror

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("phone", "required"), KindValidation},
		{"wrapped not found", fmt.Errorf("lookup: %w", NotFound("bike", "abc")), KindNotFound},
		{"transition", InvalidTransition("completed", "active"), KindInvalidTransition},
		{"foreign error", errors.New("boom"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestOverlapCarriesWindow(t *testing.T) {
	start := time.Date(2025, 1, 10, 14, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	err := fmt.Errorf("create: %w", Overlap(start, end))

	require.True(t, Is(err, KindConflict))
	e, ok := As(err)
	require.True(t, ok)
	require.NotNil(t, e.Window)
	assert.Equal(t, start, e.Window.Start)
	assert.Equal(t, end, e.Window.End)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "validation: phone: required", Validation("phone", "required").Error())

	cause := errors.New("connection reset")
	err := Persistence("insert booking", cause)
	assert.Contains(t, err.Error(), "insert booking failed")
	assert.ErrorIs(t, err, cause)
}
