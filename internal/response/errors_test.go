package response

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	err := NewNotFoundError("Task not found", "")
	wrapped := fmt.Errorf("move task: %w", err)

	assert.True(t, HasCode(err, ErrCodeNotFound))
	assert.True(t, HasCode(wrapped, ErrCodeNotFound))
	assert.False(t, HasCode(wrapped, ErrCodeInvalidInput))
	assert.False(t, HasCode(errors.New("plain"), ErrCodeNotFound))
	assert.False(t, HasCode(nil, ErrCodeNotFound))
}

func TestServiceUnavailableError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewServiceUnavailableError("AI service unavailable", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "connection refused", err.Details)
	assert.Contains(t, err.Error(), ErrCodeServiceUnavailable)
}
