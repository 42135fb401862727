package apperror_test

import (
	"errors"
	"fmt"
	"testing"

	"harvest/internal/apperror"

	"github.com/stretchr/testify/assert"
)

func TestKindsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("cancel order: %w", apperror.Conflictf("only pending orders can be cancelled"))

	assert.True(t, errors.Is(err, apperror.ErrConflict))
	assert.False(t, errors.Is(err, apperror.ErrNotFound))
	assert.Equal(t, "only pending orders can be cancelled", apperror.Message(err))
}

func TestExternalKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	err := apperror.External("payment provider unavailable", cause)

	assert.True(t, errors.Is(err, apperror.ErrExternalService))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "payment provider unavailable", apperror.Message(err))
	assert.Contains(t, err.Error(), "i/o timeout")
}

func TestMessageOfPlainError(t *testing.T) {
	assert.Equal(t, "boom", apperror.Message(errors.New("boom")))
}
