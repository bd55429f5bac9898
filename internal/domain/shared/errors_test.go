package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	custom := ErrInvalidInput.WithMessage("field x is bad")
	assert.ErrorIs(t, custom, ErrInvalidInput)
	assert.NotErrorIs(t, custom, ErrNotFound)

	wrapped := fmt.Errorf("handler: %w", custom)
	assert.ErrorIs(t, wrapped, ErrInvalidInput)

	var de *DomainError
	assert.True(t, errors.As(wrapped, &de))
	assert.Equal(t, "INVALID_INPUT", de.Code)
}

func TestDomainError_Wrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrStoreUnavailable.Wrap(cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, "Analytics store unavailable: connection refused", err.Error())
	assert.Nil(t, ErrStoreUnavailable.Err, "sentinel must stay untouched")
}
