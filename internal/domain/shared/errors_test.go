package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError(t *testing.T) {
	t.Run("Error returns message", func(t *testing.T) {
		err := NewDomainError("SOME_CODE", "something happened")
		assert.Equal(t, "something happened", err.Error())
	})

	t.Run("matches sentinel by code through wrapping", func(t *testing.T) {
		err := fmt.Errorf("insert item: %w", NewDomainError("ALREADY_EXISTS", "menu item 7 already exists"))
		assert.True(t, errors.Is(err, ErrAlreadyExists))
		assert.False(t, errors.Is(err, ErrNotFound))
	})

	t.Run("As extracts the domain error", func(t *testing.T) {
		err := fmt.Errorf("wrap: %w", ErrInvalidInput)
		var domainErr *DomainError
		assert.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})
}
