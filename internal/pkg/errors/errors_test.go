package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_WithDetailsDoesNotMutate(t *testing.T) {
	detailed := ErrInvalidQuery.WithDetails(map[string]interface{}{"latitude": "required"})

	assert.Equal(t, "required", detailed.Details["latitude"])
	assert.Nil(t, ErrInvalidQuery.Details)
	assert.Equal(t, http.StatusBadRequest, detailed.StatusCode)
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("validate query: %w", ErrInvalidQuery)

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "REQUEST_QUERY_INVALID", appErr.Code)

	_, ok = As(fmt.Errorf("plain"))
	assert.False(t, ok)
}
