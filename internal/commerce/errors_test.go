package commerce_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"storefront/internal/commerce"

	"github.com/stretchr/testify/assert"
)

func TestErrorDetail(t *testing.T) {
	err := fmt.Errorf("update failed: %w", commerce.NewResponseError(http.StatusBadRequest, "Invalid postal code"))
	assert.Equal(t, "Invalid postal code", commerce.ErrorDetail(err, "fallback"))

	noDetail := commerce.NewResponseError(http.StatusInternalServerError, "")
	assert.Equal(t, "fallback", commerce.ErrorDetail(noDetail, "fallback"))
	assert.Equal(t, "fallback", commerce.ErrorDetail(errors.New("boom"), "fallback"))
}

func TestResponseError_IsNotFound(t *testing.T) {
	err := fmt.Errorf("get basket: %w", commerce.NewResponseError(http.StatusNotFound, "Basket not found"))
	assert.True(t, errors.Is(err, commerce.ErrNotFound))
	assert.False(t, errors.Is(commerce.NewResponseError(http.StatusBadRequest, ""), commerce.ErrNotFound))
}
