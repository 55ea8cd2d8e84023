package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromPreservesClassification(t *testing.T) {
	// 已分类的错误不会被降级为 500
	err := fmt.Errorf("wrapped: %w", Timeout())
	appErr := From(err, "fallback")
	assert.Equal(t, http.StatusGatewayTimeout, appErr.Status)
	assert.Equal(t, "AI response timeout - please try again", appErr.Message)
}

func TestFromDefaultsUnclassified(t *testing.T) {
	appErr := From(errors.New("boom"), "Failed to process message")
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, "Failed to process message", appErr.Message)
}

func TestGenerationDefaults(t *testing.T) {
	appErr := Generation("", 0)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, "Failed to generate AI response", appErr.Message)

	appErr = Generation("quota exceeded", http.StatusTooManyRequests)
	assert.Equal(t, http.StatusTooManyRequests, appErr.Status)
	assert.Equal(t, "quota exceeded", appErr.Message)
}

func TestConfigurationMasksDetail(t *testing.T) {
	appErr := Configuration()
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, "Invalid API key configuration", appErr.Message)
}

func TestValidationStatus(t *testing.T) {
	appErr := Validation("Message cannot be empty")
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "Message cannot be empty", appErr.Error())
}
