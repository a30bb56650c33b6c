package domain

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ErrPasteNotFound, http.StatusNotFound},
		{"wrapped validation", errors.Wrap(ErrPasteTooLarge, "create"), http.StatusBadRequest},
		{"plain error", fmt.Errorf("boom"), http.StatusInternalServerError},
		{"rate limit", ErrRateLimitExceeded, http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestToRespHidesUnknownErrors(t *testing.T) {
	resp := ToResp(errors.New("disk on fire at /var/lib"))
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
	assert.Equal(t, "Server error", resp.Error.Msg)

	resp = ToResp(errors.Wrap(ErrContentRequired, "validate"))
	assert.Equal(t, "CONTENT_REQUIRED", resp.Error.Code)
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(ErrContentRequired))
	assert.True(t, IsValidation(errors.Wrap(ErrPasteTooLarge, "x")))
	assert.False(t, IsValidation(ErrPasteNotFound))
}

func TestNewCreateResp(t *testing.T) {
	resp := NewCreateResp("deadbeef")
	assert.Equal(t, "/deadbeef", resp.URL)
	assert.Equal(t, "deadbeef", resp.ID)
}
