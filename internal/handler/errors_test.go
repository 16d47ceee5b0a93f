package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/hibikineko/airona-cult/internal/gacha"
	"github.com/hibikineko/airona-cult/internal/repository"
	"github.com/hibikineko/airona-cult/internal/service"
)

func statusFor(t *testing.T, err error) int {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/gacha/draw", nil)

	respondError(c, err)
	return w.Code
}

// TestRespondErrorStatusCodes pins the error-to-status contract. Draw gating
// failures (already drawn, not enough coins) are client errors, not
// conflicts.
func TestRespondErrorStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"already drawn", service.ErrAlreadyDrawn, http.StatusBadRequest},
		{"insufficient coins", repository.ErrInsufficientCoins, http.StatusBadRequest},
		{"invalid banner", service.ErrInvalidBanner, http.StatusBadRequest},
		{"nothing selected", gacha.ErrNothingSelected, http.StatusBadRequest},
		{"no full set", &gacha.NoFullSetError{CardID: 1, Quantity: 2, Required: 5}, http.StatusBadRequest},
		{"draw in progress", service.ErrDrawInProgress, http.StatusConflict},
		{"already applied", repository.ErrAlreadyApplied, http.StatusConflict},
		{"not guild member", service.ErrNotGuildMember, http.StatusForbidden},
		{"user not found", repository.ErrUserNotFound, http.StatusNotFound},
		{"card not owned", repository.ErrCardNotOwned, http.StatusNotFound},
		{"unmapped error", errors.New("database on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, statusFor(t, tt.err))
		})
	}
}
