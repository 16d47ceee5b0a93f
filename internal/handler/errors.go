// Package handler holds the gin HTTP handlers for the public API.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hibikineko/airona-cult/internal/gacha"
	"github.com/hibikineko/airona-cult/internal/repository"
	"github.com/hibikineko/airona-cult/internal/server"
	"github.com/hibikineko/airona-cult/internal/service"
)

// respondError maps service and repository errors onto HTTP statuses.
// Unrecognized errors are logged and returned as opaque 500s.
func respondError(c *gin.Context, err error) {
	var noSet *gacha.NoFullSetError

	switch {
	case errors.Is(err, service.ErrAlreadyDrawn):
		server.Fail(c, http.StatusBadRequest, "daily draw already used")
	case errors.Is(err, repository.ErrInsufficientCoins):
		server.Fail(c, http.StatusBadRequest, "not enough coins")
	case errors.Is(err, service.ErrDrawInProgress):
		server.Fail(c, http.StatusConflict, "a draw is already in progress")
	case errors.Is(err, service.ErrNotGuildMember):
		server.Fail(c, http.StatusForbidden, "discord guild membership required")
	case errors.As(err, &noSet):
		server.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidBanner),
		errors.Is(err, service.ErrDisplayNameRequired),
		errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrImageURLRequired),
		errors.Is(err, service.ErrVoterRequired),
		errors.Is(err, service.ErrSelfMatch),
		errors.Is(err, service.ErrUnknownEntry),
		errors.Is(err, service.ErrBadPlacement),
		errors.Is(err, service.ErrZeroAmount),
		errors.Is(err, gacha.ErrNothingSelected),
		errors.Is(err, gacha.ErrUnknownRarity):
		server.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrAlreadyApplied):
		server.Fail(c, http.StatusConflict, "membership application already exists")
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrCardNotFound),
		errors.Is(err, repository.ErrCardNotOwned),
		errors.Is(err, repository.ErrMemberNotFound),
		errors.Is(err, repository.ErrImageNotFound),
		errors.Is(err, repository.ErrSubmissionNotFound):
		server.Fail(c, http.StatusNotFound, err.Error())
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		server.Fail(c, http.StatusInternalServerError, "internal server error")
	}
}
