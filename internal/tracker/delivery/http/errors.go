package http

import (
	"errors"
	"net/http"

	"golang-stock-tracker/internal/tracker/dto"
	"golang-stock-tracker/internal/tracker/repository"
	"golang-stock-tracker/internal/tracker/service"
	"golang-stock-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
)

// respondError maps service and storage errors to HTTP responses.
func respondError(c echo.Context, log *logger.Logger, err error) error {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Errors: vErr.Result.Errors})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidArgument):
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, repository.ErrStorageQuotaExceeded):
		return c.JSON(http.StatusInsufficientStorage, dto.ErrorResponse{Error: "Storage quota exceeded, clear old data to continue"})
	case errors.Is(err, repository.ErrStorageUnavailable):
		return c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "Storage unavailable"})
	default:
		log.Error("Unhandled request error", logger.ErrorField(err), logger.StringField("path", c.Path()))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
	}
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: message})
}
