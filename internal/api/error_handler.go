package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/terapia/practice-api/internal/core/domain"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors to the HTTP status of their kind.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders {"success": false, "error": {"code", "message", "details"}}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, errorResponse{Success: false, Error: body})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorBody) {
	var de *domain.Error
	if errors.As(err, &de) {
		return statusForKind(de.Kind), errorBody{Code: de.Code, Message: de.Message, Details: de.Details}
	}

	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorBody{
			Code:    fmt.Sprintf("HTTP_%d", he.Code),
			Message: fmt.Sprintf("%v", he.Message),
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorBody{Code: "INTERNAL_ERROR", Message: "internal server error"}
}

func statusForKind(k domain.ErrorKind) int {
	switch k {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindBadRequest:
		return http.StatusBadRequest
	case domain.KindUnprocessable, domain.KindValidation:
		return http.StatusUnprocessableEntity
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
