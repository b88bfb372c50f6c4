package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/terapia/practice-api/internal/core/domain"
)

func runErrorHandler(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body map[string]any
	if jerr := json.Unmarshal(rec.Body.Bytes(), &body); jerr != nil {
		t.Fatalf("invalid json: %v", jerr)
	}
	return rec.Code, body
}

func TestErrorHandler_DomainKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrSessionNotFound, http.StatusNotFound, "SESSION_NOT_FOUND"},
		{domain.ErrForbiddenNoteAction, http.StatusForbidden, "FORBIDDEN_NOTE_ACTION"},
		{domain.ErrConsultantHasActiveTherapy, http.StatusConflict, "CONSULTANT_HAS_ACTIVE_THERAPY"},
		{domain.SlotNotAvailable("2025-01-07T10:00:00Z"), http.StatusBadRequest, "SLOT_NOT_AVAILABLE"},
		{domain.InvalidSessionStatus(domain.SessionCompleted), http.StatusUnprocessableEntity, "INVALID_SESSION_STATUS"},
		{domain.ErrValidation, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			status, body := runErrorHandler(t, tc.err)
			if status != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, status)
			}
			if body["success"] != false {
				t.Fatalf("expected success=false, got %v", body["success"])
			}
			e, _ := body["error"].(map[string]any)
			if e["code"] != tc.code {
				t.Fatalf("expected code %s, got %v", tc.code, e["code"])
			}
		})
	}
}

func TestErrorHandler_WrappedDomainErrorKeepsDetails(t *testing.T) {
	err := errors.Join(errors.New("context"), domain.SlotNotAvailable("2025-01-07T10:00:00Z"))
	status, body := runErrorHandler(t, err)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	e := body["error"].(map[string]any)
	details, _ := e["details"].(map[string]any)
	if details["slot"] != "2025-01-07T10:00:00Z" {
		t.Fatalf("expected slot in details, got %+v", e["details"])
	}
}

func TestErrorHandler_EchoHTTPError(t *testing.T) {
	status, body := runErrorHandler(t, echo.NewHTTPError(http.StatusMethodNotAllowed, "method not allowed"))
	if status != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", status)
	}
	if code := body["error"].(map[string]any)["code"]; code != "HTTP_405" {
		t.Fatalf("expected HTTP_405, got %v", code)
	}
}

func TestErrorHandler_UnknownErrorIsHidden(t *testing.T) {
	status, body := runErrorHandler(t, errors.New("pq: connection refused"))
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	e := body["error"].(map[string]any)
	if e["code"] != "INTERNAL_ERROR" || e["message"] != "internal server error" {
		t.Fatalf("unexpected error body: %+v", e)
	}
}
