package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
)

// ---- Stubs ----

type stubPropositionService struct {
	selectFn func(ctx context.Context, actor domain.Actor, therapyID, propositionID string, slot time.Time) (*ports.SelectionResult, error)
}

func (s *stubPropositionService) Create(ctx context.Context, actor domain.Actor, therapyID string, in ports.CreatePropositionInput) (*domain.ScheduleProposition, error) {
	return &domain.ScheduleProposition{TherapyID: therapyID, ProposedSlots: in.ProposedSlots}, nil
}

func (s *stubPropositionService) List(ctx context.Context, actor domain.Actor, therapyID string) ([]domain.ScheduleProposition, error) {
	return nil, nil
}

func (s *stubPropositionService) SelectSlot(ctx context.Context, actor domain.Actor, therapyID, propositionID string, slot time.Time) (*ports.SelectionResult, error) {
	return s.selectFn(ctx, actor, therapyID, propositionID, slot)
}

type stubSessionRequestService struct {
	respondFn func(ctx context.Context, actor domain.Actor, therapyID, requestID string, accept bool) (*ports.SelectionResult, error)
}

func (s *stubSessionRequestService) Create(ctx context.Context, actor domain.Actor, therapyID string, in ports.CreateSessionRequestInput) (*domain.SessionRequest, error) {
	return &domain.SessionRequest{TherapyID: therapyID}, nil
}

func (s *stubSessionRequestService) List(ctx context.Context, actor domain.Actor, therapyID string) ([]domain.SessionRequest, error) {
	return nil, nil
}

func (s *stubSessionRequestService) Respond(ctx context.Context, actor domain.Actor, therapyID, requestID string, accept bool) (*ports.SelectionResult, error) {
	return s.respondFn(ctx, actor, therapyID, requestID, accept)
}

type stubSessionService struct {
	ports.SessionService
	listFn func(ctx context.Context, actor domain.Actor, in ports.ListSessionsInput) (*domain.Page[domain.SessionView], error)
}

func (s *stubSessionService) List(ctx context.Context, actor domain.Actor, in ports.ListSessionsInput) (*domain.Page[domain.SessionView], error) {
	return s.listFn(ctx, actor, in)
}

type stubUploadService struct {
	gotFolder string
	gotBody   string
}

func (s *stubUploadService) Upload(ctx context.Context, actor domain.Actor, folder string, file io.Reader) (string, error) {
	b, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	s.gotFolder, s.gotBody = folder, string(b)
	return "https://cdn.example.com/" + folder + "/f.png", nil
}

// ---- Tests ----

func TestSchedulingHandler_SelectSlot(t *testing.T) {
	want := time.Date(2025, 1, 7, 10, 0, 0, 0, time.UTC)
	h := NewSchedulingHandler(&stubPropositionService{
		selectFn: func(ctx context.Context, actor domain.Actor, therapyID, propositionID string, slot time.Time) (*ports.SelectionResult, error) {
			if actor.UserID != "c1" || therapyID != "t1" || propositionID != "p1" {
				t.Fatalf("unexpected args: %+v %s %s", actor, therapyID, propositionID)
			}
			if !slot.Equal(want) {
				t.Fatalf("expected %s, got %s", want, slot)
			}
			return &ports.SelectionResult{Session: &domain.TherapySession{ID: "s1", ScheduledAt: slot}}, nil
		},
	}, &stubSessionRequestService{})

	// Same instant expressed in another zone.
	c, rec := newJSONContext(http.MethodPost, "/", `{"selected_slot":"2025-01-07T04:00:00-06:00"}`)
	withActor(c, "c1", domain.RoleConsultant)
	c.SetParamNames("id", "propositionId")
	c.SetParamValues("t1", "p1")

	if err := h.SelectSlot(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if session, _ := data["session"].(map[string]any); session["id"] != "s1" {
		t.Fatalf("expected session in result, got %+v", data)
	}
}

func TestSchedulingHandler_RespondRequiresDecision(t *testing.T) {
	h := NewSchedulingHandler(&stubPropositionService{}, &stubSessionRequestService{
		respondFn: func(ctx context.Context, actor domain.Actor, therapyID, requestID string, accept bool) (*ports.SelectionResult, error) {
			if accept {
				t.Fatalf("expected a rejection")
			}
			return &ports.SelectionResult{Request: &domain.SessionRequest{ID: requestID, Status: domain.RequestRejected}}, nil
		},
	})

	c, _ := newJSONContext(http.MethodPost, "/", `{}`)
	withActor(c, "p1", domain.RolePsychologist)
	if err := h.RespondSessionRequest(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected VALIDATION_ERROR for missing accept, got %v", err)
	}

	c, rec := newJSONContext(http.MethodPost, "/", `{"accept":false}`)
	withActor(c, "p1", domain.RolePsychologist)
	c.SetParamNames("id", "requestId")
	c.SetParamValues("t1", "r1")
	if err := h.RespondSessionRequest(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSessionHandler_ListFiltersAndMeta(t *testing.T) {
	h := NewSessionHandler(&stubSessionService{
		listFn: func(ctx context.Context, actor domain.Actor, in ports.ListSessionsInput) (*domain.Page[domain.SessionView], error) {
			if in.TherapyID != "t1" || in.Status != domain.SessionScheduled {
				t.Fatalf("unexpected filters: %+v", in)
			}
			if in.From == nil || !in.From.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) || in.To != nil {
				t.Fatalf("unexpected range: %v %v", in.From, in.To)
			}
			if in.Page.Page != 2 || in.Page.PerPage != 100 {
				t.Fatalf("expected page 2 capped at 100, got %+v", in.Page)
			}
			return domain.NewPage([]domain.SessionView{{EffectiveFee: 600}}, 150, in.Page), nil
		},
	})

	c, rec := newJSONContext(http.MethodGet,
		"/sessions?therapy_id=t1&status=SCHEDULED&from=2025-01-01T00:00:00Z&page=2&per_page=500", "")
	withActor(c, "p1", domain.RolePsychologist)
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	meta := decodeEnvelope(t, rec)["meta"].(map[string]any)
	if meta["total"] != float64(150) || meta["last_page"] != float64(2) || meta["per_page"] != float64(100) {
		t.Fatalf("unexpected meta: %+v", meta)
	}
}

func TestSessionHandler_ListRejectsBadInput(t *testing.T) {
	h := NewSessionHandler(&stubSessionService{})
	for _, target := range []string{"/sessions?status=DONE", "/sessions?from=yesterday", "/sessions?page=x"} {
		c, _ := newJSONContext(http.MethodGet, target, "")
		withActor(c, "p1", domain.RolePsychologist)
		if err := h.List(c); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: expected VALIDATION_ERROR, got %v", target, err)
		}
	}
}

func TestValidator_HHMM(t *testing.T) {
	v := NewValidator()
	base := recurrenceRequest{DayOfWeek: 2, Duration: 50, Frequency: "WEEKLY", StartDate: time.Now()}

	for _, ok := range []string{"9:30", "09:30", "23:59", "00:00"} {
		req := base
		req.StartTime = ok
		if err := v.Validate(req); err != nil {
			t.Fatalf("%s: unexpected error %v", ok, err)
		}
	}
	for _, bad := range []string{"24:00", "9:60", "0930", "ab:cd"} {
		req := base
		req.StartTime = bad
		err := v.Validate(req)
		var de *domain.Error
		if !errors.As(err, &de) {
			t.Fatalf("%s: expected validation error, got %v", bad, err)
		}
		details := de.Details.([]fieldViolation)
		if len(details) != 1 || details[0].Field != "start_time" {
			t.Fatalf("%s: unexpected details %+v", bad, details)
		}
	}
}

func TestUploadHandler_Multipart(t *testing.T) {
	svc := &stubUploadService{}
	h := NewUploadHandler(svc)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("folder", "avatars")
	fw, err := mw.CreateFormFile("file", "me.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = fw.Write([]byte("png-bytes"))
	_ = mw.Close()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/uploads", &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	c := withActor(e.NewContext(req, rec), "u1", domain.RoleConsultant)

	if err := h.Upload(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if svc.gotFolder != "avatars" || svc.gotBody != "png-bytes" {
		t.Fatalf("unexpected upload: %q %q", svc.gotFolder, svc.gotBody)
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["url"] != "https://cdn.example.com/avatars/f.png" {
		t.Fatalf("unexpected url: %v", data["url"])
	}
}

func TestUploadHandler_MissingFile(t *testing.T) {
	h := NewUploadHandler(&stubUploadService{})
	c, _ := newJSONContext(http.MethodPost, "/uploads", `{}`)
	withActor(c, "u1", domain.RoleConsultant)
	if err := h.Upload(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestHealth_Readiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	h := NewHealthDependenciesHandler(map[string]Check{"postgres": ok, "mongodb": ok, "redis": down})
	c, rec := newJSONContext(http.MethodGet, "/health/ready", "")
	if err := h.Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var resp readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Status != "degraded" || resp.Dependencies["redis"].Status != "unhealthy" || resp.Dependencies["postgres"].Status != "ok" {
		t.Fatalf("unexpected readiness: %+v", resp)
	}

	h = NewHealthDependenciesHandler(map[string]Check{"postgres": ok})
	c, rec = newJSONContext(http.MethodGet, "/health/ready", "")
	_ = h.Readiness(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
