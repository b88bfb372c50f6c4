package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/terapia/practice-api/internal/api/handler"
	"github.com/terapia/practice-api/internal/api/middleware"
	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
)

// Services are the use-cases exposed over HTTP.
type Services struct {
	Auth            ports.AuthService
	Psychologists   ports.PsychologistService
	Consultants     ports.ConsultantService
	Therapies       ports.TherapyService
	Recurrence      ports.RecurrenceService
	TherapyRequests ports.TherapyRequestService
	Propositions    ports.PropositionService
	SessionRequests ports.SessionRequestService
	Sessions        ports.SessionService
	Notes           ports.NoteService
	Payments        ports.PaymentService
	Messages        ports.MessageService
	Notifications   ports.NotificationService
	Uploads         ports.UploadService
}

// RouterConfig carries the transport-level settings.
type RouterConfig struct {
	JWTSecret string
	Log       zerolog.Logger
	// Checks are the readiness probes, keyed by dependency name.
	Checks map[string]handler.Check
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig, svc Services) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Recover())
	e.Use(requestLogger(cfg.Log))
	e.Use(echoprometheus.NewMiddleware("clinic"))

	// --- Ops endpoints (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewHealthDependenciesHandler(cfg.Checks).Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	var (
		authH           = handler.NewAuthHandler(svc.Auth)
		psychologistH   = handler.NewPsychologistHandler(svc.Psychologists)
		consultantH     = handler.NewConsultantHandler(svc.Consultants)
		therapyH        = handler.NewTherapyHandler(svc.Therapies, svc.Recurrence)
		therapyRequestH = handler.NewTherapyRequestHandler(svc.TherapyRequests)
		schedulingH     = handler.NewSchedulingHandler(svc.Propositions, svc.SessionRequests)
		sessionH        = handler.NewSessionHandler(svc.Sessions)
		noteH           = handler.NewNoteHandler(svc.Notes)
		engagementH     = handler.NewEngagementHandler(svc.Payments, svc.Messages)
		notificationH   = handler.NewNotificationHandler(svc.Notifications)
		uploadH         = handler.NewUploadHandler(svc.Uploads)
	)

	authMW := middleware.Auth(cfg.JWTSecret)
	psychologist := middleware.RequireRoles(domain.RolePsychologist)
	consultant := middleware.RequireRoles(domain.RoleConsultant)
	admin := middleware.RequireRoles(domain.RoleAdmin)
	participant := middleware.RequireRoles(domain.RolePsychologist, domain.RoleConsultant)

	// --- Auth ---
	e.POST("/auth/register", authH.Register)
	e.POST("/auth/login", authH.Login)
	e.POST("/auth/refresh", authH.Refresh)
	// Reachable while a password change is pending.
	e.POST("/auth/logout", authH.Logout, authMW)
	e.POST("/auth/change-password", authH.ChangePassword, authMW)
	e.GET("/auth/me", authH.Me, authMW)

	g := e.Group("", authMW, middleware.PasswordGate(svc.Auth))

	// --- Psychologists ---
	g.GET("/psychologists", psychologistH.List)
	g.GET("/psychologists/me/profile", psychologistH.MyProfile, psychologist)
	g.PUT("/psychologists/me/profile", psychologistH.UpdateMyProfile, psychologist)
	g.GET("/psychologists/me/availability", psychologistH.MyAvailability, psychologist)
	g.PUT("/psychologists/me/availability", psychologistH.SetMyAvailability, psychologist)
	g.GET("/psychologists/:id", psychologistH.Get)

	// --- Consultants ---
	g.GET("/consultants/me/profile", consultantH.MyProfile, consultant)
	g.PUT("/consultants/me/profile", consultantH.UpdateMyProfile, consultant)
	g.GET("/consultants/me/onboarding", consultantH.Onboarding, consultant)
	g.POST("/consultants/me/onboarding/steps/:step", consultantH.SubmitOnboardingStep, consultant)

	// --- Therapies ---
	g.POST("/therapies", therapyH.Invite, psychologist)
	g.GET("/therapies", therapyH.List)
	g.GET("/therapies/:id", therapyH.Get)
	g.PATCH("/therapies/:id", therapyH.Update, psychologist)
	g.DELETE("/therapies/:id", therapyH.Delete, admin)
	g.GET("/therapies/:id/recurrence", therapyH.GetRecurrence)
	g.PUT("/therapies/:id/recurrence", therapyH.ConfigureRecurrence, psychologist)

	g.POST("/therapies/:id/propositions", schedulingH.CreateProposition, psychologist)
	g.GET("/therapies/:id/propositions", schedulingH.ListPropositions)
	g.POST("/therapies/:id/propositions/:propositionId/select", schedulingH.SelectSlot, consultant)
	g.POST("/therapies/:id/session-requests", schedulingH.CreateSessionRequest, consultant)
	g.GET("/therapies/:id/session-requests", schedulingH.ListSessionRequests)
	g.POST("/therapies/:id/session-requests/:requestId/respond", schedulingH.RespondSessionRequest, psychologist)

	g.GET("/therapies/:id/notes", noteH.ListTherapyNotes, psychologist)
	g.POST("/therapies/:id/notes", noteH.AddTherapyNote, psychologist)
	g.PATCH("/therapies/:id/notes/:noteId", noteH.UpdateTherapyNote, psychologist)
	g.DELETE("/therapies/:id/notes/:noteId", noteH.DeleteTherapyNote, psychologist)

	g.POST("/therapies/:id/payments", engagementH.RegisterPayment, psychologist)
	g.GET("/therapies/:id/payments", engagementH.ListPayments)
	g.POST("/therapies/:id/messages", engagementH.SendMessage, participant)
	g.GET("/therapies/:id/messages", engagementH.ListMessages)

	// --- Therapy requests ---
	g.POST("/therapy-requests", therapyRequestH.Create, consultant)
	g.GET("/therapy-requests", therapyRequestH.List)
	g.POST("/therapy-requests/:id/respond", therapyRequestH.Respond, psychologist)

	// --- Sessions ---
	g.GET("/sessions", sessionH.List)
	g.GET("/sessions/:id", sessionH.Get)
	g.POST("/sessions/:id/complete", sessionH.Complete, participant)
	g.POST("/sessions/:id/cancel", sessionH.Cancel, participant)
	g.POST("/sessions/:id/postpone", sessionH.Postpone, participant)
	g.POST("/sessions/:id/confirm-postpone", sessionH.ConfirmPostpone, participant)
	g.PATCH("/sessions/:id/fee", sessionH.UpdateFee, psychologist)
	g.POST("/sessions/:id/media", sessionH.AttachMedia, participant)

	g.GET("/sessions/:id/notes", noteH.ListSessionNotes)
	g.POST("/sessions/:id/notes", noteH.AddSessionNote, participant)
	g.PATCH("/sessions/:id/notes/:noteId", noteH.UpdateSessionNote, participant)
	g.DELETE("/sessions/:id/notes/:noteId", noteH.DeleteSessionNote, participant)

	// --- Notifications ---
	g.GET("/notifications", notificationH.List)
	g.GET("/notifications/unread-count", notificationH.UnreadCount)
	g.PATCH("/notifications/read-all", notificationH.MarkAllRead)
	g.PATCH("/notifications/:id/read", notificationH.MarkRead)

	// --- Uploads ---
	g.POST("/uploads", uploadH.Upload, echomiddleware.BodyLimit("11M"))

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
