package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/terapia/practice-api/internal/core/ports"
)

// EngagementHandler serves therapy payments and the therapy chat.
type EngagementHandler struct {
	payments ports.PaymentService
	messages ports.MessageService
}

func NewEngagementHandler(payments ports.PaymentService, messages ports.MessageService) *EngagementHandler {
	return &EngagementHandler{payments: payments, messages: messages}
}

type registerPaymentRequest struct {
	Amount    float64    `json:"amount" validate:"gt=0"`
	Method    string     `json:"method"`
	SessionID *string    `json:"session_id"`
	PaidAt    *time.Time `json:"paid_at"`
	Notes     string     `json:"notes"`
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

// RegisterPayment handles POST /therapies/:id/payments.
//
// @Summary      Register a payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                  true  "Therapy id"
// @Param        body  body      registerPaymentRequest  true  "Payment"
// @Success      201   {object}  envelope{data=domain.Payment}
// @Failure      422   {object}  map[string]any
// @Router       /therapies/{id}/payments [post]
func (h *EngagementHandler) RegisterPayment(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req registerPaymentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := h.payments.Register(c.Request().Context(), actor, c.Param("id"), ports.RegisterPaymentInput{
		Amount:    req.Amount,
		Method:    req.Method,
		SessionID: req.SessionID,
		PaidAt:    req.PaidAt,
		Notes:     req.Notes,
	})
	if err != nil {
		return err
	}
	return created(c, p)
}

// ListPayments handles GET /therapies/:id/payments.
//
// @Summary      List payments of a therapy
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id        path      string  true   "Therapy id"
// @Param        page      query     int     false  "Page"
// @Param        per_page  query     int     false  "Page size"
// @Success      200       {object}  envelope{data=[]domain.Payment}
// @Router       /therapies/{id}/payments [get]
func (h *EngagementHandler) ListPayments(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	page, err := pageRequest(c)
	if err != nil {
		return err
	}
	result, err := h.payments.List(c.Request().Context(), actor, c.Param("id"), page)
	if err != nil {
		return err
	}
	return paginated(c, result)
}

// SendMessage handles POST /therapies/:id/messages.
//
// @Summary      Send a chat message
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Therapy id"
// @Param        body  body      sendMessageRequest  true  "Message"
// @Success      201   {object}  envelope{data=domain.Message}
// @Router       /therapies/{id}/messages [post]
func (h *EngagementHandler) SendMessage(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req sendMessageRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	m, err := h.messages.Send(c.Request().Context(), actor, c.Param("id"), req.Content)
	if err != nil {
		return err
	}
	return created(c, m)
}

// ListMessages handles GET /therapies/:id/messages.
//
// @Summary      List chat messages
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        id        path      string  true   "Therapy id"
// @Param        page      query     int     false  "Page"
// @Param        per_page  query     int     false  "Page size"
// @Success      200       {object}  envelope{data=[]domain.Message}
// @Router       /therapies/{id}/messages [get]
func (h *EngagementHandler) ListMessages(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	page, err := pageRequest(c)
	if err != nil {
		return err
	}
	result, err := h.messages.List(c.Request().Context(), actor, c.Param("id"), page)
	if err != nil {
		return err
	}
	return paginated(c, result)
}
