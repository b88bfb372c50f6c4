package domain

import "time"

// NotificationType identifies the workflow event a notification reports.
type NotificationType string

const (
	NotifyTherapyRequestReceived NotificationType = "THERAPY_REQUEST_RECEIVED"
	NotifyTherapyRequestAccepted NotificationType = "THERAPY_REQUEST_ACCEPTED"
	NotifyTherapyRequestRejected NotificationType = "THERAPY_REQUEST_REJECTED"
	NotifyTherapyInvitation      NotificationType = "THERAPY_INVITATION"
	NotifyTherapyActivated       NotificationType = "THERAPY_ACTIVATED"
	NotifyTherapyStatusChanged   NotificationType = "THERAPY_STATUS_CHANGED"
	NotifyPropositionReceived    NotificationType = "PROPOSITION_RECEIVED"
	NotifyPropositionAccepted    NotificationType = "PROPOSITION_ACCEPTED"
	NotifySessionRequestReceived NotificationType = "SESSION_REQUEST_RECEIVED"
	NotifySessionRequestAccepted NotificationType = "SESSION_REQUEST_ACCEPTED"
	NotifySessionRequestRejected NotificationType = "SESSION_REQUEST_REJECTED"
	NotifySessionScheduled       NotificationType = "SESSION_SCHEDULED"
	NotifySessionCompleted       NotificationType = "SESSION_COMPLETED"
	NotifySessionCancelled       NotificationType = "SESSION_CANCELLED"
	NotifySessionPostponed       NotificationType = "SESSION_POSTPONED"
	NotifyRecurrenceConfigured   NotificationType = "RECURRENCE_CONFIGURED"
	NotifyNoteAdded              NotificationType = "NOTE_ADDED"
	NotifyPaymentRegistered      NotificationType = "PAYMENT_REGISTERED"
	NotifyNewMessage             NotificationType = "NEW_MESSAGE"
)

var notificationTitles = map[NotificationType]string{
	NotifyTherapyRequestReceived: "New therapy request",
	NotifyTherapyRequestAccepted: "Therapy request accepted",
	NotifyTherapyRequestRejected: "Therapy request rejected",
	NotifyTherapyInvitation:      "You have been invited to a therapy",
	NotifyTherapyActivated:       "Therapy activated",
	NotifyTherapyStatusChanged:   "Therapy status updated",
	NotifyPropositionReceived:    "New schedule proposition",
	NotifyPropositionAccepted:    "Schedule proposition accepted",
	NotifySessionRequestReceived: "New session request",
	NotifySessionRequestAccepted: "Session request accepted",
	NotifySessionRequestRejected: "Session request rejected",
	NotifySessionScheduled:       "Session scheduled",
	NotifySessionCompleted:       "Session completed",
	NotifySessionCancelled:       "Session cancelled",
	NotifySessionPostponed:       "Session postponed",
	NotifyRecurrenceConfigured:   "Recurring sessions scheduled",
	NotifyNoteAdded:              "New note",
	NotifyPaymentRegistered:      "Payment registered",
	NotifyNewMessage:             "New message",
}

// Notification is a user-addressed record of a workflow transition.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Body      string           `json:"body,omitempty"`
	Payload   map[string]any   `json:"payload,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewNotification builds an unread notification with the title for typ.
func NewNotification(userID string, typ NotificationType, payload map[string]any) Notification {
	title, ok := notificationTitles[typ]
	if !ok {
		title = string(typ)
	}
	return Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Payload: payload,
	}
}

// DebounceKey returns the grouping key for debounced types, or "" when the
// notification is always delivered.
func (n Notification) DebounceKey() string {
	if n.Type != NotifyNewMessage {
		return ""
	}
	therapyID, _ := n.Payload["therapy_id"].(string)
	return n.UserID + ":" + therapyID
}

// Outbox collects notifications produced inside a transaction so they can be
// published after it commits.
type Outbox []Notification

// Add appends one notification per non-empty recipient.
func (o *Outbox) Add(typ NotificationType, payload map[string]any, recipients ...string) {
	for _, r := range recipients {
		if r == "" {
			continue
		}
		*o = append(*o, NewNotification(r, typ, payload))
	}
}
