package domain

import "time"

// SessionNote is a free-text annotation on a session. Private notes are
// visible to their author only.
type SessionNote struct {
	ID        string       `json:"id"`
	SessionID string       `json:"session_id"`
	AuthorID  string       `json:"author_id"`
	Content   string       `json:"content"`
	IsPrivate bool         `json:"is_private"`
	Author    *UserSummary `json:"author,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// VisibleTo reports whether userID may read the note.
func (n *SessionNote) VisibleTo(userID string) bool {
	return !n.IsPrivate || n.AuthorID == userID
}

// TherapyNote is a clinical note on the whole therapy, kept by the
// psychologist.
type TherapyNote struct {
	ID        string    `json:"id"`
	TherapyID string    `json:"therapy_id"`
	AuthorID  string    `json:"author_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Payment is a payment registered by the psychologist for a therapy.
type Payment struct {
	ID           string    `json:"id"`
	TherapyID    string    `json:"therapy_id"`
	SessionID    *string   `json:"session_id,omitempty"`
	Amount       float64   `json:"amount"`
	Method       string    `json:"method"`
	Notes        string    `json:"notes,omitempty"`
	PaidAt       time.Time `json:"paid_at"`
	RegisteredBy string    `json:"registered_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// Message is a chat message exchanged inside a therapy.
type Message struct {
	ID        string    `json:"id"`
	TherapyID string    `json:"therapy_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
