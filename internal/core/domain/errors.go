package domain

import "fmt"

// ErrorKind classifies a domain error. The transport layer maps each kind to
// one HTTP status.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindBadRequest
	KindUnprocessable
	KindValidation
	KindUnauthorized
)

// Error is a typed domain failure with a stable machine-readable code.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Details any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any *Error carrying the same code, so dynamic variants built
// from a sentinel still satisfy errors.Is against it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func newError(kind ErrorKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// WithMessage returns a copy of e with a more specific message.
func (e *Error) WithMessage(format string, args ...any) *Error {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

// WithDetails returns a copy of e carrying extra details for the client.
func (e *Error) WithDetails(details any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

var (
	ErrUserNotFound                 = newError(KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrTherapyNotFound              = newError(KindNotFound, "THERAPY_NOT_FOUND", "therapy not found")
	ErrPsychologistProfileNotFound  = newError(KindNotFound, "PSYCHOLOGIST_PROFILE_NOT_FOUND", "psychologist profile not found")
	ErrConsultantProfileNotFound    = newError(KindNotFound, "CONSULTANT_PROFILE_NOT_FOUND", "consultant profile not found")
	ErrPropositionNotFound          = newError(KindNotFound, "PROPOSITION_NOT_FOUND", "proposition not found")
	ErrSessionRequestNotFound       = newError(KindNotFound, "SESSION_REQUEST_NOT_FOUND", "session request not found")
	ErrSessionNotFound              = newError(KindNotFound, "SESSION_NOT_FOUND", "session not found")
	ErrTherapyRequestNotFound       = newError(KindNotFound, "REQUEST_NOT_FOUND", "therapy request not found")
	ErrNoteNotFound                 = newError(KindNotFound, "NOTE_NOT_FOUND", "note not found")
	ErrNotificationNotFound         = newError(KindNotFound, "NOTIFICATION_NOT_FOUND", "notification not found")
	ErrRecurrenceNotFound           = newError(KindNotFound, "RECURRENCE_NOT_FOUND", "recurrence configuration not found")
	ErrForbiddenSessionAction       = newError(KindForbidden, "FORBIDDEN_SESSION_ACTION", "you are not allowed to perform this action on the session")
	ErrForbiddenNoteAction          = newError(KindForbidden, "FORBIDDEN_NOTE_ACTION", "only the author can modify this note")
	ErrInsufficientPermissions      = newError(KindForbidden, "INSUFFICIENT_PERMISSIONS", "insufficient permissions")
	ErrPasswordChangeRequired       = newError(KindForbidden, "PASSWORD_CHANGE_REQUIRED", "password change required before continuing")
	ErrConsultantHasActiveTherapy   = newError(KindConflict, "CONSULTANT_HAS_ACTIVE_THERAPY", "consultant already has an active therapy")
	ErrDuplicateTherapyRequest      = newError(KindConflict, "DUPLICATE_THERAPY_REQUEST", "a pending request to this psychologist already exists")
	ErrInvalidConsultantEmail       = newError(KindConflict, "INVALID_CONSULTANT_EMAIL", "email belongs to a user that is not a consultant")
	ErrEmailAlreadyRegistered       = newError(KindConflict, "EMAIL_ALREADY_REGISTERED", "email already registered")
	ErrSlotNotAvailable             = newError(KindBadRequest, "SLOT_NOT_AVAILABLE", "slot is outside the psychologist availability")
	ErrInvalidSelectedSlot          = newError(KindBadRequest, "INVALID_SELECTED_SLOT", "selected slot is not one of the proposed slots")
	ErrPropositionAlreadyProcessed  = newError(KindBadRequest, "PROPOSITION_ALREADY_PROCESSED", "proposition already processed")
	ErrRequestAlreadyProcessed      = newError(KindBadRequest, "REQUEST_ALREADY_PROCESSED", "request already processed")
	ErrInvalidOnboardingStep        = newError(KindBadRequest, "INVALID_ONBOARDING_STEP", "invalid onboarding step")
	ErrInvalidDayOfWeek             = newError(KindBadRequest, "INVALID_DAY_OF_WEEK", "day_of_week must be between 0 and 6")
	ErrInvalidTimeFormat            = newError(KindBadRequest, "INVALID_TIME_FORMAT", "time must use the HH:mm format")
	ErrInvalidTimeRange             = newError(KindBadRequest, "INVALID_TIME_RANGE", "start_time must be before end_time")
	ErrInvalidRecurrence            = newError(KindBadRequest, "INVALID_RECURRENCE", "invalid recurrence configuration")
	ErrInvalidUploadFolder          = newError(KindBadRequest, "INVALID_UPLOAD_FOLDER", "unsupported upload folder")
	ErrInvalidSessionStatus         = newError(KindUnprocessable, "INVALID_SESSION_STATUS", "session status does not allow this action")
	ErrInvalidTherapyStatus         = newError(KindUnprocessable, "INVALID_THERAPY_STATUS", "therapy status does not allow this action")
	ErrValidation                   = newError(KindValidation, "VALIDATION_ERROR", "request validation failed")
	ErrInvalidCredentials           = newError(KindUnauthorized, "INVALID_CREDENTIALS", "invalid credentials")
	ErrInvalidRefreshToken          = newError(KindUnauthorized, "INVALID_REFRESH_TOKEN", "invalid or expired refresh token")
	ErrUnauthenticated              = newError(KindUnauthorized, "UNAUTHENTICATED", "authentication required")
)

// InvalidSessionStatus names the status that blocked a transition.
func InvalidSessionStatus(current SessionStatus) *Error {
	return ErrInvalidSessionStatus.WithMessage("cannot perform this action on a session with status %s", current)
}

// SlotNotAvailable names the offending datetime.
func SlotNotAvailable(slot string) *Error {
	return ErrSlotNotAvailable.WithMessage("slot %s is not available", slot).WithDetails(map[string]string{"slot": slot})
}
