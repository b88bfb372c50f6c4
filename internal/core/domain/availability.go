package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// AvailabilityType distinguishes bookable windows from blocked ones.
type AvailabilityType string

const (
	SlotAvailable AvailabilityType = "AVAILABLE"
	SlotBlocked   AvailabilityType = "BLOCKED"
)

var timeOfDayPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// AvailabilitySlot is a weekly recurring window on one weekday, expressed as a
// half-open [StartTime, EndTime) range of zero-padded "HH:mm" strings.
type AvailabilitySlot struct {
	ID        string           `json:"id"`
	ProfileID string           `json:"profile_id"`
	DayOfWeek int              `json:"day_of_week"`
	StartTime string           `json:"start_time"`
	EndTime   string           `json:"end_time"`
	Type      AvailabilityType `json:"type"`
	// TherapyID is set on BLOCKED slots owned by a recurrence configuration.
	TherapyID *string `json:"therapy_id,omitempty"`
}

// ValidTimeOfDay reports whether s matches the accepted HH:mm format.
func ValidTimeOfDay(s string) bool {
	return timeOfDayPattern.MatchString(s)
}

// NormalizeTimeOfDay zero-pads a valid "H:mm" value so that lexicographic
// comparison matches chronological order.
func NormalizeTimeOfDay(s string) string {
	if len(s) == 4 {
		return "0" + s
	}
	return s
}

// ClockOf renders the UTC time-of-day of t as "HH:mm".
func ClockOf(t time.Time) string {
	return t.UTC().Format("15:04")
}

// AddMinutes returns the "HH:mm" reached after adding minutes to start. The
// result is capped at "24:00", the end of the weekday window.
func AddMinutes(start string, minutes int) (string, error) {
	if !ValidTimeOfDay(start) {
		return "", ErrInvalidTimeFormat
	}
	hh, mm, _ := strings.Cut(start, ":")
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	total := h*60 + m + minutes
	if total >= 24*60 {
		return "24:00", nil
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60), nil
}

// Validate checks the slot fields and normalises its times.
func (s *AvailabilitySlot) Validate() error {
	if s.DayOfWeek < 0 || s.DayOfWeek > 6 {
		return ErrInvalidDayOfWeek
	}
	if !ValidTimeOfDay(s.StartTime) || !ValidTimeOfDay(s.EndTime) {
		return ErrInvalidTimeFormat
	}
	s.StartTime = NormalizeTimeOfDay(s.StartTime)
	s.EndTime = NormalizeTimeOfDay(s.EndTime)
	if s.StartTime >= s.EndTime {
		return ErrInvalidTimeRange
	}
	if s.Type == "" {
		s.Type = SlotAvailable
	}
	if s.Type != SlotAvailable && s.Type != SlotBlocked {
		return ErrValidation.WithMessage("type must be AVAILABLE or BLOCKED")
	}
	return nil
}

// Matches reports whether t falls inside the slot, using the UTC weekday and
// time-of-day of t.
func (s AvailabilitySlot) Matches(t time.Time) bool {
	t = t.UTC()
	if int(t.Weekday()) != s.DayOfWeek {
		return false
	}
	clock := ClockOf(t)
	return s.StartTime <= clock && clock < s.EndTime
}

// IsAvailable reports whether t is bookable against slots: some AVAILABLE slot
// must match and no BLOCKED slot may match. BLOCKED always wins.
func IsAvailable(slots []AvailabilitySlot, t time.Time) bool {
	available := false
	for _, s := range slots {
		if !s.Matches(t) {
			continue
		}
		if s.Type == SlotBlocked {
			return false
		}
		available = true
	}
	return available
}

// FirstUnavailable returns the first datetime in candidates that is not
// bookable, or false when every candidate passes.
func FirstUnavailable(slots []AvailabilitySlot, candidates []time.Time) (time.Time, bool) {
	for _, c := range candidates {
		if !IsAvailable(slots, c) {
			return c, true
		}
	}
	return time.Time{}, false
}
