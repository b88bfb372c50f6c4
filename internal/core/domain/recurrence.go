package domain

import (
	"strconv"
	"strings"
	"time"
)

// DefaultRecurrenceOccurrences is generated when no sessions_count is given,
// roughly three months of weekly sessions.
const DefaultRecurrenceOccurrences = 12

type Frequency string

const (
	FrequencyWeekly   Frequency = "WEEKLY"
	FrequencyBiweekly Frequency = "BIWEEKLY"
)

// IntervalDays is the spacing between generated sessions.
func (f Frequency) IntervalDays() int {
	if f == FrequencyBiweekly {
		return 14
	}
	return 7
}

func (f Frequency) Valid() bool {
	return f == FrequencyWeekly || f == FrequencyBiweekly
}

// RecurrenceConfiguration is the rule that auto-generates future sessions.
type RecurrenceConfiguration struct {
	ID            string    `json:"id"`
	TherapyID     string    `json:"therapy_id"`
	DayOfWeek     int       `json:"day_of_week"`
	StartTime     string    `json:"start_time"`
	Duration      int       `json:"duration"`
	Frequency     Frequency `json:"frequency"`
	SessionsCount *int      `json:"sessions_count"`
	StartDate     time.Time `json:"start_date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Validate checks and normalises the configuration.
func (c *RecurrenceConfiguration) Validate() error {
	if c.DayOfWeek < 0 || c.DayOfWeek > 6 {
		return ErrInvalidDayOfWeek
	}
	if !ValidTimeOfDay(c.StartTime) {
		return ErrInvalidTimeFormat
	}
	c.StartTime = NormalizeTimeOfDay(c.StartTime)
	if c.Duration <= 0 {
		c.Duration = DefaultSessionDuration
	}
	if c.Frequency == "" {
		c.Frequency = FrequencyWeekly
	}
	if !c.Frequency.Valid() {
		return ErrInvalidRecurrence.WithMessage("frequency must be WEEKLY or BIWEEKLY")
	}
	if c.SessionsCount != nil && *c.SessionsCount <= 0 {
		return ErrInvalidRecurrence.WithMessage("sessions_count must be positive")
	}
	if c.StartDate.IsZero() {
		return ErrInvalidRecurrence.WithMessage("start_date is required")
	}
	return nil
}

// Occurrences returns the number of sessions to generate.
func (c *RecurrenceConfiguration) Occurrences() int {
	if c.SessionsCount != nil && *c.SessionsCount > 0 {
		return *c.SessionsCount
	}
	return DefaultRecurrenceOccurrences
}

// FirstOccurrence advances StartDate day by day (never backwards) until its
// UTC weekday is DayOfWeek, then sets the UTC time-of-day to StartTime.
func (c *RecurrenceConfiguration) FirstOccurrence() time.Time {
	d := c.StartDate.UTC()
	for int(d.Weekday()) != c.DayOfWeek {
		d = d.AddDate(0, 0, 1)
	}
	hh, mm, _ := strings.Cut(c.StartTime, ":")
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, 0, 0, time.UTC)
}

// Schedule lists every generated session datetime.
func (c *RecurrenceConfiguration) Schedule() []time.Time {
	n := c.Occurrences()
	first := c.FirstOccurrence()
	step := c.Frequency.IntervalDays()
	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, first.AddDate(0, 0, i*step))
	}
	return out
}

// BlockedSlot returns the BLOCKED availability window covering each
// generated session.
func (c *RecurrenceConfiguration) BlockedSlot(profileID string) (AvailabilitySlot, error) {
	end, err := AddMinutes(c.StartTime, c.Duration)
	if err != nil {
		return AvailabilitySlot{}, err
	}
	therapyID := c.TherapyID
	return AvailabilitySlot{
		ProfileID: profileID,
		DayOfWeek: c.DayOfWeek,
		StartTime: c.StartTime,
		EndTime:   end,
		Type:      SlotBlocked,
		TherapyID: &therapyID,
	}, nil
}
