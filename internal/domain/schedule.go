package domain

import (
	"time"
)

// Schedule is a user's weekly trigger configuration. Each weekday holds an
// optional "HH:MM" local time of day; nil means the schedule does not run
// that day.
type Schedule struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Name      string    `json:"name"`
	Monday    *string   `json:"monday"`
	Tuesday   *string   `json:"tuesday"`
	Wednesday *string   `json:"wednesday"`
	Thursday  *string   `json:"thursday"`
	Friday    *string   `json:"friday"`
	Saturday  *string   `json:"saturday"`
	Sunday    *string   `json:"sunday"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}

// TimeFor returns the configured time of day for the given weekday, or nil
// if the schedule is inactive that day.
func (s *Schedule) TimeFor(day time.Weekday) *string {
	switch day {
	case time.Monday:
		return s.Monday
	case time.Tuesday:
		return s.Tuesday
	case time.Wednesday:
		return s.Wednesday
	case time.Thursday:
		return s.Thursday
	case time.Friday:
		return s.Friday
	case time.Saturday:
		return s.Saturday
	case time.Sunday:
		return s.Sunday
	}
	return nil
}

// ExecutionMarker records that a schedule already fired on a calendar date.
// RunDate is formatted as "2006-01-02". Markers are append-only; at most one
// exists per (schedule, date).
type ExecutionMarker struct {
	ScheduleID int64  `json:"scheduleId"`
	RunDate    string `json:"runDate"`
}
