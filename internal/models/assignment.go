package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Subjects taught in grades 4 to 6.
var Subjects = []string{"Math", "Science", "English", "Filipino", "Social Studies", "MAPEH"}

// AllSubjectsLabel marks a single-professor enrollment for grades 1 to 3.
const AllSubjectsLabel = "All Subjects"

// ValidSubject reports whether the subject belongs to the fixed list.
func ValidSubject(subject string) bool {
	for _, s := range Subjects {
		if s == subject {
			return true
		}
	}
	return false
}

// SectionAssignment is a professor's secondary teaching assignment.
// The schedule columns are either all set or all null.
type SectionAssignment struct {
	ID           string    `db:"id" json:"id"`
	ProfessorID  string    `db:"professor_id" json:"professor_id"`
	GradeLevel   string    `db:"grade_level" json:"grade_level"`
	Section      int       `db:"section" json:"section"`
	Subject      *string   `db:"subject" json:"subject,omitempty"`
	AssignedRoom string    `db:"assigned_room" json:"assigned_room"`
	DayOfWeek    *string   `db:"day_of_week" json:"day_of_week,omitempty"`
	StartTime    *string   `db:"start_time" json:"start_time,omitempty"`
	EndTime      *string   `db:"end_time" json:"end_time,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Slot parses the assignment's schedule columns. Returns nil when the
// assignment is unscheduled.
func (a *SectionAssignment) Slot() (*ScheduleSlot, error) {
	if a.DayOfWeek == nil && a.StartTime == nil && a.EndTime == nil {
		return nil, nil
	}
	if a.DayOfWeek == nil || a.StartTime == nil || a.EndTime == nil {
		return nil, fmt.Errorf("schedule fields must all be set together")
	}
	return ParseScheduleSlot(*a.DayOfWeek, *a.StartTime, *a.EndTime)
}

// SectionAssignmentInput is the payload for adding a secondary assignment.
type SectionAssignmentInput struct {
	GradeLevel string  `json:"grade_level" validate:"required,oneof=1 2 3 4 5 6"`
	Section    int     `json:"section" validate:"required,min=1"`
	Subject    *string `json:"subject,omitempty"`
	DayOfWeek  *string `json:"day_of_week,omitempty"`
	StartTime  *string `json:"start_time,omitempty"`
	EndTime    *string `json:"end_time,omitempty"`
}

// ProfessorAssignmentView is one row of a professor's combined assignment
// listing; the primary assignment is synthesized as the first row.
type ProfessorAssignmentView struct {
	ID         string  `json:"id"`
	Primary    bool    `json:"primary"`
	GradeLevel string  `json:"grade_level"`
	Section    int     `json:"section"`
	Subject    *string `json:"subject,omitempty"`
	Room       string  `json:"room"`
	DayOfWeek  *string `json:"day_of_week,omitempty"`
	StartTime  *string `json:"start_time,omitempty"`
	EndTime    *string `json:"end_time,omitempty"`
}

// CreateProfessorRequest creates a professor account.
type CreateProfessorRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,min=2"`
	Password string `json:"password" validate:"required,min=8"`
}

// UpdateProfessorAssignmentRequest sets the professor's primary assignment.
type UpdateProfessorAssignmentRequest struct {
	GradeLevel string  `json:"grade_level" validate:"required,oneof=1 2 3 4 5 6"`
	Section    int     `json:"section" validate:"required,min=1"`
	Subject    *string `json:"subject,omitempty"`
}

// ProfessorSummary lists a professor with assignment counts.
type ProfessorSummary struct {
	User
	AssignmentCount int `db:"assignment_count" json:"assignment_count"`
}

var canonicalDays = map[string]string{
	"monday":    "Monday",
	"tuesday":   "Tuesday",
	"wednesday": "Wednesday",
	"thursday":  "Thursday",
	"friday":    "Friday",
	"saturday":  "Saturday",
	"sunday":    "Sunday",
}

// ScheduleSlot is a parsed weekly time slot: a set of days plus a
// half-open [start, end) interval in minutes from midnight.
type ScheduleSlot struct {
	Days  map[string]struct{}
	Start int
	End   int
}

// ParseScheduleSlot parses "Monday,Wednesday" day lists and "HH:MM"
// clock times. Start must be strictly before end.
func ParseScheduleSlot(days, start, end string) (*ScheduleSlot, error) {
	daySet, err := parseDays(days)
	if err != nil {
		return nil, err
	}
	startMin, err := ParseClock(start)
	if err != nil {
		return nil, fmt.Errorf("invalid start time: %w", err)
	}
	endMin, err := ParseClock(end)
	if err != nil {
		return nil, fmt.Errorf("invalid end time: %w", err)
	}
	if startMin >= endMin {
		return nil, fmt.Errorf("start time must be before end time")
	}
	return &ScheduleSlot{Days: daySet, Start: startMin, End: endMin}, nil
}

// Overlaps reports whether two slots collide: their day sets intersect
// and their time intervals overlap. Intervals are half-open, so a slot
// ending exactly when another starts does not collide.
func (s *ScheduleSlot) Overlaps(other *ScheduleSlot) bool {
	if s == nil || other == nil {
		return false
	}
	shared := false
	for day := range s.Days {
		if _, ok := other.Days[day]; ok {
			shared = true
			break
		}
	}
	if !shared {
		return false
	}
	return s.Start < other.End && s.End > other.Start
}

// ParseClock converts "HH:MM" into minutes from midnight.
func ParseClock(raw string) (int, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", raw)
	}
	return hour*60 + minute, nil
}

func parseDays(raw string) (map[string]struct{}, error) {
	set := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		day := strings.TrimSpace(part)
		if day == "" {
			continue
		}
		canonical, ok := canonicalDays[strings.ToLower(day)]
		if !ok {
			return nil, fmt.Errorf("unknown day %q", day)
		}
		set[canonical] = struct{}{}
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("at least one day required")
	}
	return set, nil
}
