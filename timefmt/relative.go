// ABOUTME: Human-readable relative date labels for due dates, milestones, and last contact
// ABOUTME: Pure functions of target and reference time; never reads the wall clock
package timefmt

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Day is the length of one whole day used for all day arithmetic.
const Day = 24 * time.Hour

// Never is the label for a missing past timestamp.
const Never = "Never"

// ErrInvalidInput is returned for zero, unparseable, or otherwise unusable timestamps.
var ErrInvalidInput = errors.New("invalid timestamp input")

// Direction selects between future-facing and past-facing labels.
type Direction int

const (
	Future Direction = iota
	Past
)

func (d Direction) String() string {
	switch d {
	case Future:
		return "future"
	case Past:
		return "past"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// ParseDirection accepts "future" or "past" in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "future":
		return Future, nil
	case "past":
		return Past, nil
	}
	return 0, fmt.Errorf("%w: unknown direction %q", ErrInvalidInput, s)
}

// DaysUntil is ceil((target - reference) / Day).
func DaysUntil(target, reference time.Time) int {
	return int(math.Ceil(float64(target.Sub(reference)) / float64(Day)))
}

// DaysBetween is floor((reference - target) / Day).
func DaysBetween(target, reference time.Time) int {
	return int(math.Floor(float64(reference.Sub(target)) / float64(Day)))
}

// FormatRelative labels target relative to reference.
//
// Future: "Today", "Tomorrow", "{n} days", or "{n} days overdue".
// Past: "Today", "Yesterday", "{n} days ago", "{n} weeks ago", "{n} months ago",
// or "Never" when target is nil.
func FormatRelative(target *time.Time, reference time.Time, dir Direction) (string, error) {
	if reference.IsZero() {
		return "", fmt.Errorf("%w: reference time is zero", ErrInvalidInput)
	}
	if target != nil && target.IsZero() {
		return "", fmt.Errorf("%w: target time is zero", ErrInvalidInput)
	}

	switch dir {
	case Future:
		if target == nil {
			return "", nil
		}
		return futureLabel(DaysUntil(*target, reference)), nil
	case Past:
		if target == nil {
			return Never, nil
		}
		return pastLabel(DaysBetween(*target, reference)), nil
	}
	return "", fmt.Errorf("%w: unknown direction %d", ErrInvalidInput, int(dir))
}

func futureLabel(days int) string {
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days > 1:
		return fmt.Sprintf("%d days", days)
	}
	return fmt.Sprintf("%d days overdue", -days)
}

func pastLabel(days int) string {
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return fmt.Sprintf("%d weeks ago", days/7)
	}
	return fmt.Sprintf("%d months ago", days/30)
}

// FormatMilestone is the countdown shown next to a person's next milestone.
// A nil milestone yields an empty label.
func FormatMilestone(target *time.Time, reference time.Time) (string, error) {
	if reference.IsZero() {
		return "", fmt.Errorf("%w: reference time is zero", ErrInvalidInput)
	}
	if target == nil {
		return "", nil
	}
	if target.IsZero() {
		return "", fmt.Errorf("%w: target time is zero", ErrInvalidInput)
	}

	days := DaysUntil(*target, reference)
	switch {
	case days < 0:
		return "Overdue", nil
	case days == 0:
		return "Today", nil
	case days == 1:
		return "Tomorrow", nil
	case days < 7:
		return fmt.Sprintf("In %d days", days), nil
	}
	return fmt.Sprintf("In %d weeks", days/7), nil
}

// FormatEventDate is the inbox date label: relative within a week, then a calendar date.
func FormatEventDate(target, reference time.Time) (string, error) {
	if reference.IsZero() || target.IsZero() {
		return "", fmt.Errorf("%w: zero time", ErrInvalidInput)
	}
	days := DaysBetween(target, reference)
	if days >= 7 {
		return target.Format("Jan 2, 2006"), nil
	}
	return pastLabel(days), nil
}

var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts RFC3339 or a bare date. Bare dates are midnight UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty timestamp", ErrInvalidInput)
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidInput, s)
}

// FormatRelativeString parses both timestamps and formats them.
// An empty target is treated as missing, not invalid.
func FormatRelativeString(target, reference string, dir Direction) (string, error) {
	ref, err := ParseTimestamp(reference)
	if err != nil {
		return "", err
	}

	var tp *time.Time
	if strings.TrimSpace(target) != "" {
		t, err := ParseTimestamp(target)
		if err != nil {
			return "", err
		}
		tp = &t
	}

	return FormatRelative(tp, ref, dir)
}

// Greeting picks a salutation for the hour of t.
func Greeting(t time.Time) string {
	switch hour := t.Hour(); {
	case hour < 12:
		return "Good morning"
	case hour < 17:
		return "Good afternoon"
	}
	return "Good evening"
}
