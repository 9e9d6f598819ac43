package types

import (
	"fmt"
	"strings"
)

// =============================================================================
// CALENDAR
// =============================================================================

// Calendar tags which calendar a date column is written in.
type Calendar uint8

const (
	// CalendarLocal is the Jalali (Solar Hijri) calendar.
	CalendarLocal Calendar = iota

	// CalendarStandard is the Gregorian calendar.
	CalendarStandard
)

// String returns the canonical text form.
func (c Calendar) String() string {
	switch c {
	case CalendarLocal:
		return "local"
	case CalendarStandard:
		return "standard"
	default:
		return fmt.Sprintf("calendar(%d)", uint8(c))
	}
}

// ParseCalendar accepts the canonical names and the usual aliases.
func ParseCalendar(s string) (Calendar, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "local", "jalali", "shamsi", "persian":
		return CalendarLocal, nil
	case "standard", "gregorian", "miladi":
		return CalendarStandard, nil
	default:
		return 0, fmt.Errorf("unknown calendar %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Calendar) MarshalText() ([]byte, error) {
	if c > CalendarStandard {
		return nil, fmt.Errorf("unknown calendar %d", uint8(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Calendar) UnmarshalText(text []byte) error {
	parsed, err := ParseCalendar(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// =============================================================================
// OPERATION CONFIGURATION
// =============================================================================
// These types are serializable so that the same configuration that drives a
// run can be stored in a job file or handed to another tool.

// DatePairSpec selects two date columns whose day difference is computed.
type DatePairSpec struct {
	StartColumn   string   `yaml:"start_column" json:"start_column"`
	EndColumn     string   `yaml:"end_column" json:"end_column"`
	StartCalendar Calendar `yaml:"start_calendar" json:"start_calendar"`
	EndCalendar   Calendar `yaml:"end_calendar" json:"end_calendar"`
}

// ComparisonPairSpec names a left column and the right column it is
// compared against.
type ComparisonPairSpec struct {
	LeftColumn  string `yaml:"left_column" json:"left_column"`
	RightColumn string `yaml:"right_column" json:"right_column"`
}

// JoinKeySpec names the key column on each side of a two-table operation.
type JoinKeySpec struct {
	LeftKey  string `yaml:"left_key" json:"left_key"`
	RightKey string `yaml:"right_key" json:"right_key"`
}
