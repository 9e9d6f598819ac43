// =============================================================================
// sheetops - Calendar Conversion
// =============================================================================
//
// This module converts dates written in the Local (Jalali) calendar and the
// Standard (Gregorian) calendar into one absolute day count, so that day
// differences can be taken across calendars.
//
// CONVERSION PIPELINE:
//   1. ParseDate splits the text into (year, month, day) and validates it
//   2. ToGregorian maps a Local date onto the Gregorian calendar
//   3. ToAbsoluteDay counts days since 1970-01-01 (UTC midnight)
//
// LIMITATIONS:
//   Local validation is deliberately coarse. Any day above 30 is rejected
//   for months after the sixth, but Esfand 30 is accepted in every year and
//   converts to the first day of the next year when the year is not leap.
//
// =============================================================================

package calendar

import (
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/sheetops/internal/types"
)

// =============================================================================
// DATE STRUCTURE
// =============================================================================

// Date is a calendar date with no time of day. The calendar it belongs to
// travels next to it, never inside it.
type Date struct {
	Year  int
	Month int
	Day   int
}

// String formats the date as YYYY/MM/DD.
func (d Date) String() string {
	return pad(d.Year, 4) + "/" + pad(d.Month, 2) + "/" + pad(d.Day, 2)
}

func pad(n, width int) string {
	s := strconv.Itoa(n)
	for len(s) < width {
		s = "0" + s
	}
	return s
}

// =============================================================================
// LOCAL CALENDAR LIMITS
// =============================================================================

const (
	// MinLocalYear and MaxLocalYear bound the accepted Local years.
	MinLocalYear = 1000
	MaxLocalYear = 1500

	// localEpochYear is subtracted from a Local year before day counting.
	localEpochYear = 979

	// gregorianEpochYear is the start of the 400-year cycle the Gregorian
	// day number is decomposed against.
	gregorianEpochYear = 1600

	// localToGregorianOffset is the day distance between the two epochs.
	localToGregorianOffset = 79
)

const (
	daysPer400Years = 146097 // 365*400 + 400/4 - 400/100 + 400/400
	daysPer100Years = 36524  // 365*100 + 100/4 - 100/100
	daysPer4Years   = 1461   // 365*4 + 4/4
	daysPerYear     = 365
	daysPer33Years  = 12053 // 365*33 + 32/4
)

var (
	gregorianMonthDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	localMonthDays     = [12]int{31, 31, 31, 31, 31, 31, 30, 30, 30, 30, 30, 29}
)

// =============================================================================
// PARSING
// =============================================================================

// ParseDate parses text written in calendar. The second result is false
// when the text is not a date; callers decide how to report that.
//
// Local dates must be three integers separated by "-" or "/" (in Y/M/D
// order). Standard dates go through ParseStandard.
func ParseDate(text string, cal types.Calendar) (Date, bool) {
	switch cal {
	case types.CalendarLocal:
		return ParseLocal(text)
	case types.CalendarStandard:
		t, ok := ParseStandard(text)
		if !ok {
			return Date{}, false
		}
		return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, true
	default:
		return Date{}, false
	}
}

// ParseLocal parses a Jalali date such as "1400/01/01" or "1400-1-1".
func ParseLocal(text string) (Date, bool) {
	parts := splitDate(strings.TrimSpace(text))
	if len(parts) != 3 {
		return Date{}, false
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Date{}, false
		}
		nums[i] = n
	}

	d := Date{Year: nums[0], Month: nums[1], Day: nums[2]}
	if !ValidLocal(d) {
		return Date{}, false
	}
	return d, true
}

// ValidLocal applies the structural Local-date checks.
func ValidLocal(d Date) bool {
	if d.Year < MinLocalYear || d.Year > MaxLocalYear {
		return false
	}
	if d.Month < 1 || d.Month > 12 {
		return false
	}
	if d.Day < 1 || d.Day > 31 {
		return false
	}
	// Months after the sixth have at most 30 days.
	if d.Month > 6 && d.Day > 30 {
		return false
	}
	return true
}

func splitDate(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "/", "-"), "-")
}

// =============================================================================
// CONVERSION
// =============================================================================

// ToGregorian returns the Gregorian form of d. Standard dates pass through
// after a validity check.
func ToGregorian(d Date, cal types.Calendar) (Date, bool) {
	switch cal {
	case types.CalendarLocal:
		if !ValidLocal(d) {
			return Date{}, false
		}
		return LocalToGregorian(d), true
	case types.CalendarStandard:
		t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
		if t.Year() != d.Year || int(t.Month()) != d.Month || t.Day() != d.Day {
			return Date{}, false
		}
		return d, true
	default:
		return Date{}, false
	}
}

// ToAbsoluteDay returns the number of days between 1970-01-01 and d.
func ToAbsoluteDay(d Date, cal types.Calendar) (int, bool) {
	g, ok := ToGregorian(d, cal)
	if !ok {
		return 0, false
	}
	return AbsoluteDay(g), true
}

// AbsoluteDay counts days since 1970-01-01 for a Gregorian date.
func AbsoluteDay(g Date) int {
	t := time.Date(g.Year, time.Month(g.Month), g.Day, 0, 0, 0, 0, time.UTC)
	return int(t.Unix() / 86400)
}

// LocalToGregorian converts a structurally valid Jalali date using the
// fixed-cycle arithmetic: count days from the Jalali epoch (33-year rule),
// shift to the Gregorian epoch, then peel off 400/100/4/1-year cycles.
func LocalToGregorian(d Date) Date {
	jy := d.Year - localEpochYear
	jm := d.Month - 1
	jd := d.Day - 1

	jDayNo := daysPerYear*jy + (jy/33)*8 + ((jy%33)+3)/4
	for i := 0; i < jm; i++ {
		jDayNo += localMonthDays[i]
	}
	jDayNo += jd

	gDayNo := jDayNo + localToGregorianOffset

	gy := gregorianEpochYear + 400*(gDayNo/daysPer400Years)
	gDayNo %= daysPer400Years

	leap := true
	if gDayNo >= daysPer100Years+1 {
		gDayNo--
		gy += 100 * (gDayNo / daysPer100Years)
		gDayNo %= daysPer100Years

		if gDayNo >= daysPerYear {
			gDayNo++
		} else {
			leap = false
		}
	}

	gy += 4 * (gDayNo / daysPer4Years)
	gDayNo %= daysPer4Years

	if gDayNo >= daysPerYear+1 {
		leap = false
		gDayNo--
		gy += gDayNo / daysPerYear
		gDayNo %= daysPerYear
	}

	gm := 0
	for ; gm < 11; gm++ {
		length := gregorianMonthDays[gm]
		if gm == 1 && leap {
			length++
		}
		if gDayNo < length {
			break
		}
		gDayNo -= length
	}

	return Date{Year: gy, Month: gm + 1, Day: gDayNo + 1}
}

// GregorianToLocal is the inverse of LocalToGregorian.
func GregorianToLocal(g Date) Date {
	gy := g.Year - gregorianEpochYear
	gm := g.Month - 1
	gd := g.Day - 1

	gDayNo := daysPerYear*gy + (gy+3)/4 - (gy+99)/100 + (gy+399)/400
	for i := 0; i < gm; i++ {
		gDayNo += gregorianMonthDays[i]
	}
	if gm > 1 && isGregorianLeap(g.Year) {
		gDayNo++
	}
	gDayNo += gd

	jDayNo := gDayNo - localToGregorianOffset

	cycles := jDayNo / daysPer33Years
	jDayNo %= daysPer33Years

	jy := localEpochYear + 33*cycles + 4*(jDayNo/daysPer4Years)
	jDayNo %= daysPer4Years

	if jDayNo >= daysPerYear+1 {
		jy += (jDayNo - 1) / daysPerYear
		jDayNo = (jDayNo - 1) % daysPerYear
	}

	jm := 0
	for ; jm < 11 && jDayNo >= localMonthDays[jm]; jm++ {
		jDayNo -= localMonthDays[jm]
	}

	return Date{Year: jy, Month: jm + 1, Day: jDayNo + 1}
}

func isGregorianLeap(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}
