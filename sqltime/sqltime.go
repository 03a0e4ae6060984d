// Package sqltime parses the ISO-8601-ish date/time/datetime/timestamp
// strings SQL backends hand back as column text, and formats Unix
// timestamps the other way. It is the Go rendering of libzdb's
// system/Time.c and db/SQLDateTime.h (original_source/).
package sqltime

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Date is a broken-down SQL DATE value. Month is 0-11 (not 1-12), matching
// the source's struct tm convention; Year is the literal year.
type Date struct {
	Year  int
	Month int // 0-11
	Day   int // 1-31
}

// Time is a broken-down SQL TIME value.
type Time struct {
	Hour         int // 0-23
	Min          int // 0-59
	Sec          int // 0-60
	Microseconds int // always 0: sub-second fractions are parsed and discarded
}

// DateTime is a broken-down SQL DATETIME/TIMESTAMP value.
type DateTime struct {
	Date Date
	Time Time

	// GMTOffsetSeconds is the signed UTC offset carried by an explicit
	// timezone suffix ("Z" => 0, "+05:45" => 20700, "-05:00" => -18000).
	// 0 if the source string carried no timezone (values are then assumed
	// UTC).
	GMTOffsetSeconds int

	HasDate bool
	HasTime bool
}

var (
	// reTZ only recognizes a timezone suffix when it directly follows a
	// ":SS" seconds token (optionally with a fractional part): this keeps
	// it from matching the trailing "-DD" of a bare "YYYY-MM-DD" date,
	// which has no preceding colon for it to anchor on.
	reTZ          = regexp.MustCompile(`(?i)(:\d{2}(?:\.\d+)?)(?:(Z)|([+-])(\d{2}):?(\d{2})?)$`)
	reCombined    = regexp.MustCompile(`(?:\D|^)(\d{14})(?:\D|$)`)
	reDateSep     = regexp.MustCompile(`(?:\D|^)(\d{4})-(\d{2})-(\d{2})(?:\D|$)`)
	reDateCompact = regexp.MustCompile(`(?:\D|^)(\d{8})(?:\D|$)`)
	reTimeSep     = regexp.MustCompile(`(?:\D|^)(\d{2}):(\d{2}):(\d{2})(?:\.\d+)?(?:\D|$)`)
	reTimeCompact = regexp.MustCompile(`(?:\D|^)(\d{6})(?:\D|$)`)
)

// ErrInvalidTemporal is wrapped by every parse failure, mirroring the
// source's "NumberFormatException or similar".
type ErrInvalidTemporal struct {
	Input string
}

func (e *ErrInvalidTemporal) Error() string {
	return fmt.Sprintf("dbpool: NumberFormatException: invalid temporal value %q", e.Input)
}

// Parse parses s into a DateTime, setting HasDate/HasTime according to
// which tokens were found. It never returns a partial success silently: if
// neither a date nor a time token can be confidently located, it errors.
func Parse(s string) (DateTime, error) {
	var dt DateTime

	remainder, offset, hadTZ := splitTimezone(s)
	dt.GMTOffsetSeconds = offset
	_ = hadTZ

	if m := reCombined.FindStringSubmatch(remainder); m != nil {
		digits := m[1]
		if err := fillDateFromDigits(&dt.Date, digits[0:8]); err != nil {
			return DateTime{}, &ErrInvalidTemporal{Input: s}
		}
		if err := fillTimeFromDigits(&dt.Time, digits[8:14]); err != nil {
			return DateTime{}, &ErrInvalidTemporal{Input: s}
		}
		dt.HasDate, dt.HasTime = true, true
		return dt, nil
	}

	if m := reDateSep.FindStringSubmatch(remainder); m != nil {
		if err := fillDate(&dt.Date, m[1], m[2], m[3]); err != nil {
			return DateTime{}, &ErrInvalidTemporal{Input: s}
		}
		dt.HasDate = true
	} else if m := reDateCompact.FindStringSubmatch(remainder); m != nil {
		if err := fillDateFromDigits(&dt.Date, m[1]); err != nil {
			return DateTime{}, &ErrInvalidTemporal{Input: s}
		}
		dt.HasDate = true
	}

	if m := reTimeSep.FindStringSubmatch(remainder); m != nil {
		if err := fillTime(&dt.Time, m[1], m[2], m[3]); err != nil {
			return DateTime{}, &ErrInvalidTemporal{Input: s}
		}
		dt.HasTime = true
	} else if m := reTimeCompact.FindStringSubmatch(remainder); m != nil {
		if err := fillTimeFromDigits(&dt.Time, m[1]); err != nil {
			return DateTime{}, &ErrInvalidTemporal{Input: s}
		}
		dt.HasTime = true
	}

	if !dt.HasDate && !dt.HasTime {
		return DateTime{}, &ErrInvalidTemporal{Input: s}
	}
	return dt, nil
}

// ParseDate parses s, requiring a date token to be present.
func ParseDate(s string) (Date, error) {
	dt, err := Parse(s)
	if err != nil || !dt.HasDate {
		return Date{}, &ErrInvalidTemporal{Input: s}
	}
	return dt.Date, nil
}

// ParseTime parses s, requiring a time token to be present.
func ParseTime(s string) (Time, error) {
	dt, err := Parse(s)
	if err != nil || !dt.HasTime {
		return Time{}, &ErrInvalidTemporal{Input: s}
	}
	return dt.Time, nil
}

// ToTimestamp converts s to a Unix epoch-seconds value in UTC, subtracting
// any explicit timezone offset the string carried:
//
//	ToTimestamp("2013-12-15 00:12:58Z")      == 1387066378
//	ToTimestamp("2013-12-14 19:12:58-05:00") == 1387066378
//	ToTimestamp("2013-12-15 05:57:58+05:45") == 1387066378
func ToTimestamp(s string) (int64, error) {
	dt, err := Parse(s)
	if err != nil {
		return 0, err
	}
	y, mo, d := dt.Date.Year, dt.Date.Month, dt.Date.Day
	if !dt.HasDate {
		y, mo, d = 1970, 0, 1
	}
	h, mi, se := dt.Time.Hour, dt.Time.Min, dt.Time.Sec
	t := time.Date(y, time.Month(mo+1), d, h, mi, se, 0, time.UTC)
	return t.Unix() - int64(dt.GMTOffsetSeconds), nil
}

// ToString formats epoch (Unix seconds, UTC) as "YYYY-MM-DD HH:MM:SS",
// mirroring Time_toString's fixed 19-character layout (plus NUL in the
// source's 20-byte buffer, irrelevant in Go).
func ToString(epoch int64) string {
	return time.Unix(epoch, 0).UTC().Format("2006-01-02 15:04:05")
}

func splitTimezone(s string) (remainder string, offsetSeconds int, hadTZ bool) {
	m := reTZ.FindStringSubmatchIndex(s)
	if m == nil {
		return s, 0, false
	}
	// m[2]:m[3] is the ":SS" (plus optional fraction) seconds token the tz
	// suffix had to follow; keep it in the remainder and cut only the
	// suffix itself.
	remainder = s[:m[3]]
	if m[4] != -1 { // "Z" branch
		return remainder, 0, true
	}
	sign := s[m[6]:m[7]]
	hh, _ := strconv.Atoi(s[m[8]:m[9]])
	mm := 0
	if m[10] != -1 {
		mm, _ = strconv.Atoi(s[m[10]:m[11]])
	}
	total := hh*3600 + mm*60
	if sign == "-" {
		total = -total
	}
	return remainder, total, true
}

func fillDate(d *Date, yearS, monthS, dayS string) error {
	year, err1 := strconv.Atoi(yearS)
	month, err2 := strconv.Atoi(monthS)
	day, err3 := strconv.Atoi(dayS)
	if err1 != nil || err2 != nil || err3 != nil || month < 1 || month > 12 || day < 1 || day > 31 {
		return fmt.Errorf("invalid date")
	}
	d.Year, d.Month, d.Day = year, month-1, day
	return nil
}

func fillDateFromDigits(d *Date, digits string) error {
	if len(digits) != 8 {
		return fmt.Errorf("invalid compact date")
	}
	return fillDate(d, digits[0:4], digits[4:6], digits[6:8])
}

func fillTime(t *Time, hourS, minS, secS string) error {
	hour, err1 := strconv.Atoi(hourS)
	min, err2 := strconv.Atoi(minS)
	sec, err3 := strconv.Atoi(secS)
	if err1 != nil || err2 != nil || err3 != nil || hour < 0 || hour > 23 || min < 0 || min > 59 || sec < 0 || sec > 60 {
		return fmt.Errorf("invalid time")
	}
	t.Hour, t.Min, t.Sec = hour, min, sec
	return nil
}

func fillTimeFromDigits(t *Time, digits string) error {
	if len(digits) != 6 {
		return fmt.Errorf("invalid compact time")
	}
	return fillTime(t, digits[0:2], digits[2:4], digits[4:6])
}
