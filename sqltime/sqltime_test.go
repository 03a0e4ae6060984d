package sqltime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateTimeWithTSeparator(t *testing.T) {
	dt, err := Parse("2013-12-28T10:12:42")
	require.NoError(t, err)
	assert.True(t, dt.HasDate)
	assert.True(t, dt.HasTime)
	assert.Equal(t, 2013, dt.Date.Year)
	assert.Equal(t, 11, dt.Date.Month)
	assert.Equal(t, 28, dt.Date.Day)
	assert.Equal(t, 10, dt.Time.Hour)
	assert.Equal(t, 12, dt.Time.Min)
	assert.Equal(t, 42, dt.Time.Sec)
}

func TestParseDateTimeWithSpaceSeparator(t *testing.T) {
	dt, err := Parse("2013-12-28 10:12:42")
	require.NoError(t, err)
	assert.Equal(t, 2013, dt.Date.Year)
	assert.Equal(t, 11, dt.Date.Month)
	assert.Equal(t, 28, dt.Date.Day)
	assert.Equal(t, 10, dt.Time.Hour)
}

func TestParseDateOnly(t *testing.T) {
	d, err := ParseDate("2013-12-28")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2013, Month: 11, Day: 28}, d)
}

func TestParseTimeOnly(t *testing.T) {
	tm, err := ParseTime("10:12:42")
	require.NoError(t, err)
	assert.Equal(t, Time{Hour: 10, Min: 12, Sec: 42}, tm)
}

func TestParseCompressedDate(t *testing.T) {
	d, err := ParseDate("20131228")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2013, Month: 11, Day: 28}, d)
}

func TestParseCompressedTime(t *testing.T) {
	tm, err := ParseTime("101242")
	require.NoError(t, err)
	assert.Equal(t, Time{Hour: 10, Min: 12, Sec: 42}, tm)
}

func TestParseCompressedDateTime(t *testing.T) {
	dt, err := Parse("20131228101242")
	require.NoError(t, err)
	assert.True(t, dt.HasDate && dt.HasTime)
	assert.Equal(t, Date{Year: 2013, Month: 11, Day: 28}, dt.Date)
	assert.Equal(t, Time{Hour: 10, Min: 12, Sec: 42}, dt.Time)
}

func TestParseFractionIgnored(t *testing.T) {
	dt, err := Parse("2013-12-28 10:12:42.123456Z")
	require.NoError(t, err)
	assert.Equal(t, 42, dt.Time.Sec)
	assert.Equal(t, 0, dt.Time.Microseconds)
	assert.Equal(t, 0, dt.GMTOffsetSeconds)
}

func TestParseSurroundingCruft(t *testing.T) {
	dt, err := Parse("date=[2013-12-28 10:12:42]")
	require.NoError(t, err)
	assert.Equal(t, 2013, dt.Date.Year)
	assert.Equal(t, 10, dt.Time.Hour)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse("not a date at all")
	require.Error(t, err)
}

func TestParseDateRequiredButAbsent(t *testing.T) {
	_, err := ParseDate("10:12:42")
	require.Error(t, err)
}

// TestTemporalTimezoneLaw checks that times with different timezone
// offsets that name the same instant resolve to the same Unix timestamp.
func TestTemporalTimezoneLaw(t *testing.T) {
	const want = int64(1387066378)

	a, err := ToTimestamp("2013-12-15 00:12:58Z")
	require.NoError(t, err)
	assert.Equal(t, want, a)

	b, err := ToTimestamp("2013-12-14 19:12:58-05:00")
	require.NoError(t, err)
	assert.Equal(t, want, b)

	c, err := ToTimestamp("2013-12-15 05:57:58+05:45")
	require.NoError(t, err)
	assert.Equal(t, want, c)
}

// TestTemporalRoundTripLaw checks that ToString followed by ToTimestamp
// round-trips, for a sample of epoch seconds across the [0, 2^31) range.
func TestTemporalRoundTripLaw(t *testing.T) {
	samples := []int64{0, 1, 59, 3600, 86399, 86400, 1387066378, 2147483646}
	for _, epoch := range samples {
		s := ToString(epoch)
		got, err := ToTimestamp(s)
		require.NoError(t, err)
		assert.Equal(t, epoch, got, "round trip for %d via %q", epoch, s)
	}
}

func TestToStringFormat(t *testing.T) {
	assert.Equal(t, "2013-12-13 16:18:02", ToString(1386951482))
}
