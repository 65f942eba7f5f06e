package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"25:00", 1500, false},
		{"9:30", 0, true},
		{"09:60", 0, true},
		{"0930", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
		{"+9:00", 0, true},
		{"-0:30", 0, true},
		{"+09:30", 0, true},
		{"09:+5", 0, true},
		{" 9:30", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidClock)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseWallClockRejectsPastMidnight(t *testing.T) {
	_, err := ParseWallClock("24:00")
	assert.ErrorIs(t, err, ErrInvalidClock)

	m, err := ParseWallClock("23:00")
	require.NoError(t, err)
	assert.Equal(t, 1380, m)
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "07:05", FormatClock(425))
	assert.Equal(t, "25:00", FormatClock(1500))
}

func TestAddHours(t *testing.T) {
	got, err := AddHours("12:00", 1)
	require.NoError(t, err)
	assert.Equal(t, "13:00", got)

	got, err = AddHours("10:30", 3)
	require.NoError(t, err)
	assert.Equal(t, "13:30", got)

	// No wraparound past midnight.
	got, err = AddHours("23:00", 2)
	require.NoError(t, err)
	assert.Equal(t, "25:00", got)

	_, err = AddHours("noon", 1)
	assert.Error(t, err)
}

func TestOverlapsIsSymmetric(t *testing.T) {
	cases := [][4]int{
		{600, 720, 660, 780},
		{600, 720, 720, 780},
		{600, 720, 540, 600},
		{600, 720, 630, 690},
		{600, 720, 800, 900},
		{0, 1500, 1400, 1450},
	}
	for _, c := range cases {
		assert.Equal(t,
			Overlaps(c[0], c[1], c[2], c[3]),
			Overlaps(c[2], c[3], c[0], c[1]),
			"overlap must be symmetric for %v", c)
	}
}

func TestOverlapsHalfOpenBoundary(t *testing.T) {
	assert.False(t, Overlaps(600, 720, 720, 780), "end == start is not a conflict")
	assert.False(t, Overlaps(720, 780, 600, 720))
	assert.True(t, Overlaps(600, 721, 720, 780))
	assert.True(t, Overlaps(600, 720, 630, 690), "containment overlaps")
}

func TestIntervalTouches(t *testing.T) {
	existing := Interval{Start: 720, End: 840} // 12:00-14:00

	assert.True(t, existing.Touches(Interval{Start: 600, End: 720}), "end on existing start")
	assert.True(t, existing.Touches(Interval{Start: 840, End: 900}), "start on existing end")
	assert.True(t, existing.Touches(Interval{Start: 660, End: 900}), "encloses existing")
	assert.True(t, existing.Touches(Interval{Start: 750, End: 780}), "inside existing")
	assert.False(t, existing.Touches(Interval{Start: 600, End: 719}))
	assert.False(t, existing.Touches(Interval{Start: 841, End: 900}))
}

func TestParseInterval(t *testing.T) {
	iv, err := ParseInterval("10:00", "13:00")
	require.NoError(t, err)
	assert.Equal(t, 3.0, iv.Hours())
	assert.Equal(t, "10:00-13:00", iv.String())

	_, err = ParseInterval("13:00", "13:00")
	assert.Error(t, err)

	other, _ := ParseInterval("12:00", "14:00")
	assert.True(t, iv.Overlaps(other))
}

func TestHourIgnoresMinutes(t *testing.T) {
	h, err := Hour("13:45")
	require.NoError(t, err)
	assert.Equal(t, 13, h)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), d)
	assert.Equal(t, "2024-06-01", FormatDate(d))

	_, err = ParseDate("06/01/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)

	assert.True(t, SameDate(d, d.Add(5*time.Hour)))
	assert.False(t, SameDate(d, d.Add(25*time.Hour)))
}
