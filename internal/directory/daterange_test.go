package directory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var karachi = time.FixedZone("PKT", 5*60*60)

func at(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, karachi)
}

func TestResolveNamedRanges(t *testing.T) {
	now := at(2025, time.March, 15, 10, 30)

	tests := []struct {
		r        Range
		from, to time.Time
	}{
		{RangeThisYear, at(2025, time.January, 1, 0, 0), time.Date(2025, time.December, 31, 23, 59, 59, 0, karachi)},
		{RangeLastYear, at(2024, time.January, 1, 0, 0), time.Date(2024, time.December, 31, 23, 59, 59, 0, karachi)},
		{RangeThisMonth, at(2025, time.March, 1, 0, 0), time.Date(2025, time.March, 31, 23, 59, 59, 0, karachi)},
		{RangeLastMonth, at(2025, time.February, 1, 0, 0), time.Date(2025, time.February, 28, 23, 59, 59, 0, karachi)},
		{RangeLast3Months, at(2024, time.December, 15, 10, 30), now},
		{RangeLast6Months, at(2024, time.September, 15, 10, 30), now},
	}
	for _, tt := range tests {
		t.Run(string(tt.r), func(t *testing.T) {
			b := Resolve(tt.r, nil, nil, now)
			require.NotNil(t, b.From)
			require.NotNil(t, b.To)
			assert.True(t, tt.from.Equal(*b.From), "from = %v", b.From)
			assert.True(t, tt.to.Equal(*b.To), "to = %v", b.To)
			assert.False(t, b.From.After(*b.To))
		})
	}
}

func TestResolveLastMonthInJanuary(t *testing.T) {
	b := Resolve(RangeLastMonth, nil, nil, at(2025, time.January, 10, 9, 0))
	require.NotNil(t, b.From)
	assert.True(t, at(2024, time.December, 1, 0, 0).Equal(*b.From))
	assert.Equal(t, 31, b.To.Day())
	assert.Equal(t, time.December, b.To.Month())
}

func TestResolveLifetimeIsUnbounded(t *testing.T) {
	b := Resolve(RangeLifetime, nil, nil, time.Now())
	assert.True(t, b.Unbounded())
	assert.True(t, b.Contains(time.Time{}))
}

func TestResolveCustom(t *testing.T) {
	now := at(2025, time.March, 15, 10, 30)
	from := at(2025, time.February, 3, 17, 45)
	to := at(2025, time.February, 10, 8, 0)

	t.Run("both ends", func(t *testing.T) {
		b := Resolve(RangeCustom, &from, &to, now)
		assert.True(t, at(2025, time.February, 3, 0, 0).Equal(*b.From))
		assert.True(t, time.Date(2025, time.February, 10, 23, 59, 59, int(999*time.Millisecond), karachi).Equal(*b.To))
		assert.True(t, b.Contains(at(2025, time.February, 10, 23, 0)), "end date is inclusive")
		assert.False(t, b.Contains(at(2025, time.February, 11, 0, 0)))
	})

	t.Run("from only", func(t *testing.T) {
		b := Resolve(RangeCustom, &from, nil, now)
		assert.Nil(t, b.To)
		assert.True(t, b.Contains(at(2030, time.January, 1, 0, 0)))
		assert.False(t, b.Contains(at(2025, time.February, 2, 23, 59)))
	})

	t.Run("to only", func(t *testing.T) {
		b := Resolve(RangeCustom, nil, &to, now)
		assert.Nil(t, b.From)
		assert.True(t, b.Contains(at(1999, time.January, 1, 0, 0)))
		assert.False(t, b.Contains(at(2025, time.February, 11, 0, 1)))
	})

	t.Run("neither", func(t *testing.T) {
		assert.True(t, Resolve(RangeCustom, nil, nil, now).Unbounded())
	})
}

func TestBoundsExcludesUndatedShows(t *testing.T) {
	b := Resolve(RangeThisYear, nil, nil, at(2025, time.March, 15, 10, 30))
	assert.False(t, b.Contains(time.Time{}))
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("")
	require.NoError(t, err)
	assert.Equal(t, RangeLifetime, r)

	r, err = ParseRange(" This_Month ")
	require.NoError(t, err)
	assert.Equal(t, RangeThisMonth, r)

	_, err = ParseRange("fortnight")
	assert.ErrorIs(t, err, ErrUnknownRange)
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2025-02-03", karachi)
	require.NoError(t, err)
	assert.True(t, at(2025, time.February, 3, 0, 0).Equal(*d))

	d, err = ParseDay("  ", karachi)
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = ParseDay("03/02/2025", karachi)
	assert.ErrorIs(t, err, ErrInvalidDate)
}
