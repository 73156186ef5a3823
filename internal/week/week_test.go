package week

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turmeiro/boxtally/internal/errors"
)

func TestOfDateMondayStart(t *testing.T) {
	cases := []struct {
		date  string
		start string
		end   string
	}{
		{"2024-06-10", "2024-06-10", "2024-06-16"}, // a Monday maps to itself
		{"2024-06-12", "2024-06-10", "2024-06-16"}, // midweek
		{"2024-06-16", "2024-06-10", "2024-06-16"}, // Sunday belongs to the preceding Monday
		{"2024-06-17", "2024-06-17", "2024-06-23"}, // next Monday starts a new week
		{"2024-12-31", "2024-12-30", "2025-01-05"}, // year boundary
	}

	for _, tc := range cases {
		w, err := OfDate(tc.date)
		require.NoError(t, err)
		assert.Equal(t, tc.start, w.Start, "start for %s", tc.date)
		assert.Equal(t, tc.end, w.End, "end for %s", tc.date)
		assert.Equal(t, tc.start, w.ID())
		assert.True(t, w.Contains(tc.date))
	}
}

func TestOfDateInvalid(t *testing.T) {
	_, err := OfDate("10/06/2024")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestPreviousNext(t *testing.T) {
	w, err := OfDate("2024-06-12")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-03", w.Previous().Start)
	assert.Equal(t, "2024-06-17", w.Next().Start)
	assert.Equal(t, w, w.Next().Previous())
}

func TestContainsBoundaries(t *testing.T) {
	w := Of(time.Date(2024, 6, 13, 15, 0, 0, 0, time.UTC))
	assert.True(t, w.Contains("2024-06-10"))
	assert.True(t, w.Contains("2024-06-16"))
	assert.False(t, w.Contains("2024-06-09"))
	assert.False(t, w.Contains("2024-06-17"))
}

func TestWeekday(t *testing.T) {
	assert.Equal(t, "segunda-feira", Weekday("2024-06-10"))
	assert.Equal(t, "domingo", Weekday("2024-06-16"))
	assert.Equal(t, "", Weekday("not-a-date"))
}
