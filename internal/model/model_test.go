package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkdayClosedRule(t *testing.T) {
	cases := []struct {
		name    string
		workday Workday
		closed  bool
	}{
		{"explicit open", Workday{Status: StatusOpen}, false},
		{"explicit closed", Workday{Status: StatusClosed}, true},
		{"explicit open with stale closedAt", Workday{Status: StatusOpen, ClosedAt: 123}, false},
		{"legacy record without status", Workday{ClosedAt: 123}, true},
		{"legacy record never closed", Workday{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.closed, tc.workday.Closed())
		})
	}
}

func TestShiftJSONRoundTrip(t *testing.T) {
	shift := Shift{
		ID:                  NewID(),
		WorkdayID:           "wd-1",
		OrchardID:           "o-1",
		OrchardNameSnapshot: "Talhão 1",
		PricePerBox:         decimal.RequireFromString("2.50"),
		Seq:                 2,
		CreatedAt:           1718000000000,
	}

	raw, err := json.Marshal(shift)
	require.NoError(t, err)

	var back Shift
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, shift.PricePerBox.Equal(back.PricePerBox))
	assert.Equal(t, shift.OrchardNameSnapshot, back.OrchardNameSnapshot)
	assert.Equal(t, shift.Seq, back.Seq)
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := NewID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
