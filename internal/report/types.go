// Package report is the aggregation engine: pure, read-only derivation of
// shift, day and week summaries from the stored records.
//
// Re-running any aggregation over unchanged records yields identical results
// including ordering: inputs are sorted before reduction and monetary values
// accumulate as exact decimals, so neither store iteration order nor
// floating-point summation order can leak into a report.
package report

import (
	"github.com/shopspring/decimal"

	"github.com/turmeiro/boxtally/internal/week"
)

// PickerRow is one picker's line in a shift, orchard or day view.
type PickerRow struct {
	PickerID string          `json:"pickerId"`
	Name     string          `json:"name"`
	Nickname string          `json:"nickname,omitempty"`
	Boxes    int64           `json:"boxes"`
	Value    decimal.Decimal `json:"value"`
}

// ShiftSummary is the aggregation of one shift: its counts joined with
// picker names, zero-box rows excluded.
type ShiftSummary struct {
	ShiftID     string          `json:"shiftId"`
	ShiftNumber int             `json:"shiftNumber"`
	OrchardName string          `json:"orchardName"`
	PricePerBox decimal.Decimal `json:"pricePerBox"`
	Rows        []PickerRow     `json:"rows"`
	TotalBoxes  int64           `json:"totalBoxes"`
	TotalValue  decimal.Decimal `json:"totalValue"`
}

// OrchardSummary groups a day's shifts by orchard name snapshot. Two shifts
// merge only when their snapshots are identical strings; a renamed orchard
// keeps its historical groups apart.
type OrchardSummary struct {
	OrchardName  string      `json:"orchardName"`
	ShiftNumbers []int       `json:"shiftNumbers"`
	Rows         []PickerRow `json:"rows"`
	TotalBoxes   int64       `json:"totalBoxes"`
	TotalValue   decimal.Decimal `json:"totalValue"`
}

// DaySummary is the aggregation of one workday across all its shifts.
type DaySummary struct {
	WorkdayID  string           `json:"workdayId"`
	Date       string           `json:"date"`
	WeekDay    string           `json:"weekDay"`
	Closed     bool             `json:"closed"`
	Shifts     []ShiftSummary   `json:"shifts"`
	Orchards   []OrchardSummary `json:"orchards"`
	Pickers    []PickerRow      `json:"pickers"`
	TotalBoxes int64            `json:"totalBoxes"`
	TotalValue decimal.Decimal  `json:"totalValue"`
}

// OrchardTotal is a per-location subtotal inside a week's daily line.
type OrchardTotal struct {
	OrchardName string          `json:"orchardName"`
	TotalBoxes  int64           `json:"totalBoxes"`
	TotalValue  decimal.Decimal `json:"totalValue"`
}

// DailyTotal is one closed workday's line in the week view.
type DailyTotal struct {
	WorkdayID  string          `json:"workdayId"`
	Date       string          `json:"date"`
	WeekDay    string          `json:"weekDay"`
	TotalBoxes int64           `json:"totalBoxes"`
	TotalValue decimal.Decimal `json:"totalValue"`
	Orchards   []OrchardTotal  `json:"orchards"`
}

// DailyBreakdown is one date's production inside a picker's week aggregate.
type DailyBreakdown struct {
	Date    string          `json:"date"`
	WeekDay string          `json:"weekDay"`
	Boxes   int64           `json:"boxes"`
	Value   decimal.Decimal `json:"value"`
}

// PickerWeek is one picker's aggregate across a week's closed workdays,
// with the nested per-date breakdown.
type PickerWeek struct {
	PickerID   string           `json:"pickerId"`
	Name       string           `json:"name"`
	Nickname   string           `json:"nickname,omitempty"`
	TotalBoxes int64            `json:"totalBoxes"`
	TotalValue decimal.Decimal  `json:"totalValue"`
	Days       []DailyBreakdown `json:"dailyBreakdown"`
}

// WeekSummary is the aggregation of a calendar week's closed workdays. Open
// workdays in the window contribute nothing to the totals; their number is
// surfaced for operator awareness.
type WeekSummary struct {
	WeekStart      string       `json:"weekStart"`
	WeekEnd        string       `json:"weekEnd"`
	Days           []DailyTotal `json:"dailySummaries"`
	Pickers        []PickerWeek `json:"pickersAggregated"`
	TotalBoxes     int64        `json:"totalWeekBoxes"`
	TotalValue     decimal.Decimal `json:"totalWeekValue"`
	ClosedWorkdays int          `json:"closedWorkdaysCount"`
	OpenWorkdays   int          `json:"openWorkdaysCount"`
}

// Window returns the week window the summary covers.
func (s *WeekSummary) Window() week.Window {
	return week.Window{Start: s.WeekStart, End: s.WeekEnd}
}
