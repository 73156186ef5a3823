package report

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/turmeiro/boxtally/internal/errors"
	"github.com/turmeiro/boxtally/internal/model"
	"github.com/turmeiro/boxtally/internal/week"
)

// DaySummary aggregates one workday: per-shift detail, per-orchard grouping
// and the per-picker merge across shifts that may have had different prices.
func (e *Engine) DaySummary(ctx context.Context, workdayID string) (*DaySummary, error) {
	wd, err := e.store.GetWorkday(ctx, workdayID)
	if err != nil {
		return nil, err
	}
	if wd == nil {
		return nil, errors.NotFound("workday", workdayID)
	}

	shifts, err := e.store.ShiftsByWorkday(ctx, workdayID)
	if err != nil {
		return nil, err
	}
	counts, err := e.store.CountsByWorkday(ctx, workdayID)
	if err != nil {
		return nil, err
	}
	idx, err := e.pickerIndex(ctx)
	if err != nil {
		return nil, err
	}

	return e.daySummary(*wd, shifts, counts, idx), nil
}

// daySummary is the pure reduction; shifts must be in seq order.
func (e *Engine) daySummary(wd model.Workday, shifts []model.Shift, counts []model.Count, idx map[string]model.Picker) *DaySummary {
	summary := &DaySummary{
		WorkdayID:  wd.ID,
		Date:       wd.Date,
		WeekDay:    week.Weekday(wd.Date),
		Closed:     wd.Closed(),
		Shifts:     []ShiftSummary{},
		Orchards:   []OrchardSummary{},
		Pickers:    []PickerRow{},
		TotalValue: decimal.Zero,
	}

	for i, sh := range shifts {
		summary.Shifts = append(summary.Shifts, e.shiftSummary(sh, i+1, counts, idx))
	}

	summary.Pickers = e.mergePickerRows(summary.Shifts, byValueDesc)
	for _, row := range summary.Pickers {
		summary.TotalBoxes += row.Boxes
		summary.TotalValue = summary.TotalValue.Add(row.Value)
	}

	summary.Orchards = e.orchardSummaries(summary.Shifts)

	return summary
}

type pickerOrder int

const (
	byValueDesc pickerOrder = iota
	byBoxesDesc
)

// mergePickerRows folds shift rows into one row per picker. Iteration runs
// over the sorted shift summaries, never over a map, keeping the fold
// deterministic.
func (e *Engine) mergePickerRows(shifts []ShiftSummary, order pickerOrder) []PickerRow {
	merged := make(map[string]*PickerRow)
	var ids []string

	for _, sh := range shifts {
		for _, row := range sh.Rows {
			cur, ok := merged[row.PickerID]
			if !ok {
				cur = &PickerRow{
					PickerID: row.PickerID,
					Name:     row.Name,
					Nickname: row.Nickname,
					Value:    decimal.Zero,
				}
				merged[row.PickerID] = cur
				ids = append(ids, row.PickerID)
			}
			cur.Boxes += row.Boxes
			cur.Value = cur.Value.Add(row.Value)
		}
	}

	rows := make([]PickerRow, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, *merged[id])
	}
	sort.SliceStable(rows, func(i, j int) bool {
		switch order {
		case byBoxesDesc:
			if rows[i].Boxes != rows[j].Boxes {
				return rows[i].Boxes > rows[j].Boxes
			}
		default:
			if !rows[i].Value.Equal(rows[j].Value) {
				return rows[i].Value.GreaterThan(rows[j].Value)
			}
		}
		return e.compareNames(rows[i].Name, rows[j].Name) < 0
	})
	return rows
}

// orchardSummaries groups shift summaries by orchard name snapshot, merging
// picker rows within each group. Groups keep first-appearance order of the
// snapshot string through the day.
func (e *Engine) orchardSummaries(shifts []ShiftSummary) []OrchardSummary {
	groups := make(map[string]*OrchardSummary)
	var names []string

	for _, sh := range shifts {
		g, ok := groups[sh.OrchardName]
		if !ok {
			g = &OrchardSummary{
				OrchardName: sh.OrchardName,
				Rows:        []PickerRow{},
				TotalValue:  decimal.Zero,
			}
			groups[sh.OrchardName] = g
			names = append(names, sh.OrchardName)
		}
		g.ShiftNumbers = append(g.ShiftNumbers, sh.ShiftNumber)
		g.TotalBoxes += sh.TotalBoxes
		g.TotalValue = g.TotalValue.Add(sh.TotalValue)
	}

	for _, name := range names {
		g := groups[name]
		var member []ShiftSummary
		for _, sh := range shifts {
			if sh.OrchardName == name {
				member = append(member, sh)
			}
		}
		g.Rows = e.mergePickerRows(member, byBoxesDesc)
	}

	out := make([]OrchardSummary, 0, len(names))
	for _, name := range names {
		out = append(out, *groups[name])
	}
	return out
}
