package report

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/turmeiro/boxtally/internal/model"
	"github.com/turmeiro/boxtally/internal/week"
)

// WeekSummary aggregates the window's closed workdays: per-day lines with
// orchard subtotals, a per-picker fold with the nested per-date breakdown,
// and week-wide totals. Open workdays inside the window are only counted.
func (e *Engine) WeekSummary(ctx context.Context, w week.Window) (*WeekSummary, error) {
	workdays, err := e.store.WorkdaysBetween(ctx, w.Start, w.End)
	if err != nil {
		return nil, err
	}

	// The store returns workdays in date order already; keep the sort as a
	// guard so determinism never depends on a query plan.
	sort.SliceStable(workdays, func(i, j int) bool { return workdays[i].Date < workdays[j].Date })

	var closed []model.Workday
	openCount := 0
	for _, wd := range workdays {
		if wd.Closed() {
			closed = append(closed, wd)
		} else {
			openCount++
		}
	}

	summary := &WeekSummary{
		WeekStart:      w.Start,
		WeekEnd:        w.End,
		Days:           []DailyTotal{},
		Pickers:        []PickerWeek{},
		TotalValue:     decimal.Zero,
		ClosedWorkdays: len(closed),
		OpenWorkdays:   openCount,
	}
	if len(closed) == 0 {
		return summary, nil
	}

	ids := make([]string, len(closed))
	for i, wd := range closed {
		ids[i] = wd.ID
	}
	shifts, err := e.store.ShiftsByWorkdays(ctx, ids)
	if err != nil {
		return nil, err
	}
	counts, err := e.store.CountsByWorkdays(ctx, ids)
	if err != nil {
		return nil, err
	}
	idx, err := e.pickerIndex(ctx)
	if err != nil {
		return nil, err
	}

	shiftsByDay := make(map[string][]model.Shift)
	for _, sh := range shifts {
		shiftsByDay[sh.WorkdayID] = append(shiftsByDay[sh.WorkdayID], sh)
	}
	countsByDay := make(map[string][]model.Count)
	for _, c := range counts {
		countsByDay[c.WorkdayID] = append(countsByDay[c.WorkdayID], c)
	}

	aggregates := make(map[string]*PickerWeek)
	var pickerIDs []string

	for _, wd := range closed {
		day := e.daySummary(wd, shiftsByDay[wd.ID], countsByDay[wd.ID], idx)

		daily := DailyTotal{
			WorkdayID:  wd.ID,
			Date:       wd.Date,
			WeekDay:    day.WeekDay,
			TotalBoxes: day.TotalBoxes,
			TotalValue: day.TotalValue,
			Orchards:   make([]OrchardTotal, 0, len(day.Orchards)),
		}
		for _, o := range day.Orchards {
			daily.Orchards = append(daily.Orchards, OrchardTotal{
				OrchardName: o.OrchardName,
				TotalBoxes:  o.TotalBoxes,
				TotalValue:  o.TotalValue,
			})
		}
		sort.SliceStable(daily.Orchards, func(i, j int) bool {
			if daily.Orchards[i].TotalBoxes != daily.Orchards[j].TotalBoxes {
				return daily.Orchards[i].TotalBoxes > daily.Orchards[j].TotalBoxes
			}
			return e.compareNames(daily.Orchards[i].OrchardName, daily.Orchards[j].OrchardName) < 0
		})
		summary.Days = append(summary.Days, daily)

		for _, row := range day.Pickers {
			agg, ok := aggregates[row.PickerID]
			if !ok {
				agg = &PickerWeek{
					PickerID:   row.PickerID,
					Name:       row.Name,
					Nickname:   row.Nickname,
					TotalValue: decimal.Zero,
					Days:       []DailyBreakdown{},
				}
				aggregates[row.PickerID] = agg
				pickerIDs = append(pickerIDs, row.PickerID)
			}
			agg.TotalBoxes += row.Boxes
			agg.TotalValue = agg.TotalValue.Add(row.Value)
			agg.Days = append(agg.Days, DailyBreakdown{
				Date:    wd.Date,
				WeekDay: day.WeekDay,
				Boxes:   row.Boxes,
				Value:   row.Value,
			})
		}
	}

	for _, id := range pickerIDs {
		summary.Pickers = append(summary.Pickers, *aggregates[id])
	}
	sort.SliceStable(summary.Pickers, func(i, j int) bool {
		if summary.Pickers[i].TotalBoxes != summary.Pickers[j].TotalBoxes {
			return summary.Pickers[i].TotalBoxes > summary.Pickers[j].TotalBoxes
		}
		return e.compareNames(summary.Pickers[i].Name, summary.Pickers[j].Name) < 0
	})

	for _, p := range summary.Pickers {
		summary.TotalBoxes += p.TotalBoxes
		summary.TotalValue = summary.TotalValue.Add(p.TotalValue)
	}

	return summary, nil
}

// WeekSummaryForDate aggregates the week containing the given date.
func (e *Engine) WeekSummaryForDate(ctx context.Context, date string) (*WeekSummary, error) {
	w, err := week.OfDate(date)
	if err != nil {
		return nil, err
	}
	return e.WeekSummary(ctx, w)
}
