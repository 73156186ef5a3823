package report

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/turmeiro/boxtally/internal/errors"
	"github.com/turmeiro/boxtally/internal/model"
	"github.com/turmeiro/boxtally/internal/store"
)

// Engine derives summaries from the store. All methods are read-only.
type Engine struct {
	store store.Store
	coll  *collate.Collator
}

// NewEngine creates an engine whose name ordering follows the given locale.
func NewEngine(st store.Store, tag language.Tag) *Engine {
	return &Engine{
		store: st,
		coll:  collate.New(tag),
	}
}

// compareNames orders picker names with locale-aware collation, so accented
// names sort where a Brazilian foreman expects them.
func (e *Engine) compareNames(a, b string) int {
	return e.coll.CompareString(a, b)
}

// pickerIndex loads all pickers keyed by id. Deleted pickers resolve to the
// unknown display name at join time.
func (e *Engine) pickerIndex(ctx context.Context) (map[string]model.Picker, error) {
	pickers, err := e.store.ListPickers(ctx, false)
	if err != nil {
		return nil, err
	}
	idx := make(map[string]model.Picker, len(pickers))
	for _, p := range pickers {
		idx[p.ID] = p
	}
	return idx, nil
}

func pickerName(idx map[string]model.Picker, id string) (name, nickname string) {
	if p, ok := idx[id]; ok {
		return p.Name, p.Nickname
	}
	return model.UnknownPickerName, ""
}

// rowValue computes boxes x price exactly.
func rowValue(boxes int64, pricePerBox decimal.Decimal) decimal.Decimal {
	return pricePerBox.Mul(decimal.NewFromInt(boxes))
}

// shiftSummary joins one shift's counts with picker names. Zero-box rows are
// excluded; rows sort by boxes descending, names ascending on ties. Counts
// are pre-sorted by id by the store, so equal (boxes, name) pairs keep a
// stable relative order across runs.
func (e *Engine) shiftSummary(sh model.Shift, number int, counts []model.Count, idx map[string]model.Picker) ShiftSummary {
	summary := ShiftSummary{
		ShiftID:     sh.ID,
		ShiftNumber: number,
		OrchardName: sh.OrchardNameSnapshot,
		PricePerBox: sh.PricePerBox,
		Rows:        []PickerRow{},
		TotalValue:  decimal.Zero,
	}

	for _, c := range counts {
		if c.ShiftID != sh.ID || c.Boxes <= 0 {
			continue
		}
		name, nickname := pickerName(idx, c.PickerID)
		row := PickerRow{
			PickerID: c.PickerID,
			Name:     name,
			Nickname: nickname,
			Boxes:    c.Boxes,
			Value:    rowValue(c.Boxes, sh.PricePerBox),
		}
		summary.Rows = append(summary.Rows, row)
		summary.TotalBoxes += row.Boxes
		summary.TotalValue = summary.TotalValue.Add(row.Value)
	}

	sort.SliceStable(summary.Rows, func(i, j int) bool {
		if summary.Rows[i].Boxes != summary.Rows[j].Boxes {
			return summary.Rows[i].Boxes > summary.Rows[j].Boxes
		}
		return e.compareNames(summary.Rows[i].Name, summary.Rows[j].Name) < 0
	})

	return summary
}

// ShiftSummary aggregates a single shift.
func (e *Engine) ShiftSummary(ctx context.Context, shiftID string) (*ShiftSummary, error) {
	sh, err := e.store.GetShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		return nil, errors.NotFound("shift", shiftID)
	}

	shifts, err := e.store.ShiftsByWorkday(ctx, sh.WorkdayID)
	if err != nil {
		return nil, err
	}
	number := 0
	for i, s := range shifts {
		if s.ID == shiftID {
			number = i + 1
		}
	}

	counts, err := e.store.CountsByShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	idx, err := e.pickerIndex(ctx)
	if err != nil {
		return nil, err
	}

	summary := e.shiftSummary(*sh, number, counts, idx)
	return &summary, nil
}
