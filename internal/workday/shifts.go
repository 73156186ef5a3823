package workday

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/turmeiro/boxtally/internal/errors"
	"github.com/turmeiro/boxtally/internal/events"
	"github.com/turmeiro/boxtally/internal/model"
	"github.com/turmeiro/boxtally/internal/observability"
)

// CreateShift starts a new counting round within a workday: the crew moved
// to another orchard or the price changed. Prior shifts and their counts are
// left untouched. One zero count per picker in the workday's crew is created
// with the shift.
func (m *Manager) CreateShift(ctx context.Context, workdayID, orchardID string, pricePerBox decimal.Decimal) (*model.Shift, error) {
	wd, err := m.store.GetWorkday(ctx, workdayID)
	if err != nil {
		return nil, err
	}
	if wd == nil {
		return nil, errors.NotFound("workday", workdayID)
	}

	orchard, err := m.resolveOrchard(ctx, orchardID)
	if err != nil {
		return nil, err
	}
	if !pricePerBox.IsPositive() {
		return nil, errors.ValidationField("pricePerBox", "must be positive")
	}

	shifts, err := m.store.ShiftsByWorkday(ctx, workdayID)
	if err != nil {
		return nil, err
	}
	var maxSeq int64
	for _, s := range shifts {
		if s.Seq > maxSeq {
			maxSeq = s.Seq
		}
	}

	now := m.now()
	sh := model.Shift{
		ID:                  model.NewID(),
		WorkdayID:           workdayID,
		OrchardID:           orchard.ID,
		OrchardNameSnapshot: orchard.Name,
		PricePerBox:         pricePerBox,
		Seq:                 maxSeq + 1,
		CreatedAt:           now,
	}
	counts := m.seedCounts(workdayID, sh.ID, wd.PickerIDs, now)

	if err := m.store.CreateShift(ctx, sh, counts); err != nil {
		return nil, err
	}

	m.rec.IncShiftCreated()
	ctx = observability.WithWorkdayID(ctx, workdayID)
	observability.InfoContext(ctx, "shift created",
		slog.String("orchard", orchard.Name),
		slog.String("price_per_box", pricePerBox.String()),
		slog.Int64("seq", sh.Seq))
	m.publish(ctx, events.Change{Kind: events.KindShift, ID: sh.ID, WorkdayID: workdayID})

	return &sh, nil
}

// ActiveShift returns the shift currently being marked: the one with the
// highest sequence number. It returns nil only for a workday with no shifts,
// which cannot happen for workdays created through CreateWorkday.
func (m *Manager) ActiveShift(ctx context.Context, workdayID string) (*model.Shift, error) {
	shifts, err := m.store.ShiftsByWorkday(ctx, workdayID)
	if err != nil {
		return nil, err
	}
	if len(shifts) == 0 {
		return nil, nil
	}
	return &shifts[len(shifts)-1], nil
}

// ShiftNumber returns the 1-based display position of a shift within its
// workday, in creation order.
func (m *Manager) ShiftNumber(ctx context.Context, workdayID, shiftID string) (int, error) {
	shifts, err := m.store.ShiftsByWorkday(ctx, workdayID)
	if err != nil {
		return 0, err
	}
	for i, s := range shifts {
		if s.ID == shiftID {
			return i + 1, nil
		}
	}
	return 0, errors.NotFound("shift", shiftID).WithContext("workday_id", workdayID)
}
