// Package workday implements the workday lifecycle, the shift manager and
// the count accumulator: everything that mutates a day's records.
package workday

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/turmeiro/boxtally/internal/errors"
	"github.com/turmeiro/boxtally/internal/events"
	"github.com/turmeiro/boxtally/internal/metrics"
	"github.com/turmeiro/boxtally/internal/model"
	"github.com/turmeiro/boxtally/internal/observability"
	"github.com/turmeiro/boxtally/internal/store"
	"github.com/turmeiro/boxtally/internal/week"
)

// Manager mutates workdays, shifts and counts through the store and
// notifies live consumers of every change.
type Manager struct {
	store store.Store
	bus   *events.Bus
	rec   metrics.Recorder
	now   func() int64
}

// NewManager creates a manager. bus may be nil when no live consumers are
// attached; rec may be nil to disable metrics.
func NewManager(st store.Store, bus *events.Bus, rec metrics.Recorder) *Manager {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Manager{
		store: st,
		bus:   bus,
		rec:   rec,
		now:   model.Now,
	}
}

// CreateWorkday creates the workday for a date together with its first shift
// and one zero count per picker, atomically. At most one workday may exist
// per date.
func (m *Manager) CreateWorkday(ctx context.Context, date string, pickerIDs []string, orchardID string, pricePerBox decimal.Decimal) (*model.Workday, *model.Shift, error) {
	if _, err := time.Parse(week.DateLayout, date); err != nil {
		return nil, nil, errors.ValidationField("date", "must be YYYY-MM-DD")
	}
	uniquePickers := dedupe(pickerIDs)
	if len(uniquePickers) == 0 {
		return nil, nil, errors.ValidationField("pickerIds", "at least one picker is required")
	}

	orchard, err := m.resolveOrchard(ctx, orchardID)
	if err != nil {
		return nil, nil, err
	}
	if !pricePerBox.IsPositive() {
		return nil, nil, errors.ValidationField("pricePerBox", "must be positive")
	}

	now := m.now()
	wd := model.Workday{
		ID:        model.NewID(),
		Date:      date,
		PickerIDs: uniquePickers,
		CreatedAt: now,
		Status:    model.StatusOpen,
	}
	first := model.Shift{
		ID:                  model.NewID(),
		WorkdayID:           wd.ID,
		OrchardID:           orchard.ID,
		OrchardNameSnapshot: orchard.Name,
		PricePerBox:         pricePerBox,
		Seq:                 1,
		CreatedAt:           now,
	}
	counts := m.seedCounts(wd.ID, first.ID, uniquePickers, now)

	if err := m.store.CreateWorkday(ctx, wd, first, counts); err != nil {
		return nil, nil, err
	}

	m.rec.IncWorkday(metrics.WorkdayCreated)
	m.rec.IncShiftCreated()
	ctx = observability.WithWorkdayID(ctx, wd.ID)
	observability.InfoContext(ctx, "workday created",
		slog.String("date", date),
		slog.Int("pickers", len(uniquePickers)),
		slog.String("orchard", orchard.Name))
	m.publish(ctx, events.Change{Kind: events.KindWorkday, ID: wd.ID, WorkdayID: wd.ID})

	return &wd, &first, nil
}

// CloseWorkday marks the workday closed. Closing an already-closed workday
// only refreshes the close timestamp; redundant calls are the caller's
// concern.
func (m *Manager) CloseWorkday(ctx context.Context, workdayID string) (*model.Workday, error) {
	wd, err := m.store.GetWorkday(ctx, workdayID)
	if err != nil {
		return nil, err
	}
	if wd == nil {
		return nil, errors.NotFound("workday", workdayID)
	}

	ctx = observability.WithWorkdayID(ctx, workdayID)
	if wd.Closed() {
		observability.WarnContext(ctx, "closing an already-closed workday")
	}

	wd.Status = model.StatusClosed
	wd.ClosedAt = m.now()
	if err := m.store.PutWorkday(ctx, *wd); err != nil {
		return nil, err
	}

	m.rec.IncWorkday(metrics.WorkdayClosed)
	observability.InfoContext(ctx, "workday closed", slog.String("date", wd.Date))
	m.publish(ctx, events.Change{Kind: events.KindWorkday, ID: wd.ID, WorkdayID: wd.ID})
	return wd, nil
}

// ReopenWorkday marks a closed workday open again for corrections. The
// original close timestamp is kept.
func (m *Manager) ReopenWorkday(ctx context.Context, workdayID string) (*model.Workday, error) {
	wd, err := m.store.GetWorkday(ctx, workdayID)
	if err != nil {
		return nil, err
	}
	if wd == nil {
		return nil, errors.NotFound("workday", workdayID)
	}

	wd.Status = model.StatusOpen
	wd.ReopenedAt = m.now()
	if err := m.store.PutWorkday(ctx, *wd); err != nil {
		return nil, err
	}

	m.rec.IncWorkday(metrics.WorkdayReopened)
	ctx = observability.WithWorkdayID(ctx, workdayID)
	observability.InfoContext(ctx, "workday reopened", slog.String("date", wd.Date))
	m.publish(ctx, events.Change{Kind: events.KindWorkday, ID: wd.ID, WorkdayID: wd.ID})
	return wd, nil
}

// OpenWorkday returns the currently open workday, or nil when every day is
// closed. At most one open workday is expected; if that expectation is ever
// violated the latest-created one wins.
func (m *Manager) OpenWorkday(ctx context.Context) (*model.Workday, error) {
	open, err := m.store.OpenWorkdays(ctx)
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, nil
	}
	if len(open) > 1 {
		observability.WarnContext(ctx, "multiple open workdays found",
			slog.Int("count", len(open)))
	}
	return &open[0], nil
}

// WorkdayByDate returns the workday for a calendar date regardless of
// status, or nil when none exists.
func (m *Manager) WorkdayByDate(ctx context.Context, date string) (*model.Workday, error) {
	return m.store.WorkdayByDate(ctx, date)
}

func (m *Manager) resolveOrchard(ctx context.Context, orchardID string) (*model.Orchard, error) {
	orchard, err := m.store.GetOrchard(ctx, orchardID)
	if err != nil {
		return nil, err
	}
	if orchard == nil {
		return nil, errors.ValidationField("orchardId", "unknown orchard")
	}
	return orchard, nil
}

func (m *Manager) seedCounts(workdayID, shiftID string, pickerIDs []string, now int64) []model.Count {
	counts := make([]model.Count, 0, len(pickerIDs))
	for _, pid := range pickerIDs {
		counts = append(counts, model.Count{
			ID:        model.NewID(),
			WorkdayID: workdayID,
			ShiftID:   shiftID,
			PickerID:  pid,
			Boxes:     0,
			UpdatedAt: now,
		})
	}
	return counts
}

func (m *Manager) publish(ctx context.Context, c events.Change) {
	if err := m.bus.Publish(ctx, c); err != nil {
		observability.WarnContext(ctx, "change notification dropped",
			slog.String("kind", string(c.Kind)), slog.Any("error", err))
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
