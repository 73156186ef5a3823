// Package closure manages weekly closure records: freezing a calendar week's
// aggregation into a snapshot and reopening it for corrections.
package closure

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/turmeiro/boxtally/internal/errors"
	"github.com/turmeiro/boxtally/internal/events"
	"github.com/turmeiro/boxtally/internal/metrics"
	"github.com/turmeiro/boxtally/internal/model"
	"github.com/turmeiro/boxtally/internal/observability"
	"github.com/turmeiro/boxtally/internal/report"
	"github.com/turmeiro/boxtally/internal/store"
	"github.com/turmeiro/boxtally/internal/week"
)

// Manager closes and reopens calendar weeks. The snapshot stored at close
// time is the authoritative record for payout; later workday edits never
// touch it until the week is explicitly re-closed.
type Manager struct {
	store  store.Store
	engine *report.Engine
	bus    *events.Bus
	rec    metrics.Recorder
	now    func() int64
}

func NewManager(st store.Store, engine *report.Engine, bus *events.Bus, rec metrics.Recorder) *Manager {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Manager{store: st, engine: engine, bus: bus, rec: rec, now: model.Now}
}

// State is the closure status of one week as seen by callers.
type State struct {
	Window   week.Window
	Closed   bool
	ClosedAt int64
	Note     string
	// Snapshot is the frozen aggregation for a closed week, nil otherwise.
	Snapshot *report.WeekSummary
}

// Close freezes the week containing the given date. Closing an already
// closed week recomputes and overwrites the snapshot; that is the explicit
// re-close path after corrections.
func (m *Manager) Close(ctx context.Context, date, note string) (*State, error) {
	w, err := week.OfDate(date)
	if err != nil {
		return nil, err
	}

	summary, err := m.engine.WeekSummary(ctx, w)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return nil, errors.Internal("encode week snapshot", err)
	}

	prev, err := m.store.GetClosure(ctx, w.ID())
	if err != nil {
		return nil, err
	}

	rec := model.WeeklyClosure{
		ID:        w.ID(),
		WeekStart: w.Start,
		WeekEnd:   w.End,
		Status:    model.StatusClosed,
		ClosedAt:  m.now(),
		Snapshot:  raw,
		Note:      note,
	}
	if prev != nil {
		rec.ReopenedAt = prev.ReopenedAt
		if note == "" {
			rec.Note = prev.Note
		}
	}
	if err := m.store.PutClosure(ctx, rec); err != nil {
		return nil, err
	}

	m.rec.IncWeek(metrics.WeekClosed)
	ctx = observability.WithWeekID(ctx, w.ID())
	observability.InfoContext(ctx, "week closed",
		slog.Int("closed_workdays", summary.ClosedWorkdays),
		slog.Int("open_workdays", summary.OpenWorkdays),
		slog.Int64("total_boxes", summary.TotalBoxes),
	)
	m.publish(ctx, events.Change{Kind: events.KindWeek, ID: w.ID(), WeekID: w.ID()})

	return stateOf(&rec, summary), nil
}

// Reopen unlocks a closed week. The stored snapshot is kept so the last
// settled totals stay consultable while corrections happen.
func (m *Manager) Reopen(ctx context.Context, date string) (*State, error) {
	w, err := week.OfDate(date)
	if err != nil {
		return nil, err
	}

	rec, err := m.store.GetClosure(ctx, w.ID())
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errors.NotFound("week closure", w.ID())
	}
	ctx = observability.WithWeekID(ctx, w.ID())
	if !rec.Closed() {
		observability.WarnContext(ctx, "reopening a week that is not closed")
	}

	rec.Status = model.StatusOpen
	rec.ReopenedAt = m.now()
	if err := m.store.PutClosure(ctx, *rec); err != nil {
		return nil, err
	}

	m.rec.IncWeek(metrics.WeekReopened)
	observability.InfoContext(ctx, "week reopened")
	m.publish(ctx, events.Change{Kind: events.KindWeek, ID: w.ID(), WeekID: w.ID()})

	return m.decode(rec)
}

// Status reports the closure state of the week containing the given date.
// A week with no record at all is open with no snapshot.
func (m *Manager) Status(ctx context.Context, date string) (*State, error) {
	w, err := week.OfDate(date)
	if err != nil {
		return nil, err
	}
	rec, err := m.store.GetClosure(ctx, w.ID())
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return &State{Window: w}, nil
	}
	return m.decode(rec)
}

// Snapshot returns the frozen aggregation of a closed week, or nil when the
// week has never been closed. For a reopened week it returns the snapshot
// from the last close.
func (m *Manager) Snapshot(ctx context.Context, date string) (*report.WeekSummary, error) {
	st, err := m.Status(ctx, date)
	if err != nil {
		return nil, err
	}
	return st.Snapshot, nil
}

func (m *Manager) decode(rec *model.WeeklyClosure) (*State, error) {
	var snapshot *report.WeekSummary
	if len(rec.Snapshot) > 0 {
		snapshot = &report.WeekSummary{}
		if err := json.Unmarshal(rec.Snapshot, snapshot); err != nil {
			return nil, errors.Internal("decode week snapshot", err)
		}
	}
	return stateOf(rec, snapshot), nil
}

func stateOf(rec *model.WeeklyClosure, snapshot *report.WeekSummary) *State {
	return &State{
		Window:   week.Window{Start: rec.WeekStart, End: rec.WeekEnd},
		Closed:   rec.Closed(),
		ClosedAt: rec.ClosedAt,
		Note:     rec.Note,
		Snapshot: snapshot,
	}
}

func (m *Manager) publish(ctx context.Context, c events.Change) {
	if m.bus != nil {
		m.bus.Publish(ctx, c)
	}
}
