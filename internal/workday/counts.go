package workday

import (
	"context"
	"log/slog"

	"github.com/turmeiro/boxtally/internal/errors"
	"github.com/turmeiro/boxtally/internal/events"
	"github.com/turmeiro/boxtally/internal/metrics"
	"github.com/turmeiro/boxtally/internal/model"
	"github.com/turmeiro/boxtally/internal/observability"
)

// AdjustCount applies a delta to a picker's box tally within the active
// shift, clamping at zero. Any integer delta is accepted; the UI happens to
// offer +1/+5/+10/-1.
//
// When the owning workday is closed the adjustment is a silent no-op and the
// unchanged count is returned: a stale tap on a closed day must not raise an
// error dialog.
func (m *Manager) AdjustCount(ctx context.Context, countID string, delta int64) (*model.Count, error) {
	count, wd, err := m.countWithWorkday(ctx, countID)
	if err != nil {
		return nil, err
	}

	ctx = observability.WithWorkdayID(ctx, count.WorkdayID)
	if wd.Closed() {
		m.rec.IncCount(metrics.CountNoopClosed)
		observability.DebugContext(ctx, "count adjustment ignored on closed workday",
			slog.String("count.id", countID))
		return count, nil
	}

	count.Boxes = max(0, count.Boxes+delta)
	count.UpdatedAt = m.now()
	if err := m.store.PutCount(ctx, *count); err != nil {
		return nil, err
	}

	m.rec.IncCount(metrics.CountAdjusted)
	observability.DebugContext(ctx, "count adjusted",
		slog.String("count.id", countID),
		slog.Int64("delta", delta),
		slog.Int64("boxes", count.Boxes))
	m.publish(ctx, events.Change{Kind: events.KindCount, ID: countID, WorkdayID: count.WorkdayID})

	return count, nil
}

// ResetCount zeroes a picker's tally for the shift. Destructive; the caller
// is expected to confirm with the user first. No-op when the workday is
// closed.
func (m *Manager) ResetCount(ctx context.Context, countID string) (*model.Count, error) {
	count, wd, err := m.countWithWorkday(ctx, countID)
	if err != nil {
		return nil, err
	}

	ctx = observability.WithWorkdayID(ctx, count.WorkdayID)
	if wd.Closed() {
		m.rec.IncCount(metrics.CountNoopClosed)
		observability.DebugContext(ctx, "count reset ignored on closed workday",
			slog.String("count.id", countID))
		return count, nil
	}

	count.Boxes = 0
	count.UpdatedAt = m.now()
	if err := m.store.PutCount(ctx, *count); err != nil {
		return nil, err
	}

	m.rec.IncCount(metrics.CountReset)
	observability.InfoContext(ctx, "count reset", slog.String("count.id", countID))
	m.publish(ctx, events.Change{Kind: events.KindCount, ID: countID, WorkdayID: count.WorkdayID})

	return count, nil
}

func (m *Manager) countWithWorkday(ctx context.Context, countID string) (*model.Count, *model.Workday, error) {
	count, err := m.store.GetCount(ctx, countID)
	if err != nil {
		return nil, nil, err
	}
	if count == nil {
		return nil, nil, errors.NotFound("count", countID)
	}
	wd, err := m.store.GetWorkday(ctx, count.WorkdayID)
	if err != nil {
		return nil, nil, err
	}
	if wd == nil {
		return nil, nil, errors.NotFound("workday", count.WorkdayID)
	}
	return count, wd, nil
}
