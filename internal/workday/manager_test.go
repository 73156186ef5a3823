package workday

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turmeiro/boxtally/internal/errors"
	"github.com/turmeiro/boxtally/internal/events"
	"github.com/turmeiro/boxtally/internal/model"
	"github.com/turmeiro/boxtally/internal/store"
)

type fixture struct {
	store   *store.SQLiteStore
	manager *Manager
	bus     *events.Bus
	pickers []string // p1, p2
	orchard string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	bus := events.NewBus()
	t.Cleanup(bus.Close)

	ctx := context.Background()
	f := &fixture{store: st, manager: NewManager(st, bus, nil), bus: bus}

	for _, name := range []string{"Maria", "João"} {
		p := model.Picker{ID: model.NewID(), Name: name, Active: true, CreatedAt: model.Now()}
		require.NoError(t, st.AddPicker(ctx, p))
		f.pickers = append(f.pickers, p.ID)
	}
	o := model.Orchard{ID: model.NewID(), Name: "Talhão 1", Active: true, CreatedAt: model.Now()}
	require.NoError(t, st.AddOrchard(ctx, o))
	f.orchard = o.ID

	return f
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreateWorkdayValidation(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	_, _, err := f.manager.CreateWorkday(ctx, "2024-06-10", nil, f.orchard, price("3.00"))
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation), "empty picker set")

	_, _, err = f.manager.CreateWorkday(ctx, "2024-06-10", f.pickers, "nope", price("3.00"))
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation), "unknown orchard")

	_, _, err = f.manager.CreateWorkday(ctx, "2024-06-10", f.pickers, f.orchard, price("0"))
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation), "non-positive price")

	_, _, err = f.manager.CreateWorkday(ctx, "10/06/2024", f.pickers, f.orchard, price("3.00"))
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation), "bad date format")

	// No partial state after the failures.
	wd, err := f.manager.WorkdayByDate(ctx, "2024-06-10")
	require.NoError(t, err)
	assert.Nil(t, wd)
}

func TestCreateWorkdaySeedsFirstShift(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	wd, first, err := f.manager.CreateWorkday(ctx, "2024-06-10", f.pickers, f.orchard, price("3.00"))
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, wd.Status)
	assert.ElementsMatch(t, f.pickers, wd.PickerIDs)
	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, "Talhão 1", first.OrchardNameSnapshot)

	counts, err := f.store.CountsByShift(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	seen := map[string]bool{}
	for _, c := range counts {
		assert.Zero(t, c.Boxes)
		assert.False(t, seen[c.PickerID], "duplicate count for picker")
		seen[c.PickerID] = true
	}
}

func TestCreateWorkdayDedupesPickers(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	ids := []string{f.pickers[0], f.pickers[0], f.pickers[1], ""}
	wd, first, err := f.manager.CreateWorkday(ctx, "2024-06-10", ids, f.orchard, price("3.00"))
	require.NoError(t, err)
	assert.Len(t, wd.PickerIDs, 2)

	counts, err := f.store.CountsByShift(ctx, first.ID)
	require.NoError(t, err)
	assert.Len(t, counts, 2)
}

func TestDuplicateDateRejected(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	_, _, err := f.manager.CreateWorkday(ctx, "2024-06-10", f.pickers, f.orchard, price("3.00"))
	require.NoError(t, err)

	_, _, err = f.manager.CreateWorkday(ctx, "2024-06-10", f.pickers, f.orchard, price("4.00"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryDuplicateDate))
}

func TestCloseAndReopenWorkday(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	wd, _, err := f.manager.CreateWorkday(ctx, "2024-06-10", f.pickers, f.orchard, price("3.00"))
	require.NoError(t, err)

	closed, err := f.manager.CloseWorkday(ctx, wd.ID)
	require.NoError(t, err)
	assert.True(t, closed.Closed())
	assert.Positive(t, closed.ClosedAt)

	reopened, err := f.manager.ReopenWorkday(ctx, wd.ID)
	require.NoError(t, err)
	assert.False(t, reopened.Closed())
	assert.Positive(t, reopened.ReopenedAt)
	// closedAt is kept for the audit trail.
	assert.Equal(t, closed.ClosedAt, reopened.ClosedAt)

	_, err = f.manager.CloseWorkday(ctx, "missing")
	assert.True(t, errors.IsCategory(err, errors.CategoryNotFound))
	_, err = f.manager.ReopenWorkday(ctx, "missing")
	assert.True(t, errors.IsCategory(err, errors.CategoryNotFound))
}

func TestOpenWorkdayQuery(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	got, err := f.manager.OpenWorkday(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	wd, _, err := f.manager.CreateWorkday(ctx, "2024-06-10", f.pickers, f.orchard, price("3.00"))
	require.NoError(t, err)

	got, err = f.manager.OpenWorkday(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, wd.ID, got.ID)

	_, err = f.manager.CloseWorkday(ctx, wd.ID)
	require.NoError(t, err)

	got, err = f.manager.OpenWorkday(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCreateShiftStartsNewRound(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	wd, first, err := f.manager.CreateWorkday(ctx, "2024-06-10", f.pickers, f.orchard, price("3.00"))
	require.NoError(t, err)

	o2 := model.Orchard{ID: model.NewID(), Name: "Talhão 2", Active: true, CreatedAt: model.Now()}
	require.NoError(t, f.store.AddOrchard(ctx, o2))

	second, err := f.manager.CreateShift(ctx, wd.ID, o2.ID, price("4.00"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Seq)
	assert.Equal(t, "Talhão 2", second.OrchardNameSnapshot)

	// Shift seeding completeness: one fresh zero count per crew member,
	// first shift's counts untouched.
	counts, err := f.store.CountsByShift(ctx, second.ID)
	require.NoError(t, err)
	assert.Len(t, counts, 2)
	firstCounts, err := f.store.CountsByShift(ctx, first.ID)
	require.NoError(t, err)
	assert.Len(t, firstCounts, 2)

	active, err := f.manager.ActiveShift(ctx, wd.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	n, err := f.manager.ShiftNumber(ctx, wd.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = f.manager.ShiftNumber(ctx, wd.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = f.manager.ShiftNumber(ctx, wd.ID, "missing")
	assert.True(t, errors.IsCategory(err, errors.CategoryNotFound))
}

func TestCreateShiftValidation(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	_, err := f.manager.CreateShift(ctx, "missing", f.orchard, price("3.00"))
	assert.True(t, errors.IsCategory(err, errors.CategoryNotFound))

	wd, _, err := f.manager.CreateWorkday(ctx, "2024-06-10", f.pickers, f.orchard, price("3.00"))
	require.NoError(t, err)

	_, err = f.manager.CreateShift(ctx, wd.ID, "nope", price("3.00"))
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
	_, err = f.manager.CreateShift(ctx, wd.ID, f.orchard, price("-1"))
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestAdjustCountClampsStepwise(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	_, first, err := f.manager.CreateWorkday(ctx, "2024-06-10", f.pickers[:1], f.orchard, price("3.00"))
	require.NoError(t, err)
	counts, err := f.store.CountsByShift(ctx, first.ID)
	require.NoError(t, err)
	countID := counts[0].ID

	// Clamping happens after each step: [5, -10, 3] -> 5, 0, 3.
	var got *model.Count
	for _, step := range []struct {
		delta int64
		want  int64
	}{{5, 5}, {-10, 0}, {3, 3}} {
		got, err = f.manager.AdjustCount(ctx, countID, step.delta)
		require.NoError(t, err)
		assert.Equal(t, step.want, got.Boxes, "after delta %d", step.delta)
	}
}

func TestResetCount(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	_, first, err := f.manager.CreateWorkday(ctx, "2024-06-10", f.pickers[:1], f.orchard, price("3.00"))
	require.NoError(t, err)
	counts, err := f.store.CountsByShift(ctx, first.ID)
	require.NoError(t, err)
	countID := counts[0].ID

	_, err = f.manager.AdjustCount(ctx, countID, 7)
	require.NoError(t, err)
	got, err := f.manager.ResetCount(ctx, countID)
	require.NoError(t, err)
	assert.Zero(t, got.Boxes)
}

func TestClosedWorkdayCountsAreImmutable(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	wd, first, err := f.manager.CreateWorkday(ctx, "2024-06-10", f.pickers[:1], f.orchard, price("3.00"))
	require.NoError(t, err)
	counts, err := f.store.CountsByShift(ctx, first.ID)
	require.NoError(t, err)
	countID := counts[0].ID

	_, err = f.manager.AdjustCount(ctx, countID, 2)
	require.NoError(t, err)
	_, err = f.manager.CloseWorkday(ctx, wd.ID)
	require.NoError(t, err)

	before, err := f.store.GetCount(ctx, countID)
	require.NoError(t, err)

	got, err := f.manager.AdjustCount(ctx, countID, 1)
	require.NoError(t, err)
	assert.Equal(t, before.Boxes, got.Boxes)
	got, err = f.manager.ResetCount(ctx, countID)
	require.NoError(t, err)
	assert.Equal(t, before.Boxes, got.Boxes)

	after, err := f.store.GetCount(ctx, countID)
	require.NoError(t, err)
	assert.Equal(t, *before, *after, "state before == state after")
}

func TestAdjustCountNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.manager.AdjustCount(t.Context(), "missing", 1)
	assert.True(t, errors.IsCategory(err, errors.CategoryNotFound))
}

func TestMutationsPublishChanges(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	ch, cancel := f.bus.Subscribe(16)
	defer cancel()

	wd, first, err := f.manager.CreateWorkday(ctx, "2024-06-10", f.pickers[:1], f.orchard, price("3.00"))
	require.NoError(t, err)
	counts, err := f.store.CountsByShift(ctx, first.ID)
	require.NoError(t, err)
	_, err = f.manager.AdjustCount(ctx, counts[0].ID, 1)
	require.NoError(t, err)

	created := <-ch
	assert.Equal(t, events.KindWorkday, created.Kind)
	assert.Equal(t, wd.ID, created.WorkdayID)
	adjusted := <-ch
	assert.Equal(t, events.KindCount, adjusted.Kind)
	assert.Equal(t, wd.ID, adjusted.WorkdayID)
}
