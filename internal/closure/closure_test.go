package closure

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/turmeiro/boxtally/internal/errors"
	"github.com/turmeiro/boxtally/internal/model"
	"github.com/turmeiro/boxtally/internal/report"
	"github.com/turmeiro/boxtally/internal/store"
	"github.com/turmeiro/boxtally/internal/workday"
)

type fixture struct {
	store   *store.SQLiteStore
	days    *workday.Manager
	weeks   *Manager
	pickers []string
	orchard string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	engine := report.NewEngine(st, language.BrazilianPortuguese)
	f := &fixture{
		store: st,
		days:  workday.NewManager(st, nil, nil),
		weeks: NewManager(st, engine, nil, nil),
	}

	ctx := context.Background()
	for _, name := range []string{"Pedro", "Ana"} {
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

// seedClosedDay creates a closed workday on the date with Pedro=8 boxes.
func seedClosedDay(t *testing.T, f *fixture, date string) (workdayID, countID string) {
	t.Helper()
	ctx := context.Background()

	wd, s1, err := f.days.CreateWorkday(ctx, date, f.pickers[:1], f.orchard, price("3.00"))
	require.NoError(t, err)
	counts, err := f.store.CountsByShift(ctx, s1.ID)
	require.NoError(t, err)
	_, err = f.days.AdjustCount(ctx, counts[0].ID, 8)
	require.NoError(t, err)
	_, err = f.days.CloseWorkday(ctx, wd.ID)
	require.NoError(t, err)

	return wd.ID, counts[0].ID
}

func TestStatusOfUntrackedWeek(t *testing.T) {
	f := newFixture(t)

	st, err := f.weeks.Status(t.Context(), "2024-06-12")
	require.NoError(t, err)
	assert.False(t, st.Closed)
	assert.Nil(t, st.Snapshot)
	assert.Equal(t, "2024-06-10", st.Window.Start)
	assert.Equal(t, "2024-06-16", st.Window.End)
}

func TestCloseFreezesSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	_, countID := seedClosedDay(t, f, "2024-06-10")

	st, err := f.weeks.Close(ctx, "2024-06-10", "semana paga")
	require.NoError(t, err)
	assert.True(t, st.Closed)
	assert.Positive(t, st.ClosedAt)
	assert.Equal(t, "semana paga", st.Note)
	require.NotNil(t, st.Snapshot)
	assert.Equal(t, int64(8), st.Snapshot.TotalBoxes)
	assert.True(t, st.Snapshot.TotalValue.Equal(price("24.00")))

	// Reopen the workday and change its counts; the closure snapshot must
	// keep showing the settled totals.
	wdID := st.Snapshot.Days[0].WorkdayID
	_, err = f.days.ReopenWorkday(ctx, wdID)
	require.NoError(t, err)
	_, err = f.days.AdjustCount(ctx, countID, 92)
	require.NoError(t, err)

	frozen, err := f.weeks.Snapshot(ctx, "2024-06-10")
	require.NoError(t, err)
	require.NotNil(t, frozen)
	assert.Equal(t, int64(8), frozen.TotalBoxes)
	require.Len(t, frozen.Pickers, 1)
	assert.Equal(t, int64(8), frozen.Pickers[0].TotalBoxes)

	// Only an explicit re-close refreshes the snapshot.
	_, err = f.days.CloseWorkday(ctx, wdID)
	require.NoError(t, err)
	st, err = f.weeks.Close(ctx, "2024-06-10", "")
	require.NoError(t, err)
	assert.Equal(t, int64(100), st.Snapshot.TotalBoxes)
	// The note survives a re-close that passes none.
	assert.Equal(t, "semana paga", st.Note)
}

func TestCloseWeekWithOpenDays(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	seedClosedDay(t, f, "2024-06-10")

	// An open day in the window is counted but contributes nothing.
	_, _, err := f.days.CreateWorkday(ctx, "2024-06-11", f.pickers, f.orchard, price("3.00"))
	require.NoError(t, err)

	st, err := f.weeks.Close(ctx, "2024-06-10", "")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Snapshot.ClosedWorkdays)
	assert.Equal(t, 1, st.Snapshot.OpenWorkdays)
	assert.Equal(t, int64(8), st.Snapshot.TotalBoxes)
}

func TestReopenWeek(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	seedClosedDay(t, f, "2024-06-10")

	_, err := f.weeks.Reopen(ctx, "2024-06-10")
	assert.True(t, errors.IsCategory(err, errors.CategoryNotFound), "never-closed week has no record")

	_, err = f.weeks.Close(ctx, "2024-06-10", "")
	require.NoError(t, err)

	st, err := f.weeks.Reopen(ctx, "2024-06-10")
	require.NoError(t, err)
	assert.False(t, st.Closed)
	require.NotNil(t, st.Snapshot, "last settled snapshot stays consultable")
	assert.Equal(t, int64(8), st.Snapshot.TotalBoxes)

	st, err = f.weeks.Status(ctx, "2024-06-10")
	require.NoError(t, err)
	assert.False(t, st.Closed)
}

func TestCloseEmptyWeek(t *testing.T) {
	f := newFixture(t)

	st, err := f.weeks.Close(t.Context(), "2024-06-10", "")
	require.NoError(t, err)
	assert.True(t, st.Closed)
	assert.Zero(t, st.Snapshot.TotalBoxes)
	assert.Zero(t, st.Snapshot.ClosedWorkdays)
}

func TestCloseRejectsBadDate(t *testing.T) {
	f := newFixture(t)

	_, err := f.weeks.Close(t.Context(), "10/06/2024", "")
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
	_, err = f.weeks.Status(t.Context(), "")
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}
