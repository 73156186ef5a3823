package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turmeiro/boxtally/internal/errors"
	"github.com/turmeiro/boxtally/internal/store"
)

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	st, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return NewRegistry(st, nil)
}

func TestPickerLifecycle(t *testing.T) {
	r := newRegistry(t)
	ctx := t.Context()

	p, err := r.AddPicker(ctx, "  Maria ", "Mari")
	require.NoError(t, err)
	assert.Equal(t, "Maria", p.Name)
	assert.True(t, p.Active)

	_, err = r.AddPicker(ctx, "  ", "")
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))

	renamed, err := r.RenamePicker(ctx, p.ID, "Maria Silva", "")
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", renamed.Name)
	assert.Empty(t, renamed.Nickname)

	hidden, err := r.SetPickerActive(ctx, p.ID, false)
	require.NoError(t, err)
	assert.False(t, hidden.Active)

	active, err := r.ListPickers(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)
	all, err := r.ListPickers(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, r.DeletePicker(ctx, p.ID))
	err = r.DeletePicker(ctx, p.ID)
	assert.True(t, errors.IsCategory(err, errors.CategoryNotFound))
}

func TestOrchardLifecycle(t *testing.T) {
	r := newRegistry(t)
	ctx := t.Context()

	o, err := r.AddOrchard(ctx, "Talhão 1")
	require.NoError(t, err)

	renamed, err := r.RenameOrchard(ctx, o.ID, "Talhão Norte")
	require.NoError(t, err)
	assert.Equal(t, "Talhão Norte", renamed.Name)

	_, err = r.RenameOrchard(ctx, "missing", "X")
	assert.True(t, errors.IsCategory(err, errors.CategoryNotFound))

	hidden, err := r.SetOrchardActive(ctx, o.ID, false)
	require.NoError(t, err)
	assert.False(t, hidden.Active)

	require.NoError(t, r.DeleteOrchard(ctx, o.ID))
	list, err := r.ListOrchards(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, list)
}
