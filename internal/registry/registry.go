// Package registry manages the picker and orchard rosters. Records are
// soft-hidden via the active flag rather than deleted, so historical counts
// stay resolvable; hard deletion is allowed and orphans old counts, which
// reports then display under the unknown-picker name.
package registry

import (
	"context"
	"log/slog"
	"strings"

	"github.com/turmeiro/boxtally/internal/errors"
	"github.com/turmeiro/boxtally/internal/events"
	"github.com/turmeiro/boxtally/internal/model"
	"github.com/turmeiro/boxtally/internal/observability"
	"github.com/turmeiro/boxtally/internal/store"
)

// Registry mutates the picker and orchard tables.
type Registry struct {
	store store.Store
	bus   *events.Bus
}

// NewRegistry creates a registry. bus may be nil.
func NewRegistry(st store.Store, bus *events.Bus) *Registry {
	return &Registry{store: st, bus: bus}
}

// AddPicker registers a new harvest worker.
func (r *Registry) AddPicker(ctx context.Context, name, nickname string) (*model.Picker, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.ValidationField("name", "must not be empty")
	}
	p := model.Picker{
		ID:        model.NewID(),
		Name:      name,
		Nickname:  strings.TrimSpace(nickname),
		Active:    true,
		CreatedAt: model.Now(),
	}
	if err := r.store.AddPicker(ctx, p); err != nil {
		return nil, err
	}
	observability.InfoContext(ctx, "picker registered", slog.String("name", name))
	r.publish(ctx, events.Change{Kind: events.KindPicker, ID: p.ID})
	return &p, nil
}

// RenamePicker updates a picker's name and nickname. Historical shift
// reports are unaffected; only live name lookups change.
func (r *Registry) RenamePicker(ctx context.Context, id, name, nickname string) (*model.Picker, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.ValidationField("name", "must not be empty")
	}
	p, err := r.store.GetPicker(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.NotFound("picker", id)
	}
	p.Name = name
	p.Nickname = strings.TrimSpace(nickname)
	if err := r.store.PutPicker(ctx, *p); err != nil {
		return nil, err
	}
	r.publish(ctx, events.Change{Kind: events.KindPicker, ID: id})
	return p, nil
}

// SetPickerActive toggles a picker's visibility in new-workday selection.
func (r *Registry) SetPickerActive(ctx context.Context, id string, active bool) (*model.Picker, error) {
	p, err := r.store.GetPicker(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.NotFound("picker", id)
	}
	p.Active = active
	if err := r.store.PutPicker(ctx, *p); err != nil {
		return nil, err
	}
	observability.InfoContext(ctx, "picker active flag changed",
		slog.String("picker.id", id), slog.Bool("active", active))
	r.publish(ctx, events.Change{Kind: events.KindPicker, ID: id})
	return p, nil
}

// DeletePicker removes a picker record permanently. Counts referencing it
// remain and resolve to the unknown-picker display name.
func (r *Registry) DeletePicker(ctx context.Context, id string) error {
	p, err := r.store.GetPicker(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return errors.NotFound("picker", id)
	}
	if err := r.store.DeletePicker(ctx, id); err != nil {
		return err
	}
	observability.WarnContext(ctx, "picker deleted; historical counts now orphaned",
		slog.String("picker.id", id), slog.String("name", p.Name))
	r.publish(ctx, events.Change{Kind: events.KindPicker, ID: id})
	return nil
}

// ListPickers returns pickers ordered by name, optionally only active ones.
func (r *Registry) ListPickers(ctx context.Context, activeOnly bool) ([]model.Picker, error) {
	return r.store.ListPickers(ctx, activeOnly)
}

// AddOrchard registers a new harvest location.
func (r *Registry) AddOrchard(ctx context.Context, name string) (*model.Orchard, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.ValidationField("name", "must not be empty")
	}
	o := model.Orchard{
		ID:        model.NewID(),
		Name:      name,
		Active:    true,
		CreatedAt: model.Now(),
	}
	if err := r.store.AddOrchard(ctx, o); err != nil {
		return nil, err
	}
	observability.InfoContext(ctx, "orchard registered", slog.String("name", name))
	r.publish(ctx, events.Change{Kind: events.KindOrchard, ID: o.ID})
	return &o, nil
}

// RenameOrchard updates an orchard's name. Existing shifts keep their name
// snapshot; only future shifts pick up the new name.
func (r *Registry) RenameOrchard(ctx context.Context, id, name string) (*model.Orchard, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.ValidationField("name", "must not be empty")
	}
	o, err := r.store.GetOrchard(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, errors.NotFound("orchard", id)
	}
	o.Name = name
	if err := r.store.PutOrchard(ctx, *o); err != nil {
		return nil, err
	}
	r.publish(ctx, events.Change{Kind: events.KindOrchard, ID: id})
	return o, nil
}

// SetOrchardActive toggles an orchard's visibility in shift creation.
func (r *Registry) SetOrchardActive(ctx context.Context, id string, active bool) (*model.Orchard, error) {
	o, err := r.store.GetOrchard(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, errors.NotFound("orchard", id)
	}
	o.Active = active
	if err := r.store.PutOrchard(ctx, *o); err != nil {
		return nil, err
	}
	r.publish(ctx, events.Change{Kind: events.KindOrchard, ID: id})
	return o, nil
}

// DeleteOrchard removes an orchard record permanently. Shifts keep their
// name snapshots, so history is unaffected.
func (r *Registry) DeleteOrchard(ctx context.Context, id string) error {
	o, err := r.store.GetOrchard(ctx, id)
	if err != nil {
		return err
	}
	if o == nil {
		return errors.NotFound("orchard", id)
	}
	if err := r.store.DeleteOrchard(ctx, id); err != nil {
		return err
	}
	r.publish(ctx, events.Change{Kind: events.KindOrchard, ID: id})
	return nil
}

// ListOrchards returns orchards ordered by name, optionally only active ones.
func (r *Registry) ListOrchards(ctx context.Context, activeOnly bool) ([]model.Orchard, error) {
	return r.store.ListOrchards(ctx, activeOnly)
}

func (r *Registry) publish(ctx context.Context, c events.Change) {
	if err := r.bus.Publish(ctx, c); err != nil {
		observability.WarnContext(ctx, "change notification dropped",
			slog.String("kind", string(c.Kind)), slog.Any("error", err))
	}
}
