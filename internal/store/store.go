// Package store is the entity store adapter: typed CRUD and range queries
// over the six record tables, backed by an embedded SQLite database.
//
// Lookups return a nil record (and nil error) when the id does not exist;
// the managers decide whether that is a NotFound condition. All persistence
// failures surface as CategoryStore errors with the cause preserved.
package store

import (
	"context"

	"github.com/turmeiro/boxtally/internal/model"
)

// Store is the persistence interface consumed by the managers and the
// aggregation engine.
type Store interface {
	// Pickers
	AddPicker(ctx context.Context, p model.Picker) error
	GetPicker(ctx context.Context, id string) (*model.Picker, error)
	PutPicker(ctx context.Context, p model.Picker) error
	DeletePicker(ctx context.Context, id string) error
	ListPickers(ctx context.Context, activeOnly bool) ([]model.Picker, error)

	// Orchards
	AddOrchard(ctx context.Context, o model.Orchard) error
	GetOrchard(ctx context.Context, id string) (*model.Orchard, error)
	PutOrchard(ctx context.Context, o model.Orchard) error
	DeleteOrchard(ctx context.Context, id string) error
	ListOrchards(ctx context.Context, activeOnly bool) ([]model.Orchard, error)

	// Workdays
	CreateWorkday(ctx context.Context, w model.Workday, first model.Shift, counts []model.Count) error
	GetWorkday(ctx context.Context, id string) (*model.Workday, error)
	PutWorkday(ctx context.Context, w model.Workday) error
	WorkdayByDate(ctx context.Context, date string) (*model.Workday, error)
	WorkdaysBetween(ctx context.Context, startDate, endDate string) ([]model.Workday, error)
	OpenWorkdays(ctx context.Context) ([]model.Workday, error)

	// Shifts
	CreateShift(ctx context.Context, s model.Shift, counts []model.Count) error
	GetShift(ctx context.Context, id string) (*model.Shift, error)
	ShiftsByWorkday(ctx context.Context, workdayID string) ([]model.Shift, error)
	ShiftsByWorkdays(ctx context.Context, workdayIDs []string) ([]model.Shift, error)

	// Counts
	GetCount(ctx context.Context, id string) (*model.Count, error)
	PutCount(ctx context.Context, c model.Count) error
	CountsByShift(ctx context.Context, shiftID string) ([]model.Count, error)
	CountsByWorkday(ctx context.Context, workdayID string) ([]model.Count, error)
	CountsByWorkdays(ctx context.Context, workdayIDs []string) ([]model.Count, error)

	// Weekly closures
	GetClosure(ctx context.Context, weekID string) (*model.WeeklyClosure, error)
	PutClosure(ctx context.Context, c model.WeeklyClosure) error

	// Backup boundary
	ExportAll(ctx context.Context) (*Dump, error)
	ImportAll(ctx context.Context, dump *Dump) error
	Wipe(ctx context.Context) error

	Close() error
}
