package store

import (
	"context"
	"encoding/json"

	"github.com/turmeiro/boxtally/internal/errors"
	"github.com/turmeiro/boxtally/internal/model"
)

// Dump is the complete database contents, one array of plain records per
// table. It serializes as an array of {table, rows} objects, the backup file
// format the app has always produced.
type Dump struct {
	Pickers  []model.Picker
	Orchards []model.Orchard
	Workdays []model.Workday
	Shifts   []model.Shift
	Counts   []model.Count
	Weeks    []model.WeeklyClosure
}

type tableDump struct {
	Table string          `json:"table"`
	Rows  json.RawMessage `json:"rows"`
}

// MarshalJSON renders the dump in backup-file order.
func (d *Dump) MarshalJSON() ([]byte, error) {
	tables := []struct {
		name string
		rows any
	}{
		{"pickers", orEmpty(d.Pickers)},
		{"orchards", orEmpty(d.Orchards)},
		{"workdays", orEmpty(d.Workdays)},
		{"shifts", orEmpty(d.Shifts)},
		{"counts", orEmpty(d.Counts)},
		{"weeks", orEmpty(d.Weeks)},
	}

	out := make([]tableDump, 0, len(tables))
	for _, t := range tables {
		rows, err := json.Marshal(t.rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tableDump{Table: t.name, Rows: rows})
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts a backup file. Unknown tables are ignored so files
// from newer app versions still restore what this version understands.
func (d *Dump) UnmarshalJSON(data []byte) error {
	var tables []tableDump
	if err := json.Unmarshal(data, &tables); err != nil {
		return err
	}
	for _, t := range tables {
		var err error
		switch t.Table {
		case "pickers":
			err = json.Unmarshal(t.Rows, &d.Pickers)
		case "orchards":
			err = json.Unmarshal(t.Rows, &d.Orchards)
		case "workdays":
			err = json.Unmarshal(t.Rows, &d.Workdays)
		case "shifts":
			err = json.Unmarshal(t.Rows, &d.Shifts)
		case "counts":
			err = json.Unmarshal(t.Rows, &d.Counts)
		case "weeks":
			err = json.Unmarshal(t.Rows, &d.Weeks)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// ExportAll reads every table for the backup boundary.
func (s *SQLiteStore) ExportAll(ctx context.Context) (*Dump, error) {
	dump := &Dump{}

	pickers, err := s.ListPickers(ctx, false)
	if err != nil {
		return nil, err
	}
	dump.Pickers = pickers

	orchards, err := s.ListOrchards(ctx, false)
	if err != nil {
		return nil, err
	}
	dump.Orchards = orchards

	if dump.Workdays, err = listAll(ctx, s,
		"SELECT id, date, picker_ids, created_at, status, closed_at, reopened_at FROM workdays ORDER BY date, id",
		scanWorkday); err != nil {
		return nil, err
	}
	if dump.Shifts, err = listAll(ctx, s,
		"SELECT id, workday_id, orchard_id, orchard_name, price_per_box, seq, created_at FROM shifts ORDER BY workday_id, seq, id",
		scanShift); err != nil {
		return nil, err
	}
	if dump.Counts, err = listAll(ctx, s,
		"SELECT id, workday_id, shift_id, picker_id, boxes, updated_at FROM counts ORDER BY workday_id, id",
		scanCount); err != nil {
		return nil, err
	}
	if dump.Weeks, err = listAll(ctx, s,
		"SELECT id, week_start, week_end, status, closed_at, reopened_at, snapshot, note FROM weeks ORDER BY id",
		scanClosure); err != nil {
		return nil, err
	}

	return dump, nil
}

func listAll[T any](ctx context.Context, s *SQLiteStore, query string, scan func(rowScanner) (T, error)) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.StoreUnavailable("export query", err)
	}
	defer rows.Close()

	return scanAll(rows, scan)
}

// ImportAll bulk-upserts a dump back into the tables. Existing records with
// matching ids are replaced; everything else is left untouched.
func (s *SQLiteStore) ImportAll(ctx context.Context, dump *Dump) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.StoreUnavailable("begin import", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range dump.Pickers {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO pickers (id, name, nickname, active, created_at) VALUES (?, ?, ?, ?, ?)",
			p.ID, p.Name, p.Nickname, boolToInt(p.Active), p.CreatedAt); err != nil {
			return errors.StoreUnavailable("import picker", err)
		}
	}
	for _, o := range dump.Orchards {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO orchards (id, name, active, created_at) VALUES (?, ?, ?, ?)",
			o.ID, o.Name, boolToInt(o.Active), o.CreatedAt); err != nil {
			return errors.StoreUnavailable("import orchard", err)
		}
	}
	for _, w := range dump.Workdays {
		pickerIDs, err := json.Marshal(w.PickerIDs)
		if err != nil {
			return errors.StoreUnavailable("encode picker ids", err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO workdays (id, date, picker_ids, created_at, status, closed_at, reopened_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			w.ID, w.Date, string(pickerIDs), w.CreatedAt, string(w.Status), w.ClosedAt, w.ReopenedAt); err != nil {
			return errors.StoreUnavailable("import workday", err)
		}
	}
	for _, sh := range dump.Shifts {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO shifts (id, workday_id, orchard_id, orchard_name, price_per_box, seq, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			sh.ID, sh.WorkdayID, sh.OrchardID, sh.OrchardNameSnapshot, sh.PricePerBox.String(), sh.Seq, sh.CreatedAt); err != nil {
			return errors.StoreUnavailable("import shift", err)
		}
	}
	for _, c := range dump.Counts {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO counts (id, workday_id, shift_id, picker_id, boxes, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			c.ID, c.WorkdayID, c.ShiftID, c.PickerID, c.Boxes, c.UpdatedAt); err != nil {
			return errors.StoreUnavailable("import count", err)
		}
	}
	for _, wc := range dump.Weeks {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO weeks (id, week_start, week_end, status, closed_at, reopened_at, snapshot, note) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			wc.ID, wc.WeekStart, wc.WeekEnd, string(wc.Status), wc.ClosedAt, wc.ReopenedAt, string(wc.Snapshot), wc.Note); err != nil {
			return errors.StoreUnavailable("import closure", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.StoreUnavailable("commit import", err)
	}
	return nil
}

// Wipe deletes every record from every table.
func (s *SQLiteStore) Wipe(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"pickers", "orchards", "workdays", "shifts", "counts", "weeks"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return errors.StoreUnavailable("wipe "+table, err)
		}
	}
	return nil
}
