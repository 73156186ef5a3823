package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/turmeiro/boxtally/internal/errors"
	"github.com/turmeiro/boxtally/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (or creates) the tally database.
// Use ":memory:" for an in-memory database, or a file path for persistence.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.StoreUnavailable("open", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, errors.StoreUnavailable("initialize schema", err)
	}

	return s, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pickers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		nickname TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS orchards (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS workdays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		picker_ids TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT '',
		closed_at INTEGER NOT NULL DEFAULT 0,
		reopened_at INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_workdays_date ON workdays(date);
	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		workday_id TEXT NOT NULL,
		orchard_id TEXT NOT NULL,
		orchard_name TEXT NOT NULL,
		price_per_box TEXT NOT NULL,
		seq INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_shifts_workday ON shifts(workday_id);
	CREATE TABLE IF NOT EXISTS counts (
		id TEXT PRIMARY KEY,
		workday_id TEXT NOT NULL,
		shift_id TEXT NOT NULL,
		picker_id TEXT NOT NULL,
		boxes INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_counts_shift ON counts(shift_id);
	CREATE INDEX IF NOT EXISTS idx_counts_workday ON counts(workday_id);
	CREATE TABLE IF NOT EXISTS weeks (
		id TEXT PRIMARY KEY,
		week_start TEXT NOT NULL,
		week_end TEXT NOT NULL,
		status TEXT NOT NULL,
		closed_at INTEGER NOT NULL DEFAULT 0,
		reopened_at INTEGER NOT NULL DEFAULT 0,
		snapshot TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT ''
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// --- pickers ---

func (s *SQLiteStore) AddPicker(ctx context.Context, p model.Picker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO pickers (id, name, nickname, active, created_at) VALUES (?, ?, ?, ?, ?)",
		p.ID, p.Name, p.Nickname, boolToInt(p.Active), p.CreatedAt,
	)
	if err != nil {
		return errors.StoreUnavailable("insert picker", err)
	}
	return nil
}

func (s *SQLiteStore) GetPicker(ctx context.Context, id string) (*model.Picker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, nickname, active, created_at FROM pickers WHERE id = ?", id)
	return scanOne(row, scanPicker)
}

func (s *SQLiteStore) PutPicker(ctx context.Context, p model.Picker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"UPDATE pickers SET name = ?, nickname = ?, active = ? WHERE id = ?",
		p.Name, p.Nickname, boolToInt(p.Active), p.ID,
	)
	if err != nil {
		return errors.StoreUnavailable("update picker", err)
	}
	return nil
}

func (s *SQLiteStore) DeletePicker(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM pickers WHERE id = ?", id); err != nil {
		return errors.StoreUnavailable("delete picker", err)
	}
	return nil
}

func (s *SQLiteStore) ListPickers(ctx context.Context, activeOnly bool) ([]model.Picker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, name, nickname, active, created_at FROM pickers ORDER BY name, id"
	if activeOnly {
		query = "SELECT id, name, nickname, active, created_at FROM pickers WHERE active = 1 ORDER BY name, id"
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.StoreUnavailable("query pickers", err)
	}
	defer rows.Close()

	return scanAll(rows, scanPicker)
}

// --- orchards ---

func (s *SQLiteStore) AddOrchard(ctx context.Context, o model.Orchard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO orchards (id, name, active, created_at) VALUES (?, ?, ?, ?)",
		o.ID, o.Name, boolToInt(o.Active), o.CreatedAt,
	)
	if err != nil {
		return errors.StoreUnavailable("insert orchard", err)
	}
	return nil
}

func (s *SQLiteStore) GetOrchard(ctx context.Context, id string) (*model.Orchard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, active, created_at FROM orchards WHERE id = ?", id)
	return scanOne(row, scanOrchard)
}

func (s *SQLiteStore) PutOrchard(ctx context.Context, o model.Orchard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"UPDATE orchards SET name = ?, active = ? WHERE id = ?",
		o.Name, boolToInt(o.Active), o.ID,
	)
	if err != nil {
		return errors.StoreUnavailable("update orchard", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteOrchard(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM orchards WHERE id = ?", id); err != nil {
		return errors.StoreUnavailable("delete orchard", err)
	}
	return nil
}

func (s *SQLiteStore) ListOrchards(ctx context.Context, activeOnly bool) ([]model.Orchard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, name, active, created_at FROM orchards ORDER BY name, id"
	if activeOnly {
		query = "SELECT id, name, active, created_at FROM orchards WHERE active = 1 ORDER BY name, id"
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.StoreUnavailable("query orchards", err)
	}
	defer rows.Close()

	return scanAll(rows, scanOrchard)
}

// --- workdays ---

// CreateWorkday inserts a workday, its first shift and the seed counts in a
// single transaction. The duplicate-date check runs inside the same
// transaction, immediately before the insert.
func (s *SQLiteStore) CreateWorkday(ctx context.Context, w model.Workday, first model.Shift, counts []model.Count) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.StoreUnavailable("begin create workday", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existing string
	err = tx.QueryRowContext(ctx, "SELECT id FROM workdays WHERE date = ?", w.Date).Scan(&existing)
	switch {
	case err == nil:
		return errors.DuplicateDate(w.Date).WithContext("existing_id", existing)
	case err != sql.ErrNoRows:
		return errors.StoreUnavailable("check workday date", err)
	}

	pickerIDs, err := json.Marshal(w.PickerIDs)
	if err != nil {
		return errors.StoreUnavailable("encode picker ids", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO workdays (id, date, picker_ids, created_at, status, closed_at, reopened_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		w.ID, w.Date, string(pickerIDs), w.CreatedAt, string(w.Status), w.ClosedAt, w.ReopenedAt,
	)
	if err != nil {
		return errors.StoreUnavailable("insert workday", err)
	}

	if err := insertShift(ctx, tx, first); err != nil {
		return err
	}
	if err := insertCounts(ctx, tx, counts); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.StoreUnavailable("commit create workday", err)
	}
	return nil
}

func (s *SQLiteStore) GetWorkday(ctx context.Context, id string) (*model.Workday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, date, picker_ids, created_at, status, closed_at, reopened_at FROM workdays WHERE id = ?", id)
	return scanOne(row, scanWorkday)
}

func (s *SQLiteStore) PutWorkday(ctx context.Context, w model.Workday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pickerIDs, err := json.Marshal(w.PickerIDs)
	if err != nil {
		return errors.StoreUnavailable("encode picker ids", err)
	}
	_, err = s.db.ExecContext(ctx,
		"UPDATE workdays SET date = ?, picker_ids = ?, status = ?, closed_at = ?, reopened_at = ? WHERE id = ?",
		w.Date, string(pickerIDs), string(w.Status), w.ClosedAt, w.ReopenedAt, w.ID,
	)
	if err != nil {
		return errors.StoreUnavailable("update workday", err)
	}
	return nil
}

func (s *SQLiteStore) WorkdayByDate(ctx context.Context, date string) (*model.Workday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, date, picker_ids, created_at, status, closed_at, reopened_at FROM workdays WHERE date = ? ORDER BY created_at DESC, id LIMIT 1", date)
	return scanOne(row, scanWorkday)
}

func (s *SQLiteStore) WorkdaysBetween(ctx context.Context, startDate, endDate string) ([]model.Workday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, date, picker_ids, created_at, status, closed_at, reopened_at FROM workdays WHERE date >= ? AND date <= ? ORDER BY date, id",
		startDate, endDate,
	)
	if err != nil {
		return nil, errors.StoreUnavailable("query workdays", err)
	}
	defer rows.Close()

	return scanAll(rows, scanWorkday)
}

// OpenWorkdays returns all workdays not counting as closed, most recently
// created first. Closed-state filtering applies the model rule in Go rather
// than SQL so legacy rows without a status are classified consistently.
func (s *SQLiteStore) OpenWorkdays(ctx context.Context) ([]model.Workday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, date, picker_ids, created_at, status, closed_at, reopened_at FROM workdays ORDER BY created_at DESC, id")
	if err != nil {
		return nil, errors.StoreUnavailable("query workdays", err)
	}
	defer rows.Close()

	all, err := scanAll(rows, scanWorkday)
	if err != nil {
		return nil, err
	}
	open := make([]model.Workday, 0, len(all))
	for _, w := range all {
		if !w.Closed() {
			open = append(open, w)
		}
	}
	return open, nil
}

// --- shifts ---

// CreateShift inserts a shift and its seed counts in a single transaction.
func (s *SQLiteStore) CreateShift(ctx context.Context, sh model.Shift, counts []model.Count) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.StoreUnavailable("begin create shift", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertShift(ctx, tx, sh); err != nil {
		return err
	}
	if err := insertCounts(ctx, tx, counts); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.StoreUnavailable("commit create shift", err)
	}
	return nil
}

func (s *SQLiteStore) GetShift(ctx context.Context, id string) (*model.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, workday_id, orchard_id, orchard_name, price_per_box, seq, created_at FROM shifts WHERE id = ?", id)
	return scanOne(row, scanShift)
}

func (s *SQLiteStore) ShiftsByWorkday(ctx context.Context, workdayID string) ([]model.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, workday_id, orchard_id, orchard_name, price_per_box, seq, created_at FROM shifts WHERE workday_id = ? ORDER BY seq, id",
		workdayID,
	)
	if err != nil {
		return nil, errors.StoreUnavailable("query shifts", err)
	}
	defer rows.Close()

	return scanAll(rows, scanShift)
}

func (s *SQLiteStore) ShiftsByWorkdays(ctx context.Context, workdayIDs []string) ([]model.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(workdayIDs) == 0 {
		return nil, nil
	}
	query, args := inQuery(
		"SELECT id, workday_id, orchard_id, orchard_name, price_per_box, seq, created_at FROM shifts WHERE workday_id IN (%s) ORDER BY workday_id, seq, id",
		workdayIDs,
	)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.StoreUnavailable("query shifts", err)
	}
	defer rows.Close()

	return scanAll(rows, scanShift)
}

// --- counts ---

func (s *SQLiteStore) GetCount(ctx context.Context, id string) (*model.Count, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, workday_id, shift_id, picker_id, boxes, updated_at FROM counts WHERE id = ?", id)
	return scanOne(row, scanCount)
}

func (s *SQLiteStore) PutCount(ctx context.Context, c model.Count) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"UPDATE counts SET boxes = ?, updated_at = ? WHERE id = ?",
		c.Boxes, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return errors.StoreUnavailable("update count", err)
	}
	return nil
}

func (s *SQLiteStore) CountsByShift(ctx context.Context, shiftID string) ([]model.Count, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, workday_id, shift_id, picker_id, boxes, updated_at FROM counts WHERE shift_id = ? ORDER BY id",
		shiftID,
	)
	if err != nil {
		return nil, errors.StoreUnavailable("query counts", err)
	}
	defer rows.Close()

	return scanAll(rows, scanCount)
}

func (s *SQLiteStore) CountsByWorkday(ctx context.Context, workdayID string) ([]model.Count, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, workday_id, shift_id, picker_id, boxes, updated_at FROM counts WHERE workday_id = ? ORDER BY id",
		workdayID,
	)
	if err != nil {
		return nil, errors.StoreUnavailable("query counts", err)
	}
	defer rows.Close()

	return scanAll(rows, scanCount)
}

func (s *SQLiteStore) CountsByWorkdays(ctx context.Context, workdayIDs []string) ([]model.Count, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(workdayIDs) == 0 {
		return nil, nil
	}
	query, args := inQuery(
		"SELECT id, workday_id, shift_id, picker_id, boxes, updated_at FROM counts WHERE workday_id IN (%s) ORDER BY workday_id, id",
		workdayIDs,
	)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.StoreUnavailable("query counts", err)
	}
	defer rows.Close()

	return scanAll(rows, scanCount)
}

// --- weekly closures ---

func (s *SQLiteStore) GetClosure(ctx context.Context, weekID string) (*model.WeeklyClosure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, week_start, week_end, status, closed_at, reopened_at, snapshot, note FROM weeks WHERE id = ?", weekID)
	return scanOne(row, scanClosure)
}

// PutClosure upserts the closure row for its week.
func (s *SQLiteStore) PutClosure(ctx context.Context, c model.WeeklyClosure) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO weeks (id, week_start, week_end, status, closed_at, reopened_at, snapshot, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   week_start = excluded.week_start,
		   week_end = excluded.week_end,
		   status = excluded.status,
		   closed_at = excluded.closed_at,
		   reopened_at = excluded.reopened_at,
		   snapshot = excluded.snapshot,
		   note = excluded.note`,
		c.ID, c.WeekStart, c.WeekEnd, string(c.Status), c.ClosedAt, c.ReopenedAt, string(c.Snapshot), c.Note,
	)
	if err != nil {
		return errors.StoreUnavailable("upsert closure", err)
	}
	return nil
}

// --- shared helpers ---

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertShift(ctx context.Context, tx execer, sh model.Shift) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO shifts (id, workday_id, orchard_id, orchard_name, price_per_box, seq, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		sh.ID, sh.WorkdayID, sh.OrchardID, sh.OrchardNameSnapshot, sh.PricePerBox.String(), sh.Seq, sh.CreatedAt,
	)
	if err != nil {
		return errors.StoreUnavailable("insert shift", err)
	}
	return nil
}

func insertCounts(ctx context.Context, tx execer, counts []model.Count) error {
	for _, c := range counts {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO counts (id, workday_id, shift_id, picker_id, boxes, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			c.ID, c.WorkdayID, c.ShiftID, c.PickerID, c.Boxes, c.UpdatedAt,
		)
		if err != nil {
			return errors.StoreUnavailable("insert count", err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOne[T any](row *sql.Row, scan func(rowScanner) (T, error)) (*T, error) {
	v, err := scan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.StoreUnavailable("scan row", err)
	}
	return &v, nil
}

func scanAll[T any](rows *sql.Rows, scan func(rowScanner) (T, error)) ([]T, error) {
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, errors.StoreUnavailable("scan row", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreUnavailable("iterate rows", err)
	}
	return out, nil
}

func scanPicker(r rowScanner) (model.Picker, error) {
	var p model.Picker
	var active int
	err := r.Scan(&p.ID, &p.Name, &p.Nickname, &active, &p.CreatedAt)
	p.Active = active != 0
	return p, err
}

func scanOrchard(r rowScanner) (model.Orchard, error) {
	var o model.Orchard
	var active int
	err := r.Scan(&o.ID, &o.Name, &active, &o.CreatedAt)
	o.Active = active != 0
	return o, err
}

func scanWorkday(r rowScanner) (model.Workday, error) {
	var w model.Workday
	var pickerIDs, status string
	if err := r.Scan(&w.ID, &w.Date, &pickerIDs, &w.CreatedAt, &status, &w.ClosedAt, &w.ReopenedAt); err != nil {
		return w, err
	}
	w.Status = model.WorkdayStatus(status)
	if err := json.Unmarshal([]byte(pickerIDs), &w.PickerIDs); err != nil {
		return w, err
	}
	return w, nil
}

func scanShift(r rowScanner) (model.Shift, error) {
	var sh model.Shift
	var price string
	if err := r.Scan(&sh.ID, &sh.WorkdayID, &sh.OrchardID, &sh.OrchardNameSnapshot, &price, &sh.Seq, &sh.CreatedAt); err != nil {
		return sh, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return sh, err
	}
	sh.PricePerBox = d
	return sh, nil
}

func scanCount(r rowScanner) (model.Count, error) {
	var c model.Count
	err := r.Scan(&c.ID, &c.WorkdayID, &c.ShiftID, &c.PickerID, &c.Boxes, &c.UpdatedAt)
	return c, err
}

func scanClosure(r rowScanner) (model.WeeklyClosure, error) {
	var c model.WeeklyClosure
	var status, snapshot string
	if err := r.Scan(&c.ID, &c.WeekStart, &c.WeekEnd, &status, &c.ClosedAt, &c.ReopenedAt, &snapshot, &c.Note); err != nil {
		return c, err
	}
	c.Status = model.WorkdayStatus(status)
	if snapshot != "" {
		c.Snapshot = json.RawMessage(snapshot)
	}
	return c, nil
}

func inQuery(format string, ids []string) (string, []any) {
	placeholders := make([]byte, 0, len(ids)*2)
	args := make([]any, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args = append(args, id)
	}
	return fmt.Sprintf(format, string(placeholders)), args
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
