// Package model defines the persisted record types of the tally engine.
//
// All identifiers are opaque strings (UUIDs, except WeeklyClosure which is
// keyed by its week-start date) and all timestamps are integer milliseconds
// since the Unix epoch, matching the export/import document format.
package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WorkdayStatus is the open/closed state of a workday or weekly closure.
type WorkdayStatus string

const (
	StatusOpen   WorkdayStatus = "open"
	StatusClosed WorkdayStatus = "closed"
)

// Picker is a harvest worker. Inactive pickers are hidden from new-workday
// selection but keep their historical counts.
type Picker struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Nickname  string `json:"nickname,omitempty"`
	Active    bool   `json:"active"`
	CreatedAt int64  `json:"createdAt"`
}

// Orchard is a harvest location / price zone.
type Orchard struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	CreatedAt int64  `json:"createdAt"`
}

// Workday is one calendar day's harvest record for a fixed crew. The picker
// set is fixed at creation time; at most one workday exists per date.
type Workday struct {
	ID         string        `json:"id"`
	Date       string        `json:"date"` // YYYY-MM-DD
	PickerIDs  []string      `json:"pickerIds"`
	CreatedAt  int64         `json:"createdAt"`
	Status     WorkdayStatus `json:"status,omitempty"`
	ClosedAt   int64         `json:"closedAt,omitempty"`
	ReopenedAt int64         `json:"reopenedAt,omitempty"`
}

// Closed reports whether the workday counts as closed. Status is
// authoritative; records predating the status field are treated as closed
// when they carry a close timestamp.
func (w *Workday) Closed() bool {
	if w.Status != "" {
		return w.Status == StatusClosed
	}
	return w.ClosedAt > 0
}

// Shift is a sub-period of a workday with one orchard and one price.
// Shifts are immutable once created; changing orchard or price means
// creating a new shift. Seq is a per-workday monotonic counter and the
// authoritative ordering key.
type Shift struct {
	ID                  string          `json:"id"`
	WorkdayID           string          `json:"workdayId"`
	OrchardID           string          `json:"orchardId"`
	OrchardNameSnapshot string          `json:"orchardNameSnapshot"`
	PricePerBox         decimal.Decimal `json:"pricePerBox"`
	Seq                 int64           `json:"seq"`
	CreatedAt           int64           `json:"createdAt"`
}

// Count is the running box tally for one picker within one shift. Exactly
// one count exists per (shift, picker) pair, created with the shift.
type Count struct {
	ID        string `json:"id"`
	WorkdayID string `json:"workdayId"`
	ShiftID   string `json:"shiftId"`
	PickerID  string `json:"pickerId"`
	Boxes     int64  `json:"boxes"`
	UpdatedAt int64  `json:"updatedAt"`
}

// WeeklyClosure is the open/closed record of one calendar week, keyed by the
// week's Monday date. A closed record carries the aggregation snapshot
// frozen at close time.
type WeeklyClosure struct {
	ID         string          `json:"id"` // week start date, YYYY-MM-DD
	WeekStart  string          `json:"weekStart"`
	WeekEnd    string          `json:"weekEnd"`
	Status     WorkdayStatus   `json:"status"`
	ClosedAt   int64           `json:"closedAt,omitempty"`
	ReopenedAt int64           `json:"reopenedAt,omitempty"`
	Snapshot   json.RawMessage `json:"snapshot,omitempty"`
	Note       string          `json:"note,omitempty"`
}

// Closed reports whether the closure record freezes its week.
func (c *WeeklyClosure) Closed() bool {
	return c.Status == StatusClosed
}

// UnknownPickerName is displayed for counts whose picker record was deleted.
const UnknownPickerName = "Desconhecido"

// NewID returns a fresh opaque record id.
func NewID() string {
	return uuid.NewString()
}

// Now returns the current wall-clock time in epoch milliseconds.
func Now() int64 {
	return time.Now().UnixMilli()
}
