package report

import (
	"context"
	"sort"
	"strings"

	"github.com/turmeiro/boxtally/internal/errors"
)

// BoardOrder selects how the marking board lists its rows.
type BoardOrder int

const (
	// BoardByName lists pickers alphabetically, the order used while marking.
	BoardByName BoardOrder = iota
	// BoardByBoxes lists the day's leaders first, names breaking ties.
	BoardByBoxes
)

// BoardRow is one picker's line on the marking board. Unlike report rows it
// keeps zero-box entries so every crew member stays visible and tappable.
type BoardRow struct {
	CountID  string `json:"countId"`
	PickerID string `json:"pickerId"`
	Name     string `json:"name"`
	Nickname string `json:"nickname,omitempty"`
	Boxes    int64  `json:"boxes"`
}

// Board is the live marking view of one shift.
type Board struct {
	ShiftID     string     `json:"shiftId"`
	ShiftNumber int        `json:"shiftNumber"`
	OrchardName string     `json:"orchardName"`
	Closed      bool       `json:"closed"`
	Rows        []BoardRow `json:"rows"`
	TotalBoxes  int64      `json:"totalBoxes"`
}

// ShiftBoard joins a shift's counts with picker names for the marking view.
// The filter matches name or nickname case-insensitively; empty keeps all.
func (e *Engine) ShiftBoard(ctx context.Context, shiftID, filter string, order BoardOrder) (*Board, error) {
	sh, err := e.store.GetShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		return nil, errors.NotFound("shift", shiftID)
	}
	wd, err := e.store.GetWorkday(ctx, sh.WorkdayID)
	if err != nil {
		return nil, err
	}
	if wd == nil {
		return nil, errors.NotFound("workday", sh.WorkdayID)
	}

	shifts, err := e.store.ShiftsByWorkday(ctx, sh.WorkdayID)
	if err != nil {
		return nil, err
	}
	number := 0
	for i, s := range shifts {
		if s.ID == shiftID {
			number = i + 1
		}
	}

	counts, err := e.store.CountsByShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	idx, err := e.pickerIndex(ctx)
	if err != nil {
		return nil, err
	}

	board := &Board{
		ShiftID:     sh.ID,
		ShiftNumber: number,
		OrchardName: sh.OrchardNameSnapshot,
		Closed:      wd.Closed(),
		Rows:        []BoardRow{},
	}

	needle := strings.ToLower(strings.TrimSpace(filter))
	for _, c := range counts {
		name, nickname := pickerName(idx, c.PickerID)
		if needle != "" && !matchesPicker(name, nickname, needle) {
			continue
		}
		board.Rows = append(board.Rows, BoardRow{
			CountID:  c.ID,
			PickerID: c.PickerID,
			Name:     name,
			Nickname: nickname,
			Boxes:    c.Boxes,
		})
		board.TotalBoxes += c.Boxes
	}

	sort.SliceStable(board.Rows, func(i, j int) bool {
		if order == BoardByBoxes && board.Rows[i].Boxes != board.Rows[j].Boxes {
			return board.Rows[i].Boxes > board.Rows[j].Boxes
		}
		return e.compareNames(board.Rows[i].Name, board.Rows[j].Name) < 0
	})

	return board, nil
}

func matchesPicker(name, nickname, needle string) bool {
	return strings.Contains(strings.ToLower(name), needle) ||
		strings.Contains(strings.ToLower(nickname), needle)
}

// OrchardDayGroups lists, for one workday, which shifts ran in each orchard.
// It backs the day header that shows "Talhão 1 (turnos 1, 3)".
func (e *Engine) OrchardDayGroups(ctx context.Context, workdayID string) (map[string][]int, error) {
	shifts, err := e.store.ShiftsByWorkday(ctx, workdayID)
	if err != nil {
		return nil, err
	}
	groups := make(map[string][]int, len(shifts))
	for i, sh := range shifts {
		groups[sh.OrchardNameSnapshot] = append(groups[sh.OrchardNameSnapshot], i+1)
	}
	return groups, nil
}
