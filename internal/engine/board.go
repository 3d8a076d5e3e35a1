package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// BoardSize is the width and height of every board.
const BoardSize = 10

const columns = "ABCDEFGHIJ"

type Coord struct {
	R int
	C int
}

func InBounds(r, c int) bool {
	return r >= 0 && r < BoardSize && c >= 0 && c < BoardSize
}

// Label renders a coordinate the way players read it: column letter then
// 1-based row, so (0,0) is "A1".
func Label(r, c int) string {
	if c < 0 || c >= len(columns) {
		return fmt.Sprintf("?%d%d", c, r+1)
	}
	return string(columns[c]) + strconv.Itoa(r+1)
}

func (c Coord) Label() string { return Label(c.R, c.C) }

func (c Coord) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{c.R, c.C})
}

func (c *Coord) UnmarshalJSON(b []byte) error {
	var pair []int
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("coordinate needs 2 values, got %d", len(pair))
	}
	c.R, c.C = pair[0], pair[1]
	return nil
}

// ShipID names the ship occupying a board cell. The zero value is an empty cell.
type ShipID string

func (id ShipID) Empty() bool { return id == "" }

// UnmarshalJSON accepts string or numeric ids. null, "" and 0 decode to an
// empty cell.
func (id *ShipID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "0" {
			s = ""
		}
		*id = ShipID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("ship id must be a string or number: %w", err)
	}
	if f, err := n.Float64(); err == nil && f == 0 {
		*id = ""
		return nil
	}
	*id = ShipID(n.String())
	return nil
}

type Board [][]ShipID

// At returns the ship at (r, c); cells outside the submitted grid are empty.
func (b Board) At(r, c int) ShipID {
	if r < 0 || r >= len(b) || c < 0 || c >= len(b[r]) {
		return ""
	}
	return b[r][c]
}

func (b Board) Validate() error {
	if len(b) != BoardSize {
		return fmt.Errorf("board needs %d rows, got %d", BoardSize, len(b))
	}
	for r, row := range b {
		if len(row) != BoardSize {
			return fmt.Errorf("board row %d needs %d cells, got %d", r, BoardSize, len(row))
		}
	}
	return nil
}

// Ships is a fleet layout: each ship and the cells it occupies, in order.
type Ships map[ShipID][]Coord

func (s Ships) Validate() error {
	for id, cells := range s {
		if id.Empty() {
			return fmt.Errorf("ship with empty id")
		}
		for _, c := range cells {
			if !InBounds(c.R, c.C) {
				return fmt.Errorf("ship %s: %w: %v", id, ErrOutOfBounds, c)
			}
		}
	}
	return nil
}
