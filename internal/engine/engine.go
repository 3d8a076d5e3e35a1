package engine

import (
	"errors"
	"fmt"
)

var ErrWrongTurn = errors.New("not your turn")
var ErrAlreadyFired = errors.New("cell already fired at")
var ErrNotInBattle = errors.New("game is not in battle")
var ErrNotInPlacement = errors.New("game is not in placement")
var ErrOutOfBounds = errors.New("coordinate out of bounds")
var ErrUnknownSide = errors.New("unknown side")

// TotalCells is the number of occupied cells in the standard fleet
// (4+3+3+2+2+2+1+1+1+1). A side wins once its hit+sunk tally reaches it.
const TotalCells = 20

// MaxLog bounds the event log kept on a session.
const MaxLog = 50

type Side int

const (
	First Side = iota
	Second
)

func (s Side) Valid() bool { return s == First || s == Second }

func (s Side) Opponent() Side {
	if s == First {
		return Second
	}
	return First
}

func (s Side) String() string {
	switch s {
	case First:
		return "p1"
	case Second:
		return "p2"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

func (s Side) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, ErrUnknownSide
	}
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(b []byte) error {
	switch string(b) {
	case "p1":
		*s = First
	case "p2":
		*s = Second
	default:
		return ErrUnknownSide
	}
	return nil
}

type Phase string

const (
	PhasePlacement Phase = "placement"
	PhaseBattle    Phase = "battle"
	PhaseFinished  Phase = "finished"
)

type Outcome string

const (
	OutcomeMiss Outcome = "miss"
	OutcomeHit  Outcome = "hit"
	OutcomeSunk Outcome = "sunk"
)

// ShotRecord maps every coordinate a side fired at to what was recorded there.
type ShotRecord map[Coord]Outcome

type Player struct {
	Name  string
	Board Board
	Ships Ships
	Shots ShotRecord
	Ready bool
}

type State struct {
	Players    [2]Player
	Turn       Side
	Phase      Phase
	Winner     *Side
	Log        []string
	TotalCells int
}

// Shot is the resolved outcome of a single fire command.
type Shot struct {
	Shooter  Side
	R, C     int
	Result   Outcome
	Affected []Coord
	Turn     Side
	Phase    Phase
	Winner   *Side
}

// Ready stores a side's board and fleet. started reports whether this call
// moved the game into battle.
func (s *State) Ready(side Side, board Board, ships Ships) (started bool, err error) {
	if !side.Valid() {
		return false, ErrUnknownSide
	}
	if s.Phase != PhasePlacement {
		return false, ErrNotInPlacement
	}

	p := &s.Players[side]
	p.Board = board
	p.Ships = ships
	p.Ready = true

	if !s.Players[side.Opponent()].Ready {
		return false, nil
	}

	s.Phase = PhaseBattle
	s.appendLog("Battle started")
	return true, nil
}

func (s *State) Fire(side Side, r, c int) (Shot, error) {
	if !side.Valid() {
		return Shot{}, ErrUnknownSide
	}
	if s.Phase != PhaseBattle {
		return Shot{}, ErrNotInBattle
	}
	if !InBounds(r, c) {
		return Shot{}, ErrOutOfBounds
	}
	if side != s.Turn {
		return Shot{}, ErrWrongTurn
	}

	at := Coord{R: r, C: c}
	shooter := &s.Players[side]
	target := &s.Players[side.Opponent()]
	if _, done := shooter.Shots[at]; done {
		return Shot{}, ErrAlreadyFired
	}

	shot := Shot{Shooter: side, R: r, C: c}
	ship := target.Board.At(r, c)

	switch {
	case ship.Empty():
		shooter.Shots[at] = OutcomeMiss
		shot.Result = OutcomeMiss
		shot.Affected = []Coord{at}
		s.Turn = side.Opponent()
		s.appendLog(fmt.Sprintf("%s fired at %s: miss", shooter.Name, at.Label()))

	default:
		cells := target.Ships[ship]
		previous := 0
		for _, cell := range cells {
			if _, ok := shooter.Shots[cell]; ok {
				previous++
			}
		}

		if previous+1 < len(cells) {
			shooter.Shots[at] = OutcomeHit
			shot.Result = OutcomeHit
			shot.Affected = []Coord{at}
			s.appendLog(fmt.Sprintf("%s fired at %s: hit", shooter.Name, at.Label()))
			break
		}

		shot.Result = OutcomeSunk
		shot.Affected = sunkCells(cells, at)
		for _, cell := range shot.Affected {
			shooter.Shots[cell] = OutcomeSunk
		}
		s.appendLog(fmt.Sprintf("%s fired at %s: ship sunk", shooter.Name, at.Label()))
	}

	if s.Tally(side) >= s.TotalCells {
		s.Phase = PhaseFinished
		winner := side
		s.Winner = &winner
		s.appendLog(fmt.Sprintf("%s won the battle", shooter.Name))
	}

	shot.Turn = s.Turn
	shot.Phase = s.Phase
	shot.Winner = s.Winner
	return shot, nil
}

// Abandon ends the game because leaver disconnected. No winner is set.
// It reports false when the game had already finished.
func (s *State) Abandon(leaver Side) bool {
	if !leaver.Valid() || s.Phase == PhaseFinished {
		return false
	}
	s.Phase = PhaseFinished
	s.appendLog(fmt.Sprintf("%s left the game", s.Players[leaver].Name))
	return true
}

// Tally counts the cells side has hit or sunk.
func (s *State) Tally(side Side) int {
	n := 0
	for _, o := range s.Players[side].Shots {
		if o == OutcomeHit || o == OutcomeSunk {
			n++
		}
	}
	return n
}

func (s *State) appendLog(entry string) {
	s.Log = append(s.Log, entry)
	if len(s.Log) > MaxLog {
		s.Log = append([]string(nil), s.Log[len(s.Log)-MaxLog:]...)
	}
}
