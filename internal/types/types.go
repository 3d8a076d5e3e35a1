package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/DoyleJ11/naval-battle-backend/internal/engine"
	wire "github.com/DoyleJ11/naval-battle-backend/pkg/types"
)

var ErrUnknownType = errors.New("unknown type")

// MaxNameLen bounds display names; longer names are cut.
const MaxNameLen = 32

type ClientMessage struct {
	Type  string       `json:"type"`
	Name  string       `json:"name,omitempty"`
	Board engine.Board `json:"board,omitempty"`
	Ships engine.Ships `json:"ships,omitempty"`
	R     *int         `json:"r,omitempty"`
	C     *int         `json:"c,omitempty"`
}

type ServerMessage struct {
	Type          string         `json:"type"`
	Position      int            `json:"position,omitempty"`
	GameID        string         `json:"gameId,omitempty"`
	P1Name        string         `json:"p1Name,omitempty"`
	P2Name        string         `json:"p2Name,omitempty"`
	You           *engine.Side   `json:"you,omitempty"`
	Shooter       *engine.Side   `json:"shooter,omitempty"`
	R             *int           `json:"r,omitempty"`
	C             *int           `json:"c,omitempty"`
	ResultType    engine.Outcome `json:"resultType,omitempty"`
	AffectedCells []engine.Coord `json:"affectedCells,omitempty"`
	Turn          *engine.Side   `json:"turn,omitempty"`
	Phase         engine.Phase   `json:"phase,omitempty"`
	Winner        *engine.Side   `json:"winner,omitempty"`
	Log           []string       `json:"log,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// Request is a validated inbound message. Exactly one field is set.
type Request struct {
	Join  *JoinRequest
	Ready *ReadyRequest
	Fire  *FireRequest
}

type JoinRequest struct{ Name string }

type ReadyRequest struct {
	Board engine.Board
	Ships engine.Ships
}

type FireRequest struct{ R, C int }

// Decode parses and validates one inbound frame.
func Decode(data []byte) (Request, error) {
	var cm ClientMessage
	if err := json.Unmarshal(data, &cm); err != nil {
		return Request{}, fmt.Errorf("bad json: %w", err)
	}
	return cm.Request()
}

func (m ClientMessage) Request() (Request, error) {
	switch m.Type {
	case wire.JoinQueue:
		return Request{Join: &JoinRequest{Name: cleanName(m.Name)}}, nil

	case wire.PlayerReady:
		if err := m.Board.Validate(); err != nil {
			return Request{}, err
		}
		if err := m.Ships.Validate(); err != nil {
			return Request{}, err
		}
		ships := m.Ships
		if ships == nil {
			ships = engine.Ships{}
		}
		return Request{Ready: &ReadyRequest{Board: m.Board, Ships: ships}}, nil

	case wire.Fire:
		if m.R == nil || m.C == nil {
			return Request{}, errors.New("fire needs r and c")
		}
		if !engine.InBounds(*m.R, *m.C) {
			return Request{}, engine.ErrOutOfBounds
		}
		return Request{Fire: &FireRequest{R: *m.R, C: *m.C}}, nil

	default:
		return Request{}, fmt.Errorf("%w: %q", ErrUnknownType, m.Type)
	}
}

func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Player"
	}
	if r := []rune(name); len(r) > MaxNameLen {
		name = string(r[:MaxNameLen])
	}
	return name
}

func sidePtr(s engine.Side) *engine.Side { return &s }

func intPtr(n int) *int { return &n }

func NewWaiting(position int) ServerMessage {
	return ServerMessage{Type: wire.Waiting, Position: position}
}

func NewGameFound(gameID, p1Name, p2Name string, you engine.Side) ServerMessage {
	return ServerMessage{Type: wire.GameFound, GameID: gameID, P1Name: p1Name, P2Name: p2Name, You: sidePtr(you)}
}

func NewYouAreReady() ServerMessage { return ServerMessage{Type: wire.YouAreReady} }

func NewWaitingForOpponent() ServerMessage {
	return ServerMessage{Type: wire.WaitingForOpponentReady}
}

func NewBattleStart(turn engine.Side, log []string) ServerMessage {
	return ServerMessage{Type: wire.BattleStart, Turn: sidePtr(turn), Phase: engine.PhaseBattle, Log: log}
}

func NewNotYourTurn() ServerMessage { return ServerMessage{Type: wire.NotYourTurn} }

func NewShotResult(shot engine.Shot, log []string) ServerMessage {
	return ServerMessage{
		Type:          wire.ShotResult,
		Shooter:       sidePtr(shot.Shooter),
		R:             intPtr(shot.R),
		C:             intPtr(shot.C),
		ResultType:    shot.Result,
		AffectedCells: shot.Affected,
		Turn:          sidePtr(shot.Turn),
		Phase:         shot.Phase,
		Winner:        shot.Winner,
		Log:           log,
	}
}

func NewOpponentDisconnected() ServerMessage {
	return ServerMessage{Type: wire.OpponentDisconnected}
}

func NewError(msg string) ServerMessage { return ServerMessage{Type: wire.Error, Error: msg} }
