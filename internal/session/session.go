// Package session binds one match's engine state to the two connections
// playing it and turns engine results into outbound notifications.
package session

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/naval-battle-backend/internal/engine"
	"github.com/DoyleJ11/naval-battle-backend/internal/history"
	"github.com/DoyleJ11/naval-battle-backend/internal/queue"
	"github.com/DoyleJ11/naval-battle-backend/internal/types"
)

// BroadcastLog is how many log entries travel with a shot result.
const BroadcastLog = 10

// Conn is the transport side of a player. Send must not block; it reports
// false when the message was dropped.
type Conn interface {
	ID() string
	Send(msg types.ServerMessage) bool
}

type Participant = queue.Participant[Conn]

type Session struct {
	ID         string
	State      *engine.State
	StartedAt  time.Time
	FinishedAt time.Time

	players [2]Participant
	log     *zap.Logger
}

// New builds the session for a freshly paired couple. The id is the two
// connection ids concatenated, first side first.
func New(first, second Participant, log *zap.Logger) *Session {
	id := first.ID + second.ID
	return &Session{
		ID:        id,
		State:     engine.NewState(first.Name, second.Name),
		StartedAt: time.Now(),
		players:   [2]Participant{first, second},
		log:       log.With(zap.String("session", id)),
	}
}

func (s *Session) Player(side engine.Side) Participant { return s.players[side] }

// SideOf reports which side connID plays.
func (s *Session) SideOf(connID string) (engine.Side, bool) {
	for i, p := range s.players {
		if p.ID == connID {
			return engine.Side(i), true
		}
	}
	return 0, false
}

func (s *Session) Finished() bool { return s.State.Finished() }

// Announce tells both players a game was found.
func (s *Session) Announce() {
	p1, p2 := s.players[engine.First].Name, s.players[engine.Second].Name
	for i := range s.players {
		side := engine.Side(i)
		s.send(side, types.NewGameFound(s.ID, p1, p2, side))
	}
}

func (s *Session) Ready(side engine.Side, board engine.Board, ships engine.Ships) {
	started, err := s.State.Ready(side, board, ships)
	if err != nil {
		s.log.Debug("ready dropped", zap.Stringer("side", side), zap.Error(err))
		return
	}

	s.send(side, types.NewYouAreReady())
	if !started {
		s.send(side, types.NewWaitingForOpponent())
		return
	}

	s.log.Info("battle started")
	s.broadcast(types.NewBattleStart(s.State.Turn, s.State.RecentLog(engine.MaxLog)))
}

// Fire resolves a shot. It reports true when the shot ended the game.
func (s *Session) Fire(side engine.Side, r, c int) bool {
	shot, err := s.State.Fire(side, r, c)
	switch {
	case errors.Is(err, engine.ErrWrongTurn):
		s.send(side, types.NewNotYourTurn())
		return false
	case err != nil:
		s.log.Debug("fire dropped", zap.Stringer("side", side), zap.Int("r", r), zap.Int("c", c), zap.Error(err))
		return false
	}

	s.broadcast(types.NewShotResult(shot, s.State.RecentLog(BroadcastLog)))
	if shot.Phase != engine.PhaseFinished {
		return false
	}

	s.FinishedAt = time.Now()
	s.log.Info("battle won", zap.Stringer("winner", side))
	return true
}

// Leave handles a disconnect. It reports true when it ended the game.
func (s *Session) Leave(side engine.Side) bool {
	if !s.State.Abandon(side) {
		return false
	}
	s.FinishedAt = time.Now()
	s.send(side.Opponent(), types.NewOpponentDisconnected())
	s.log.Info("player left", zap.Stringer("side", side))
	return true
}

// Summary is the history record of a finished session.
func (s *Session) Summary() history.Result {
	st := s.State
	res := history.Result{
		GameID:     s.ID,
		P1Name:     st.Players[engine.First].Name,
		P2Name:     st.Players[engine.Second].Name,
		Reason:     history.ReasonAbandoned,
		P1Shots:    len(st.Players[engine.First].Shots),
		P2Shots:    len(st.Players[engine.Second].Shots),
		P1Hits:     st.Tally(engine.First),
		P2Hits:     st.Tally(engine.Second),
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
	}
	if st.Winner != nil {
		res.Winner = st.Winner.String()
		res.Reason = history.ReasonVictory
	}
	return res
}

func (s *Session) send(side engine.Side, msg types.ServerMessage) {
	p := s.players[side]
	if !p.Conn.Send(msg) {
		s.log.Warn("dropped message for slow client", zap.String("client", p.ID), zap.String("type", msg.Type))
	}
}

func (s *Session) broadcast(msg types.ServerMessage) {
	for i := range s.players {
		s.send(engine.Side(i), msg)
	}
}
