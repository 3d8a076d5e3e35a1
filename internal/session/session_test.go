package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DoyleJ11/naval-battle-backend/internal/engine"
	"github.com/DoyleJ11/naval-battle-backend/internal/history"
	"github.com/DoyleJ11/naval-battle-backend/internal/types"
)

type fakeConn struct {
	id   string
	msgs []types.ServerMessage
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(msg types.ServerMessage) bool {
	c.msgs = append(c.msgs, msg)
	return true
}

func (c *fakeConn) kinds() []string {
	out := make([]string, len(c.msgs))
	for i, m := range c.msgs {
		out[i] = m.Type
	}
	return out
}

func (c *fakeConn) last() types.ServerMessage { return c.msgs[len(c.msgs)-1] }

func (c *fakeConn) reset() { c.msgs = nil }

// smallFleet is a single-cell ship at A1 and a two-cell ship at A3-B3.
func smallFleet() (engine.Board, engine.Ships) {
	board := make(engine.Board, engine.BoardSize)
	for r := range board {
		board[r] = make([]engine.ShipID, engine.BoardSize)
	}
	board[0][0] = "s"
	board[2][0], board[2][1] = "d", "d"
	return board, engine.Ships{
		"s": {{R: 0, C: 0}},
		"d": {{R: 2, C: 0}, {R: 2, C: 1}},
	}
}

func newSession(t *testing.T) (*Session, *fakeConn, *fakeConn) {
	t.Helper()
	a, b := &fakeConn{id: "a"}, &fakeConn{id: "b"}
	s := New(Participant{ID: "a", Name: "A", Conn: a}, Participant{ID: "b", Name: "B", Conn: b}, zap.NewNop())
	return s, a, b
}

func startBattle(t *testing.T) (*Session, *fakeConn, *fakeConn) {
	t.Helper()
	s, a, b := newSession(t)
	board, ships := smallFleet()
	s.Ready(engine.First, board, ships)
	s.Ready(engine.Second, board, ships)
	require.Equal(t, engine.PhaseBattle, s.State.Phase)
	a.reset()
	b.reset()
	return s, a, b
}

func TestNew_IDAndSides(t *testing.T) {
	s, _, _ := newSession(t)

	assert.Equal(t, "ab", s.ID)
	assert.Equal(t, engine.PhasePlacement, s.State.Phase)
	assert.Equal(t, engine.First, s.State.Turn)
	assert.Equal(t, engine.TotalCells, s.State.TotalCells)

	side, ok := s.SideOf("b")
	require.True(t, ok)
	assert.Equal(t, engine.Second, side)
	_, ok = s.SideOf("zzz")
	assert.False(t, ok)
}

func TestAnnounce_TellsEachPlayerTheirSide(t *testing.T) {
	s, a, b := newSession(t)
	s.Announce()

	require.Len(t, a.msgs, 1)
	require.Len(t, b.msgs, 1)
	assert.Equal(t, "game_found", a.msgs[0].Type)
	assert.Equal(t, "ab", a.msgs[0].GameID)
	assert.Equal(t, "A", a.msgs[0].P1Name)
	assert.Equal(t, "B", a.msgs[0].P2Name)
	assert.Equal(t, engine.First, *a.msgs[0].You)
	assert.Equal(t, engine.Second, *b.msgs[0].You)
}

func TestReady_WaitsThenStarts(t *testing.T) {
	s, a, b := newSession(t)
	board, ships := smallFleet()

	s.Ready(engine.First, board, ships)
	assert.Equal(t, []string{"you_are_ready", "waiting_for_opponent_ready"}, a.kinds())
	assert.Empty(t, b.msgs)

	s.Ready(engine.Second, board, ships)
	assert.Equal(t, []string{"you_are_ready", "battle_start"}, b.kinds())
	assert.Equal(t, "battle_start", a.last().Type)
	assert.Equal(t, engine.First, *a.last().Turn)
	assert.Equal(t, []string{"Battle started"}, a.last().Log)
}

func TestFire_WrongTurnOnlyTellsCaller(t *testing.T) {
	s, a, b := startBattle(t)

	assert.False(t, s.Fire(engine.Second, 5, 5))
	assert.Empty(t, a.msgs)
	assert.Equal(t, []string{"not_your_turn"}, b.kinds())
}

func TestFire_BroadcastsResultWithoutBoards(t *testing.T) {
	s, a, b := startBattle(t)

	s.Fire(engine.First, 5, 5)
	require.Len(t, a.msgs, 1)
	require.Len(t, b.msgs, 1)

	res := a.last()
	assert.Equal(t, "shot_result", res.Type)
	assert.Equal(t, engine.OutcomeMiss, res.ResultType)
	assert.Equal(t, engine.Second, *res.Turn)
	assert.Equal(t, engine.PhaseBattle, res.Phase)
	assert.Nil(t, res.Winner)
	assert.Equal(t, []engine.Coord{{R: 5, C: 5}}, res.AffectedCells)
	assert.Equal(t, res, b.last())
}

func TestFire_RefireIsSilent(t *testing.T) {
	s, a, b := startBattle(t)
	s.Fire(engine.First, 2, 0)
	a.reset()
	b.reset()

	s.Fire(engine.First, 2, 0)
	assert.Empty(t, a.msgs)
	assert.Empty(t, b.msgs)
}

func TestFire_BroadcastLogIsTrimmed(t *testing.T) {
	s, a, _ := startBattle(t)
	for i := 0; i < 20; i++ {
		s.State.Log = append(s.State.Log, "filler")
	}

	s.Fire(engine.First, 5, 5)
	assert.Len(t, a.last().Log, BroadcastLog)
}

func TestFire_WinEndsSession(t *testing.T) {
	s, a, _ := startBattle(t)
	s.State.TotalCells = 3

	assert.False(t, s.Fire(engine.First, 0, 0))
	assert.False(t, s.Fire(engine.First, 2, 0))
	assert.True(t, s.Fire(engine.First, 2, 1))

	res := a.last()
	assert.Equal(t, engine.OutcomeSunk, res.ResultType)
	assert.Equal(t, engine.PhaseFinished, res.Phase)
	require.NotNil(t, res.Winner)
	assert.Equal(t, engine.First, *res.Winner)
	assert.True(t, s.Finished())

	sum := s.Summary()
	assert.Equal(t, history.ReasonVictory, sum.Reason)
	assert.Equal(t, "p1", sum.Winner)
	assert.Equal(t, 3, sum.P1Hits)
	assert.False(t, sum.FinishedAt.IsZero())
}

func TestLeave_NotifiesOpponentOnce(t *testing.T) {
	s, a, b := startBattle(t)

	assert.True(t, s.Leave(engine.Second))
	assert.Equal(t, []string{"opponent_disconnected"}, a.kinds())
	assert.Empty(t, b.msgs)
	assert.Nil(t, s.State.Winner)

	assert.False(t, s.Leave(engine.First))
	assert.Len(t, b.msgs, 0)

	sum := s.Summary()
	assert.Equal(t, history.ReasonAbandoned, sum.Reason)
	assert.Empty(t, sum.Winner)
}
