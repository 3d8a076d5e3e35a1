// Package hub is the matchmaking service: it owns the waiting slot, the
// session registry and the connection bindings, and mutates them from a
// single goroutine, one message at a time.
package hub

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/naval-battle-backend/internal/engine"
	"github.com/DoyleJ11/naval-battle-backend/internal/history"
	"github.com/DoyleJ11/naval-battle-backend/internal/queue"
	"github.com/DoyleJ11/naval-battle-backend/internal/session"
	"github.com/DoyleJ11/naval-battle-backend/internal/types"
)

// DefaultCleanupDelay is how long a finished session stays in the registry.
const DefaultCleanupDelay = 60 * time.Second

const recordTimeout = 5 * time.Second

type HubMsg interface{ isHubMsg() }

type JoinQueue struct {
	Conn session.Conn
	Name string
}

type Ready struct {
	ClientID string
	Board    engine.Board
	Ships    engine.Ships
}

type Fire struct {
	ClientID string
	R, C     int
}

type Disconnect struct {
	ClientID string
}

// RemoveSession deletes a registry entry. When Session is set the entry is
// only removed if it is still that session.
type RemoveSession struct {
	ID      string
	Session *session.Session
}

type LookupSession struct {
	ID    string
	Reply chan *View
}

type GetStats struct {
	Reply chan Stats
}

type ShutdownHub struct{}

func (JoinQueue) isHubMsg()     {}
func (Ready) isHubMsg()         {}
func (Fire) isHubMsg()          {}
func (Disconnect) isHubMsg()    {}
func (RemoveSession) isHubMsg() {}
func (LookupSession) isHubMsg() {}
func (GetStats) isHubMsg()      {}
func (ShutdownHub) isHubMsg()   {}

// View is a copy of a session's public state.
type View struct {
	ID      string
	Phase   engine.Phase
	Turn    engine.Side
	Winner  *engine.Side
	Names   [2]string
	Tallies [2]int
	Log     []string
}

type Stats struct {
	Waiting  bool `json:"waiting"`
	Sessions int  `json:"sessions"`
	Active   int  `json:"active"`
}

type Option func(*Hub)

func WithCleanupDelay(d time.Duration) Option {
	return func(h *Hub) { h.cleanupDelay = d }
}

func WithRecorder(r history.Recorder) Option {
	return func(h *Hub) { h.recorder = r }
}

type Hub struct {
	inbox    chan HubMsg
	queue    queue.Queue[session.Conn]
	sessions map[string]*session.Session
	bindings map[string]*session.Session // connection id -> session
	timers   map[*session.Session]*time.Timer

	cleanupDelay time.Duration
	recorder     history.Recorder
	log          *zap.Logger

	records sync.WaitGroup
	done    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewHub(parent context.Context, log *zap.Logger, opts ...Option) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:        make(chan HubMsg, 64),
		sessions:     make(map[string]*session.Session),
		bindings:     make(map[string]*session.Session),
		timers:       make(map[*session.Session]*time.Timer),
		cleanupDelay: DefaultCleanupDelay,
		recorder:     history.Nop{},
		log:          log,
		done:         make(chan struct{}),
		ctx:          ctx,
		cancel:       cancel,
	}
	for _, opt := range opts {
		opt(h)
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Send delivers m unless the hub has stopped.
func (h *Hub) Send(m HubMsg) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.inbox <- m:
		return true
	case <-h.done:
		return false
	}
}

// Close stops the hub and waits for pending history writes.
func (h *Hub) Close() {
	h.Send(ShutdownHub{})
	<-h.done
	h.records.Wait()
}

func (h *Hub) loop() {
	defer close(h.done)
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case JoinQueue:
				h.join(msg)

			case Ready:
				sess, side, ok := h.bound(msg.ClientID)
				if !ok {
					break
				}
				sess.Ready(side, msg.Board, msg.Ships)

			case Fire:
				sess, side, ok := h.bound(msg.ClientID)
				if !ok {
					break
				}
				if sess.Fire(side, msg.R, msg.C) {
					h.finish(sess)
				}

			case Disconnect:
				h.disconnect(msg.ClientID)

			case RemoveSession:
				h.remove(msg.ID, msg.Session)

			case LookupSession:
				msg.Reply <- h.view(msg.ID) // may be nil

			case GetStats:
				msg.Reply <- h.stats()

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) join(msg JoinQueue) {
	id := msg.Conn.ID()
	if sess := h.bindings[id]; sess != nil {
		if !sess.Finished() {
			h.log.Debug("join ignored, client is in a game", zap.String("client", id), zap.String("session", sess.ID))
			return
		}
		delete(h.bindings, id)
	}

	pair, ok := h.queue.Join(session.Participant{ID: id, Name: msg.Name, Conn: msg.Conn})
	if !ok {
		h.log.Info("client waiting", zap.String("client", id), zap.String("name", msg.Name))
		msg.Conn.Send(types.NewWaiting(1))
		return
	}

	sess := session.New(pair.First, pair.Second, h.log)
	if old := h.sessions[sess.ID]; old != nil {
		h.unbind(old)
	}
	h.sessions[sess.ID] = sess
	h.bindings[pair.First.ID] = sess
	h.bindings[pair.Second.ID] = sess

	h.log.Info("game created",
		zap.String("session", sess.ID),
		zap.String("p1", pair.First.Name),
		zap.String("p2", pair.Second.Name))
	sess.Announce()
}

func (h *Hub) bound(clientID string) (*session.Session, engine.Side, bool) {
	sess := h.bindings[clientID]
	if sess == nil {
		return nil, 0, false
	}
	side, ok := sess.SideOf(clientID)
	return sess, side, ok
}

func (h *Hub) disconnect(clientID string) {
	if h.queue.Leave(clientID) {
		h.log.Info("waiting client left", zap.String("client", clientID))
	}

	sess, side, ok := h.bound(clientID)
	if !ok {
		return
	}
	delete(h.bindings, clientID)
	if sess.Leave(side) {
		h.finish(sess)
	}
}

// finish schedules removal of a session that just reached finished and
// records its result.
func (h *Hub) finish(sess *session.Session) {
	if _, scheduled := h.timers[sess]; scheduled {
		return
	}
	h.timers[sess] = time.AfterFunc(h.cleanupDelay, func() {
		h.Send(RemoveSession{ID: sess.ID, Session: sess})
	})

	res := sess.Summary()
	h.records.Add(1)
	go func() {
		defer h.records.Done()
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := h.recorder.Record(ctx, res); err != nil {
			h.log.Error("record match", zap.String("session", res.GameID), zap.Error(err))
		}
	}()
}

func (h *Hub) remove(id string, want *session.Session) {
	sess := h.sessions[id]
	if sess == nil || (want != nil && sess != want) {
		if want != nil {
			delete(h.timers, want)
		}
		return
	}
	delete(h.sessions, id)
	h.unbind(sess)
	if t := h.timers[sess]; t != nil {
		t.Stop()
		delete(h.timers, sess)
	}
	h.log.Info("session removed", zap.String("session", id))
}

func (h *Hub) unbind(sess *session.Session) {
	for _, side := range []engine.Side{engine.First, engine.Second} {
		id := sess.Player(side).ID
		if h.bindings[id] == sess {
			delete(h.bindings, id)
		}
	}
}

func (h *Hub) view(id string) *View {
	sess := h.sessions[id]
	if sess == nil {
		return nil
	}
	st := sess.State
	v := &View{
		ID:    sess.ID,
		Phase: st.Phase,
		Turn:  st.Turn,
		Log:   st.RecentLog(engine.MaxLog),
	}
	if st.Winner != nil {
		w := *st.Winner
		v.Winner = &w
	}
	for _, side := range []engine.Side{engine.First, engine.Second} {
		v.Names[side] = st.Players[side].Name
		v.Tallies[side] = st.Tally(side)
	}
	return v
}

func (h *Hub) stats() Stats {
	_, waiting := h.queue.Waiting()
	s := Stats{Waiting: waiting, Sessions: len(h.sessions)}
	for _, sess := range h.sessions {
		if !sess.Finished() {
			s.Active++
		}
	}
	return s
}

func (h *Hub) shutdown() {
	for sess, t := range h.timers {
		t.Stop()
		delete(h.timers, sess)
	}
	clear(h.sessions)
	clear(h.bindings)
	h.cancel()
}
