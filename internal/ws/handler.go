package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/naval-battle-backend/internal/hub"
	"github.com/DoyleJ11/naval-battle-backend/internal/types"
)

const (
	outboxSize   = 32
	writeTimeout = 3 * time.Second
	pingInterval = 30 * time.Second
	readLimit    = 16 << 10
)

// client is the hub's view of one websocket connection.
type client struct {
	id  string
	out chan types.ServerMessage
}

func (c *client) ID() string { return c.id }

// Send queues msg for the writer goroutine without blocking the hub.
func (c *client) Send(msg types.ServerMessage) bool {
	select {
	case c.out <- msg:
		return true
	default:
		return false
	}
}

type Options struct {
	// OriginPatterns loosens the same-origin check, e.g. "localhost:*" in dev.
	OriginPatterns []string
}

func Handler(h *hub.Hub, log *zap.Logger, opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			log.Debug("websocket accept", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")
		conn.SetReadLimit(readLimit)

		c := &client{id: uuid.NewString(), out: make(chan types.ServerMessage, outboxSize)}
		clog := log.With(zap.String("client", c.id))
		clog.Info("client connected", zap.String("remote", r.RemoteAddr))
		defer func() {
			h.Send(hub.Disconnect{ClientID: c.id})
			clog.Info("client disconnected")
		}()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		go writeLoop(ctx, conn, c.out, clog)
		go pingLoop(ctx, conn)

		// Reader loop
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					clog.Debug("read", zap.Error(err))
				}
				return
			}

			req, err := types.Decode(data)
			if err != nil {
				c.Send(types.NewError(err.Error()))
				continue
			}
			if !h.Send(toHubMsg(c, req)) {
				return
			}
		}
	}
}

func toHubMsg(c *client, req types.Request) hub.HubMsg {
	switch {
	case req.Join != nil:
		return hub.JoinQueue{Conn: c, Name: req.Join.Name}
	case req.Ready != nil:
		return hub.Ready{ClientID: c.id, Board: req.Ready.Board, Ships: req.Ready.Ships}
	default:
		return hub.Fire{ClientID: c.id, R: req.Fire.R, C: req.Fire.C}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn, out <-chan types.ServerMessage, log *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-out:
			payload, err := json.Marshal(msg)
			if err != nil {
				log.Error("marshal message", zap.String("type", msg.Type), zap.Error(err))
				continue
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err = conn.Write(wctx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				log.Debug("write", zap.Error(err))
				return
			}
		}
	}
}

func pingLoop(ctx context.Context, conn *websocket.Conn) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			pctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				conn.Close(websocket.StatusGoingAway, "ping timeout")
				return
			}
		}
	}
}
