package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is where finished matches are published.
const DefaultSubject = "battleship.matches"

type publishConn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// Publisher announces finished matches on a NATS subject as JSON.
type Publisher struct {
	conn    publishConn
	subject string
}

func ConnectPublisher(url, subject string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("naval-battle-backend"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return newPublisher(conn, subject), nil
}

func newPublisher(conn publishConn, subject string) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Publisher{conn: conn, subject: subject}
}

type matchEvent struct {
	GameID     string    `json:"gameId"`
	P1Name     string    `json:"p1Name"`
	P2Name     string    `json:"p2Name"`
	Winner     string    `json:"winner,omitempty"`
	Reason     Reason    `json:"reason"`
	P1Hits     int       `json:"p1Hits"`
	P2Hits     int       `json:"p2Hits"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

func (p *Publisher) Record(ctx context.Context, r Result) error {
	data, err := json.Marshal(matchEvent{
		GameID:     r.GameID,
		P1Name:     r.P1Name,
		P2Name:     r.P2Name,
		Winner:     r.Winner,
		Reason:     r.Reason,
		P1Hits:     r.P1Hits,
		P2Hits:     r.P2Hits,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	})
	if err != nil {
		return err
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", p.subject, err)
	}
	return p.conn.FlushWithContext(ctx)
}

func (p *Publisher) Close() error { return p.conn.Drain() }
