// Package history records finished matches. Live sessions are never stored;
// only the summary of a match that has ended.
package history

import (
	"context"
	"time"

	"go.uber.org/multierr"
)

type Reason string

const (
	ReasonVictory   Reason = "victory"
	ReasonAbandoned Reason = "abandoned"
)

// Result summarises one finished match.
type Result struct {
	GameID     string
	P1Name     string
	P2Name     string
	Winner     string // "p1", "p2" or empty when nobody won
	Reason     Reason
	P1Shots    int
	P2Shots    int
	P1Hits     int
	P2Hits     int
	StartedAt  time.Time
	FinishedAt time.Time
}

type Recorder interface {
	Record(ctx context.Context, r Result) error
	Close() error
}

type Nop struct{}

func (Nop) Record(context.Context, Result) error { return nil }
func (Nop) Close() error                         { return nil }

// Multi fans a result out to every recorder and joins their errors.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, r Result) error {
	var err error
	for _, rec := range m {
		err = multierr.Append(err, rec.Record(ctx, r))
	}
	return err
}

func (m Multi) Close() error {
	var err error
	for _, rec := range m {
		err = multierr.Append(err, rec.Close())
	}
	return err
}
