// Package queue holds the single waiting slot used to pair players.
package queue

// Participant is a connection waiting for, or paired into, a game.
type Participant[C any] struct {
	ID   string
	Name string
	Conn C
}

// Pair is two distinct participants; First was waiting, Second arrived.
type Pair[C any] struct {
	First  Participant[C]
	Second Participant[C]
}

// Queue pairs arrivals FIFO-of-one. It is not safe for concurrent use; the
// owner serialises access.
type Queue[C any] struct {
	waiting *Participant[C]
}

// Join stores p when nobody is waiting, or pairs it with the waiting
// participant. A repeated join from the participant already waiting
// re-stores it and reports no pair.
func (q *Queue[C]) Join(p Participant[C]) (Pair[C], bool) {
	if q.waiting == nil || q.waiting.ID == p.ID {
		q.waiting = &p
		return Pair[C]{}, false
	}

	first := *q.waiting
	q.waiting = nil
	return Pair[C]{First: first, Second: p}, true
}

// Leave clears the slot if id is the one waiting.
func (q *Queue[C]) Leave(id string) bool {
	if q.waiting == nil || q.waiting.ID != id {
		return false
	}
	q.waiting = nil
	return true
}

func (q *Queue[C]) Waiting() (Participant[C], bool) {
	if q.waiting == nil {
		return Participant[C]{}, false
	}
	return *q.waiting, true
}
