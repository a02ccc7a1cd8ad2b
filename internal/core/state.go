package core

import (
	"sync"
	"time"
)

// State is the application state owned by a single controller. Its
// transitions return new values and never modify the receiver's slice.
type State struct {
	Transactions []Transaction
}

// AddTransaction returns a new state with tx appended.
func (s State) AddTransaction(tx Transaction) State {
	next := make([]Transaction, 0, len(s.Transactions)+1)
	next = append(next, s.Transactions...)
	next = append(next, tx)
	return State{Transactions: next}
}

// DeleteTransaction returns a new state without any transaction carrying
// id. When id is absent the original state is returned with false.
func (s State) DeleteTransaction(id int64) (State, bool) {
	if s.indexOf(id) < 0 {
		return s, false
	}
	next := make([]Transaction, 0, len(s.Transactions)-1)
	for _, t := range s.Transactions {
		if t.ID != id {
			next = append(next, t)
		}
	}
	return State{Transactions: next}, true
}

// Find returns the transaction with the given id.
func (s State) Find(id int64) (Transaction, bool) {
	if idx := s.indexOf(id); idx >= 0 {
		return s.Transactions[idx], true
	}
	return Transaction{}, false
}

// Newest returns a copy of the list, most recent first.
func (s State) Newest() []Transaction {
	out := make([]Transaction, len(s.Transactions))
	for i, t := range s.Transactions {
		out[len(s.Transactions)-1-i] = t
	}
	return out
}

// MaxID returns the largest id in the list, or zero when empty.
func (s State) MaxID() int64 {
	var max int64
	for _, t := range s.Transactions {
		if t.ID > max {
			max = t.ID
		}
	}
	return max
}

func (s State) Len() int {
	return len(s.Transactions)
}

func (s State) Summary() Summary {
	return Summarize(s.Transactions)
}

func (s State) indexOf(id int64) int {
	for i, t := range s.Transactions {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// IDGenerator issues time-based ids that strictly increase even when the
// clock stalls or goes backwards.
type IDGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewIDGenerator creates a generator using now, or time.Now when nil.
func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

// Next returns the next id: the current Unix millisecond, or last+1.
func (g *IDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// Seed makes every future id greater than floor.
func (g *IDGenerator) Seed(floor int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if floor > g.last {
		g.last = floor
	}
}
