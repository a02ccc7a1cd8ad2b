package core

import (
	"testing"
	"time"
)

func TestStateAddAndDelete(t *testing.T) {
	var s State
	s1 := s.AddTransaction(tx(1, 100, CategoryIncome))
	s2 := s1.AddTransaction(tx(2, -50, "Food"))

	if s.Len() != 0 || s1.Len() != 1 || s2.Len() != 2 {
		t.Fatalf("transitions must not mutate previous states: %d %d %d", s.Len(), s1.Len(), s2.Len())
	}

	s3, ok := s2.DeleteTransaction(1)
	if !ok || s3.Len() != 1 || s3.Transactions[0].ID != 2 {
		t.Fatalf("unexpected delete result: ok=%v state=%+v", ok, s3)
	}
	if s2.Len() != 2 {
		t.Fatalf("delete mutated the source state")
	}

	s4, ok := s3.DeleteTransaction(42)
	if ok || s4.Len() != 1 {
		t.Fatalf("deleting unknown id should be a no-op")
	}
}

func TestStateNewestAndFind(t *testing.T) {
	s := State{Transactions: []Transaction{tx(1, 1, ""), tx(2, 2, ""), tx(3, 3, "")}}
	newest := s.Newest()
	if newest[0].ID != 3 || newest[2].ID != 1 {
		t.Fatalf("newest order wrong: %+v", newest)
	}
	if s.Transactions[0].ID != 1 {
		t.Fatalf("Newest must return a copy")
	}
	if got, ok := s.Find(2); !ok || got.ID != 2 {
		t.Fatalf("find failed")
	}
	if _, ok := s.Find(9); ok {
		t.Fatalf("find should miss")
	}
	if s.MaxID() != 3 {
		t.Fatalf("max id = %d", s.MaxID())
	}
}

func TestIDGeneratorMonotonic(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	g := NewIDGenerator(func() time.Time { return fixed })

	a, b, c := g.Next(), g.Next(), g.Next()
	if a != fixed.UnixMilli() || b != a+1 || c != b+1 {
		t.Fatalf("ids not strictly increasing on a stalled clock: %d %d %d", a, b, c)
	}

	g.Seed(c + 100)
	if d := g.Next(); d != c+101 {
		t.Fatalf("seeded id = %d, want %d", d, c+101)
	}

	g.Seed(1) // lower floors are ignored
	if e := g.Next(); e != c+102 {
		t.Fatalf("id went backwards after low seed: %d", e)
	}
}

func TestIDGeneratorFollowsClock(t *testing.T) {
	now := time.UnixMilli(1000)
	g := NewIDGenerator(func() time.Time { return now })
	first := g.Next()
	now = now.Add(5 * time.Second)
	if second := g.Next(); second != 6000 || second <= first {
		t.Fatalf("expected clock based id 6000, got %d", second)
	}
}

func TestStateDeleteRemovesEveryMatch(t *testing.T) {
	s := State{Transactions: []Transaction{tx(7, -1, "Food"), tx(8, 2, ""), tx(7, -3, "Food")}}
	next, ok := s.DeleteTransaction(7)
	if !ok || next.Len() != 1 || next.Transactions[0].ID != 8 {
		t.Fatalf("unexpected delete result: ok=%v state=%+v", ok, next)
	}
}
