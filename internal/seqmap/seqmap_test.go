package seqmap

import (
	"testing"

	"github.com/rutgers-cs352/netxfer/internal/wire"
)

func TestSetGetHasDelete(t *testing.T) {
	m := New[string]()
	if _, ok := m.Get(1); ok {
		t.Fatal("Get on empty map returned ok")
	}

	m.Set(1, "a")
	m.Set(2, "b")
	if v, ok := m.Get(1); !ok || v != "a" {
		t.Fatalf("Get(1) = %q, %v; want a, true", v, ok)
	}
	if !m.Has(2) {
		t.Fatal("Has(2) = false, want true")
	}
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}

	m.Delete(1)
	if m.Has(1) {
		t.Fatal("Has(1) = true after Delete")
	}
	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", m.Len())
	}
}

func TestSetOverwrites(t *testing.T) {
	m := New[int]()
	m.Set(5, 10)
	m.Set(5, 20)
	if v, _ := m.Get(5); v != 20 {
		t.Fatalf("Get(5) = %d, want 20", v)
	}
	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (overwrite, not insert)", m.Len())
	}
}

func TestAscendVisitsInOrder(t *testing.T) {
	m := New[int]()
	for _, seq := range []wire.SeqNum{5, 1, 3, 2, 4} {
		m.Set(seq, int(seq)*10)
	}

	var seen []wire.SeqNum
	m.Ascend(func(seq wire.SeqNum, v int) bool {
		seen = append(seen, seq)
		return true
	})
	want := []wire.SeqNum{1, 2, 3, 4, 5}
	if len(seen) != len(want) {
		t.Fatalf("visited %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("visited %v, want %v", seen, want)
		}
	}
}

func TestAscendStopsEarly(t *testing.T) {
	m := New[int]()
	for _, seq := range []wire.SeqNum{1, 2, 3, 4} {
		m.Set(seq, 0)
	}
	var count int
	m.Ascend(func(seq wire.SeqNum, v int) bool {
		count++
		return seq < 2
	})
	if count != 2 {
		t.Fatalf("visited %d entries, want 2 (stop right after seq=2)", count)
	}
}

func TestDeleteBelow(t *testing.T) {
	m := New[int]()
	for _, seq := range []wire.SeqNum{1, 2, 3, 4, 5} {
		m.Set(seq, 0)
	}
	m.DeleteBelow(3)
	if m.Has(1) || m.Has(2) {
		t.Fatal("DeleteBelow(3) left keys < 3 behind")
	}
	if !m.Has(3) || !m.Has(4) || !m.Has(5) {
		t.Fatal("DeleteBelow(3) removed keys >= 3")
	}
}

func TestMin(t *testing.T) {
	m := New[int]()
	if _, ok := m.Min(); ok {
		t.Fatal("Min on empty map returned ok")
	}
	m.Set(7, 0)
	m.Set(3, 0)
	m.Set(9, 0)
	if seq, ok := m.Min(); !ok || seq != 3 {
		t.Fatalf("Min() = %d, %v; want 3, true", seq, ok)
	}
}

func TestSeqSet(t *testing.T) {
	s := NewSeqSet()
	if s.Contains(1) {
		t.Fatal("empty set contains 1")
	}
	s.Add(1)
	s.Add(3)
	s.Add(2)
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}

	var seen []wire.SeqNum
	s.Ascend(func(seq wire.SeqNum) bool {
		seen = append(seen, seq)
		return true
	})
	want := []wire.SeqNum{1, 2, 3}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("Ascend order = %v, want %v", seen, want)
		}
	}
}
