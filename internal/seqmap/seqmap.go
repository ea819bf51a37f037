// Package seqmap provides an ordered map keyed by protocol sequence
// number, backed by a B-tree. The sender's SendBuffer, the receiver's
// ReceiveBuffer, and the receiver's ReceivedSet (spec.md §3) are all
// instances of this one structure: each needs ascending iteration (to
// build SACK blocks or find the next contiguous sequence), a cheap
// minimum, and bulk deletion of everything below a cumulative ACK point.
package seqmap

import (
	"github.com/google/btree"

	"github.com/rutgers-cs352/netxfer/internal/wire"
)

const degree = 32

type entry[V any] struct {
	seq wire.SeqNum
	val V
}

func less[V any](a, b entry[V]) bool { return a.seq < b.seq }

// Map is an ordered sequence-number-keyed map.
type Map[V any] struct {
	t *btree.BTreeG[entry[V]]
}

// New creates an empty Map.
func New[V any]() *Map[V] {
	return &Map[V]{t: btree.NewG(degree, less[V])}
}

// Set inserts or overwrites the value at seq.
func (m *Map[V]) Set(seq wire.SeqNum, v V) {
	m.t.ReplaceOrInsert(entry[V]{seq: seq, val: v})
}

// Get returns the value at seq and whether it was present.
func (m *Map[V]) Get(seq wire.SeqNum) (V, bool) {
	e, ok := m.t.Get(entry[V]{seq: seq})
	return e.val, ok
}

// Has reports whether seq is present.
func (m *Map[V]) Has(seq wire.SeqNum) bool {
	_, ok := m.t.Get(entry[V]{seq: seq})
	return ok
}

// Delete removes seq, if present.
func (m *Map[V]) Delete(seq wire.SeqNum) {
	m.t.Delete(entry[V]{seq: seq})
}

// Len returns the number of entries.
func (m *Map[V]) Len() int { return m.t.Len() }

// DeleteBelow removes every key strictly less than seq, as the sender
// does to SendBuffer once base advances (spec.md §4.4).
func (m *Map[V]) DeleteBelow(seq wire.SeqNum) {
	var stale []entry[V]
	m.t.Ascend(func(e entry[V]) bool {
		if e.seq >= seq {
			return false
		}
		stale = append(stale, e)
		return true
	})
	for _, e := range stale {
		m.t.Delete(e)
	}
}

// Ascend visits entries in ascending key order until fn returns false.
func (m *Map[V]) Ascend(fn func(seq wire.SeqNum, v V) bool) {
	m.t.Ascend(func(e entry[V]) bool { return fn(e.seq, e.val) })
}

// Min returns the smallest key and true, or the zero value and false if
// the map is empty.
func (m *Map[V]) Min() (wire.SeqNum, bool) {
	e, ok := m.t.Min()
	return e.seq, ok
}

// SeqSet is an ordered set of sequence numbers, used for the receiver's
// ReceivedSet (spec.md §3): duplicate suppression and SACK-block
// enumeration both want ascending membership queries.
type SeqSet struct {
	m *Map[struct{}]
}

// NewSeqSet creates an empty SeqSet.
func NewSeqSet() *SeqSet { return &SeqSet{m: New[struct{}]()} }

func (s *SeqSet) Add(seq wire.SeqNum)         { s.m.Set(seq, struct{}{}) }
func (s *SeqSet) Contains(seq wire.SeqNum) bool { return s.m.Has(seq) }
func (s *SeqSet) Len() int                     { return s.m.Len() }

// Ascend visits members in ascending order until fn returns false.
func (s *SeqSet) Ascend(fn func(seq wire.SeqNum) bool) {
	s.m.Ascend(func(seq wire.SeqNum, _ struct{}) bool { return fn(seq) })
}
