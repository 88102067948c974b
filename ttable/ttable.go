// Package ttable implements the shared transposition table the search core
// probes and updates. Table access never blocks: each bucket is guarded by
// its own atomic spinlock gate, held only for the duration of a copy in or
// out of the slot.
package ttable

import (
	"sync/atomic"

	"github.com/kagechess/kage/position"
)

const (
	BoundLower = 1 << iota
	BoundUpper
)

const BoundExact = BoundLower | BoundUpper

// Entry is a snapshot of a table slot, safe to read after Probe returns.
type Entry struct {
	Depth      int
	Value      int
	Bound      int
	Move       position.Move
	StaticEval int
}

// TransTable is the interface the engine package depends on. Concrete
// storage lives here so the search core never touches table memory
// directly.
type TransTable interface {
	Probe(key uint64) (Entry, bool)
	Store(key uint64, depth, value, bound int, move position.Move, staticEval int)
	NewSearch()
	Clear()
	Resize(megabytes int)
	Megabytes() int
	PermilleFull() int
}

// slot is 20 bytes: gate(4) + key32(4) + moveDate(4) + score(2) + eval(2) + depth(1) + bound(1),
// padded to 4-byte alignment.
type slot struct {
	gate       int32
	key32      uint32
	moveDate   uint32
	score      int16
	staticEval int16
	depth      int8
	bound      uint8
}

func (e *slot) move() position.Move {
	return position.Move(e.moveDate & 0x1fffff)
}

func (e *slot) date() uint16 {
	return uint16(e.moveDate >> 21)
}

func (e *slot) setMoveAndDate(move position.Move, date uint16) {
	e.moveDate = uint32(move) + uint32(date)<<21
}

type table struct {
	megabytes int
	entries   []slot
	mask      uint32
	date      uint16
}

func New(megabytes int) TransTable {
	var t = &table{}
	t.Resize(megabytes)
	return t
}

func roundPowerOfTwo(size int) int {
	var x = 1
	for (x << 1) <= size {
		x <<= 1
	}
	return x
}

func (t *table) Resize(megabytes int) {
	if megabytes <= 0 {
		megabytes = 1
	}
	var size = roundPowerOfTwo(1024 * 1024 * megabytes / 16)
	t.megabytes = megabytes
	t.entries = make([]slot, size)
	t.mask = uint32(size - 1)
	t.date = 0
}

func (t *table) Megabytes() int {
	return t.megabytes
}

func (t *table) NewSearch() {
	t.date = (t.date + 1) & 0x7ff
}

func (t *table) Clear() {
	t.date = 0
	for i := range t.entries {
		t.entries[i] = slot{}
	}
}

// Probe copies the slot into an Entry value while holding the bucket's
// spinlock; the caller never re-reads table memory once this returns.
func (t *table) Probe(key uint64) (Entry, bool) {
	var e = &t.entries[uint32(key)&t.mask]
	var result Entry
	var found bool
	if atomic.CompareAndSwapInt32(&e.gate, 0, 1) {
		// every stored bound has at least one bit set, so a zero bound marks
		// an empty (or cleared) slot whose zero key32 must not count as a hit
		if e.key32 == uint32(key>>32) && e.bound != 0 {
			e.setMoveAndDate(e.move(), t.date)
			result = Entry{
				Depth:      int(e.depth),
				Value:      int(e.score),
				Bound:      int(e.bound),
				Move:       e.move(),
				StaticEval: int(e.staticEval),
			}
			found = true
		}
		atomic.StoreInt32(&e.gate, 0)
	}
	return result, found
}

func (t *table) Store(key uint64, depth, value, bound int, move position.Move, staticEval int) {
	var e = &t.entries[uint32(key)&t.mask]
	if atomic.CompareAndSwapInt32(&e.gate, 0, 1) {
		var replace bool
		if e.key32 == uint32(key>>32) {
			replace = depth >= int(e.depth)-3 || bound == BoundExact
		} else {
			replace = e.date() != t.date || depth >= int(e.depth)
		}
		if replace {
			e.key32 = uint32(key >> 32)
			e.score = int16(value)
			e.staticEval = int16(staticEval)
			e.depth = int8(depth)
			e.bound = uint8(bound)
			e.setMoveAndDate(move, t.date)
		}
		atomic.StoreInt32(&e.gate, 0)
	}
}

func (t *table) PermilleFull() int {
	const sample = 1000
	if len(t.entries) < sample {
		var used = 0
		for i := range t.entries {
			if t.entries[i].date() == t.date && t.entries[i].key32 != 0 {
				used++
			}
		}
		if len(t.entries) == 0 {
			return 0
		}
		return used * 1000 / len(t.entries)
	}
	var used = 0
	for i := 0; i < sample; i++ {
		if t.entries[i].date() == t.date && t.entries[i].key32 != 0 {
			used++
		}
	}
	return used
}
