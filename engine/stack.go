package engine

import (
	"sync"

	"github.com/kagechess/kage/ordering"
	"github.com/kagechess/kage/position"
)

type pv struct {
	items [stackSize]position.Move
	size  int
}

func (p *pv) clear() { p.size = 0 }

func (p *pv) assign(m position.Move, child *pv) {
	p.size = 1
	p.items[0] = m
	if child.size > 0 {
		p.size += child.size
		copy(p.items[1:], child.items[:child.size])
	}
}

func (p *pv) toSlice() []position.Move {
	var result = make([]position.Move, p.size)
	copy(result, p.items[:p.size])
	return result
}

// stackFrame is one ply of a thread's local search stack. Positions are
// stored by value: MakeMove writes forward into the next ply's slot rather
// than mutating in place, so there is no explicit unmake step.
type stackFrame struct {
	position       position.Position
	moveList       [position.MaxMoves]position.Move
	orderedBuffer  [position.MaxMoves]position.OrderedMove
	quietsSearched [position.MaxMoves]position.Move
	pv             pv
	staticEval     int
	threat         position.Move
}

// thread is one worker slot in the fixed pool. Threads[0] is the driver
// used by Search's calling goroutine; threads[1:] sit in workerLoop until
// handed a split point to help with.
type thread struct {
	engine *Engine
	id     int

	killers *ordering.Killers

	stack [stackSize]stackFrame
	nodes int64

	rootDepth int

	mu      sync.Mutex
	cond    *sync.Cond
	job     *splitPoint
	stopped bool
	busy    int32
}
