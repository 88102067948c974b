package engine

import (
	"sync"
	"sync/atomic"

	"github.com/kagechess/kage/ordering"
	"github.com/kagechess/kage/position"
)

// splitPoint is the shared state a master publishes and any number of
// idle worker threads join. Every field but the ones under mu is
// write-once at construction; mu governs alpha/best/bestMove/moveIndex and
// the atomic cutoff flag lets participants stop pulling moves without
// taking the lock on the common case.
type splitPoint struct {
	mu sync.Mutex
	wg sync.WaitGroup

	parentPosition position.Position
	depth, height  int
	pvNode         bool
	improving      bool
	isCheck        bool

	beta int

	alpha          int
	best           int
	bestMove       position.Move
	bestPV         []position.Move
	moves          []position.Move
	moveIndex      int
	moveNumberBase int

	ttMove, killer1, killer2 position.Move
	historyTable             *ordering.HistoryTable

	cutoff int32
}

// claimIdleThreads atomically marks up to Threads-1 worker slots busy and
// returns them; callers must hand each one a job or release it back.
func (e *Engine) claimIdleThreads() []*thread {
	var idle []*thread
	for _, th := range e.threads {
		if th.id == 0 {
			continue
		}
		if atomic.CompareAndSwapInt32(&th.busy, 0, 1) {
			idle = append(idle, th)
		}
	}
	return idle
}

func (e *Engine) releaseThreads(threads []*thread) {
	for _, th := range threads {
		atomic.StoreInt32(&th.busy, 0)
	}
}

// trySplit attempts to publish the remaining moves at this node as a split
// point. It returns ok=false (with the loop's own state untouched) when no
// worker is free or the move iterator is already exhausted.
func (t *thread) trySplit(pos *position.Position, height, depth, alpha, beta, moveNumberSoFar int,
	mi *ordering.MoveIterator, ttMove, killer1, killer2 position.Move,
	pvNode, improving bool) (best int, bestMove position.Move, newAlpha int, pv []position.Move, ok bool) {

	var helpers = t.engine.claimIdleThreads()
	if len(helpers) == 0 {
		return 0, position.MoveEmpty, 0, nil, false
	}

	var remaining []position.Move
	for {
		var m = mi.Next()
		if m == position.MoveEmpty {
			break
		}
		remaining = append(remaining, m)
	}
	if len(remaining) == 0 {
		t.engine.releaseThreads(helpers)
		return 0, position.MoveEmpty, 0, nil, false
	}

	var sp = &splitPoint{
		parentPosition: *pos,
		depth:          depth,
		height:         height,
		pvNode:         pvNode,
		improving:      improving,
		isCheck:        pos.IsCheck(),
		beta:           beta,
		alpha:          alpha,
		best:           -valueInfinity,
		moves:          remaining,
		moveNumberBase: moveNumberSoFar + 1,
		ttMove:         ttMove,
		killer1:        killer1,
		killer2:        killer2,
		historyTable:   &t.engine.history,
	}

	sp.wg.Add(len(helpers))
	for _, h := range helpers {
		h.mu.Lock()
		h.job = sp
		h.cond.Signal()
		h.mu.Unlock()
	}

	// helpful master: participate in its own split point before waiting
	t.helpSplitPoint(sp)
	sp.wg.Wait()

	return sp.best, sp.bestMove, sp.alpha, sp.bestPV, true
}

// helpSplitPoint pulls moves from sp under its lock until either the move
// list is exhausted or a participant has raised the cutoff flag. Called
// both by the split's master (inline) and by idle threads picking up a job
// from workerLoop.
func (t *thread) helpSplitPoint(sp *splitPoint) {
	for atomic.LoadInt32(&sp.cutoff) == 0 {
		sp.mu.Lock()
		if sp.moveIndex >= len(sp.moves) {
			sp.mu.Unlock()
			return
		}
		var move = sp.moves[sp.moveIndex]
		var moveNumber = sp.moveNumberBase + sp.moveIndex
		sp.moveIndex++
		var localAlpha = sp.alpha
		sp.mu.Unlock()

		t.stack[sp.height].position = sp.parentPosition
		var pos = &t.stack[sp.height].position
		var child = &t.stack[sp.height+1].position

		if !pos.MakeMove(move, child) {
			continue
		}
		t.incNodes()

		var extension = 0
		if t.engine.Options.CheckExt && child.IsCheck() && sp.depth >= 3 {
			extension = 1
		}

		var historyCtx = ordering.NewContext(sp.historyTable, pos.WhiteMove, pos.LastMove, prevMove(t, sp.height))
		var isNoisy = isCaptureOrPromotion(move)

		var score = t.searchLater(pos, child, move, localAlpha, sp.beta, sp.depth, sp.height, moveNumber,
			extension, isNoisy, sp.isCheck, sp.pvNode, sp.improving, sp.killer1, sp.killer2, historyCtx)

		sp.mu.Lock()
		if score > sp.best {
			sp.best = score
			sp.bestMove = move
			sp.bestPV = append(sp.bestPV[:0], move)
			var childPV = &t.stack[sp.height+1].pv
			sp.bestPV = append(sp.bestPV, childPV.items[:childPV.size]...)
		}
		if score > sp.alpha {
			sp.alpha = score
			if sp.alpha >= sp.beta {
				atomic.StoreInt32(&sp.cutoff, 1)
			}
		}
		sp.mu.Unlock()
	}
}

// workerLoop is the idle loop for every worker thread but the driver
// (thread 0): wait on the per-thread condition variable, guarded by the
// thread's own lock, until handed a split point to help with.
func (t *thread) workerLoop() {
	t.mu.Lock()
	for {
		for t.job == nil && !t.stopped {
			t.cond.Wait()
		}
		if t.stopped {
			t.mu.Unlock()
			return
		}
		var sp = t.job
		t.mu.Unlock()

		func() {
			defer func() {
				if r := recover(); r != nil && r != errSearchTimeout {
					panic(r)
				}
			}()
			t.helpSplitPoint(sp)
		}()
		sp.wg.Done()

		t.mu.Lock()
		t.job = nil
		atomic.StoreInt32(&t.busy, 0)
	}
}
