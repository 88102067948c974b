package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kagechess/kage/ordering"
	"github.com/kagechess/kage/position"
	"github.com/kagechess/kage/timectl"
	"github.com/kagechess/kage/ttable"
)

const defaultHashMB = 16
const splitMinDepth = 6

type mainLine struct {
	moves []position.Move
	score int
	depth int
}

// Engine is the search core. Board representation, evaluation,
// transposition storage, move ordering and time control are all reached
// through interfaces or leaf packages; Engine owns none of their internals.
type Engine struct {
	Hash    int
	Threads int
	Options Options

	evaluator  Evaluator
	transTable ttable.TransTable
	lmr        *lmrTable

	historyKeys map[uint64]int

	// history and gains are shared mutable state: every thread reads and
	// updates the same tables, racy updates permitted, rather than each
	// learning in isolation from its own split-point subtree.
	history ordering.HistoryTable
	gains   ordering.GainsTable

	threads []*thread

	progress func(SearchInfo)
	mainLine mainLine

	timeManager *timectl.Manager
	searchCtx   context.Context

	start time.Time
	nodes int64

	mu  sync.Mutex
	log zerolog.Logger
}

func NewEngine(evaluator Evaluator) *Engine {
	return &Engine{
		Hash:        defaultHashMB,
		Threads:     1,
		Options:     DefaultOptions(),
		evaluator:   evaluator,
		historyKeys: map[uint64]int{},
		log:         log.With().Str("component", "engine").Logger(),
	}
}

func (e *Engine) Prepare() {
	if e.transTable == nil || e.transTable.Megabytes() != e.Hash {
		e.transTable = ttable.New(e.Hash)
		e.log.Info().Int("mb", e.Hash).Msg("transposition table resized")
	}
	if e.lmr == nil {
		e.lmr = newLmrTable()
	}
	if len(e.threads) != e.Threads {
		e.stopWorkers()
		e.threads = make([]*thread, e.Threads)
		for i := range e.threads {
			var t = &thread{engine: e, id: i, killers: ordering.NewKillers(stackSize)}
			t.cond = sync.NewCond(&t.mu)
			e.threads[i] = t
			if i > 0 {
				go t.workerLoop()
			}
		}
	}
}

func (e *Engine) stopWorkers() {
	for _, t := range e.threads {
		if t.id == 0 {
			continue
		}
		t.mu.Lock()
		t.stopped = true
		t.cond.Signal()
		t.mu.Unlock()
	}
}

func (e *Engine) Clear() {
	if e.transTable != nil {
		e.transTable.Clear()
	}
	e.history.Clear()
	e.gains.Clear()
}

// NewGame resets the persistent tables between games; it performs the same
// reset as Clear.
func (e *Engine) NewGame() {
	e.Clear()
}

func historyKeys(positions []position.Position) map[uint64]int {
	var result = make(map[uint64]int)
	for i := len(positions) - 1; i >= 0; i-- {
		var p = &positions[i]
		result[p.Key]++
		if p.Rule50 == 0 {
			break
		}
	}
	return result
}

// Search runs iterative deepening to the limits in params and returns the
// final line. It blocks until the time manager or context cancels the
// search, the iteration loop reaches its skill-level depth cap or stops on
// an easy move, or the position has no legal moves.
func (e *Engine) Search(ctx context.Context, params SearchParams) SearchInfo {
	e.start = time.Now()
	e.Prepare()

	var p = &params.Positions[len(params.Positions)-1]
	ctx, e.timeManager = timectl.New(ctx, e.start, timectl.Limits{
		WhiteTime:      params.Limits.WhiteTime,
		BlackTime:      params.Limits.BlackTime,
		WhiteIncrement: params.Limits.WhiteIncrement,
		BlackIncrement: params.Limits.BlackIncrement,
		MovesToGo:      params.Limits.MovesToGo,
		MoveTime:       params.Limits.MoveTime,
		Depth:          params.Limits.Depth,
		Nodes:          params.Limits.Nodes,
		Infinite:       params.Limits.Infinite,
	}, p.WhiteMove)
	defer e.timeManager.Close()
	e.searchCtx = ctx

	e.transTable.NewSearch()
	e.historyKeys = historyKeys(params.Positions)
	e.nodes = 0
	e.mainLine = mainLine{}
	e.progress = params.Progress

	for _, t := range e.threads {
		t.nodes = 0
		t.stack[0].position = *p
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				if r != errSearchTimeout {
					panic(r)
				}
			}
		}()
		e.iterativeDeepening(ctx, e.threads[0])
	}()

	for _, t := range e.threads {
		e.nodes += t.nodes
		t.nodes = 0
	}
	return e.currentSearchResult()
}

func (e *Engine) currentSearchResult() SearchInfo {
	return SearchInfo{
		Depth:    e.mainLine.depth,
		MainLine: e.mainLine.moves,
		Score:    newUciScore(e.mainLine.score),
		Nodes:    e.nodes,
		Time:     time.Since(e.start),
		HashFull: e.transTable.PermilleFull(),
	}
}

func (e *Engine) onIterationComplete(t *thread, depth, score int) {
	if e.Threads > 1 {
		e.mu.Lock()
		defer e.mu.Unlock()
	}
	e.nodes += t.nodes
	t.nodes = 0
	if depth <= e.mainLine.depth {
		return
	}
	const height = 0
	e.mainLine = mainLine{depth: depth, score: score, moves: t.stack[height].pv.toSlice()}
	e.timeManager.OnIterationComplete(toTimeLine(e.mainLine))
	if e.progress != nil {
		e.progress(e.currentSearchResult())
	}
}

func toTimeLine(l mainLine) timectl.Line {
	return timectl.Line{
		Depth: l.depth,
		Score: l.score,
		Mate:  l.score >= valueWin || l.score <= valueLoss,
	}
}
