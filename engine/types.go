// Package engine implements the iterative-deepening, alpha-beta principal
// variation search: aspiration windows, the S1-S20 main-search pruning and
// extension pipeline, quiescence, and split-point parallelism across a
// fixed worker pool. Board representation, evaluation, transposition
// storage and move ordering are all collaborators reached through
// interfaces defined here.
package engine

import (
	"time"

	"github.com/kagechess/kage/position"
)

const (
	stackSize = 128
	maxHeight = stackSize - 1

	valueDraw     = 0
	valueMate     = 30000
	valueInfinity = valueMate + 1
	valueWin      = valueMate - 2*maxHeight
	valueLoss     = -valueWin

	pawnValue = 100
)

func winIn(height int) int  { return valueMate - height }
func lossIn(height int) int { return -valueMate + height }

// Evaluator is the only way the search core reaches static evaluation. It
// never imports the eval package directly; cmd/kage wires a concrete
// implementation in.
type Evaluator interface {
	Evaluate(p *position.Position) (value, margin int)
}

// EvaluatorFunc adapts a plain function to Evaluator.
type EvaluatorFunc func(p *position.Position) (int, int)

func (f EvaluatorFunc) Evaluate(p *position.Position) (int, int) { return f(p) }

// UciScore is either a centipawn score or a mate-in-N score, never both.
type UciScore struct {
	Centipawns int
	Mate       int
	IsMate     bool
}

func newUciScore(v int) UciScore {
	if v >= valueWin {
		return UciScore{Mate: (valueMate - v + 1) / 2, IsMate: true}
	}
	if v <= valueLoss {
		return UciScore{Mate: (-valueMate - v) / 2, IsMate: true}
	}
	return UciScore{Centipawns: v}
}

// LimitsType mirrors the UCI go-command limits.
type LimitsType struct {
	WhiteTime, BlackTime           int
	WhiteIncrement, BlackIncrement int
	MovesToGo                      int
	MoveTime                       int
	Depth                          int
	Nodes                          int
	Infinite                       bool
}

// SearchParams bundles the game history (for repetition detection) and the
// limits governing a single search call.
type SearchParams struct {
	Positions []position.Position
	Limits    LimitsType
	Progress  func(SearchInfo)
}

// SearchInfo is a snapshot of search progress, suitable for both the UCI
// info stream and the search-log writer.
type SearchInfo struct {
	Depth    int
	SelDepth int
	MainLine []position.Move
	Score    UciScore
	Nodes    int64
	Time     time.Duration
	HashFull int
}
