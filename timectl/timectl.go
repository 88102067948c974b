// Package timectl computes soft/hard search time budgets and exposes the
// node-count/iteration polling hooks the engine's cooperative cancellation
// relies on.
package timectl

import (
	"context"
	"time"
)

// Limits mirrors the subset of UCI go-command limits time control cares
// about.
type Limits struct {
	WhiteTime, BlackTime           int
	WhiteIncrement, BlackIncrement int
	MovesToGo                      int
	MoveTime                       int
	Depth                          int
	Nodes                          int
	Infinite                       bool
}

// Line is the minimal shape of a completed iteration the manager needs to
// decide whether to stop early.
type Line struct {
	Depth int
	Score int
	Mate  bool // true when Score is already a mate-distance value in plies
}

type Manager struct {
	start     time.Time
	limits    Limits
	softLimit time.Duration
	hardLimit time.Duration
	cancel    context.CancelFunc
}

// New wires a deadline (when the limits imply a hard bound) onto ctx and
// returns the derived context alongside the manager.
func New(ctx context.Context, start time.Time, limits Limits, whiteToMove bool) (context.Context, *Manager) {
	var tm = &Manager{start: start, limits: limits}

	if limits.MoveTime > 0 {
		tm.hardLimit = time.Duration(limits.MoveTime) * time.Millisecond
	} else if limits.WhiteTime > 0 || limits.BlackTime > 0 {
		var main, inc time.Duration
		if whiteToMove {
			main = time.Duration(limits.WhiteTime) * time.Millisecond
			inc = time.Duration(limits.WhiteIncrement) * time.Millisecond
		} else {
			main = time.Duration(limits.BlackTime) * time.Millisecond
			inc = time.Duration(limits.BlackIncrement) * time.Millisecond
		}
		tm.softLimit, tm.hardLimit = calcLimits(main, inc, limits.MovesToGo)
	}

	var cancel context.CancelFunc
	if tm.hardLimit != 0 {
		ctx, cancel = context.WithDeadline(ctx, start.Add(tm.hardLimit))
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	tm.cancel = cancel
	return ctx, tm
}

func (tm *Manager) OnNodesChanged(nodes int64) {
	if tm.limits.Nodes > 0 && nodes >= int64(tm.limits.Nodes) {
		tm.cancel()
	}
}

const mateDistanceMargin = 5

func (tm *Manager) OnIterationComplete(line Line) {
	if tm.limits.Infinite {
		return
	}
	if tm.limits.Depth != 0 && line.Depth >= tm.limits.Depth {
		tm.cancel()
		return
	}
	if line.Mate && line.Depth > mateDistanceMargin {
		tm.cancel()
		return
	}
	if tm.softLimit != 0 && time.Since(tm.start) >= tm.softLimit {
		tm.cancel()
		return
	}
}

func (tm *Manager) Close() {
	tm.cancel()
}

func calcLimits(main, inc time.Duration, moves int) (soft, hard time.Duration) {
	const (
		defaultMovesToGo = 40
		moveOverhead     = 300 * time.Millisecond
		minTimeLimit     = 1 * time.Millisecond
	)

	main -= moveOverhead
	if main < minTimeLimit {
		main = minTimeLimit
	}

	if moves == 0 {
		var ideal = main/35 + inc/2
		soft = ideal * 7 / 10
		hard = ideal * 21 / 10
	} else {
		if moves > defaultMovesToGo {
			moves = defaultMovesToGo
		}
		soft = (main/time.Duration(moves+1) + inc) * 7 / 10
		hard = (main/time.Duration(moves+1) + inc) * 21 / 10
	}

	hard = clampDuration(hard, minTimeLimit, main)
	soft = clampDuration(soft, minTimeLimit, main)
	return
}

func clampDuration(v, lo, hi time.Duration) time.Duration {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
