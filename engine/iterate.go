package engine

import (
	"context"

	"github.com/kagechess/kage/position"
)

const (
	aspirationMinDepth  = 5
	aspirationDeltaLo   = 16
	aspirationDeltaHi   = 24
	easyMoveMinDepth    = 7
	easyMoveMargin      = 150
	easyMoveStableIters = 6
)

// skillDepthCap turns SkillLevel (0=full strength) into a hard depth
// ceiling, the simplest form of the handicap spec.md's iterative-deepening
// driver calls for: a weaker skill level simply stops looking as deep.
func skillDepthCap(skillLevel int) int {
	if skillLevel <= 0 {
		return maxHeight
	}
	var cap = 1 + skillLevel
	if cap > maxHeight {
		cap = maxHeight
	}
	return cap
}

func genRootMoves(t *thread) []position.Move {
	return position.GenerateLegalMoves(&t.stack[0].position)
}

func (e *Engine) iterativeDeepening(ctx context.Context, t *thread) {
	var rootMoves = genRootMoves(t)
	if len(rootMoves) == 0 {
		return
	}

	var depthCap = skillDepthCap(e.Options.SkillLevel)
	var scoreHistory []int
	var stableIterations = 0
	var lastBest position.Move
	var onlyOneRootMove = len(rootMoves) == 1

	for depth := 1; depth <= depthCap && depth < maxHeight; depth++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var score = t.aspirationWindow(depth, scoreHistory)
		e.onIterationComplete(t, depth, score)
		scoreHistory = append(scoreHistory, score)

		if len(e.mainLine.moves) > 0 {
			var best = e.mainLine.moves[0]
			if best == lastBest {
				stableIterations++
			} else {
				stableIterations = 0
			}
			lastBest = best
		}

		// easy-move heuristic: there is no real choice to make (one legal
		// move), or the best move has held long enough at a comfortable
		// score that the remaining budget is unlikely to change it.
		var isEasyMove = onlyOneRootMove ||
			(depth >= easyMoveMinDepth && stableIterations >= easyMoveStableIters && score > easyMoveMargin)
		if isEasyMove {
			return
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// aspirationDelta implements spec.md §4.1's
// delta = round_up_to_8(clamp(|Δ1| + |Δ2|/2, 16, 24)), where Δ1 and Δ2 are
// the score swings over the last two completed iterations. With fewer than
// three iterations of history there's nothing to measure yet, so the
// window starts at its widest allowed value.
func aspirationDelta(scoreHistory []int) int {
	if len(scoreHistory) < 3 {
		return aspirationDeltaHi
	}
	var n = len(scoreHistory)
	var delta1 = abs(scoreHistory[n-1] - scoreHistory[n-2])
	var delta2 = abs(scoreHistory[n-2] - scoreHistory[n-3])
	return roundUpTo8(clamp(delta1+delta2/2, aspirationDeltaLo, aspirationDeltaHi))
}

func roundUpTo8(v int) int {
	return (v + 7) / 8 * 8
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// aspirationWindow runs one iterative-deepening iteration. At sufficient
// depth, with a non-mate previous score, it narrows the search window to
// aspirationDelta's estimate and re-searches with a growing delta on every
// fail (spec.md §4.1 step 2: `β += delta; delta += delta/2` on fail-high,
// the mirror on fail-low) until the true score lands inside the window or
// is itself a known win/loss.
func (t *thread) aspirationWindow(depth int, scoreHistory []int) int {
	t.rootDepth = depth
	if !t.engine.Options.AspirationWindows || depth < aspirationMinDepth || len(scoreHistory) == 0 {
		return t.searchRoot(-valueInfinity, valueInfinity, depth)
	}

	var prevScore = scoreHistory[len(scoreHistory)-1]
	if prevScore <= valueLoss || prevScore >= valueWin {
		return t.searchRoot(-valueInfinity, valueInfinity, depth)
	}

	var delta = aspirationDelta(scoreHistory)
	var alpha = max(-valueInfinity, prevScore-delta)
	var beta = min(valueInfinity, prevScore+delta)

	for {
		var score = t.searchRoot(alpha, beta, depth)
		if score >= valueWin || score <= valueLoss {
			return score
		}
		if score >= beta {
			beta = min(valueInfinity, beta+delta)
			delta += delta / 2
			continue
		}
		if score <= alpha {
			alpha = max(-valueInfinity, alpha-delta)
			delta += delta / 2
			continue
		}
		return score
	}
}

func (t *thread) searchRoot(alpha, beta, depth int) int {
	const height = 0
	return t.alphaBeta(alpha, beta, depth, height, position.MoveEmpty)
}
