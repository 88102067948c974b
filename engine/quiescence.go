package engine

import (
	"github.com/kagechess/kage/ordering"
	"github.com/kagechess/kage/position"
	"github.com/kagechess/kage/ttable"
)

// depthQSChecks and depthQSNoChecks are the two ttDepth sentinels quiescence
// stores under and probes against: depthQSChecks at the qsearch root ply,
// where non-capture checking moves are generated alongside captures, and
// depthQSNoChecks at every ply beyond that, where only captures/evasions
// are considered.
const (
	depthQSChecks   = 0
	depthQSNoChecks = -1
)

// quiescence resolves captures, promotions and (when in check) evasions
// until the position is quiet, guarding against the horizon effect at the
// end of the main search's depth-0 leaves. qdepth distinguishes the
// checks-included root ply from the deeper captures-only plies. pvNode
// scopes every pruning rule below to null-window calls, the way the main
// search's own move-loop pruning is scoped.
func (t *thread) quiescence(alpha, beta, height, qdepth int, pvNode bool) int {
	t.stack[height].pv.clear()
	var pos = &t.stack[height].position
	var oldAlpha = alpha

	if isDraw(pos) {
		return valueDraw
	}
	if height >= maxHeight {
		v, _ := t.engine.evaluator.Evaluate(pos)
		return v
	}
	if t.isRepeat(height) {
		return valueDraw
	}

	if entry, ok := t.engine.transTable.Probe(pos.Key); ok {
		var ttValue = valueFromTT(entry.Value, height)
		if entry.Bound == ttable.BoundExact ||
			(entry.Bound == ttable.BoundLower && ttValue >= beta) ||
			(entry.Bound == ttable.BoundUpper && ttValue <= alpha) {
			return ttValue
		}
	}

	var isCheck = pos.IsCheck()
	var best = -valueInfinity
	var genChecks = !isCheck && qdepth >= depthQSChecks
	var ttDepth = depthQSNoChecks
	if genChecks {
		ttDepth = depthQSChecks
	}

	if !isCheck {
		var staticEval, _ = t.engine.evaluator.Evaluate(pos)
		best = staticEval
		if staticEval > alpha {
			alpha = staticEval
			if alpha >= beta {
				return alpha
			}
		}
	}

	var moves []position.Move
	if isCheck {
		moves = position.GenerateMoves(t.stack[height].moveList[:], pos)
	} else {
		moves = position.GenerateCaptures(t.stack[height].moveList[:], pos, genChecks)
	}

	var mi = ordering.NewCaptureIterator(t.stack[height].orderedBuffer[:])
	mi.Init(moves)

	var child = &t.stack[height+1].position
	var hasLegalMove = false
	var bestMove position.Move

	for mi.Reset(); ; {
		var move = mi.Next()
		if move == position.MoveEmpty {
			break
		}
		if !pvNode {
			if isCheck {
				// evasion pruning: once the score is already better than
				// getting mated deep in the tree, quiet non-castle evasions
				// aren't worth searching further
				if best > valueLoss && !isCaptureOrPromotion(move) && !move.IsCastle() {
					continue
				}
			} else if !isCaptureOrPromotion(move) {
				// a generated non-capture check: useless unless it still
				// might raise alpha or looks genuinely dangerous
				if best+pawnValue/6 < beta && !checkIsDangerous(pos, move) {
					continue
				}
			} else {
				// futility: a capture that cannot possibly raise beta even
				// with the maximum plausible material swing is skipped
				if best+pawnValue*4 <= beta && !position.SeeGE(pos, move, 1) {
					continue
				}
				if !position.SeeGEZero(pos, move) {
					continue
				}
			}
		}

		if !pos.MakeMove(move, child) {
			continue
		}
		t.incNodes()
		hasLegalMove = true

		var score = -t.quiescence(-beta, -alpha, height+1, depthQSNoChecks, pvNode)

		if score > best {
			best = score
			bestMove = move
		}
		if score > alpha {
			alpha = score
			t.stack[height].pv.assign(move, &t.stack[height+1].pv)
			if alpha >= beta {
				break
			}
		}
	}

	if isCheck && !hasLegalMove {
		return lossIn(height)
	}

	var bound = 0
	if best > oldAlpha {
		bound |= ttable.BoundLower
	}
	if best < beta {
		bound |= ttable.BoundUpper
	}
	t.engine.transTable.Store(pos.Key, ttDepth, valueToTT(best, height), bound, bestMove, 0)

	return best
}

// checkIsDangerous flags a non-capture checking move in quiescence as worth
// searching even past the useless-check margin: the checked king sits on
// the board border, or the check is delivered at queen-contact range,
// where a mating continuation is disproportionately likely. The checked
// king's square doesn't move when move is made, so pos (before the move)
// already has it.
func checkIsDangerous(pos *position.Position, move position.Move) bool {
	var kingSq = position.FirstOne(pos.Kings & pos.PiecesByColor(!pos.WhiteMove))
	if position.File(kingSq) == position.FileA || position.File(kingSq) == position.FileH ||
		position.Rank(kingSq) == position.Rank1 || position.Rank(kingSq) == position.Rank8 {
		return true
	}
	if move.MovingPiece() == position.Queen && position.SquareDistance(move.To(), kingSq) == 1 {
		return true
	}
	return false
}
