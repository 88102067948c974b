package engine

import (
	"github.com/kagechess/kage/ordering"
	"github.com/kagechess/kage/position"
	"github.com/kagechess/kage/ttable"
)

// alphaBeta is the S1-S20 pipeline: mate-distance pruning, TT probe,
// razoring, static/reverse futility, null-move pruning with a verification
// search, ProbCut, internal iterative deepening, singular extension,
// move-count/futility/SEE pruning in the move loop, LMR with a PVS
// re-search ladder, split-point publication, and the TT store with
// killer/history updates on the way out.
func (t *thread) alphaBeta(alpha, beta, depth, height int, skipMove position.Move) int {
	var pvNode = beta != alpha+1
	if depth <= 0 {
		return t.quiescence(alpha, beta, height, depthQSChecks, pvNode)
	}
	t.stack[height].pv.clear()

	var rootNode = height == 0
	var pos = &t.stack[height].position
	var isCheck = pos.IsCheck()
	var ttMoveIsSingular = false

	if !rootNode {
		if height >= maxHeight {
			v, _ := t.engine.evaluator.Evaluate(pos)
			return v
		}
		if t.isRepeat(height) || isDraw(pos) {
			return valueDraw
		}
		if winIn(height+1) <= alpha {
			return alpha
		}
		if lossIn(height+2) >= beta && !isCheck {
			return beta
		}
	}

	var (
		ttEntry ttable.Entry
		ttHit   bool
	)
	if skipMove == position.MoveEmpty {
		ttEntry, ttHit = t.engine.transTable.Probe(pos.Key)
	}
	var ttMove = ttEntry.Move
	if ttHit {
		var ttValue = valueFromTT(ttEntry.Value, height)
		if ttEntry.Depth >= depth && !pvNode && pos.LastMove != position.MoveEmpty {
			if ttValue >= beta && (ttEntry.Bound&ttable.BoundLower) != 0 {
				if ttMove != position.MoveEmpty && !isCaptureOrPromotion(ttMove) {
					t.killers.Update(height, ttMove)
				}
				return ttValue
			}
			if ttValue <= alpha && (ttEntry.Bound&ttable.BoundUpper) != 0 {
				return ttValue
			}
		}
	}

	var staticEval, _ = t.engine.evaluator.Evaluate(pos)
	t.stack[height].staticEval = staticEval
	var improving = height < 2 || staticEval > t.stack[height-2].staticEval

	var opt = &t.engine.Options
	t.killers.ClearChild(height + 2)
	var child = &t.stack[height+1].position

	if !rootNode && skipMove == position.MoveEmpty {

		// razoring: hopelessly behind, drop straight to quiescence
		if opt.Razoring && !pvNode && !isCheck && depth <= 3 {
			var margin = 200 + 150*depth
			if staticEval+margin <= alpha {
				var v = t.quiescence(alpha, alpha+1, height, depthQSChecks, false)
				if v <= alpha {
					return v
				}
			}
		}

		// reverse (static-null-move) futility pruning
		if opt.ReverseFutility && !pvNode && depth <= 8 && !isCheck {
			if staticEval-pawnValue*depth >= beta {
				return staticEval
			}
		}

		// null-move pruning, with a reduced-depth verification search at
		// high depth before trusting a fail-high.
		t.stack[height].threat = position.MoveEmpty
		if opt.NullMovePruning && !pvNode && depth >= 2 && !isCheck &&
			pos.LastMove != position.MoveEmpty &&
			(height <= 1 || t.stack[height-1].position.LastMove != position.MoveEmpty) &&
			beta < valueWin &&
			!(ttHit && ttEntry.Value < beta && (ttEntry.Bound&ttable.BoundUpper) != 0) &&
			!isLateEndgame(pos, pos.WhiteMove) &&
			staticEval >= beta {

			var reduction = 4 + depth/6 + min(2, (staticEval-beta)/200)
			pos.MakeNullMove(child)
			t.incNodes()
			var score = -t.alphaBeta(-beta, -(beta - 1), depth-reduction, height+1, position.MoveEmpty)

			if score >= beta {
				if score >= valueWin {
					score = beta
				}
				if depth < 12 {
					return score
				}
				// verification search without the null move
				var verify = t.alphaBeta(beta-1, beta, depth-reduction, height, ttMove)
				if verify >= beta {
					return score
				}
			} else if t.stack[height+1].pv.size > 0 {
				// doing nothing still didn't hold beta: whatever the
				// opponent played in reply is a standing threat worth
				// shielding from pruning in the move loop below.
				t.stack[height].threat = t.stack[height+1].pv.items[0]
			}
		}

		var probcutBeta = min(valueWin-1, beta+150)
		if opt.Probcut && !pvNode && depth >= 5 && !isCheck &&
			beta > valueLoss && beta < valueWin &&
			!(ttHit && ttEntry.Depth >= depth-4 && ttEntry.Value < probcutBeta && (ttEntry.Bound&ttable.BoundUpper) != 0) {

			var moves = position.GenerateCaptures(t.stack[height].moveList[:], pos, false)
			var ci = ordering.NewCaptureIterator(t.stack[height].orderedBuffer[:])
			ci.Init(moves)
			for ci.Reset(); ; {
				var move = ci.Next()
				if move == position.MoveEmpty {
					break
				}
				if !position.SeeGEZero(pos, move) {
					continue
				}
				if !pos.MakeMove(move, child) {
					continue
				}
				t.incNodes()
				var score = -t.quiescence(-probcutBeta, -probcutBeta+1, height+1, depthQSNoChecks, false)
				if score >= probcutBeta {
					score = -t.alphaBeta(-probcutBeta, -probcutBeta+1, depth-4, height+1, position.MoveEmpty)
				}
				if score >= probcutBeta {
					return score
				}
			}
		}

		// singular extension: is the TT move the only move that keeps the
		// position from collapsing below its own score?
		var singularExtDepth = 6
		if pvNode {
			singularExtDepth = 8
		}
		if opt.SingularExt && depth >= singularExtDepth &&
			ttHit && ttMove != position.MoveEmpty &&
			(ttEntry.Bound&ttable.BoundLower) != 0 && ttEntry.Depth >= depth-3 &&
			ttEntry.Value > valueLoss && ttEntry.Value < valueWin {
			var singularBeta = max(-valueInfinity, valueFromTT(ttEntry.Value, height)-depth)
			var probe = ttMove
			if !isCheck && !isCaptureOrPromotion(ttMove) && ttMove.MovingPiece() == position.Pawn {
				probe = position.PawnMoveSentinel
			}
			var score = t.alphaBeta(singularBeta-1, singularBeta, depth/2, height, probe)
			ttMoveIsSingular = score < singularBeta
		}
	}

	// internal iterative deepening: no TT move to seed ordering with
	if !ttHit && depth >= 4 && !isCheck && skipMove == position.MoveEmpty {
		t.alphaBeta(alpha, beta, depth-2, height, skipMove)
		if e, ok := t.engine.transTable.Probe(pos.Key); ok {
			ttMove = e.Move
		}
	}

	var historyCtx = ordering.NewContext(&t.engine.history, pos.WhiteMove, pos.LastMove, prevMove(t, height))
	var moves = position.GenerateMoves(t.stack[height].moveList[:], pos)
	var mi = ordering.NewMoveIterator(t.stack[height].orderedBuffer[:])
	var killer1, killer2 = t.killers.At(height)
	mi.Init(pos, moves, ttMove, killer1, killer2, historyCtx, position.SeeGEZero)

	var movesSearched = 0
	var hasLegalMove = false
	var quietsSeen = 0
	var quietsSearched = t.stack[height].quietsSearched[:0]
	var bestMove position.Move

	var lmp = 5 + (depth-1)*depth
	if !improving {
		lmp /= 2
	}

	var best = -valueInfinity
	var oldAlpha = alpha
	var threat = t.stack[height].threat

	for mi.Reset(); ; {
		var move = mi.Next()
		if move == position.MoveEmpty {
			break
		}
		if skipMove != position.MoveEmpty && isExcluded(t, height, skipMove, move) {
			continue
		}
		var isNoisy = isCaptureOrPromotion(move)
		if !isNoisy {
			quietsSeen++
		}

		var isConnected = threat != position.MoveEmpty &&
			(connectedThreat(pos, move, threat) || connectedMoves(pos, pos.LastMove, move))

		if depth <= 8 && best > valueLoss && hasLegalMove && !isCheck && !rootNode && !pvNode {
			if !isConnected && opt.Lmp && !isNoisy && move != killer1 && move != killer2 && quietsSeen > lmp {
				continue
			}
			if !isConnected && opt.Futility && !isNoisy && move != killer1 && move != killer2 &&
				staticEval+100+pawnValue*depth+t.engine.gains.Read(pos.WhiteMove, move) <= alpha {
				continue
			}
			if opt.SeePruning {
				var seeMargin int
				if isNoisy {
					seeMargin = max(depth, (staticEval+pawnValue-alpha)/pawnValue)
				} else {
					seeMargin = depth / 2
				}
				if !position.SeeGE(pos, move, -seeMargin) {
					continue
				}
			}
		}

		if !pos.MakeMove(move, child) {
			continue
		}
		t.incNodes()
		hasLegalMove = true
		movesSearched++

		var extension = 0
		if opt.CheckExt && child.IsCheck() && depth >= 3 {
			extension = 1
		}
		if move == ttMove && ttMoveIsSingular {
			extension = 1
		}

		if !isNoisy {
			quietsSearched = append(quietsSearched, move)
		}

		var score int
		if movesSearched == 1 {
			score = -t.alphaBeta(-beta, -alpha, depth-1+extension, height+1, position.MoveEmpty)
		} else {
			score = t.searchLater(pos, child, move, alpha, beta, depth, height, movesSearched,
				extension, isNoisy, isCheck, pvNode, improving, killer1, killer2, historyCtx)
		}

		if !isNoisy {
			// GainsTable.Update takes both evals from White's point of view
			var evalBefore, evalAfter = staticEval, -t.stack[height+1].staticEval
			if !pos.WhiteMove {
				evalBefore, evalAfter = -evalBefore, -evalAfter
			}
			t.engine.gains.Update(pos.WhiteMove, move, evalBefore, evalAfter)
		}

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

		// split once we're past the first move at sufficient depth and a
		// worker is free to help finish the remaining moves.
		if !rootNode && movesSearched > 1 && depth >= splitMinDepth && alpha < beta {
			if spBest, spBestMove, spAlpha, spPV, ok := t.trySplit(pos, height, depth, alpha, beta, movesSearched,
				mi, ttMove, killer1, killer2, pvNode, improving); ok {
				best = spBest
				bestMove = spBestMove
				if spAlpha > alpha {
					alpha = spAlpha
					t.stack[height].pv.size = len(spPV)
					copy(t.stack[height].pv.items[:], spPV)
				}
				break
			}
		}
	}

	if !hasLegalMove {
		if !isCheck && skipMove == position.MoveEmpty {
			return valueDraw
		}
		return lossIn(height)
	}

	if alpha > oldAlpha && bestMove != position.MoveEmpty && !isCaptureOrPromotion(bestMove) {
		historyCtx.Update(quietsSearched, bestMove, depth)
		t.killers.Update(height, bestMove)
	}

	if skipMove == position.MoveEmpty {
		var bound = 0
		if best > oldAlpha {
			bound |= ttable.BoundLower
		}
		if best < beta {
			bound |= ttable.BoundUpper
		}
		if !(rootNode && bound == ttable.BoundUpper) {
			t.engine.transTable.Store(pos.Key, depth, valueToTT(best, height), bound, bestMove, staticEval)
		}
	}

	return best
}

// searchLater runs the reduced/null-window/full-window PVS ladder for
// every move after the first. Shared with the split-point loop so both
// paths make identical decisions from identical inputs.
func (t *thread) searchLater(pos, child *position.Position, move position.Move, alpha, beta, depth, height, moveNumber, extension int,
	isNoisy, isCheck, pvNode, improving bool, killer1, killer2 position.Move, historyCtx ordering.Context) int {

	var reduction = 0
	if depth >= 3 && moveNumber > 1 && !isNoisy && !move.IsCastle() {
		reduction = t.engine.lmr.reduction(depth, moveNumber)
		if move == killer1 || move == killer2 {
			reduction--
		}
		if !isCheck {
			var history = historyCtx.ReadTotal(move)
			reduction -= clamp(history/5000, -2, 2)
			if !improving {
				reduction++
			}
		}
		if pvNode {
			reduction -= 2
		}
		if isCheck || child.IsCheck() {
			reduction--
		}
		reduction = max(reduction, 0) + extension
		reduction = clamp(reduction, 0, depth-2)
	}

	var newDepth = depth - 1 + extension
	var score = alpha + 1

	if reduction > 0 {
		score = -t.alphaBeta(-(alpha + 1), -alpha, newDepth-reduction, height+1, position.MoveEmpty)
	}
	// null-window PVS re-search: only meaningful at a PV node, since
	// elsewhere beta already equals alpha+1
	if score > alpha && pvNode && newDepth > 0 {
		score = -t.alphaBeta(-(alpha + 1), -alpha, newDepth, height+1, position.MoveEmpty)
	}
	if score > alpha {
		score = -t.alphaBeta(-beta, -alpha, newDepth, height+1, position.MoveEmpty)
	}
	return score
}

// isExcluded reports whether move must be skipped at a node running a
// singular-extension probe: the excluded move itself, its piece-category
// sentinel (PawnMoveSentinel standing for "any pawn move"), or a move
// returning to the square our own move two plies back vacated.
func isExcluded(t *thread, height int, skipMove, move position.Move) bool {
	if move == skipMove {
		return true
	}
	if skipMove == position.PawnMoveSentinel && move.MovingPiece() == position.Pawn {
		return true
	}
	if move.MovingPiece() != position.King && height >= 1 {
		var grandparentMove = t.stack[height-1].position.LastMove
		if grandparentMove != position.MoveEmpty && move.To() == grandparentMove.From() {
			return true
		}
	}
	return false
}

func prevMove(t *thread, height int) position.Move {
	if height == 0 {
		return position.MoveEmpty
	}
	return t.stack[height-1].position.LastMove
}

func (t *thread) isRepeat(height int) bool {
	var p = &t.stack[height].position
	if p.Rule50 == 0 || p.LastMove == position.MoveEmpty {
		return false
	}
	for i := height - 1; i >= 0; i-- {
		var q = &t.stack[i].position
		if q.Key == p.Key {
			return true
		}
		if q.Rule50 == 0 || q.LastMove == position.MoveEmpty {
			return false
		}
	}
	return t.engine.historyKeys[p.Key] >= 2
}
