package ordering

import "github.com/kagechess/kage/position"

// GainsTable tracks, per (piece, destination square), a moving average of
// the static-eval swing a quiet move tends to produce. It feeds the same
// futility margin refinement the S1-S20 pipeline's staticEval-based pruning
// rules consult, the way HistoryTable feeds move ordering.
type GainsTable struct {
	values [1 << 10]int16
}

func (g *GainsTable) Clear() {
	for i := range g.values {
		g.values[i] = 0
	}
}

// Update folds a fresh (evalBefore, evalAfter) observation for a quiet move
// into the table.
func (g *GainsTable) Update(sideToMove bool, m position.Move, evalBefore, evalAfter int) {
	if m == position.MoveEmpty || m == position.NullMove {
		return
	}
	var gain = evalAfter - evalBefore
	if !sideToMove {
		gain = -gain
	}
	var idx = pieceSquareIndex(sideToMove, m)
	var v = &g.values[idx]
	*v += int16((gain - int(*v)) / 8)
}

// Read returns the table's running estimate of the eval swing a move like m
// tends to produce, used to widen or tighten futility margins.
func (g *GainsTable) Read(sideToMove bool, m position.Move) int {
	return int(g.values[pieceSquareIndex(sideToMove, m)])
}
