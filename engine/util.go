package engine

import "github.com/kagechess/kage/position"

func valueToTT(v, height int) int {
	if v >= valueWin {
		return v + height
	}
	if v <= valueLoss {
		return v - height
	}
	return v
}

func valueFromTT(v, height int) int {
	if v >= valueWin {
		return v - height
	}
	if v <= valueLoss {
		return v + height
	}
	return v
}

func isDraw(p *position.Position) bool {
	if p.Rule50 > 100 {
		return true
	}
	if (p.Pawns|p.Rooks|p.Queens) == 0 && !position.MoreThanOne(p.Knights|p.Bishops) {
		return true
	}
	return false
}

func isLateEndgame(p *position.Position, side bool) bool {
	var own = p.PiecesByColor(side)
	return ((p.Rooks|p.Queens)&own) == 0 && !position.MoreThanOne((p.Knights|p.Bishops)&own)
}

func isCaptureOrPromotion(m position.Move) bool {
	return m.CapturedPiece() != position.Empty || m.Promotion() != position.Empty
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
