// Package eval implements the tapered material + piece-square evaluator
// used as the engine's leaf static evaluator. It is a collaborator the
// search core reaches only through the Evaluator interface it defines for
// itself; nothing here is search-aware.
package eval

import "github.com/kagechess/kage/position"

type score struct {
	mg, eg int32
}

func (s *score) add(r score) { s.mg += r.mg; s.eg += r.eg }
func (s *score) sub(r score) { s.mg -= r.mg; s.eg -= r.eg }

var pieceValue = [...]score{
	position.Pawn:   {100, 120},
	position.Knight: {320, 320},
	position.Bishop: {330, 330},
	position.Rook:   {500, 520},
	position.Queen:  {950, 970},
}

var phaseWeight = [...]int{
	position.Pawn: 0, position.Knight: 1, position.Bishop: 1, position.Rook: 2, position.Queen: 4,
}

const totalPhase = 16*0 + 4*1 + 4*1 + 4*2 + 2*4 // 24

// pst is indexed [pieceType][square] from White's perspective; Black looks
// up the vertically mirrored square.
var pst = [7][64]int32{
	position.Pawn: {
		0, 0, 0, 0, 0, 0, 0, 0,
		5, 10, 10, -20, -20, 10, 10, 5,
		5, -5, -10, 0, 0, -10, -5, 5,
		0, 0, 0, 20, 20, 0, 0, 0,
		5, 5, 10, 25, 25, 10, 5, 5,
		10, 10, 20, 30, 30, 20, 10, 10,
		50, 50, 50, 50, 50, 50, 50, 50,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	position.Knight: {
		-50, -40, -30, -30, -30, -30, -40, -50,
		-40, -20, 0, 5, 5, 0, -20, -40,
		-30, 5, 10, 15, 15, 10, 5, -30,
		-30, 0, 15, 20, 20, 15, 0, -30,
		-30, 5, 15, 20, 20, 15, 5, -30,
		-30, 0, 10, 15, 15, 10, 0, -30,
		-40, -20, 0, 0, 0, 0, -20, -40,
		-50, -40, -30, -30, -30, -30, -40, -50,
	},
	position.Bishop: {
		-20, -10, -10, -10, -10, -10, -10, -20,
		-10, 5, 0, 0, 0, 0, 5, -10,
		-10, 10, 10, 10, 10, 10, 10, -10,
		-10, 0, 10, 10, 10, 10, 0, -10,
		-10, 5, 5, 10, 10, 5, 5, -10,
		-10, 0, 5, 10, 10, 5, 0, -10,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-20, -10, -10, -10, -10, -10, -10, -20,
	},
	position.Rook: {
		0, 0, 0, 5, 5, 0, 0, 0,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		5, 10, 10, 10, 10, 10, 10, 5,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	position.King: {
		20, 30, 10, 0, 0, 10, 30, 20,
		20, 20, 0, 0, 0, 0, 20, 20,
		-10, -20, -20, -20, -20, -20, -20, -10,
		-20, -30, -30, -40, -40, -30, -30, -20,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
	},
}

var kingEndgamePst = [64]int32{
	-50, -30, -30, -30, -30, -30, -30, -50,
	-30, -30, 0, 0, 0, 0, -30, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -20, -10, 0, 0, -10, -20, -30,
	-50, -40, -30, -20, -20, -30, -40, -50,
}

// Evaluate returns a centipawn score from the side-to-move's perspective
// along with an uncertainty margin used by futility-style pruning.
func Evaluate(p *position.Position) (value int, margin int) {
	var white, black score
	var phase = 0

	for sq := 0; sq < 64; sq++ {
		var mask = position.SquareMask[sq]
		if p.White&mask == 0 && p.Black&mask == 0 {
			continue
		}
		var pieceType int
		switch {
		case p.Pawns&mask != 0:
			pieceType = position.Pawn
		case p.Knights&mask != 0:
			pieceType = position.Knight
		case p.Bishops&mask != 0:
			pieceType = position.Bishop
		case p.Rooks&mask != 0:
			pieceType = position.Rook
		case p.Queens&mask != 0:
			pieceType = position.Queen
		case p.Kings&mask != 0:
			pieceType = position.King
		default:
			continue
		}
		var isWhite = p.White&mask != 0
		var pstSq = sq
		if !isWhite {
			pstSq = position.FlipSquare(sq)
		}

		var s score
		if pieceType != position.King {
			s = pieceValue[pieceType]
			s.mg += pst[pieceType][pstSq]
			s.eg += pst[pieceType][pstSq]
			phase += phaseWeight[pieceType]
		} else {
			s.mg += pst[position.King][pstSq]
			s.eg += kingEndgamePst[pstSq]
		}

		if isWhite {
			white.add(s)
		} else {
			black.add(s)
		}
	}

	if p.Bishops&p.White != 0 && position.MoreThanOne(p.Bishops&p.White) {
		white.add(score{30, 50})
	}
	if p.Bishops&p.Black != 0 && position.MoreThanOne(p.Bishops&p.Black) {
		black.add(score{30, 50})
	}

	var total = white
	total.sub(black)

	if phase > totalPhase {
		phase = totalPhase
	}
	var tapered = (int64(total.mg)*int64(phase) + int64(total.eg)*int64(totalPhase-phase)) / int64(totalPhase)

	value = int(tapered)
	if !p.WhiteMove {
		value = -value
	}

	margin = 25
	return value, margin
}
