package engine

import "github.com/kagechess/kage/position"

// pieceAfter returns the piece type occupying a move's destination square
// once it's made: the moved piece, or the promoted piece on a promotion.
func pieceAfter(m position.Move) int {
	if p := m.Promotion(); p != position.Empty {
		return p
	}
	return m.MovingPiece()
}

// staticAttacks reports whether a piece of the given type sitting on from
// would attack to, read directly off the board's current occupancy. It's a
// static approximation used only to decide whether a move is worth
// exempting from move-count/futility pruning, not a legality check.
func staticAttacks(pieceType, from, to int, occ uint64, whiteMover bool) bool {
	var target = position.SquareMask[to]
	switch pieceType {
	case position.Pawn:
		return position.PawnAttacks(from, whiteMover)&target != 0
	case position.Knight:
		return position.KnightAttacks[from]&target != 0
	case position.King:
		return position.KingAttacks[from]&target != 0
	case position.Bishop:
		return position.BishopAttacks(from, occ)&target != 0
	case position.Rook:
		return position.RookAttacks(from, occ)&target != 0
	case position.Queen:
		return position.QueenAttacks(from, occ)&target != 0
	}
	return false
}

// connectedMoves reports whether m2 is meaningfully tied to m1 — the move
// that produced the current position — so pruning m2 on move-count or
// futility grounds risks missing the point of playing m1 at all.
func connectedMoves(pos *position.Position, m1, m2 position.Move) bool {
	if m1 == position.MoveEmpty || m1 == position.NullMove || m2 == position.MoveEmpty {
		return false
	}

	// the same piece that just moved moves again
	if m1.To() == m2.From() {
		return true
	}
	// m1 vacated the square m2 lands on
	if m1.From() == m2.To() {
		return true
	}
	// m2 is a slider whose path runs through the square m1 just vacated
	var m2Piece = pieceAfter(m2)
	if m2Piece == position.Bishop || m2Piece == position.Rook || m2Piece == position.Queen {
		if position.Between(m2.From(), m2.To())&position.SquareMask[m1.From()] != 0 {
			return true
		}
	}
	// m1's piece, from its new square, now covers m2's destination. m1 is
	// the move that produced pos, so it was played by the side not on move.
	var occ = pos.White | pos.Black
	if staticAttacks(pieceAfter(m1), m1.To(), m2.To(), occ, !pos.WhiteMove) {
		return true
	}
	return false
}

// connectedThreat reports whether m addresses threat: moves the piece
// threat would capture, recaptures or defends on that square, or blocks a
// sliding threat along its path. Used to keep pruning from discarding the
// one move that actually answers a refutation turned up by the null-move
// search.
func connectedThreat(pos *position.Position, m, threat position.Move) bool {
	if threat == position.MoveEmpty || threat == position.NullMove || m == position.MoveEmpty {
		return false
	}

	// m moves the piece that threat would capture out of the way
	if m.From() == threat.To() {
		return true
	}
	// m lands on the threatened square: a recapture or a redefender
	if m.To() == threat.To() {
		return true
	}
	// threat slides along a line m can interpose on
	var threatPiece = threat.MovingPiece()
	if threatPiece == position.Bishop || threatPiece == position.Rook || threatPiece == position.Queen {
		if position.Between(threat.From(), threat.To())&position.SquareMask[m.To()] != 0 {
			return position.SeeGEZero(pos, m)
		}
	}
	return false
}
