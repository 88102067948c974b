package position

// The teacher's movegen and makemove code duplicated every pawn/castle rule
// once for White and once for Black. Both halves are the same rule run in
// opposite directions, so they are expressed here as one rule parameterized
// by side and looked up by the callers in movegen.go and position.go.

// pawnAdvance describes the direction-dependent arithmetic of a pawn's
// forward motion: how far one step moves it, which rank it can double-step
// from, and which rank promotes it.
type pawnAdvance struct {
	push             int
	doubleRank       int
	promoteRank      int
	oneBeforePromote int
	promoteRankMask  uint64
}

func pawnAdvanceFor(white bool) pawnAdvance {
	if white {
		return pawnAdvance{push: 8, doubleRank: Rank2, promoteRank: Rank8, oneBeforePromote: Rank7, promoteRankMask: Rank7Mask}
	}
	return pawnAdvance{push: -8, doubleRank: Rank7, promoteRank: Rank1, oneBeforePromote: Rank2, promoteRankMask: Rank2Mask}
}

// pawnCaptureOffsets gives the two diagonal from->to deltas a pawn of the
// given side captures along; left is the offset reached when File(from) >
// FileA, right the one reached when File(from) < FileH.
func pawnCaptureOffsets(white bool) (left, right int) {
	if white {
		return 7, 9
	}
	return -9, -7
}

type castleRookMove struct {
	kingTo   int
	rookFrom int
	rookTo   int
}

func castleRookMoves(white bool) [2]castleRookMove {
	if white {
		return [2]castleRookMove{
			{SquareG1, SquareH1, SquareF1},
			{SquareC1, SquareA1, SquareD1},
		}
	}
	return [2]castleRookMove{
		{SquareG8, SquareH8, SquareF8},
		{SquareC8, SquareA8, SquareD8},
	}
}

// pieceBitboard returns the board holding all pieces of the given type
// (either color), used by movegen's shared sliding/knight loop.
func (p *Position) pieceBitboard(piece int) uint64 {
	switch piece {
	case Pawn:
		return p.Pawns
	case Knight:
		return p.Knights
	case Bishop:
		return p.Bishops
	case Rook:
		return p.Rooks
	case Queen:
		return p.Queens
	case King:
		return p.Kings
	}
	return 0
}

// pieceAttacksFrom returns the attack set of a knight/bishop/rook/queen
// standing on from, given the board's full occupancy.
func pieceAttacksFrom(piece, from int, occ uint64) uint64 {
	switch piece {
	case Knight:
		return KnightAttacks[from]
	case Bishop:
		return BishopAttacks(from, occ)
	case Rook:
		return RookAttacks(from, occ)
	case Queen:
		return QueenAttacks(from, occ)
	}
	return 0
}
