package position

const (
	f1g1Mask = (uint64(1) << SquareF1) | (uint64(1) << SquareG1)
	b1d1Mask = (uint64(1) << SquareB1) | (uint64(1) << SquareC1) | (uint64(1) << SquareD1)
	f8g8Mask = (uint64(1) << SquareF8) | (uint64(1) << SquareG8)
	b8d8Mask = (uint64(1) << SquareB8) | (uint64(1) << SquareC8) | (uint64(1) << SquareD8)
)

var (
	whiteKingSideCastle  = makeMove(SquareE1, SquareG1, King, Empty)
	whiteQueenSideCastle = makeMove(SquareE1, SquareC1, King, Empty)
	blackKingSideCastle  = makeMove(SquareE8, SquareG8, King, Empty)
	blackQueenSideCastle = makeMove(SquareE8, SquareC8, King, Empty)
)

// castleChoice bundles what GenerateMoves needs to decide whether one side
// of one color's castling is currently legal: the right bit to check, the
// squares that must be empty, the king's home square and the square it
// crosses (both must be free of attack; the destination square is covered
// by isLegal after the move is actually made).
type castleChoice struct {
	right     int
	move      Move
	emptyMask uint64
	kingHome  int
	crossing  int
}

var castleChoicesByColor = [2][2]castleChoice{
	{ // black (boolToSideIndex(false) == 0)
		{BlackKingSide, blackKingSideCastle, f8g8Mask, SquareE8, SquareF8},
		{BlackQueenSide, blackQueenSideCastle, b8d8Mask, SquareE8, SquareD8},
	},
	{ // white (boolToSideIndex(true) == 1)
		{WhiteKingSide, whiteKingSideCastle, f1g1Mask, SquareE1, SquareF1},
		{WhiteQueenSide, whiteQueenSideCastle, b1d1Mask, SquareE1, SquareD1},
	},
}

func boolToSideIndex(white bool) int {
	if white {
		return 1
	}
	return 0
}

func addPromotions(ml []Move, move Move) (count int) {
	ml[0] = move ^ Move(Queen<<18)
	ml[1] = move ^ Move(Rook<<18)
	ml[2] = move ^ Move(Bishop<<18)
	ml[3] = move ^ Move(Knight<<18)
	return 4
}

func GenerateMoves(ml []Move, p *Position) []Move {
	var count = 0
	var fromBB, toBB, ownPieces, oppPieces uint64
	var from, to int

	if p.WhiteMove {
		ownPieces = p.White
		oppPieces = p.Black
	} else {
		ownPieces = p.Black
		oppPieces = p.White
	}

	var target = ^ownPieces
	if p.Checkers != 0 {
		var kingSq = FirstOne(p.Kings & ownPieces)
		target = p.Checkers | betweenMask[FirstOne(p.Checkers)][kingSq]
	}

	var allPieces = p.White | p.Black
	var ownPawns = p.Pawns & ownPieces

	if p.EpSquare != SquareNone {
		for fromBB = PawnAttacks(p.EpSquare, !p.WhiteMove) & ownPawns; fromBB != 0; fromBB &= fromBB - 1 {
			from = FirstOne(fromBB)
			ml[count] = makeMove(from, p.EpSquare, Pawn, Pawn)
			count++
		}
	}

	// Every push/double-push/capture rule below is one rule run in the
	// direction given by adv/left/right, rather than one copy per color.
	var adv = pawnAdvanceFor(p.WhiteMove)
	var left, right = pawnCaptureOffsets(p.WhiteMove)

	for fromBB = ownPawns & ^adv.promoteRankMask; fromBB != 0; fromBB &= fromBB - 1 {
		from = FirstOne(fromBB)
		if (SquareMask[from+adv.push] & allPieces) == 0 {
			ml[count] = makeMove(from, from+adv.push, Pawn, Empty)
			count++
			if Rank(from) == adv.doubleRank && (SquareMask[from+2*adv.push]&allPieces) == 0 {
				ml[count] = makeMove(from, from+2*adv.push, Pawn, Empty)
				count++
			}
		}
		if File(from) > FileA && (SquareMask[from+left]&oppPieces) != 0 {
			ml[count] = makeMove(from, from+left, Pawn, p.WhatPiece(from+left))
			count++
		}
		if File(from) < FileH && (SquareMask[from+right]&oppPieces) != 0 {
			ml[count] = makeMove(from, from+right, Pawn, p.WhatPiece(from+right))
			count++
		}
	}
	for fromBB = ownPawns & adv.promoteRankMask; fromBB != 0; fromBB &= fromBB - 1 {
		from = FirstOne(fromBB)
		if (SquareMask[from+adv.push] & allPieces) == 0 {
			count += addPromotions(ml[count:], makeMove(from, from+adv.push, Pawn, Empty))
		}
		if File(from) > FileA && (SquareMask[from+left]&oppPieces) != 0 {
			count += addPromotions(ml[count:], makeMove(from, from+left, Pawn, p.WhatPiece(from+left)))
		}
		if File(from) < FileH && (SquareMask[from+right]&oppPieces) != 0 {
			count += addPromotions(ml[count:], makeMove(from, from+right, Pawn, p.WhatPiece(from+right)))
		}
	}

	for _, piece := range [...]int{Knight, Bishop, Rook, Queen} {
		for fromBB = p.pieceBitboard(piece) & ownPieces; fromBB != 0; fromBB &= fromBB - 1 {
			from = FirstOne(fromBB)
			for toBB = pieceAttacksFrom(piece, from, allPieces) & target; toBB != 0; toBB &= toBB - 1 {
				to = FirstOne(toBB)
				ml[count] = makeMove(from, to, piece, p.WhatPiece(to))
				count++
			}
		}
	}

	{
		from = FirstOne(p.Kings & ownPieces)
		for toBB = KingAttacks[from] &^ ownPieces; toBB != 0; toBB &= toBB - 1 {
			to = FirstOne(toBB)
			ml[count] = makeMove(from, to, King, p.WhatPiece(to))
			count++
		}

		var enemySide = !p.WhiteMove
		for _, c := range castleChoicesByColor[boolToSideIndex(p.WhiteMove)] {
			if (p.CastleRights&c.right) != 0 &&
				(allPieces&c.emptyMask) == 0 &&
				!p.isAttackedBySide(c.kingHome, enemySide) &&
				!p.isAttackedBySide(c.crossing, enemySide) {
				ml[count] = c.move
				count++
			}
		}
	}

	return ml[:count]
}

func GenerateCaptures(ml []Move, p *Position, genChecks bool) []Move {
	var count = 0
	var fromBB, toBB, ownPieces, oppPieces uint64
	var from, to, promotion int

	if p.WhiteMove {
		ownPieces = p.White
		oppPieces = p.Black
	} else {
		ownPieces = p.Black
		oppPieces = p.White
	}

	var target = oppPieces
	var allPieces = p.White | p.Black
	var ownPawns = p.Pawns & ownPieces

	if p.EpSquare != SquareNone {
		for fromBB = PawnAttacks(p.EpSquare, !p.WhiteMove) & ownPawns; fromBB != 0; fromBB &= fromBB - 1 {
			from = FirstOne(fromBB)
			ml[count] = makeMove(from, p.EpSquare, Pawn, Pawn)
			count++
		}
	}

	var adv = pawnAdvanceFor(p.WhiteMove)
	var left, right = pawnCaptureOffsets(p.WhiteMove)

	if p.WhiteMove {
		fromBB = (AllBlackPawnAttacks(oppPieces) | Rank7Mask) & p.Pawns & p.White
	} else {
		fromBB = (AllWhitePawnAttacks(oppPieces) | Rank2Mask) & p.Pawns & p.Black
	}
	for ; fromBB != 0; fromBB &= fromBB - 1 {
		from = FirstOne(fromBB)
		promotion = choose(Rank(from) == adv.oneBeforePromote, Queen, Empty)
		if Rank(from) == adv.oneBeforePromote && (SquareMask[from+adv.push]&allPieces) == 0 {
			ml[count] = makePawnMove(from, from+adv.push, Empty, promotion)
			count++
		}
		if File(from) > FileA && (SquareMask[from+left]&oppPieces) != 0 {
			ml[count] = makePawnMove(from, from+left, p.WhatPiece(from+left), promotion)
			count++
		}
		if File(from) < FileH && (SquareMask[from+right]&oppPieces) != 0 {
			ml[count] = makePawnMove(from, from+right, p.WhatPiece(from+right), promotion)
			count++
		}
	}

	var checksN, checksB, checksR, checksQ uint64
	if genChecks {
		var oppKing = FirstOne(p.Kings & oppPieces)

		count = genPawnCheckThreats(ml, count, allPieces, ownPawns, oppKing, adv, left, right)

		checksN = KnightAttacks[oppKing] &^ allPieces
		checksB = BishopAttacks(oppKing, allPieces) &^ allPieces
		checksR = RookAttacks(oppKing, allPieces) &^ allPieces
		checksQ = checksB | checksR

		//discovered checks
		//TODO pawn, king discovered checks
		for fromBB = (p.Rooks | p.Queens) & ownPieces & rookMoves[oppKing]; fromBB != 0; fromBB &= fromBB - 1 {
			var blockers = betweenMask[FirstOne(fromBB)][oppKing] & allPieces
			if blockers&(blockers-1) == 0 {
				from = FirstOne(blockers)
				if (SquareMask[from] & ownPieces) != 0 {
					var piece = p.WhatPiece(from)
					if piece == Knight {
						for toBB = KnightAttacks[from] & ^allPieces & ^checksN; toBB != 0; toBB &= toBB - 1 {
							to = FirstOne(toBB)
							ml[count] = makeMove(from, to, Knight, p.WhatPiece(to))
							count++
						}
					} else if piece == Bishop {
						for toBB = BishopAttacks(from, allPieces) & ^allPieces & ^checksB; toBB != 0; toBB &= toBB - 1 {
							to = FirstOne(toBB)
							ml[count] = makeMove(from, to, Bishop, p.WhatPiece(to))
							count++
						}
					}
				}
			}
		}

		for fromBB = (p.Bishops | p.Queens) & ownPieces & bishopMoves[oppKing]; fromBB != 0; fromBB &= fromBB - 1 {
			var blockers = betweenMask[FirstOne(fromBB)][oppKing] & allPieces
			if blockers&(blockers-1) == 0 {
				from = FirstOne(blockers)
				if (SquareMask[from] & ownPieces) != 0 {
					var piece = p.WhatPiece(from)
					if piece == Knight {
						for toBB = KnightAttacks[from] & ^allPieces & ^checksN; toBB != 0; toBB &= toBB - 1 {
							to = FirstOne(toBB)
							ml[count] = makeMove(from, to, Knight, p.WhatPiece(to))
							count++
						}
					} else if piece == Rook {
						for toBB = RookAttacks(from, allPieces) & ^allPieces & ^checksR; toBB != 0; toBB &= toBB - 1 {
							to = FirstOne(toBB)
							ml[count] = makeMove(from, to, Rook, p.WhatPiece(to))
							count++
						}
					} else if piece == Pawn {
						if (allPieces&SquareMask[from+adv.push]) == 0 &&
							Rank(from) != adv.oneBeforePromote &&
							(SquareMask[from+adv.push]&PawnAttacks(oppKing, !p.WhiteMove)) == 0 {
							ml[count] = makeMove(from, from+adv.push, Pawn, Empty)
							count++
						}
					}
				}
			}
		}
	}

	for _, piece := range [...]int{Knight, Bishop, Rook, Queen} {
		var checkBB uint64
		switch piece {
		case Knight:
			checkBB = checksN
		case Bishop:
			checkBB = checksB
		case Rook:
			checkBB = checksR
		case Queen:
			checkBB = checksQ
		}
		for fromBB = p.pieceBitboard(piece) & ownPieces; fromBB != 0; fromBB &= fromBB - 1 {
			from = FirstOne(fromBB)
			for toBB = pieceAttacksFrom(piece, from, allPieces) & (target | checkBB); toBB != 0; toBB &= toBB - 1 {
				to = FirstOne(toBB)
				ml[count] = makeMove(from, to, piece, p.WhatPiece(to))
				count++
			}
		}
	}

	{
		from = FirstOne(p.Kings & ownPieces)
		for toBB = KingAttacks[from] & target; toBB != 0; toBB &= toBB - 1 {
			to = FirstOne(toBB)
			ml[count] = makeMove(from, to, King, p.WhatPiece(to))
			count++
		}
	}

	return ml[:count]
}

// genPawnCheckThreats appends the non-capturing pawn pushes (single, and
// double from the start rank) that land on one of the two squares
// diagonally attacking oppKing. left/right are the same diagonal offsets
// pawnCaptureOffsets gives for captures, since "attacks oppKing" and
// "captures on a square adjacent to oppKing" are the same geometry.
func genPawnCheckThreats(ml []Move, count int, allPieces, ownPawns uint64, oppKing int, adv pawnAdvance, left, right int) int {
	for _, capOffset := range [2]int{left, right} {
		var to = oppKing - capOffset
		if to < 0 || to > 63 || AbsDelta(File(to), File(oppKing)) != 1 {
			continue
		}
		if (SquareMask[to] & allPieces) != 0 {
			continue
		}
		var from = to - adv.push
		if from < 0 || from > 63 {
			continue
		}
		if (SquareMask[from] & ownPawns) != 0 {
			ml[count] = makeMove(from, to, Pawn, Empty)
			count++
		}
		var from2 = to - 2*adv.push
		if from2 >= 0 && from2 <= 63 && Rank(from2) == adv.doubleRank &&
			(SquareMask[from2]&ownPawns) != 0 &&
			(SquareMask[from]&allPieces) == 0 {
			ml[count] = makeMove(from2, to, Pawn, Empty)
			count++
		}
	}
	return count
}

func GenerateLegalMoves(pos *Position) (ml []Move) {
	var buffer [MaxMoves]Move
	var child Position
	for _, m := range GenerateMoves(buffer[:], pos) {
		if pos.MakeMove(m, &child) {
			ml = append(ml, m)
		}
	}
	return ml
}
