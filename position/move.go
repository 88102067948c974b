package position

import "strings"

func makeMove(from, to, movingPiece, capturedPiece int) Move {
	return Move(from ^ (to << 6) ^ (movingPiece << 12) ^ (capturedPiece << 15))
}

func makePawnMove(from, to, capturedPiece, promotion int) Move {
	return Move(from ^ (to << 6) ^ (Pawn << 12) ^ (capturedPiece << 15) ^ (promotion << 18))
}

func (m Move) From() int {
	return int(m & 63)
}

func (m Move) To() int {
	return int((m >> 6) & 63)
}

func (m Move) MovingPiece() int {
	return int((m >> 12) & 7)
}

func (m Move) CapturedPiece() int {
	return int((m >> 15) & 7)
}

func (m Move) Promotion() int {
	return int((m >> 18) & 7)
}

// IsCastle reports whether m is one of the four castling moves.
func (m Move) IsCastle() bool {
	return m == whiteKingSideCastle || m == whiteQueenSideCastle ||
		m == blackKingSideCastle || m == blackQueenSideCastle
}

// PawnMoveSentinel is a synthetic Move standing for "any pawn move" when
// used as an excluded-move category rather than a literal move. Its high
// bit falls outside the range makeMove/makePawnMove ever set, so it can
// never collide with a real encoded move.
const PawnMoveSentinel = Move(1 << 30)

func (m Move) String() string {
	if m == MoveEmpty {
		return "0000"
	}
	var sPromotion = ""
	if m.Promotion() != Empty {
		sPromotion = string("nbrq"[m.Promotion()-Knight])
	}
	return SquareName(m.From()) + SquareName(m.To()) + sPromotion
}

// MakeMoveLAN looks up the legal move matching lan (e.g. "e2e4", "e7e8q")
// and applies it, returning the resulting position.
func (p *Position) MakeMoveLAN(lan string) (Position, bool) {
	var buffer [MaxMoves]Move
	var ml = GenerateMoves(buffer[:], p)
	for _, mv := range ml {
		if strings.EqualFold(mv.String(), lan) {
			var newPosition = Position{}
			if p.MakeMove(mv, &newPosition) {
				return newPosition, true
			}
			return Position{}, false
		}
	}
	return Position{}, false
}

func moveToSAN(pos *Position, ml []Move, mv Move) string {
	const pieceNames = "NBRQK"
	if mv == whiteKingSideCastle || mv == blackKingSideCastle {
		return "O-O"
	}
	if mv == whiteQueenSideCastle || mv == blackQueenSideCastle {
		return "O-O-O"
	}
	var strPiece, strCapture, strFrom, strTo, strPromotion string
	if mv.MovingPiece() != Pawn {
		strPiece = string(pieceNames[mv.MovingPiece()-Knight])
	}
	strTo = SquareName(mv.To())
	if mv.CapturedPiece() != Empty {
		strCapture = "x"
		if mv.MovingPiece() == Pawn {
			strFrom = SquareName(mv.From())[:1]
		}
	}
	if mv.Promotion() != Empty {
		strPromotion = "=" + string(pieceNames[mv.Promotion()-Knight])
	}

	var ambiguity, uniqCol, uniqRow = false, true, true
	for _, mv1 := range ml {
		if mv1.From() == mv.From() || mv1.To() != mv.To() || mv1.MovingPiece() != mv.MovingPiece() {
			continue
		}
		ambiguity = true
		if File(mv1.From()) == File(mv.From()) {
			uniqCol = false
		}
		if Rank(mv1.From()) == Rank(mv.From()) {
			uniqRow = false
		}
	}
	if ambiguity {
		switch {
		case uniqCol:
			strFrom = SquareName(mv.From())[:1]
		case uniqRow:
			strFrom = SquareName(mv.From())[1:2]
		default:
			strFrom = SquareName(mv.From())
		}
	}
	return strPiece + strFrom + strCapture + strTo + strPromotion
}

// ParseMoveSAN resolves a SAN token (stripping any trailing check/mate/
// annotation glyphs) against pos's legal moves.
func ParseMoveSAN(pos *Position, san string) Move {
	if index := strings.IndexAny(san, "+#?!"); index >= 0 {
		san = san[:index]
	}
	var ml = GenerateLegalMoves(pos)
	for _, mv := range ml {
		if san == moveToSAN(pos, ml, mv) {
			return mv
		}
	}
	return MoveEmpty
}
