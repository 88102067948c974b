package ordering

import "github.com/kagechess/kage/position"

const importantKey = 100000

// SeeSign reports whether a capture or promotion is SEE-non-negative; the
// engine package supplies it so this package never needs to know about the
// see threshold convention beyond calling it.
type SeeSign func(pos *position.Position, m position.Move) bool

// MoveIterator stages TT move, winning captures, killers, history-scored
// quiets and losing captures without a full sort of the move list: only the
// still-unsearched suffix gets sorted, and only once.
type MoveIterator struct {
	buffer    []position.OrderedMove
	count     int
	index     int
	seeSign   SeeSign
	history   Context
	transMove position.Move
	killer1   position.Move
	killer2   position.Move
}

func NewMoveIterator(buffer []position.OrderedMove) *MoveIterator {
	return &MoveIterator{buffer: buffer}
}

func (mi *MoveIterator) Init(pos *position.Position, moves []position.Move, transMove, killer1, killer2 position.Move, history Context, seeSign SeeSign) {
	mi.transMove = transMove
	mi.killer1 = killer1
	mi.killer2 = killer2
	mi.history = history
	mi.seeSign = seeSign
	mi.count = len(moves)
	mi.index = 0

	for i, m := range moves {
		var score int
		switch {
		case m == transMove:
			score = importantKey + 2000
		case IsCaptureOrPromotion(m):
			if seeSign(pos, m) {
				score = importantKey + 1000 + mvvlva(m)
			} else {
				score = mvvlva(m)
			}
		case m == killer1:
			score = importantKey + 1
		case m == killer2:
			score = importantKey
		default:
			score = history.ReadTotal(m)
		}
		mi.buffer[i] = position.OrderedMove{Move: m, Key: score}
	}
}

func (mi *MoveIterator) Reset() {
	mi.index = 0
}

func (mi *MoveIterator) Next() position.Move {
	if mi.index >= mi.count {
		return position.MoveEmpty
	}
	const sortIndex = 1
	if mi.index <= sortIndex {
		if mi.index == sortIndex {
			sortMoves(mi.buffer[mi.index:mi.count])
		} else {
			moveToTop(mi.buffer[mi.index:mi.count])
		}
	}
	var m = mi.buffer[mi.index].Move
	mi.index++
	return m
}

// CaptureIterator stages captures/checks for quiescence: MVV-LVA scoring,
// no killers or history involved.
type CaptureIterator struct {
	buffer []position.OrderedMove
	count  int
	index  int
}

func NewCaptureIterator(buffer []position.OrderedMove) *CaptureIterator {
	return &CaptureIterator{buffer: buffer}
}

func (mi *CaptureIterator) Init(moves []position.Move) {
	mi.count = len(moves)
	mi.index = 0
	for i, m := range moves {
		var score int
		if IsCaptureOrPromotion(m) {
			score = 29000 + mvvlva(m)
		}
		mi.buffer[i] = position.OrderedMove{Move: m, Key: score}
	}
	sortMoves(mi.buffer[:mi.count])
}

func (mi *CaptureIterator) Reset() {
	mi.index = 0
}

func (mi *CaptureIterator) Next() position.Move {
	if mi.index >= mi.count {
		return position.MoveEmpty
	}
	var m = mi.buffer[mi.index].Move
	mi.index++
	return m
}

func IsCaptureOrPromotion(m position.Move) bool {
	return m.CapturedPiece() != position.Empty || m.Promotion() != position.Empty
}

var mvvlvaValue = [...]int{
	position.Empty:  0,
	position.Pawn:   1,
	position.Knight: 2,
	position.Bishop: 3,
	position.Rook:   4,
	position.Queen:  5,
	position.King:   6,
}

func mvvlva(m position.Move) int {
	return 8*(mvvlvaValue[m.CapturedPiece()]+mvvlvaValue[m.Promotion()]) - mvvlvaValue[m.MovingPiece()]
}

func sortMoves(moves []position.OrderedMove) {
	for i := 1; i < len(moves); i++ {
		var j, t = i, moves[i]
		for ; j > 0 && moves[j-1].Key < t.Key; j-- {
			moves[j] = moves[j-1]
		}
		moves[j] = t
	}
}

func moveToTop(ml []position.OrderedMove) {
	var best = 0
	for i := 1; i < len(ml); i++ {
		if ml[i].Key > ml[best].Key {
			best = i
		}
	}
	if best != 0 {
		ml[0], ml[best] = ml[best], ml[0]
	}
}
