// Package ordering holds the move-ordering tables the search core consumes
// through narrow interfaces: history, continuation history, killers, a
// gains table, and a staged move iterator built on top of them.
package ordering

import "github.com/kagechess/kage/position"

const historyMax = 1 << 14

// HistoryTable accumulates a quiet-move score shared by every search
// thread, split into a side/from/to main table and one continuation table
// consulted for both the move one ply back and the move two plies back.
// Concurrent updates from different threads race
// without a lock; the exponential-average update in Update tolerates the
// occasional lost or torn write.
type HistoryTable struct {
	main         [1 << 13]int16
	continuation [1 << 10][1 << 10]int16
}

func (h *HistoryTable) Clear() {
	for i := range h.main {
		h.main[i] = 0
	}
	for i := range h.continuation {
		for j := range h.continuation[i] {
			h.continuation[i][j] = 0
		}
	}
}

// Context binds the two continuation-history slots active at a given ply.
type Context struct {
	table      *HistoryTable
	sideToMove bool
	cont1      int
	cont2      int
}

// NewContext derives a scoring context from the side to move and the last
// two moves played (MoveEmpty for either means the slot does not apply).
func NewContext(table *HistoryTable, sideToMove bool, prev1, prev2 position.Move) Context {
	var c = Context{table: table, sideToMove: sideToMove, cont1: -1, cont2: -1}
	if prev1 != position.MoveEmpty {
		c.cont1 = pieceSquareIndex(!sideToMove, prev1)
	}
	if prev2 != position.MoveEmpty {
		c.cont2 = pieceSquareIndex(sideToMove, prev2)
	}
	return c
}

func (c Context) ReadTotal(m position.Move) int {
	var score int
	score += int(c.table.main[sideFromToIndex(c.sideToMove, m)])
	var pieceTo = pieceSquareIndex(c.sideToMove, m)
	if c.cont1 != -1 {
		score += int(c.table.continuation[c.cont1][pieceTo])
	}
	if c.cont2 != -1 {
		score += int(c.table.continuation[c.cont2][pieceTo])
	}
	return score
}

// Update rewards the move that caused the cutoff and penalizes every quiet
// move tried before it, using an exponential moving average toward +/-max.
func (c Context) Update(quietsSearched []position.Move, bestMove position.Move, depth int) {
	var bonus = depth * depth
	if bonus > 400 {
		bonus = 400
	}
	for _, m := range quietsSearched {
		var good = m == bestMove
		var fromTo = sideFromToIndex(c.sideToMove, m)
		updateHistory(&c.table.main[fromTo], bonus, good)
		var pieceTo = pieceSquareIndex(c.sideToMove, m)
		if c.cont1 != -1 {
			updateHistory(&c.table.continuation[c.cont1][pieceTo], bonus, good)
		}
		if c.cont2 != -1 {
			updateHistory(&c.table.continuation[c.cont2][pieceTo], bonus, good)
		}
		if good {
			break
		}
	}
}

func updateHistory(v *int16, bonus int, good bool) {
	var target int
	if good {
		target = historyMax
	} else {
		target = -historyMax
	}
	*v += int16((target - int(*v)) * bonus / 512)
}

func pieceSquareIndex(side bool, move position.Move) int {
	var result = (move.MovingPiece() << 6) | move.To()
	if side {
		result |= 1 << 9
	}
	return result
}

func sideFromToIndex(side bool, move position.Move) int {
	var result = (move.From() << 6) | move.To()
	if side {
		result |= 1 << 12
	}
	return result
}
