package ordering

import (
	"testing"

	"github.com/kagechess/kage/position"
)

func rootMoves(t *testing.T) []position.Move {
	t.Helper()
	p, err := position.NewPositionFromFEN(position.InitialPositionFen)
	if err != nil {
		t.Fatal(err)
	}
	return position.GenerateLegalMoves(&p)
}

func TestHistoryUpdateRewardsBestAndPenalizesRest(t *testing.T) {
	var moves = rootMoves(t)
	if len(moves) < 3 {
		t.Fatal("expected several legal moves from the initial position")
	}
	var table HistoryTable
	var ctx = NewContext(&table, true, position.MoveEmpty, position.MoveEmpty)

	var tried = moves[:3]
	var best = tried[2]

	var before = ctx.ReadTotal(best)
	ctx.Update(tried, best, 6)
	var after = ctx.ReadTotal(best)
	if after <= before {
		t.Fatalf("expected best move's history score to rise: before=%d after=%d", before, after)
	}

	var loser = tried[0]
	if ctx.ReadTotal(loser) >= 0 {
		t.Fatalf("expected a non-best tried move's score to fall below zero, got %d", ctx.ReadTotal(loser))
	}
}

func TestHistoryUpdateConvergesTowardMax(t *testing.T) {
	var table HistoryTable
	var ctx = NewContext(&table, true, position.MoveEmpty, position.MoveEmpty)
	var moves = rootMoves(t)
	var best = moves[0]

	var last = ctx.ReadTotal(best)
	for i := 0; i < 50; i++ {
		ctx.Update([]position.Move{best}, best, 10)
		var score = ctx.ReadTotal(best)
		if score < last {
			t.Fatalf("expected monotonic increase toward the max, regressed at iteration %d: %d -> %d", i, last, score)
		}
		last = score
	}
}

func TestHistoryClearResetsAllEntries(t *testing.T) {
	var table HistoryTable
	var ctx = NewContext(&table, true, position.MoveEmpty, position.MoveEmpty)
	var moves = rootMoves(t)
	ctx.Update(moves, moves[0], 10)
	table.Clear()
	for _, m := range moves {
		if score := ctx.ReadTotal(m); score != 0 {
			t.Fatalf("expected zero after Clear, got %d for move %v", score, m)
		}
	}
}

func TestContinuationHistoryAppliesOnlyWithPriorMoves(t *testing.T) {
	var table HistoryTable
	var moves = rootMoves(t)
	var prev1, prev2 = moves[0], moves[1]

	var withoutPrev = NewContext(&table, true, position.MoveEmpty, position.MoveEmpty)
	var withPrev = NewContext(&table, true, prev1, prev2)

	var target = moves[2]
	withPrev.Update([]position.Move{target}, target, 8)

	// Update always folds into the shared main table regardless of which
	// context performed it, so both contexts see that contribution; only
	// withPrev additionally picks up the continuation-table bonus keyed by
	// prev1/prev2, so it must score strictly higher.
	var plain = withoutPrev.ReadTotal(target)
	var withContinuation = withPrev.ReadTotal(target)
	if withContinuation <= plain {
		t.Fatalf("expected continuation-aware context to score higher: plain=%d withContinuation=%d",
			plain, withContinuation)
	}
}
