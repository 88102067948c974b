package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/kagechess/kage/engine"
	"github.com/kagechess/kage/eval"
	"github.com/kagechess/kage/position"
)

func newTestEngine() *engine.Engine {
	var e = engine.NewEngine(engine.EvaluatorFunc(eval.Evaluate))
	e.Hash = 1
	e.Threads = 1
	e.Prepare()
	return e
}

func searchFEN(t *testing.T, e *engine.Engine, fen string, depth int) engine.SearchInfo {
	t.Helper()
	p, err := position.NewPositionFromFEN(fen)
	if err != nil {
		t.Fatalf("bad fen %q: %v", fen, err)
	}
	var ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Search(ctx, engine.SearchParams{
		Positions: []position.Position{p},
		Limits:    engine.LimitsType{Depth: depth},
	})
}

func TestMateInOneIsFound(t *testing.T) {
	// Back-rank mate: Black's king is boxed in by its own pawns with an
	// empty 8th rank; Ra1-a8 checks along that rank and covers every
	// escape square on it.
	var e = newTestEngine()
	var info = searchFEN(t, e, "6k1/5ppp/8/8/8/8/8/R6K w - - 0 1", 4)
	if len(info.MainLine) == 0 {
		t.Fatal("expected a main line")
	}
	if !info.Score.IsMate || info.Score.Mate != 1 {
		t.Fatalf("expected mate in 1, got score %+v", info.Score)
	}
	if got := info.MainLine[0].String(); got != "a1a8" {
		t.Fatalf("expected Ra1-a8#, got %v", got)
	}
}

func TestFindsHangingQueen(t *testing.T) {
	// Black's queen on d8 is undefended and too far from its own king (h8)
	// to be recaptured; White's rook on d1 simply takes it for free. This
	// exercises move ordering and SEE-driven capture search rather than a
	// forced mate.
	var e = newTestEngine()
	var info = searchFEN(t, e, "3q3k/8/8/8/8/8/8/3R2K1 w - - 0 1", 4)
	if len(info.MainLine) == 0 {
		t.Fatal("expected a main line")
	}
	if got := info.MainLine[0].String(); got != "d1d8" {
		t.Fatalf("expected Rxd8, got %v", got)
	}
	if info.Score.IsMate || info.Score.Centipawns < 400 {
		t.Fatalf("expected a large material-winning score, got %+v", info.Score)
	}
}

func TestStalemateReturnsDrawWithNoMove(t *testing.T) {
	// Classic stalemate: Black to move, no legal moves, not in check.
	var e = newTestEngine()
	var info = searchFEN(t, e, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", 4)
	if info.Depth != 0 {
		t.Fatalf("expected depth 0 for a position with no legal moves, got %d", info.Depth)
	}
	if len(info.MainLine) != 0 {
		t.Fatalf("expected no main line from stalemate, got %v", info.MainLine)
	}
}

func TestNoLegalRootMovesProducesEmptyLine(t *testing.T) {
	// Fool's mate: White to move, in check from Qh4, no legal reply.
	var e = newTestEngine()
	var info = searchFEN(t, e, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", 4)
	if info.Depth != 0 {
		t.Fatalf("expected depth 0 for a position with no legal moves, got %d", info.Depth)
	}
	if len(info.MainLine) != 0 {
		t.Fatalf("expected no main line when checkmated, got %v", info.MainLine)
	}
}

func TestSearchRespectsDepthLimit(t *testing.T) {
	var e = newTestEngine()
	var info = searchFEN(t, e, position.InitialPositionFen, 3)
	if info.Depth == 0 {
		t.Fatal("expected at least one completed iteration")
	}
	if info.Depth > 3 {
		t.Fatalf("expected the search to stop at depth 3, completed depth %d", info.Depth)
	}
	if len(info.MainLine) == 0 {
		t.Fatal("expected a main line from the initial position")
	}
}

func TestForcedMateInThreeIsFound(t *testing.T) {
	// Kemeri-style rook mate: White king cuts off d-file/6th-rank escape,
	// the lone king on e8 is driven into the rook's mating net in 3 moves
	// (5 plies).
	var e = newTestEngine()
	var info = searchFEN(t, e, "4k3/8/3K4/8/8/8/8/4R3 w - - 0 1", 6)
	if len(info.MainLine) < 5 {
		t.Fatalf("expected a PV of at least 5 plies, got %v", info.MainLine)
	}
	if !info.Score.IsMate || info.Score.Mate != 3 {
		t.Fatalf("expected mate in 3, got score %+v", info.Score)
	}
}

func TestZugzwangDoesNotReportSpuriousWin(t *testing.T) {
	// A position with no legal move that doesn't worsen White's game:
	// every pawn push is met by a countermove, and advancing the rook or
	// king hands Black counterplay. Null-move pruning's "doing nothing is
	// at least as good as any move" assumption fails here outright, so an
	// engine that trusts a null-move fail-high without verification will
	// misreport a large advantage that isn't real.
	var e = newTestEngine()
	var info = searchFEN(t, e, "8/8/p1p5/1p5p/1P5p/8/PPP2K1p/4R1rk w - - 0 1", 10)
	if len(info.MainLine) == 0 {
		t.Fatal("expected a main line")
	}
	if info.Score.IsMate {
		t.Fatalf("expected no mate claim out of a zugzwang position, got %+v", info.Score)
	}
	const spuriousWinThreshold = 2000
	if info.Score.Centipawns >= spuriousWinThreshold || info.Score.Centipawns <= -spuriousWinThreshold {
		t.Fatalf("expected a bounded score clear of a spurious null-move-driven win claim, got %+v", info.Score)
	}
}

func TestSearchIsDeterministicAcrossRepeatedRunsWithoutThreads(t *testing.T) {
	var e = newTestEngine()
	var first = searchFEN(t, e, position.InitialPositionFen, 4)
	e.Clear()
	var second = searchFEN(t, e, position.InitialPositionFen, 4)
	if len(first.MainLine) == 0 || len(second.MainLine) == 0 {
		t.Fatal("expected a main line both runs")
	}
	if first.MainLine[0] != second.MainLine[0] {
		t.Fatalf("expected a single-threaded search to be deterministic, got %v then %v",
			first.MainLine[0], second.MainLine[0])
	}
}
