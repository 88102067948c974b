package engine

import (
	"testing"

	"github.com/kagechess/kage/position"
)

// legalMove finds the legal move from pos whose LAN string matches lan,
// failing the test if it isn't present.
func legalMove(t *testing.T, pos *position.Position, lan string) position.Move {
	t.Helper()
	for _, m := range position.GenerateLegalMoves(pos) {
		if m.String() == lan {
			return m
		}
	}
	t.Fatalf("expected %q among the legal moves, got none", lan)
	return position.MoveEmpty
}

// sanMoveForOpponent resolves a SAN string for the side NOT on move in pos,
// by generating legal moves from a scratch copy with the turn flipped. Move
// encoding only depends on the actual piece bitboards, not whose turn it
// is, so the returned Move is valid against pos.
func sanMoveForOpponent(t *testing.T, pos position.Position, san string) position.Move {
	t.Helper()
	pos.WhiteMove = !pos.WhiteMove
	var m = position.ParseMoveSAN(&pos, san)
	if m == position.MoveEmpty {
		t.Fatalf("expected %q to resolve to a legal move", san)
	}
	return m
}

func TestConnectedMovesVacatedSquare(t *testing.T) {
	// White's rook retreats from a4 to a1; Black's queen slides into the
	// square it just vacated.
	p, err := position.NewPositionFromFEN("4k3/3q4/8/8/R7/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var m1 = legalMove(t, &p, "a4a1")
	next, ok := p.MakeMoveLAN("a4a1")
	if !ok {
		t.Fatal("expected a4a1 to be a legal move")
	}
	var m2 = legalMove(t, &next, "d7a4")
	if !connectedMoves(&next, m1, m2) {
		t.Fatal("expected the queen's move into the vacated square to be connected")
	}
}

func TestConnectedMovesSlidingThroughVacatedSquare(t *testing.T) {
	// White's rook sidesteps off the a-file; Black's queen now slides
	// clean through the square it used to block.
	p, err := position.NewPositionFromFEN("q6k/8/8/8/R7/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var m1 = legalMove(t, &p, "a4b4")
	next, ok := p.MakeMoveLAN("a4b4")
	if !ok {
		t.Fatal("expected a4b4 to be a legal move")
	}
	var m2 = legalMove(t, &next, "a8a1")
	if !connectedMoves(&next, m1, m2) {
		t.Fatal("expected the queen's move down the now-open file to be connected")
	}
}

func TestConnectedMovesDefendsDestination(t *testing.T) {
	// White's bishop relocates to a square that newly covers g5; Black's
	// queen moves into that covered square.
	p, err := position.NewPositionFromFEN("3qk3/8/8/8/8/8/8/2B1K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var m1 = legalMove(t, &p, "c1e3")
	next, ok := p.MakeMoveLAN("c1e3")
	if !ok {
		t.Fatal("expected c1e3 to be a legal move")
	}
	var m2 = legalMove(t, &next, "d8g5")
	if !connectedMoves(&next, m1, m2) {
		t.Fatal("expected the queen's move onto the newly covered square to be connected")
	}
}

func TestConnectedMovesUnrelatedIsFalse(t *testing.T) {
	p, err := position.NewPositionFromFEN("4k3/3q4/8/8/R7/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var m1 = legalMove(t, &p, "a4a1")
	next, ok := p.MakeMoveLAN("a4a1")
	if !ok {
		t.Fatal("expected a4a1 to be a legal move")
	}
	var m2 = legalMove(t, &next, "e8f8")
	if connectedMoves(&next, m1, m2) {
		t.Fatal("expected an unrelated king shuffle not to be connected")
	}
}

func TestConnectedThreatMovesThreatenedPieceAway(t *testing.T) {
	p, err := position.NewPositionFromFEN("7k/8/8/4n3/8/8/4R3/4K3 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var threat = sanMoveForOpponent(t, p, "Rxe5")
	var m = legalMove(t, &p, "e5c6")
	if !connectedThreat(&p, m, threat) {
		t.Fatal("expected moving the threatened knight away to be connected to the threat")
	}
}

func TestConnectedThreatLandsOnThreatenedSquare(t *testing.T) {
	p, err := position.NewPositionFromFEN("7k/1b6/8/8/8/2N5/8/4K3 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var threat = sanMoveForOpponent(t, p, "Nd5")
	var m = legalMove(t, &p, "b7d5")
	if !connectedThreat(&p, m, threat) {
		t.Fatal("expected contesting the threatened square to be connected to the threat")
	}
}

func TestConnectedThreatBadBlockIsFalse(t *testing.T) {
	// Black's bishop could interpose on a4, directly on the rook's open
	// file, but the rook simply takes it there for nothing: not a sound
	// block, so it shouldn't be treated as connected to the threat.
	p, err := position.NewPositionFromFEN("7k/3b4/8/8/8/8/8/R3K3 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var threat = sanMoveForOpponent(t, p, "Ra8")
	var m = legalMove(t, &p, "d7a4")
	if connectedThreat(&p, m, threat) {
		t.Fatal("expected a block that just hangs the piece for free not to be connected")
	}
}

func TestConnectedThreatUnrelatedIsFalse(t *testing.T) {
	p, err := position.NewPositionFromFEN("7k/8/8/4n3/8/8/4R3/4K3 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var threat = sanMoveForOpponent(t, p, "Rxe5")
	var m = legalMove(t, &p, "h8g8")
	if connectedThreat(&p, m, threat) {
		t.Fatal("expected an unrelated king move not to be connected to the threat")
	}
}
