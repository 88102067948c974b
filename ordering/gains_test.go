package ordering

import (
	"testing"

	"github.com/kagechess/kage/position"
)

func TestGainsUpdateTracksPositiveSwingForMover(t *testing.T) {
	var g GainsTable
	var moves = rootMoves(t)
	var m = moves[0]

	if got := g.Read(true, m); got != 0 {
		t.Fatalf("expected zero before any observation, got %d", got)
	}
	g.Update(true, m, 0, 80)
	if got := g.Read(true, m); got <= 0 {
		t.Fatalf("expected a positive running gain after a +80 swing for the side to move, got %d", got)
	}
}

func TestGainsUpdateNegatesSwingForBlack(t *testing.T) {
	var g GainsTable
	var moves = rootMoves(t)
	var m = moves[0]

	// evalBefore/evalAfter are always from White's perspective; Black
	// improving its own position shows up as evalAfter < evalBefore.
	g.Update(false, m, 0, -80)
	if got := g.Read(false, m); got <= 0 {
		t.Fatalf("expected Black's gain to be reported as positive from Black's own perspective, got %d", got)
	}
}

func TestGainsIgnoresEmptyAndNullMove(t *testing.T) {
	var g GainsTable
	g.Update(true, position.MoveEmpty, 0, 100)
	g.Update(true, position.NullMove, 0, 100)
	if got := g.Read(true, position.MoveEmpty); got != 0 {
		t.Fatalf("expected MoveEmpty to never accumulate, got %d", got)
	}
}

func TestGainsClearResetsAllEntries(t *testing.T) {
	var g GainsTable
	var moves = rootMoves(t)
	for _, m := range moves {
		g.Update(true, m, 0, 50)
	}
	g.Clear()
	for _, m := range moves {
		if got := g.Read(true, m); got != 0 {
			t.Fatalf("expected zero after Clear, got %d for move %v", got, m)
		}
	}
}
