package searchlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kagechess/kage/engine"
	"github.com/kagechess/kage/position"
)

func TestOpenWithEmptyFilenameIsANoOp(t *testing.T) {
	w, err := Open("")
	if err != nil {
		t.Fatal(err)
	}
	p, _ := position.NewPositionFromFEN(position.InitialPositionFen)
	w.Begin(&p, engine.LimitsType{})
	w.Iteration(engine.SearchInfo{Depth: 1})
	w.End(engine.SearchInfo{})
	if err := w.Close(); err != nil {
		t.Fatalf("expected Close on a disabled writer to be a no-op, got %v", err)
	}
}

func TestWriteBlockRoundTrips(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "search.log")
	w, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	p, err := position.NewPositionFromFEN(position.InitialPositionFen)
	if err != nil {
		t.Fatal(err)
	}

	w.Begin(&p, engine.LimitsType{Depth: 10})
	w.Iteration(engine.SearchInfo{
		Depth:    5,
		MainLine: nil,
		Score:    engine.UciScore{Centipawns: 24},
		Nodes:    12345,
		Time:     100 * time.Millisecond,
	})
	w.End(engine.SearchInfo{
		MainLine: nil,
		Nodes:    50000,
		Time:     500 * time.Millisecond,
	})
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var contents = string(data)
	if !strings.Contains(contents, position.InitialPositionFen) {
		t.Error("expected the log to contain the starting FEN")
	}
	if !strings.Contains(contents, "depth  5") {
		t.Errorf("expected an iteration line for depth 5, got:\n%s", contents)
	}
	if !strings.Contains(contents, "best (none)") {
		t.Errorf("expected a best-move summary line with no move found, got:\n%s", contents)
	}
}

func TestAppendsAcrossMultipleSearches(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "search.log")
	p, _ := position.NewPositionFromFEN(position.InitialPositionFen)

	for i := 0; i < 2; i++ {
		w, err := Open(path)
		if err != nil {
			t.Fatal(err)
		}
		w.Begin(&p, engine.LimitsType{})
		w.End(engine.SearchInfo{})
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), "--- search"); got != 2 {
		t.Fatalf("expected 2 appended blocks, found %d", got)
	}
}
