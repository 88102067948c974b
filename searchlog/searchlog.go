// Package searchlog writes the append-only textual search log spec.md §6
// calls for: one block per search with the starting FEN, the limits that
// governed it, and a line per completed iteration, closed off with the
// final node count, NPS and best/ponder move.
package searchlog

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kagechess/kage/engine"
	"github.com/kagechess/kage/position"
)

// Writer appends one block to a log file per Begin/End pair. It is not
// safe for concurrent use by more than one search at a time, matching the
// engine's own one-search-at-a-time contract.
type Writer struct {
	path string
	file *os.File
	w    *bufio.Writer

	startedAt time.Time
	fen       string
}

// Open creates (or appends to) the log file named by filename. A zero
// Writer with no file is returned when filename is empty, in which case
// every method is a safe no-op — callers do not need to branch on whether
// logging is enabled.
func Open(filename string) (*Writer, error) {
	if filename == "" {
		return &Writer{}, nil
	}
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("searchlog: open %v: %w", filename, err)
	}
	return &Writer{path: filename, file: f, w: bufio.NewWriter(f)}, nil
}

func (w *Writer) enabled() bool { return w.file != nil }

// Begin opens a new block for a search starting from pos under limits.
func (w *Writer) Begin(pos *position.Position, limits engine.LimitsType) {
	if !w.enabled() {
		return
	}
	w.startedAt = time.Now()
	w.fen = pos.String()
	fmt.Fprintf(w.w, "--- search %s\n", w.startedAt.Format(time.RFC3339))
	fmt.Fprintf(w.w, "fen %s\n", w.fen)
	fmt.Fprintf(w.w, "limits %s\n", formatLimits(limits))
	w.w.Flush()
}

// Iteration appends one completed depth's line: depth, score, nodes and PV.
func (w *Writer) Iteration(si engine.SearchInfo) {
	if !w.enabled() {
		return
	}
	var nps = nps(si.Nodes, si.Time)
	fmt.Fprintf(w.w, "depth %2d score %-10s nodes %10d nps %9d pv %s\n",
		si.Depth, formatScore(si.Score), si.Nodes, nps, formatPV(si.MainLine))
	w.w.Flush()
}

// End closes the block with the search's final outcome.
func (w *Writer) End(si engine.SearchInfo) {
	if !w.enabled() {
		return
	}
	var best, ponder = "(none)", "(none)"
	if len(si.MainLine) > 0 {
		best = si.MainLine[0].String()
	}
	if len(si.MainLine) > 1 {
		ponder = si.MainLine[1].String()
	}
	fmt.Fprintf(w.w, "best %s ponder %s nodes %d time %v nps %d\n\n",
		best, ponder, si.Nodes, si.Time, nps(si.Nodes, si.Time))
	w.w.Flush()
}

// Close flushes and closes the underlying file, if any.
func (w *Writer) Close() error {
	if !w.enabled() {
		return nil
	}
	if err := w.w.Flush(); err != nil {
		return err
	}
	return w.file.Close()
}

func nps(nodes int64, elapsed time.Duration) int64 {
	var ms = elapsed.Milliseconds()
	if ms <= 0 {
		ms = 1
	}
	return nodes * 1000 / ms
}

func formatScore(s engine.UciScore) string {
	if s.IsMate {
		return fmt.Sprintf("mate %d", s.Mate)
	}
	return fmt.Sprintf("cp %d", s.Centipawns)
}

func formatPV(moves []position.Move) string {
	var parts = make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}

func formatLimits(l engine.LimitsType) string {
	var parts []string
	if l.Infinite {
		parts = append(parts, "infinite")
	}
	if l.Depth > 0 {
		parts = append(parts, fmt.Sprintf("depth=%d", l.Depth))
	}
	if l.Nodes > 0 {
		parts = append(parts, fmt.Sprintf("nodes=%d", l.Nodes))
	}
	if l.MoveTime > 0 {
		parts = append(parts, fmt.Sprintf("movetime=%d", l.MoveTime))
	}
	if l.WhiteTime > 0 || l.BlackTime > 0 {
		parts = append(parts, fmt.Sprintf("wtime=%d btime=%d winc=%d binc=%d movestogo=%d",
			l.WhiteTime, l.BlackTime, l.WhiteIncrement, l.BlackIncrement, l.MovesToGo))
	}
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, " ")
}
