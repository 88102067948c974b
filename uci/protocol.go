// Package uci is a thin, line-oriented protocol front-end. It reaches the
// search core only through the Searcher interface below; it never imports
// ttable, ordering or any other engine-internal package.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kagechess/kage/engine"
	"github.com/kagechess/kage/position"
	"github.com/kagechess/kage/searchlog"
)

// Searcher is the entire surface the protocol needs from the engine.
type Searcher interface {
	Prepare()
	NewGame()
	Search(ctx context.Context, params engine.SearchParams) engine.SearchInfo
}

// Protocol drives one UCI session: it reads command lines, dispatches
// them, and prints the required response lines to out.
type Protocol struct {
	name    string
	author  string
	version string

	engine  Searcher
	options []Option

	positions []position.Position
	thinking  bool
	cancel    context.CancelFunc

	out          io.Writer
	engineOutput chan engine.SearchInfo

	log *searchlog.Writer

	lastSearchResult engine.SearchInfo
}

// Config bundles the UCI-visible options whose storage the caller (cmd/kage)
// owns, since they also feed engine.Engine fields directly.
type Config struct {
	Hash       *int
	Threads    *int
	SkillLevel *int
	MultiPV    *int

	OwnBook      *bool
	BookFile     *string
	BestBookMove *bool

	UseSearchLog      *bool
	SearchLogFilename *string
}

func New(name, author, version string, eng Searcher, cfg Config, out io.Writer) *Protocol {
	p, err := position.NewPositionFromFEN(position.InitialPositionFen)
	if err != nil {
		panic(err)
	}
	var proto = &Protocol{
		name:      name,
		author:    author,
		version:   version,
		engine:    eng,
		positions: []position.Position{p},
		out:       out,
	}
	proto.options = []Option{
		&IntOption{Name: "Hash", Min: 1, Max: 65536, Value: cfg.Hash},
		&IntOption{Name: "Threads", Min: 1, Max: 256, Value: cfg.Threads},
		&IntOption{Name: "Skill Level", Min: 0, Max: 20, Value: cfg.SkillLevel},
		&IntOption{Name: "MultiPV", Min: 1, Max: 32, Value: cfg.MultiPV},
		&ButtonOption{Name: "Clear Hash", Action: func() { eng.NewGame() }},
		&BoolOption{Name: "OwnBook", Value: cfg.OwnBook},
		&StringOption{Name: "Book File", Value: cfg.BookFile},
		&BoolOption{Name: "Best Book Move", Value: cfg.BestBookMove},
		&BoolOption{Name: "Use Search Log", Value: cfg.UseSearchLog},
		&StringOption{Name: "Search Log Filename", Value: cfg.SearchLogFilename},
	}
	return proto
}

// Run reads commands from in and writes responses to Protocol.out until
// "quit" or EOF. The reader and the dispatch loop run concurrently through
// an errgroup so a closed input stream and an in-flight "stop" both settle
// the session the same way.
func (u *Protocol) Run(ctx context.Context, in io.Reader) error {
	var commands = make(chan string)
	var g, gctx = errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(commands)
		var scanner = bufio.NewScanner(in)
		for scanner.Scan() {
			var line = scanner.Text()
			if line == "quit" {
				return nil
			}
			if line == "" {
				continue
			}
			select {
			case commands <- line:
			case <-gctx.Done():
				return nil
			}
		}
		return scanner.Err()
	})

	g.Go(func() error {
		return u.dispatchLoop(gctx, commands)
	})

	return g.Wait()
}

func (u *Protocol) dispatchLoop(ctx context.Context, commands <-chan string) error {
	for {
		select {
		case si, ok := <-u.engineOutput:
			if ok {
				fmt.Fprintln(u.out, searchInfoToUci(si))
				if u.log != nil {
					u.log.Iteration(si)
				}
			} else {
				u.finishSearch()
			}
		case line, ok := <-commands:
			if !ok {
				return nil
			}
			if err := u.handle(ctx, line); err != nil {
				fmt.Fprintf(u.out, "info string error: %v\n", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func (u *Protocol) finishSearch() {
	if len(u.lastSearchResult.MainLine) != 0 {
		fmt.Fprintf(u.out, "bestmove %v\n", u.lastSearchResult.MainLine[0])
	} else {
		fmt.Fprintln(u.out, "bestmove 0000")
	}
	if u.log != nil {
		u.log.End(u.lastSearchResult)
		u.log.Close()
		u.log = nil
	}
	u.thinking = false
	u.cancel = nil
	u.engineOutput = nil
	u.lastSearchResult = engine.SearchInfo{}
}

func (u *Protocol) handle(ctx context.Context, commandLine string) error {
	var fields = strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil
	}
	var name = fields[0]
	fields = fields[1:]

	if u.thinking {
		if name == "stop" {
			u.cancel()
			return nil
		}
		return errors.New("search still running")
	}

	switch name {
	case "uci":
		return u.uciCommand()
	case "setoption":
		return u.setOptionCommand(fields)
	case "isready":
		return u.isReadyCommand()
	case "position":
		return u.positionCommand(fields)
	case "go":
		return u.goCommand(ctx, fields)
	case "ucinewgame":
		u.engine.NewGame()
		return nil
	case "ponderhit":
		return errors.New("ponder not implemented")
	}
	return fmt.Errorf("unknown command %q", name)
}

func (u *Protocol) uciCommand() error {
	fmt.Fprintf(u.out, "id name %s %s\n", u.name, u.version)
	fmt.Fprintf(u.out, "id author %s\n", u.author)
	for _, opt := range u.options {
		fmt.Fprintln(u.out, opt.UciString())
	}
	fmt.Fprintln(u.out, "uciok")
	return nil
}

func (u *Protocol) setOptionCommand(fields []string) error {
	var nameIdx = indexOf(fields, "name")
	var valueIdx = indexOf(fields, "value")
	if nameIdx == -1 {
		return errors.New("setoption missing name")
	}
	var nameEnd = len(fields)
	if valueIdx != -1 {
		nameEnd = valueIdx
	}
	var optName = strings.Join(fields[nameIdx+1:nameEnd], " ")
	var value = ""
	if valueIdx != -1 {
		value = strings.Join(fields[valueIdx+1:], " ")
	}
	for _, opt := range u.options {
		if strings.EqualFold(opt.UciName(), optName) {
			return opt.Set(value)
		}
	}
	return fmt.Errorf("unhandled option %q", optName)
}

func (u *Protocol) isReadyCommand() error {
	u.engine.Prepare()
	fmt.Fprintln(u.out, "readyok")
	return nil
}

func (u *Protocol) positionCommand(fields []string) error {
	if len(fields) == 0 {
		return errors.New("position: missing arguments")
	}
	var fen string
	var movesIndex = indexOf(fields, "moves")
	switch fields[0] {
	case "startpos":
		fen = position.InitialPositionFen
	case "fen":
		if movesIndex == -1 {
			fen = strings.Join(fields[1:], " ")
		} else {
			fen = strings.Join(fields[1:movesIndex], " ")
		}
	default:
		return errors.New("position: expected startpos or fen")
	}
	p, err := position.NewPositionFromFEN(fen)
	if err != nil {
		return err
	}
	var positions = []position.Position{p}
	if movesIndex >= 0 {
		for _, lan := range fields[movesIndex+1:] {
			next, ok := positions[len(positions)-1].MakeMoveLAN(lan)
			if !ok {
				return fmt.Errorf("position: illegal move %q", lan)
			}
			positions = append(positions, next)
		}
	}
	u.positions = positions
	return nil
}

func (u *Protocol) goCommand(parent context.Context, fields []string) error {
	var limits = parseLimits(fields)
	var ctx, cancel = context.WithCancel(parent)
	u.cancel = cancel
	u.thinking = true
	u.engineOutput = make(chan engine.SearchInfo, 3)

	u.log = nil
	if u.boolOption("Use Search Log") {
		if filename := u.stringOption("Search Log Filename"); filename != "" {
			if w, err := searchlog.Open(filename); err == nil {
				u.log = w
				u.log.Begin(&u.positions[len(u.positions)-1], limits)
			}
		}
	}

	var positions = append([]position.Position(nil), u.positions...)
	go func() {
		var result = u.engine.Search(ctx, engine.SearchParams{
			Positions: positions,
			Limits:    limits,
			Progress: func(si engine.SearchInfo) {
				select {
				case u.engineOutput <- si:
				default:
				}
			},
		})
		u.lastSearchResult = result
		u.engineOutput <- result
		close(u.engineOutput)
	}()
	return nil
}

func (u *Protocol) boolOption(name string) bool {
	for _, opt := range u.options {
		if b, ok := opt.(*BoolOption); ok && strings.EqualFold(b.Name, name) {
			return *b.Value
		}
	}
	return false
}

func (u *Protocol) stringOption(name string) string {
	for _, opt := range u.options {
		if s, ok := opt.(*StringOption); ok && strings.EqualFold(s.Name, name) {
			return *s.Value
		}
	}
	return ""
}

func searchInfoToUci(si engine.SearchInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "info depth %v", si.Depth)
	if si.Score.IsMate {
		fmt.Fprintf(&sb, " score mate %v", si.Score.Mate)
	} else {
		fmt.Fprintf(&sb, " score cp %v", si.Score.Centipawns)
	}
	fmt.Fprintf(&sb, " nodes %v time %v nps %v hashfull %v",
		si.Nodes, si.Time.Milliseconds(), nps(si.Nodes, si.Time), si.HashFull)
	if len(si.MainLine) != 0 {
		sb.WriteString(" pv")
		for _, m := range si.MainLine {
			sb.WriteString(" ")
			sb.WriteString(m.String())
		}
	}
	return sb.String()
}

func nps(nodes int64, elapsed time.Duration) int64 {
	var ms = elapsed.Milliseconds()
	if ms <= 0 {
		ms = 1
	}
	return nodes * 1000 / ms
}

func parseLimits(fields []string) (result engine.LimitsType) {
	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "wtime":
			result.WhiteTime, _ = atoiAt(fields, &i)
		case "btime":
			result.BlackTime, _ = atoiAt(fields, &i)
		case "winc":
			result.WhiteIncrement, _ = atoiAt(fields, &i)
		case "binc":
			result.BlackIncrement, _ = atoiAt(fields, &i)
		case "movestogo":
			result.MovesToGo, _ = atoiAt(fields, &i)
		case "depth":
			result.Depth, _ = atoiAt(fields, &i)
		case "nodes":
			result.Nodes, _ = atoiAt(fields, &i)
		case "movetime":
			result.MoveTime, _ = atoiAt(fields, &i)
		case "infinite":
			result.Infinite = true
		}
	}
	return
}

func atoiAt(fields []string, i *int) (int, error) {
	if *i+1 >= len(fields) {
		return 0, errors.New("missing limit value")
	}
	*i++
	return strconv.Atoi(fields[*i])
}

func indexOf(fields []string, value string) int {
	for i, f := range fields {
		if f == value {
			return i
		}
	}
	return -1
}
