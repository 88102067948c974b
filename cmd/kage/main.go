package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/rs/zerolog"

	"github.com/kagechess/kage/engine"
	"github.com/kagechess/kage/eval"
	"github.com/kagechess/kage/uci"
)

const (
	name    = "Kage"
	author  = "Kage contributors"
	version = "1.0"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var eng = engine.NewEngine(engine.EvaluatorFunc(eval.Evaluate))

	var (
		hash         = eng.Hash
		threads      = eng.Threads
		skillLevel   = eng.Options.SkillLevel
		multiPV      = 1
		ownBook      = false
		bookFile     = ""
		bestBookMove = false
		useSearchLog = false
		logFilename  = "kage_search.log"
	)

	var cfg = uci.Config{
		Hash:              &hash,
		Threads:           &threads,
		SkillLevel:        &skillLevel,
		MultiPV:           &multiPV,
		OwnBook:           &ownBook,
		BookFile:          &bookFile,
		BestBookMove:      &bestBookMove,
		UseSearchLog:      &useSearchLog,
		SearchLogFilename: &logFilename,
	}

	var proto = uci.New(name, author, version, &boundEngine{eng, &hash, &threads, &skillLevel}, cfg, os.Stdout)

	var ctx, cancel = signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	return proto.Run(ctx, os.Stdin)
}

// boundEngine re-reads the UCI-owned option variables into the engine
// struct before every Prepare/Search call, since engine.Engine is a plain
// struct with exported fields rather than its own setter methods.
type boundEngine struct {
	*engine.Engine
	hash, threads, skillLevel *int
}

func (b *boundEngine) Prepare() {
	b.Engine.Hash = *b.hash
	b.Engine.Threads = *b.threads
	b.Engine.Options.SkillLevel = *b.skillLevel
	b.Engine.Prepare()
}

func (b *boundEngine) Search(ctx context.Context, params engine.SearchParams) engine.SearchInfo {
	b.Engine.Hash = *b.hash
	b.Engine.Threads = *b.threads
	b.Engine.Options.SkillLevel = *b.skillLevel
	return b.Engine.Search(ctx, params)
}
