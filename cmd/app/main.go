package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"invoice-manager/internal/adapters/cli"
	"invoice-manager/internal/adapters/repl"
	"invoice-manager/internal/app"
	"invoice-manager/internal/core"
	"invoice-manager/internal/db"
	"invoice-manager/internal/logger"
)

func main() {
	_ = godotenv.Load()
	logger.Setup()
	log := logger.WithComponent("main")

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to connect to database")
	}
	defer pool.Close()

	refs := core.NewReferenceGenerator(pool)
	history := core.NewHistoryRecorder()
	docs := core.NewDocumentService(pool, refs, history)
	states := core.NewStateMachine(pool, history)
	conversion := core.NewConversionEngine(pool, refs, docs, history)
	svc := app.NewAppService(docs, states, conversion, logger.WithComponent("app"))

	// No arguments starts the interactive shell; anything else is a
	// one-shot CLI command.
	if len(os.Args) == 1 {
		repl.Run(ctx, svc, bufio.NewReader(os.Stdin))
		return
	}

	root := cli.NewRootCmd(svc)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
