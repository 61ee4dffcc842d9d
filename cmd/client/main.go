package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophnotes/internal/client/cli"
	"github.com/dmitrijs2005/gophnotes/internal/client/client"
	"github.com/dmitrijs2005/gophnotes/internal/client/config"
	"github.com/dmitrijs2005/gophnotes/internal/client/session"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("%v", err)
	}
	logger := logging.NewTextLogger(os.Stderr, level)

	api, err := client.NewHTTPClient(cfg.ServerBaseURL, cfg.RequestTimeout)
	if err != nil {
		log.Fatalf("%v", err)
	}
	api.SetLogger(logger)

	var sess session.Store
	if cfg.Ephemeral {
		sess = session.NewMemoryStore()
	} else {
		db, err := session.OpenDatabase(ctx, cfg.SessionDBPath)
		if err != nil {
			log.Fatalf("error initializing session database: %v", err)
		}
		defer func(db *sql.DB) { _ = db.Close() }(db)
		sess = session.NewSQLiteStore(db)
	}

	app := cli.NewApp(cfg, api, sess, logger, os.Stdin, os.Stdout)
	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "client stopped", "error", err)
	}
}
