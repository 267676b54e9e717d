package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"
	"github.com/simaogato/wealthflow-returns/internal/cli"
	"github.com/simaogato/wealthflow-returns/internal/config"
	"github.com/simaogato/wealthflow-returns/pkg/logger"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(int(subcommands.ExitFailure))
	}

	// 2. Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})

	// 3. Register commands
	app := &cli.App{Config: cfg, Log: log, Out: os.Stdout}
	flag.BoolVar(&app.Render, "render", false, "Render markdown reports for the terminal")
	flag.StringVar(&app.DataDir, "data", "", "Data directory (overrides RETURNS_DATA_DIR)")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cli.Register(commander, app)

	flag.Parse()

	// 4. Run until done or interrupted
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}
