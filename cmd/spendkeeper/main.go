package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/dmitrijs2005/spendkeeper/internal/backup"
	"github.com/dmitrijs2005/spendkeeper/internal/cli"
	"github.com/dmitrijs2005/spendkeeper/internal/config"
	"github.com/dmitrijs2005/spendkeeper/internal/filex"
	"github.com/dmitrijs2005/spendkeeper/internal/flagx"
	"github.com/dmitrijs2005/spendkeeper/internal/logging"
	"github.com/dmitrijs2005/spendkeeper/internal/registry"
	"github.com/dmitrijs2005/spendkeeper/internal/tracker"
	"github.com/google/subcommands"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig(os.Args[1:])

	logger, closer, err := logging.NewFileLogger(cfg.LogFile, logging.ParseLevel(cfg.LogLevel))
	if err != nil {
		log.Printf("%v", err)
		return 1
	}
	defer closer.Close()

	store := filex.NewStore(logger)
	reg, err := registry.Open(ctx, store, cfg.DataDir, logger)
	if err != nil {
		log.Printf("%v", err)
		return 1
	}

	svc := backup.NewService(backup.Settings{
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
	}, reg, logger)

	app := cli.NewApp(cfg, tracker.New(store, reg, logger), svc, logger, os.Stdin, os.Stdout)

	fs := flag.NewFlagSet(path.Base(os.Args[0]), flag.ExitOnError)
	commander := subcommands.NewCommander(fs, fs.Name())
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range cli.Commands(app) {
		commander.Register(c, "")
	}

	args := flagx.StripArgs(os.Args[1:], config.Flags)
	if len(args) == 0 {
		args = []string{"shell"}
	}
	if err := fs.Parse(args); err != nil {
		log.Printf("%v", err)
		return int(subcommands.ExitUsageError)
	}

	return int(commander.Execute(ctx))
}
