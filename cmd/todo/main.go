package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/idilsaglam/todo/internal/cli"
	"github.com/idilsaglam/todo/internal/config"
	"github.com/idilsaglam/todo/internal/log"
	"github.com/idilsaglam/todo/internal/store"
	"github.com/idilsaglam/todo/internal/ui"
)

func main() {
	code := run()
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}

func run() int {
	flag.CommandLine.Usage = cli.PrintHelp
	cfg, args, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		ui.Fail("config: " + err.Error())
		return 2
	}

	ui.SetTheme(cfg.UI.Theme)
	if cfg.UI.NoColor {
		ui.SetColorForcing(false, true)
	}

	if err := log.Init(log.Options{
		Level:       cfg.Log.Level,
		File:        cfg.Log.File,
		Development: cfg.IsDevelopment(),
	}); err != nil {
		ui.Fail("log: " + err.Error())
		return 1
	}
	defer log.Close()

	s, supported, err := store.Open(cfg.Storage)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.Storage.Path).Msg("failed to open store")
		ui.Fail("open store: " + err.Error())
		return 1
	}
	defer s.Close()

	if err := s.EnsureSchema(); err != nil {
		log.Error().Err(err).Msg("failed to create schema")
		ui.Fail("schema: " + err.Error())
		return 1
	}

	return cli.Run(args, cli.Options{
		Store:     s,
		Supported: supported,
		Group:     cfg.UI.Group,
	})
}
