package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/simp-lee/logger"

	"github.com/simp-lee/admision/internal/config"
	"github.com/simp-lee/admision/internal/console"
	"github.com/simp-lee/admision/internal/gateway"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	baseURL := flag.String("url", "", "especialidades service base URL (overrides console.base_url)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}
	if *baseURL != "" {
		cfg.Console.BaseURL = *baseURL
	}

	if err := run(cfg); err != nil {
		log.Fatal("console error: ", err)
	}
}

func run(cfg *config.Config) error {
	// stdout belongs to the prompt.
	lg, err := config.SetupLogger(&cfg.Log, logger.WithConsoleWriter(os.Stderr))
	if err != nil {
		return err
	}
	defer lg.Close()

	gw, err := gateway.New(cfg.Console.BaseURL, cfg.Console.RequestTimeoutDuration(), gateway.WithLogger(lg.Logger))
	if err != nil {
		return err
	}

	vm, err := console.New(gw, console.Config{
		SearchDebounce: cfg.Console.SearchDebounceDuration(),
		PerPage:        cfg.Console.DefaultPerPage,
	}, lg.Logger)
	if err != nil {
		return err
	}
	defer vm.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	vm.Refresh(ctx)
	return console.RunREPL(ctx, vm, os.Stdin, os.Stdout)
}
