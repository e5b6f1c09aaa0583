package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"intlist/client"
	"intlist/config"
	"intlist/demo"
	"intlist/server"
	"intlist/storage"
	"intlist/types"
)

func main() {
	configFilePathFlag := flag.String("config", "", "Path to config file, defaults are used when empty")
	modeFlag := flag.String("mode", "demo", "What to run: demo, server or client")
	loadFlag := flag.String("load", "", "File to load into the list before the demo starts")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFilePathFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cfg.Logger(*modeFlag)

	if err := run(cfg, *modeFlag, *loadFlag); err != nil {
		logger.Crit("Exiting", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, mode, load string) error {
	if mode == "demo" {
		// the console blocks on stdin, so interrupts keep their default behaviour
		return runDemo(context.Background(), cfg, load)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch mode {
	case "server":
		return runServer(ctx, cfg)
	case "client":
		clientsManager, err := client.NewClientsManager(cfg, os.Stdout)
		if err != nil {
			return err
		}
		return clientsManager.ListenClientActions(ctx)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

func runDemo(ctx context.Context, cfg *config.Config, load string) error {
	store, err := storage.Open(cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	actions, err := cfg.ActionLog()
	if err != nil {
		return err
	}

	list := types.New()
	defer list.Cleanup()

	if load != "" {
		if _, err := store.Load(ctx, load, list); err != nil {
			// the demo still starts with whatever the list holds
			actions.Error("Initial load failed", "name", load, "error", err)
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		}
	}

	var display demo.Display = demo.NopDisplay{}
	if fi, err := os.Stdout.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
		display = demo.NewTerminal()
	}

	console := demo.NewConsole(list, store, os.Stdin, os.Stdout, display, actions.New("session", uuid.NewString()))
	return console.Run(ctx)
}

func runServer(ctx context.Context, cfg *config.Config) error {
	store, err := storage.Open(cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	serverR, err := server.NewServer(cfg, store)
	if err != nil {
		return err
	}
	return serverR.StartServer(ctx)
}
