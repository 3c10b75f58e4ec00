package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"cryptohub/internal/app"
	"cryptohub/internal/config"
	"cryptohub/internal/tui"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json or config.yaml (optional)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// The terminal belongs to the UI; logs go to a file or nowhere.
	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "cryptohub")
		if err != nil {
			log.Fatalf("log file: %v", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	p, err := app.NewProvider(cfg)
	if err != nil {
		log.Fatalf("provider: %v", err)
	}
	ctrl := app.NewController(cfg, p)
	asst := app.NewAssistant(cfg.Assistant)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := tui.New(ctrl, asst, tui.Options{Context: ctx})
	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = prog.Run()
	ctrl.Teardown()
	if err != nil && ctx.Err() == nil {
		log.Printf("dashboard: %v", err)
		fmt.Fprintf(os.Stderr, "dashboard: %v\n", err)
		os.Exit(1)
	}
}
