package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"cryptohub/internal/app"
	"cryptohub/internal/config"
	"cryptohub/internal/provider"
	"cryptohub/internal/viewmodel"
)

func main() {
	var limit int
	var search string
	var timeout int
	var configPath string

	flag.IntVar(&limit, "limit", 0, "number of assets to fetch (default from config)")
	flag.StringVar(&search, "search", "", "case-insensitive name or symbol filter")
	flag.IntVar(&timeout, "timeout", 0, "request timeout seconds (default from config)")
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json or config.yaml (optional)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if limit > 0 {
		cfg.CoinGecko.Limit = limit
	}
	if timeout > 0 {
		cfg.HTTP.RequestTimeoutSec = timeout
	}

	p, err := app.NewProvider(cfg)
	if err != nil {
		log.Fatalf("provider: %v", err)
	}
	ctrl := app.NewController(cfg, p)
	ctrl.SetSearchTerm(search)

	start := time.Now()
	<-ctrl.Initialize(context.Background())

	if failed, ok := ctrl.Status().(viewmodel.Failed); ok {
		log.Fatalf("%s: %s", p.Name(), failed.Message)
	}
	visible := ctrl.VisibleQuotes()
	log.Printf("%s: %d quotes, %d visible in %s", p.Name(), len(ctrl.Quotes()), len(visible), time.Since(start).Round(time.Millisecond))

	out := struct {
		Search string           `json:"search,omitempty"`
		Quotes []provider.Quote `json:"quotes"`
	}{Search: search, Quotes: visible}
	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}
