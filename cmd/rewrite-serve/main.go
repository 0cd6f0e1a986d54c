package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"grammar-ca/internal/config"
	"grammar-ca/internal/logging"
	"grammar-ca/internal/sims/rewrite"
	"grammar-ca/internal/stream"
)

//go:embed index.html
var indexHTML []byte

func main() {
	cfg := config.Default()
	cfg.Bind(flag.CommandLine)
	restart := flag.Duration("restart", 3*time.Second, "reseed this long after convergence (0 to stop)")
	flag.Parse()
	if err := cfg.Resolve(os.Getenv); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	sim, err := rewrite.New(cfg, logger)
	if err != nil {
		log.Fatalf("load: %v", err)
	}

	hub := stream.NewHub(logger)
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(indexHTML)
	})
	srv := &http.Server{Addr: cfg.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		seed := time.Now().UnixNano
		err := stream.Pump(ctx, sim, hub, stream.PumpConfig{TPS: cfg.TPS, Restart: *restart, Seed: seed})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Errorf("pump: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
		hub.Close()
	}()

	logger.Infof("serving %s on %s", cfg.Rules, cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
