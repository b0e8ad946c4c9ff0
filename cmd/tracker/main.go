package main

import (
	"flag"
	"fmt"
	"net/http"

	"github.com/jaywantadh/chunkrelay/config"
	"github.com/jaywantadh/chunkrelay/internal/tracker"
	"github.com/jaywantadh/chunkrelay/pkg/env"
	"github.com/jaywantadh/chunkrelay/pkg/logging"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	configDir := flag.String("config", "./config", "directory containing tracker.yaml")
	flag.Parse()

	env.LoadEnv()
	logging.InitLogger(*debug)
	log := logging.Log

	cfg, err := config.LoadTrackerConfig(*configDir, log, nil)
	if err != nil {
		log.WithError(err).Fatal("tracker: failed to load config")
	}

	persister := tracker.NewPersister(cfg.DBPath)
	registry, err := tracker.NewRegistry(persister)
	if err != nil {
		log.WithError(err).Fatal("tracker: failed to load registry")
	}

	mux := tracker.NewServer(registry, log)

	log.WithField("addr", cfg.Addr).Info("tracker: listening")
	fmt.Printf("tracker listening on %s\n", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		log.WithError(err).Fatal("tracker: server stopped")
	}
}
