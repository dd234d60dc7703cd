package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TimurManjosov/gobucket/internal/api"
	"github.com/TimurManjosov/gobucket/internal/config"
	"github.com/TimurManjosov/gobucket/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	telemetry.Init()

	// initial definitions
	var payload []byte
	if cfg.DefinitionsFile != "" {
		payload, err = os.ReadFile(cfg.DefinitionsFile)
		if err != nil {
			log.Fatalf("load definitions: %v", err)
		}
	}
	srvAPI := api.NewServer(cfg.AdminAPIKey, cfg.RateLimitPerIP, payload)
	log.Printf("definitions loaded, etag=%s", srvAPI.ETag())

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srvAPI.Router(),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 0, // SSE connections stay open
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctxShut, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShut)
	log.Println("stopped")
}
