package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/homemade/recruitbridge/internal/server"
	"github.com/homemade/recruitbridge/sync"
)

func main() {
	doc := flag.Bool("doc", false, "print the field mapping documentation as CSV and exit")
	flag.Parse()

	cfg, err := sync.LoadConfigFromEnvironment(sync.DefaultMappings)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if *doc {
		csv, err := sync.GenerateFieldDocumentation(cfg).FormatCSV()
		if err != nil {
			log.Fatalf("failed to generate field documentation: %v", err)
		}
		fmt.Fprint(os.Stdout, csv)
		return
	}

	if cfg.API.Token == "" {
		log.Printf("Warning: RECRUITCRM_API_TOKEN is not set, submissions will be skipped")
	}
	if cfg.Server.AdminToken == "" {
		log.Printf("Warning: RECRUITBRIDGE_ADMIN_TOKEN is not set, debug log routes are disabled")
	}

	store, err := sync.NewLogStore(cfg.Log)
	if err != nil {
		log.Fatalf("failed to create %s log store: %v", cfg.Log.Store, err)
	}
	log.Printf("Debug log: %s store, %d entries", cfg.Log.Store, cfg.Log.MaxEntries)

	bridge := sync.NewBridge(cfg, store)
	r := server.New(server.NewHandler(bridge, store), cfg.Server.AdminToken)

	srv := server.NewHTTPServer(cfg.Server.Addr, r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.WriteTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Warning: shutdown: %v", err)
		}
	}()

	log.Printf("recruitbridge starting on %s", cfg.Server.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
	if err := sync.CloseLogStore(store); err != nil {
		log.Printf("Warning: failed to close %s log store: %v", cfg.Log.Store, err)
	}
	log.Printf("recruitbridge stopped")
}
