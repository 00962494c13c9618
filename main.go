package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/roughness.report/internal/api"
	"github.com/banshee-data/roughness.report/internal/config"
	"github.com/banshee-data/roughness.report/internal/db"
	"github.com/banshee-data/roughness.report/internal/httputil"
	"github.com/banshee-data/roughness.report/internal/oracle"
	"github.com/banshee-data/roughness.report/internal/version"
)

var (
	devMode    = flag.Bool("dev", false, "Run in dev mode (exposes admin debug routes)")
	listen     = flag.String("listen", "", "Listen address (overrides config)")
	dbPath     = flag.String("db", "", "Path to sqlite database (overrides config)")
	oracleURL  = flag.String("oracle", "", "Scoring service base URL (overrides config)")
	unitsFlag  = flag.String("units", "", "Output speed units: mph, mps, kmph (overrides config)")
	workers    = flag.Int("workers", 0, "Concurrent oracle calls per profile build (overrides config)")
	configPath = flag.String("config", "", "Path to JSON config file")
)

func main() {
	flag.Parse()
	log.Printf("roughness.report %s", version.String())

	cfg := config.Empty()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	// flags win over the config file
	listenAddr := cfg.GetListenAddr()
	if *listen != "" {
		listenAddr = *listen
	}
	databasePath := cfg.GetDBPath()
	if *dbPath != "" {
		databasePath = *dbPath
	}
	scoringURL := cfg.GetOracleURL()
	if *oracleURL != "" {
		scoringURL = *oracleURL
	}
	outputUnits := cfg.GetUnits()
	if *unitsFlag != "" {
		outputUnits = *unitsFlag
	}
	scoreWorkers := cfg.GetScoreWorkers()
	if *workers > 0 {
		scoreWorkers = *workers
	}

	database, err := db.NewDB(databasePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	scorer := oracle.NewClient(scoringURL, httputil.NewStandardClient(&http.Client{
		Timeout: cfg.GetOracleTimeout(),
	}))

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()

		// admin debugging routes are only mounted in dev mode
		if *devMode {
			database.AttachAdminRoutes(mux)
		}

		apiMux := api.NewServer(database, scorer, outputUnits, scoreWorkers).ServeMux()
		mux.Handle("/api/", http.StripPrefix("/api", apiMux))

		server := &http.Server{
			Addr:    listenAddr,
			Handler: api.LoggingMiddleware(mux),
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			log.Printf("listening on %s (oracle %s, %d workers)", listenAddr, scoringURL, scoreWorkers)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
