package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/nutricalc/nutricalc-backend/auth"
	"github.com/nutricalc/nutricalc-backend/config"
	"github.com/nutricalc/nutricalc-backend/controllers"
	"github.com/nutricalc/nutricalc-backend/jobs"
	"github.com/nutricalc/nutricalc-backend/logger"
	"github.com/nutricalc/nutricalc-backend/nutrition"
	"github.com/nutricalc/nutricalc-backend/routes"
	"github.com/nutricalc/nutricalc-backend/store"
	"github.com/nutricalc/nutricalc-backend/store/postgres"
)

func main() {
	// Initialize Structured Logger
	logger.Init()

	// Load .env
	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, using system env vars")
	}

	cfg := config.Load()

	credentials, err := auth.LoadCredentials(cfg.CredentialsFile)
	if err != nil {
		logger.Error("Failed to load credentials", "error", err)
		os.Exit(1)
	}
	gate, err := auth.NewGate(credentials, cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Error("Failed to initialize auth gate", "error", err)
		os.Exit(1)
	}

	st, catalog, err := openStore(cfg)
	if err != nil {
		logger.Error("Failed to initialize storage", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	lookup := nutrition.NewClient(cfg.LLM)

	// Start background catalog verification worker
	worker := jobs.NewVerifyWorker(catalog, lookup)
	worker.Start()
	defer worker.Stop()

	api := &controllers.API{
		Store:   st,
		Catalog: catalog,
		Lookup:  lookup,
		Worker:  worker,
		Gate:    gate,
	}

	r := routes.SetupRouter(cfg, api)

	logger.Info("Server starting", "port", cfg.Port, "storage", cfg.StorageDriver)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Error("Server failed to start", "error", err)
		os.Exit(1)
	}
}

// openStore picks the storage driver. The file and memory drivers double as
// the catalog; Postgres implements both on the same connection.
func openStore(cfg config.Config) (store.Store, store.Catalog, error) {
	switch cfg.StorageDriver {
	case "postgres":
		s, err := postgres.Open(cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case "file":
		s, err := store.NewFile(cfg.StateDir)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		s := store.NewMemory()
		return s, s, nil
	}
}
