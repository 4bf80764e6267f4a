package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"

	"github.com/HacktheHill/reimbursement-form-automation/pkg/config"
	"github.com/HacktheHill/reimbursement-form-automation/pkg/db"
	"github.com/HacktheHill/reimbursement-form-automation/pkg/discord"
	"github.com/HacktheHill/reimbursement-form-automation/services/approval/internal/signatures"

	"github.com/go-chi/chi/v5"
)

func main() {
	configPath := flag.String("config", envOr("CONFIG_PATH", "config.yaml"), "path to config file")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}
	if cfg.SecretKey == "" {
		log.Error("SECRET_KEY is required")
		os.Exit(1)
	}
	allowed := cfg.AllowedSigners()
	if len(allowed) == 0 {
		log.Error("AUTHORIZED_EMAILS is required")
		os.Exit(1)
	}

	var ledger signatures.Ledger
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Error("database connect failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		ledger = signatures.NewPGStore(pool)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory ledger (development only)")
		ledger = signatures.NewMemStore()
	}

	var notify signatures.Notifier
	if cfg.DiscordWebhookURL != "" {
		notify = discord.New(cfg.DiscordWebhookURL)
	} else {
		log.Warn("DISCORD_WEBHOOK_URL not set, notifications disabled")
	}

	h := signatures.NewHandler(cfg.SecretKey, allowed, ledger, notify, log)

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/", h.HandleApprove)
	r.Get("/approve", h.HandleApprove)
	r.Get("/bills/{billId}/signatures", h.HandleListSignatures)

	log.Info("approval service listening", "addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, r); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
