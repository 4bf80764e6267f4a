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
	"github.com/HacktheHill/reimbursement-form-automation/pkg/quickbooks"
	"github.com/HacktheHill/reimbursement-form-automation/services/submission/internal/bills"
	"github.com/HacktheHill/reimbursement-form-automation/services/submission/internal/forms"

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
	for name, v := range map[string]string{
		"SECRET_KEY":              cfg.SecretKey,
		"FORM_WEBHOOK_SECRET":     cfg.FormWebhookSecret,
		"APPROVAL_BASE_URL":       cfg.ApprovalBaseURL,
		"QUICKBOOKS_COMPANY_ID":   cfg.QuickBooks.CompanyID,
		"QUICKBOOKS_ACCESS_TOKEN": cfg.QuickBooks.AccessToken,
	} {
		if v == "" {
			log.Error("missing required configuration", "name", name)
			os.Exit(1)
		}
	}

	var notify *discord.Client
	if cfg.DiscordWebhookURL != "" {
		notify = discord.New(cfg.DiscordWebhookURL)
	} else {
		log.Warn("DISCORD_WEBHOOK_URL not set, notifications disabled")
	}

	qb := quickbooks.New(cfg.QuickBooks.BaseURL, cfg.QuickBooks.CompanyID, cfg.QuickBooks.AccessToken)
	var pipelineNotify bills.Notifier
	var operatorNotify forms.Notifier
	if notify != nil {
		pipelineNotify = notify
		operatorNotify = notify
	}
	pipeline := bills.NewPipeline(qb, bills.NewHTTPReceiptFetcher(), pipelineNotify,
		cfg.SecretKey, cfg.ApprovalBaseURL, cfg.QuickBooks.Currency, log)

	var events forms.EventStore
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Error("database connect failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		events = forms.NewPGEventStore(pool)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory event store (development only)")
		events = forms.NewMemEventStore()
	}

	h := forms.NewHandler(cfg.FormWebhookSecret, events, pipeline, operatorNotify, log)

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Post("/forms/submit", h.HandleSubmit)

	log.Info("submission service listening", "addr", cfg.ListenAddr)
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
