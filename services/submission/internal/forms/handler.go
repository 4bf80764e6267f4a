// Package forms receives form-submission events and hands validated
// submissions to the bill pipeline. Events are authenticated with an HMAC
// signature over the raw body and deduplicated by event id, so a retrying
// form backend cannot create the same bill twice.
package forms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/HacktheHill/reimbursement-form-automation/pkg/discord"
	"github.com/HacktheHill/reimbursement-form-automation/pkg/httpx"
	"github.com/HacktheHill/reimbursement-form-automation/services/submission/internal/bills"

	"github.com/shopspring/decimal"
)

const maxEventBodyBytes = 5 << 20 // 5MB

// Event is the submission-event contract with the form backend.
type Event struct {
	EventID       string `json:"event_id"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	Amount        string `json:"amount"`
	Description   string `json:"description"`
	AccountNumber string `json:"account_number"`
	Class         string `json:"class"`
	ReceiptURL    string `json:"receipt_url"`

	// TransactionDate is YYYY-MM-DD when the form collects it; bills fall
	// back to QuickBooks' default date when it is absent.
	TransactionDate string `json:"transaction_date,omitempty"`
}

// EventStore deduplicates events. MarkProcessed records the id and reports
// whether this call was the first to do so.
type EventStore interface {
	MarkProcessed(ctx context.Context, eventID string) (inserted bool, err error)
}

type BillCreator interface {
	CreateBill(ctx context.Context, sub bills.Submission) (bills.Result, error)
}

type Notifier interface {
	Post(ctx context.Context, m discord.Message) error
}

type Handler struct {
	secret   string
	events   EventStore
	pipeline BillCreator
	notify   Notifier
	log      *slog.Logger
}

func NewHandler(secret string, events EventStore, pipeline BillCreator, notify Notifier, log *slog.Logger) *Handler {
	return &Handler{secret: secret, events: events, pipeline: pipeline, notify: notify, log: log}
}

// HandleSubmit processes one form-submission event.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxEventBodyBytes)
	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httpx.WriteError(w, 413, "PAYLOAD_TOO_LARGE", "payload exceeds 5MB limit", nil)
			return
		}
		httpx.WriteError(w, 400, "BAD_BODY", err.Error(), nil)
		return
	}

	if !VerifySignature(h.secret, rawBody, r.Header.Get("X-Signature")) {
		httpx.WriteError(w, 401, "INVALID_SIGNATURE", "event signature missing or invalid", nil)
		return
	}

	var event Event
	if err := json.Unmarshal(rawBody, &event); err != nil {
		httpx.WriteError(w, 400, "BAD_JSON", err.Error(), nil)
		return
	}
	if details := validate(event); len(details) > 0 {
		httpx.WriteError(w, 400, "INVALID_EVENT", "event failed validation", details)
		return
	}

	inserted, err := h.events.MarkProcessed(r.Context(), event.EventID)
	if err != nil {
		httpx.WriteError(w, 500, "DB_ERROR", err.Error(), nil)
		return
	}
	if !inserted {
		h.log.Info("duplicate event ignored", "event_id", event.EventID)
		httpx.WriteJSON(w, 200, map[string]any{
			"request_id": httpx.NewRequestID(),
			"event_id":   event.EventID,
			"duplicate":  true,
		})
		return
	}

	res, err := h.pipeline.CreateBill(r.Context(), bills.Submission{
		FullName:      event.FullName,
		Email:         event.Email,
		Amount:        event.Amount,
		Description:   event.Description,
		AccountNumber: event.AccountNumber,
		Class:         event.Class,
		ReceiptURL:    event.ReceiptURL,
		TxnDate:       event.TransactionDate,
	})
	if err != nil {
		h.log.Error("bill pipeline failed", "event_id", event.EventID, "vendor", event.FullName, "err", err)
		h.notifyOperators(r.Context(), err)
		httpx.WriteError(w, 502, "PIPELINE_FAILED", err.Error(), nil)
		return
	}

	httpx.WriteJSON(w, 200, map[string]any{
		"request_id": httpx.NewRequestID(),
		"event_id":   event.EventID,
		"bill_id":    res.BillID,
		"doc_number": res.DocNumber,
		"duplicate":  false,
	})
}

// validate returns a field->problem map; empty means the event is usable.
func validate(event Event) map[string]string {
	details := map[string]string{}
	require := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			details[field] = "required"
		}
	}
	require("event_id", event.EventID)
	require("full_name", event.FullName)
	require("email", event.Email)
	require("amount", event.Amount)
	require("description", event.Description)
	require("account_number", event.AccountNumber)
	require("class", event.Class)
	require("receipt_url", event.ReceiptURL)

	if _, ok := details["amount"]; !ok {
		// The string itself stays canonical for the approval token; the
		// decimal parse only rejects garbage before it reaches accounting.
		amount, err := decimal.NewFromString(event.Amount)
		switch {
		case err != nil:
			details["amount"] = "not a decimal number"
		case amount.Sign() <= 0:
			details["amount"] = "must be positive"
		}
	}
	return details
}

// notifyOperators mirrors pipeline failures to the finance channel; nobody
// is waiting on the HTTP response, so this is the visible failure path.
func (h *Handler) notifyOperators(ctx context.Context, pipelineErr error) {
	if h.notify == nil {
		return
	}
	msg := discord.Message{Content: fmt.Sprintf("Error creating bill: %v", pipelineErr)}
	if err := h.notify.Post(ctx, msg); err != nil {
		h.log.Error("operator notification failed", "err", err)
	}
}
