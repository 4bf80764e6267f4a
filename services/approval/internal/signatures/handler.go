package signatures

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/HacktheHill/reimbursement-form-automation/pkg/approvallink"
	"github.com/HacktheHill/reimbursement-form-automation/pkg/discord"
	"github.com/HacktheHill/reimbursement-form-automation/pkg/httpx"

	"github.com/go-chi/chi/v5"
)

// identityHeader is injected by the access-control front door; this service
// never verifies credentials itself.
const identityHeader = "Cf-Access-Authenticated-User-Email"

const billViewURL = "https://qbo.intuit.com/app/bill?&txnId="

type Notifier interface {
	Post(ctx context.Context, m discord.Message) error
}

type identityFunc func(r *http.Request) string

func identityFromAccessHeader(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(identityHeader))
}

type Handler struct {
	secret   string
	allowed  map[string]struct{}
	ledger   Ledger
	notify   Notifier
	log      *slog.Logger
	identity identityFunc
	now      func() time.Time
}

func NewHandler(secret string, allowedSigners []string, ledger Ledger, notify Notifier, log *slog.Logger) *Handler {
	allowed := make(map[string]struct{}, len(allowedSigners))
	for _, s := range allowedSigners {
		allowed[s] = struct{}{}
	}
	return &Handler{
		secret:   secret,
		allowed:  allowed,
		ledger:   ledger,
		notify:   notify,
		log:      log,
		identity: identityFromAccessHeader,
		now:      time.Now,
	}
}

// HandleApprove processes one approval-link visit. Rejections never touch
// the ledger; a valid visit always appends, even for a repeat signer.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	token := q.Get("token")
	billID := q.Get("billId")
	amount := q.Get("amount")
	accountNumber := q.Get("accountNumber")

	if token == "" || billID == "" || amount == "" || accountNumber == "" {
		httpx.WriteText(w, http.StatusBadRequest, "Missing required parameters.")
		return
	}

	user := h.identity(r)
	if user == "" {
		httpx.WriteText(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if _, ok := h.allowed[user]; !ok {
		httpx.WriteText(w, http.StatusForbidden, "You are not authorized to sign this reimbursement.")
		return
	}

	if !approvallink.Verify(h.secret, billID, amount, accountNumber, token) {
		httpx.WriteText(w, http.StatusUnauthorized, "Invalid token.")
		return
	}

	signers, err := h.ledger.Append(r.Context(), Signature{
		BillID:   billID,
		Signer:   user,
		SignedAt: h.now().UTC(),
	})
	if err != nil {
		h.log.Error("signature append failed", "bill_id", billID, "signer", user, "err", err)
		httpx.WriteText(w, http.StatusInternalServerError, "Could not record signature.")
		return
	}
	h.log.Info("signature recorded", "bill_id", billID, "signer", user, "distinct_signers", len(signers))

	h.post(r, discord.Message{
		Content: fmt.Sprintf("Reimbursement request #%s has been signed by %s.", billID, user),
	})

	if len(signers) >= Threshold {
		h.post(r, discord.Message{
			Content: fmt.Sprintf("Reimbursement request #%s is ready for processing. [View in QuickBooks](%s%s)", billID, billViewURL, billID),
		})
		httpx.WriteText(w, http.StatusOK, fmt.Sprintf(
			`Reimbursement request #%s has been signed by both %s and is ready for processing. <a href="%s%s" target="_blank">View in QuickBooks</a>`,
			billID, strings.Join(signers, " and "), billViewURL, billID))
		return
	}
	httpx.WriteText(w, http.StatusOK, fmt.Sprintf(
		"Reimbursement request #%s signed. Waiting for another unique signature.", billID))
}

// HandleListSignatures exposes the ledger for one bill to allow-listed
// signers. Read-only; useful when chasing who still needs to sign.
func (h *Handler) HandleListSignatures(w http.ResponseWriter, r *http.Request) {
	user := h.identity(r)
	if user == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "no authenticated identity", nil)
		return
	}
	if _, ok := h.allowed[user]; !ok {
		httpx.WriteError(w, http.StatusForbidden, "NOT_ALLOWED", "identity is not an authorized signer", nil)
		return
	}
	billID := chi.URLParam(r, "billId")
	records, err := h.ledger.Signatures(r.Context(), billID)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "LEDGER_ERROR", err.Error(), nil)
		return
	}
	distinct := make(map[string]struct{})
	for _, rec := range records {
		distinct[rec.Signer] = struct{}{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"request_id":       httpx.NewRequestID(),
		"bill_id":          billID,
		"signatures":       records,
		"distinct_signers": len(distinct),
		"ready":            len(distinct) >= Threshold,
	})
}

// post delivers a notification without letting a sink failure affect the
// signature that was already recorded.
func (h *Handler) post(r *http.Request, m discord.Message) {
	if h.notify == nil {
		return
	}
	if err := h.notify.Post(r.Context(), m); err != nil {
		h.log.Error("notification failed", "err", err)
	}
}
