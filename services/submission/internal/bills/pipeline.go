// Package bills turns an accepted reimbursement form submission into a bill
// in the accounting backend: resolve or create the vendor, resolve the
// expense account and class, assign the next document number, create the
// bill, attach the receipt, and announce the approval link.
package bills

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/HacktheHill/reimbursement-form-automation/pkg/approvallink"
	"github.com/HacktheHill/reimbursement-form-automation/pkg/discord"
	"github.com/HacktheHill/reimbursement-form-automation/pkg/quickbooks"
)

var (
	ErrVendorAmbiguous  = errors.New("multiple vendors share the display name")
	ErrAccountNotFound  = errors.New("expense account not found")
	ErrAccountAmbiguous = errors.New("multiple expense accounts share the account number")
	ErrClassNotFound    = errors.New("class not found")
	ErrClassAmbiguous   = errors.New("multiple classes share the name")
	ErrNoBillNumber     = errors.New("no bill found from which to derive the next bill number")
)

// QuickBooks is the slice of the accounting API the pipeline consumes.
type QuickBooks interface {
	QueryVendorsByName(ctx context.Context, displayName string) ([]quickbooks.Vendor, error)
	CreateVendor(ctx context.Context, displayName, email string) (quickbooks.Vendor, error)
	QueryExpenseAccounts(ctx context.Context) ([]quickbooks.Account, error)
	QueryClassesByName(ctx context.Context, name string) ([]quickbooks.Class, error)
	QueryBillsByDocNumberDesc(ctx context.Context) ([]quickbooks.Bill, error)
	CreateBill(ctx context.Context, bill quickbooks.BillCreate) (quickbooks.Bill, error)
	UploadAttachment(ctx context.Context, billID, filename, contentType string, content []byte) error
}

// Receipt is a fetched attachment ready for upload.
type Receipt struct {
	Filename    string
	ContentType string
	Content     []byte
}

type ReceiptFetcher interface {
	Fetch(ctx context.Context, ref string) (Receipt, error)
}

type Notifier interface {
	Post(ctx context.Context, m discord.Message) error
}

// Submission carries the form fields the pipeline consumes. Amount and
// AccountNumber keep their submitted string form end to end: the approval
// token is a digest over these exact strings.
type Submission struct {
	FullName      string
	Email         string
	Amount        string
	Description   string
	AccountNumber string
	Class         string
	ReceiptURL    string
	TxnDate       string // optional, YYYY-MM-DD
}

type Result struct {
	BillID      string
	DocNumber   string
	VendorID    string
	ApprovalURL string
}

type Pipeline struct {
	qb              QuickBooks
	receipts        ReceiptFetcher
	notify          Notifier
	secret          string
	approvalBaseURL string
	currency        string
	log             *slog.Logger
}

func NewPipeline(qb QuickBooks, receipts ReceiptFetcher, notify Notifier, secret, approvalBaseURL, currency string, log *slog.Logger) *Pipeline {
	return &Pipeline{
		qb:              qb,
		receipts:        receipts,
		notify:          notify,
		secret:          secret,
		approvalBaseURL: approvalBaseURL,
		currency:        currency,
		log:             log,
	}
}

// CreateBill runs the full pipeline for one submission. Steps run in order
// and the first failure aborts the rest; a bill already created when a later
// step fails is left in place without its attachment.
func (p *Pipeline) CreateBill(ctx context.Context, sub Submission) (Result, error) {
	vendor, err := p.resolveVendor(ctx, sub)
	if err != nil {
		return Result{}, err
	}
	account, err := p.resolveAccount(ctx, sub.AccountNumber)
	if err != nil {
		return Result{}, err
	}
	class, err := p.resolveClass(ctx, sub.Class)
	if err != nil {
		return Result{}, err
	}
	docNumber, err := p.nextDocNumber(ctx)
	if err != nil {
		return Result{}, err
	}

	bill, err := p.qb.CreateBill(ctx, quickbooks.BillCreate{
		VendorRef:   quickbooks.Ref{Value: vendor.ID},
		TxnDate:     sub.TxnDate,
		CurrencyRef: quickbooks.Ref{Value: p.currency},
		DocNumber:   docNumber,
		Line: []quickbooks.BillLine{{
			DetailType:  "AccountBasedExpenseLineDetail",
			Amount:      sub.Amount,
			Description: sub.Description,
			Detail: quickbooks.BillLineDetail{
				AccountRef: quickbooks.Ref{Value: account.ID},
				ClassRef:   quickbooks.Ref{Value: class.ID},
			},
		}},
	})
	if err != nil {
		return Result{}, fmt.Errorf("create bill: %w", err)
	}
	p.log.Info("bill created", "doc_number", docNumber, "vendor", sub.FullName, "amount", sub.Amount)

	receipt, err := p.receipts.Fetch(ctx, sub.ReceiptURL)
	if err != nil {
		return Result{}, fmt.Errorf("fetch receipt: %w", err)
	}
	if err := p.qb.UploadAttachment(ctx, bill.ID, receipt.Filename, receipt.ContentType, receipt.Content); err != nil {
		return Result{}, fmt.Errorf("upload receipt: %w", err)
	}
	p.log.Info("receipt uploaded", "bill_id", bill.ID, "filename", receipt.Filename)

	link, err := approvallink.URL(p.approvalBaseURL, p.secret, bill.ID, sub.Amount, sub.AccountNumber)
	if err != nil {
		return Result{}, fmt.Errorf("build approval link: %w", err)
	}
	p.requestApproval(ctx, sub, bill, link)

	return Result{
		BillID:      bill.ID,
		DocNumber:   docNumber,
		VendorID:    vendor.ID,
		ApprovalURL: link,
	}, nil
}

func (p *Pipeline) resolveVendor(ctx context.Context, sub Submission) (quickbooks.Vendor, error) {
	vendors, err := p.qb.QueryVendorsByName(ctx, sub.FullName)
	if err != nil {
		return quickbooks.Vendor{}, fmt.Errorf("vendor query: %w", err)
	}
	switch {
	case len(vendors) == 0:
		vendor, err := p.qb.CreateVendor(ctx, sub.FullName, sub.Email)
		if err != nil {
			return quickbooks.Vendor{}, fmt.Errorf("vendor create: %w", err)
		}
		p.log.Info("vendor created", "display_name", sub.FullName)
		return vendor, nil
	case len(vendors) > 1:
		return quickbooks.Vendor{}, fmt.Errorf("%w: %s", ErrVendorAmbiguous, sub.FullName)
	default:
		return vendors[0], nil
	}
}

func (p *Pipeline) resolveAccount(ctx context.Context, accountNumber string) (quickbooks.Account, error) {
	accounts, err := p.qb.QueryExpenseAccounts(ctx)
	if err != nil {
		return quickbooks.Account{}, fmt.Errorf("account query: %w", err)
	}
	var matches []quickbooks.Account
	for _, a := range accounts {
		if a.AcctNum == accountNumber {
			matches = append(matches, a)
		}
	}
	switch {
	case len(matches) == 0:
		return quickbooks.Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, accountNumber)
	case len(matches) > 1:
		return quickbooks.Account{}, fmt.Errorf("%w: %s", ErrAccountAmbiguous, accountNumber)
	}
	return matches[0], nil
}

func (p *Pipeline) resolveClass(ctx context.Context, name string) (quickbooks.Class, error) {
	classes, err := p.qb.QueryClassesByName(ctx, name)
	if err != nil {
		return quickbooks.Class{}, fmt.Errorf("class query: %w", err)
	}
	switch {
	case len(classes) == 0:
		return quickbooks.Class{}, fmt.Errorf("%w: %s", ErrClassNotFound, name)
	case len(classes) > 1:
		return quickbooks.Class{}, fmt.Errorf("%w: %s", ErrClassAmbiguous, name)
	}
	return classes[0], nil
}

// requestApproval announces the new bill with its signed approval link.
// Delivery failure is logged, not returned: the bill exists either way.
func (p *Pipeline) requestApproval(ctx context.Context, sub Submission, bill quickbooks.Bill, link string) {
	if p.notify == nil {
		return
	}
	msg := discord.Message{
		Content: fmt.Sprintf("Reimbursement request #%s needs two signatures.", bill.ID),
		Embeds: []discord.Embed{{
			Title: fmt.Sprintf("Reimbursement Request #%s", bill.ID),
			URL:   link,
			Fields: []discord.EmbedField{
				{Name: "Full Name", Value: sub.FullName, Inline: true},
				{Name: "Amount", Value: sub.Amount, Inline: true},
				{Name: "Account", Value: sub.AccountNumber, Inline: true},
				{Name: "Description", Value: sub.Description},
				{Name: "Sign", Value: link},
			},
		}},
	}
	if err := p.notify.Post(ctx, msg); err != nil {
		p.log.Error("approval notification failed", "bill_id", bill.ID, "err", err)
	}
}
