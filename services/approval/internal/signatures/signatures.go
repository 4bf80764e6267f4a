// Package signatures implements the approval endpoint: it verifies the
// approval link carried by the request, checks the caller against the signer
// allow-list, records the signature in the append-only ledger and reports
// whether the two-signer threshold has been reached.
package signatures

import (
	"context"
	"time"
)

// Signature is one ledger entry. Entries are immutable and never deleted;
// re-signing by the same identity appends another entry without changing the
// distinct-signer count.
type Signature struct {
	BillID   string    `json:"bill_id"`
	Signer   string    `json:"signer"`
	SignedAt time.Time `json:"signed_at"`
}

// Ledger is the per-bill signature store. Append must record rec and return
// the distinct signer identities for rec.BillID in first-signed order,
// including rec's signer, as one atomic step: two concurrent signers of the
// same bill must both be durably recorded and at least one of the two calls
// must observe both identities.
type Ledger interface {
	Append(ctx context.Context, rec Signature) ([]string, error)
	Signatures(ctx context.Context, billID string) ([]Signature, error)
}

// Threshold is the number of distinct signers after which a bill is ready
// for processing.
const Threshold = 2
