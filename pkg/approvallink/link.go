// Package approvallink mints and verifies the self-verifying approval links
// embedded in reimbursement notifications. A link carries the bill id, the
// amount, the expense account number and an integrity token; the token is a
// digest over the shared secret and the three fields, so the link proves the
// fields were issued by us without any server-side session.
package approvallink

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/url"
	"strings"
)

// Sign computes the integrity token for a bill reference. The inputs are
// concatenated as-is: the strings must be the exact representations that will
// appear in the link's query parameters, since verification recomputes the
// digest from those parameters without any normalization.
func Sign(secret, billID, amount, accountNumber string) string {
	sum := sha256.Sum256([]byte(secret + billID + amount + accountNumber))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether token matches the digest recomputed from the
// presented fields under the current secret. Hex case is ignored; malformed
// tokens never match. The comparison is constant-time.
func Verify(secret, billID, amount, accountNumber, token string) bool {
	presented, err := hex.DecodeString(strings.ToLower(strings.TrimSpace(token)))
	if err != nil {
		return false
	}
	expected := sha256.Sum256([]byte(secret + billID + amount + accountNumber))
	return subtle.ConstantTimeCompare(expected[:], presented) == 1
}

// URL builds the approval link for a freshly created bill.
func URL(base, secret, billID, amount, accountNumber string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", Sign(secret, billID, amount, accountNumber))
	q.Set("billId", billID)
	q.Set("amount", amount)
	q.Set("accountNumber", accountNumber)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
