package signatures

import (
	"context"
	"sync"
)

// MemStore is an in-process ledger for tests and local development. The
// mutex serializes the append with the distinct-set read, giving the same
// lost-update guarantee the transactional store provides.
type MemStore struct {
	mu      sync.Mutex
	records map[string][]Signature
}

func NewMemStore() *MemStore {
	return &MemStore{records: make(map[string][]Signature)}
}

func (s *MemStore) Append(_ context.Context, rec Signature) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.BillID] = append(s.records[rec.BillID], rec)

	seen := make(map[string]struct{})
	var signers []string
	for _, r := range s.records[rec.BillID] {
		if _, ok := seen[r.Signer]; ok {
			continue
		}
		seen[r.Signer] = struct{}{}
		signers = append(signers, r.Signer)
	}
	return signers, nil
}

func (s *MemStore) Signatures(_ context.Context, billID string) ([]Signature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Signature, len(s.records[billID]))
	copy(out, s.records[billID])
	return out, nil
}
