package signatures

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemStoreDistinctOrder(t *testing.T) {
	s := NewMemStore()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, signer := range []string{"alice@org", "bob@org", "alice@org"} {
		signers, err := s.Append(context.Background(), Signature{
			BillID: "000123", Signer: signer, SignedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
		if i == 2 && (len(signers) != 2 || signers[0] != "alice@org" || signers[1] != "bob@org") {
			t.Fatalf("expected first-signed order [alice bob], got %v", signers)
		}
	}
	records, err := s.Signatures(context.Background(), "000123")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("expected all writes persisted, got %d", len(records))
	}
}

func TestMemStoreConcurrentAppends(t *testing.T) {
	s := NewMemStore()
	var wg sync.WaitGroup
	signers := []string{"alice@org", "bob@org"}
	sawBoth := make([]bool, len(signers))
	for i, signer := range signers {
		wg.Add(1)
		go func(i int, signer string) {
			defer wg.Done()
			distinct, err := s.Append(context.Background(), Signature{
				BillID: "000123", Signer: signer, SignedAt: time.Now().UTC(),
			})
			if err != nil {
				t.Error(err)
				return
			}
			sawBoth[i] = len(distinct) == 2
		}(i, signer)
	}
	wg.Wait()

	records, _ := s.Signatures(context.Background(), "000123")
	if len(records) != 2 {
		t.Fatalf("a concurrent append was lost: %d records", len(records))
	}
	if !sawBoth[0] && !sawBoth[1] {
		t.Fatal("at least one append must observe both distinct signers")
	}
}

func TestMemStoreIsolatesBills(t *testing.T) {
	s := NewMemStore()
	_, _ = s.Append(context.Background(), Signature{BillID: "000123", Signer: "alice@org", SignedAt: time.Now()})
	signers, _ := s.Append(context.Background(), Signature{BillID: "000124", Signer: "bob@org", SignedAt: time.Now()})
	if len(signers) != 1 {
		t.Fatalf("bills must not share ledgers, got %v", signers)
	}
}
