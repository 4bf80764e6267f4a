package signatures

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore keeps the ledger in Postgres:
//
//	CREATE TABLE signatures (
//	    id        bigserial PRIMARY KEY,
//	    bill_id   text        NOT NULL,
//	    signer    text        NOT NULL,
//	    signed_at timestamptz NOT NULL
//	);
//	CREATE INDEX signatures_bill_id_idx ON signatures (bill_id);
type PGStore struct {
	DB *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{DB: db}
}

// Append inserts the record and reads back the distinct signer set in the
// same transaction. Appends for the same bill are serialized with a
// per-bill advisory lock held until commit; at READ COMMITTED two
// overlapping transactions would otherwise each miss the other's
// uncommitted insert and both report an incomplete set.
func (s *PGStore) Append(ctx context.Context, rec Signature) ([]string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, rec.BillID); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
INSERT INTO signatures(bill_id, signer, signed_at)
VALUES($1, $2, $3)
`, rec.BillID, rec.Signer, rec.SignedAt.UTC())
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
SELECT signer
FROM signatures
WHERE bill_id=$1
GROUP BY signer
ORDER BY MIN(signed_at), signer
`, rec.BillID)
	if err != nil {
		return nil, err
	}
	var signers []string
	for rows.Next() {
		var signer string
		if err := rows.Scan(&signer); err != nil {
			rows.Close()
			return nil, err
		}
		signers = append(signers, signer)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return signers, nil
}

func (s *PGStore) Signatures(ctx context.Context, billID string) ([]Signature, error) {
	rows, err := s.DB.Query(ctx, `
SELECT bill_id, signer, signed_at
FROM signatures
WHERE bill_id=$1
ORDER BY signed_at, id
`, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Signature
	for rows.Next() {
		var rec Signature
		if err := rows.Scan(&rec.BillID, &rec.Signer, &rec.SignedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
