package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReferenceGenerator allocates document references of the form PREFIX-YY-MM-NNN
// (QT-25-09-001, IN-25-09-014). Each (type, year, month) bucket is backed by a
// row in reference_sequences; the increment happens inside the database, so
// two callers racing for the same bucket can never receive the same reference.
type ReferenceGenerator struct {
	pool *pgxpool.Pool
}

func NewReferenceGenerator(pool *pgxpool.Pool) *ReferenceGenerator {
	return &ReferenceGenerator{pool: pool}
}

// Next allocates the next reference in its own transaction.
func (g *ReferenceGenerator) Next(ctx context.Context, docType DocumentType, asOf time.Time) (string, error) {
	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ref, err := g.NextTx(ctx, tx, docType, asOf)
	if err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit reference allocation: %w", err)
	}
	return ref, nil
}

// NextTx allocates the next reference inside the caller's transaction. The
// caller owns the transaction boundary; the reference only becomes visible to
// other buckets' readers when that transaction commits.
func (g *ReferenceGenerator) NextTx(ctx context.Context, tx pgx.Tx, docType DocumentType, asOf time.Time) (string, error) {
	if !docType.Valid() {
		return "", newValidationError("type", fmt.Sprintf("unknown document type %q", docType))
	}

	year := asOf.Year() % 100
	month := int(asOf.Month())
	prefix := fmt.Sprintf("%s-%02d-%02d-", docType.ReferencePrefix(), year, month)

	// The seed only matters the first time a bucket is touched; after that
	// the ON CONFLICT branch increments the stored counter atomically.
	seed, err := seedFromExistingReferences(ctx, tx, docType, prefix)
	if err != nil {
		return "", &ReferenceGenerationError{Bucket: prefix, Err: err}
	}

	var number int64
	err = tx.QueryRow(ctx, `
		INSERT INTO reference_sequences (doc_type, year, month, last_number)
		VALUES ($1, $2, $3, $4 + 1)
		ON CONFLICT (doc_type, year, month)
		DO UPDATE SET last_number = reference_sequences.last_number + 1
		RETURNING last_number`,
		string(docType), year, month, seed,
	).Scan(&number)
	if err != nil {
		return "", &ReferenceGenerationError{Bucket: prefix, Err: err}
	}

	return fmt.Sprintf("%s%03d", prefix, number), nil
}

// seedFromExistingReferences scans the highest existing reference under the
// given prefix so a fresh sequence bucket continues where pre-existing
// documents left off. An unparseable suffix resets the seed to zero — the
// next reference restarts at 001 instead of failing. This fallback is kept
// deliberately: manually repaired rows must not block document creation.
func seedFromExistingReferences(ctx context.Context, tx pgx.Tx, docType DocumentType, prefix string) (int64, error) {
	var last *string
	err := tx.QueryRow(ctx, `
		SELECT MAX(reference) FROM documents
		WHERE doc_type = $1 AND reference LIKE $2`,
		string(docType), prefix+"%",
	).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("scan existing references: %w", err)
	}
	if last == nil {
		return 0, nil
	}

	suffix := (*last)[strings.LastIndex(*last, "-")+1:]
	number, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return 0, nil
	}
	return number, nil
}
