package persistence

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hotelops/backend/internal/domain/shared"
)

// Postgres error code for unique_violation
const pgUniqueViolation = "23505"

// receiptTokenConstraint is the partial unique index on
// payment_receipts.idempotency_key.
const receiptTokenConstraint = "uq_payment_receipts_idempotency_key"

// translateSaveError maps Postgres unique violations onto domain
// sentinels. A collision on the idempotency index means a request with
// the same token committed first and its outcome should be replayed.
// Any other unique collision is a lost race on number assignment, which
// callers handle the same way as a version conflict: re-read and retry.
func translateSaveError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return err
	}
	if pgErr.ConstraintName == receiptTokenConstraint {
		return shared.ErrDuplicateIdempotencyKey
	}
	return shared.ErrConcurrencyConflict
}
