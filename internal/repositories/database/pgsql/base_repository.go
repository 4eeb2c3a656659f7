package pgsql

import (
	"fmt"

	"github.com/SscSPs/tax_filing_app/internal/apperrors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// wrapErr turns a driver error into an internal AppError that keeps the cause for logging.
func (r *BaseRepository) wrapErr(op, key string, err error) error {
	return apperrors.NewAppError(500, fmt.Sprintf("failed to %s %q", op, key), err)
}
