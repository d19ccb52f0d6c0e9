package infra

import (
	"context"
	"errors"
	"log/slog"

	"parking-lot-manager/internal/pkg/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type RepositoryErrorKind string

type RepositoryError struct {
	Kind RepositoryErrorKind
	msg  string
	err  error // wrapped low-level error
}

func (e RepositoryError) Error() string {
	if e.err != nil {
		return string(e.Kind) + ": " + e.msg + ": " + e.err.Error()
	}
	return string(e.Kind) + ": " + e.msg
}

func (e RepositoryError) Unwrap() error {
	return e.err
}

// WrapRepoErr wraps err as a RepositoryError. Without an explicit kind the
// kind is derived from the PostgreSQL error code. The result is also marked
// with the matching errs sentinel so callers can use errs.KindOf directly.
func WrapRepoErr(msg string, err error, kind ...RepositoryErrorKind) error {
	k := classify(err)
	if len(kind) > 0 {
		k = kind[0]
	}

	if k != KindNotFound {
		slog.Error("Repository error: "+msg, slog.String("kind", string(k)), slog.Any("error", err))
	}

	if err != nil {
		err = errs.Wrap(err, msg)
	}

	return errs.Mark(RepositoryError{Kind: k, msg: msg, err: err}, sentinelFor(k))
}

func NotFound(msg string) error {
	return WrapRepoErr(msg, nil, KindNotFound)
}

func IsKind(err error, kind RepositoryErrorKind) bool {
	var e RepositoryError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Constraint returns the violated constraint name for DUPLICATE_KEY and
// FOREIGN_KEY_VIOLATED errors raised by PostgreSQL.
func Constraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	var ce constraintError
	if errors.As(err, &ce) {
		return ce.Constraint()
	}
	return ""
}

// constraintError lets non-PostgreSQL stores report constraint names.
type constraintError interface {
	error
	Constraint() string
}

// Infrastructure-specific error kinds
const (
	KindNotFound           RepositoryErrorKind = "NOT_FOUND"
	KindDBFailure          RepositoryErrorKind = "DB_FAILURE"
	KindDuplicateKey       RepositoryErrorKind = "DUPLICATE_KEY"
	KindForeignKeyViolated RepositoryErrorKind = "FOREIGN_KEY_VIOLATED"
	KindSerialization      RepositoryErrorKind = "SERIALIZATION"
	KindCheckViolated      RepositoryErrorKind = "CHECK_VIOLATED"
)

const (
	pgErrUniqueViolation      = "23505"
	pgErrForeignKeyViolation  = "23503"
	pgErrCheckViolation       = "23514"
	pgErrSerializationFailure = "40001"
	pgErrDeadlockDetected     = "40P01"
)

func classify(err error) RepositoryErrorKind {
	if errors.Is(err, pgx.ErrNoRows) {
		return KindNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrUniqueViolation:
			return KindDuplicateKey
		case pgErrForeignKeyViolation:
			return KindForeignKeyViolated
		case pgErrCheckViolation:
			return KindCheckViolated
		case pgErrSerializationFailure, pgErrDeadlockDetected:
			return KindSerialization
		}
	}
	var ce constraintError
	if errors.As(err, &ce) {
		return KindDuplicateKey
	}
	return KindDBFailure
}

func sentinelFor(k RepositoryErrorKind) error {
	switch k {
	case KindNotFound:
		return errs.ErrNotFound
	case KindDuplicateKey:
		return errs.ErrDuplicate
	case KindForeignKeyViolated, KindCheckViolated:
		return errs.ErrInvalidState
	default:
		return errs.ErrTransientStore
	}
}

// IsRetryable reports serialization failures and deadlocks, which are safe
// to retry at the transaction boundary.
func IsRetryable(err error) bool {
	if IsKind(err, KindSerialization) {
		return true
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgErrSerializationFailure || pgErr.Code == pgErrDeadlockDetected
}

// IsTimeout reports a context deadline, which jobs surface as TIMEOUT.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// Constraint names shared by the PostgreSQL schema and the memory store.
const (
	ConstraintUserName          = "uq_users_name"
	ConstraintSpotOrdinal       = "uq_spots_lot_ordinal"
	ConstraintActivePerUser     = "uq_reservations_active_user"
	ConstraintActivePerSpot     = "uq_reservations_active_spot"
	ConstraintReservationTiming = "ck_reservations_timing"
)
