package repository

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/spec-kit/diario-de-bordo/pkg/util/errorutil"
)

// SQLSTATE codes surfaced by Postgres and, through PostgREST, by Supabase.
const (
	sqlStateUndefinedTable     = "42P01"
	sqlStateInsufficientPrivil = "42501"
)

// classifyPostgresError maps a pgx error to the operator-facing taxonomy.
func classifyPostgresError(table string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("chamado", nil)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateUndefinedTable:
			return apperrors.NewSchemaError(table, err)
		case sqlStateInsufficientPrivil:
			return apperrors.NewPermissionError(err)
		}
		return apperrors.NewInternalError(err)
	}

	if isConnectionError(err) {
		return apperrors.NewConnectionError(err)
	}
	return apperrors.NewInternalError(err)
}

func isConnectionError(err error) bool {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err)
}
