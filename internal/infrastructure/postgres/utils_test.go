package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

func TestWrap_ConflictosSonReintentables(t *testing.T) {
	for _, code := range []string{codeUniqueViolation, codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable} {
		t.Run(code, func(t *testing.T) {
			err := wrap("purchase.create", fmt.Errorf("exec: %w", &pgconn.PgError{Code: code}))
			assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
			assert.Contains(t, err.Error(), "purchase.create")
		})
	}
}

func TestWrap_OtrosErroresConservanLaCausa(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503"}
	err := wrap("movement.append", fk)
	assert.NotErrorIs(t, err, domain.ErrConcurrencyConflict)

	var pgErr *pgconn.PgError
	assert.True(t, errors.As(err, &pgErr))
	assert.ErrorIs(t, wrap("stock.get", pgx.ErrNoRows), pgx.ErrNoRows)
	assert.NoError(t, wrap("x", nil))
}

func TestWrap_CheckViolationEsValidacion(t *testing.T) {
	err := wrap("purchase.update", &pgconn.PgError{Code: codeCheckViolation, ConstraintName: "purchase_records_unit_price_check"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.NotErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.Contains(t, err.Error(), "purchase_records_unit_price_check")
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: codeUniqueViolation}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: codeSerializationFailure}))
}
