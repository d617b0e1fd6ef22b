package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClasificacionDeErrores(t *testing.T) {
	wrap := func(code string) error {
		return fmt.Errorf("update stock: %w", &pgconn.PgError{Code: code})
	}

	assert.True(t, isUniqueViolation(wrap("23505")))
	assert.True(t, isCheckViolation(wrap("23514")))
	assert.True(t, isRetryable(wrap("40001")))
	assert.True(t, isRetryable(wrap("40P01")))

	assert.False(t, isRetryable(wrap("23505")))
	assert.False(t, isRetryable(errors.New("40001 en el texto no cuenta")))
	assert.False(t, isUniqueViolation(nil))
}
