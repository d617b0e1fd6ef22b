package postgres

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// Schema DDL idempotente de las tablas del almacén.
func Schema() string { return schemaSQL }

// EnsureSchema crea tablas e índices que falten. Se ejecuta al arrancar con STORE_DRIVER=postgres.
func EnsureSchema(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("aplicar esquema: %w", err)
	}
	return nil
}
