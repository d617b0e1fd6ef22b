package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// ProductRepository lectura del catálogo de productos.
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
}
