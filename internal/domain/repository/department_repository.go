package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// DepartmentRepository lectura de departamentos para resolver a quién se imputa una solicitud.
// Todos los métodos devuelven (nil, nil) si no hay resultado.
type DepartmentRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Department, error)
	// GetByEmployeeUserID departamento del empleado vinculado al usuario.
	GetByEmployeeUserID(ctx context.Context, userID string) (*entity.Department, error)
	// GetFirst departamento con el menor ID.
	GetFirst(ctx context.Context) (*entity.Department, error)
}
