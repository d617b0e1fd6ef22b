package entity

import "github.com/jhoicas/almacen-api/internal/domain"

// Roles reconocidos en el token del llamador.
const (
	RoleAdmin          = "Admin"
	RoleStorekeeper    = "Storekeeper"
	RoleDepartmentHead = "DepartmentHead"
)

// Permission capacidad que una operación exige al llamador.
type Permission string

const (
	PermManageStock     Permission = "stock:manage"
	PermAdjustStock     Permission = "stock:adjust"
	PermApproveRequests Permission = "requests:approve"
	PermFulfillRequests Permission = "requests:fulfill"
)

var rolePermissions = map[string][]Permission{
	RoleAdmin:          {PermManageStock, PermAdjustStock, PermApproveRequests, PermFulfillRequests},
	RoleStorekeeper:    {PermManageStock, PermFulfillRequests},
	RoleDepartmentHead: {PermApproveRequests},
}

// Actor identidad autenticada que ejecuta una operación.
type Actor struct {
	UserID string
	Roles  []string
}

// Authenticated indica si el actor trae identidad.
func (a Actor) Authenticated() bool {
	return a.UserID != ""
}

// Can indica si alguno de los roles del actor otorga el permiso.
func (a Actor) Can(p Permission) bool {
	for _, role := range a.Roles {
		for _, granted := range rolePermissions[role] {
			if granted == p {
				return true
			}
		}
	}
	return false
}

// Require devuelve domain.ErrUnauthorized si el actor no está autenticado o no tiene el permiso.
// Un permiso vacío solo exige autenticación.
func (a Actor) Require(p Permission) error {
	if !a.Authenticated() {
		return domain.ErrUnauthorized
	}
	if p != "" && !a.Can(p) {
		return domain.ErrUnauthorized
	}
	return nil
}
