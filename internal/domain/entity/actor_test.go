package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

func TestActor_PermisosPorRol(t *testing.T) {
	admin := entity.Actor{UserID: "u1", Roles: []string{entity.RoleAdmin}}
	bodega := entity.Actor{UserID: "u2", Roles: []string{entity.RoleStorekeeper}}
	jefe := entity.Actor{UserID: "u3", Roles: []string{entity.RoleDepartmentHead}}
	empleado := entity.Actor{UserID: "u4"}

	for _, p := range []entity.Permission{entity.PermManageStock, entity.PermAdjustStock, entity.PermApproveRequests, entity.PermFulfillRequests} {
		assert.NoError(t, admin.Require(p), p)
	}

	assert.NoError(t, bodega.Require(entity.PermManageStock))
	assert.NoError(t, bodega.Require(entity.PermFulfillRequests))
	assert.ErrorIs(t, bodega.Require(entity.PermApproveRequests), domain.ErrUnauthorized)
	assert.ErrorIs(t, bodega.Require(entity.PermAdjustStock), domain.ErrUnauthorized)

	assert.NoError(t, jefe.Require(entity.PermApproveRequests))
	assert.ErrorIs(t, jefe.Require(entity.PermFulfillRequests), domain.ErrUnauthorized)

	assert.NoError(t, empleado.Require(""), "autenticado sin roles puede operar lo abierto")
	assert.ErrorIs(t, empleado.Require(entity.PermManageStock), domain.ErrUnauthorized)
}

func TestActor_SinIdentidad(t *testing.T) {
	anon := entity.Actor{Roles: []string{entity.RoleAdmin}}
	assert.False(t, anon.Authenticated())
	assert.ErrorIs(t, anon.Require(""), domain.ErrUnauthorized)
	assert.ErrorIs(t, anon.Require(entity.PermManageStock), domain.ErrUnauthorized)
}

func TestActor_MultiplesRoles(t *testing.T) {
	a := entity.Actor{UserID: "u", Roles: []string{entity.RoleDepartmentHead, entity.RoleStorekeeper}}
	assert.True(t, a.Can(entity.PermApproveRequests))
	assert.True(t, a.Can(entity.PermFulfillRequests))
	assert.False(t, a.Can(entity.PermAdjustStock))
}
