// Package memory implementa los puertos de persistencia en memoria.
//
// Las transacciones se serializan con un mutex y trabajan sobre una copia del estado que solo
// se publica al confirmar, así que un error a mitad de camino no deja escrituras parciales.
// Se usa en pruebas y con STORE_DRIVER=memory para levantar el servicio sin PostgreSQL.
package memory

import (
	"sync"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

type pairKey struct {
	warehouseID int64
	productID   int64
}

type sequences struct {
	balance, movement, request, item int64
}

// state datos mutables; se clona al iniciar cada transacción.
type state struct {
	balances  map[pairKey]*entity.StockBalance
	movements []*entity.StockMovement
	requests  map[int64]*entity.IssueRequest
	items     map[int64][]*entity.IssueRequestItem
	seq       sequences
}

func newState() *state {
	return &state{
		balances: make(map[pairKey]*entity.StockBalance),
		requests: make(map[int64]*entity.IssueRequest),
		items:    make(map[int64][]*entity.IssueRequestItem),
	}
}

func (s *state) clone() *state {
	c := &state{
		balances:  make(map[pairKey]*entity.StockBalance, len(s.balances)),
		movements: make([]*entity.StockMovement, len(s.movements)),
		requests:  make(map[int64]*entity.IssueRequest, len(s.requests)),
		items:     make(map[int64][]*entity.IssueRequestItem, len(s.items)),
		seq:       s.seq,
	}
	for k, b := range s.balances {
		cp := *b
		c.balances[k] = &cp
	}
	// los movimientos son inmutables: basta copiar el slice
	copy(c.movements, s.movements)
	for id, r := range s.requests {
		c.requests[id] = copyRequest(r)
	}
	for id, list := range s.items {
		cl := make([]*entity.IssueRequestItem, len(list))
		for i, it := range list {
			cp := *it
			cl[i] = &cp
		}
		c.items[id] = cl
	}
	return c
}

// Store almacén en memoria: estado transaccional más catálogo de datos maestros.
type Store struct {
	mu sync.Mutex
	st *state

	catMu       sync.RWMutex
	warehouses  map[int64]*entity.Warehouse
	products    map[int64]*entity.Product
	departments map[int64]*entity.Department
	employees   map[string]int64 // user_id → department_id
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		st:          newState(),
		warehouses:  make(map[int64]*entity.Warehouse),
		products:    make(map[int64]*entity.Product),
		departments: make(map[int64]*entity.Department),
		employees:   make(map[string]int64),
	}
}

// AddWarehouse registra una bodega en el catálogo.
func (s *Store) AddWarehouse(w entity.Warehouse) {
	s.catMu.Lock()
	defer s.catMu.Unlock()
	s.warehouses[w.ID] = &w
}

// AddProduct registra un producto en el catálogo.
func (s *Store) AddProduct(p entity.Product) {
	s.catMu.Lock()
	defer s.catMu.Unlock()
	s.products[p.ID] = &p
}

// AddDepartment registra un departamento.
func (s *Store) AddDepartment(d entity.Department) {
	s.catMu.Lock()
	defer s.catMu.Unlock()
	s.departments[d.ID] = &d
}

// AddEmployee vincula un usuario con su departamento.
func (s *Store) AddEmployee(userID string, departmentID int64) {
	s.catMu.Lock()
	defer s.catMu.Unlock()
	s.employees[userID] = departmentID
}

// SeedDemo carga un catálogo mínimo para desarrollo local.
func (s *Store) SeedDemo() {
	s.AddDepartment(entity.Department{ID: 1, Name: "Administración", Code: "ADM"})
	s.AddDepartment(entity.Department{ID: 2, Name: "Mantenimiento", Code: "MNT"})
	s.AddWarehouse(entity.Warehouse{ID: 1, Name: "Bodega Central"})
	s.AddWarehouse(entity.Warehouse{ID: 2, Name: "Bodega Norte"})
	s.AddProduct(entity.Product{ID: 1, SKU: "PAP-A4", Name: "Papel A4", Unit: "resma"})
	s.AddProduct(entity.Product{ID: 2, SKU: "GUA-NIT", Name: "Guantes de nitrilo", Unit: "caja"})
	s.AddProduct(entity.Product{ID: 3, SKU: "TOR-M8", Name: "Tornillo M8", Unit: "unidad"})
}

// live ejecuta f sobre el estado confirmado con el mutex tomado (repos fuera de transacción).
func (s *Store) live(f func(*state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return f(s.st)
}

func copyRequest(r *entity.IssueRequest) *entity.IssueRequest {
	cp := *r
	if r.ApprovedAt != nil {
		t := *r.ApprovedAt
		cp.ApprovedAt = &t
	}
	if r.ApprovedByID != nil {
		v := *r.ApprovedByID
		cp.ApprovedByID = &v
	}
	if r.Comment != nil {
		v := *r.Comment
		cp.Comment = &v
	}
	return &cp
}
