package entity

// Warehouse bodega física donde se almacena inventario (dato maestro, solo lectura).
type Warehouse struct {
	ID   int64
	Name string
}
