package entity

// Product producto del catálogo (dato maestro, solo lectura para este servicio).
type Product struct {
	ID          int64
	SKU         string
	Name        string
	Unit        string
	Description string
}
