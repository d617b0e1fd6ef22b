package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalance representa la existencia actual de un producto en una bodega.
// Se crea en cero con el primer movimiento del par y nunca se elimina.
type StockBalance struct {
	ID          int64
	WarehouseID int64
	ProductID   int64
	Quantity    decimal.Decimal
	UpdatedAt   time.Time
}

// BalanceView es la proyección de lectura de un saldo con nombres de bodega y producto.
type BalanceView struct {
	WarehouseID   int64
	WarehouseName string
	ProductID     int64
	SKU           string
	ProductName   string
	Unit          string
	Quantity      decimal.Decimal
	UpdatedAt     time.Time
}

// QuantityScale decimales con los que se persisten las cantidades (NUMERIC(18,4)).
const QuantityScale int32 = 4

// ValidScale indica si la cantidad se puede guardar sin redondeo.
func ValidScale(q decimal.Decimal) bool {
	return q.Equal(q.Truncate(QuantityScale))
}
