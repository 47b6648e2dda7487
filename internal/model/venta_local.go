package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// VentaLocal is a sale registered at the terminal. It is born with
// Synced=false and flips to true exactly once, the first time a push to the
// server succeeds. After that the row is append-only history and is never
// mutated again. Rows are never deleted automatically: a sale that keeps
// failing to push stays visible (with SyncError set) until someone intervenes.
type VentaLocal struct {
	// ID is generated at the terminal (uuid), never by the server, so the
	// sale exists before the server ever hears about it.
	ID string `gorm:"primaryKey"`

	// Numero is the locally-assigned ticket number. It is unique per
	// terminal but not globally: offline periods can produce numbers the
	// server also handed to another device. Numbers are never rewritten.
	Numero int `gorm:"not null"`

	Items []VentaLocalItem `gorm:"foreignKey:VentaID;constraint:OnDelete:CASCADE"`

	Subtotal  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Descuento decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Total     decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	MedioPago string `gorm:"not null"`
	// MontoRecibido and Vuelto only apply to cash sales.
	MontoRecibido *decimal.Decimal `gorm:"type:decimal(10,2)"`
	Vuelto        *decimal.Decimal `gorm:"type:decimal(10,2)"`

	ClienteID *string

	Fecha time.Time `gorm:"index;not null"`

	Synced bool `gorm:"index;not null;default:false"`
	// SyncError holds the last push failure message while Synced=false.
	SyncError *string
}

func (VentaLocal) TableName() string { return "ventas_locales" }

// VentaLocalItem is one line of a local sale. Nombre and Codigo are
// denormalized at checkout time so the ticket stays readable even after the
// product disappears from the cached catalog.
type VentaLocalItem struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	VentaID    string `gorm:"index;not null"`
	ProductoID string `gorm:"not null"`
	Nombre     string `gorm:"not null"`
	Codigo     string
	Cantidad   int             `gorm:"not null"`
	PrecioUnit decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

func (VentaLocalItem) TableName() string { return "ventas_locales_items" }
