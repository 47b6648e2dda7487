package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Producto is the local snapshot of a remote product, refreshed on every
// catalog pull. Category name and color are denormalized so the POS can
// render offline without joining against a possibly-stale categorias row.
//
// StockActual is advisory between pulls: the server reconciles concurrent
// terminals, this copy only backs local POS decisions.
type Producto struct {
	ID           string `gorm:"primaryKey"`
	Codigo       string `gorm:"index;not null"`
	CodigoBarras string `gorm:"index"`
	Nombre       string `gorm:"index;not null"`
	Descripcion  *string

	CategoriaID     string `gorm:"index"`
	CategoriaNombre string
	CategoriaColor  string

	PrecioCosto decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PrecioVenta decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	StockActual int  `gorm:"not null;default:0"`
	StockMinimo int  `gorm:"not null;default:0"`
	Favorito    bool `gorm:"index;not null;default:false"`
	Activo      bool `gorm:"index;not null;default:true"`

	// SyncedAt marks when this snapshot was pulled from the server.
	SyncedAt time.Time `gorm:"not null"`
}

// TableName overrides GORM's default singular → plural logic for Spanish names.
func (Producto) TableName() string { return "productos" }
