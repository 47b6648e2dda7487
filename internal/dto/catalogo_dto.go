package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lujangrego99/kiosco-sub000/internal/model"
)

// ProductoRemoto mirrors one element of GET /productos.
type ProductoRemoto struct {
	ID           string           `json:"id"`
	Codigo       string           `json:"codigo"`
	CodigoBarras string           `json:"codigoBarras"`
	Nombre       string           `json:"nombre"`
	Descripcion  *string          `json:"descripcion"`
	Categoria    *CategoriaRemota `json:"categoria"`
	PrecioCosto  decimal.Decimal  `json:"precioCosto"`
	PrecioVenta  decimal.Decimal  `json:"precioVenta"`
	Stock        int              `json:"stock"`
	StockMinimo  int              `json:"stockMinimo"`
	Favorito     bool             `json:"favorito"`
	Activo       bool             `json:"activo"`
}

// CategoriaRemota mirrors one element of GET /categorias (and the embedded
// category of a product).
type CategoriaRemota struct {
	ID          string  `json:"id"`
	Nombre      string  `json:"nombre"`
	Descripcion *string `json:"descripcion"`
	Color       string  `json:"color"`
	Orden       int     `json:"orden"`
	Activo      bool    `json:"activo"`
}

// ToModel projects the remote product into its cached local form, stamping
// the pull time.
func (p ProductoRemoto) ToModel(syncedAt time.Time) model.Producto {
	m := model.Producto{
		ID:           p.ID,
		Codigo:       p.Codigo,
		CodigoBarras: p.CodigoBarras,
		Nombre:       p.Nombre,
		Descripcion:  p.Descripcion,
		PrecioCosto:  p.PrecioCosto,
		PrecioVenta:  p.PrecioVenta,
		StockActual:  p.Stock,
		StockMinimo:  p.StockMinimo,
		Favorito:     p.Favorito,
		Activo:       p.Activo,
		SyncedAt:     syncedAt,
	}
	if p.Categoria != nil {
		m.CategoriaID = p.Categoria.ID
		m.CategoriaNombre = p.Categoria.Nombre
		m.CategoriaColor = p.Categoria.Color
	}
	return m
}

func (c CategoriaRemota) ToModel(syncedAt time.Time) model.Categoria {
	return model.Categoria{
		ID:          c.ID,
		Nombre:      c.Nombre,
		Descripcion: c.Descripcion,
		Color:       c.Color,
		Orden:       c.Orden,
		Activo:      c.Activo,
		SyncedAt:    syncedAt,
	}
}
