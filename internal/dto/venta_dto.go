package dto

import "github.com/shopspring/decimal"

// ─── Checkout (local) ────────────────────────────────────────────────────────

// ItemVentaRequest is one line of a checkout. Price and name are resolved
// against the cached catalog, not trusted from the caller.
type ItemVentaRequest struct {
	ProductoID string `json:"productoId" validate:"required"`
	Cantidad   int    `json:"cantidad"   validate:"required,min=1"`
}

// RegistrarVentaRequest is what the POS screen submits at checkout. It is
// persisted locally no matter the connectivity state.
type RegistrarVentaRequest struct {
	Items     []ItemVentaRequest `json:"items"     validate:"required,min=1,dive"`
	MedioPago string             `json:"medioPago" validate:"required,oneof=EFECTIVO TARJETA TRANSFERENCIA QR CUENTA_CORRIENTE"`
	Descuento decimal.Decimal    `json:"descuento"`
	// MontoRecibido is required for EFECTIVO (used to compute the vuelto).
	MontoRecibido *decimal.Decimal `json:"montoRecibido" validate:"required_if=MedioPago EFECTIVO"`
	ClienteID     *string          `json:"clienteId"`
}

// ─── Remote gateway (wire format of the kiosco API) ──────────────────────────

// CrearVentaRequest is the body of POST /ventas.
type CrearVentaRequest struct {
	Items         []CrearVentaItem `json:"items"`
	MedioPago     string           `json:"medioPago"`
	Descuento     decimal.Decimal  `json:"descuento"`
	MontoRecibido *decimal.Decimal `json:"montoRecibido,omitempty"`
	ClienteID     *string          `json:"clienteId,omitempty"`
}

type CrearVentaItem struct {
	ProductoID string `json:"productoId"`
	Cantidad   int    `json:"cantidad"`
}

// VentaRemota is the server's record of a created sale.
type VentaRemota struct {
	ID     string          `json:"id"`
	Numero int             `json:"numero"`
	Total  decimal.Decimal `json:"total"`
	Fecha  string          `json:"fecha"`
}

// UltimoNumeroResponse is the body of GET /ventas/ultimo-numero.
type UltimoNumeroResponse struct {
	ProximoNumero int `json:"proximoNumero"`
}
