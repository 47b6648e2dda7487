// Package checkout creates sales at the terminal. Its core guarantee is that
// registering a sale never depends on connectivity: the sale is durably
// written to the local store first and reaches the server later via the sync
// engine.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/lujangrego99/kiosco-sub000/internal/dto"
	"github.com/lujangrego99/kiosco-sub000/internal/model"
	"github.com/lujangrego99/kiosco-sub000/internal/sequence"
	"github.com/lujangrego99/kiosco-sub000/internal/store"
)

var (
	ErrProductoInactivo  = errors.New("el producto está inactivo y no puede venderse")
	ErrMontoInsuficiente = errors.New("el monto recibido es menor al total de la venta")
	ErrDescuentoNegativo = errors.New("el descuento no puede ser negativo")
)

// Notifier is the slice of the sync engine checkout needs: a signal that a
// new local sale exists. The engine recounts pendings and, when online,
// fires an opportunistic background push.
type Notifier interface {
	VentaLocalRegistrada(ctx context.Context)
}

// Service registers sales against the local store.
type Service struct {
	store    store.LocalStore
	seq      *sequence.Allocator
	notifier Notifier
	validate *validator.Validate

	// mu serializes number allocation + save: the allocator is
	// read-then-commit, so concurrent checkouts must not interleave.
	mu sync.Mutex

	now func() time.Time
}

func NewService(s store.LocalStore, seq *sequence.Allocator, notifier Notifier) *Service {
	return &Service{
		store:    s,
		seq:      seq,
		notifier: notifier,
		validate: validator.New(),
		now:      time.Now,
	}
}

// RegistrarVenta builds a sale from the cached catalog and persists it
// locally. Prices and names come from the cached products, never from the
// request. Returns the persisted sale (with its local number and computed
// vuelto for cash).
func (s *Service) RegistrarVenta(ctx context.Context, req dto.RegistrarVentaRequest) (*model.VentaLocal, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("venta inválida: %w", err)
	}
	if req.Descuento.IsNegative() {
		return nil, ErrDescuentoNegativo
	}

	subtotal := decimal.Zero
	items := make([]model.VentaLocalItem, 0, len(req.Items))
	for _, item := range req.Items {
		p, err := s.store.GetProducto(ctx, item.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("producto %s: %w", item.ProductoID, err)
		}
		if !p.Activo {
			return nil, fmt.Errorf("%s: %w", p.Nombre, ErrProductoInactivo)
		}
		lineSubtotal := p.PrecioVenta.Mul(decimal.NewFromInt(int64(item.Cantidad)))
		subtotal = subtotal.Add(lineSubtotal)
		items = append(items, model.VentaLocalItem{
			ProductoID: p.ID,
			Nombre:     p.Nombre,
			Codigo:     p.Codigo,
			Cantidad:   item.Cantidad,
			PrecioUnit: p.PrecioVenta,
			Subtotal:   lineSubtotal,
		})
	}

	total := subtotal.Sub(req.Descuento)
	if total.IsNegative() {
		total = decimal.Zero
	}

	venta := &model.VentaLocal{
		ID:        uuid.NewString(),
		Items:     items,
		Subtotal:  subtotal,
		Descuento: req.Descuento,
		Total:     total,
		MedioPago: req.MedioPago,
		ClienteID: req.ClienteID,
		Fecha:     s.now(),
	}

	if req.MedioPago == "EFECTIVO" && req.MontoRecibido != nil {
		if req.MontoRecibido.LessThan(total) {
			return nil, ErrMontoInsuficiente
		}
		vuelto := req.MontoRecibido.Sub(total)
		venta.MontoRecibido = req.MontoRecibido
		venta.Vuelto = &vuelto
	}

	if err := s.GuardarVentaLocal(ctx, venta); err != nil {
		return nil, err
	}
	return venta, nil
}

// GuardarVentaLocal persists a sale, assigning its local number when it does
// not carry one yet. It never performs network I/O, so it succeeds offline:
//
//	1. persist with synced=false (a pre-set synced=true survives — replay)
//	2. recompute the pending count (via the notifier)
//	3. decrement cached stock per line, floored at zero — skipped when the
//	   sale arrives already synced, so a replay cannot decrement twice
//	4. leave any opportunistic push to the notifier (fire-and-forget)
func (s *Service) GuardarVentaLocal(ctx context.Context, venta *model.VentaLocal) error {
	s.mu.Lock()
	if venta.Numero == 0 {
		numero, err := s.seq.NextNumber(ctx)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("asignar número local: %w", err)
		}
		venta.Numero = numero
		if err := s.seq.CommitNumber(ctx, numero+1); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("avanzar numerador local: %w", err)
		}
	}

	if err := s.store.PutVenta(ctx, venta); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("guardar venta local: %w", err)
	}
	s.mu.Unlock()

	if !venta.Synced {
		for _, item := range venta.Items {
			if err := s.store.DescontarStock(ctx, item.ProductoID, item.Cantidad); err != nil {
				// Stock is advisory; the sale itself is already safe.
				log.Warn().Str("producto", item.ProductoID).Err(err).Msg("no se pudo descontar stock local")
			}
		}
	}

	log.Info().Str("venta", venta.ID).Int("numero", venta.Numero).Bool("synced", venta.Synced).Msg("venta registrada localmente")

	if s.notifier != nil {
		s.notifier.VentaLocalRegistrada(ctx)
	}
	return nil
}
