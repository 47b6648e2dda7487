// Package syncer orchestrates the offline-first reconciliation between the
// local store and the kiosco backend: it drains locally-created sales to the
// server (push), replaces the cached catalog from the server (pull) and
// re-seeds the local ticket counter from the server's authoritative value.
package syncer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"
	"golang.org/x/sync/errgroup"

	"github.com/lujangrego99/kiosco-sub000/internal/connectivity"
	"github.com/lujangrego99/kiosco-sub000/internal/dto"
	"github.com/lujangrego99/kiosco-sub000/internal/gateway"
	"github.com/lujangrego99/kiosco-sub000/internal/model"
	"github.com/lujangrego99/kiosco-sub000/internal/sequence"
	"github.com/lujangrego99/kiosco-sub000/internal/store"
)

// Status is the externally observable state of the engine.
type Status int

const (
	StatusIdle    Status = iota // nothing in flight, last sync succeeded (or never ran)
	StatusSyncing               // a full sync is in progress
	StatusError                 // the last full sync aborted in pull or reconcile
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSyncing:
		return "syncing"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// StatusListener receives the engine status and the count of sales still
// waiting to reach the server.
type StatusListener func(status Status, pendientes int64)

// Engine is the sync coordinator. Construct exactly one per running client at
// application bootstrap and hand it to the UI by injection; it has no
// module-level lifecycle of its own.
type Engine struct {
	store  store.LocalStore
	gw     gateway.RemoteGateway
	oracle connectivity.Oracle
	seq    *sequence.Allocator

	pushConcurrency int

	// syncing is the single-flight guard: a trigger that arrives while a
	// full sync is running is dropped, not queued.
	syncing atomic.Bool

	mu         sync.Mutex
	status     Status
	pendientes int64

	// Listeners are keyed so each unsubscribe removes exactly its own
	// registration. lisMu also serializes delivery: a subscriber's initial
	// snapshot can never arrive after a later change.
	lisMu     sync.Mutex
	listeners map[uint64]StatusListener
	lisSeq    uint64

	unsubOnline func()

	now func() time.Time
}

func New(s store.LocalStore, gw gateway.RemoteGateway, oracle connectivity.Oracle, seq *sequence.Allocator, pushConcurrency int) *Engine {
	if pushConcurrency < 1 {
		pushConcurrency = 1
	}
	return &Engine{
		store:           s,
		gw:              gw,
		oracle:          oracle,
		seq:             seq,
		pushConcurrency: pushConcurrency,
		status:          StatusIdle,
		listeners:       make(map[uint64]StatusListener),
		now:             time.Now,
	}
}

// Start registers the reconnect listener and fires the app-start sync.
// ctx bounds every background sync the engine triggers on its own; cancel it
// (and call Close) on shutdown.
func (e *Engine) Start(ctx context.Context) {
	if _, err := e.refreshPendientes(ctx); err != nil {
		log.Error().Err(err).Msg("no se pudo contar ventas pendientes al iniciar")
	}

	e.unsubOnline = e.oracle.OnOnline(func() {
		go func() {
			if err := e.FullSync(ctx); err != nil {
				log.Warn().Err(err).Msg("sincronización al reconectar falló")
			}
		}()
	})

	go func() {
		if err := e.FullSync(ctx); err != nil {
			log.Warn().Err(err).Msg("sincronización inicial falló")
		}
	}()
}

// Close removes the connectivity listener. In-flight syncs run to completion.
func (e *Engine) Close() {
	if e.unsubOnline != nil {
		e.unsubOnline()
		e.unsubOnline = nil
	}
}

// Status returns the engine's current state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// PendingCount returns the last computed number of unsynced sales.
func (e *Engine) PendingCount() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pendientes
}

// LastSyncAt reports when the last fully-successful sync finished. ok is
// false when no sync has ever completed.
func (e *Engine) LastSyncAt(ctx context.Context) (t time.Time, ok bool, err error) {
	valor, err := e.store.GetConfig(ctx, model.ConfigLastSyncAt, "0")
	if err != nil {
		return time.Time{}, false, err
	}
	epoch := cast.ToInt64(valor)
	if epoch == 0 {
		return time.Time{}, false, nil
	}
	return time.Unix(epoch, 0), true, nil
}

// OnStatusChange registers fn, invokes it immediately with the current
// snapshot, and returns its unsubscribe function. fn fires again on every
// status or pending-count change, synchronously on the notifying goroutine,
// so it must return promptly and must not call OnStatusChange or an
// unsubscribe from inside itself.
func (e *Engine) OnStatusChange(fn StatusListener) (unsubscribe func()) {
	e.lisMu.Lock()
	e.lisSeq++
	id := e.lisSeq
	e.listeners[id] = fn

	e.mu.Lock()
	st, pendientes := e.status, e.pendientes
	e.mu.Unlock()
	fn(st, pendientes)
	e.lisMu.Unlock()

	return func() {
		e.lisMu.Lock()
		delete(e.listeners, id)
		e.lisMu.Unlock()
	}
}

func (e *Engine) notifyListeners(st Status, pendientes int64) {
	e.lisMu.Lock()
	defer e.lisMu.Unlock()
	for _, fn := range e.listeners {
		fn(st, pendientes)
	}
}

// VentaLocalRegistrada is called by checkout after a sale lands in the local
// store: it refreshes the pending count for observers and, when the terminal
// is online, opportunistically pushes in the background. Push errors are
// swallowed here — the next full sync retries them.
func (e *Engine) VentaLocalRegistrada(ctx context.Context) {
	if _, err := e.refreshPendientes(ctx); err != nil {
		log.Error().Err(err).Msg("no se pudo recontar ventas pendientes")
	}
	if e.oracle.IsOnline() {
		go func() {
			if err := e.PushPendientes(ctx); err != nil {
				log.Warn().Err(err).Msg("push oportunista falló")
			}
		}()
	}
}

// FullSync runs the whole reconciliation sequence:
//
//	1. push every unsynced sale (per-item isolation, failures recorded)
//	2. pull the full catalog and destructively replace the local cache
//	3. overwrite the local ticket counter with the server's
//	4. record lastSyncAt
//
// Push runs first so a destructive pull can never race ahead of sales that
// still only exist locally. A trigger while another FullSync is in flight is
// dropped silently. A pull/reconcile failure flips the engine to error but
// leaves phase-1 successes committed; the next trigger restarts from phase 1,
// which is safe because phase 1 only touches still-unsynced rows.
func (e *Engine) FullSync(ctx context.Context) error {
	if !e.syncing.CompareAndSwap(false, true) {
		return nil
	}
	defer e.syncing.Store(false)

	e.setStatus(StatusSyncing)
	log.Info().Msg("sincronización completa iniciada")

	if err := e.PushPendientes(ctx); err != nil {
		e.setStatus(StatusError)
		return fmt.Errorf("push de ventas pendientes: %w", err)
	}
	if err := e.pullCatalogo(ctx); err != nil {
		e.setStatus(StatusError)
		return fmt.Errorf("pull de catálogo: %w", err)
	}
	if err := e.reconcileNumero(ctx); err != nil {
		e.setStatus(StatusError)
		return fmt.Errorf("reconciliación de numerador: %w", err)
	}

	if err := e.store.SetConfig(ctx, model.ConfigLastSyncAt, cast.ToString(e.now().Unix())); err != nil {
		e.setStatus(StatusError)
		return fmt.Errorf("registrar lastSyncAt: %w", err)
	}

	e.setStatus(StatusIdle)
	log.Info().Msg("sincronización completa finalizada")
	return nil
}

// PushPendientes submits every unsynced sale to the server. Each sale is
// isolated: one failure is recorded on that sale's syncError and the rest
// keep going. Only a local store failure aborts the phase.
func (e *Engine) PushPendientes(ctx context.Context) error {
	ventas, err := e.store.ListVentasNoSincronizadas(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.pushConcurrency)
	for i := range ventas {
		venta := ventas[i]
		g.Go(func() error {
			e.pushVenta(gctx, &venta)
			if _, err := e.refreshPendientes(gctx); err != nil {
				log.Error().Err(err).Msg("no se pudo recontar ventas pendientes")
			}
			return nil
		})
	}
	return g.Wait()
}

// pushVenta attempts one sale and records the outcome on the row.
func (e *Engine) pushVenta(ctx context.Context, v *model.VentaLocal) {
	_, err := e.gw.CrearVenta(ctx, ventaToRequest(v))
	if err != nil {
		msg := err.Error()
		log.Warn().Str("venta", v.ID).Int("numero", v.Numero).Err(err).Msg("venta rechazada o inalcanzable")
		if updErr := e.store.UpdateVentaSync(ctx, v.ID, false, &msg); updErr != nil {
			log.Error().Str("venta", v.ID).Err(updErr).Msg("no se pudo registrar el error de sync")
		}
		return
	}
	if err := e.store.UpdateVentaSync(ctx, v.ID, true, nil); err != nil {
		log.Error().Str("venta", v.ID).Err(err).Msg("venta aceptada por el servidor pero no se pudo marcar synced")
		return
	}
	log.Info().Str("venta", v.ID).Int("numero", v.Numero).Msg("venta sincronizada")
}

// ReintentarVenta re-pushes a single errored sale on demand (manual retry
// from the UI). Unlike the background loop, the failure is returned so the
// caller can show it.
func (e *Engine) ReintentarVenta(ctx context.Context, id string) error {
	v, err := e.store.FindVenta(ctx, id)
	if err != nil {
		return err
	}
	if v.Synced {
		return nil
	}

	if _, err := e.gw.CrearVenta(ctx, ventaToRequest(v)); err != nil {
		msg := err.Error()
		if updErr := e.store.UpdateVentaSync(ctx, v.ID, false, &msg); updErr != nil {
			log.Error().Str("venta", v.ID).Err(updErr).Msg("no se pudo registrar el error de sync")
		}
		return err
	}
	if err := e.store.UpdateVentaSync(ctx, v.ID, true, nil); err != nil {
		return err
	}
	_, err = e.refreshPendientes(ctx)
	return err
}

// pullCatalogo fetches the full remote catalog and replaces both cached
// collections. Last-writer-wins: productos/categorias are never edited
// locally, so there is nothing to merge.
func (e *Engine) pullCatalogo(ctx context.Context) error {
	syncedAt := e.now()

	remotos, err := e.gw.ListProductos(ctx)
	if err != nil {
		return err
	}
	productos := make([]model.Producto, 0, len(remotos))
	for _, r := range remotos {
		productos = append(productos, r.ToModel(syncedAt))
	}
	if err := e.store.ReplaceProductos(ctx, productos); err != nil {
		return err
	}

	remotas, err := e.gw.ListCategorias(ctx)
	if err != nil {
		return err
	}
	categorias := make([]model.Categoria, 0, len(remotas))
	for _, r := range remotas {
		categorias = append(categorias, r.ToModel(syncedAt))
	}
	if err := e.store.ReplaceCategorias(ctx, categorias); err != nil {
		return err
	}

	log.Info().Int("productos", len(productos)).Int("categorias", len(categorias)).Msg("catálogo actualizado")
	return nil
}

func (e *Engine) reconcileNumero(ctx context.Context) error {
	proximo, err := e.gw.UltimoNumero(ctx)
	if err != nil {
		return err
	}
	return e.seq.Reconcile(ctx, proximo)
}

// refreshPendientes recounts unsynced sales and notifies observers when the
// count moved.
func (e *Engine) refreshPendientes(ctx context.Context) (int64, error) {
	n, err := e.store.CountVentasNoSincronizadas(ctx)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	changed := n != e.pendientes
	e.pendientes = n
	st := e.status
	e.mu.Unlock()
	if changed {
		e.notifyListeners(st, n)
	}
	return n, nil
}

func (e *Engine) setStatus(st Status) {
	e.mu.Lock()
	changed := st != e.status
	e.status = st
	pendientes := e.pendientes
	e.mu.Unlock()
	if changed {
		e.notifyListeners(st, pendientes)
	}
}

func ventaToRequest(v *model.VentaLocal) dto.CrearVentaRequest {
	items := make([]dto.CrearVentaItem, 0, len(v.Items))
	for _, it := range v.Items {
		items = append(items, dto.CrearVentaItem{
			ProductoID: it.ProductoID,
			Cantidad:   it.Cantidad,
		})
	}
	return dto.CrearVentaRequest{
		Items:         items,
		MedioPago:     v.MedioPago,
		Descuento:     v.Descuento,
		MontoRecibido: v.MontoRecibido,
		ClienteID:     v.ClienteID,
	}
}
