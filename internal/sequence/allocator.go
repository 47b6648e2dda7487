// Package sequence hands out local ticket numbers while the terminal is
// offline. Numbers are locally unique and strictly increasing; they are NOT
// globally unique or gap-free across devices, and offline sales keep the
// number they were given even after the server's counter jumps ahead on
// reconcile. That weak consistency is intentional and documented.
package sequence

import (
	"context"

	"github.com/spf13/cast"

	"github.com/lujangrego99/kiosco-sub000/internal/model"
	"github.com/lujangrego99/kiosco-sub000/internal/store"
)

// Allocator reads and advances the nextVentaNumero counter in the local
// config table. NextNumber/CommitNumber is read-then-commit, not
// compare-and-swap: callers must serialize checkouts on the same device
// (checkout.Service does so with a mutex).
type Allocator struct {
	store store.LocalStore
}

func NewAllocator(s store.LocalStore) *Allocator {
	return &Allocator{store: s}
}

// NextNumber returns the number to assign to the next sale. Defaults to 1 on
// a fresh database.
func (a *Allocator) NextNumber(ctx context.Context) (int, error) {
	valor, err := a.store.GetConfig(ctx, model.ConfigNextVentaNumero, "1")
	if err != nil {
		return 0, err
	}
	n := cast.ToInt(valor)
	if n < 1 {
		n = 1
	}
	return n, nil
}

// CommitNumber persists n as the new counter value.
func (a *Allocator) CommitNumber(ctx context.Context, n int) error {
	return a.store.SetConfig(ctx, model.ConfigNextVentaNumero, cast.ToString(n))
}

// Reconcile overwrites the local counter with the server's authoritative
// next number. The server may jump the counter forward; already-numbered
// local sales are never renumbered.
func (a *Allocator) Reconcile(ctx context.Context, serverNext int) error {
	if serverNext < 1 {
		serverNext = 1
	}
	return a.store.SetConfig(ctx, model.ConfigNextVentaNumero, cast.ToString(serverNext))
}
