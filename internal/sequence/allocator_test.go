package sequence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lujangrego99/kiosco-sub000/internal/infra"
	"github.com/lujangrego99/kiosco-sub000/internal/sequence"
	"github.com/lujangrego99/kiosco-sub000/internal/store"
)

func newAllocator(t *testing.T) *sequence.Allocator {
	t.Helper()
	db, err := infra.NewDatabase(":memory:")
	require.NoError(t, err)
	return sequence.NewAllocator(store.New(db))
}

func TestNumeradorArrancaEnUno(t *testing.T) {
	a := newAllocator(t)
	n, err := a.NextNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNumeracionOfflineEsEstrictamenteCreciente(t *testing.T) {
	a := newAllocator(t)
	ctx := context.Background()

	var numeros []int
	for i := 0; i < 10; i++ {
		n, err := a.NextNumber(ctx)
		require.NoError(t, err)
		require.NoError(t, a.CommitNumber(ctx, n+1))
		numeros = append(numeros, n)
	}

	require.Len(t, numeros, 10)
	for i := 1; i < len(numeros); i++ {
		assert.Greater(t, numeros[i], numeros[i-1])
	}
	assert.Equal(t, 1, numeros[0])
	assert.Equal(t, 10, numeros[9])
}

func TestReconcileAdoptaElNumeradorDelServidor(t *testing.T) {
	a := newAllocator(t)
	ctx := context.Background()

	// Three offline sales consumed 1..3.
	for i := 0; i < 3; i++ {
		n, err := a.NextNumber(ctx)
		require.NoError(t, err)
		require.NoError(t, a.CommitNumber(ctx, n+1))
	}

	// The server's counter jumped ahead (other terminals sold meanwhile).
	require.NoError(t, a.Reconcile(ctx, 120))

	n, err := a.NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, 120, n)
}

func TestReconcileIgnoraValoresInvalidos(t *testing.T) {
	a := newAllocator(t)
	ctx := context.Background()

	require.NoError(t, a.Reconcile(ctx, 0))
	n, err := a.NextNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
