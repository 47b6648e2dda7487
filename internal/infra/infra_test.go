package infra_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lujangrego99/kiosco-sub000/internal/infra"
	"github.com/lujangrego99/kiosco-sub000/internal/model"
)

func TestNewDatabaseCreaYMigra(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kiosco.db")

	db, err := infra.NewDatabase(path)
	require.NoError(t, err)

	// Schema version stamped.
	var entry model.ConfigEntry
	require.NoError(t, db.First(&entry, "clave = ?", model.ConfigSchemaVersion).Error)
	assert.Equal(t, "1", entry.Valor)

	// Reopening an existing file is a no-op migration.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	db, err = infra.NewDatabase(path)
	require.NoError(t, err)
	require.NoError(t, db.First(&entry, "clave = ?", model.ConfigSchemaVersion).Error)
	assert.Equal(t, "1", entry.Valor)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestCircuitBreakerAbreYSeRecupera(t *testing.T) {
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{
		FailureThreshold: 2,
		SuccessThreshold: 1,
		OpenTimeout:      20 * time.Millisecond,
	})

	boom := errors.New("api caída")
	fail := func() error { return boom }
	ok := func() error { return nil }

	require.ErrorIs(t, cb.Execute(fail), boom)
	require.ErrorIs(t, cb.Execute(fail), boom)
	assert.Equal(t, infra.CBOpen, cb.State())

	// While open, calls fast-fail without running fn.
	ran := false
	err := cb.Execute(func() error { ran = true; return nil })
	assert.ErrorIs(t, err, infra.ErrCircuitOpen)
	assert.False(t, ran)

	// After the open window, one probe is allowed and closes the breaker.
	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, infra.CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(ok))
	assert.Equal(t, infra.CBClosed, cb.State())
}

func TestCircuitBreakerReabreSiElProbeFalla(t *testing.T) {
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{
		FailureThreshold: 1,
		SuccessThreshold: 1,
		OpenTimeout:      10 * time.Millisecond,
	})

	boom := errors.New("sigue caída")
	require.Error(t, cb.Execute(func() error { return boom }))
	assert.Equal(t, infra.CBOpen, cb.State())

	time.Sleep(15 * time.Millisecond)
	require.Error(t, cb.Execute(func() error { return boom })) // failed probe
	assert.Equal(t, infra.CBOpen, cb.State())
}
