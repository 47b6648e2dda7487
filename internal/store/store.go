package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lujangrego99/kiosco-sub000/internal/model"
)

// ErrNotFound is returned when a requested row does not exist locally.
var ErrNotFound = errors.New("registro no encontrado en el store local")

// ProductoFilter narrows the cached catalog read path used by the POS screens.
type ProductoFilter struct {
	Busqueda         string // matches nombre, codigo or codigo de barras
	CategoriaID      string
	SoloFavoritos    bool
	IncluirInactivos bool
}

// LocalStore is the data access contract over the local SQLite database.
// The sync engine is the only writer of productos/categorias and the only
// component that flips a sale's synced flag; checkout is the only creator of
// sales. Everything else reads.
//
// No method ever touches the network.
type LocalStore interface {
	// Catalog cache — written by pulls, read by the UI.
	ReplaceProductos(ctx context.Context, productos []model.Producto) error
	ReplaceCategorias(ctx context.Context, categorias []model.Categoria) error
	ListProductos(ctx context.Context, filter ProductoFilter) ([]model.Producto, error)
	GetProducto(ctx context.Context, id string) (*model.Producto, error)
	ListCategorias(ctx context.Context) ([]model.Categoria, error)

	// DescontarStock lowers the cached stock of a product, floored at zero.
	// Advisory only: the server's stock remains authoritative.
	DescontarStock(ctx context.Context, productoID string, cantidad int) error

	// Local sales queue.
	PutVenta(ctx context.Context, v *model.VentaLocal) error
	FindVenta(ctx context.Context, id string) (*model.VentaLocal, error)
	UpdateVentaSync(ctx context.Context, id string, synced bool, syncError *string) error
	ListVentasNoSincronizadas(ctx context.Context) ([]model.VentaLocal, error)
	CountVentasNoSincronizadas(ctx context.Context) (int64, error)
	ListVentasConError(ctx context.Context) ([]model.VentaLocal, error)

	// Config table. GetConfig returns def when the clave is absent.
	GetConfig(ctx context.Context, clave, def string) (string, error)
	SetConfig(ctx context.Context, clave, valor string) error
}

type localStore struct{ db *gorm.DB }

// New wraps an opened local database (see infra.NewDatabase) in the
// LocalStore contract.
func New(db *gorm.DB) LocalStore { return &localStore{db: db} }

// ── Catalog ──────────────────────────────────────────────────────────────────

// ReplaceProductos swaps the whole cached product table in one transaction so
// a reader never observes a half-cleared catalog.
func (s *localStore) ReplaceProductos(ctx context.Context, productos []model.Producto) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.Producto{}).Error; err != nil {
			return err
		}
		if len(productos) == 0 {
			return nil
		}
		return tx.CreateInBatches(productos, 200).Error
	})
}

func (s *localStore) ReplaceCategorias(ctx context.Context, categorias []model.Categoria) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.Categoria{}).Error; err != nil {
			return err
		}
		if len(categorias) == 0 {
			return nil
		}
		return tx.CreateInBatches(categorias, 200).Error
	})
}

func (s *localStore) ListProductos(ctx context.Context, filter ProductoFilter) ([]model.Producto, error) {
	q := s.db.WithContext(ctx).Model(&model.Producto{})

	if !filter.IncluirInactivos {
		q = q.Where("activo = ?", true)
	}
	if filter.SoloFavoritos {
		q = q.Where("favorito = ?", true)
	}
	if filter.CategoriaID != "" {
		q = q.Where("categoria_id = ?", filter.CategoriaID)
	}
	if filter.Busqueda != "" {
		like := "%" + filter.Busqueda + "%"
		q = q.Where("nombre LIKE ? OR codigo LIKE ? OR codigo_barras LIKE ?", like, like, like)
	}

	var productos []model.Producto
	err := q.Order("nombre ASC").Find(&productos).Error
	return productos, err
}

func (s *localStore) GetProducto(ctx context.Context, id string) (*model.Producto, error) {
	var p model.Producto
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (s *localStore) ListCategorias(ctx context.Context) ([]model.Categoria, error) {
	var categorias []model.Categoria
	err := s.db.WithContext(ctx).
		Where("activo = ?", true).
		Order("orden ASC, nombre ASC").
		Find(&categorias).Error
	return categorias, err
}

func (s *localStore) DescontarStock(ctx context.Context, productoID string, cantidad int) error {
	return s.db.WithContext(ctx).Model(&model.Producto{}).
		Where("id = ?", productoID).
		Update("stock_actual", gorm.Expr("MAX(stock_actual - ?, 0)", cantidad)).Error
}

// ── Local sales ──────────────────────────────────────────────────────────────

// PutVenta inserts or fully replaces a sale by id, items included. Saving the
// same sale twice leaves a single copy.
func (s *localStore) PutVenta(ctx context.Context, v *model.VentaLocal) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("venta_id = ?", v.ID).Delete(&model.VentaLocalItem{}).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(v).Error
	})
}

func (s *localStore) FindVenta(ctx context.Context, id string) (*model.VentaLocal, error) {
	var v model.VentaLocal
	err := s.db.WithContext(ctx).Preload("Items").First(&v, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &v, err
}

func (s *localStore) UpdateVentaSync(ctx context.Context, id string, synced bool, syncError *string) error {
	res := s.db.WithContext(ctx).Model(&model.VentaLocal{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"synced":     synced,
			"sync_error": syncError,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *localStore) ListVentasNoSincronizadas(ctx context.Context) ([]model.VentaLocal, error) {
	var ventas []model.VentaLocal
	err := s.db.WithContext(ctx).Preload("Items").
		Where("synced = ?", false).
		Order("fecha ASC").
		Find(&ventas).Error
	return ventas, err
}

func (s *localStore) CountVentasNoSincronizadas(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.VentaLocal{}).
		Where("synced = ?", false).
		Count(&n).Error
	return n, err
}

func (s *localStore) ListVentasConError(ctx context.Context) ([]model.VentaLocal, error) {
	var ventas []model.VentaLocal
	err := s.db.WithContext(ctx).Preload("Items").
		Where("synced = ? AND sync_error IS NOT NULL", false).
		Order("fecha ASC").
		Find(&ventas).Error
	return ventas, err
}

// ── Config ───────────────────────────────────────────────────────────────────

func (s *localStore) GetConfig(ctx context.Context, clave, def string) (string, error) {
	var entry model.ConfigEntry
	err := s.db.WithContext(ctx).First(&entry, "clave = ?", clave).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	return entry.Valor, nil
}

func (s *localStore) SetConfig(ctx context.Context, clave, valor string) error {
	entry := model.ConfigEntry{Clave: clave, Valor: valor}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&entry).Error
}
