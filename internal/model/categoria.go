package model

import "time"

// Categoria is a read-through cache of a remote category. The whole table is
// replaced on every pull; rows are never edited locally.
type Categoria struct {
	ID          string `gorm:"primaryKey"`
	Nombre      string `gorm:"not null"`
	Descripcion *string
	Color       string
	Orden       int  `gorm:"not null;default:0"`
	Activo      bool `gorm:"not null;default:true"`

	SyncedAt time.Time `gorm:"not null"`
}

func (Categoria) TableName() string { return "categorias" }
