package model

// ConfigEntry is a generic clave→valor row. Two claves matter to the sync
// subsystem: ConfigLastSyncAt and ConfigNextVentaNumero. Last write wins;
// each clave has a single writer.
type ConfigEntry struct {
	Clave string `gorm:"primaryKey"`
	Valor string `gorm:"not null"`
}

func (ConfigEntry) TableName() string { return "config" }

// Claves owned by the sync subsystem.
const (
	// ConfigLastSyncAt stores the epoch seconds of the last full sync that
	// completed every phase.
	ConfigLastSyncAt = "lastSyncAt"

	// ConfigNextVentaNumero stores the next local ticket number. Overwritten
	// with the server's authoritative counter on every reconcile.
	ConfigNextVentaNumero = "nextVentaNumero"

	// ConfigSchemaVersion stamps the local database layout.
	ConfigSchemaVersion = "schemaVersion"
)
