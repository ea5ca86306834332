package infra

import (
	"fmt"

	"github.com/denisdx1/SistemaPOSDiscoteca-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies idempotent SQL patches for the
// constraints GORM cannot express (partial unique indexes, sequences).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations applies AutoMigrate plus schema patches. Also used by
// integration tests against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Mesa{},
		&model.Producto{},
		&model.Stock{},
		&model.ComboComponente{},
		&model.Orden{},
		&model.ItemOrden{},
		&model.HistorialOrden{},
		&model.SesionCaja{},
		&model.MovimientoCaja{},
		&model.MovimientoInventario{},
		&model.Pedido{},
		&model.DetallePedido{},
		&model.Comprobante{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot produce. The
// partial unique indexes here are the real concurrency guarantees: an
// application-level "is there an open session?" check is check-then-act and
// race-prone, the index is not.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Sequence for human-readable order numbers.
		{"ordenes numero sequence",
			`CREATE SEQUENCE IF NOT EXISTS ordenes_numero_seq START 1`},

		// At most one open session per physical register.
		{"single open session per register", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_sesion_abierta_por_caja') THEN
    CREATE UNIQUE INDEX idx_sesion_abierta_por_caja
        ON sesiones_caja (numero_caja)
        WHERE estado = 'abierta';
  END IF;
END $$`},

		// At most one order tying up a table. Delivered-and-paid orders are
		// excluded via the pagada flag snapshot at delivery.
		{"one active order per table", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_orden_activa_por_mesa') THEN
    CREATE UNIQUE INDEX idx_orden_activa_por_mesa
        ON ordenes (mesa_id)
        WHERE mesa_id IS NOT NULL
          AND estado NOT IN ('cancelada')
          AND NOT (estado = 'entregada' AND pagada);
  END IF;
END $$`},

		// Partial index for the comprobante retry cron query.
		{"comprobantes pending retry index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_comprobantes_pending_retry') THEN
    CREATE INDEX idx_comprobantes_pending_retry
        ON comprobantes (next_retry_at)
        WHERE estado = 'error' AND next_retry_at IS NOT NULL;
  END IF;
END $$`},

		// Ledger query paths: movements by session and by product, newest first.
		{"movimientos_caja session index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_movimientos_caja_sesion_fecha') THEN
    CREATE INDEX idx_movimientos_caja_sesion_fecha
        ON movimientos_caja (sesion_caja_id, created_at DESC);
  END IF;
END $$`},
		{"movimientos_inventario producto index", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_movimientos_inv_producto_fecha') THEN
    CREATE INDEX idx_movimientos_inv_producto_fecha
        ON movimientos_inventario (producto_id, created_at DESC);
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("schema patch %q: %w", p.descr, err)
		}
	}
	return nil
}
