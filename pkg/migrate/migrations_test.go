package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bengkelku/bengkel-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func assertContains(t *testing.T, content string, checks []string) {
	t.Helper()
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCatalogMigrationGuardsStock(t *testing.T) {
	assertContains(t, readMigration(t, "create_catalog"), []string{
		"CREATE TABLE IF NOT EXISTS spareparts",
		"price numeric(14,2) NOT NULL",
		"CONSTRAINT ck_spareparts_stock_nonneg CHECK (stock >= 0)",
		"DROP TABLE IF EXISTS spareparts",
	})
}

func TestBookingsMigrationHasQueueAndVehicleIndexes(t *testing.T) {
	assertContains(t, readMigration(t, "create_bookings"), []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_bookings_day_queue ON bookings (booking_day, queue_number)",
		"ON bookings (vehicle_id, booking_day)",
		"WHERE vehicle_id IS NOT NULL AND status <> 'CANCELLED'",
		"DROP TYPE IF EXISTS booking_status",
	})
}

func TestOrdersMigrationCascadesLines(t *testing.T) {
	assertContains(t, readMigration(t, "create_orders"), []string{
		"CREATE TYPE order_status AS ENUM ('PENDING', 'PROCESS', 'COMPLETED', 'CANCELLED')",
		"FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE",
		"CHECK (quantity > 0)",
		"ux_orders_booking",
	})
}

func TestStockMovementsMigration(t *testing.T) {
	assertContains(t, readMigration(t, "create_stock_movements"), []string{
		"CREATE TYPE stock_movement_kind AS ENUM ('reserve', 'release', 'adjust')",
		"qty_delta integer NOT NULL",
		"CHECK (stock_after >= 0)",
	})
}

func TestShippedMigrationsValidate(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("shipped migrations should validate: %v", err)
	}
}
