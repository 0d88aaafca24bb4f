// Package dbtest opens throwaway SQLite databases carrying the full schema.
package dbtest

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/bengkelku/bengkel-backend/pkg/config"
	"github.com/bengkelku/bengkel-backend/pkg/db"
	"github.com/bengkelku/bengkel-backend/pkg/db/models"
)

// Open returns a migrated in-memory database private to the calling test.
func Open(t testing.TB) *db.Client {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := config.DBConfig{
		Driver: config.DriverSQLite,
		DSN:    "file:" + name + "_" + uuid.NewString() + "?mode=memory&cache=shared",
	}
	client, err := db.New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.DB().AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return client
}
