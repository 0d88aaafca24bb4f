package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/bengkelku/bengkel-backend/pkg/config"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type plateRow struct {
	ID    int
	Plate string `gorm:"uniqueIndex"`
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	cfg := config.DBConfig{
		Driver: config.DriverSQLite,
		DSN:    "file:dbclient_" + uuid.NewString() + "?mode=memory&cache=shared",
	}
	client, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	if err := client.DB().AutoMigrate(&plateRow{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return client
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&plateRow{Plate: "B 1234 XYZ"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	var count int64
	if err := client.DB().Model(&plateRow{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&plateRow{Plate: "D 99 AB"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}
	if err := client.DB().Model(&plateRow{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed after rollback: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected rollback to leave 1 record, got %d", count)
	}
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	client := newTestClient(t)

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		_ = client.WithTx(context.Background(), func(tx *gorm.DB) error {
			tx.Create(&plateRow{Plate: "L 1 A"})
			panic("kaboom")
		})
	}()

	var count int64
	if err := client.DB().Model(&plateRow{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected panic rollback to leave 0 records, got %d", count)
	}
}

func TestPingAndDialect(t *testing.T) {
	client := newTestClient(t)
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
	if client.Dialect() != config.DriverSQLite {
		t.Fatalf("expected sqlite dialect, got %q", client.Dialect())
	}
	if FromConn(client.DB()).Dialect() != config.DriverSQLite {
		t.Fatalf("FromConn should detect sqlite dialector")
	}
}

func TestIsUniqueViolation_SQLite(t *testing.T) {
	client := newTestClient(t)
	db := client.DB()
	if err := db.Create(&plateRow{Plate: "B 1 CD"}).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	err := db.Create(&plateRow{Plate: "B 1 CD"}).Error
	if err == nil {
		t.Fatal("expected duplicate insert to fail")
	}
	if !IsUniqueViolation(err, "") {
		t.Fatalf("expected unique violation, got %v", err)
	}
	if !strings.Contains(err.Error(), "UNIQUE constraint failed") {
		t.Fatalf("expected the driver error to reach callers untranslated, got %v", err)
	}
}

func TestGormConfigKeepsDriverErrors(t *testing.T) {
	if gormConfig().TranslateError {
		t.Fatal("driver errors must not be translated; constraint names are read from them")
	}
}

func TestIsUniqueViolation_Postgres(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "ux_bookings_day_queue"}
	wrapped := fmt.Errorf("insert booking: %w", pgErr)

	if !IsUniqueViolation(wrapped, "") {
		t.Fatal("expected 23505 to be a unique violation")
	}
	if !IsUniqueViolation(wrapped, "ux_bookings_day_queue") {
		t.Fatal("expected constraint name to match")
	}
	if IsUniqueViolation(wrapped, "ux_bookings_vehicle_day") {
		t.Fatal("different constraint should not match")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23514"}, "") {
		t.Fatal("check violation is not a unique violation")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil is not a unique violation")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(fmt.Errorf("lookup: %w", gorm.ErrRecordNotFound)) {
		t.Fatal("expected wrapped record-not-found to match")
	}
	if IsNotFound(errors.New("other")) {
		t.Fatal("unexpected match")
	}
}
