package models

import "github.com/google/uuid"

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every persisted model in dependency order; used by AutoMigrate
// on SQLite, where the goose SQL files do not apply.
func All() []any {
	return []any{
		&User{},
		&Employee{},
		&Vehicle{},
		&Service{},
		&Sparepart{},
		&Booking{},
		&Order{},
		&OrderLine{},
		&StockMovement{},
	}
}
