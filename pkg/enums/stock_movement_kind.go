package enums

import "fmt"

// StockMovementKind labels an entry of the sparepart stock ledger.
type StockMovementKind string

const (
	// StockMovementReserve takes units out of the pool for an order line.
	StockMovementReserve StockMovementKind = "reserve"
	// StockMovementRelease returns units of an order line to the pool.
	StockMovementRelease StockMovementKind = "release"
	// StockMovementAdjust is an administrative correction or the initial count.
	StockMovementAdjust StockMovementKind = "adjust"
)

var validStockMovementKinds = []StockMovementKind{
	StockMovementReserve,
	StockMovementRelease,
	StockMovementAdjust,
}

func (k StockMovementKind) String() string {
	return string(k)
}

func (k StockMovementKind) IsValid() bool {
	for _, candidate := range validStockMovementKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

func ParseStockMovementKind(value string) (StockMovementKind, error) {
	for _, candidate := range validStockMovementKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock movement kind %q", value)
}
