package orders

import "github.com/bengkelku/bengkel-backend/pkg/enums"

var transitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending: {enums.OrderStatusProcess, enums.OrderStatusCancelled},
	enums.OrderStatusProcess: {enums.OrderStatusCompleted, enums.OrderStatusCancelled},
}

// CanTransition reports whether an order may move from one status to another.
// Writing the current status again is not a transition and is handled by callers.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
