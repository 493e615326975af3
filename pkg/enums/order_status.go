package enums

import "fmt"

// OrderStatus tracks the lifecycle of an order. Transitions are forward-only
// except for cancellation, and delivered orders can never be cancelled.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// forward ranks for the one-directional part of the lifecycle; cancelled
// sits outside the rank order.
var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusProcessing: 1,
	OrderStatusShipped:    2,
	OrderStatusDelivered:  3,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether moving from o to next is allowed.
func (o OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !o.IsValid() || !next.IsValid() || o == next {
		return false
	}
	if next == OrderStatusCancelled {
		return o == OrderStatusPending || o == OrderStatusProcessing
	}
	if o == OrderStatusCancelled {
		return false
	}
	return orderStatusRank[next] > orderStatusRank[o]
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
