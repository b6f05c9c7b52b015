package services

import "badmintonStore/models"

var transitions = map[string][]string{
	models.OrderPending:    {models.OrderProcessing, models.OrderCancelled},
	models.OrderProcessing: {models.OrderShipped, models.OrderCancelled},
	models.OrderShipped:    {models.OrderDelivered},
}

// CanTransition reports whether an order may move from one status to another.
// Staying in the same status is always allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return models.IsOrderStatus(to)
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Cancelable reports whether the customer may still cancel the order.
func Cancelable(status string) bool {
	return status == models.OrderPending || status == models.OrderProcessing
}

// holdsStock reports whether the order's items are still reserved in the
// catalog, i.e. not yet shipped and not released.
func holdsStock(status string) bool {
	return Cancelable(status)
}
