// Package events defines the change notifications flowing between the stores
// and the background workers.
package events

import "time"

// SlotChanged signals a committed write to the dispenser configuration.
// Consumed by the availability engine, which always recomputes from scratch,
// so the event carries identification only.
type SlotChanged struct {
	SlotID string
	At     time.Time
}

// OrderCreated signals that a new order was persisted in status CREATED.
// Consumed by the order execution controller. Delivery is at-least-once;
// the controller's status transitions make duplicate deliveries harmless.
type OrderCreated struct {
	OrderID string
	At      time.Time
}

// RecipesChanged signals an administrative recipe create or update, which
// needs the same availability recompute as a configuration change.
type RecipesChanged struct {
	RecipeID string
	At       time.Time
}
