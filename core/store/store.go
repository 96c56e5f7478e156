// Package store defines the narrow persistence interfaces the core depends
// on. Implementations only need exact-match lookup by id, a couple of field
// filters, and one atomic conditional insert; no query language leaks out.
package store

import (
	"context"
	"errors"

	"github.com/quentinlb/cocktaild/core/model"
)

// ErrNotFound is returned when a looked-up entity does not exist.
var ErrNotFound = errors.New("entity not found")

// ErrConflict is returned when a write violates a uniqueness constraint,
// notably the single-CREATED-order invariant and the slot number uniqueness.
var ErrConflict = errors.New("conflicting write")

type IngredientStore interface {
	Find(ctx context.Context) ([]model.Ingredient, error)
	FindByID(ctx context.Context, id string) (model.Ingredient, error)
	Create(ctx context.Context, ing model.Ingredient) error
	Update(ctx context.Context, ing model.Ingredient) error
	Delete(ctx context.Context, id string) error
}

// RecipeFilter narrows Find results. Nil fields are ignored.
type RecipeFilter struct {
	Available *bool
}

type RecipeStore interface {
	Find(ctx context.Context, f RecipeFilter) ([]model.Recipe, error)
	FindByID(ctx context.Context, id string) (model.Recipe, error)
	Create(ctx context.Context, r model.Recipe) error
	Update(ctx context.Context, r model.Recipe) error
	Delete(ctx context.Context, id string) error
	// SetAvailable marks the listed recipes available and every other recipe
	// unavailable, in a single logical write. Used only by the availability
	// engine, which always recomputes the full set.
	SetAvailable(ctx context.Context, availableIDs []string) error
}

type SlotStore interface {
	// Find returns all slots ordered by slot number.
	Find(ctx context.Context) ([]model.DispenserSlot, error)
	FindByID(ctx context.Context, id string) (model.DispenserSlot, error)
	// Create fails with ErrConflict when the slot number is already taken.
	Create(ctx context.Context, s model.DispenserSlot) error
	Update(ctx context.Context, s model.DispenserSlot) error
	Delete(ctx context.Context, id string) error
}

type SettingStore interface {
	Get(ctx context.Context) (model.Setting, error)
	Put(ctx context.Context, s model.Setting) error
}

type OrderStore interface {
	Find(ctx context.Context) ([]model.Order, error)
	FindByID(ctx context.Context, id string) (model.Order, error)
	// Create persists a new order in status CREATED. It fails with
	// ErrConflict when another order is already in status CREATED; the check
	// and the insert are atomic so concurrent creations cannot both succeed.
	Create(ctx context.Context, o model.Order) error
	// TransitionStatus atomically moves the order from one status to
	// another. It reports false without error when the order is not in the
	// expected source status, which makes redelivered change notifications
	// harmless.
	TransitionStatus(ctx context.Context, id string, from, to model.OrderStatus) (bool, error)
	// Save overwrites the mutable order fields (status, progress, steps).
	// Only the execution controller calls it.
	Save(ctx context.Context, o model.Order) error
}

type FileStore interface {
	Find(ctx context.Context) ([]model.File, error)
	FindByID(ctx context.Context, id string) (model.File, error)
	Create(ctx context.Context, f model.File) error
	Delete(ctx context.Context, id string) error
}
