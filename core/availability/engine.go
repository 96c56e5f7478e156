// Package availability keeps recipe availability consistent with the live
// dispenser configuration.
package availability

import (
	"context"
	"fmt"

	"github.com/quentinlb/cocktaild/core/events"
	"github.com/quentinlb/cocktaild/core/logger"
	"github.com/quentinlb/cocktaild/core/metrics"
	"github.com/quentinlb/cocktaild/core/model"
	"github.com/quentinlb/cocktaild/core/store"
)

// Engine recomputes the derived availability flag of every recipe whenever
// the dispenser configuration or the recipe set changes. It is the sole
// writer of that flag.
type Engine struct {
	slots   store.SlotStore
	recipes store.RecipeStore
	log     logger.Logger
	sink    metrics.MetricsSink
}

// NewEngine creates an Engine. A nil sink disables metrics.
func NewEngine(slots store.SlotStore, recipes store.RecipeStore, log logger.Logger, sink metrics.MetricsSink) *Engine {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Engine{slots: slots, recipes: recipes, log: log, sink: sink}
}

// Run consumes change notifications until the context is canceled. Every
// event triggers a full recompute; the channels are at-least-once, which is
// fine because Recompute is idempotent.
func (e *Engine) Run(ctx context.Context, slotEvents <-chan events.SlotChanged, recipeEvents <-chan events.RecipesChanged) {
	for {
		select {
		case ev := <-slotEvents:
			e.log.Debugf("slot %s changed, recomputing availability", ev.SlotID)
			if err := e.Recompute(ctx); err != nil {
				e.log.Errorf("availability recompute: %v", err)
			}
		case ev := <-recipeEvents:
			e.log.Debugf("recipe %s changed, recomputing availability", ev.RecipeID)
			if err := e.Recompute(ctx); err != nil {
				e.log.Errorf("availability recompute: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Recompute rebuilds the availability flag of every recipe from scratch. A
// recipe is available iff each of its steps' ingredients sits on a usable
// slot. Configuration changes are rare relative to reads, so a full pass
// beats maintaining an incremental diff.
func (e *Engine) Recompute(ctx context.Context) error {
	slots, err := e.slots.Find(ctx)
	if err != nil {
		return fmt.Errorf("load slots: %w", err)
	}
	usable := usableIngredients(slots)

	recipes, err := e.recipes.Find(ctx, store.RecipeFilter{})
	if err != nil {
		return fmt.Errorf("load recipes: %w", err)
	}

	var availableIDs []string
	for _, r := range recipes {
		if recipeAvailable(r, usable) {
			availableIDs = append(availableIDs, r.ID)
		}
	}
	if err := e.recipes.SetAvailable(ctx, availableIDs); err != nil {
		return fmt.Errorf("write availability: %w", err)
	}

	e.log.Infof("availability recomputed: %d/%d recipes available", len(availableIDs), len(recipes))
	if err := e.sink.RecordAvailability(metrics.AvailabilityResult{
		AvailableRecipes: len(availableIDs),
		TotalRecipes:     len(recipes),
		UsableSlots:      len(usable),
	}); err != nil {
		e.log.Warnf("metrics: %v", err)
	}
	return nil
}

// usableIngredients returns the ids of ingredients assigned to a slot with a
// calibrated, non-zero measuring cup.
func usableIngredients(slots []model.DispenserSlot) map[string]bool {
	usable := make(map[string]bool)
	for _, s := range slots {
		if s.Usable() {
			usable[*s.IngredientID] = true
		}
	}
	return usable
}

// recipeAvailable reports whether every step ingredient is usable. A recipe
// with no steps is vacuously available.
func recipeAvailable(r model.Recipe, usable map[string]bool) bool {
	for _, step := range r.Steps {
		if !usable[step.IngredientID] {
			return false
		}
	}
	return true
}
