// Package order owns the order lifecycle: creation with its single-in-flight
// invariant, and the asynchronous dispatch pipeline driving the machine.
package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/quentinlb/cocktaild/core/apperrors"
	"github.com/quentinlb/cocktaild/core/events"
	"github.com/quentinlb/cocktaild/core/logger"
	"github.com/quentinlb/cocktaild/core/model"
	"github.com/quentinlb/cocktaild/core/store"
	"github.com/quentinlb/cocktaild/internal/eventbus"
)

// Service creates and reads orders. Creation is a fast, purely validating
// operation: the actual dispensing happens asynchronously in the Controller,
// which observes the OrderCreated events published here.
type Service struct {
	orders      store.OrderStore
	recipes     store.RecipeStore
	ingredients store.IngredientStore
	slots       store.SlotStore
	bus         *eventbus.Bus[events.OrderCreated]
	log         logger.Logger
}

// NewService creates a Service.
func NewService(
	orders store.OrderStore,
	recipes store.RecipeStore,
	ingredients store.IngredientStore,
	slots store.SlotStore,
	bus *eventbus.Bus[events.OrderCreated],
	log logger.Logger,
) *Service {
	return &Service{orders: orders, recipes: recipes, ingredients: ingredients, slots: slots, bus: bus, log: log}
}

// Find returns all orders, oldest first.
func (s *Service) Find(ctx context.Context) ([]model.Order, error) {
	return s.orders.Find(ctx)
}

// FindByID returns one order.
func (s *Service) FindByID(ctx context.Context, id string) (model.Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return model.Order{}, apperrors.NewNotFound("order not found", apperrors.SlugOrderNotFound)
	}
	return o, err
}

// Create validates the request, snapshots the referenced recipe and
// ingredients, and persists the order in status CREATED. The store's
// conditional insert guarantees at most one CREATED order system-wide even
// under concurrent requests.
func (s *Service) Create(ctx context.Context, req model.OrderRequest) (model.Order, error) {
	if err := validateRequest(req); err != nil {
		return model.Order{}, err
	}

	recipe, err := s.recipes.FindByID(ctx, req.RecipeID)
	if errors.Is(err, store.ErrNotFound) {
		return model.Order{}, apperrors.NewNotFound("recipe not found", apperrors.SlugRecipeNotFound)
	} else if err != nil {
		return model.Order{}, err
	}

	steps, err := s.PrepareSteps(ctx, req.Steps)
	if err != nil {
		return model.Order{}, err
	}

	now := time.Now().UTC()
	o := model.Order{
		ID:       uuid.NewString(),
		Status:   model.OrderCreated,
		Progress: 0,
		Recipe: model.RecipeSnapshot{
			ID:                 recipe.ID,
			Name:               recipe.Name,
			Description:        recipe.Description,
			AlcoholLevel:       recipe.AlcoholLevel,
			DefaultGlassVolume: recipe.DefaultGlassVolume,
			Steps:              recipe.Steps,
		},
		Steps:     steps,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.orders.Create(ctx, o); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return model.Order{}, apperrors.NewForbidden(
				"there is already an order in status created",
				apperrors.SlugOrderAlreadyInStatusCreated,
			)
		}
		return model.Order{}, err
	}

	s.log.Infof("order %s created (%s)", o.ID, recipe.Name)
	if s.bus != nil {
		s.bus.Publish(events.OrderCreated{OrderID: o.ID, At: now})
	}
	return o, nil
}

// Cancel moves a not-yet-dispatched order to CANCELED. Once the controller
// picked the order up, cancellation is refused: a started pour cannot be
// taken back.
func (s *Service) Cancel(ctx context.Context, id string) (model.Order, error) {
	changed, err := s.orders.TransitionStatus(ctx, id, model.OrderCreated, model.OrderCanceled)
	if errors.Is(err, store.ErrNotFound) {
		return model.Order{}, apperrors.NewNotFound("order not found", apperrors.SlugOrderNotFound)
	} else if err != nil {
		return model.Order{}, err
	}
	if !changed {
		return model.Order{}, apperrors.NewForbidden(
			"order is not in status created anymore",
			apperrors.SlugOrderNotCancelable,
		)
	}
	s.log.Infof("order %s -> %s", id, model.OrderCanceled)
	return s.orders.FindByID(ctx, id)
}

// PrepareSteps turns step requests into order steps with frozen ingredient
// snapshots, sorted by order index. Every referenced ingredient must exist
// and currently sit on a usable slot. The compiler re-checks against the
// slots it sees at dispatch time, but failing here keeps a doomed order out
// of the queue entirely.
func (s *Service) PrepareSteps(ctx context.Context, reqs []model.OrderStepRequest) ([]model.OrderStep, error) {
	slots, err := s.slots.Find(ctx)
	if err != nil {
		return nil, err
	}
	usable := make(map[string]bool, len(slots))
	for _, slot := range slots {
		if slot.Usable() {
			usable[*slot.IngredientID] = true
		}
	}

	steps := make([]model.OrderStep, 0, len(reqs))
	for _, reqStep := range reqs {
		ing, err := s.ingredients.FindByID(ctx, reqStep.IngredientID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NewNotFound(
				fmt.Sprintf("ingredient %s not found", reqStep.IngredientID),
				apperrors.SlugIngredientNotFound,
			)
		} else if err != nil {
			return nil, err
		}
		if !usable[ing.ID] {
			return nil, apperrors.NewForbidden(
				fmt.Sprintf("ingredient %s is not available", ing.Name),
				apperrors.SlugIngredientNotAvailable,
			)
		}
		steps = append(steps, model.OrderStep{
			ID: uuid.NewString(),
			Ingredient: model.IngredientSnapshot{
				ID:            ing.ID,
				Name:          ing.Name,
				IsAlcohol:     ing.IsAlcohol,
				AlcoholDegree: ing.AlcoholDegree,
				Viscosity:     ing.Viscosity,
			},
			Quantity:   reqStep.Quantity,
			Status:     model.OrderCreated,
			OrderIndex: reqStep.OrderIndex,
		})
	}
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].OrderIndex < steps[j].OrderIndex })
	return steps, nil
}

func validateRequest(req model.OrderRequest) error {
	if req.RecipeID == "" {
		return apperrors.NewIncorrectInput("recipeId is required", apperrors.SlugIncorrectInput)
	}
	if len(req.Steps) == 0 {
		return apperrors.NewIncorrectInput("at least one step is required", apperrors.SlugIncorrectInput)
	}
	for i, step := range req.Steps {
		if step.IngredientID == "" {
			return apperrors.NewIncorrectInput(
				fmt.Sprintf("steps[%d].ingredientId is required", i),
				apperrors.SlugIncorrectInput,
			)
		}
		if step.Quantity <= 0 {
			return apperrors.NewIncorrectInput(
				fmt.Sprintf("steps[%d].quantity must be positive", i),
				apperrors.SlugIncorrectInput,
			)
		}
	}
	return nil
}
