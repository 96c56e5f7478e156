package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quentinlb/cocktaild/core/apperrors"
	"github.com/quentinlb/cocktaild/core/events"
	"github.com/quentinlb/cocktaild/core/logger"
	"github.com/quentinlb/cocktaild/core/model"
	"github.com/quentinlb/cocktaild/core/store"
	"github.com/quentinlb/cocktaild/internal/eventbus"
)

// RecipeService is the CRUD surface for recipes. The availability flag is
// never taken from the client: the availability engine owns it, and every
// recipe write publishes a change event so the engine recomputes.
type RecipeService struct {
	recipes     store.RecipeStore
	ingredients store.IngredientStore
	bus         *eventbus.Bus[events.RecipesChanged]
	log         logger.Logger
}

// NewRecipeService creates a RecipeService.
func NewRecipeService(recipes store.RecipeStore, ingredients store.IngredientStore, bus *eventbus.Bus[events.RecipesChanged], log logger.Logger) *RecipeService {
	return &RecipeService{recipes: recipes, ingredients: ingredients, bus: bus, log: log}
}

func (s *RecipeService) Find(ctx context.Context, available *bool) ([]model.Recipe, error) {
	return s.recipes.Find(ctx, store.RecipeFilter{Available: available})
}

func (s *RecipeService) FindByID(ctx context.Context, id string) (model.Recipe, error) {
	r, err := s.recipes.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return model.Recipe{}, apperrors.NewNotFound("recipe not found", apperrors.SlugRecipeNotFound)
	}
	return r, err
}

func (s *RecipeService) Create(ctx context.Context, r model.Recipe) (model.Recipe, error) {
	if err := s.validateRecipe(ctx, r); err != nil {
		return model.Recipe{}, err
	}
	now := time.Now().UTC()
	r.ID = uuid.NewString()
	// New recipes start unavailable until the engine recomputes.
	r.IsAvailable = false
	for i := range r.Steps {
		r.Steps[i].ID = uuid.NewString()
	}
	r.CreatedAt = now
	r.UpdatedAt = now
	if err := s.recipes.Create(ctx, r); err != nil {
		return model.Recipe{}, err
	}
	s.log.Infof("recipe %s created (%s)", r.ID, r.Name)
	s.publish(r.ID)
	return r, nil
}

func (s *RecipeService) Update(ctx context.Context, id string, r model.Recipe) (model.Recipe, error) {
	if err := s.validateRecipe(ctx, r); err != nil {
		return model.Recipe{}, err
	}
	current, err := s.FindByID(ctx, id)
	if err != nil {
		return model.Recipe{}, err
	}
	current.Name = r.Name
	current.Description = r.Description
	current.AlcoholLevel = r.AlcoholLevel
	current.AlcoholMinLevel = r.AlcoholMinLevel
	current.AlcoholMaxLevel = r.AlcoholMaxLevel
	current.DefaultGlassVolume = r.DefaultGlassVolume
	current.PictureID = r.PictureID
	current.Steps = r.Steps
	for i := range current.Steps {
		if current.Steps[i].ID == "" {
			current.Steps[i].ID = uuid.NewString()
		}
	}
	current.UpdatedAt = time.Now().UTC()
	if err := s.recipes.Update(ctx, current); err != nil {
		return model.Recipe{}, err
	}
	s.publish(current.ID)
	return current, nil
}

func (s *RecipeService) Delete(ctx context.Context, id string) error {
	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.recipes.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(id)
	return nil
}

func (s *RecipeService) publish(recipeID string) {
	if s.bus != nil {
		s.bus.Publish(events.RecipesChanged{RecipeID: recipeID, At: time.Now().UTC()})
	}
}

func (s *RecipeService) validateRecipe(ctx context.Context, r model.Recipe) error {
	if r.Name == "" {
		return apperrors.NewIncorrectInput("name is required", apperrors.SlugIncorrectInput)
	}
	if r.AlcoholMinLevel > r.AlcoholMaxLevel {
		return apperrors.NewIncorrectInput("alcoholMinLevel must not exceed alcoholMaxLevel", apperrors.SlugIncorrectInput)
	}
	for i, step := range r.Steps {
		if step.IngredientID == "" {
			return apperrors.NewIncorrectInput(
				fmt.Sprintf("steps[%d].ingredientId is required", i),
				apperrors.SlugIncorrectInput,
			)
		}
		if step.Proportion <= 0 {
			return apperrors.NewIncorrectInput(
				fmt.Sprintf("steps[%d].proportion must be positive", i),
				apperrors.SlugIncorrectInput,
			)
		}
		if _, err := s.ingredients.FindByID(ctx, step.IngredientID); errors.Is(err, store.ErrNotFound) {
			return apperrors.NewNotFound(
				fmt.Sprintf("ingredient %s not found", step.IngredientID),
				apperrors.SlugIngredientNotFound,
			)
		} else if err != nil {
			return err
		}
	}
	return nil
}
