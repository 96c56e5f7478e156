// Package catalog manages ingredients and recipes.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quentinlb/cocktaild/core/apperrors"
	"github.com/quentinlb/cocktaild/core/logger"
	"github.com/quentinlb/cocktaild/core/model"
	"github.com/quentinlb/cocktaild/core/store"
)

// IngredientService is the CRUD surface for ingredients. Deletion is blocked
// while a recipe step or a dispenser slot still references the ingredient.
type IngredientService struct {
	ingredients store.IngredientStore
	recipes     store.RecipeStore
	slots       store.SlotStore
	log         logger.Logger
}

// NewIngredientService creates an IngredientService.
func NewIngredientService(ingredients store.IngredientStore, recipes store.RecipeStore, slots store.SlotStore, log logger.Logger) *IngredientService {
	return &IngredientService{ingredients: ingredients, recipes: recipes, slots: slots, log: log}
}

func (s *IngredientService) Find(ctx context.Context) ([]model.Ingredient, error) {
	return s.ingredients.Find(ctx)
}

func (s *IngredientService) FindByID(ctx context.Context, id string) (model.Ingredient, error) {
	ing, err := s.ingredients.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return model.Ingredient{}, apperrors.NewNotFound("ingredient not found", apperrors.SlugIngredientNotFound)
	}
	return ing, err
}

func (s *IngredientService) Create(ctx context.Context, ing model.Ingredient) (model.Ingredient, error) {
	if err := validateIngredient(ing); err != nil {
		return model.Ingredient{}, err
	}
	now := time.Now().UTC()
	ing.ID = uuid.NewString()
	ing.CreatedAt = now
	ing.UpdatedAt = now
	if err := s.ingredients.Create(ctx, ing); err != nil {
		return model.Ingredient{}, err
	}
	s.log.Infof("ingredient %s created (%s)", ing.ID, ing.Name)
	return ing, nil
}

func (s *IngredientService) Update(ctx context.Context, id string, ing model.Ingredient) (model.Ingredient, error) {
	if err := validateIngredient(ing); err != nil {
		return model.Ingredient{}, err
	}
	current, err := s.FindByID(ctx, id)
	if err != nil {
		return model.Ingredient{}, err
	}
	current.Name = ing.Name
	current.IsAlcohol = ing.IsAlcohol
	current.AlcoholDegree = ing.AlcoholDegree
	current.Viscosity = ing.Viscosity
	current.UpdatedAt = time.Now().UTC()
	if err := s.ingredients.Update(ctx, current); err != nil {
		return model.Ingredient{}, err
	}
	return current, nil
}

// Delete removes an ingredient unless it is still referenced.
func (s *IngredientService) Delete(ctx context.Context, id string) error {
	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}
	referenced, err := s.referencedBy(ctx, id)
	if err != nil {
		return err
	}
	if referenced != "" {
		return apperrors.NewForbidden(
			fmt.Sprintf("ingredient is still referenced by %s", referenced),
			apperrors.SlugIngredientReferenced,
		)
	}
	return s.ingredients.Delete(ctx, id)
}

// referencedBy names the first recipe or slot still using the ingredient.
func (s *IngredientService) referencedBy(ctx context.Context, id string) (string, error) {
	recipes, err := s.recipes.Find(ctx, store.RecipeFilter{})
	if err != nil {
		return "", err
	}
	for _, r := range recipes {
		for _, step := range r.Steps {
			if step.IngredientID == id {
				return fmt.Sprintf("recipe %s", r.Name), nil
			}
		}
	}
	slots, err := s.slots.Find(ctx)
	if err != nil {
		return "", err
	}
	for _, slot := range slots {
		if slot.IngredientID != nil && *slot.IngredientID == id {
			return fmt.Sprintf("slot %d", slot.Slot), nil
		}
	}
	return "", nil
}

func validateIngredient(ing model.Ingredient) error {
	if ing.Name == "" {
		return apperrors.NewIncorrectInput("name is required", apperrors.SlugIncorrectInput)
	}
	if ing.Viscosity <= 0 {
		return apperrors.NewIncorrectInput("viscosity must be positive", apperrors.SlugIncorrectInput)
	}
	if ing.AlcoholDegree < 0 || ing.AlcoholDegree > 100 {
		return apperrors.NewIncorrectInput("alcoholDegree must be between 0 and 100", apperrors.SlugIncorrectInput)
	}
	return nil
}
