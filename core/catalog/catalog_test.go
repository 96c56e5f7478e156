package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quentinlb/cocktaild/core/apperrors"
	"github.com/quentinlb/cocktaild/core/events"
	"github.com/quentinlb/cocktaild/core/model"
	"github.com/quentinlb/cocktaild/infra/logger"
	"github.com/quentinlb/cocktaild/infra/memstore"
	"github.com/quentinlb/cocktaild/internal/eventbus"
)

func ptr[T any](v T) *T { return &v }

func TestIngredientCreateAndValidation(t *testing.T) {
	ms := memstore.New()
	svc := NewIngredientService(ms.Ingredients, ms.Recipes, ms.Slots, logger.NopLogger{})
	ctx := context.Background()

	ing, err := svc.Create(ctx, model.Ingredient{Name: "Gin", IsAlcohol: true, AlcoholDegree: 40, Viscosity: 1})
	require.NoError(t, err)
	assert.NotEmpty(t, ing.ID)
	assert.False(t, ing.CreatedAt.IsZero())

	for _, bad := range []model.Ingredient{
		{Viscosity: 1},
		{Name: "Syrup", Viscosity: 0},
		{Name: "Rum", Viscosity: 1, AlcoholDegree: 120},
	} {
		_, err := svc.Create(ctx, bad)
		require.Error(t, err)
		assert.Equal(t, apperrors.CategoryIncorrectInput, apperrors.As(err).Category)
	}
}

func TestIngredientDeleteBlockedWhileReferenced(t *testing.T) {
	ms := memstore.New()
	svc := NewIngredientService(ms.Ingredients, ms.Recipes, ms.Slots, logger.NopLogger{})
	ctx := context.Background()

	ing, err := svc.Create(ctx, model.Ingredient{Name: "Gin", Viscosity: 1})
	require.NoError(t, err)

	require.NoError(t, ms.Recipes.Create(ctx, model.Recipe{
		ID: "r1", Name: "Martini",
		Steps: []model.RecipeStep{{ID: "s1", IngredientID: ing.ID, Proportion: 1}},
	}))
	err = svc.Delete(ctx, ing.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.SlugIngredientReferenced, apperrors.As(err).Slug)

	require.NoError(t, ms.Recipes.Delete(ctx, "r1"))
	require.NoError(t, ms.Slots.Create(ctx, model.DispenserSlot{ID: "sl1", Slot: 1, IngredientID: ptr(ing.ID)}))
	err = svc.Delete(ctx, ing.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CategoryForbidden, apperrors.As(err).Category)

	require.NoError(t, ms.Slots.Delete(ctx, "sl1"))
	require.NoError(t, svc.Delete(ctx, ing.ID))
}

func TestRecipeCreatePublishesChangeAndStartsUnavailable(t *testing.T) {
	ms := memstore.New()
	ctx := context.Background()
	require.NoError(t, ms.Ingredients.Create(ctx, model.Ingredient{ID: "gin", Name: "Gin", Viscosity: 1}))

	bus := eventbus.New[events.RecipesChanged]()
	sub := bus.Subscribe()
	svc := NewRecipeService(ms.Recipes, ms.Ingredients, bus, logger.NopLogger{})

	r, err := svc.Create(ctx, model.Recipe{
		Name:        "Martini",
		IsAvailable: true, // client-provided value must be ignored
		Steps:       []model.RecipeStep{{IngredientID: "gin", Proportion: 1, OrderIndex: 0}},
	})
	require.NoError(t, err)
	assert.False(t, r.IsAvailable, "availability is derived, never client-authored")
	assert.NotEmpty(t, r.Steps[0].ID)

	select {
	case ev := <-sub:
		assert.Equal(t, r.ID, ev.RecipeID)
	default:
		t.Fatal("no RecipesChanged event published")
	}
}

func TestRecipeValidationRejectsUnknownIngredient(t *testing.T) {
	ms := memstore.New()
	svc := NewRecipeService(ms.Recipes, ms.Ingredients, nil, logger.NopLogger{})

	_, err := svc.Create(context.Background(), model.Recipe{
		Name:  "Ghost",
		Steps: []model.RecipeStep{{IngredientID: "ectoplasm", Proportion: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.SlugIngredientNotFound, apperrors.As(err).Slug)
}

func TestRecipeUpdateAndDelete(t *testing.T) {
	ms := memstore.New()
	ctx := context.Background()
	require.NoError(t, ms.Ingredients.Create(ctx, model.Ingredient{ID: "gin", Name: "Gin", Viscosity: 1}))
	bus := eventbus.New[events.RecipesChanged]()
	sub := bus.Subscribe()
	svc := NewRecipeService(ms.Recipes, ms.Ingredients, bus, logger.NopLogger{})

	r, err := svc.Create(ctx, model.Recipe{Name: "Martini", Steps: []model.RecipeStep{{IngredientID: "gin", Proportion: 1}}})
	require.NoError(t, err)
	<-sub

	r.Description = "dry"
	updated, err := svc.Update(ctx, r.ID, r)
	require.NoError(t, err)
	assert.Equal(t, "dry", updated.Description)
	<-sub

	require.NoError(t, svc.Delete(ctx, r.ID))
	select {
	case <-sub:
	default:
		t.Fatal("delete must publish a change event")
	}

	_, err = svc.FindByID(ctx, r.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.SlugRecipeNotFound, apperrors.As(err).Slug)
}
