// Package e2e exercises the full pipeline in process: HTTP surface, order
// lifecycle, dispense plan execution against a mock machine, and availability
// propagation. No broker or database is required.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quentinlb/cocktaild/api"
	"github.com/quentinlb/cocktaild/core/availability"
	"github.com/quentinlb/cocktaild/core/catalog"
	"github.com/quentinlb/cocktaild/core/dispenser"
	"github.com/quentinlb/cocktaild/core/events"
	"github.com/quentinlb/cocktaild/core/files"
	"github.com/quentinlb/cocktaild/core/model"
	"github.com/quentinlb/cocktaild/core/order"
	"github.com/quentinlb/cocktaild/infra/logger"
	"github.com/quentinlb/cocktaild/infra/machine"
	"github.com/quentinlb/cocktaild/infra/memstore"
	"github.com/quentinlb/cocktaild/internal/eventbus"
)

type pipeline struct {
	handler http.Handler
	stores  *memstore.Stores
	machine *machine.MockClient
}

// startPipeline assembles and starts the whole service on in-memory stores.
func startPipeline(t *testing.T) *pipeline {
	t.Helper()
	ms := memstore.New()
	log := logger.NopLogger{}
	mock := machine.NewMockClient()

	orderBus := eventbus.New[events.OrderCreated]()
	slotBus := eventbus.New[events.SlotChanged]()
	recipeBus := eventbus.New[events.RecipesChanged]()

	settings := dispenser.NewSettingService(ms.Settings)
	controller, err := order.NewController(ms.Orders, ms.Slots, settings, mock, time.Second, log, nil)
	require.NoError(t, err)
	engine := availability.NewEngine(ms.Slots, ms.Recipes, log, nil)

	fileSvc, err := files.NewService(ms.Files, t.TempDir(), log)
	require.NoError(t, err)

	srv := api.NewServer(
		catalog.NewIngredientService(ms.Ingredients, ms.Recipes, ms.Slots, log),
		catalog.NewRecipeService(ms.Recipes, ms.Ingredients, recipeBus, log),
		dispenser.NewSlotService(ms.Slots, ms.Ingredients, slotBus, log),
		settings,
		order.NewService(ms.Orders, ms.Recipes, ms.Ingredients, ms.Slots, orderBus, log),
		controller,
		fileSvc,
		nil,
		log,
	)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go controller.Run(ctx, orderBus.Subscribe())
	go engine.Run(ctx, slotBus.Subscribe(), recipeBus.Subscribe())

	return &pipeline{handler: srv.Handler(), stores: ms, machine: mock}
}

func (p *pipeline) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	p.handler.ServeHTTP(rec, req)
	if out != nil && rec.Code < 300 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec.Code
}

func TestOrderLifecycleEndToEnd(t *testing.T) {
	p := startPipeline(t)

	var gin model.Ingredient
	require.Equal(t, http.StatusCreated,
		p.do(t, http.MethodPost, "/api/v1/ingredients", model.Ingredient{Name: "Gin", IsAlcohol: true, AlcoholDegree: 40, Viscosity: 1}, &gin))

	var recipe model.Recipe
	require.Equal(t, http.StatusCreated,
		p.do(t, http.MethodPost, "/api/v1/recipes", model.Recipe{
			Name:  "Martini",
			Steps: []model.RecipeStep{{IngredientID: gin.ID, Proportion: 1}},
		}, &recipe))
	assert.False(t, recipe.IsAvailable)

	// Assigning the ingredient to a calibrated slot must flip the recipe
	// to available through the propagation engine.
	measure := 5.0
	require.Equal(t, http.StatusCreated,
		p.do(t, http.MethodPost, "/api/v1/dispenser-slots", model.DispenserSlot{
			Slot: 1, IngredientID: &gin.ID, MeasureVolume: &measure,
		}, nil))
	assert.Eventually(t, func() bool {
		var got model.Recipe
		p.do(t, http.MethodGet, "/api/v1/recipes/"+recipe.ID, nil, &got)
		return got.IsAvailable
	}, 2*time.Second, 10*time.Millisecond, "recipe never became available")

	var o model.Order
	require.Equal(t, http.StatusCreated,
		p.do(t, http.MethodPost, "/api/v1/orders", model.OrderRequest{
			RecipeID: recipe.ID,
			Steps:    []model.OrderStepRequest{{IngredientID: gin.ID, Quantity: 12}},
		}, &o))

	assert.Eventually(t, func() bool {
		var got model.Order
		p.do(t, http.MethodGet, "/api/v1/orders/"+o.ID, nil, &got)
		return got.Status == model.OrderDone
	}, 2*time.Second, 10*time.Millisecond, "order never completed")

	// 12 units through a 5-unit measuring cup takes three actuations.
	require.Equal(t, 1, p.machine.Calls())
	assert.Len(t, p.machine.LastPlan(), 3)

	var final model.Order
	p.do(t, http.MethodGet, "/api/v1/orders/"+o.ID, nil, &final)
	assert.Equal(t, 1.0, final.Progress)
	for _, st := range final.Steps {
		assert.Equal(t, model.OrderDone, st.Status)
	}
}

func TestFailedPourEndToEnd(t *testing.T) {
	p := startPipeline(t)
	p.machine.Fail = true

	var gin model.Ingredient
	require.Equal(t, http.StatusCreated,
		p.do(t, http.MethodPost, "/api/v1/ingredients", model.Ingredient{Name: "Gin", Viscosity: 1}, &gin))
	measure := 5.0
	require.Equal(t, http.StatusCreated,
		p.do(t, http.MethodPost, "/api/v1/dispenser-slots", model.DispenserSlot{
			Slot: 1, IngredientID: &gin.ID, MeasureVolume: &measure,
		}, nil))
	var recipe model.Recipe
	require.Equal(t, http.StatusCreated,
		p.do(t, http.MethodPost, "/api/v1/recipes", model.Recipe{
			Name:  "Martini",
			Steps: []model.RecipeStep{{IngredientID: gin.ID, Proportion: 1}},
		}, &recipe))

	var o model.Order
	require.Equal(t, http.StatusCreated,
		p.do(t, http.MethodPost, "/api/v1/orders", model.OrderRequest{
			RecipeID: recipe.ID,
			Steps:    []model.OrderStepRequest{{IngredientID: gin.ID, Quantity: 5}},
		}, &o))

	assert.Eventually(t, func() bool {
		var got model.Order
		p.do(t, http.MethodGet, "/api/v1/orders/"+o.ID, nil, &got)
		return got.Status == model.OrderFailed
	}, 2*time.Second, 10*time.Millisecond, "order never failed")

	var final model.Order
	p.do(t, http.MethodGet, "/api/v1/orders/"+o.ID, nil, &final)
	assert.NotEmpty(t, final.FailureReason)

	// A failed order is terminal, so a new order can be placed.
	require.Equal(t, http.StatusCreated,
		p.do(t, http.MethodPost, "/api/v1/orders", model.OrderRequest{
			RecipeID: recipe.ID,
			Steps:    []model.OrderStepRequest{{IngredientID: gin.ID, Quantity: 5}},
		}, nil))
}

func TestUnassigningSlotRevokesAvailability(t *testing.T) {
	p := startPipeline(t)

	var gin model.Ingredient
	require.Equal(t, http.StatusCreated,
		p.do(t, http.MethodPost, "/api/v1/ingredients", model.Ingredient{Name: "Gin", Viscosity: 1}, &gin))
	measure := 5.0
	var slot model.DispenserSlot
	require.Equal(t, http.StatusCreated,
		p.do(t, http.MethodPost, "/api/v1/dispenser-slots", model.DispenserSlot{
			Slot: 1, IngredientID: &gin.ID, MeasureVolume: &measure,
		}, &slot))
	var recipe model.Recipe
	require.Equal(t, http.StatusCreated,
		p.do(t, http.MethodPost, "/api/v1/recipes", model.Recipe{
			Name:  "Martini",
			Steps: []model.RecipeStep{{IngredientID: gin.ID, Proportion: 1}},
		}, &recipe))

	assert.Eventually(t, func() bool {
		var got model.Recipe
		p.do(t, http.MethodGet, "/api/v1/recipes/"+recipe.ID, nil, &got)
		return got.IsAvailable
	}, 2*time.Second, 10*time.Millisecond)

	slot.IngredientID = nil
	require.Equal(t, http.StatusOK,
		p.do(t, http.MethodPut, "/api/v1/dispenser-slots/"+slot.ID, slot, nil))

	assert.Eventually(t, func() bool {
		var got model.Recipe
		p.do(t, http.MethodGet, "/api/v1/recipes/"+recipe.ID, nil, &got)
		return !got.IsAvailable
	}, 2*time.Second, 10*time.Millisecond, "availability was not revoked")
}
