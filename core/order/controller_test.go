package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quentinlb/cocktaild/core/apperrors"
	"github.com/quentinlb/cocktaild/core/events"
	"github.com/quentinlb/cocktaild/core/model"
	"github.com/quentinlb/cocktaild/core/store"
	"github.com/quentinlb/cocktaild/infra/logger"
	"github.com/quentinlb/cocktaild/infra/machine"
	"github.com/quentinlb/cocktaild/infra/memstore"
)

func ptr[T any](v T) *T { return &v }

type fixedSettings struct{ s model.Setting }

func (f fixedSettings) Get(context.Context) (model.Setting, error) { return f.s, nil }

func seedSlots(t *testing.T, ms *memstore.Stores) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, ms.Slots.Create(ctx, model.DispenserSlot{
		ID: "slot-1", Slot: 1, IngredientID: ptr("gin"), MeasureVolume: ptr(5.0), Position: ptr(1.0),
	}))
	require.NoError(t, ms.Slots.Create(ctx, model.DispenserSlot{
		ID: "slot-2", Slot: 2, IngredientID: ptr("tonic"), MeasureVolume: ptr(10.0), Position: ptr(2.0),
	}))
}

func seedOrder(t *testing.T, ms *memstore.Stores) model.Order {
	t.Helper()
	o := model.Order{
		ID:     "o1",
		Status: model.OrderCreated,
		Steps: []model.OrderStep{
			{ID: "s1", Ingredient: model.IngredientSnapshot{ID: "gin", Name: "gin", Viscosity: 1}, Quantity: 12, Status: model.OrderCreated, OrderIndex: 0},
			{ID: "s2", Ingredient: model.IngredientSnapshot{ID: "tonic", Name: "tonic", Viscosity: 1}, Quantity: 8, Status: model.OrderCreated, OrderIndex: 1},
		},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, ms.Orders.Create(context.Background(), o))
	return o
}

func newController(t *testing.T, ms *memstore.Stores, client *machine.MockClient, timeout time.Duration) *Controller {
	t.Helper()
	c, err := NewController(
		ms.Orders, ms.Slots,
		fixedSettings{model.Setting{DispenserEmptyingTime: 2, DispenserFillingTime: 3}},
		client, timeout, logger.NopLogger{}, nil,
	)
	require.NoError(t, err)
	return c
}

func TestDispatchHappyPath(t *testing.T) {
	ms := memstore.New()
	seedSlots(t, ms)
	seedOrder(t, ms)
	client := machine.NewMockClient()
	c := newController(t, ms, client, 0)

	require.NoError(t, c.Dispatch(context.Background(), "o1"))

	got, err := ms.Orders.FindByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, model.OrderDone, got.Status)
	assert.InDelta(t, 1, got.Progress, 1e-9)
	for _, step := range got.Steps {
		assert.Equal(t, model.OrderDone, step.Status)
	}

	// 12/5 gin splits into 3 doses, 8/10 tonic into 1.
	require.Equal(t, 1, client.Calls())
	assert.Len(t, client.LastPlan(), 4)
}

func TestDispatchIsIdempotentOnRedelivery(t *testing.T) {
	ms := memstore.New()
	seedSlots(t, ms)
	seedOrder(t, ms)
	client := machine.NewMockClient()
	c := newController(t, ms, client, 0)

	require.NoError(t, c.Dispatch(context.Background(), "o1"))
	require.NoError(t, c.Dispatch(context.Background(), "o1"))

	assert.Equal(t, 1, client.Calls(), "redelivered notification must not re-actuate")
	got, _ := ms.Orders.FindByID(context.Background(), "o1")
	assert.Equal(t, model.OrderDone, got.Status)
}

// flakyOrderStore fails reads on demand while delegating everything else.
type flakyOrderStore struct {
	store.OrderStore
	findByIDErr error
}

func (f *flakyOrderStore) FindByID(ctx context.Context, id string) (model.Order, error) {
	if f.findByIDErr != nil {
		return model.Order{}, f.findByIDErr
	}
	return f.OrderStore.FindByID(ctx, id)
}

func TestDispatchParksOrderFailedWhenReadFailsAfterTransition(t *testing.T) {
	ms := memstore.New()
	seedSlots(t, ms)
	seedOrder(t, ms)
	flaky := &flakyOrderStore{OrderStore: ms.Orders, findByIDErr: errors.New("store hiccup")}
	client := machine.NewMockClient()
	c, err := NewController(
		flaky, ms.Slots,
		fixedSettings{model.Setting{DispenserEmptyingTime: 2, DispenserFillingTime: 3}},
		client, 0, logger.NopLogger{}, nil,
	)
	require.NoError(t, err)

	require.Error(t, c.Dispatch(context.Background(), "o1"))

	// The order must not stay IN_PROGRESS: a redelivered notification would
	// no longer match the CREATED->IN_PROGRESS transition.
	got, err := ms.Orders.FindByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, model.OrderFailed, got.Status)
	assert.Equal(t, 0, client.Calls())
}

func TestDispatchFailsWhenCompilationFails(t *testing.T) {
	ms := memstore.New()
	// No slots at all: compilation must fail before any actuation.
	seedOrder(t, ms)
	client := machine.NewMockClient()
	c := newController(t, ms, client, 0)

	require.NoError(t, c.Dispatch(context.Background(), "o1"))

	got, _ := ms.Orders.FindByID(context.Background(), "o1")
	assert.Equal(t, model.OrderFailed, got.Status)
	assert.Contains(t, got.FailureReason, "not available")
	assert.Zero(t, client.Calls(), "no partial dispense on compile failure")
}

func TestDispatchFailsWhenMachineFails(t *testing.T) {
	ms := memstore.New()
	seedSlots(t, ms)
	seedOrder(t, ms)
	client := machine.NewMockClient()
	client.Fail = true
	c := newController(t, ms, client, 0)

	require.NoError(t, c.Dispatch(context.Background(), "o1"))

	got, _ := ms.Orders.FindByID(context.Background(), "o1")
	assert.Equal(t, model.OrderFailed, got.Status)
	assert.Contains(t, got.FailureReason, "machine failure")
	for _, step := range got.Steps {
		assert.Equal(t, model.OrderFailed, step.Status)
	}
}

func TestDispatchTimesOutOnHangingMachine(t *testing.T) {
	ms := memstore.New()
	seedSlots(t, ms)
	seedOrder(t, ms)
	client := machine.NewMockClient()
	client.Hang = true
	c := newController(t, ms, client, 20*time.Millisecond)

	require.NoError(t, c.Dispatch(context.Background(), "o1"))

	got, _ := ms.Orders.FindByID(context.Background(), "o1")
	assert.Equal(t, model.OrderFailed, got.Status)
}

func TestRunConsumesEventsUntilCancel(t *testing.T) {
	ms := memstore.New()
	seedSlots(t, ms)
	seedOrder(t, ms)
	client := machine.NewMockClient()
	c := newController(t, ms, client, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	ch := make(chan events.OrderCreated, 1)
	go func() {
		c.Run(ctx, ch)
		close(done)
	}()
	ch <- events.OrderCreated{OrderID: "o1"}

	assert.Eventually(t, func() bool {
		got, err := ms.Orders.FindByID(context.Background(), "o1")
		return err == nil && got.Status == model.OrderDone
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on context cancel")
	}
}

func TestMakeCocktailDirect(t *testing.T) {
	ms := memstore.New()
	seedSlots(t, ms)
	client := machine.NewMockClient()
	c := newController(t, ms, client, 0)

	steps := []model.OrderStep{
		{ID: "d1", Ingredient: model.IngredientSnapshot{ID: "gin", Name: "gin", Viscosity: 1}, Quantity: 5, OrderIndex: 0},
	}
	require.NoError(t, c.MakeCocktail(context.Background(), steps))
	require.Equal(t, 1, client.Calls())

	plan := client.LastPlan()
	require.Len(t, plan, 1)
	assert.Equal(t, "d1-1", plan[0].StepID)
	assert.InDelta(t, 10, plan[0].Pressed, 1e-9)
	assert.InDelta(t, 0.5, plan[0].DelayAfter, 1e-9)
}

func TestMakeCocktailValidatesInput(t *testing.T) {
	ms := memstore.New()
	seedSlots(t, ms)
	c := newController(t, ms, machine.NewMockClient(), 0)

	err := c.MakeCocktail(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CategoryIncorrectInput, apperrors.As(err).Category)

	err = c.MakeCocktail(context.Background(), []model.OrderStep{
		{ID: "d1", Ingredient: model.IngredientSnapshot{ID: "gin"}, Quantity: -1},
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CategoryIncorrectInput, apperrors.As(err).Category)
}

func TestMakeCocktailUnavailableIngredient(t *testing.T) {
	ms := memstore.New()
	seedSlots(t, ms)
	c := newController(t, ms, machine.NewMockClient(), 0)

	err := c.MakeCocktail(context.Background(), []model.OrderStep{
		{ID: "d1", Ingredient: model.IngredientSnapshot{ID: "absinthe", Name: "absinthe"}, Quantity: 2},
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.SlugIngredientNotAvailable, apperrors.As(err).Slug)
}
