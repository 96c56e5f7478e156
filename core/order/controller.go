package order

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/quentinlb/cocktaild/core/apperrors"
	"github.com/quentinlb/cocktaild/core/events"
	"github.com/quentinlb/cocktaild/core/logger"
	"github.com/quentinlb/cocktaild/core/machine"
	"github.com/quentinlb/cocktaild/core/metrics"
	"github.com/quentinlb/cocktaild/core/model"
	"github.com/quentinlb/cocktaild/core/plan"
	"github.com/quentinlb/cocktaild/core/store"
)

// DefaultMachineTimeout bounds the machine actuation call when no explicit
// timeout is configured. A physical machine can hang mid-pour.
const DefaultMachineTimeout = 60 * time.Second

// SettingSource provides the global dispenser timing settings.
type SettingSource interface {
	Get(ctx context.Context) (model.Setting, error)
}

// Controller drives CREATED orders through their status lifecycle. It is the
// sole writer of order status after creation.
type Controller struct {
	orders   store.OrderStore
	slots    store.SlotStore
	settings SettingSource
	machine  machine.Client
	timeout  time.Duration
	log      logger.Logger
	sink     metrics.MetricsSink

	// mu serializes access to the physical machine: an ad-hoc direct pour
	// must not interleave its actuations with an in-flight order.
	mu sync.Mutex
}

// NewController creates a Controller. A zero timeout falls back to
// DefaultMachineTimeout and a nil sink disables metrics.
func NewController(
	orders store.OrderStore,
	slots store.SlotStore,
	settings SettingSource,
	client machine.Client,
	timeout time.Duration,
	log logger.Logger,
	sink metrics.MetricsSink,
) (*Controller, error) {
	if orders == nil || slots == nil || settings == nil || client == nil {
		return nil, fmt.Errorf("order: nil parameter provided to NewController")
	}
	if timeout <= 0 {
		timeout = DefaultMachineTimeout
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Controller{
		orders:   orders,
		slots:    slots,
		settings: settings,
		machine:  client,
		timeout:  timeout,
		log:      log,
		sink:     sink,
	}, nil
}

// Run consumes OrderCreated notifications until the context is canceled.
// The channel is at-least-once: Dispatch tolerates redeliveries.
func (c *Controller) Run(ctx context.Context, orderEvents <-chan events.OrderCreated) {
	for {
		select {
		case ev := <-orderEvents:
			if err := c.Dispatch(ctx, ev.OrderID); err != nil {
				c.log.Errorf("dispatch order %s: %v", ev.OrderID, err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Dispatch moves one order from CREATED through IN_PROGRESS to a terminal
// status. Called with an order that is no longer CREATED it does nothing,
// which makes duplicate change notifications harmless.
func (c *Controller) Dispatch(ctx context.Context, orderID string) error {
	changed, err := c.orders.TransitionStatus(ctx, orderID, model.OrderCreated, model.OrderInProgress)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("order %s vanished before dispatch", orderID)
		}
		return err
	}
	if !changed {
		c.log.Debugf("order %s already dispatched, ignoring notification", orderID)
		return nil
	}
	c.log.Infof("order %s -> %s", orderID, model.OrderInProgress)

	o, err := c.orders.FindByID(ctx, orderID)
	if err != nil {
		// The order is already IN_PROGRESS and a redelivered notification
		// would no longer match, so park it in FAILED rather than strand it.
		c.log.Errorf("order %s unreadable after transition: %v", orderID, err)
		if _, tErr := c.orders.TransitionStatus(ctx, orderID, model.OrderInProgress, model.OrderFailed); tErr != nil {
			c.log.Errorf("mark order %s failed: %v", orderID, tErr)
		}
		return err
	}

	machineSteps, err := c.compile(ctx, o.Steps)
	if err != nil {
		c.finalize(ctx, o, model.OrderFailed, err)
		return nil
	}

	start := time.Now()
	execErr := c.execute(ctx, machineSteps)
	duration := time.Since(start)

	status := model.OrderDone
	if execErr != nil {
		status = model.OrderFailed
		// The machine call is never retried; the failure surfaces through
		// the order's terminal status.
		execErr = apperrors.NewUnknown(execErr.Error(), apperrors.SlugMachineCallFailed)
	}
	c.finalize(ctx, o, status, execErr)

	if err := c.sink.RecordDispense(metrics.DispenseResult{
		OrderID:  o.ID,
		Status:   status,
		Steps:    len(machineSteps),
		Duration: duration,
	}); err != nil {
		c.log.Warnf("metrics: %v", err)
	}
	return nil
}

// MakeCocktail compiles and executes caller-assembled steps without touching
// order persistence. It shares the exact compile and actuation path with
// Dispatch and deliberately skips the single-order invariant: it is a
// maintenance entry point for direct operation of the machine.
func (c *Controller) MakeCocktail(ctx context.Context, steps []model.OrderStep) error {
	if err := validateSteps(steps); err != nil {
		return err
	}
	machineSteps, err := c.compile(ctx, steps)
	if err != nil {
		return err
	}
	if err := c.execute(ctx, machineSteps); err != nil {
		return apperrors.NewUnknown(err.Error(), apperrors.SlugMachineCallFailed)
	}
	return nil
}

// compile loads the live dispenser configuration and settings and produces
// the machine plan. Both Dispatch and MakeCocktail go through here so the
// two paths can never diverge.
func (c *Controller) compile(ctx context.Context, steps []model.OrderStep) ([]model.MachineStep, error) {
	slots, err := c.slots.Find(ctx)
	if err != nil {
		return nil, err
	}
	setting, err := c.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	return plan.Compile(steps, slots, setting)
}

func (c *Controller) execute(ctx context.Context, steps []model.MachineStep) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.machine.MakeCocktail(callCtx, steps)
}

// finalize writes the terminal status, progress and per-step statuses.
func (c *Controller) finalize(ctx context.Context, o model.Order, status model.OrderStatus, cause error) {
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	stepStatus := model.OrderDone
	if status == model.OrderFailed {
		stepStatus = model.OrderFailed
		o.FailureReason = cause.Error()
		c.log.Errorf("order %s -> %s: %v", o.ID, status, cause)
	} else {
		o.Progress = 1
		c.log.Infof("order %s -> %s", o.ID, status)
	}
	for i := range o.Steps {
		o.Steps[i].Status = stepStatus
	}
	if err := c.orders.Save(ctx, o); err != nil {
		c.log.Errorf("persist order %s final status: %v", o.ID, err)
	}
}

func validateSteps(steps []model.OrderStep) error {
	if len(steps) == 0 {
		return apperrors.NewIncorrectInput("at least one step is required", apperrors.SlugIncorrectInput)
	}
	for i, step := range steps {
		if step.Ingredient.ID == "" {
			return apperrors.NewIncorrectInput(
				fmt.Sprintf("steps[%d].ingredient.id is required", i),
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
