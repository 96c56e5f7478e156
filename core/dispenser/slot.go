// Package dispenser manages the per-slot machine configuration and the
// global timing settings.
package dispenser

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

// SlotService is the CRUD surface for dispenser slots. Every committed write
// publishes a SlotChanged event driving the availability engine.
type SlotService struct {
	slots       store.SlotStore
	ingredients store.IngredientStore
	bus         *eventbus.Bus[events.SlotChanged]
	log         logger.Logger
}

// NewSlotService creates a SlotService.
func NewSlotService(slots store.SlotStore, ingredients store.IngredientStore, bus *eventbus.Bus[events.SlotChanged], log logger.Logger) *SlotService {
	return &SlotService{slots: slots, ingredients: ingredients, bus: bus, log: log}
}

func (s *SlotService) Find(ctx context.Context) ([]model.DispenserSlot, error) {
	return s.slots.Find(ctx)
}

func (s *SlotService) FindByID(ctx context.Context, id string) (model.DispenserSlot, error) {
	slot, err := s.slots.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return model.DispenserSlot{}, apperrors.NewNotFound("dispenser slot not found", apperrors.SlugDispenserSlotNotFound)
	}
	return slot, err
}

func (s *SlotService) Create(ctx context.Context, slot model.DispenserSlot) (model.DispenserSlot, error) {
	if err := s.validateSlot(ctx, slot); err != nil {
		return model.DispenserSlot{}, err
	}
	slot.ID = uuid.NewString()
	if err := s.slots.Create(ctx, slot); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return model.DispenserSlot{}, apperrors.NewDuplicate(
				fmt.Sprintf("slot %d already exists", slot.Slot),
				apperrors.SlugDispenserSlotDuplicate,
			)
		}
		return model.DispenserSlot{}, err
	}
	s.publish(slot)
	return slot, nil
}

func (s *SlotService) Update(ctx context.Context, id string, slot model.DispenserSlot) (model.DispenserSlot, error) {
	if err := s.validateSlot(ctx, slot); err != nil {
		return model.DispenserSlot{}, err
	}
	current, err := s.FindByID(ctx, id)
	if err != nil {
		return model.DispenserSlot{}, err
	}
	current.Slot = slot.Slot
	current.IngredientID = slot.IngredientID
	current.MeasureVolume = slot.MeasureVolume
	current.Position = slot.Position
	if err := s.slots.Update(ctx, current); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return model.DispenserSlot{}, apperrors.NewDuplicate(
				fmt.Sprintf("slot %d already exists", slot.Slot),
				apperrors.SlugDispenserSlotDuplicate,
			)
		}
		return model.DispenserSlot{}, err
	}
	s.publish(current)
	return current, nil
}

func (s *SlotService) Delete(ctx context.Context, id string) error {
	slot, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.slots.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(slot)
	return nil
}

func (s *SlotService) publish(slot model.DispenserSlot) {
	s.log.Debugf("slot %d configuration changed", slot.Slot)
	if s.bus != nil {
		s.bus.Publish(events.SlotChanged{SlotID: slot.ID, At: time.Now().UTC()})
	}
}

func (s *SlotService) validateSlot(ctx context.Context, slot model.DispenserSlot) error {
	if slot.Slot <= 0 {
		return apperrors.NewIncorrectInput("slot number must be positive", apperrors.SlugIncorrectInput)
	}
	if slot.MeasureVolume != nil && *slot.MeasureVolume < 0 {
		return apperrors.NewIncorrectInput("measureVolume must not be negative", apperrors.SlugIncorrectInput)
	}
	if slot.IngredientID != nil {
		if _, err := s.ingredients.FindByID(ctx, *slot.IngredientID); errors.Is(err, store.ErrNotFound) {
			return apperrors.NewNotFound(
				fmt.Sprintf("ingredient %s not found", *slot.IngredientID),
				apperrors.SlugIngredientNotFound,
			)
		} else if err != nil {
			return err
		}
	}
	return nil
}
