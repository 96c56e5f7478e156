// Package plan compiles an order's steps into the sequence of physical
// actuator commands sent to the machine.
package plan

import (
	"fmt"
	"sort"

	"github.com/quentinlb/cocktaild/core/apperrors"
	"github.com/quentinlb/cocktaild/core/model"
)

// settleDelay is the fixed pause in seconds after the last dose of a step,
// applied instead of the refill delay since no further dose follows.
const settleDelay = 0.5

// doseEps absorbs float64 residue when the quantity is a decimal multiple of
// the cup volume (0.9 over a 0.3 cup leaves ~1e-16 behind); anything below it
// is a rounding artifact, not a dose.
const doseEps = 1e-9

// Compile turns order steps into machine steps given the current dispenser
// configuration and global timing settings.
//
// Each step is matched to the slot holding its ingredient. A quantity larger
// than the slot's measuring cup is split into several doses: the actuator
// presses once per dose and waits for the cup to refill in between. The whole
// compilation aborts on the first step whose ingredient has no usable slot;
// no partial plan is ever returned.
func Compile(steps []model.OrderStep, slots []model.DispenserSlot, setting model.Setting) ([]model.MachineStep, error) {
	ordered := make([]model.OrderStep, len(steps))
	copy(ordered, steps)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OrderIndex < ordered[j].OrderIndex
	})

	var machineSteps []model.MachineStep
	for _, step := range ordered {
		slot, ok := slotFor(step.Ingredient.ID, slots)
		if !ok {
			return nil, apperrors.NewForbidden(
				fmt.Sprintf("ingredient %s is not available", step.Ingredient.Name),
				apperrors.SlugIngredientNotAvailable,
			)
		}
		machineSteps = append(machineSteps, compileStep(step, slot, setting)...)
	}
	return machineSteps, nil
}

// slotFor returns the usable slot assigned the given ingredient. A slot with
// a nil or zero measuring cup volume is skipped even if the ingredient
// matches: dosing against it would either divide the pour into nothing or
// never terminate, so it counts as not available.
func slotFor(ingredientID string, slots []model.DispenserSlot) (model.DispenserSlot, bool) {
	for _, s := range slots {
		if s.Usable() && *s.IngredientID == ingredientID {
			return s, true
		}
	}
	return model.DispenserSlot{}, false
}

// compileStep splits one order step into doses bounded by the slot's
// measuring cup volume.
func compileStep(step model.OrderStep, slot model.DispenserSlot, setting model.Setting) []model.MachineStep {
	measure := *slot.MeasureVolume
	position := 0.0
	if slot.Position != nil {
		position = *slot.Position
	}

	var out []model.MachineStep
	remaining := step.Quantity
	for dose := 1; remaining > doseEps; dose++ {
		volume := remaining
		if volume > measure {
			volume = measure
		}
		remaining -= measure

		delay := settleDelay
		if remaining > doseEps {
			// The cup must refill before the next dose.
			delay = setting.DispenserFillingTime * measure
		}
		out = append(out, model.MachineStep{
			StepID:     fmt.Sprintf("%s-%d", step.ID, dose),
			Slot:       slot.Slot,
			Pressed:    volume * setting.DispenserEmptyingTime * step.Ingredient.Viscosity,
			DelayAfter: delay,
			Position:   position,
		})
	}
	return out
}
