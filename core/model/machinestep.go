package model

// MachineStep is one physical actuator command. It only exists for the
// duration of a dispense attempt and is never persisted.
type MachineStep struct {
	// StepID is the originating order step id suffixed with the 1-based
	// dose index, e.g. "step-3-2" for the second dose of step-3.
	StepID string `json:"stepId"`
	Slot   int    `json:"slot"`
	// Pressed is how long the actuator stays pressed, in seconds.
	Pressed float64 `json:"pressed"`
	// DelayAfter is the pause before the next command, in seconds.
	DelayAfter float64 `json:"delayAfter"`
	Position   float64 `json:"position"`
}
