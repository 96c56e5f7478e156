package main

import (
	"context"
	"errors"
	"log"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

var errInvalidSpeedup = errors.New("speedup must be positive")

// command mirrors the wire payload the service publishes.
type command struct {
	CommandID string `json:"commandId"`
	Steps     []step `json:"steps"`
}

type step struct {
	StepID     string  `json:"stepId"`
	Slot       int     `json:"slot"`
	Pressed    float64 `json:"pressed"`
	DelayAfter float64 `json:"delayAfter"`
	Position   float64 `json:"position"`
}

// Machine executes dispense plans in simulated time.
type Machine struct {
	Config Config
	Ack    AckStrategy
}

// Execute pours every step of the plan, then acknowledges. Durations are
// divided by the configured speedup so a full cocktail can run in
// milliseconds during development.
func (m *Machine) Execute(ctx context.Context, cli paho.Client, cmd command) {
	for _, st := range cmd.Steps {
		d := m.stepDuration(st)
		if m.Config.Verbose {
			log.Printf("cmd %s: slot %d pressed %.1fs (simulated %s)", cmd.CommandID, st.Slot, st.Pressed, d)
		}
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return
		}
	}
	m.Ack.Ack(ctx, cli, m.Config.AckTopic, cmd.CommandID)
}

func (m *Machine) stepDuration(st step) time.Duration {
	seconds := (st.Pressed + st.DelayAfter) / m.Config.Speedup
	return time.Duration(seconds * float64(time.Second))
}
