package main

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

var rng = rand.New(rand.NewSource(time.Now().UnixNano()))

// AckStrategy defines how the simulated machine acknowledges a plan.
type AckStrategy interface {
	Ack(ctx context.Context, cli paho.Client, topic, commandID string)
}

// AutoAck reports success after an optional fixed delay.
type AutoAck struct {
	Delay time.Duration
}

// Ack implements AckStrategy.
func (a AutoAck) Ack(ctx context.Context, cli paho.Client, topic, commandID string) {
	if a.Delay > 0 {
		select {
		case <-time.After(a.Delay):
		case <-ctx.Done():
			return
		}
	}
	publishAck(cli, topic, commandID, true, "")
}

// RandomAck drops acknowledgments or reports pour failures with the
// configured probabilities, after an optional delay.
type RandomAck struct {
	Delay    time.Duration
	FailRate float64
	DropRate float64
}

// Ack implements AckStrategy.
func (r RandomAck) Ack(ctx context.Context, cli paho.Client, topic, commandID string) {
	if r.DropRate > 0 && rng.Float64() < r.DropRate {
		return
	}
	if r.Delay > 0 {
		select {
		case <-time.After(r.Delay):
		case <-ctx.Done():
			return
		}
	}
	if r.FailRate > 0 && rng.Float64() < r.FailRate {
		publishAck(cli, topic, commandID, false, "simulated pump jam")
		return
	}
	publishAck(cli, topic, commandID, true, "")
}

func publishAck(cli paho.Client, topic, commandID string, success bool, errMsg string) {
	payload, err := json.Marshal(struct {
		CommandID string `json:"commandId"`
		Success   bool   `json:"success"`
		Error     string `json:"error,omitempty"`
	}{CommandID: commandID, Success: success, Error: errMsg})
	if err != nil {
		log.Printf("marshal ack: %v", err)
		return
	}
	token := cli.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		log.Printf("ack publish timeout for %s", commandID)
		return
	}
	if err := token.Error(); err != nil {
		log.Printf("publish ack error for %s: %v", commandID, err)
	}
}
