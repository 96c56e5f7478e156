// Command simulator emulates the physical cocktail machine on an MQTT
// broker: it consumes dispense plans from the command topic, "pours" each
// step in real or accelerated time and publishes the acknowledgment the
// service waits for. Useful for running the full stack without hardware.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Config holds parameters for the simulator.
type Config struct {
	Broker       string
	ClientID     string
	CommandTopic string
	AckTopic     string
	Speedup      float64
	AckLatency   time.Duration
	FailRate     float64
	DropRate     float64
	Verbose      bool
}

func parseFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.Broker, "broker", "tcp://localhost:1883", "MQTT broker URL")
	flag.StringVar(&cfg.ClientID, "client-id", "machine-simulator", "MQTT client id")
	flag.StringVar(&cfg.CommandTopic, "command-topic", "machine/cocktail/make", "dispense plan topic")
	flag.StringVar(&cfg.AckTopic, "ack-topic", "machine/cocktail/ack", "acknowledgment topic")
	flag.Float64Var(&cfg.Speedup, "speedup", 1, "divide every pour duration by this factor")
	flag.DurationVar(&cfg.AckLatency, "ack-latency", 0, "extra delay before acknowledging")
	flag.Float64Var(&cfg.FailRate, "fail-rate", 0, "probability of reporting a failed pour")
	flag.Float64Var(&cfg.DropRate, "drop-rate", 0, "probability of never acknowledging")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "log each actuation")
	flag.Parse()
	return cfg
}

func (c Config) validate() error {
	if c.Speedup <= 0 {
		return errInvalidSpeedup
	}
	return nil
}

func main() {
	cfg := parseFlags()
	if err := cfg.validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli, err := newMQTTClient(cfg.Broker, cfg.ClientID)
	if err != nil {
		log.Fatalf("mqtt connect: %v", err)
	}
	defer cli.Disconnect(250)

	m := &Machine{
		Config: cfg,
		Ack:    RandomAck{Delay: cfg.AckLatency, FailRate: cfg.FailRate, DropRate: cfg.DropRate},
	}
	token := cli.Subscribe(cfg.CommandTopic, 1, func(_ paho.Client, msg paho.Message) {
		var cmd command
		if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
			log.Printf("bad command payload: %v", err)
			return
		}
		go m.Execute(ctx, cli, cmd)
	})
	if token.Wait() && token.Error() != nil {
		log.Fatalf("subscribe: %v", token.Error())
	}
	log.Printf("machine simulator listening on %s", cfg.CommandTopic)

	<-ctx.Done()
}

func newMQTTClient(broker, clientID string) (paho.Client, error) {
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID(clientID)
	opts.AutoReconnect = true
	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return cli, nil
}
