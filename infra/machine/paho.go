// Package machine implements the machine client over MQTT using Eclipse
// Paho. The controller publishes the compiled plan on the command topic and
// the machine firmware answers on the ack topic once the cocktail is poured.
package machine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	coremachine "github.com/quentinlb/cocktaild/core/machine"
	"github.com/quentinlb/cocktaild/core/model"
	"github.com/quentinlb/cocktaild/infra/logger"
)

// Client mirrors the core machine.Client interface.
type Client = coremachine.Client

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker       string `json:"broker"`
	ClientID     string `json:"client_id"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	CommandTopic string `json:"command_topic"`
	AckTopic     string `json:"ack_topic"`
	QoS          byte   `json:"qos"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "cocktaild"
	}
	if c.CommandTopic == "" {
		c.CommandTopic = "machine/cocktail/make"
	}
	if c.AckTopic == "" {
		c.AckTopic = "machine/cocktail/ack"
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("machine: broker is required")
	}
	return nil
}

// command is the wire payload sent to the machine.
type command struct {
	CommandID string              `json:"commandId"`
	Steps     []model.MachineStep `json:"steps"`
}

// ack is the wire payload the machine answers with.
type ack struct {
	CommandID string `json:"commandId"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// PahoClient implements the machine client over an MQTT broker.
type PahoClient struct {
	cli          pahoClient
	commandTopic string
	qos          byte
	logger       logger.Logger

	mu       sync.Mutex
	ackChans map[string]chan ack
}

// NewPahoClient connects to the MQTT broker and subscribes to the ack topic.
func NewPahoClient(cfg Config) (*PahoClient, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.New("machine_client")
	pc := &PahoClient{
		commandTopic: cfg.CommandTopic,
		qos:          cfg.QoS,
		logger:       log,
		ackChans:     make(map[string]chan ack),
	}

	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if token := c.Subscribe(cfg.AckTopic, cfg.QoS, pc.onAck); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	pc.cli = c
	return pc, nil
}

// MakeCocktail publishes the plan and blocks until the machine acknowledges
// it or the context expires.
func (p *PahoClient) MakeCocktail(ctx context.Context, steps []model.MachineStep) error {
	cmd := command{CommandID: uuid.NewString(), Steps: steps}
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}

	ch := make(chan ack, 1)
	p.mu.Lock()
	p.ackChans[cmd.CommandID] = ch
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		delete(p.ackChans, cmd.CommandID)
		p.mu.Unlock()
	}()

	if token := p.cli.Publish(p.commandTopic, p.qos, false, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish command: %w", token.Error())
	}
	p.logger.Debugw("command published", map[string]any{"command_id": cmd.CommandID, "steps": len(steps)})

	select {
	case a := <-ch:
		if !a.Success {
			return fmt.Errorf("machine rejected command %s: %s", a.CommandID, a.Error)
		}
		return nil
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return coremachine.ErrAckTimeout
		}
		return ctx.Err()
	}
}

func (p *PahoClient) onAck(_ paho.Client, msg paho.Message) {
	var a ack
	if err := json.Unmarshal(msg.Payload(), &a); err != nil {
		p.logger.Errorf("malformed ack: %v", err)
		return
	}
	p.mu.Lock()
	ch, ok := p.ackChans[a.CommandID]
	p.mu.Unlock()
	if !ok {
		p.logger.Warnf("ack for unknown command %s", a.CommandID)
		return
	}
	select {
	case ch <- a:
	default:
	}
}

// Close disconnects from the broker.
func (p *PahoClient) Close() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
