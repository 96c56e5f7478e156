package machine

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremachine "github.com/quentinlb/cocktaild/core/machine"
	"github.com/quentinlb/cocktaild/core/model"
	"github.com/quentinlb/cocktaild/infra/logger"
)

type fakeToken struct{ err error }

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Error() error                   { return t.err }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// fakePaho captures published payloads and optionally acknowledges them.
type fakePaho struct {
	published    [][]byte
	publishErr   error
	ackSuccess   bool
	autoAck      bool
	client       *PahoClient
	disconnected bool
}

func (f *fakePaho) IsConnected() bool   { return true }
func (f *fakePaho) Connect() paho.Token { return &fakeToken{} }
func (f *fakePaho) Disconnect(uint)     { f.disconnected = true }
func (f *fakePaho) Subscribe(string, byte, paho.MessageHandler) paho.Token {
	return &fakeToken{}
}

func (f *fakePaho) Publish(_ string, _ byte, _ bool, payload interface{}) paho.Token {
	data := payload.([]byte)
	f.published = append(f.published, data)
	if f.publishErr != nil {
		return &fakeToken{err: f.publishErr}
	}
	if f.autoAck {
		var cmd command
		if err := json.Unmarshal(data, &cmd); err == nil {
			go f.client.deliverAck(ack{CommandID: cmd.CommandID, Success: f.ackSuccess, Error: "pump jam"})
		}
	}
	return &fakeToken{}
}

// deliverAck injects an ack as if it arrived on the ack topic.
func (p *PahoClient) deliverAck(a ack) {
	p.mu.Lock()
	ch, ok := p.ackChans[a.CommandID]
	p.mu.Unlock()
	if ok {
		ch <- a
	}
}

func newTestClient(f *fakePaho) *PahoClient {
	pc := &PahoClient{
		cli:          f,
		commandTopic: "machine/cocktail/make",
		logger:       logger.NopLogger{},
		ackChans:     make(map[string]chan ack),
	}
	f.client = pc
	return pc
}

func TestMakeCocktailSuccess(t *testing.T) {
	f := &fakePaho{autoAck: true, ackSuccess: true}
	pc := newTestClient(f)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	steps := []model.MachineStep{{StepID: "s1-1", Slot: 1, Pressed: 10, DelayAfter: 0.5, Position: 1}}
	require.NoError(t, pc.MakeCocktail(ctx, steps))

	require.Len(t, f.published, 1)
	var cmd command
	require.NoError(t, json.Unmarshal(f.published[0], &cmd))
	assert.NotEmpty(t, cmd.CommandID)
	assert.Equal(t, steps, cmd.Steps)
}

func TestMakeCocktailMachineRejects(t *testing.T) {
	f := &fakePaho{autoAck: true, ackSuccess: false}
	pc := newTestClient(f)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := pc.MakeCocktail(ctx, []model.MachineStep{{StepID: "s1-1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pump jam")
}

func TestMakeCocktailTimesOutWithoutAck(t *testing.T) {
	f := &fakePaho{} // never acks
	pc := newTestClient(f)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := pc.MakeCocktail(ctx, []model.MachineStep{{StepID: "s1-1"}})
	assert.ErrorIs(t, err, coremachine.ErrAckTimeout)
}

func TestCloseDisconnects(t *testing.T) {
	f := &fakePaho{}
	pc := newTestClient(f)
	pc.Close()
	assert.True(t, f.disconnected)
}
