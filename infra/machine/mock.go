package machine

import (
	"context"
	"fmt"
	"sync"

	"github.com/quentinlb/cocktaild/core/model"
)

// MockClient is a machine client used in tests. It records every plan it
// receives and can be configured to fail or to block until the context
// expires.
type MockClient struct {
	mu    sync.Mutex
	Plans [][]model.MachineStep
	Fail  bool
	Hang  bool
}

// NewMockClient creates an always-succeeding MockClient.
func NewMockClient() *MockClient { return &MockClient{} }

func (m *MockClient) MakeCocktail(ctx context.Context, steps []model.MachineStep) error {
	if m.Hang {
		<-ctx.Done()
		return ctx.Err()
	}
	m.mu.Lock()
	m.Plans = append(m.Plans, steps)
	m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("machine failure")
	}
	return nil
}

// Calls returns how many plans were executed.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Plans)
}

// LastPlan returns the most recent plan, or nil.
func (m *MockClient) LastPlan() []model.MachineStep {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Plans) == 0 {
		return nil
	}
	return m.Plans[len(m.Plans)-1]
}
