package testutils

import (
	"context"
	"sync"

	"github.com/emberco/recall/pkg/eventstream"
)

// MockPublisher is a test eventstream publisher that records every event.
type MockPublisher struct {
	mu     sync.Mutex
	events []*eventstream.PipelineEvent
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(_ context.Context, event *eventstream.PipelineEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

// Events returns a copy of the published events.
func (m *MockPublisher) Events() []*eventstream.PipelineEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*eventstream.PipelineEvent(nil), m.events...)
}

// EventsOf returns the published events of a single type.
func (m *MockPublisher) EventsOf(eventType string) []*eventstream.PipelineEvent {
	var out []*eventstream.PipelineEvent
	for _, e := range m.Events() {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}
