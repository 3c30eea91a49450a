package testutils

import (
	"context"
	"sync"

	"github.com/emberco/recall/pkg/chat"
	"github.com/emberco/recall/pkg/gateway"
)

// GatewayCall records one operation issued against the mock gateway.
type GatewayCall struct {
	Op          string
	Record      gateway.MemoryRecord
	ChatMessage gateway.ChatMessageRequest
	Batch       []gateway.MemoryRecord
	QueryText   string
	QueryParams gateway.QueryParams
	Scope       chat.Scope
	MaxMessages int
}

// MockGateway is a test memory service implementing gateway.Service. Every
// call is recorded; canned responses and a forced error are configurable.
type MockGateway struct {
	mu    sync.Mutex
	calls []GatewayCall

	// Err, when set, is returned by every operation.
	Err error

	QueryResponse  *gateway.QueryResponse
	RecentResponse *gateway.RecentResponse
	BatchResponse  *gateway.BatchResponse
	StatusResponse *gateway.StatusResponse
	DeleteResponse *gateway.DeleteResponse
}

func NewMockGateway() *MockGateway {
	return &MockGateway{
		QueryResponse:  &gateway.QueryResponse{Results: []gateway.QueryResult{}},
		RecentResponse: &gateway.RecentResponse{RecentMessages: []gateway.RecentMessage{}},
		BatchResponse:  &gateway.BatchResponse{Errors: []gateway.BatchError{}},
		StatusResponse: &gateway.StatusResponse{},
		DeleteResponse: &gateway.DeleteResponse{},
	}
}

// Calls returns a copy of the recorded calls.
func (m *MockGateway) Calls() []GatewayCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]GatewayCall(nil), m.calls...)
}

// CallsTo returns the recorded calls for a single operation.
func (m *MockGateway) CallsTo(op string) []GatewayCall {
	var out []GatewayCall
	for _, c := range m.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (m *MockGateway) record(c GatewayCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

func (m *MockGateway) AddMemory(_ context.Context, rec gateway.MemoryRecord) (*gateway.AddResponse, error) {
	m.record(GatewayCall{Op: "add_memory", Record: rec})
	if m.Err != nil {
		return nil, m.Err
	}
	return &gateway.AddResponse{Success: true}, nil
}

func (m *MockGateway) AddChatMessage(_ context.Context, msg gateway.ChatMessageRequest) (*gateway.AddResponse, error) {
	m.record(GatewayCall{Op: "add_chat_message", ChatMessage: msg})
	if m.Err != nil {
		return nil, m.Err
	}
	return &gateway.AddResponse{Success: true}, nil
}

func (m *MockGateway) AddBatch(_ context.Context, records []gateway.MemoryRecord) (*gateway.BatchResponse, error) {
	m.record(GatewayCall{Op: "add_batch", Batch: append([]gateway.MemoryRecord(nil), records...)})
	if m.Err != nil {
		return nil, m.Err
	}
	if m.BatchResponse.Processed == 0 && len(m.BatchResponse.Errors) == 0 {
		// Default: everything in the batch processed cleanly.
		return &gateway.BatchResponse{Processed: len(records), Errors: []gateway.BatchError{}}, nil
	}
	return m.BatchResponse, nil
}

func (m *MockGateway) Query(_ context.Context, text string, params gateway.QueryParams) (*gateway.QueryResponse, error) {
	m.record(GatewayCall{Op: "query", QueryText: text, QueryParams: params})
	if m.Err != nil {
		return nil, m.Err
	}
	return m.QueryResponse, nil
}

func (m *MockGateway) Recent(_ context.Context, scope chat.Scope, maxMessages int) (*gateway.RecentResponse, error) {
	m.record(GatewayCall{Op: "recent", Scope: scope, MaxMessages: maxMessages})
	if m.Err != nil {
		return nil, m.Err
	}
	return m.RecentResponse, nil
}

func (m *MockGateway) Status(_ context.Context) (*gateway.StatusResponse, error) {
	m.record(GatewayCall{Op: "status"})
	if m.Err != nil {
		return nil, m.Err
	}
	return m.StatusResponse, nil
}

func (m *MockGateway) Delete(_ context.Context, scope chat.Scope) (*gateway.DeleteResponse, error) {
	m.record(GatewayCall{Op: "delete", Scope: scope})
	if m.Err != nil {
		return nil, m.Err
	}
	return m.DeleteResponse, nil
}
