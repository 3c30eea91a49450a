// Package gateway provides the typed HTTP client for the external memory
// service. The service owns the hard parts — embedding, vector search,
// reranking, relevance scoring — and this package only consumes its contract.
//
// Every operation makes exactly one attempt and normalizes any transport
// failure (dial error, non-2xx status, malformed body) into a *Error value.
// Nothing in this package panics past its boundary, and list-shaped response
// fields are always non-nil on success so callers can range without checking.
package gateway

import (
	"context"

	"github.com/emberco/recall/pkg/chat"
)

// Service is the set of memory service operations the pipelines depend on.
// The HTTP Client is the production implementation; tests substitute fakes.
type Service interface {
	// AddMemory stores a single raw-text memory.
	AddMemory(ctx context.Context, rec MemoryRecord) (*AddResponse, error)

	// AddChatMessage stores a transcript entry with its native field shape.
	AddChatMessage(ctx context.Context, msg ChatMessageRequest) (*AddResponse, error)

	// AddBatch stores multiple records in one request.
	AddBatch(ctx context.Context, records []MemoryRecord) (*BatchResponse, error)

	// Query retrieves memories relevant to the given text.
	Query(ctx context.Context, text string, params QueryParams) (*QueryResponse, error)

	// Recent returns the most recent turns stored for a scope.
	Recent(ctx context.Context, scope chat.Scope, maxMessages int) (*RecentResponse, error)

	// Status reports service health and memory counts.
	Status(ctx context.Context) (*StatusResponse, error)

	// Delete removes memories for a scope. A zero scope deletes everything.
	Delete(ctx context.Context, scope chat.Scope) (*DeleteResponse, error)
}
