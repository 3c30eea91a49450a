// Package eventstream publishes pipeline observability events.
//
// The capture, sync, and injection pipelines are deliberately silent toward
// the user: invalid input and missing scope resolve to no-ops, not errors.
// The event stream is the hook that keeps those silent outcomes diagnosable —
// every drop, every sync summary, and every injection is published as a
// transport-neutral event.
package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/emberco/recall/pkg/chat"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeMemoryCaptured is emitted after a turn is stored as a memory.
	EventTypeMemoryCaptured = "recall.memory.captured"

	// EventTypeCaptureDropped is emitted when a capture resolves to a
	// silent no-op.
	EventTypeCaptureDropped = "recall.capture.dropped"

	// EventTypeSyncCompleted is emitted after a bulk transcript sync.
	EventTypeSyncCompleted = "recall.sync.completed"

	// EventTypeContextInjected is emitted after a prompt slot update.
	EventTypeContextInjected = "recall.context.injected"
)

// Drop reasons attached to EventTypeCaptureDropped events.
const (
	DropReasonInactiveScope = "inactive_scope"
	DropReasonEmptyText     = "empty_text"
	DropReasonNumericText   = "numeric_text"
	DropReasonIndexRange    = "index_out_of_range"
	DropReasonServiceError  = "service_error"
)

// PipelineEvent is a transport-neutral observability event. Exactly one of
// the Capture, Sync, or Injection sections is populated, per EventType.
type PipelineEvent struct {
	SchemaVersion int        `json:"schema_version"`
	EventType     string     `json:"event_type"`
	EventID       string     `json:"event_id"`
	EmittedAt     time.Time  `json:"emitted_at"`
	Scope         chat.Scope `json:"scope"`

	Capture   *CaptureMeta   `json:"capture,omitempty"`
	Sync      *SyncMeta      `json:"sync,omitempty"`
	Injection *InjectionMeta `json:"injection,omitempty"`
}

// CaptureMeta describes a single capture outcome.
type CaptureMeta struct {
	MessageType chat.MessageType `json:"message_type,omitempty"`
	DropReason  string           `json:"drop_reason,omitempty"`
}

// SyncMeta summarizes a bulk transcript sync.
type SyncMeta struct {
	Batches   int `json:"batches"`
	Processed int `json:"processed"`
	Errors    int `json:"errors"`
}

// InjectionMeta describes a prompt slot update.
type InjectionMeta struct {
	Slot            string `json:"slot"`
	RecentIncluded  bool   `json:"recent_included"`
	MemoryIncluded  bool   `json:"memory_included"`
	SlotLeftAsIs    bool   `json:"slot_left_as_is"`
	MemoriesFetched int    `json:"memories_fetched"`
}

// NewCaptured builds a memory-captured event.
func NewCaptured(scope chat.Scope, messageType chat.MessageType) *PipelineEvent {
	return newEvent(EventTypeMemoryCaptured, scope, &CaptureMeta{MessageType: messageType}, nil, nil)
}

// NewDropped builds a capture-dropped event with the given reason.
func NewDropped(scope chat.Scope, messageType chat.MessageType, reason string) *PipelineEvent {
	return newEvent(EventTypeCaptureDropped, scope, &CaptureMeta{MessageType: messageType, DropReason: reason}, nil, nil)
}

// NewSyncCompleted builds a sync summary event.
func NewSyncCompleted(scope chat.Scope, batches, processed, errors int) *PipelineEvent {
	return newEvent(EventTypeSyncCompleted, scope, nil, &SyncMeta{
		Batches:   batches,
		Processed: processed,
		Errors:    errors,
	}, nil)
}

// NewContextInjected builds an injection event.
func NewContextInjected(scope chat.Scope, meta InjectionMeta) *PipelineEvent {
	return newEvent(EventTypeContextInjected, scope, nil, nil, &meta)
}

func newEvent(eventType string, scope chat.Scope, capture *CaptureMeta, sync *SyncMeta, injection *InjectionMeta) *PipelineEvent {
	return &PipelineEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     eventType,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Scope:         scope,
		Capture:       capture,
		Sync:          sync,
		Injection:     injection,
	}
}
