// Package bridge connects host lifecycle events to the recall pipelines.
//
// The bridge owns the mirrored chat state (scope, transcript, personas) the
// host reports and fans events out: message sent/received feed the capture
// pipeline fire-and-forget, generation-started runs the injector
// synchronously so the caller gets the assembled block back, and sync runs
// the bulk pipeline over the mirrored transcript.
package bridge

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/emberco/recall/pkg/capture"
	"github.com/emberco/recall/pkg/chat"
	"github.com/emberco/recall/pkg/inject"
	"github.com/emberco/recall/pkg/settings"
	"github.com/emberco/recall/pkg/syncer"
)

// EventKind names the host lifecycle events the bridge accepts.
type EventKind string

const (
	EventMessageSent       EventKind = "message-sent"
	EventMessageReceived   EventKind = "message-received"
	EventChatChanged       EventKind = "chat-changed"
	EventGenerationStarted EventKind = "generation-started"
)

// ChatState is the host-reported conversation state the bridge mirrors.
// Hosts replace it wholesale on chat-changed.
type ChatState struct {
	Scope      chat.Scope     `json:"scope"`
	Transcript []chat.Message `json:"transcript"`
	Personas   chat.Personas  `json:"personas"`
}

// SettingsSource hands out point-in-time settings snapshots.
type SettingsSource interface {
	Snapshot() settings.Settings
}

// Bridge routes host events into the pipelines.
type Bridge struct {
	capture  *capture.Pipeline
	injector *inject.Injector
	sync     *syncer.Pipeline
	source   SettingsSource
	logger   *zap.Logger

	mu    sync.RWMutex
	state ChatState

	// wg tracks in-flight fire-and-forget captures so shutdown and tests
	// can drain them.
	wg sync.WaitGroup
}

// NewBridge creates a bridge over the given pipelines.
func NewBridge(cap *capture.Pipeline, injector *inject.Injector, sync *syncer.Pipeline, source SettingsSource, logger *zap.Logger) *Bridge {
	return &Bridge{
		capture:  cap,
		injector: injector,
		sync:     sync,
		source:   source,
		logger:   logger,
	}
}

// SetChatState replaces the mirrored conversation state.
func (b *Bridge) SetChatState(state ChatState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = state

	b.logger.Debug("chat state replaced",
		zap.String("character_id", state.Scope.CharacterID),
		zap.String("chat_id", state.Scope.ChatID),
		zap.Int("transcript_len", len(state.Transcript)),
	)
}

// State returns a copy of the mirrored conversation state. The transcript
// slice is copied so callers cannot mutate the mirror.
func (b *Bridge) State() ChatState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	state := b.state
	state.Transcript = append([]chat.Message(nil), b.state.Transcript...)
	return state
}

// HandleMessageSent captures a user turn. Dispatch is fire-and-forget: the
// host is never blocked on the memory service, and a failed capture is only
// visible through logs and the event stream.
func (b *Bridge) HandleMessageSent(payload []byte) error {
	return b.handleMessage(payload, chat.MessageTypeUser)
}

// HandleMessageReceived captures an assistant turn, fire-and-forget.
func (b *Bridge) HandleMessageReceived(payload []byte) error {
	return b.handleMessage(payload, chat.MessageTypeAssistant)
}

func (b *Bridge) handleMessage(payload []byte, messageType chat.MessageType) error {
	snap := b.source.Snapshot()
	if !snap.Capture.AutoMemory {
		return nil
	}

	signal, err := chat.ParseSignal(payload)
	if err != nil {
		return fmt.Errorf("failed to parse message signal: %w", err)
	}

	state := b.State()
	req := capture.Request{
		Signal:      signal,
		MessageType: messageType,
		Scope:       state.Scope,
		Transcript:  state.Transcript,
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), snap.Service.Timeout())
		defer cancel()
		b.capture.Capture(ctx, req)
	}()

	return nil
}

// HandleGenerationStarted runs one injection cycle and returns the assembled
// context block. Unlike capture this is synchronous: the host is about to
// build a prompt and wants the block now.
func (b *Bridge) HandleGenerationStarted(ctx context.Context) (string, error) {
	snap := b.source.Snapshot()
	state := b.State()

	return b.injector.Inject(ctx, inject.Request{
		Scope:     state.Scope,
		QueryText: lastText(state.Transcript),
		Personas:  state.Personas,
		Context:   snap.Context,
	})
}

// HandleSync bulk-submits the mirrored transcript.
func (b *Bridge) HandleSync(ctx context.Context) (*syncer.Result, error) {
	state := b.State()
	if !state.Scope.Active() {
		return nil, fmt.Errorf("no active chat to sync")
	}
	return b.sync.Sync(ctx, state.Scope, state.Transcript)
}

// Wait blocks until all in-flight captures have finished.
func (b *Bridge) Wait() {
	b.wg.Wait()
}

// lastText returns the last non-empty message body, the retrieval query for
// injection.
func lastText(transcript []chat.Message) string {
	for i := len(transcript) - 1; i >= 0; i-- {
		if text := transcript[i].GetText(); text != "" {
			return text
		}
	}
	return ""
}
