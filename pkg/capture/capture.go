// Package capture normalizes heterogeneous "a message happened" signals into
// memory submissions.
//
// Capture is opportunistic: missing scope, empty text, out-of-range indices,
// and numeric-looking bodies all resolve to silent no-ops rather than errors.
// Each drop is published to the event stream so silence stays diagnosable,
// and a failed capture never blocks subsequent ones.
package capture

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/emberco/recall/pkg/chat"
	"github.com/emberco/recall/pkg/eventstream"
	"github.com/emberco/recall/pkg/gateway"
)

// Request carries one capture invocation's inputs. The transcript is the
// host-owned ordered message sequence used to resolve index signals.
type Request struct {
	Signal      chat.Signal
	MessageType chat.MessageType
	Scope       chat.Scope
	Transcript  []chat.Message
}

// Pipeline turns capture requests into gateway submissions.
type Pipeline struct {
	service gateway.Service
	events  eventstream.Publisher
	logger  *zap.Logger
}

// NewPipeline creates a capture pipeline.
func NewPipeline(service gateway.Service, events eventstream.Publisher, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		service: service,
		events:  events,
		logger:  logger,
	}
}

// Capture resolves the signal and submits the resulting record. It never
// returns an error: validation failures drop silently and gateway failures
// are logged and counted, per-call.
func (p *Pipeline) Capture(ctx context.Context, req Request) {
	if !req.Scope.Active() {
		p.drop(ctx, req, eventstream.DropReasonInactiveScope)
		return
	}

	switch req.Signal.Kind {
	case chat.SignalRawText:
		p.captureRawText(ctx, req, req.Signal.Text)

	case chat.SignalTranscriptIndex:
		index := req.Signal.Index
		if index < 0 || index >= len(req.Transcript) {
			p.drop(ctx, req, eventstream.DropReasonIndexRange)
			return
		}
		p.captureMessage(ctx, req, req.Transcript[index])

	case chat.SignalStructuredMessage:
		if req.Signal.Message == nil {
			p.drop(ctx, req, eventstream.DropReasonEmptyText)
			return
		}
		p.captureMessage(ctx, req, *req.Signal.Message)
	}
}

// captureRawText submits literal text via the plain add endpoint.
func (p *Pipeline) captureRawText(ctx context.Context, req Request, raw string) {
	text, reason := validateText(raw)
	if reason != "" {
		p.drop(ctx, req, reason)
		return
	}

	_, err := p.service.AddMemory(ctx, gateway.MemoryRecord{
		Text:        text,
		CharacterID: req.Scope.CharacterID,
		ChatID:      req.Scope.ChatID,
		MessageType: req.MessageType,
	})
	p.finish(ctx, req, err)
}

// captureMessage submits a transcript entry with its native shape.
func (p *Pipeline) captureMessage(ctx context.Context, req Request, msg chat.Message) {
	if _, reason := validateText(msg.GetText()); reason != "" {
		p.drop(ctx, req, reason)
		return
	}

	_, err := p.service.AddChatMessage(ctx, gateway.ChatMessageRequest{
		Message:     msg,
		CharacterID: req.Scope.CharacterID,
		ChatID:      req.Scope.ChatID,
		MessageType: req.MessageType,
	})
	p.finish(ctx, req, err)
}

func (p *Pipeline) finish(ctx context.Context, req Request, err error) {
	if err != nil {
		p.logger.Warn("capture failed",
			zap.String("character_id", req.Scope.CharacterID),
			zap.String("chat_id", req.Scope.ChatID),
			zap.Error(err),
		)
		p.drop(ctx, req, eventstream.DropReasonServiceError)
		return
	}

	if err := p.events.Publish(ctx, eventstream.NewCaptured(req.Scope, req.MessageType)); err != nil {
		p.logger.Warn("publishing capture event failed", zap.Error(err))
	}
}

func (p *Pipeline) drop(ctx context.Context, req Request, reason string) {
	p.logger.Debug("capture dropped",
		zap.String("reason", reason),
		zap.String("message_type", string(req.MessageType)),
	)

	if err := p.events.Publish(ctx, eventstream.NewDropped(req.Scope, req.MessageType, reason)); err != nil {
		p.logger.Warn("publishing drop event failed", zap.Error(err))
	}
}

// validateText trims the candidate body and rejects empty or digit-only
// text. Digit-only bodies are almost always transcript indices that leaked
// through as text, not real messages.
func validateText(raw string) (string, string) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", eventstream.DropReasonEmptyText
	}
	if chat.IsNumericText(text) {
		return "", eventstream.DropReasonNumericText
	}
	return text, ""
}
