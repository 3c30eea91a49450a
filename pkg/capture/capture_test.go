package capture_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/emberco/recall/pkg/capture"
	"github.com/emberco/recall/pkg/chat"
	"github.com/emberco/recall/pkg/eventstream"
	testutils "github.com/emberco/recall/pkg/utils/test"
)

var _ = Describe("Pipeline", func() {
	var (
		ctx      context.Context
		service  *testutils.MockGateway
		events   *testutils.MockPublisher
		pipeline *capture.Pipeline
		scope    chat.Scope
	)

	transcript := []chat.Message{
		{Mes: "first things first", Name: "Hiro", IsUser: true},
		{Mes: "noted", Name: "Vela"},
		{Mes: "the bridge is out past the mill", Name: "Hiro", IsUser: true},
		{Mes: "we go around then", Name: "Vela"},
		{Mes: "at dawn", Name: "Hiro", IsUser: true},
	}

	BeforeEach(func() {
		ctx = context.Background()
		service = testutils.NewMockGateway()
		events = testutils.NewMockPublisher()
		pipeline = capture.NewPipeline(service, events, zap.NewNop())
		scope = chat.Scope{CharacterID: "vela", ChatID: "chat-12"}
	})

	Describe("raw text signals", func() {
		It("submits trimmed text via the plain add endpoint", func() {
			pipeline.Capture(ctx, capture.Request{
				Signal:      chat.RawTextSignal("  the bridge is out past the mill  "),
				MessageType: chat.MessageTypeUser,
				Scope:       scope,
			})

			calls := service.CallsTo("add_memory")
			Expect(calls).To(HaveLen(1))
			Expect(calls[0].Record.Text).To(Equal("the bridge is out past the mill"))
			Expect(calls[0].Record.CharacterID).To(Equal("vela"))
			Expect(calls[0].Record.ChatID).To(Equal("chat-12"))
			Expect(calls[0].Record.MessageType).To(Equal(chat.MessageTypeUser))

			captured := events.EventsOf(eventstream.EventTypeMemoryCaptured)
			Expect(captured).To(HaveLen(1))
		})

		It("drops digit-only text without touching the gateway", func() {
			pipeline.Capture(ctx, capture.Request{
				Signal:      chat.RawTextSignal("42"),
				MessageType: chat.MessageTypeUser,
				Scope:       scope,
			})

			Expect(service.Calls()).To(BeEmpty())

			dropped := events.EventsOf(eventstream.EventTypeCaptureDropped)
			Expect(dropped).To(HaveLen(1))
			Expect(dropped[0].Capture.DropReason).To(Equal(eventstream.DropReasonNumericText))
		})

		It("drops whitespace-only text", func() {
			pipeline.Capture(ctx, capture.Request{
				Signal:      chat.RawTextSignal("   \n\t "),
				MessageType: chat.MessageTypeAssistant,
				Scope:       scope,
			})

			Expect(service.Calls()).To(BeEmpty())

			dropped := events.EventsOf(eventstream.EventTypeCaptureDropped)
			Expect(dropped).To(HaveLen(1))
			Expect(dropped[0].Capture.DropReason).To(Equal(eventstream.DropReasonEmptyText))
		})
	})

	Describe("transcript index signals", func() {
		It("resolves a digit-string payload to the transcript entry", func() {
			signal, err := chat.ParseSignal([]byte(`"3"`))
			Expect(err).NotTo(HaveOccurred())

			pipeline.Capture(ctx, capture.Request{
				Signal:      signal,
				MessageType: chat.MessageTypeAssistant,
				Scope:       scope,
				Transcript:  transcript,
			})

			calls := service.CallsTo("add_chat_message")
			Expect(calls).To(HaveLen(1))
			Expect(calls[0].ChatMessage.Message.Mes).To(Equal("we go around then"))
			Expect(calls[0].ChatMessage.MessageType).To(Equal(chat.MessageTypeAssistant))
		})

		It("drops an out-of-range index without touching the gateway", func() {
			pipeline.Capture(ctx, capture.Request{
				Signal:      chat.IndexSignal(10),
				MessageType: chat.MessageTypeUser,
				Scope:       scope,
				Transcript:  transcript,
			})

			Expect(service.Calls()).To(BeEmpty())

			dropped := events.EventsOf(eventstream.EventTypeCaptureDropped)
			Expect(dropped).To(HaveLen(1))
			Expect(dropped[0].Capture.DropReason).To(Equal(eventstream.DropReasonIndexRange))
		})

		It("drops a negative index", func() {
			pipeline.Capture(ctx, capture.Request{
				Signal:     chat.IndexSignal(-1),
				Scope:      scope,
				Transcript: transcript,
			})

			Expect(service.Calls()).To(BeEmpty())
			Expect(events.EventsOf(eventstream.EventTypeCaptureDropped)).To(HaveLen(1))
		})
	})

	Describe("structured message signals", func() {
		It("submits the message with its native shape", func() {
			pipeline.Capture(ctx, capture.Request{
				Signal: chat.MessageSignal(&chat.Message{
					Mes:    "keep the lantern lit",
					Name:   "Vela",
					IsUser: false,
				}),
				MessageType: chat.MessageTypeAssistant,
				Scope:       scope,
			})

			calls := service.CallsTo("add_chat_message")
			Expect(calls).To(HaveLen(1))
			Expect(calls[0].ChatMessage.Message.Mes).To(Equal("keep the lantern lit"))
			Expect(calls[0].ChatMessage.Message.Name).To(Equal("Vela"))
			Expect(calls[0].ChatMessage.CharacterID).To(Equal("vela"))
		})

		It("drops a nil message", func() {
			pipeline.Capture(ctx, capture.Request{
				Signal: chat.MessageSignal(nil),
				Scope:  scope,
			})

			Expect(service.Calls()).To(BeEmpty())
			Expect(events.EventsOf(eventstream.EventTypeCaptureDropped)).To(HaveLen(1))
		})
	})

	Describe("scope gating", func() {
		It("is a silent no-op when scope is missing", func() {
			pipeline.Capture(ctx, capture.Request{
				Signal:      chat.RawTextSignal("this should never land"),
				MessageType: chat.MessageTypeUser,
				Scope:       chat.Scope{},
			})

			Expect(service.Calls()).To(BeEmpty())

			dropped := events.EventsOf(eventstream.EventTypeCaptureDropped)
			Expect(dropped).To(HaveLen(1))
			Expect(dropped[0].Capture.DropReason).To(Equal(eventstream.DropReasonInactiveScope))
		})
	})

	Describe("gateway failures", func() {
		It("records a service error drop and keeps going", func() {
			service.Err = &gatewayError{}

			pipeline.Capture(ctx, capture.Request{
				Signal:      chat.RawTextSignal("first attempt"),
				MessageType: chat.MessageTypeUser,
				Scope:       scope,
			})

			dropped := events.EventsOf(eventstream.EventTypeCaptureDropped)
			Expect(dropped).To(HaveLen(1))
			Expect(dropped[0].Capture.DropReason).To(Equal(eventstream.DropReasonServiceError))

			service.Err = nil
			pipeline.Capture(ctx, capture.Request{
				Signal:      chat.RawTextSignal("second attempt"),
				MessageType: chat.MessageTypeUser,
				Scope:       scope,
			})

			Expect(events.EventsOf(eventstream.EventTypeMemoryCaptured)).To(HaveLen(1))
		})
	})
})

type gatewayError struct{}

func (e *gatewayError) Error() string { return "service unreachable" }
