package syncer_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/emberco/recall/pkg/chat"
	"github.com/emberco/recall/pkg/eventstream"
	"github.com/emberco/recall/pkg/syncer"
	testutils "github.com/emberco/recall/pkg/utils/test"
)

func transcriptOf(n int) []chat.Message {
	msgs := make([]chat.Message, n)
	for i := range msgs {
		msgs[i] = chat.Message{
			Mes:    fmt.Sprintf("turn number %d of the long ride", i),
			IsUser: i%2 == 0,
		}
	}
	return msgs
}

var _ = Describe("Pipeline", func() {
	var (
		ctx     context.Context
		service *testutils.MockGateway
		events  *testutils.MockPublisher
		scope   chat.Scope
	)

	BeforeEach(func() {
		ctx = context.Background()
		service = testutils.NewMockGateway()
		events = testutils.NewMockPublisher()
		scope = chat.Scope{CharacterID: "vela", ChatID: "chat-12"}
	})

	newPipeline := func(cfg syncer.Config) *syncer.Pipeline {
		return syncer.NewPipeline(service, events, zap.NewNop(), cfg)
	}

	It("splits a transcript into sequential fixed-size batches", func() {
		pipeline := newPipeline(syncer.Config{BatchSize: 10, Pacing: time.Millisecond})

		result, err := pipeline.Sync(ctx, scope, transcriptOf(25))
		Expect(err).NotTo(HaveOccurred())

		calls := service.CallsTo("add_batch")
		Expect(calls).To(HaveLen(3))
		Expect(calls[0].Batch).To(HaveLen(10))
		Expect(calls[1].Batch).To(HaveLen(10))
		Expect(calls[2].Batch).To(HaveLen(5))

		Expect(result.Batches).To(Equal(3))
		Expect(result.Processed).To(Equal(25))
		Expect(result.Errors).To(Equal(0))
	})

	It("preserves transcript order across batches", func() {
		pipeline := newPipeline(syncer.Config{BatchSize: 10, Pacing: time.Millisecond})

		_, err := pipeline.Sync(ctx, scope, transcriptOf(25))
		Expect(err).NotTo(HaveOccurred())

		calls := service.CallsTo("add_batch")
		Expect(calls[1].Batch[0].Text).To(Equal("turn number 10 of the long ride"))
		Expect(calls[2].Batch[4].Text).To(Equal("turn number 24 of the long ride"))
	})

	It("skips entries that are empty after trimming", func() {
		pipeline := newPipeline(syncer.Config{BatchSize: 10, Pacing: time.Millisecond})

		transcript := []chat.Message{
			{Mes: "a real message"},
			{Mes: ""},
			{Mes: "   \n\t"},
			{Mes: "another real one", IsUser: true},
		}

		result, err := pipeline.Sync(ctx, scope, transcript)
		Expect(err).NotTo(HaveOccurred())

		calls := service.CallsTo("add_batch")
		Expect(calls).To(HaveLen(1))
		Expect(calls[0].Batch).To(HaveLen(2))
		Expect(result.Skipped).To(Equal(2))
	})

	It("keeps digit-only entries", func() {
		pipeline := newPipeline(syncer.Config{BatchSize: 10, Pacing: time.Millisecond})

		transcript := []chat.Message{
			{Mes: "12345"},
			{Mes: "a real message"},
		}

		result, err := pipeline.Sync(ctx, scope, transcript)
		Expect(err).NotTo(HaveOccurred())

		calls := service.CallsTo("add_batch")
		Expect(calls).To(HaveLen(1))
		Expect(calls[0].Batch).To(HaveLen(2))
		Expect(calls[0].Batch[0].Text).To(Equal("12345"))
		Expect(result.Skipped).To(Equal(0))
	})

	It("makes zero gateway calls for an all-empty transcript", func() {
		pipeline := newPipeline(syncer.Config{})

		transcript := []chat.Message{{Mes: ""}, {Mes: "  "}, {}}

		result, err := pipeline.Sync(ctx, scope, transcript)
		Expect(err).NotTo(HaveOccurred())

		Expect(service.Calls()).To(BeEmpty())
		Expect(result.Batches).To(Equal(0))
		Expect(result.Processed).To(Equal(0))
		Expect(result.Errors).To(Equal(0))
	})

	It("publishes a completion event with the run totals", func() {
		pipeline := newPipeline(syncer.Config{BatchSize: 10, Pacing: time.Millisecond})

		_, err := pipeline.Sync(ctx, scope, transcriptOf(25))
		Expect(err).NotTo(HaveOccurred())

		completed := events.EventsOf(eventstream.EventTypeSyncCompleted)
		Expect(completed).To(HaveLen(1))
		Expect(completed[0].Sync.Batches).To(Equal(3))
		Expect(completed[0].Sync.Processed).To(Equal(25))
	})

	It("counts a rejected batch as errors and keeps going", func() {
		service.Err = errors.New("service unreachable")
		pipeline := newPipeline(syncer.Config{BatchSize: 10, Pacing: time.Millisecond})

		result, err := pipeline.Sync(ctx, scope, transcriptOf(25))
		Expect(err).NotTo(HaveOccurred())

		Expect(service.CallsTo("add_batch")).To(HaveLen(3))
		Expect(result.Batches).To(Equal(3))
		Expect(result.Processed).To(Equal(0))
		Expect(result.Errors).To(Equal(25))

		completed := events.EventsOf(eventstream.EventTypeSyncCompleted)
		Expect(completed).To(HaveLen(1))
		Expect(completed[0].Sync.Errors).To(Equal(25))
	})

	It("honors context cancellation between batches", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		pipeline := newPipeline(syncer.Config{BatchSize: 10, Pacing: 50 * time.Millisecond})

		_, err := pipeline.Sync(cancelled, scope, transcriptOf(25))
		Expect(err).To(MatchError(context.Canceled))
		Expect(service.CallsTo("add_batch")).To(HaveLen(1))
	})
})
