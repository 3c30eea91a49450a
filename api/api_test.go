package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/emberco/recall/pkg/bridge"
	"github.com/emberco/recall/pkg/capture"
	"github.com/emberco/recall/pkg/chat"
	"github.com/emberco/recall/pkg/gateway"
	"github.com/emberco/recall/pkg/inject"
	"github.com/emberco/recall/pkg/settings"
	"github.com/emberco/recall/pkg/syncer"
	testutils "github.com/emberco/recall/pkg/utils/test"
)

var _ = Describe("Server", func() {
	var (
		service *testutils.MockGateway
		events  *testutils.MockPublisher
		store   *settings.Store
		slots   *inject.Registry
		b       *bridge.Bridge
		server  *Server
	)

	activeState := bridge.ChatState{
		Scope: chat.Scope{CharacterID: "vela", ChatID: "chat-12"},
		Transcript: []chat.Message{
			{Mes: "the bridge is out past the mill", IsUser: true},
			{Mes: "we go around then"},
		},
		Personas: chat.Personas{UserName: "Hiro", CharacterName: "Vela"},
	}

	BeforeEach(func() {
		service = testutils.NewMockGateway()
		events = testutils.NewMockPublisher()
		slots = inject.NewRegistry()
		logger := zap.NewNop()

		cfger, err := settings.NewConfiger(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
		store, err = settings.NewStore(cfger, logger)
		Expect(err).NotTo(HaveOccurred())

		b = bridge.NewBridge(
			capture.NewPipeline(service, events, logger),
			inject.NewInjector(service, slots, events, logger),
			syncer.NewPipeline(service, events, logger, syncer.Config{}),
			store,
			logger,
		)

		poller := NewPoller(service, 0, logger)
		poller.Check(context.Background())

		server = NewServer(Config{ListenAddr: ":0"}, b, service, store, slots, poller, nil, logger)
	})

	do := func(method, target string, body any) *http.Response {
		var reader io.Reader
		if body != nil {
			data, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			reader = bytes.NewReader(data)
		}
		req := httptest.NewRequest(method, target, reader)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := server.app.Test(req)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	decode := func(resp *http.Response, out any) {
		defer resp.Body.Close()
		Expect(json.NewDecoder(resp.Body).Decode(out)).To(Succeed())
	}

	Describe("GET /ping", func() {
		It("reports the polled service health", func() {
			service.StatusResponse = &gateway.StatusResponse{TotalMemories: 7}
			server.poller.Check(context.Background())

			resp := do(http.MethodGet, "/ping", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body struct {
				Status  string    `json:"status"`
				Service PollState `json:"service"`
			}
			decode(resp, &body)
			Expect(body.Status).To(Equal("pong"))
			Expect(body.Service.Reachable).To(BeTrue())
			Expect(body.Service.TotalMemories).To(Equal(7))
		})
	})

	Describe("POST /v1/events/:kind", func() {
		It("accepts a sent message and captures it in the background", func() {
			b.SetChatState(activeState)

			resp := do(http.MethodPost, "/v1/events/message-sent", "we ride at dawn")
			Expect(resp.StatusCode).To(Equal(http.StatusAccepted))

			b.Wait()
			calls := service.CallsTo("add_memory")
			Expect(calls).To(HaveLen(1))
			Expect(calls[0].Record.Text).To(Equal("we ride at dawn"))
		})

		It("replaces chat state on chat-changed", func() {
			resp := do(http.MethodPost, "/v1/events/chat-changed", activeState)
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))

			Expect(b.State().Scope.ChatID).To(Equal("chat-12"))
			Expect(b.State().Transcript).To(HaveLen(2))
		})

		It("returns the context block on generation-started", func() {
			b.SetChatState(activeState)
			service.QueryResponse = &gateway.QueryResponse{
				Results: []gateway.QueryResult{{Text: "the mill road floods in spring"}},
			}

			resp := do(http.MethodPost, "/v1/events/generation-started", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body GenerationResponse
			decode(resp, &body)
			Expect(body.Slot).To(Equal(inject.SlotName))
			Expect(body.Content).To(ContainSubstring("the mill road floods in spring"))
		})

		It("rejects an unknown event kind", func() {
			resp := do(http.MethodPost, "/v1/events/banana", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("rejects an unclassifiable message payload", func() {
			resp := do(http.MethodPost, "/v1/events/message-sent", []int{1, 2, 3})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /v1/prompt/:slot", func() {
		It("404s before any injection", func() {
			resp := do(http.MethodGet, "/v1/prompt/"+inject.SlotName, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("returns the slot after injection", func() {
			slots.PublishSlot(inject.SlotName, "some context")

			resp := do(http.MethodGet, "/v1/prompt/"+inject.SlotName, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var slot inject.Slot
			decode(resp, &slot)
			Expect(slot.Content).To(Equal("some context"))
			Expect(slot.Position).To(Equal(inject.SlotPosition))
		})
	})

	Describe("settings surface", func() {
		It("returns the current settings", func() {
			resp := do(http.MethodGet, "/v1/settings", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var s settings.Settings
			decode(resp, &s)
			Expect(s.Capture.AutoMemory).To(BeTrue())
			Expect(s.Context.RecentMessageCount).To(Equal(10))
		})

		It("applies and persists dotted-key updates", func() {
			resp := do(http.MethodPut, "/v1/settings", map[string]string{
				"capture.auto_memory":          "false",
				"context.recent_message_count": "25",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var s settings.Settings
			decode(resp, &s)
			Expect(s.Capture.AutoMemory).To(BeFalse())
			Expect(s.Context.RecentMessageCount).To(Equal(25))

			Expect(store.Snapshot().Capture.AutoMemory).To(BeFalse())
		})

		It("rejects the whole update on an unknown key", func() {
			resp := do(http.MethodPut, "/v1/settings", map[string]string{
				"capture.auto_memory": "false",
				"no.such.key":         "1",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(store.Snapshot().Capture.AutoMemory).To(BeTrue())
		})
	})

	Describe("GET /v1/status", func() {
		It("proxies the memory service status", func() {
			service.StatusResponse = &gateway.StatusResponse{TotalMemories: 42}

			resp := do(http.MethodGet, "/v1/status", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var status gateway.StatusResponse
			decode(resp, &status)
			Expect(status.TotalMemories).To(Equal(42))
		})

		It("returns bad gateway when the service is down", func() {
			service.Err = errors.New("service unreachable")

			resp := do(http.MethodGet, "/v1/status", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusBadGateway))
		})
	})

	Describe("POST /v1/sync", func() {
		It("syncs the mirrored transcript", func() {
			b.SetChatState(activeState)

			resp := do(http.MethodPost, "/v1/sync", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var result syncer.Result
			decode(resp, &result)
			Expect(result.Processed).To(Equal(2))
		})

		It("conflicts without an active chat", func() {
			resp := do(http.MethodPost, "/v1/sync", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusConflict))
		})
	})

	Describe("memory endpoints", func() {
		It("stores a memory directly", func() {
			resp := do(http.MethodPost, "/v1/memories", gateway.MemoryRecord{
				Text:        "a handwritten note",
				CharacterID: "vela",
				ChatID:      "chat-12",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(service.CallsTo("add_memory")).To(HaveLen(1))
		})

		It("requires text", func() {
			resp := do(http.MethodPost, "/v1/memories", gateway.MemoryRecord{})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("queries memories", func() {
			service.QueryResponse = &gateway.QueryResponse{
				Results: []gateway.QueryResult{{Text: "found one"}},
			}

			resp := do(http.MethodPost, "/v1/query", QueryRequest{Text: "anything"})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body gateway.QueryResponse
			decode(resp, &body)
			Expect(body.Results).To(HaveLen(1))
		})

		It("deletes scoped memories from query parameters", func() {
			service.DeleteResponse = &gateway.DeleteResponse{Deleted: 3}

			resp := do(http.MethodDelete, "/v1/memories?character_id=vela&chat_id=chat-12", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			calls := service.CallsTo("delete")
			Expect(calls).To(HaveLen(1))
			Expect(calls[0].Scope.CharacterID).To(Equal("vela"))
			Expect(calls[0].Scope.ChatID).To(Equal("chat-12"))
		})
	})
})
