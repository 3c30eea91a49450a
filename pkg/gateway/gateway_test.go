package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/emberco/recall/pkg/chat"
	"github.com/emberco/recall/pkg/gateway"
)

var _ = Describe("Client", func() {
	var (
		ctx    context.Context
		logger *zap.Logger
	)

	BeforeEach(func() {
		ctx = context.Background()
		logger, _ = zap.NewDevelopment()
	})

	newClient := func(url string) *gateway.Client {
		return gateway.NewClient(gateway.Config{URL: url}, logger)
	}

	Describe("AddMemory", func() {
		It("issues exactly one request and returns the decoded response", func() {
			var calls atomic.Int32
			var gotPath string
			var gotBody map[string]any

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				gotPath = r.URL.Path
				Expect(json.NewDecoder(r.Body).Decode(&gotBody)).To(Succeed())
				_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "id": "m-1"})
			}))
			defer srv.Close()

			resp, err := newClient(srv.URL).AddMemory(ctx, gateway.MemoryRecord{
				Text:        "the dragon hoards tea, not gold",
				CharacterID: "c1",
				ChatID:      "ch1",
				MessageType: chat.MessageTypeAssistant,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(calls.Load()).To(Equal(int32(1)))
			Expect(gotPath).To(Equal("/add"))
			Expect(gotBody["text"]).To(Equal("the dragon hoards tea, not gold"))
			Expect(gotBody["character_id"]).To(Equal("c1"))
			Expect(gotBody["message_type"]).To(Equal("assistant"))
			Expect(resp.Success).To(BeTrue())
			Expect(resp.ID).To(Equal("m-1"))
		})
	})

	Describe("AddChatMessage", func() {
		It("inlines the native message fields into the payload", func() {
			var gotBody map[string]any

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/add_chat_message"))
				Expect(json.NewDecoder(r.Body).Decode(&gotBody)).To(Succeed())
				_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
			}))
			defer srv.Close()

			_, err := newClient(srv.URL).AddChatMessage(ctx, gateway.ChatMessageRequest{
				Message:     chat.Message{Mes: "hello", Name: "Riley", IsUser: true},
				CharacterID: "c1",
				ChatID:      "ch1",
				MessageType: chat.MessageTypeUser,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(gotBody["mes"]).To(Equal("hello"))
			Expect(gotBody["name"]).To(Equal("Riley"))
			Expect(gotBody["is_user"]).To(Equal(true))
			Expect(gotBody["chat_id"]).To(Equal("ch1"))
		})
	})

	Describe("Query", func() {
		It("always serializes top_k, including -1", func() {
			var gotBody map[string]any

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(json.NewDecoder(r.Body).Decode(&gotBody)).To(Succeed())
				_ = json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
			}))
			defer srv.Close()

			_, err := newClient(srv.URL).Query(ctx, "last message", gateway.QueryParams{
				TopK:           -1,
				RerankFastTopN: 20,
				FinalTopN:      5,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(gotBody["top_k"]).To(BeNumerically("==", -1))
			Expect(gotBody["rerank_fast_top_n"]).To(BeNumerically("==", 20))
			Expect(gotBody["final_top_n"]).To(BeNumerically("==", 5))
		})

		It("defaults missing results to an empty slice", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{"token_count": 0})
			}))
			defer srv.Close()

			resp, err := newClient(srv.URL).Query(ctx, "anything", gateway.QueryParams{TopK: -1})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Results).NotTo(BeNil())
			Expect(resp.Results).To(BeEmpty())
		})
	})

	Describe("failure normalization", func() {
		It("returns a *gateway.Error on non-2xx status", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "kaboom", http.StatusInternalServerError)
			}))
			defer srv.Close()

			_, err := newClient(srv.URL).AddMemory(ctx, gateway.MemoryRecord{Text: "x"})

			var gwErr *gateway.Error
			Expect(errors.As(err, &gwErr)).To(BeTrue())
			Expect(gwErr.Op).To(Equal("add_memory"))
			Expect(gwErr.Message).To(ContainSubstring("status 500"))
		})

		It("returns a *gateway.Error when the service is unreachable", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
			srv.Close() // shut down before the call

			_, err := newClient(srv.URL).Status(ctx)

			var gwErr *gateway.Error
			Expect(errors.As(err, &gwErr)).To(BeTrue())
			Expect(gwErr.Message).To(Equal("service unreachable"))
			Expect(gwErr.Unwrap()).To(HaveOccurred())
		})

		It("returns a *gateway.Error on a malformed body", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("not json"))
			}))
			defer srv.Close()

			_, err := newClient(srv.URL).Query(ctx, "q", gateway.QueryParams{TopK: -1})

			var gwErr *gateway.Error
			Expect(errors.As(err, &gwErr)).To(BeTrue())
			Expect(gwErr.Message).To(Equal("decoding response"))
		})
	})

	Describe("Recent", func() {
		It("sends scope and max_messages, defaulting the window to non-nil", func() {
			var gotBody map[string]any

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/recent"))
				Expect(json.NewDecoder(r.Body).Decode(&gotBody)).To(Succeed())
				_ = json.NewEncoder(w).Encode(map[string]any{})
			}))
			defer srv.Close()

			resp, err := newClient(srv.URL).Recent(ctx, chat.Scope{CharacterID: "c1", ChatID: "ch1"}, 10)

			Expect(err).NotTo(HaveOccurred())
			Expect(gotBody["max_messages"]).To(BeNumerically("==", 10))
			Expect(resp.RecentMessages).NotTo(BeNil())
		})
	})

	Describe("Status", func() {
		It("is stable across repeated calls with no intervening writes", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodGet))
				_ = json.NewEncoder(w).Encode(map[string]any{"total_memories": 117})
			}))
			defer srv.Close()

			client := newClient(srv.URL)
			for range 3 {
				resp, err := client.Status(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.TotalMemories).To(Equal(117))
			}
		})
	})

	Describe("Delete", func() {
		It("sends an empty body for a full wipe", func() {
			var gotBody map[string]any

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(json.NewDecoder(r.Body).Decode(&gotBody)).To(Succeed())
				_ = json.NewEncoder(w).Encode(map[string]any{"deleted": 42})
			}))
			defer srv.Close()

			resp, err := newClient(srv.URL).Delete(ctx, chat.Scope{})

			Expect(err).NotTo(HaveOccurred())
			Expect(gotBody).To(BeEmpty())
			Expect(resp.Deleted).To(Equal(42))
		})
	})
})
