package mcp

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/emberco/recall/pkg/chat"
	"github.com/emberco/recall/pkg/gateway"
	testutils "github.com/emberco/recall/pkg/utils/test"
)

var _ = Describe("Memory search tool", func() {
	var (
		service *testutils.MockGateway
		server  *Server
		ctx     context.Context
	)

	BeforeEach(func() {
		service = testutils.NewMockGateway()

		var err error
		server, err = NewServer(Config{
			Service: service,
			Logger:  zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())
		ctx = context.TODO()
	})

	It("returns retrieved memories as structured output", func() {
		service.QueryResponse = &gateway.QueryResponse{
			Results: []gateway.QueryResult{
				{Text: "the mill road floods in spring", Score: 0.91, MessageType: chat.MessageTypeUser},
				{Text: "Vela cannot swim", Score: 0.77},
			},
		}

		result, output, err := server.handleSearch(ctx, &sdkmcp.CallToolRequest{}, SearchInput{
			Query: "crossing the river",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.IsError).To(BeFalse())

		Expect(output.Query).To(Equal("crossing the river"))
		Expect(output.Count).To(Equal(2))
		Expect(output.Results[0].Text).To(Equal("the mill road floods in spring"))
		Expect(output.Results[0].Score).To(Equal(0.91))
		Expect(output.Results[0].MessageType).To(Equal("user"))
	})

	It("defaults the result count and passes scoping through", func() {
		_, _, err := server.handleSearch(ctx, &sdkmcp.CallToolRequest{}, SearchInput{
			Query:       "crossing the river",
			CharacterID: "vela",
			ChatID:      "chat-12",
		})
		Expect(err).NotTo(HaveOccurred())

		calls := service.CallsTo("query")
		Expect(calls).To(HaveLen(1))
		Expect(calls[0].QueryParams.FinalTopN).To(Equal(5))
		Expect(calls[0].QueryParams.TopK).To(Equal(-1))
		Expect(calls[0].QueryParams.CharacterID).To(Equal("vela"))
		Expect(calls[0].QueryParams.ChatID).To(Equal("chat-12"))
	})

	It("reports gateway failures as tool errors", func() {
		service.Err = errors.New("service unreachable")

		result, output, err := server.handleSearch(ctx, &sdkmcp.CallToolRequest{}, SearchInput{
			Query: "anything",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.IsError).To(BeTrue())
		Expect(output.Count).To(Equal(0))
	})
})

var _ = Describe("NewServer", func() {
	It("requires a gateway unless noop", func() {
		_, err := NewServer(Config{Logger: zap.NewNop()})
		Expect(err).To(HaveOccurred())
	})

	It("builds an empty server in noop mode", func() {
		server, err := NewServer(Config{Noop: true})
		Expect(err).NotTo(HaveOccurred())
		Expect(server.Handler()).To(BeNil())
	})
})
