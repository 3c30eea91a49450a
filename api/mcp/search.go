package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/emberco/recall/pkg/gateway"
)

var (
	searchToolName    = "memory_search"
	searchDescription = "Search stored conversation memories using semantic retrieval with reranking. Returns the most relevant memories for the query text, optionally scoped to a character and chat."
)

// SearchInput represents the input arguments for the memory search tool.
type SearchInput struct {
	Query       string `json:"query" jsonschema:"the search query text to find relevant memories"`
	CharacterID string `json:"character_id,omitempty" jsonschema:"restrict results to this character"`
	ChatID      string `json:"chat_id,omitempty" jsonschema:"restrict results to this chat"`
	TopN        int    `json:"top_n,omitempty" jsonschema:"number of results to return (default: 5)"`
}

// SearchResult represents a single retrieved memory.
type SearchResult struct {
	Text        string  `json:"text"`
	Score       float64 `json:"score"`
	MessageType string  `json:"message_type,omitempty"`
}

// SearchOutput represents the output of the memory search tool.
type SearchOutput struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}

// handleSearch processes a memory search request.
func (s *Server) handleSearch(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	logger := s.config.Logger

	topN := input.TopN
	if topN <= 0 {
		topN = 5
	}

	logger.Debug("MCP memory search request",
		zap.String("query", input.Query),
		zap.Int("topN", topN),
	)

	resp, err := s.config.Service.Query(ctx, input.Query, gateway.QueryParams{
		CharacterID: input.CharacterID,
		ChatID:      input.ChatID,
		TopK:        -1,
		FinalTopN:   topN,
	})
	if err != nil {
		logger.Error("failed to query memory service", zap.Error(err))
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to query memory service: %v", err)},
			},
		}, SearchOutput{}, nil
	}

	results := make([]SearchResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, SearchResult{
			Text:        r.Text,
			Score:       r.Score,
			MessageType: string(r.MessageType),
		})
	}

	output := SearchOutput{
		Query:   input.Query,
		Results: results,
		Count:   len(results),
	}

	// Serialize the structured output as JSON for the text field
	// Per MCP spec: tools returning structured content should also return
	// serialized JSON in a TextContent block for backwards compatibility
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal search output", zap.Error(err))
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to serialize results: %v", err)},
			},
		}, SearchOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
