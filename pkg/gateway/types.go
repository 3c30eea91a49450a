package gateway

import "github.com/emberco/recall/pkg/chat"

// MemoryRecord is the payload for storing a memory. A record without scoping
// identifiers is still valid (a global memory) but cannot be targeted by
// chat-scoped deletion.
type MemoryRecord struct {
	Text        string           `json:"text"`
	CharacterID string           `json:"character_id,omitempty"`
	ChatID      string           `json:"chat_id,omitempty"`
	MessageType chat.MessageType `json:"message_type,omitempty"`
}

// ChatMessageRequest carries a transcript entry in its native field shape
// plus conversation scoping. The embedded message fields are inlined into
// the JSON body so the service sees the host's original keys.
type ChatMessageRequest struct {
	chat.Message

	CharacterID string           `json:"character_id,omitempty"`
	ChatID      string           `json:"chat_id,omitempty"`
	MessageType chat.MessageType `json:"message_type,omitempty"`
}

// QueryParams tunes a retrieval request. TopK is always serialized: -1 means
// unbounded first-pass retrieval, with scope filtering happening server-side.
// RerankFastTopN >= FinalTopN is the intended relationship; the service does
// not enforce it, so violating it is a caller error.
type QueryParams struct {
	CharacterID     string `json:"character_id,omitempty"`
	ChatID          string `json:"chat_id,omitempty"`
	IncludeAllChats bool   `json:"include_all_chats,omitempty"`

	TopK           int `json:"top_k"`
	RerankFastTopN int `json:"rerank_fast_top_n,omitempty"`
	FinalTopN      int `json:"final_top_n,omitempty"`

	// Intelligent selection: service-side filtering by relevance threshold
	// and result-count bounds. Only sent when enabled by settings.
	MinRelevanceScore *float64 `json:"min_relevance_score,omitempty"`
	MaxMemories       *int     `json:"max_memories,omitempty"`
	MinMemories       *int     `json:"min_memories,omitempty"`
}

// queryRequest is the wire shape for POST /query.
type queryRequest struct {
	Text string `json:"text"`
	QueryParams
}

// batchRequest is the wire shape for POST /add_batch.
type batchRequest struct {
	Messages []MemoryRecord `json:"messages"`
}

// recentRequest is the wire shape for POST /recent.
type recentRequest struct {
	CharacterID string `json:"character_id"`
	ChatID      string `json:"chat_id"`
	MaxMessages int    `json:"max_messages"`
}

// deleteRequest is the wire shape for POST /delete. Empty scoping fields
// delete all memories.
type deleteRequest struct {
	CharacterID string `json:"character_id,omitempty"`
	ChatID      string `json:"chat_id,omitempty"`
}

// AddResponse is the service's reply to a single add.
type AddResponse struct {
	Success bool   `json:"success,omitempty"`
	ID      string `json:"id,omitempty"`
}

// BatchError describes a per-message failure inside an otherwise accepted
// batch.
type BatchError struct {
	Index int    `json:"index,omitempty"`
	Error string `json:"error,omitempty"`
}

// BatchResponse summarizes a batch add.
type BatchResponse struct {
	Processed int          `json:"processed"`
	Errors    []BatchError `json:"errors"`
}

// QueryResult is a single retrieved memory.
type QueryResult struct {
	Text        string           `json:"text"`
	Score       float64          `json:"score,omitempty"`
	MessageType chat.MessageType `json:"message_type,omitempty"`
}

// QueryResponse holds reranked retrieval results.
type QueryResponse struct {
	Results    []QueryResult `json:"results"`
	TokenCount int           `json:"token_count,omitempty"`
}

// RecentMessage is one turn from the recent-message window.
type RecentMessage struct {
	MessageType chat.MessageType `json:"message_type"`
	Text        string           `json:"text"`
}

// RecentResponse holds the recent-message window for a scope.
type RecentResponse struct {
	RecentMessages []RecentMessage `json:"recent_messages"`
	TokenCount     int             `json:"token_count,omitempty"`
}

// StatusResponse reports memory counts. The scoped fields are only populated
// by deployments that track per-scope counts.
type StatusResponse struct {
	TotalMemories     int `json:"total_memories"`
	CharacterMemories int `json:"character_memories,omitempty"`
	ChatMemories      int `json:"chat_memories,omitempty"`
}

// DeleteResponse reports how many memories a delete removed.
type DeleteResponse struct {
	Deleted int `json:"deleted"`
}
