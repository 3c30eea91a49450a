package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/emberco/recall/pkg/bridge"
	"github.com/emberco/recall/pkg/chat"
	"github.com/emberco/recall/pkg/gateway"
	"github.com/emberco/recall/pkg/inject"
	"github.com/emberco/recall/pkg/settings"
)

// GenerationResponse is the reply to a generation-started event: the
// assembled context block the host should splice into its prompt.
type GenerationResponse struct {
	Slot    string `json:"slot"`
	Content string `json:"content"`
}

// QueryRequest is the body for POST /v1/query.
type QueryRequest struct {
	Text string `json:"text"`
	gateway.QueryParams
}

// handlePing returns a health check response including the last observed
// memory service state.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "pong",
		"service": s.poller.State(),
	})
}

// handleEvent receives a host lifecycle event. Message events are
// acknowledged immediately and captured in the background;
// generation-started is synchronous and returns the context block.
func (s *Server) handleEvent(c *fiber.Ctx) error {
	kind := bridge.EventKind(c.Params("kind"))

	switch kind {
	case bridge.EventMessageSent, bridge.EventMessageReceived:
		payload := append([]byte(nil), c.Body()...)

		var err error
		if kind == bridge.EventMessageSent {
			err = s.bridge.HandleMessageSent(payload)
		} else {
			err = s.bridge.HandleMessageReceived(payload)
		}
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"accepted": true})

	case bridge.EventChatChanged:
		var state bridge.ChatState
		if err := c.BodyParser(&state); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "malformed chat state"})
		}
		s.bridge.SetChatState(state)
		return c.SendStatus(fiber.StatusNoContent)

	case bridge.EventGenerationStarted:
		block, err := s.bridge.HandleGenerationStarted(c.Context())
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: err.Error()})
		}
		return c.JSON(GenerationResponse{Slot: inject.SlotName, Content: block})

	default:
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "unknown event kind"})
	}
}

// handleGetPrompt returns the current content of a prompt slot.
func (s *Server) handleGetPrompt(c *fiber.Ctx) error {
	name := c.Params("slot")
	slot, ok := s.slots.Get(name)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "slot has no content"})
	}
	return c.JSON(slot)
}

// handleGetSettings returns the current settings snapshot.
func (s *Server) handleGetSettings(c *fiber.Ctx) error {
	snap := s.store.Snapshot()
	return c.JSON(snap)
}

// handlePutSettings applies a map of dotted settings keys and persists the
// result. The whole update is rejected if any key or value is invalid.
func (s *Server) handlePutSettings(c *fiber.Ctx) error {
	var updates map[string]string
	if err := c.BodyParser(&updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "malformed settings update"})
	}

	// Validate against a throwaway copy before touching the store.
	trial := s.store.Snapshot()
	for key, value := range updates {
		if err := settings.ApplyKey(&trial, key, value); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
		}
	}

	updated, err := s.store.Update(func(st *settings.Settings) {
		for key, value := range updates {
			if err := settings.ApplyKey(st, key, value); err != nil {
				s.logger.Warn("settings key failed to apply",
					zap.String("key", key),
					zap.Error(err),
				)
			}
		}
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to persist settings"})
	}

	return c.JSON(updated)
}

// handleStatus proxies the memory service status.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	resp, err := s.service.Status(c.Context())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: err.Error()})
	}
	return c.JSON(resp)
}

// handleSync bulk-submits the mirrored transcript.
func (s *Server) handleSync(c *fiber.Ctx) error {
	result, err := s.bridge.HandleSync(c.Context())
	if err != nil {
		status := fiber.StatusBadGateway
		if result == nil {
			status = fiber.StatusConflict
		}
		return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
	}
	return c.JSON(result)
}

// handleAddMemory stores a single memory directly.
func (s *Server) handleAddMemory(c *fiber.Ctx) error {
	var record gateway.MemoryRecord
	if err := c.BodyParser(&record); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "malformed memory record"})
	}
	if record.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "text is required"})
	}

	resp, err := s.service.AddMemory(c.Context(), record)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: err.Error()})
	}
	return c.JSON(resp)
}

// handleQuery retrieves reranked memories.
func (s *Server) handleQuery(c *fiber.Ctx) error {
	var req QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "malformed query"})
	}
	if req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "text is required"})
	}

	resp, err := s.service.Query(c.Context(), req.Text, req.QueryParams)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: err.Error()})
	}
	return c.JSON(resp)
}

// handleDeleteMemories deletes memories for the scope given in query
// parameters. No parameters deletes everything.
func (s *Server) handleDeleteMemories(c *fiber.Ctx) error {
	scope := scopeFromQuery(c)

	resp, err := s.service.Delete(c.Context(), scope)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: err.Error()})
	}
	return c.JSON(resp)
}

func scopeFromQuery(c *fiber.Ctx) chat.Scope {
	return chat.Scope{
		CharacterID: c.Query("character_id"),
		ChatID:      c.Query("chat_id"),
	}
}
