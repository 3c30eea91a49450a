// Package inject assembles the generation-time context block.
//
// On each generation the injector fetches the recent-message window and the
// reranked relevant memories for the active conversation, renders them as two
// headed text blocks, and publishes the concatenation into the recall prompt
// slot. A gateway failure aborts the whole cycle: a partial block is worse
// than the previous one, so the slot is only ever overwritten wholesale.
package inject

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/emberco/recall/pkg/chat"
	"github.com/emberco/recall/pkg/eventstream"
	"github.com/emberco/recall/pkg/gateway"
	"github.com/emberco/recall/pkg/settings"
)

const (
	recentHeader = "[Recent conversation]"
	memoryHeader = "[Relevant memories]"
)

// Request carries one injection cycle's inputs. QueryText is the retrieval
// query, typically the transcript's last message; when it is empty no memory
// query is issued at all. The settings are a
// point-in-time snapshot: a concurrent settings change never affects a cycle
// already underway.
type Request struct {
	Scope     chat.Scope
	QueryText string
	Personas  chat.Personas
	Context   settings.ContextSettings
}

// Injector builds and publishes context blocks.
type Injector struct {
	service gateway.Service
	slots   SlotPublisher
	events  eventstream.Publisher
	logger  *zap.Logger
}

// NewInjector creates a context injector.
func NewInjector(service gateway.Service, slots SlotPublisher, events eventstream.Publisher, logger *zap.Logger) *Injector {
	return &Injector{
		service: service,
		slots:   slots,
		events:  events,
		logger:  logger,
	}
}

// Inject runs one injection cycle and returns the published block. It
// returns "" without error when injection is disabled, scope is inactive, or
// the service has nothing for this conversation; in all three cases the slot
// keeps its previous content.
func (inj *Injector) Inject(ctx context.Context, req Request) (string, error) {
	if !req.Context.Integration {
		return "", nil
	}
	if !req.Scope.Active() {
		return "", nil
	}

	meta := eventstream.InjectionMeta{Slot: SlotName}

	var blocks []string
	if req.Context.RecentMessages {
		block, err := inj.recentBlock(ctx, req)
		if err != nil {
			inj.logger.Warn("injection aborted fetching recent messages", zap.Error(err))
			return "", err
		}
		if block != "" {
			meta.RecentIncluded = true
			blocks = append(blocks, block)
		}
	}

	var fetched int
	if req.QueryText != "" {
		block, n, err := inj.memoryBlock(ctx, req)
		if err != nil {
			inj.logger.Warn("injection aborted querying memories", zap.Error(err))
			return "", err
		}
		fetched = n
		meta.MemoriesFetched = n
		if block != "" {
			meta.MemoryIncluded = true
			blocks = append(blocks, block)
		}
	}

	if len(blocks) == 0 {
		// Nothing to say. The slot keeps its previous content, which may
		// now be stale; the event makes that visible.
		meta.SlotLeftAsIs = true
		inj.publishEvent(ctx, req.Scope, meta)
		return "", nil
	}

	content := strings.Join(blocks, "")
	inj.slots.PublishSlot(SlotName, content)
	inj.publishEvent(ctx, req.Scope, meta)

	inj.logger.Debug("context injected",
		zap.String("chat_id", req.Scope.ChatID),
		zap.Int("memories", fetched),
		zap.Bool("recent", meta.RecentIncluded),
	)

	return content, nil
}

// recentBlock renders the recent-message window as "<label>: <text>" lines.
func (inj *Injector) recentBlock(ctx context.Context, req Request) (string, error) {
	resp, err := inj.service.Recent(ctx, req.Scope, req.Context.RecentMessageCount)
	if err != nil {
		return "", err
	}
	if len(resp.RecentMessages) == 0 {
		return "", nil
	}

	lines := make([]string, 0, len(resp.RecentMessages))
	for _, msg := range resp.RecentMessages {
		lines = append(lines, req.Personas.Label(msg.MessageType)+": "+msg.Text)
	}
	return renderBlock(recentHeader, lines), nil
}

// memoryBlock renders the reranked relevant memories, one per line.
func (inj *Injector) memoryBlock(ctx context.Context, req Request) (string, int, error) {
	resp, err := inj.service.Query(ctx, req.QueryText, buildQueryParams(req))
	if err != nil {
		return "", 0, err
	}
	if len(resp.Results) == 0 {
		return "", 0, nil
	}

	lines := make([]string, 0, len(resp.Results))
	for _, result := range resp.Results {
		lines = append(lines, "- "+result.Text)
	}
	return renderBlock(memoryHeader, lines), len(resp.Results), nil
}

func buildQueryParams(req Request) gateway.QueryParams {
	cfg := req.Context
	params := gateway.QueryParams{
		CharacterID:    req.Scope.CharacterID,
		ChatID:         req.Scope.ChatID,
		TopK:           -1,
		RerankFastTopN: cfg.FastRerankCount,
		FinalTopN:      cfg.FinalMemoryCount,
	}
	if cfg.UseIntelligentSelection {
		minScore := cfg.MinRelevanceScore
		maxMem := cfg.MaxMemories
		minMem := cfg.MinMemories
		params.MinRelevanceScore = &minScore
		params.MaxMemories = &maxMem
		params.MinMemories = &minMem
	}
	return params
}

func renderBlock(header string, lines []string) string {
	return header + "\n" + strings.Join(lines, "\n") + "\n\n"
}

func (inj *Injector) publishEvent(ctx context.Context, scope chat.Scope, meta eventstream.InjectionMeta) {
	if err := inj.events.Publish(ctx, eventstream.NewContextInjected(scope, meta)); err != nil {
		inj.logger.Warn("publishing injection event failed", zap.Error(err))
	}
}
