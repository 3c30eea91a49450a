package inject

import (
	"sync"
	"time"
)

const (
	// SlotName is the prompt slot the injector owns. Every injection
	// overwrites it wholesale.
	SlotName = "recall-context"

	// SlotPosition is where hosts should splice the slot into the prompt,
	// counted in messages from the end.
	SlotPosition = 4

	// SlotPriority orders the slot against other prompt contributors.
	SlotPriority = 100
)

// Slot is one named prompt fragment with placement metadata.
type Slot struct {
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	Position  int       `json:"position"`
	Priority  int       `json:"priority"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SlotPublisher receives assembled context blocks. Implementations decide
// where the block goes (the in-memory registry the server exposes, a host
// callback, a test recorder).
type SlotPublisher interface {
	PublishSlot(name, content string)
}

// Registry is the in-memory slot store served over GET /v1/prompt/:slot.
type Registry struct {
	mu    sync.RWMutex
	slots map[string]Slot
}

// NewRegistry creates an empty slot registry.
func NewRegistry() *Registry {
	return &Registry{slots: make(map[string]Slot)}
}

// PublishSlot overwrites the named slot with new content.
func (r *Registry) PublishSlot(name, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[name] = Slot{
		Name:      name,
		Content:   content,
		Position:  SlotPosition,
		Priority:  SlotPriority,
		UpdatedAt: time.Now().UTC(),
	}
}

// Get returns the named slot if it has ever been published.
func (r *Registry) Get(name string) (Slot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	slot, ok := r.slots[name]
	return slot, ok
}
