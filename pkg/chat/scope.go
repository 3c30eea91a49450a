package chat

// Scope identifies a conversation by its (character, chat) pair. Both
// identifiers are opaque values supplied by the host.
type Scope struct {
	CharacterID string `json:"character_id,omitempty"`
	ChatID      string `json:"chat_id,omitempty"`
}

// Active reports whether both identifiers are present. Pipelines no-op on an
// inactive scope rather than erroring: capture and injection are best-effort.
func (s Scope) Active() bool {
	return s.CharacterID != "" && s.ChatID != ""
}
