// Package chat defines the host-side conversation model shared by the recall
// pipelines: conversation scopes, transcript messages, persona labels, and the
// capture signals delivered by host lifecycle events.
package chat

// MessageType classifies which side of the conversation produced a message.
type MessageType string

const (
	// MessageTypeUser marks a message authored by the user.
	MessageTypeUser MessageType = "user"

	// MessageTypeAssistant marks a message authored by the character/assistant.
	MessageTypeAssistant MessageType = "assistant"
)

// Message represents a single transcript entry as delivered by the chat host.
// Hosts disagree on which field carries the message body (SillyTavern-style
// hosts use "mes", others use "message", "text", or "content"), so all known
// variants are kept and GetText resolves them in a fixed order.
type Message struct {
	Mes     string `json:"mes,omitempty"`
	Message string `json:"message,omitempty"`
	Text    string `json:"text,omitempty"`
	Content string `json:"content,omitempty"`

	// Name is the display name the host attached to the entry, if any.
	Name string `json:"name,omitempty"`

	// IsUser is the host's user/assistant flag for the entry.
	IsUser bool `json:"is_user"`
}

// GetText returns the message body from the first populated field among
// mes, message, text, and content. Returns "" when none are set.
func (m *Message) GetText() string {
	for _, candidate := range []string{m.Mes, m.Message, m.Text, m.Content} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

// Type derives the message type from the host's user/assistant flag.
func (m *Message) Type() MessageType {
	if m.IsUser {
		return MessageTypeUser
	}
	return MessageTypeAssistant
}

// Personas holds the host's configured display names for the two speakers.
type Personas struct {
	UserName      string `json:"user_name,omitempty"`
	CharacterName string `json:"character_name,omitempty"`
}

// Label resolves the speaker label for a message type, falling back to the
// raw type when no display name is configured.
func (p Personas) Label(t MessageType) string {
	switch t {
	case MessageTypeUser:
		if p.UserName != "" {
			return p.UserName
		}
	case MessageTypeAssistant:
		if p.CharacterName != "" {
			return p.CharacterName
		}
	}
	return string(t)
}
