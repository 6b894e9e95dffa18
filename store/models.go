package store

import "encoding/json"

// Role of a message in the display transcript. Assistant turns are stored as
// "ai", which is what the web client renders and translates.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "ai"
)

// DefaultTitle is the title of a session before its first message.
const DefaultTitle = "New Chat"

// Message is one entry of the display transcript.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Avatar  string `json:"avatar,omitempty"`
}

// ProviderHistory is the AI provider's own record of a conversation. Entries
// are stored and returned verbatim.
type ProviderHistory []json.RawMessage

// Session is the registry metadata of one chat.
type Session struct {
	ID                   string `json:"-"`
	Title                string `json:"title"`
	FirstMessageReceived bool   `json:"first_message_received"`
}
