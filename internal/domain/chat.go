package domain

// ChatMessage is one turn in a conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the inbound chat payload. Only the fields the gate needs are
// modeled; the raw body is forwarded to the upstream verbatim.
type ChatRequest struct {
	Provider string        `json:"provider"`
	Messages []ChatMessage `json:"messages"`
}
