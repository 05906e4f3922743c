package domain

// Match is a stored chunk returned by similarity search.
type Match struct {
	Text            string  `json:"text"`
	SimilarityScore float64 `json:"similarity_score"`
	Index           int     `json:"index"`
}

// Role of a conversation message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in a session's conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
}
