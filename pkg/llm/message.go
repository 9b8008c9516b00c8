// Package llm holds the provider-agnostic message and response types shared
// by conversation storage, context assembly, and the completion callers.
package llm

// Message is a single message in a conversation transcript. Content is an
// array of ContentBlocks so a message can carry more than plain text.
type Message struct {
	Role    string         `json:"role"` // "system", "user", "assistant"
	Content []ContentBlock `json:"content"`
}

// ContentBlock is a single piece of content within a message. The Type field
// determines which other fields are populated.
type ContentBlock struct {
	Type string `json:"type"` // "text" or "image"

	// Text content (type="text")
	Text string `json:"text,omitempty"`

	// Image content (type="image")
	ImageURL  string `json:"image_url,omitempty"`
	MediaType string `json:"media_type,omitempty"`
}

// NewTextMessage creates a simple text message with the given role and content.
func NewTextMessage(role, text string) Message {
	return Message{
		Role: role,
		Content: []ContentBlock{
			{Type: "text", Text: text},
		},
	}
}

// GetText returns the concatenated text content from all text blocks in the
// message.
func (m *Message) GetText() string {
	var result string
	for _, block := range m.Content {
		if block.Type == "text" {
			result += block.Text
		}
	}
	return result
}
