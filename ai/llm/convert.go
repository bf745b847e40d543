package llm

import "github.com/sashabaranov/go-openai"

// convertMessages maps provider-agnostic messages to the wire format.
// Messages carrying images become multi-content messages; plain text
// messages stay plain to keep compatibility with text-only models.
func convertMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		role := m.Role
		switch role {
		case "system", "user", "assistant":
		default:
			role = openai.ChatMessageRoleUser
		}

		if len(m.Images) == 0 {
			out[i] = openai.ChatCompletionMessage{Role: role, Content: m.Text}
			continue
		}

		parts := make([]openai.ChatMessagePart, 0, len(m.Images)+1)
		if m.Text != "" {
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: m.Text,
			})
		}
		for _, url := range m.Images {
			parts = append(parts, openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: url},
			})
		}
		out[i] = openai.ChatCompletionMessage{Role: role, MultiContent: parts}
	}
	return out
}

// SystemPrompt creates a system message.
func SystemPrompt(content string) Message {
	return Message{Role: "system", Text: content}
}
