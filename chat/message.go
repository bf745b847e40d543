// Package chat models a chat transcript as an append-only list of
// multi-part messages, and derives the user-turn/response groups the UI
// renders as regeneration carousels.
package chat

import (
	"strings"

	"github.com/google/uuid"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// PartType tags the variants of the Part union.
type PartType string

const (
	PartText PartType = "text"
	PartFile PartType = "file"
)

// Part is a tagged union: a text fragment or a file attachment.
// Text is set for PartText; MediaType, URL and Filename for PartFile.
type Part struct {
	Type      PartType `json:"type"`
	Text      string   `json:"text,omitempty"`
	MediaType string   `json:"mediaType,omitempty"`
	URL       string   `json:"url,omitempty"`
	Filename  string   `json:"filename,omitempty"`
}

// TextPart builds a text part.
func TextPart(text string) Part {
	return Part{Type: PartText, Text: text}
}

// FilePart builds a file attachment part. url is either a data URI or a
// remote URL.
func FilePart(mediaType, url string) Part {
	return Part{Type: PartFile, MediaType: mediaType, URL: url}
}

// Message is one entry of the transcript. Messages are immutable once
// finalized; only the message currently streaming mutates its own parts.
type Message struct {
	ID    string `json:"id"`
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

// NewMessage creates a message with a fresh unique id.
func NewMessage(role Role, parts ...Part) Message {
	return Message{
		ID:    uuid.NewString(),
		Role:  role,
		Parts: parts,
	}
}

// Text returns the concatenation of all text parts.
func (m Message) Text() string {
	var sb strings.Builder
	for _, p := range m.Parts {
		if p.Type == PartText {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}
