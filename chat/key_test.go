package chat

import "testing"

func TestDerivedKey(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{
			name: "single text part",
			msg:  Message{Parts: []Part{TextPart("hello")}},
			want: "hello",
		},
		{
			name: "text and attachment",
			msg: Message{Parts: []Part{
				TextPart("look"),
				FilePart("image/png", "data:image/png;base64,AAAA"),
			}},
			want: "look|data:image/png;base64,AAAA",
		},
		{
			name: "attachment only",
			msg:  Message{Parts: []Part{FilePart("image/jpeg", "https://example.com/x.jpg")}},
			want: "https://example.com/x.jpg",
		},
		{
			name: "unknown part type contributes empty segment",
			msg: Message{Parts: []Part{
				TextPart("a"),
				{Type: PartType("reasoning"), Text: "ignored"},
				TextPart("b"),
			}},
			want: "a||b",
		},
		{
			name: "no parts",
			msg:  Message{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DerivedKey(tt.msg); got != tt.want {
				t.Errorf("DerivedKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDerivedKeyEqualityDefinesSamePrompt(t *testing.T) {
	// Identity differs, content matches: same prompt.
	a := NewMessage(RoleUser, TextPart("same"), FilePart("image/png", "data:x"))
	b := NewMessage(RoleUser, TextPart("same"), FilePart("image/png", "data:x"))
	if a.ID == b.ID {
		t.Fatalf("NewMessage must assign unique ids")
	}
	if DerivedKey(a) != DerivedKey(b) {
		t.Errorf("content-identical messages must share a derived key")
	}

	// Same text, different attachment: different prompt.
	c := NewMessage(RoleUser, TextPart("same"), FilePart("image/png", "data:y"))
	if DerivedKey(a) == DerivedKey(c) {
		t.Errorf("messages with different attachments must not share a derived key")
	}
}

func TestMessageText(t *testing.T) {
	m := Message{Parts: []Part{
		TextPart("hello "),
		FilePart("image/png", "data:x"),
		TextPart("world"),
	}}
	if got := m.Text(); got != "hello world" {
		t.Errorf("Text() = %q, want %q", got, "hello world")
	}
}
