package chat

import "strings"

// keySeparator joins part segments into a derived key.
const keySeparator = "|"

// DerivedKey computes the content identity of a message: text parts
// contribute their content, file parts their URL, anything else an empty
// segment, joined in part order. Two user messages with equal keys are the
// same prompt, which is how a regeneration replay is folded back into the
// group of the original turn instead of starting a new one.
func DerivedKey(m Message) string {
	segments := make([]string, len(m.Parts))
	for i, p := range m.Parts {
		switch p.Type {
		case PartText:
			segments[i] = p.Text
		case PartFile:
			segments[i] = p.URL
		default:
			segments[i] = ""
		}
	}
	return strings.Join(segments, keySeparator)
}
