package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func userMsg(id, text string) Message {
	return Message{ID: id, Role: RoleUser, Parts: []Part{TextPart(text)}}
}

func assistantMsg(id, text string) Message {
	return Message{ID: id, Role: RoleAssistant, Parts: []Part{TextPart(text)}}
}

func TestReconcileEmpty(t *testing.T) {
	if got := Reconcile(nil); got != nil {
		t.Errorf("Reconcile(nil) = %v, want nil", got)
	}
	if got := Reconcile([]Message{}); got != nil {
		t.Errorf("Reconcile(empty) = %v, want nil", got)
	}
}

func TestReconcileSingleTurn(t *testing.T) {
	messages := []Message{
		userMsg("u1", "hello"),
		assistantMsg("a1", "hi there"),
	}

	groups := Reconcile(messages)
	require.Len(t, groups, 1)
	require.Equal(t, "u1", groups[0].GroupID)
	require.Equal(t, "u1", groups[0].UserMessage.ID)
	require.Len(t, groups[0].AssistantMessages, 1)
	require.Equal(t, "a1", groups[0].AssistantMessages[0].ID)
}

func TestReconcileTrailingUserUnclaimed(t *testing.T) {
	// A user message still waiting for its first response yields no group.
	messages := []Message{
		userMsg("u1", "hello"),
	}
	require.Empty(t, Reconcile(messages))

	messages = append(messages, assistantMsg("a1", "hi"), userMsg("u2", "next"))
	groups := Reconcile(messages)
	require.Len(t, groups, 1)
	require.Equal(t, "u1", groups[0].GroupID)
}

func TestReconcileRegenerationFoldsIntoSameGroup(t *testing.T) {
	// Resending the identical prompt is a regeneration replay: the replayed
	// user message and its responses join the original group.
	messages := []Message{
		userMsg("u1", "tell me a joke"),
		assistantMsg("a1", "first answer"),
		userMsg("u2", "tell me a joke"),
		assistantMsg("a2", "second answer"),
	}

	groups := Reconcile(messages)
	require.Len(t, groups, 1)
	require.Equal(t, "u1", groups[0].GroupID)
	require.Len(t, groups[0].AssistantMessages, 2)
	// Carousel order is arrival order.
	require.Equal(t, "a1", groups[0].AssistantMessages[0].ID)
	require.Equal(t, "a2", groups[0].AssistantMessages[1].ID)
}

func TestReconcileRegenerationProperty(t *testing.T) {
	// Appending one more regeneration grows the same group by one and
	// never creates a new group.
	messages := []Message{
		userMsg("u1", "prompt"),
		assistantMsg("a1", "r1"),
	}
	before := Reconcile(messages)
	require.Len(t, before, 1)

	parts, ok := RegenerateParts(messages, "a1")
	require.True(t, ok)
	messages = append(messages, Message{ID: "u2", Role: RoleUser, Parts: parts})
	messages = append(messages, assistantMsg("a2", "r2"))

	after := Reconcile(messages)
	require.Len(t, after, 1)
	require.Equal(t, before[0].GroupID, after[0].GroupID)
	require.Len(t, after[0].AssistantMessages, len(before[0].AssistantMessages)+1)
}

func TestReconcileDistinctPromptsDistinctGroups(t *testing.T) {
	messages := []Message{
		userMsg("u1", "alpha"),
		assistantMsg("a1", "r1"),
		userMsg("u2", "beta"),
		assistantMsg("a2", "r2"),
	}

	groups := Reconcile(messages)
	require.Len(t, groups, 2)
	require.Equal(t, "u1", groups[0].GroupID)
	require.Equal(t, "u2", groups[1].GroupID)
}

func TestReconcileSamePromptLaterIsNewGroup(t *testing.T) {
	// An identical prompt separated by a different turn is a new turn,
	// not a regeneration: the fold-back only looks at the directly
	// following run.
	messages := []Message{
		userMsg("u1", "alpha"),
		assistantMsg("a1", "r1"),
		userMsg("u2", "beta"),
		assistantMsg("a2", "r2"),
		userMsg("u3", "alpha"),
		assistantMsg("a3", "r3"),
	}

	groups := Reconcile(messages)
	require.Len(t, groups, 3)
	require.Equal(t, "u3", groups[2].GroupID)
	require.Len(t, groups[2].AssistantMessages, 1)
}

func TestReconcileMultipleAssistantRun(t *testing.T) {
	messages := []Message{
		userMsg("u1", "prompt"),
		assistantMsg("a1", "r1"),
		assistantMsg("a2", "r2"),
	}

	groups := Reconcile(messages)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].AssistantMessages, 2)
}

func TestReconcileAttachmentKeyDistinguishesGroups(t *testing.T) {
	withImage := Message{ID: "u1", Role: RoleUser, Parts: []Part{
		TextPart("describe this"),
		FilePart("image/png", "data:image/png;base64,AAAA"),
	}}
	withOtherImage := Message{ID: "u2", Role: RoleUser, Parts: []Part{
		TextPart("describe this"),
		FilePart("image/png", "data:image/png;base64,BBBB"),
	}}

	messages := []Message{
		withImage,
		assistantMsg("a1", "a cat"),
		withOtherImage,
		assistantMsg("a2", "a dog"),
	}

	groups := Reconcile(messages)
	require.Len(t, groups, 2)
}

// Every message lands in exactly one group, or stays unclaimed only when
// it is a user message without any response.
func TestReconcilePartitionProperty(t *testing.T) {
	messages := []Message{
		userMsg("u1", "alpha"),
		assistantMsg("a1", "r1"),
		userMsg("u2", "alpha"),
		assistantMsg("a2", "r2"),
		userMsg("u3", "beta"),
		assistantMsg("a3", "r3"),
		userMsg("u4", "gamma"), // mid-flight, unclaimed
	}

	groups := Reconcile(messages)

	seen := map[string]int{}
	for _, g := range groups {
		seen[g.UserMessage.ID]++
		for _, a := range g.AssistantMessages {
			seen[a.ID]++
		}
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("message %s appears in %d groups", id, n)
		}
	}

	for _, m := range messages {
		if seen[m.ID] == 0 && m.Role != RoleUser {
			t.Errorf("unclaimed non-user message %s", m.ID)
		}
	}
	// u2 is folded into u1's group and counted through the group's
	// assistant list only; verify just the trailing user is left out.
	require.Equal(t, 0, seen["u4"])
}

func TestReconcileIdempotent(t *testing.T) {
	messages := []Message{
		userMsg("u1", "alpha"),
		assistantMsg("a1", "r1"),
		userMsg("u2", "alpha"),
		assistantMsg("a2", "r2"),
		userMsg("u3", "beta"),
		assistantMsg("a3", "r3"),
	}

	first := Reconcile(messages)
	second := Reconcile(messages)
	require.Equal(t, first, second)
}

func TestRegeneratePartsUnknownID(t *testing.T) {
	messages := []Message{
		userMsg("u1", "alpha"),
		assistantMsg("a1", "r1"),
	}
	_, ok := RegenerateParts(messages, "nope")
	require.False(t, ok)
}
