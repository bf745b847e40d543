package chat

// Group associates one user turn with every assistant response ever
// generated for it, including regenerations. GroupID is the id of the
// originating user message; assistant messages keep arrival order, so
// index 0 is the first response and the last index the newest.
type Group struct {
	GroupID           string
	UserMessage       Message
	AssistantMessages []Message
}

// Reconcile partitions the full ordered transcript into groups.
//
// The scan claims each message at most once: a user message opens a group,
// the contiguous run of assistant messages after it joins the group, and
// any directly following user message with the same derived key (a
// regeneration replay) is folded in together with its own assistant run.
// A group is only emitted once it has at least one assistant message; a
// trailing user message still waiting for its first response stays
// unclaimed.
func Reconcile(messages []Message) []Group {
	claimed := make([]bool, len(messages))
	var groups []Group

	for i := range messages {
		if claimed[i] || messages[i].Role != RoleUser {
			continue
		}

		promptKey := DerivedKey(messages[i])
		var assistants []Message

		j := i + 1
		for j < len(messages) && messages[j].Role == RoleAssistant {
			assistants = append(assistants, messages[j])
			claimed[j] = true
			j++
		}

		// Fold regeneration replays: same prompt resent verbatim, followed
		// by its own assistant run. Stops at the first different prompt.
		for j < len(messages) && messages[j].Role == RoleUser && !claimed[j] && DerivedKey(messages[j]) == promptKey {
			claimed[j] = true
			j++
			for j < len(messages) && messages[j].Role == RoleAssistant {
				assistants = append(assistants, messages[j])
				claimed[j] = true
				j++
			}
		}

		if len(assistants) == 0 {
			continue
		}

		claimed[i] = true
		groups = append(groups, Group{
			GroupID:           messages[i].ID,
			UserMessage:       messages[i],
			AssistantMessages: assistants,
		})
	}

	return groups
}

// GroupOf returns the group containing the given assistant message id.
func GroupOf(groups []Group, assistantID string) (Group, bool) {
	for _, g := range groups {
		for _, a := range g.AssistantMessages {
			if a.ID == assistantID {
				return g, true
			}
		}
	}
	return Group{}, false
}

// RegenerateParts extracts the parts of the user message that originated
// the group containing the given assistant message. Resending those exact
// parts produces a user message with an identical derived key, which
// Reconcile folds back into the same group as one more carousel entry.
func RegenerateParts(messages []Message, assistantID string) ([]Part, bool) {
	g, ok := GroupOf(Reconcile(messages), assistantID)
	if !ok {
		return nil, false
	}
	return g.UserMessage.Parts, true
}
