package chat

// Status mirrors the transport state of the in-flight turn.
type Status string

const (
	StatusReady     Status = "ready"
	StatusSubmitted Status = "submitted"
	StatusStreaming Status = "streaming"
)

// Carousel tracks the per-group active slide across reconciliations.
// It is a plain state holder for a single viewer; not safe for
// concurrent use.
type Carousel struct {
	active        map[string]int
	lastMessageID string
	lastStatus    Status
}

func NewCarousel() *Carousel {
	return &Carousel{
		active:     make(map[string]int),
		lastStatus: StatusReady,
	}
}

// ActiveIndex returns the active slide of the group, clamped into
// [0, len(assistantMessages)-1]. Groups always hold at least one
// assistant message, so the result always resolves to an existing slide.
func (c *Carousel) ActiveIndex(g Group) int {
	return clamp(c.active[g.GroupID], 0, len(g.AssistantMessages)-1)
}

// SetActive records a manual navigation, clamped to the group bounds.
func (c *Carousel) SetActive(g Group, index int) {
	c.active[g.GroupID] = clamp(index, 0, len(g.AssistantMessages)-1)
}

// Observe applies the active-slide policy after a reconciliation pass:
// when the newest message is an assistant message that either was not
// seen before or whose stream has just settled, the group it belongs to
// snaps to its last slide. The settle trigger fires only on the
// streaming-to-ready transition, so manual navigation afterwards is not
// overridden.
func (c *Carousel) Observe(messages []Message, status Status) {
	defer func() { c.lastStatus = status }()

	if len(messages) == 0 {
		return
	}
	last := messages[len(messages)-1]
	if last.Role != RoleAssistant {
		return
	}

	newlyObserved := last.ID != c.lastMessageID
	settled := status == StatusReady && c.lastStatus != StatusReady
	if !newlyObserved && !settled {
		return
	}
	if newlyObserved {
		c.lastMessageID = last.ID
	}

	g, ok := GroupOf(Reconcile(messages), last.ID)
	if !ok {
		return
	}
	lastIndex := len(g.AssistantMessages) - 1
	if c.active[g.GroupID] != lastIndex {
		c.active[g.GroupID] = lastIndex
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
