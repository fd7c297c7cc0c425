package waitfor

// NodeQuery is the document query capability used by [NodePoller]: given a
// selector, it reports how many live elements currently match.
//
// The query is injected explicitly rather than reached through ambient
// state, which keeps the specialization testable with a fake. A production
// implementation backed by CSS selector matching over HTML documents is
// provided by [DocumentQuery].
type NodeQuery interface {
	// Count returns the number of elements currently matching selector.
	// Implementations should return 0 (never panic) when the document is
	// unavailable or the selector is invalid.
	Count(selector string) int
}

// QueryFunc adapts an ordinary function to the [NodeQuery] interface.
type QueryFunc func(selector string) int

// Count calls f(selector).
func (f QueryFunc) Count(selector string) int {
	return f(selector)
}

// NodePoller is a [Poller] whose condition is fixed at construction to
// "at least one element matches the selector".
//
// NodePoller adds nothing beyond the fixed condition and the selector
// accessor; registration, Start, and the state machine are the embedded
// [Poller]'s, by delegation.
type NodePoller struct {
	*Poller
	selector string
}

// NewNodePoller creates a [NodePoller] polling query for the presence of
// elements matching selector. Zero matches are falsy; any positive count is
// truthy.
//
// A nil query yields a nil condition, so Start never schedules a trial and
// the poller stays stalled, the same permissive contract as [New] with a
// nil condition.
func NewNodePoller(query NodeQuery, selector string, opts ...Option) *NodePoller {
	return &NodePoller{
		Poller:   New(NodeCondition(query, selector), opts...),
		selector: selector,
	}
}

// Selector returns the selector this poller watches.
func (np *NodePoller) Selector() string {
	return np.selector
}
