package types

// Attribute is a single key/value pair attached to an event or an operation
// result. Attribute order is significant: downstream consumers and tests rely
// on attributes appearing in the order they were recorded.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Event represents a typed event emitted during state transitions.
type Event struct {
	Type       string      `json:"type"`
	Attributes []Attribute `json:"attributes"`
}

// Attr returns the value recorded under key, or "" when absent.
func (e *Event) Attr(key string) string {
	if e == nil {
		return ""
	}
	for _, attr := range e.Attributes {
		if attr.Key == key {
			return attr.Value
		}
	}
	return ""
}
