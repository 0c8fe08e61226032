package types

// Event is the wire form of a module event: a dotted type name plus flat
// string attributes. Module packages wrap it in their own envelope before
// it reaches subscribers.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
