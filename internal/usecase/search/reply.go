package search

// Kind classifies a reply for the transport layer.
type Kind string

// Reply kinds.
const (
	KindResults     Kind = "results"
	KindNoResults   Kind = "no_results"
	KindExhausted   Kind = "exhausted"
	KindNoPrevious  Kind = "no_previous"
	KindUnavailable Kind = "unavailable"
	KindFailure     Kind = "failure"
	KindHelp        Kind = "help"
)

// Reply is the rendered answer to one turn.
type Reply struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
	// Shown lists the emails rendered in Text, in order.
	Shown []string `json:"shown"`
	// Remaining counts candidates waiting for "show more".
	Remaining int `json:"remaining"`
}
