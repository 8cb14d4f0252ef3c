package domain

import "fmt"

// Handle names a connection point on a node.
// Only Condition nodes expose named source handles.
type Handle string

const (
	HandleNone  Handle = ""
	HandleTrue  Handle = "true"
	HandleFalse Handle = "false"
)

// ParseHandle converts a raw string into a Handle.
func ParseHandle(s string) (Handle, error) {
	switch Handle(s) {
	case HandleNone, HandleTrue, HandleFalse:
		return Handle(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownHandle, s)
	}
}

// Edge connects a source node to a target node.
type Edge struct {
	ID           string    `json:"id" yaml:"id"`
	Source       string    `json:"source" yaml:"source"`
	Target       string    `json:"target" yaml:"target"`
	SourceHandle Handle    `json:"sourceHandle,omitempty" yaml:"source_handle,omitempty"`
	Style        EdgeStyle `json:"style" yaml:"-"`
}

// EdgeID derives the identifier of an edge from its endpoints.
func EdgeID(source, target string, handle Handle) string {
	if handle == HandleNone {
		return fmt.Sprintf("e%s-%s", source, target)
	}
	return fmt.Sprintf("e%s-%s-%s", source, target, handle)
}

// EdgeStyle is the derived presentation of an edge.
type EdgeStyle struct {
	Type        string  `json:"type"`
	Animated    bool    `json:"animated"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
	Marker      Marker  `json:"markerEnd"`
}

// Marker is the arrow head drawn at the target end of an edge.
type Marker struct {
	Type   string `json:"type"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Color  string `json:"color"`
}
