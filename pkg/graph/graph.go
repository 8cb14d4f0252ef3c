// Package graph holds the structural rules of a workflow graph: which
// connections are legal, how an edge is styled and which batch deletions are
// allowed.
//
// Every function is pure. Callers pass the current nodes and edges and apply
// the result themselves; a rejected request never returns a partial result.
package graph

import (
	"github.com/aretw0/weave/pkg/domain"
)

// Candidate is a proposed connection.
type Candidate struct {
	Source string        `json:"source"`
	Target string        `json:"target"`
	Handle domain.Handle `json:"sourceHandle,omitempty"`
}

func findNode(nodes []domain.Node, id string) (domain.Node, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
	}
	return domain.Node{}, false
}

// Connect evaluates c against the current graph and returns the styled edge to
// add. Rules are checked in a fixed order and the first failure is returned as
// a *domain.ConnectionRejectedError:
//
//   - both endpoints must exist, differ, and the target must not be a Trigger;
//   - a Condition source names the true or false handle, any other source none;
//   - the target must not already have an incoming edge;
//   - a non-Condition source must not already have an outgoing edge;
//   - a Condition source must not already use the requested handle.
func Connect(nodes []domain.Node, edges []domain.Edge, c Candidate) (domain.Edge, error) {
	reject := func(r domain.RejectReason) (domain.Edge, error) {
		return domain.Edge{}, &domain.ConnectionRejectedError{Reason: r, Source: c.Source, Target: c.Target, Handle: c.Handle}
	}

	src, ok := findNode(nodes, c.Source)
	if !ok {
		return reject(domain.ReasonUnknownNode)
	}
	dst, ok := findNode(nodes, c.Target)
	if !ok {
		return reject(domain.ReasonUnknownNode)
	}
	if c.Source == c.Target {
		return reject(domain.ReasonSelfLoop)
	}
	if dst.Kind == domain.KindTrigger {
		return reject(domain.ReasonTriggerTarget)
	}

	isCondition := src.Kind == domain.KindCondition
	switch {
	case isCondition && c.Handle != domain.HandleTrue && c.Handle != domain.HandleFalse:
		return reject(domain.ReasonInvalidHandle)
	case !isCondition && c.Handle != domain.HandleNone:
		return reject(domain.ReasonInvalidHandle)
	}

	for _, e := range edges {
		if e.Target == c.Target {
			return reject(domain.ReasonTargetHasIncoming)
		}
	}

	if !isCondition {
		for _, e := range edges {
			if e.Source == c.Source {
				return reject(domain.ReasonSourceHasOutgoing)
			}
		}
	} else {
		for _, e := range edges {
			if e.Source == c.Source && e.SourceHandle == c.Handle {
				return reject(domain.ReasonHandleInUse)
			}
		}
	}

	return domain.Edge{
		ID:           domain.EdgeID(c.Source, c.Target, c.Handle),
		Source:       c.Source,
		Target:       c.Target,
		SourceHandle: c.Handle,
		Style:        StyleFor(src.Kind, c.Handle),
	}, nil
}

// StyleFor derives the presentation of an edge leaving a node of kind through
// handle.
func StyleFor(kind domain.NodeKind, handle domain.Handle) domain.EdgeStyle {
	color := domain.ColorNeutral
	if kind == domain.KindCondition {
		switch handle {
		case domain.HandleTrue:
			color = domain.ColorTrue
		case domain.HandleFalse:
			color = domain.ColorFalse
		}
	}
	return domain.EdgeStyle{
		Type:        domain.EdgeTypeSmoothStep,
		Animated:    true,
		Stroke:      color,
		StrokeWidth: domain.EdgeStrokeWidth,
		Marker: domain.Marker{
			Type:   domain.MarkerArrowClosed,
			Width:  domain.MarkerSize,
			Height: domain.MarkerSize,
			Color:  color,
		},
	}
}

// Restyle returns a copy of edges with every style re-derived from its source.
func Restyle(nodes []domain.Node, edges []domain.Edge) []domain.Edge {
	out := make([]domain.Edge, len(edges))
	for i, e := range edges {
		src, _ := findNode(nodes, e.Source)
		e.Style = StyleFor(src.Kind, e.SourceHandle)
		out[i] = e
	}
	return out
}

// Replay rebuilds edges one by one through Connect, starting from an empty
// edge set. It returns the styled edges in input order, or the first
// rejection. Use it to check a graph coming from outside the editor.
func Replay(nodes []domain.Node, edges []domain.Edge) ([]domain.Edge, error) {
	out := make([]domain.Edge, 0, len(edges))
	for _, e := range edges {
		ne, err := Connect(nodes, out, Candidate{Source: e.Source, Target: e.Target, Handle: e.SourceHandle})
		if err != nil {
			return nil, err
		}
		if e.ID != "" {
			ne.ID = e.ID
		}
		out = append(out, ne)
	}
	return out, nil
}

// CountKind returns how many nodes are of kind.
func CountKind(nodes []domain.Node, kind domain.NodeKind) int {
	n := 0
	for _, node := range nodes {
		if node.Kind == kind {
			n++
		}
	}
	return n
}
