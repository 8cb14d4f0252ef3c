package domain

import (
	"reflect"
)

// GraphDiff represents the changes between two snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type GraphDiff struct {
	WorkflowID string `json:"workflow_id"`

	// Nodes that are new or whose content changed.
	UpsertedNodes []Node   `json:"upserted_nodes,omitempty"`
	RemovedNodes  []string `json:"removed_nodes,omitempty"`

	AddedEdges   []Edge   `json:"added_edges,omitempty"`
	RemovedEdges []string `json:"removed_edges,omitempty"`
}

// Empty reports whether the diff carries no change.
func (d *GraphDiff) Empty() bool {
	return len(d.UpsertedNodes) == 0 && len(d.RemovedNodes) == 0 &&
		len(d.AddedEdges) == 0 && len(d.RemovedEdges) == 0
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, it returns a diff representing the entire newSnap (initial load).
func Diff(oldSnap, newSnap *Snapshot) *GraphDiff {
	if newSnap == nil {
		return nil
	}

	diff := &GraphDiff{WorkflowID: newSnap.WorkflowID}

	oldNodes := make(map[string]Node)
	oldEdges := make(map[string]struct{})
	if oldSnap != nil {
		for _, n := range oldSnap.Nodes {
			oldNodes[n.ID] = n
		}
		for _, e := range oldSnap.Edges {
			oldEdges[e.ID] = struct{}{}
		}
	}

	newNodes := make(map[string]struct{}, len(newSnap.Nodes))
	for _, n := range newSnap.Nodes {
		newNodes[n.ID] = struct{}{}
		prev, ok := oldNodes[n.ID]
		if !ok || !reflect.DeepEqual(prev, n) {
			diff.UpsertedNodes = append(diff.UpsertedNodes, n)
		}
	}

	newEdges := make(map[string]struct{}, len(newSnap.Edges))
	for _, e := range newSnap.Edges {
		newEdges[e.ID] = struct{}{}
		if _, ok := oldEdges[e.ID]; !ok {
			diff.AddedEdges = append(diff.AddedEdges, e)
		}
	}

	if oldSnap != nil {
		for _, n := range oldSnap.Nodes {
			if _, ok := newNodes[n.ID]; !ok {
				diff.RemovedNodes = append(diff.RemovedNodes, n.ID)
			}
		}
		for _, e := range oldSnap.Edges {
			if _, ok := newEdges[e.ID]; !ok {
				diff.RemovedEdges = append(diff.RemovedEdges, e.ID)
			}
		}
	}

	if diff.Empty() {
		return nil
	}
	return diff
}
