package graph

import (
	"github.com/aretw0/weave/pkg/domain"
)

// ReasonLastTrigger is reported when a deletion would leave no Trigger node.
const ReasonLastTrigger = "every workflow requires at least one trigger node"

// DeletionPlan lists what a batch deletion removes.
type DeletionPlan struct {
	Nodes []string // ids of existing nodes to remove
	Edges []string // ids of selected edges plus every edge touching a removed node
}

// Empty reports whether the plan removes nothing.
func (p DeletionPlan) Empty() bool {
	return len(p.Nodes) == 0 && len(p.Edges) == 0
}

// PlanDeletion computes the effect of deleting the selected nodes and edges.
// Unknown ids are ignored. The whole batch is rejected with a
// *domain.DeletionRejectedError when it would remove every remaining Trigger.
func PlanDeletion(nodes []domain.Node, edges []domain.Edge, nodeIDs, edgeIDs []string) (DeletionPlan, error) {
	selNodes := toSet(nodeIDs)
	selEdges := toSet(edgeIDs)

	var plan DeletionPlan
	removed := make(map[string]bool)
	triggers, triggersRemoved := 0, 0
	for _, n := range nodes {
		if n.Kind == domain.KindTrigger {
			triggers++
		}
		if selNodes[n.ID] {
			plan.Nodes = append(plan.Nodes, n.ID)
			removed[n.ID] = true
			if n.Kind == domain.KindTrigger {
				triggersRemoved++
			}
		}
	}
	if triggers > 0 && triggersRemoved == triggers {
		return DeletionPlan{}, &domain.DeletionRejectedError{Reason: ReasonLastTrigger}
	}

	for _, e := range edges {
		if selEdges[e.ID] || removed[e.Source] || removed[e.Target] {
			plan.Edges = append(plan.Edges, e.ID)
		}
	}
	return plan, nil
}

// Apply returns the nodes and edges left after plan, preserving order.
func Apply(nodes []domain.Node, edges []domain.Edge, plan DeletionPlan) ([]domain.Node, []domain.Edge) {
	dropN := toSet(plan.Nodes)
	dropE := toSet(plan.Edges)

	keptN := make([]domain.Node, 0, len(nodes))
	for _, n := range nodes {
		if !dropN[n.ID] {
			keptN = append(keptN, n)
		}
	}
	keptE := make([]domain.Edge, 0, len(edges))
	for _, e := range edges {
		if !dropE[e.ID] {
			keptE = append(keptE, e)
		}
	}
	return keptN, keptE
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
