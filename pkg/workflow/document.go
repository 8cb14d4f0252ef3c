package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/forms"
	"github.com/aretw0/weave/pkg/graph"
	"gopkg.in/yaml.v3"
)

// Document is the portable form of a workflow graph. Edge styles are not
// stored; they are derived again on load.
type Document struct {
	Nodes []domain.Node `json:"nodes" yaml:"nodes"`
	Edges []domain.Edge `json:"edges" yaml:"edges"`
}

// Format selects a document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseDocument decodes a JSON or YAML document. JSON is detected by a
// leading '{'.
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return Document{}, fmt.Errorf("failed to parse json document: %w", err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("failed to parse yaml document: %w", err)
	}
	return doc, nil
}

// MarshalDocument encodes the snapshot's graph in format.
func MarshalDocument(s domain.Snapshot, format Format) ([]byte, error) {
	doc := Document{Nodes: cloneNodes(s.Nodes), Edges: s.Edges}
	for i := range doc.Nodes {
		doc.Nodes[i].Data.Errors = nil
	}
	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc, "", "  ")
	case FormatYAML, "":
		return yaml.Marshal(doc)
	default:
		return nil, fmt.Errorf("unsupported document format %q", format)
	}
}

// CheckDocument validates a document without loading it: node ids must be
// unique, kinds and configuration variants known, the edges buildable one by
// one under the connection rules and their ids unique. It returns the styled
// edges.
func CheckDocument(doc Document) ([]domain.Edge, error) {
	seen := make(map[string]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("node without id")
		}
		if seen[n.ID] {
			return nil, fmt.Errorf("duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
		if _, err := domain.ParseNodeKind(string(n.Kind)); err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
		if err := forms.CheckVariant(onlyKind(n.Kind, n.Data)); err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
	}
	edges, err := graph.Replay(doc.Nodes, doc.Edges)
	if err != nil {
		return nil, fmt.Errorf("invalid edges: %w", err)
	}
	edgeIDs := make(map[string]bool, len(edges))
	for _, e := range edges {
		if edgeIDs[e.ID] {
			return nil, fmt.Errorf("duplicate edge id %q", e.ID)
		}
		edgeIDs[e.ID] = true
	}
	return edges, nil
}

// Load replaces the whole graph with doc after checking it. Stored labels are
// kept; parameters foreign to a node's event or action type, inline errors and
// the selection are dropped. On error the current graph is kept.
func (w *Workflow) Load(ctx context.Context, doc Document) error {
	edges, err := CheckDocument(doc)
	if err != nil {
		w.notifier.Notify(domain.Notification{Level: domain.LevelError, Title: "Invalid workflow document", Description: err.Error()})
		return err
	}
	nodes := make([]domain.Node, len(doc.Nodes))
	for i, n := range doc.Nodes {
		n.Data = forms.Prune(n.Kind, onlyKind(n.Kind, n.Data))
		n.Data.Errors = nil
		nodes[i] = n
	}

	w.mu.Lock()
	w.nodes = nodes
	w.edges = edges
	w.selNodes, w.selEdges = nil, nil
	snap := w.commitLocked()
	w.mu.Unlock()

	w.logger.Debug("workflow loaded", "nodes", len(nodes), "edges", len(edges))
	w.host.OnChange(snap)
	return nil
}

// Refresh re-derives every node's label and inline errors, e.g. after custom
// variables changed type. Types are resolved without holding the lock; when
// the graph changes meanwhile the pass starts over.
func (w *Workflow) Refresh(ctx context.Context) {
	for ctx.Err() == nil {
		w.mu.Lock()
		rev := w.rev
		nodes := cloneNodes(w.nodes)
		w.mu.Unlock()

		for i, n := range nodes {
			if hasConfig(n) {
				nodes[i] = forms.Annotate(ctx, w.resolver, n)
			}
		}

		w.mu.Lock()
		if w.rev != rev {
			w.mu.Unlock()
			continue
		}
		w.nodes = nodes
		snap := w.commitLocked()
		w.mu.Unlock()

		w.host.OnChange(snap)
		return
	}
}

func hasConfig(n domain.Node) bool {
	return n.Data.Trigger != nil || n.Data.Condition != nil || n.Data.Action != nil
}
