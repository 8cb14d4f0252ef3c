/*
Package weave is the core of a visual workflow editor: a registry of typed variables, an expression syntax for referencing them, per-node configuration forms, and the connection and deletion rules that keep a workflow graph consistent.

It is headless. A canvas front-end (or the bundled HTTP and MCP adapters) drives a Workflow and renders whatever the Host port receives.

# Concept

A workflow is a graph of three node kinds. A Trigger starts it, a Condition branches on its "true" and "false" handles, and an Action performs an effect. Node fields may hold literal values or {{path}} references to variables, and the form for a node is derived from its kind, its mode and the type of whatever it references.

# Key Features

  - Consistent Graphs: edges are accepted or rejected by fixed rules (no self loops, single inputs, one edge per condition handle) and the last trigger cannot be deleted.
  - Typed Variables: system variables plus user-defined "variables.*" entries, persisted through a pluggable store (memory, file, Redis).
  - Live Forms: operators and right-hand field types follow the left operand, and stale values are cleared when they stop applying.
  - Async Options: select lists are fetched through a shared, deduplicated cache and the latest request for a field always wins.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/weave"
		"github.com/aretw0/weave/pkg/domain"
		"github.com/aretw0/weave/pkg/graph"
	)

	func main() {
		ctx := context.Background()
		svc := weave.NewService()

		ed, err := svc.Create(ctx, false)
		if err != nil {
			log.Fatal(err)
		}
		wf := ed.Workflow()

		trigger, _ := wf.AddNode(ctx, domain.KindTrigger)
		action, _ := wf.AddNode(ctx, domain.KindAction)
		if _, err := wf.ApplyConnection(ctx, graph.Candidate{Source: trigger.ID, Target: action.ID}); err != nil {
			log.Fatal(err)
		}

		// The action still lacks its recipient and message.
		if err := wf.Validate(ctx); err != nil {
			fmt.Println(err)
		}
	}

# Architecture

  - pkg/domain: nodes, edges, variables and the errors and events around them.
  - pkg/graph: connection and deletion rules.
  - pkg/forms, pkg/schema: node forms and field validation.
  - pkg/variables: the variable registry.
  - pkg/workflow: the editable workflow state.
  - pkg/ports: interfaces for stores, option providers, notifiers and hosts.
  - pkg/adapters: memory, Redis, HTTP and MCP implementations of those ports.
*/
package weave
