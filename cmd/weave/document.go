package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/weave/pkg/variables"
	"github.com/aretw0/weave/pkg/workflow"
)

// openDocument loads a workflow document from path, resolving references
// against reg, and annotates every node with its inline errors.
func openDocument(ctx context.Context, path string, reg *variables.Registry) (*workflow.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := workflow.ParseDocument(data)
	if err != nil {
		return nil, err
	}
	wf := workflow.New(workflow.WithResolver(reg), workflow.WithLogger(logger))
	if err := wf.Load(ctx, doc); err != nil {
		return nil, err
	}
	wf.Refresh(ctx)
	return wf, nil
}
