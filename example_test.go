package weave_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aretw0/weave"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/graph"
)

// ExampleService shows the sample workflow being opened and published.
func ExampleService() {
	ctx := context.Background()
	svc := weave.NewService(weave.WithIDGenerator(func() string { return "demo" }))

	ed, err := svc.Create(ctx, true)
	if err != nil {
		log.Fatal(err)
	}

	pub, err := ed.Workflow().Publish(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(pub.WorkflowID, len(pub.Nodes), len(pub.Edges), pub.Variables)
	// Output: demo 4 3 [project.owner]
}

// ExampleEditor_rejectedConnection shows a structural rule refusing an edge.
func ExampleEditor_rejectedConnection() {
	ctx := context.Background()
	ed, err := weave.NewService().Create(ctx, true)
	if err != nil {
		log.Fatal(err)
	}

	// Node 3 already has its incoming edge from the condition.
	_, err = ed.Workflow().ApplyConnection(ctx, graph.Candidate{Source: "1", Target: "3"})

	var rejected *domain.ConnectionRejectedError
	if errors.As(err, &rejected) {
		fmt.Println(rejected.Title())
	}
	// Output: Target node already has an incoming connection
}
