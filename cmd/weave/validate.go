package main

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a workflow document",
	Long:  `Checks the connection rules, the trigger requirement and every node configuration, and lists the problems found.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer b.close()

		svc := newService(b)
		wf, err := openDocument(cmd.Context(), args[0], svc.Registry())
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		if err := wf.Validate(cmd.Context()); err != nil {
			printProblems(cmd.ErrOrStderr(), err)
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Workflow is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func printProblems(w io.Writer, err error) {
	var invalid *domain.InvalidWorkflowError
	if !errors.As(err, &invalid) {
		return
	}
	ids := make([]string, 0, len(invalid.Nodes))
	for id := range invalid.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fields := invalid.Nodes[id]
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  node %s: %s: %s\n", id, name, fields[name])
		}
	}
}
