package main

import (
	"fmt"

	"github.com/aretw0/weave/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Export a workflow document as a Mermaid diagram",
	Long:  `Loads a YAML or JSON workflow document and outputs a Mermaid flowchart (graph TD). Nodes with configuration errors are highlighted.`,
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
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(wf.Snapshot(), &graph.GraphOverlay{}))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
