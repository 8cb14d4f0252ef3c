package main

import (
	"fmt"

	"github.com/aretw0/weave/internal/presentation/tui"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/variables"
	"github.com/spf13/cobra"
)

var variablesCmd = &cobra.Command{
	Use:   "variables",
	Short: "Manage the variable registry",
}

var variablesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List system and custom variables",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer b.close()

		reg := newService(b).Registry()
		ctx := cmd.Context()

		query, _ := cmd.Flags().GetString("search")
		vars := reg.Search(ctx, query)
		if raw, _ := cmd.Flags().GetString("category"); raw != "" {
			c, ok := variables.ParseCategory(raw)
			if !ok {
				return fmt.Errorf("unknown category %q", raw)
			}
			kept := vars[:0]
			for _, v := range vars {
				if variables.CategoryOf(v.Name) == c {
					kept = append(kept, v)
				}
			}
			vars = kept
		}
		return tui.Print(cmd.OutOrStdout(), tui.CatalogMarkdown(vars))
	},
}

var variablesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a custom variable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer b.close()

		typ, _ := cmd.Flags().GetString("type")
		desc, _ := cmd.Flags().GetString("description")
		value, _ := cmd.Flags().GetString("value")
		v := domain.Variable{Name: args[0], Type: domain.VarType(typ), Description: desc, Value: value}

		if err := newService(b).Registry().Create(cmd.Context(), v); err != nil {
			return err
		}
		name, _ := variables.QualifiedName(args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", name)
		return nil
	},
}

var variablesRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Delete a custom variable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer b.close()

		if err := newService(b).Registry().Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(variablesCmd)
	variablesCmd.AddCommand(variablesListCmd, variablesAddCmd, variablesRemoveCmd)

	variablesListCmd.Flags().String("category", "", "Only list one category: task, project, user, trigger, custom")
	variablesListCmd.Flags().String("search", "", "Case-insensitive filter on name or description")

	variablesAddCmd.Flags().String("type", "text", "Variable type")
	variablesAddCmd.Flags().String("description", "", "Description")
	variablesAddCmd.Flags().String("value", "", "Value")
}
