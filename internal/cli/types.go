package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/slotgraph/pkg/registry"
)

// typesCommand lists the node types of the catalog.
func (c *CLI) typesCommand() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the node types of a catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			types, _, err := c.loadTypes()
			if err != nil {
				return err
			}
			list := types.Types()
			if category != "" {
				list = types.TypesInCategory(category)
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				printInfo(out, "No node types registered")
				return nil
			}

			rows := make([][]string, len(list))
			for i, nt := range list {
				rows[i] = typeRow(nt)
			}
			printTable(out, []string{"Type", "Title", "Category", "Inputs", "Outputs", "Extensions"}, rows, nil)
			printDetail(out, "%d types in %d categories", len(list), len(types.Categories()))
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only list types of this category")
	return cmd
}

func typeRow(nt *registry.NodeType) []string {
	var exts []string
	if nt.Blueprint != nil {
		exts = nt.Blueprint.SupportedExtensions
	}
	return []string{
		nt.Type,
		nt.Title,
		nt.Category,
		strings.Join(nt.InputTypes, ", "),
		strings.Join(nt.OutputTypes, ", "),
		strings.Join(exts, ", "),
	}
}
