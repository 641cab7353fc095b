package cmd

import (
	"fmt"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/schemacache/schemacache"
)

var namespacesCmd = &cobra.Command{
	Use:   "namespaces <scope>",
	Short: "List the namespaces a scope can resolve, with prefixes and advertised locations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scope := schemacache.Scope(args[0])

		provider, _, err := newProvider()
		if err != nil {
			return err
		}

		set, err := provider.SchemaSet(scope)
		if err != nil {
			return err
		}

		out := make(map[string]any)
		for _, ns := range set.Namespaces() {
			var locs []string
			prefix := ""
			for i, sc := range set.ByNamespace(ns) {
				if i == 0 {
					prefix = sc.Prefix
				}
				locs = append(locs, sc.Location)
			}
			out[ns] = map[string]any{
				"prefix":    prefix,
				"locations": locs,
			}
		}

		fmt.Println(oj.JSON(out, 2))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(namespacesCmd)
}
