package cmd

import (
	"fmt"
	"os"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/schemacache/schemacache"
)

var resolveJSON bool

var resolveCmd = &cobra.Command{
	Use:   "resolve <scope> <ref>",
	Short: "Resolve a namespace or location reference to a schema document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		scope := schemacache.Scope(args[0])
		ref := args[1]

		provider, _, err := newProvider()
		if err != nil {
			return err
		}

		sc, ok := provider.Resolve(scope, ref, "")
		if !ok {
			return fmt.Errorf("no schema for %q in scope %q", ref, scope)
		}

		doc, err := provider.Materialize(scope, sc)
		if err != nil {
			return err
		}

		if resolveJSON {
			fmt.Println(oj.JSON(map[string]any{
				"name":      doc.Name,
				"namespace": doc.Namespace,
				"location":  doc.Location,
				"canonical": sc.CanonicalLocation,
				"prefix":    sc.Prefix,
			}, 2))
			return nil
		}

		_, err = os.Stdout.Write(doc.Content)
		return err
	},
}

func init() {
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "Print schema metadata as JSON instead of content")
	rootCmd.AddCommand(resolveCmd)
}
