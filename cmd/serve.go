package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/schemacache/schemacache"
	"github.com/schemacache/schemacache/internal/nfsexport"
	"github.com/schemacache/schemacache/internal/schema"
	"github.com/schemacache/schemacache/internal/setfs"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve <scope>",
	Short: "Export a scope's transformed schema set over NFS",
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

		view := setfs.New(set, func(sc *schema.Schema) ([]byte, error) {
			doc, err := provider.Materialize(scope, sc)
			if err != nil {
				return nil, err
			}
			return doc.Content, nil
		})

		server, err := nfsexport.NewServer(serveAddr, view)
		if err != nil {
			return err
		}
		defer server.Close()

		logger.Info("serving schema set", "scope", scope, "schemas", set.Len(), "port", server.Port())

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":0", "Listen address for the NFS server")
	rootCmd.AddCommand(serveCmd)
}
