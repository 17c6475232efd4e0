package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AttachCobraVersionCommand registers a `version` subcommand on root that
// prints the updater's build identification.
func AttachCobraVersionCommand(root *cobra.Command) {
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the updater's version.",
		Long:  "Print the updater's version together with the commit hash and build timestamp baked in at release time. Note this is the version of the updater tool, not of the media server package it manages.",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), Full())
		},
	})
}
