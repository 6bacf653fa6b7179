package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the CLI version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipInitAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(opts.stdout, versionString())
			return err
		},
	}
}
