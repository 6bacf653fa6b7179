package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/offlinefirst/screenshotter/pkg/config"
)

func newInitCommand(opts *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write the default configuration file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipInitAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := opts.paths()
			if err != nil {
				return err
			}
			if err := config.WriteDefaults(paths.Defaults, force); err != nil {
				return err
			}
			_, err = fmt.Fprintf(opts.stdout, "Wrote %s\n", paths.Defaults)
			return err
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing default configuration")
	return cmd
}
