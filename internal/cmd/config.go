package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/offlinefirst/screenshotter/pkg/config"
)

func newConfigCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or edit the persisted settings",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective settings and the files they came from",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := opts.appContext()
				if err != nil {
					return err
				}
				data, err := yaml.Marshal(app.Store.Current())
				if err != nil {
					return fmt.Errorf("encode settings: %w", err)
				}
				paths := app.Store.Paths()
				fmt.Fprintf(opts.stdout, "# defaults: %s\n# user:     %s\n", paths.Defaults, paths.User)
				_, err = opts.stdout.Write(data)
				return err
			},
		},
		&cobra.Command{
			Use:   "set-interval SECONDS",
			Short: "Persist a new capture interval in seconds",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := opts.appContext()
				if err != nil {
					return err
				}
				seconds, err := config.ParseInterval(args[0])
				if err != nil {
					return err
				}
				if err := app.Store.SetInterval(seconds); err != nil {
					return err
				}
				_, err = fmt.Fprintf(opts.stdout, "Interval set to %d seconds\n", seconds)
				return err
			},
		},
		&cobra.Command{
			Use:   "set-time HH:MM",
			Short: "Persist a new daily capture time",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := opts.appContext()
				if err != nil {
					return err
				}
				if err := app.Store.SetDailyTime(args[0]); err != nil {
					return err
				}
				_, err = fmt.Fprintf(opts.stdout, "Specific time set to %s\n", app.Store.Current().DailyTime)
				return err
			},
		},
	)
	return cmd
}
