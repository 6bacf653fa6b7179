package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/offlinefirst/screenshotter/pkg/screenshots"
)

func newCaptureCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "capture",
		Short: "Take one screenshot now and print where it was saved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.appContext()
			if err != nil {
				return err
			}
			sink, err := screenshots.NewSink(screenshots.SinkOptions{
				Settings: app.Store.Current,
				Logger:   app.Logger,
			})
			if err != nil {
				return err
			}
			res, err := sink.Capture(cmd.Context())
			if err != nil {
				return err
			}
			app.Logger.Info("screenshot saved", "trigger", "cli", "path", res.Path)
			_, err = fmt.Fprintf(opts.stdout, "Screenshot saved to %s\n", res.Path)
			return err
		},
	}
}
