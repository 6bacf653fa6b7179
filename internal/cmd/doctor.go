package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/offlinefirst/screenshotter/pkg/config"
	"github.com/offlinefirst/screenshotter/pkg/screenshots"
)

func newDoctorCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:         "doctor",
		Short:       "Check configuration files, save path and capture backend",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipInitAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := opts.stdout
			paths, err := opts.paths()
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "screenshotter doctor")
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Configuration:")
			fmt.Fprintf(out, "  %-14s %s\n", "defaults", fileState(paths.Defaults))
			fmt.Fprintf(out, "  %-14s %s\n", "user", fileState(paths.User))

			app, err := opts.appContext()
			if err != nil {
				fmt.Fprintf(out, "  %-14s %v\n", "load", err)
				return err
			}
			settings := app.Store.Current()
			fmt.Fprintf(out, "  %-14s %d seconds\n", "interval", settings.IntervalSeconds)
			fmt.Fprintf(out, "  %-14s %s\n", "specific_time", settings.DailyTime)
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Save path:")
			dir := settings.ResolvedSavePath()
			if err := config.EnsureDir(dir); err != nil {
				fmt.Fprintf(out, "  %-14s %s (%v)\n", "directory", dir, err)
			} else {
				fmt.Fprintf(out, "  %-14s %s\n", "directory", dir)
			}
			fmt.Fprintln(out)

			env := screenshots.DetectEnvironment(settings.CaptureBackend)
			fmt.Fprintln(out, "Capture backend:")
			fmt.Fprintf(out, "  %-14s %s\n", "provider", env.Provider)
			fmt.Fprintf(out, "  %-14s %t\n", "available", env.Available)
			fmt.Fprintf(out, "  %-14s %s\n", "permission", env.Permission)
			if env.Displays > 0 {
				fmt.Fprintf(out, "  %-14s %d\n", "displays", env.Displays)
			}
			if env.Message != "" {
				fmt.Fprintf(out, "  %-14s %s\n", "message", env.Message)
			}
			if env.Guidance != "" {
				fmt.Fprintf(out, "  %-14s %s\n", "guidance", env.Guidance)
			}
			return nil
		},
	}
}

func fileState(path string) string {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return path + " (is a directory)"
	case err == nil:
		return path + " (found)"
	case errors.Is(err, fs.ErrNotExist):
		return path + " (missing)"
	default:
		return fmt.Sprintf("%s (%v)", path, err)
	}
}
