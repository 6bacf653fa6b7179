package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/offlinefirst/screenshotter/internal/buildinfo"
	"github.com/offlinefirst/screenshotter/pkg/config"
	"github.com/offlinefirst/screenshotter/pkg/logging"
)

// skipInitAnnotation marks commands that run without loading configuration.
const skipInitAnnotation = "screenshotter/skip-init"

// AppContext exposes lazily initialised configuration and logging facilities.
type AppContext struct {
	Store  *config.Store
	Config config.Settings
	Logger *slog.Logger
}

type rootOptions struct {
	configDir string
	logLevel  string
	logFormat string

	stdout io.Writer
	stderr io.Writer
	app    *AppContext
}

// Execute runs the CLI with args and reports a hint for a missing default file.
func Execute(ctx context.Context, args []string) error {
	root := NewRootCommand(os.Stdout, os.Stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if errors.Is(err, config.ErrMissingDefaults) {
		fmt.Fprintln(os.Stderr, "hint: run `screenshotter init` to write the default configuration")
	}
	return err
}

// NewRootCommand constructs the command tree writing to stdout and stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "screenshotter",
		Short:         "Periodic and daily screen capture with a tray-resident control window",
		Version:       versionString(),
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipInitAnnotation] == "true" {
				return nil
			}
			_, err := opts.appContext()
			return err
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configDir, "config-dir", "", "Directory holding default.yaml and user.yaml (default: user config dir)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "", "Override log output format (json, console)")

	root.AddCommand(
		newRunCommand(opts),
		newCaptureCommand(opts),
		newConfigCommand(opts),
		newInitCommand(opts),
		newHistoryCommand(opts),
		newDoctorCommand(opts),
		newVersionCommand(opts),
	)
	return root
}

func (o *rootOptions) paths() (config.Paths, error) {
	dir := o.configDir
	if dir == "" {
		var err error
		if dir, err = config.DefaultDir(); err != nil {
			return config.Paths{}, err
		}
	}
	return config.PathsIn(config.ExpandPath(dir)), nil
}

func (o *rootOptions) newLogger(level, format string) (*slog.Logger, error) {
	if o.logLevel != "" {
		lvl, err := config.NormalizeLogLevel(o.logLevel)
		if err != nil {
			return nil, err
		}
		level = lvl
	}
	if o.logFormat != "" {
		f, err := config.NormalizeFormat(o.logFormat)
		if err != nil {
			return nil, err
		}
		format = f
	}
	return logging.New(logging.Options{Level: level, Format: format, Output: o.stderr})
}

func (o *rootOptions) appContext() (*AppContext, error) {
	if o.app != nil {
		return o.app, nil
	}
	paths, err := o.paths()
	if err != nil {
		return nil, err
	}

	// Load warnings go through a bootstrap logger until the configured one exists.
	bootstrap, err := o.newLogger("info", "console")
	if err != nil {
		return nil, err
	}
	store := config.NewStore(paths, bootstrap)
	settings, err := store.Load()
	if err != nil {
		return nil, err
	}

	logger, err := o.newLogger(settings.LogLevel, settings.LogFormat)
	if err != nil {
		return nil, err
	}
	logger.Debug("configuration loaded", "defaults", paths.Defaults, "user", paths.User, "save_path", settings.SavePath)

	o.app = &AppContext{Store: store, Config: settings, Logger: logger}
	return o.app, nil
}

func versionString() string {
	return fmt.Sprintf("%s (%s/%s)", buildinfo.Version(), runtimeVersion(), runtimeGOOS())
}

// runtimeVersion is extracted for testability.
var runtimeVersion = func() string { return runtime.Version() }

// runtimeGOOS is extracted for testability.
var runtimeGOOS = func() string { return runtime.GOOS }
