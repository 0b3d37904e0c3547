// Command resizer loads an image, resizes it and saves it in the chosen
// format without blocking on the encode.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/leeforge/resizer/config"
	"github.com/leeforge/resizer/logging"
	"github.com/leeforge/resizer/metrics"
	"github.com/urfave/cli/v2"
)

var version = "dev"

// cliApp carries what the Before hook loads into every command.
type cliApp struct {
	stdout   io.Writer
	stderr   io.Writer
	settings *config.AppSettings
	logger   logging.Logger
	metrics  *metrics.Collector
}

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		// Already reported by the command.
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	a := &cliApp{
		stdout:  stdout,
		stderr:  stderr,
		logger:  logging.NewNop(),
		metrics: metrics.NewCollector(),
	}

	return &cli.App{
		Name:      "resizer",
		Usage:     "resize images and save them as JPEG, PNG or WebP",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "directory holding config.yaml and its overlays",
				EnvVars: []string{"CONFIG_PATH"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print results as JSON",
			},
			&cli.BoolFlag{
				Name:  "stats",
				Usage: "print collected metrics to stderr on exit",
			},
		},
		Before: a.setup,
		After:  a.teardown,
		Commands: []*cli.Command{
			a.infoCommand(),
			a.resizeCommand(),
			a.followCommand(),
			a.listCommand(),
			a.dropCommand(),
			a.formatsCommand(),
		},
		// Commands report their own errors; main owns the exit code.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func (a *cliApp) setup(c *cli.Context) error {
	opts := config.DefaultConfigOptions()
	if dir := c.String("config"); dir != "" {
		opts.BasePath = dir
	}

	settings, err := config.LoadSettings(opts)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return err
	}
	if level := c.String("log-level"); level != "" {
		settings.Logging.Level = level
	}

	a.settings = settings
	a.logger = logging.Init(settings.Logging)
	return nil
}

func (a *cliApp) teardown(c *cli.Context) error {
	if c.Bool("stats") {
		if err := metrics.WriteText(a.stderr, a.metrics); err != nil {
			return err
		}
	}
	_ = a.logger.Sync()
	return logging.CloseAllWriters()
}
