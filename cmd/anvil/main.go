// Command anvil inspects and edits Anvil region files.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env carries what every command needs once the global flags are parsed.
type env struct {
	logger *slog.Logger
	quiet  bool
}

func newApp() *cli.App {
	e := &env{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	return &cli.App{
		Name:  "anvil",
		Usage: "inspect and edit Minecraft region files",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log at debug level"},
			&cli.StringFlag{Name: "log-format", Value: "text", Usage: "log format: text or json"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "hide progress bars"},
		},
		Before: func(c *cli.Context) error {
			logger, err := newLogger(c.App.ErrWriter, c.String("log-format"), c.Bool("verbose"))
			if err != nil {
				return err
			}
			e.logger = logger
			e.quiet = c.Bool("quiet")
			return nil
		},
		Commands: []*cli.Command{
			infoCommand(e),
			dumpCommand(e),
			nbtCommand(e),
			generateCommand(e),
			exportCommand(e),
			importCommand(e),
			worldCommand(e),
		},
	}
}

func newLogger(w io.Writer, format string, verbose bool) (*slog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}

	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

func (e *env) progress(c *cli.Context, total int64, description string, bytes bool) *progressbar.ProgressBar {
	w := c.App.ErrWriter
	if w == nil {
		w = os.Stderr
	}
	if e.quiet {
		w = io.Discard
	}

	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowBytes(bytes),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
