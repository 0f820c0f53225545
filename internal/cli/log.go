// Package cli implements the meshrules command-line interface.
//
// The commands process scene graph files against their manifests, inspect
// and edit vertex-color rules, render scene graphs, and serve the same
// operations over HTTP. The CLI is built using cobra and logs with the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - update: Run a manifest pass (construct a default manifest or repair stale rules)
//   - resolve: Print the first vertex-color stream of a scene
//   - inspect: Show every vertex-color rule and whether its stream still exists
//   - pick: Interactively choose the stream of a group's advanced rule
//   - render: Draw the scene graph as DOT or SVG
//   - serve: Start the HTTP API
//   - import check: Test whether a drop would be accepted by the importer
//   - cache, config: Manage the result cache and settings
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Without it the
// level comes from the config file.
//
// # Example
//
//	import "github.com/matzehuels/meshrules/internal/cli"
//
//	func main() {
//	    if err := cli.New(os.Stderr, cli.LogInfo).RootCommand().Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Updated manifest for crate (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
