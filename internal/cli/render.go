package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/meshrules/pkg/errors"
	"github.com/matzehuels/meshrules/pkg/pipeline"
	"github.com/matzehuels/meshrules/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string   // output file path, "-" for stdout
	format    string   // "svg" or "dot"
	detailed  bool     // include content details in node labels
	highlight []string // extra nodes to highlight
	noCache   bool     // disable the render cache
}

// renderCommand creates the render command for drawing scene graphs.
func (c *CLI) renderCommand() *cobra.Command {
	var src sceneSource
	opts := renderOpts{format: render.FormatSVG}

	cmd := &cobra.Command{
		Use:   "render <scene>",
		Short: "Draw a scene graph as SVG or Graphviz DOT",
		Long: `Render the scene hierarchy. Vertex-color nodes are filled and the streams
selected by the manifest's rules are outlined.`,
		Example: `  meshrules render hero.scene.json
  meshrules render hero.scene.json --format dot -o - | dot -Tpng > hero.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src.input = args[0]
			return c.runRender(cmd, src, opts)
		},
	}

	src.flags(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, - for stdout (default: <scene>.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format (svg, dot)")
	cmd.Flags().BoolVarP(&opts.detailed, "detailed", "d", false, "show content details in labels")
	cmd.Flags().StringSliceVar(&opts.highlight, "highlight", nil, "additional node names to outline")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, src sceneSource, opts renderOpts) error {
	ctx := cmd.Context()
	if opts.format != render.FormatSVG && opts.format != render.FormatDOT {
		return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want %s or %s)", opts.format, render.FormatSVG, render.FormatDOT)
	}

	l, err := c.loadScene(cmd, src)
	if err != nil {
		return err
	}
	defer l.Close(ctx)

	ch, err := c.newCache(ctx, opts.noCache)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(ch, nil, nil, c.Logger)
	defer runner.Close(ctx)

	ropts := render.Options{Detailed: opts.detailed}
	if len(opts.highlight) > 0 {
		ropts.Highlight = append(render.SelectedStreams(l.Manifest), opts.highlight...)
	}

	toStdout := opts.output == "-"
	var spinner *Spinner
	if !toStdout {
		spinner = newSpinnerWithContext(ctx, c.Err, "Rendering "+l.Name+"...")
		spinner.Start()
	}
	out, cached, err := runner.Render(ctx, l.Scene, ropts, opts.format)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	if toStdout {
		_, err := c.Out.Write(out)
		return err
	}
	path := outputPath(opts.output, src.input, "."+opts.format)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	status := "Rendered"
	if cached {
		status = "Rendered (cached)"
	}
	printSuccess(c.Out, "%s %s", status, StyleHighlight.Render(l.Name))
	printFile(c.Out, path)
	return nil
}
