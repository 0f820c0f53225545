package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/meshrules/pkg/behavior"
	"github.com/matzehuels/meshrules/pkg/manifest"
	"github.com/matzehuels/meshrules/pkg/pipeline"
)

// resolveCommand creates the resolve command, which prints the stream a new
// advanced rule would receive.
func (c *CLI) resolveCommand() *cobra.Command {
	var sentinel bool

	cmd := &cobra.Command{
		Use:   "resolve <scene>",
		Short: "Print the first vertex-color stream of a scene",
		Long: `Print the name of the first node, in scene order, that carries vertex
colors. Nothing is printed when the scene has none, unless --sentinel is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			s, _, err := pipeline.LoadScene(opts)
			if err != nil {
				return err
			}

			stream := behavior.FirstVertexColorStream(s.Graph)
			if stream == "" {
				c.Logger.Warn("scene has no vertex color stream", "scene", s.Name)
				if !sentinel {
					return nil
				}
				stream = manifest.DisabledStream
			}
			fmt.Fprintln(c.Out, stream)
			return nil
		},
	}

	cmd.Flags().BoolVar(&sentinel, "sentinel", false, "print the disabled sentinel when no stream exists")
	return cmd
}
