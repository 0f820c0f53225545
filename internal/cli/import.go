package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/meshrules/pkg/dropgate"
)

// importCommand groups commands for the asset importer.
func (c *CLI) importCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Asset importer helpers",
	}
	cmd.AddCommand(c.importCheckCommand())
	return cmd
}

// importCheckCommand creates "import check", which evaluates a drop.
func (c *CLI) importCheckCommand() *cobra.Command {
	var req dropgate.Request

	cmd := &cobra.Command{
		Use:   "check <path>...",
		Short: "Test whether dropped files would be accepted for import",
		Long: `Apply the importer's drop rules to the given paths. A drop is rejected
while an import is running, when it comes from the asset browser, when any
path is or contains a .crate file, or when any path lies inside the game
root. It is accepted when at least one path is a file with an extension or
a directory containing one.

The command fails when the drop would be rejected.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Paths = args
			if req.GameRoot == "" {
				req.GameRoot = c.cfg.Import.GameRoot
			}

			d := dropgate.Evaluate(req)
			if !d.Accept {
				if d.Path != "" {
					return fmt.Errorf("drop rejected (%s): %s", d.Reason, d.Path)
				}
				return fmt.Errorf("drop rejected (%s)", d.Reason)
			}

			printSuccess(c.Out, "Accepted")
			for _, f := range dropgate.Files(req.Paths) {
				printFile(c.Out, f)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&req.MIMETypes, "mime", nil, "MIME types offered by the drag source")
	cmd.Flags().BoolVar(&req.ImporterRunning, "importer-running", false, "treat an import as already in progress")
	cmd.Flags().StringVar(&req.GameRoot, "game-root", "", "game asset root (default from config)")
	return cmd
}
