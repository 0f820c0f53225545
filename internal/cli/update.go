package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/meshrules/pkg/errors"
	"github.com/matzehuels/meshrules/pkg/events"
	"github.com/matzehuels/meshrules/pkg/manifest"
	"github.com/matzehuels/meshrules/pkg/pipeline"
)

// updateOpts holds the command-line flags for the update command.
type updateOpts struct {
	key          string // store key, required for stdin
	manifestPath string // edit this manifest file instead of the store
	rebuild      bool   // discard the manifest and construct a default one
	requester    string // requesting application
	dryRun       bool   // do not write the manifest back
	refresh      bool   // bypass the result cache
	noCache      bool   // disable the result cache entirely
}

// updateCommand creates the update command, which runs one manifest pass.
func (c *CLI) updateCommand() *cobra.Command {
	var opts updateOpts

	cmd := &cobra.Command{
		Use:   "update <scene>",
		Short: "Construct or repair the manifest of a scene",
		Long: `Run a manifest pass over a scene graph.

A scene without a manifest gets a default one: a group per top-level mesh,
each with an advanced rule pointing at the first vertex-color stream. An
existing manifest is checked and any stream name that is no longer in the
scene is replaced.

Use "-" to read the scene from stdin (requires --key).`,
		Example: `  meshrules update props/crate.scene.json
  meshrules update hero.scene.json --manifest hero.manifest.json
  cat crate.scene.json | meshrules update - --key props/crate --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runUpdate(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.key, "key", "", "store key for the manifest (default: scene file name)")
	cmd.Flags().StringVarP(&opts.manifestPath, "manifest", "m", "", "manifest file to update in place instead of the store")
	cmd.Flags().BoolVar(&opts.rebuild, "rebuild", false, "discard the manifest and construct a default one")
	cmd.Flags().StringVar(&opts.requester, "requester", "generic", "requesting application (generic, editor, asset-processor)")
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "report changes without writing the manifest")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached results")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")

	return cmd
}

func (c *CLI) runUpdate(cmd *cobra.Command, input string, opts updateOpts) error {
	ctx := cmd.Context()
	prog := newProgress(c.Logger)

	popts, err := readInput(cmd, input)
	if err != nil {
		return err
	}
	popts.SceneKey = opts.key
	popts.Rebuild = opts.rebuild
	popts.Requester = events.ParseRequestingApplication(opts.requester)
	popts.DryRun = opts.dryRun
	popts.Refresh = opts.refresh

	if popts.SceneKey == "" && popts.ScenePath != "" {
		popts.SceneKey = pipeline.SceneKeyFromPath(popts.ScenePath)
	}

	if opts.manifestPath != "" {
		m, err := manifest.ReadFile(opts.manifestPath)
		switch {
		case errors.Is(err, errors.ErrCodeFileNotFound) || opts.rebuild:
			// A missing manifest file is created from scratch.
			popts.Manifest = manifest.New()
			popts.Rebuild = true
		case err != nil:
			return err
		default:
			popts.Manifest = m
		}
	}

	runner, err := c.newRunner(ctx, backendOpts{noCache: opts.noCache, sceneDir: sceneDir(input)})
	if err != nil {
		return err
	}
	defer runner.Close(ctx)

	res, err := runner.Execute(ctx, popts)
	if err != nil {
		return err
	}

	if opts.manifestPath != "" && !opts.dryRun {
		if err := manifest.WriteFile(res.Scene.Manifest, opts.manifestPath); err != nil {
			return err
		}
	}

	c.printUpdate(res, popts, opts)
	prog.done(fmt.Sprintf("Processed %s", res.Scene.Name))
	return nil
}

func (c *CLI) printUpdate(res *pipeline.Result, popts pipeline.Options, opts updateOpts) {
	verb := "Updated"
	if res.Created {
		verb = "Created"
	}
	if opts.dryRun {
		verb = "Checked"
	}
	printSuccess(c.Out, "%s manifest for %s (%s)", verb, StyleHighlight.Render(res.Scene.Name), res.Result)
	printStats(c.Out, res.Stats.Nodes, res.Stats.VertexColorStreams, res.Stats.Groups, res.Stats.Rules, res.CacheHit)

	if len(res.Repairs) > 0 {
		printWarning(c.Out, "%d stale stream name(s) replaced", len(res.Repairs))
		for _, r := range res.Repairs {
			printRepair(c.Out, r.Group, r.OldName, r.NewName)
		}
	}

	switch {
	case opts.dryRun:
		printDetail(c.Out, "dry run: manifest not written")
	case opts.manifestPath != "":
		printFile(c.Out, opts.manifestPath)
	default:
		printKeyValue(c.Out, "Stored as", popts.SceneKey)
	}

	if res.Created && opts.manifestPath == "" {
		printNextStep(c.Out, "Review the new rules", "meshrules inspect "+sceneArg(popts))
	}
}

// sceneArg returns how the scene was named on the command line.
func sceneArg(opts pipeline.Options) string {
	if opts.ScenePath != "" {
		return opts.ScenePath
	}
	return "- --key " + opts.SceneKey
}
