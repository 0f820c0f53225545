package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/meshrules/pkg/errors"
	"github.com/matzehuels/meshrules/pkg/manifest"
	"github.com/matzehuels/meshrules/pkg/pipeline"
	"github.com/matzehuels/meshrules/pkg/scene"
	"github.com/matzehuels/meshrules/pkg/store"
)

// sceneSource names a scene and where its manifest lives.
type sceneSource struct {
	input        string // scene path or "-"
	key          string // store key
	manifestPath string // manifest file overriding the store
}

func (src *sceneSource) flags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&src.key, "key", "", "store key for the manifest (default: scene file name)")
	cmd.Flags().StringVarP(&src.manifestPath, "manifest", "m", "", "read the manifest from this file instead of the store")
}

// loadedScene is a scene with the manifest it was found with.
type loadedScene struct {
	*scene.Scene
	key   string
	store store.Store
	found bool
}

// Close releases the store.
func (l *loadedScene) Close(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	return l.store.Close(ctx)
}

// save writes the manifest back where it was read from.
func (l *loadedScene) save(ctx context.Context, manifestPath string) error {
	if manifestPath != "" {
		return manifest.WriteFile(l.Manifest, manifestPath)
	}
	if l.store == nil {
		return errors.New(errors.ErrCodeInvalidInput, "a --key or --manifest is required to save a scene read from stdin")
	}
	return l.store.Save(ctx, l.key, l.Manifest)
}

// loadScene reads the scene and its manifest without processing either.
// A scene without a manifest gets an empty one.
func (c *CLI) loadScene(cmd *cobra.Command, src sceneSource) (*loadedScene, error) {
	ctx := cmd.Context()

	opts, err := readInput(cmd, src.input)
	if err != nil {
		return nil, err
	}
	opts.SceneKey = src.key
	if opts.SceneKey == "" && opts.ScenePath != "" {
		opts.SceneKey = pipeline.SceneKeyFromPath(opts.ScenePath)
	}
	s, _, err := pipeline.LoadScene(opts)
	if err != nil {
		return nil, err
	}
	l := &loadedScene{Scene: s, key: opts.SceneKey}

	if src.manifestPath != "" {
		m, err := manifest.ReadFile(src.manifestPath)
		if err != nil {
			return nil, err
		}
		l.Manifest, l.found = m, true
		return l, nil
	}

	if l.key == "" {
		return l, nil
	}
	st, err := c.newStore(ctx, sceneDir(src.input))
	if err != nil {
		return nil, err
	}
	m, found, err := st.Load(ctx, l.key)
	if err != nil {
		_ = st.Close(ctx)
		return nil, err
	}
	l.store, l.found = st, found
	if found {
		l.Manifest = m
	}
	return l, nil
}
