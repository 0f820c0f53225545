// Package pipeline runs manifest passes over scenes for the CLI and the API.
//
// A pass has three stages:
//
//  1. Load: decode the scene graph and fetch its manifest from a [store.Store].
//  2. Process: when no manifest exists yet, construct a default one (one
//     group per top-level mesh) and initialize every new group; then
//     dispatch an update to the behaviors on an [events.Bus].
//  3. Save: write the manifest back to the store.
//
// The outcome of stage 2 is cached under the content hashes of the scene and
// the incoming manifest, so rerunning a pass over unchanged inputs skips the
// behaviors entirely.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, st, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{ScenePath: "props/crate.scene.json"})
//	if err != nil {
//	    return err
//	}
//	for _, r := range res.Repairs {
//	    fmt.Println(r.Group, r.OldName, "->", r.NewName)
//	}
package pipeline

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/meshrules/pkg/behavior"
	"github.com/matzehuels/meshrules/pkg/cache"
	"github.com/matzehuels/meshrules/pkg/errors"
	"github.com/matzehuels/meshrules/pkg/events"
	"github.com/matzehuels/meshrules/pkg/manifest"
	"github.com/matzehuels/meshrules/pkg/scene"
)

// =============================================================================
// Options
// =============================================================================

// Options configures a single pass.
type Options struct {
	// ScenePath is a scene file to read. Ignored when SceneData is set.
	ScenePath string `json:"scene_path,omitempty"`
	// SceneData is an encoded scene graph.
	SceneData []byte `json:"-"`
	// SceneKey addresses the manifest in the store. Defaults to the scene
	// file's base name.
	SceneKey string `json:"scene_key,omitempty"`

	// Manifest, when set, is used instead of the stored manifest.
	Manifest *manifest.Manifest `json:"-"`

	// Rebuild discards the existing manifest and constructs a default one.
	Rebuild   bool                         `json:"rebuild,omitempty"`
	Requester events.RequestingApplication `json:"-"`

	// Refresh bypasses the result cache.
	Refresh bool `json:"refresh,omitempty"`
	// DryRun skips saving the manifest.
	DryRun bool `json:"dry_run,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks required fields and fills in defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.SceneData) == 0 && o.ScenePath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "scene path or scene data is required")
	}
	if o.SceneKey == "" && o.ScenePath != "" {
		o.SceneKey = SceneKeyFromPath(o.ScenePath)
	}
	if o.SceneKey == "" {
		return errors.New(errors.ErrCodeInvalidInput, "scene key is required when passing scene data")
	}
	if err := errors.ValidateSceneKey(o.SceneKey); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// SceneKeyFromPath derives a store key from a scene file path:
// "assets/props/crate.scene.json" → "crate".
func SceneKeyFromPath(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}

// keyOpts scopes a cached pass by what it does. A pass that constructs a
// default manifest is keyed apart from one that only updates, even when the
// incoming manifest encodes the same.
func (o *Options) keyOpts(construct bool) cache.ManifestKeyOpts {
	action := events.Update
	if construct {
		action = events.ConstructDefault
	}
	return cache.ManifestKeyOpts{
		Action:    action.String(),
		Requester: o.Requester.String(),
	}
}

// =============================================================================
// Result
// =============================================================================

// Result is the outcome of a pass.
type Result struct {
	// Scene holds the graph and the processed manifest.
	Scene *scene.Scene

	// Result is the combined processing result of all handlers.
	Result events.ProcessingResult

	// Created reports whether the manifest was constructed by this pass.
	Created bool

	// Repairs lists every stale stream name that was replaced.
	Repairs []behavior.Repair

	Stats    Stats
	CacheHit bool
}

// Stats describes the scene and the time spent per stage.
type Stats struct {
	Nodes              int
	VertexColorStreams int
	Groups             int
	Rules              int
	LoadTime           time.Duration
	ProcessTime        time.Duration
	SaveTime           time.Duration
}

func (r *Result) collectStats() {
	g := r.Scene.Graph
	r.Stats.Nodes = g.Len()
	for _, c := range g.Contents() {
		if scene.IsVertexColor(c) {
			r.Stats.VertexColorStreams++
		}
	}
	r.Stats.Groups, r.Stats.Rules = 0, 0
	for grp := range r.Scene.Manifest.Groups() {
		r.Stats.Groups++
		r.Stats.Rules += grp.Rules().Len()
	}
}
