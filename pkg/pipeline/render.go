package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/meshrules/pkg/cache"
	"github.com/matzehuels/meshrules/pkg/observability"
	"github.com/matzehuels/meshrules/pkg/render"
	"github.com/matzehuels/meshrules/pkg/scene"
)

// Render draws the scene graph with the streams selected by its manifest
// highlighted. Output is cached by scene content and options; the boolean
// reports a cache hit.
func (r *Runner) Render(ctx context.Context, s *scene.Scene, opts render.Options, format string) ([]byte, bool, error) {
	if opts.Highlight == nil {
		opts.Highlight = render.SelectedStreams(s.Manifest)
	}
	sceneData, err := scene.Marshal(s)
	if err != nil {
		return nil, false, err
	}
	key := r.Keyer.RenderKey(cache.Hash(sceneData), cache.RenderKeyOpts{
		Format:    format,
		Highlight: opts.Highlight,
		Detailed:  opts.Detailed,
	})

	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "render")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "render")

	start := time.Now()
	out, err := render.Render(ctx, s.Graph, opts, format)
	if err != nil {
		return nil, false, err
	}
	r.Logger.Info("rendered scene graph", "format", format, "bytes", len(out), "duration", time.Since(start))

	if err := r.Cache.Set(ctx, key, out, cache.RenderTTL); err == nil {
		observability.Cache().OnCacheSet(ctx, "render", len(out))
	}
	return out, false, nil
}
