package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/meshrules/pkg/behavior"
	"github.com/matzehuels/meshrules/pkg/cache"
	"github.com/matzehuels/meshrules/pkg/errors"
	"github.com/matzehuels/meshrules/pkg/events"
	"github.com/matzehuels/meshrules/pkg/manifest"
	"github.com/matzehuels/meshrules/pkg/observability"
	"github.com/matzehuels/meshrules/pkg/scene"
	"github.com/matzehuels/meshrules/pkg/store"
)

// Runner executes passes with caching and manifest storage.
// It keeps no per-pass state, so one Runner may serve concurrent passes.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  store.Store
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses [cache.DefaultKeyer] and a nil store means manifests are never
// loaded or saved.
func NewRunner(c cache.Cache, keyer cache.Keyer, st store.Store, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Store: st, Logger: logger}
}

// cachedPass is the cache payload of a processed pass.
type cachedPass struct {
	Manifest json.RawMessage         `json:"manifest"`
	Result   events.ProcessingResult `json:"result"`
	Created  bool                    `json:"created"`
	Repairs  []behavior.Repair       `json:"repairs,omitempty"`
}

// Execute runs load → process → save. A scene without a stored manifest, or
// any scene when opts.Rebuild is set, gets a default manifest before the
// update pass.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	// Stage 1: Load
	loadStart := time.Now()
	s, sceneData, err := LoadScene(opts)
	if err != nil {
		return nil, fmt.Errorf("load scene: %w", err)
	}
	m, found, err := r.loadManifest(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	s.Manifest = m
	res := &Result{Scene: s}
	res.Stats.LoadTime = time.Since(loadStart)
	r.Logger.Info("loaded scene",
		"scene", s.Name,
		"nodes", s.Graph.Len(),
		"manifest", manifestState(found),
		"duration", res.Stats.LoadTime)

	// Stage 2: Process
	processStart := time.Now()
	manifestData, err := manifest.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	construct := !found || opts.Rebuild
	key := r.Keyer.ManifestKey(cache.Hash(sceneData), cache.Hash(manifestData), opts.keyOpts(construct))

	if cached, ok := r.recall(ctx, key, opts); ok {
		restored, err := manifest.Unmarshal(cached.Manifest)
		if err == nil {
			s.Manifest = restored
			res.Result, res.Created, res.Repairs, res.CacheHit = cached.Result, cached.Created, cached.Repairs, true
		}
	}
	if !res.CacheHit {
		res.Result, res.Repairs = r.process(s, construct, opts)
		res.Created = construct
		r.remember(ctx, key, res)
	}
	res.Stats.ProcessTime = time.Since(processStart)
	res.collectStats()
	r.Logger.Info("processed manifest",
		"rebuild", opts.Rebuild,
		"result", res.Result,
		"groups", res.Stats.Groups,
		"repairs", len(res.Repairs),
		"cached", res.CacheHit,
		"duration", res.Stats.ProcessTime)

	// Stage 3: Save
	if opts.DryRun || r.Store == nil || opts.Manifest != nil {
		return res, nil
	}
	saveStart := time.Now()
	if err := r.Store.Save(ctx, opts.SceneKey, s.Manifest); err != nil {
		return nil, fmt.Errorf("save manifest: %w", err)
	}
	res.Stats.SaveTime = time.Since(saveStart)
	r.Logger.Debug("saved manifest", "key", opts.SceneKey, "duration", res.Stats.SaveTime)

	return res, nil
}

// process runs the behaviors against s and reports the combined result.
func (r *Runner) process(s *scene.Scene, construct bool, opts Options) (events.ProcessingResult, []behavior.Repair) {
	var repairs []behavior.Repair
	vc := behavior.NewVertexColor(opts.Logger, behavior.WithRepairFunc(func(rp behavior.Repair) {
		repairs = append(repairs, rp)
	}))

	bus := events.NewBus()
	vc.Activate(bus)
	defer vc.Deactivate(bus)

	result := events.Ignored
	if construct {
		if opts.Rebuild {
			s.Manifest = manifest.New()
		}
		groups := ConstructDefault(s, bus)
		r.Logger.Debug("constructed default manifest", "groups", len(groups))
		result = events.Combine(result, bus.UpdateManifest(s, events.ConstructDefault, opts.Requester))
	}
	result = events.Combine(result, bus.UpdateManifest(s, events.Update, opts.Requester))
	return result, repairs
}

func (r *Runner) recall(ctx context.Context, key string, opts Options) (cachedPass, bool) {
	if opts.Refresh {
		return cachedPass{}, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
		return cachedPass{}, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "manifest")
		return cachedPass{}, false
	}
	var p cachedPass
	if err := json.Unmarshal(data, &p); err != nil {
		return cachedPass{}, false
	}
	observability.Cache().OnCacheHit(ctx, "manifest")
	return p, true
}

func (r *Runner) remember(ctx context.Context, key string, res *Result) {
	data, err := manifest.Marshal(res.Scene.Manifest)
	if err != nil {
		return
	}
	payload, err := json.Marshal(cachedPass{
		Manifest: data,
		Result:   res.Result,
		Created:  res.Created,
		Repairs:  res.Repairs,
	})
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, payload, cache.ManifestTTL); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "manifest", len(payload))
}

func (r *Runner) loadManifest(ctx context.Context, opts Options) (*manifest.Manifest, bool, error) {
	if opts.Manifest != nil {
		return opts.Manifest, true, nil
	}
	if r.Store == nil {
		return manifest.New(), false, nil
	}
	m, found, err := r.Store.Load(ctx, opts.SceneKey)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return manifest.New(), false, nil
	}
	return m, true, nil
}

// LoadScene decodes the scene named by opts and returns it with the raw
// bytes it was decoded from.
func LoadScene(opts Options) (*scene.Scene, []byte, error) {
	data := opts.SceneData
	if len(data) == 0 {
		var err error
		data, err = os.ReadFile(opts.ScenePath)
		if os.IsNotExist(err) {
			return nil, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scene file %s", opts.ScenePath)
		}
		if err != nil {
			return nil, nil, err
		}
	}
	s, err := scene.Unmarshal(data)
	if err != nil {
		return nil, nil, err
	}
	s.Source = opts.ScenePath
	if s.Name == "" {
		s.Name = opts.SceneKey
	}
	return s, data, nil
}

func manifestState(found bool) string {
	if found {
		return "existing"
	}
	return "new"
}

// Close releases the cache and the store.
func (r *Runner) Close(ctx context.Context) error {
	var firstErr error
	if r.Cache != nil {
		firstErr = r.Cache.Close()
	}
	if r.Store != nil {
		if err := r.Store.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
