package server

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/matzehuels/meshrules/pkg/behavior"
	"github.com/matzehuels/meshrules/pkg/buildinfo"
	"github.com/matzehuels/meshrules/pkg/dropgate"
	"github.com/matzehuels/meshrules/pkg/errors"
	"github.com/matzehuels/meshrules/pkg/events"
	"github.com/matzehuels/meshrules/pkg/manifest"
	"github.com/matzehuels/meshrules/pkg/pipeline"
	"github.com/matzehuels/meshrules/pkg/render"
	"github.com/matzehuels/meshrules/pkg/scene"
)

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

// =============================================================================
// Resolve
// =============================================================================

type resolveRequest struct {
	Scene json.RawMessage `json:"scene"`
}

type resolveResponse struct {
	Stream string `json:"stream"`
	Found  bool   `json:"found"`
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	sc, err := scene.Unmarshal(req.Scene)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	stream := behavior.FirstVertexColorStream(sc.Graph)
	writeJSON(w, http.StatusOK, resolveResponse{Stream: stream, Found: stream != ""})
}

// =============================================================================
// Manifest update
// =============================================================================

type updateRequest struct {
	Scene     json.RawMessage `json:"scene"`
	SceneKey  string          `json:"scene_key"`
	Manifest  json.RawMessage `json:"manifest,omitempty"`
	Rebuild   bool            `json:"rebuild,omitempty"`
	Requester string          `json:"requester,omitempty"`
	DryRun    bool            `json:"dry_run,omitempty"`
	Refresh   bool            `json:"refresh,omitempty"`
}

type updateResponse struct {
	Manifest json.RawMessage   `json:"manifest"`
	Result   string            `json:"result"`
	Created  bool              `json:"created"`
	Repairs  []behavior.Repair `json:"repairs"`
	CacheHit bool              `json:"cache_hit"`
}

func (req updateRequest) options() (pipeline.Options, error) {
	if len(req.Scene) == 0 {
		return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "scene is required")
	}
	opts := pipeline.Options{
		SceneData: req.Scene,
		SceneKey:  req.SceneKey,
		Rebuild:   req.Rebuild,
		Requester: events.ParseRequestingApplication(req.Requester),
		DryRun:    req.DryRun,
		Refresh:   req.Refresh,
	}
	if len(req.Manifest) > 0 {
		m, err := manifest.Unmarshal(req.Manifest)
		if err != nil {
			return pipeline.Options{}, err
		}
		opts.Manifest = m
	}
	return opts, nil
}

func (s *Server) updateManifest(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	opts, err := req.options()
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	data, err := manifest.Marshal(res.Scene.Manifest)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	repairs := res.Repairs
	if repairs == nil {
		repairs = []behavior.Repair{}
	}
	writeJSON(w, http.StatusOK, updateResponse{
		Manifest: data,
		Result:   res.Result.String(),
		Created:  res.Created,
		Repairs:  repairs,
		CacheHit: res.CacheHit,
	})
}

// =============================================================================
// Render
// =============================================================================

type renderRequest struct {
	Scene    json.RawMessage `json:"scene"`
	Manifest json.RawMessage `json:"manifest,omitempty"`
	Format   string          `json:"format,omitempty"`
	Detailed bool            `json:"detailed,omitempty"`
}

var contentTypes = map[string]string{
	render.FormatDOT: "text/vnd.graphviz",
	render.FormatSVG: "image/svg+xml",
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if req.Format == "" {
		req.Format = render.FormatSVG
	}
	sc, err := scene.Unmarshal(req.Scene)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if len(req.Manifest) > 0 {
		if sc.Manifest, err = manifest.Unmarshal(req.Manifest); err != nil {
			writeError(w, s.logger, err)
			return
		}
	}

	out, _, err := s.runner.Render(r.Context(), sc, render.Options{Detailed: req.Detailed}, req.Format)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[req.Format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// =============================================================================
// Import check
// =============================================================================

type importCheckResponse struct {
	dropgate.Decision
	Files []string `json:"files"`
}

func (s *Server) importCheck(w http.ResponseWriter, r *http.Request) {
	var req dropgate.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := s.checkDropPaths(req.Paths); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if req.GameRoot == "" {
		req.GameRoot = s.opts.GameRoot
	}
	resp := importCheckResponse{Decision: dropgate.Evaluate(req), Files: []string{}}
	if resp.Accept {
		resp.Files = dropgate.Files(req.Paths)
	}
	writeJSON(w, http.StatusOK, resp)
}

// checkDropPaths requires every path to be absolute and inside the drop root.
func (s *Server) checkDropPaths(paths []string) error {
	if s.opts.DropRoot == "" {
		return errors.New(errors.ErrCodeUnsupported, "import checks are disabled (set import.drop_root)")
	}
	root, err := filepath.Abs(s.opts.DropRoot)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "resolve drop root")
	}
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			return errors.New(errors.ErrCodeInvalidPath, "path %q must be absolute", p)
		}
		rel, err := filepath.Rel(root, filepath.Clean(p))
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return errors.New(errors.ErrCodeInvalidPath, "path %q is outside the drop root", p)
		}
	}
	return nil
}
