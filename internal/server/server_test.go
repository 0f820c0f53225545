package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/meshrules/pkg/errors"
	"github.com/matzehuels/meshrules/pkg/manifest"
	"github.com/matzehuels/meshrules/pkg/observability"
	"github.com/matzehuels/meshrules/pkg/pipeline"
	"github.com/matzehuels/meshrules/pkg/store"
)

const heroScene = `{
  "name": "hero",
  "nodes": [
    {"name": "root"},
    {"name": "mesh1:colors", "parent": "root", "content": {"type": "vertex_color", "count": 3}},
    {"name": "mesh1", "parent": "root", "content": {"type": "mesh", "vertex_count": 3}}
  ]
}`

func newTestServer(t *testing.T) (*httptest.Server, *store.FileStore) {
	t.Helper()
	return newTestServerWith(t, Options{})
}

func newTestServerWith(t *testing.T, opts Options) (*httptest.Server, *store.FileStore) {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	srv := New(pipeline.NewRunner(nil, nil, st, logger), logger, opts)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, st
}

func post(t *testing.T, ts *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode[map[string]any](t, resp)
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestResolve(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := post(t, ts, "/v1/resolve", map[string]json.RawMessage{"scene": json.RawMessage(heroScene)})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	got := decode[resolveResponse](t, resp)
	if got.Stream != "mesh1:colors" || !got.Found {
		t.Errorf("resolve = %+v", got)
	}

	empty := post(t, ts, "/v1/resolve", map[string]any{"scene": map[string]any{"nodes": []any{}}})
	if got := decode[resolveResponse](t, empty); got.Found || got.Stream != "" {
		t.Errorf("empty scene resolve = %+v", got)
	}
}

func TestResolveErrors(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name string
		body any
		code errors.Code
	}{
		{"UnknownField", map[string]any{"graph": 1}, errors.ErrCodeInvalidInput},
		{"DuplicateNode", map[string]any{"scene": map[string]any{"nodes": []map[string]string{{"name": "a"}, {"name": "a"}}}}, errors.ErrCodeDuplicateNode},
		{"UnknownContent", map[string]any{"scene": map[string]any{"nodes": []map[string]any{{"name": "a", "content": map[string]string{"type": "laser"}}}}}, errors.ErrCodeUnknownType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts, "/v1/resolve", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			if got := decode[errorBody](t, resp); got.Error.Code != tt.code {
				t.Errorf("code = %s, want %s", got.Error.Code, tt.code)
			}
		})
	}
}

func staleManifest(t *testing.T) json.RawMessage {
	t.Helper()
	m := manifest.New()
	g := manifest.NewMeshGroup("hero")
	r := manifest.NewStaticMeshAdvancedRule()
	r.SetVertexColorStreamName("old:colors")
	g.Rules().Add(r)
	m.Add(g)
	data, err := manifest.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestUpdateManifestWithInlineManifest(t *testing.T) {
	ts, st := newTestServer(t)

	resp := post(t, ts, "/v1/manifest/update", updateRequest{
		Scene:     json.RawMessage(heroScene),
		SceneKey:  "chars/hero",
		Manifest:  staleManifest(t),
		Requester: "editor",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	got := decode[updateResponse](t, resp)
	if got.Result != "success" || got.Created {
		t.Errorf("result = %s created = %v", got.Result, got.Created)
	}
	if len(got.Repairs) != 1 || got.Repairs[0].NewName != "mesh1:colors" {
		t.Errorf("repairs = %+v", got.Repairs)
	}
	m, err := manifest.Unmarshal(got.Manifest)
	if err != nil {
		t.Fatal(err)
	}
	g, _ := m.FindGroup("hero")
	r, _ := manifest.FindRule[*manifest.StaticMeshAdvancedRule](g.Rules())
	if r.VertexColorStreamName() != "mesh1:colors" {
		t.Errorf("returned manifest stream = %q", r.VertexColorStreamName())
	}

	if _, ok, _ := st.Load(context.Background(), "chars/hero"); ok {
		t.Error("inline manifests should not be stored")
	}
}

func TestUpdateManifestFromStore(t *testing.T) {
	ts, st := newTestServer(t)

	resp := post(t, ts, "/v1/manifest/update", updateRequest{
		Scene:    json.RawMessage(heroScene),
		SceneKey: "chars/hero",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	got := decode[updateResponse](t, resp)
	if !got.Created {
		t.Error("first update should construct a manifest")
	}
	if got.Repairs == nil {
		t.Error("repairs should be an empty list, not null")
	}
	if _, ok, err := st.Load(context.Background(), "chars/hero"); !ok || err != nil {
		t.Errorf("manifest not stored: %v, %v", ok, err)
	}
}

func TestUpdateManifestErrors(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name   string
		req    updateRequest
		status int
	}{
		{"NoScene", updateRequest{SceneKey: "x"}, http.StatusBadRequest},
		{"NoKey", updateRequest{Scene: json.RawMessage(heroScene)}, http.StatusBadRequest},
		{"TraversalKey", updateRequest{Scene: json.RawMessage(heroScene), SceneKey: "../etc"}, http.StatusBadRequest},
		{"BadManifest", updateRequest{Scene: json.RawMessage(heroScene), SceneKey: "x", Manifest: json.RawMessage(`{"values":[{"$type":"Nope"}]}`)}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts, "/v1/manifest/update", tt.req)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}
}

func TestRenderDOT(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := post(t, ts, "/v1/render", renderRequest{
		Scene:    json.RawMessage(heroScene),
		Manifest: staleManifest(t),
		Format:   "dot",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/vnd.graphviz" {
		t.Errorf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `"root" -> "mesh1:colors"`) {
		t.Errorf("unexpected DOT:\n%s", body)
	}

	bad := post(t, ts, "/v1/render", renderRequest{Scene: json.RawMessage(heroScene), Format: "gif"})
	if bad.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("unsupported format status = %d, want 422", bad.StatusCode)
	}
}

func TestImportCheck(t *testing.T) {
	dir := t.TempDir()
	ts, _ := newTestServerWith(t, Options{DropRoot: dir})
	fbx := filepath.Join(dir, "hero.fbx")
	crate := filepath.Join(dir, "level.crate")
	for _, p := range []string{fbx, crate} {
		if err := os.WriteFile(p, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	ok := decode[importCheckResponse](t, post(t, ts, "/v1/import/check", map[string]any{"paths": []string{fbx}}))
	if !ok.Accept || len(ok.Files) != 1 || ok.Files[0] != fbx {
		t.Errorf("accepted drop = %+v", ok)
	}

	rejected := decode[importCheckResponse](t, post(t, ts, "/v1/import/check", map[string]any{"paths": []string{fbx, crate}}))
	if rejected.Accept || rejected.Reason != "crate-file" || len(rejected.Files) != 0 {
		t.Errorf("crate drop = %+v", rejected)
	}
}

func TestImportCheckConfinedToDropRoot(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()

	tests := []struct {
		name  string
		opts  Options
		paths []string
		want  int
	}{
		{"Disabled", Options{}, []string{filepath.Join(root, "a.fbx")}, http.StatusUnprocessableEntity},
		{"Outside", Options{DropRoot: root}, []string{filepath.Join(outside, "a.fbx")}, http.StatusBadRequest},
		{"FileSystemRoot", Options{DropRoot: root}, []string{"/"}, http.StatusBadRequest},
		{"DotDot", Options{DropRoot: root}, []string{filepath.Join(root, "..", "etc")}, http.StatusBadRequest},
		{"Relative", Options{DropRoot: root}, []string{"a.fbx"}, http.StatusBadRequest},
		{"Inside", Options{DropRoot: root}, []string{filepath.Join(root, "a.fbx")}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, _ := newTestServerWith(t, tt.opts)
			resp := post(t, ts, "/v1/import/check", map[string]any{"paths": tt.paths})
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	statuses []int
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	ts, _ := newTestServer(t)
	post(t, ts, "/v1/resolve", map[string]any{"nope": true})
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.statuses) != 2 || hooks.statuses[0] != http.StatusBadRequest || hooks.statuses[1] != http.StatusOK {
		t.Errorf("statuses = %v", hooks.statuses)
	}
}

func TestWriteErrorHidesInternalMessages(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, log.NewWithOptions(io.Discard, log.Options{}), errors.New(errors.ErrCodeStore, "mongo: auth failed for user x"))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "auth failed") {
		t.Errorf("internal detail leaked: %s", w.Body.String())
	}
}
