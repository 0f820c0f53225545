package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/meshrules/pkg/errors"
	"github.com/matzehuels/meshrules/pkg/manifest"
)

func sampleManifest() *manifest.Manifest {
	m := manifest.New()
	g := manifest.NewMeshGroup("crate", "root/crate")
	r := manifest.NewStaticMeshAdvancedRule()
	r.SetVertexColorStreamName("crate:colors")
	g.Rules().Add(r)
	m.Add(g)
	return m
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close(ctx)

	if _, ok, err := s.Load(ctx, "props/crate"); ok || err != nil {
		t.Fatalf("Load(new) = %v, %v; want not found", ok, err)
	}

	if err := s.Save(ctx, "props/crate", sampleManifest()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(s.Path("props/crate")); err != nil {
		t.Errorf("sidecar not written: %v", err)
	}

	m, ok, err := s.Load(ctx, "props/crate")
	if err != nil || !ok {
		t.Fatalf("Load = %v, %v", ok, err)
	}
	g, found := m.FindGroup("crate")
	if !found {
		t.Fatal("group crate missing after load")
	}
	r, found := manifest.FindRule[*manifest.StaticMeshAdvancedRule](g.Rules())
	if !found || r.VertexColorStreamName() != "crate:colors" {
		t.Errorf("rule after load = %+v", r)
	}

	if err := s.Delete(ctx, "props/crate"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Load(ctx, "props/crate"); ok {
		t.Error("manifest should be gone after Delete")
	}
	if err := s.Delete(ctx, "props/crate"); err != nil {
		t.Errorf("Delete(missing): %v", err)
	}
}

func TestFileStorePath(t *testing.T) {
	s := &FileStore{root: "/data"}
	want := filepath.Join("/data", "props", "crate.manifest.json")
	if got := s.Path("props/crate"); got != want {
		t.Errorf("Path = %q, want %q", got, want)
	}
}

func TestFileStoreRejectsBadKeys(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"", "/etc/passwd", "../escape", `a\b`} {
		if _, _, err := s.Load(ctx, key); !errors.Is(err, errors.ErrCodeInvalidPath) {
			t.Errorf("Load(%q) err = %v, want INVALID_PATH", key, err)
		}
		if err := s.Save(ctx, key, manifest.New()); !errors.Is(err, errors.ErrCodeInvalidPath) {
			t.Errorf("Save(%q) err = %v, want INVALID_PATH", key, err)
		}
	}
}

func TestFileStoreCorruptManifest(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.Path("bad"), []byte(`{"values": [{"$type": "Nope"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.Load(ctx, "bad"); !errors.Is(err, errors.ErrCodeUnknownType) {
		t.Errorf("err = %v, want UNKNOWN_TYPE", err)
	}
}

func TestNewMongoStoreRequiresURI(t *testing.T) {
	_, err := NewMongoStore(context.Background(), MongoConfig{})
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestMongoDocument(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := &MongoStore{now: func() time.Time { return now }}

	doc, err := s.document("props/crate", sampleManifest())
	if err != nil {
		t.Fatal(err)
	}
	if doc.Key != "props/crate" || doc.Objects != 1 || !doc.UpdatedAt.Equal(now) {
		t.Errorf("doc = %+v", doc)
	}

	m, err := manifest.Unmarshal([]byte(doc.Manifest))
	if err != nil {
		t.Fatalf("stored manifest does not decode: %v", err)
	}
	if _, ok := m.FindGroup("crate"); !ok {
		t.Error("stored manifest lost its group")
	}
}
