package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/meshrules/pkg/errors"
	"github.com/matzehuels/meshrules/pkg/manifest"
)

// =============================================================================
// Serialization types
// =============================================================================

// File is the on-disk representation of a scene graph.
type File struct {
	Name  string     `json:"name,omitempty"`
	Nodes []FileNode `json:"nodes"`
}

// FileNode is a single node entry in a [File].
type FileNode struct {
	Name    string          `json:"name"`
	Parent  string          `json:"parent,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
}

type contentHeader struct {
	Type ContentKind `json:"type"`
}

// =============================================================================
// Read
// =============================================================================

// ReadFile reads a scene graph file. The returned scene has an empty manifest;
// its name defaults to the file's base name without extensions.
func ReadFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scene file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	s, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	s.Source = path
	if s.Name == "" {
		s.Name = baseName(path)
	}
	return s, nil
}

// Read decodes a scene graph from r.
func Read(r io.Reader) (*Scene, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Unmarshal(data)
}

// Unmarshal decodes JSON bytes into a scene.
func Unmarshal(data []byte) (*Scene, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "decode scene")
	}
	g, err := f.Graph()
	if err != nil {
		return nil, err
	}
	return &Scene{Name: f.Name, Graph: g, Manifest: manifest.New()}, nil
}

// Graph builds a graph from the file, preserving node order.
func (f File) Graph() (*Graph, error) {
	g := NewGraph()
	for i, n := range f.Nodes {
		parent := NoParent
		if n.Parent != "" {
			p, ok := g.Find(n.Parent)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidScene,
					"node %q (#%d): parent %q must appear before its children", n.Name, i, n.Parent)
			}
			parent = p
		}
		content, err := decodeContent(n.Content)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.Name, err)
		}
		if _, err := g.AddNode(parent, n.Name, content); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func decodeContent(raw json.RawMessage) (Content, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var h contentHeader
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "decode content")
	}

	if h.Type == "" {
		return nil, errors.New(errors.ErrCodeInvalidScene, "content is missing a type")
	}
	decode, ok := contentDecoders[h.Type]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownType, "unknown content type %q", h.Type)
	}
	return decode(raw)
}

var contentDecoders = map[ContentKind]func(json.RawMessage) (Content, error){
	KindMesh:        decodeAs[MeshData],
	KindVertexColor: decodeAs[VertexColorData],
	KindVertexUV:    decodeAs[VertexUVData],
	KindTransform:   decodeAs[TransformData],
	KindBone:        decodeAs[BoneData],
	KindMaterial:    decodeAs[MaterialData],
}

func decodeAs[T Content](raw json.RawMessage) (Content, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "decode %s content", v.Kind())
	}
	return v, nil
}

// =============================================================================
// Write
// =============================================================================

// ToFile converts a scene into its serialization form.
func ToFile(s *Scene) (File, error) {
	f := File{Name: s.Name, Nodes: make([]FileNode, 0, s.Graph.Len())}
	for i, name := range s.Graph.Names() {
		n := FileNode{Name: name}
		if p := s.Graph.Parent(i); p != NoParent {
			n.Parent = s.Graph.Name(p)
		}
		if c := s.Graph.Content(i); c != nil {
			raw, err := encodeContent(c)
			if err != nil {
				return File{}, fmt.Errorf("node %q: %w", name, err)
			}
			n.Content = raw
		}
		f.Nodes = append(f.Nodes, n)
	}
	return f, nil
}

func encodeContent(c Content) (json.RawMessage, error) {
	body, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	kind, _ := json.Marshal(c.Kind())
	fields["type"] = kind
	return json.Marshal(fields)
}

// Marshal encodes a scene graph to indented JSON.
func Marshal(s *Scene) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes a scene graph as JSON to w.
func Write(s *Scene, w io.Writer) error {
	f, err := ToFile(s)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes a scene graph to path, truncating any existing file.
func WriteFile(s *Scene, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(s, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// baseName strips the directory and every extension: "a/hero.scene.json" → "hero".
func baseName(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}
