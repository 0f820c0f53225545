package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/matzehuels/meshrules/pkg/errors"
)

// typeKey is the discriminator field written into every encoded object.
const typeKey = "$type"

// =============================================================================
// Type registry
// =============================================================================

var (
	registryMu sync.RWMutex
	registry   = map[string]func() Object{
		TypeMeshGroup:              func() Object { return &MeshGroup{} },
		TypeSkinGroup:              func() Object { return &SkinGroup{} },
		TypeStaticMeshAdvancedRule: func() Object { return NewStaticMeshAdvancedRule() },
		TypeSkinMeshAdvancedRule:   func() Object { return NewSkinMeshAdvancedRule() },
		TypeMaterialRule:           func() Object { return &MaterialRule{} },
		TypeOriginRule:             func() Object { return &OriginRule{} },
	}
)

// Register makes an object type decodable. The constructor must return a
// pointer whose ObjectType equals typeName; encoded fields are decoded over
// whatever defaults it sets. Registering an existing name replaces it.
func Register(typeName string, ctor func() Object) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[typeName] = ctor
}

// RegisteredTypes returns the sorted list of decodable type names.
func RegisteredTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func newObject(typeName string) (Object, error) {
	registryMu.RLock()
	ctor, ok := registry[typeName]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownType, "unknown manifest type %q", typeName)
	}
	return ctor(), nil
}

// =============================================================================
// Envelope encoding
// =============================================================================

func encodeObject(obj Object) (json.RawMessage, error) {
	body, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	name, _ := json.Marshal(obj.ObjectType())
	fields[typeKey] = name
	return json.Marshal(fields)
}

func decodeObject(raw json.RawMessage) (Object, error) {
	var head map[string]json.RawMessage
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode object")
	}
	var typeName string
	if t, ok := head[typeKey]; ok {
		if err := json.Unmarshal(t, &typeName); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode %s", typeKey)
		}
	}
	if typeName == "" {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "object is missing %s", typeKey)
	}
	obj, err := newObject(typeName)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, obj); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode %s", typeName)
	}
	return obj, nil
}

// MarshalJSON encodes the rules as a list of typed objects.
func (c RuleContainer) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(c.rules))
	for _, r := range c.rules {
		raw, err := encodeObject(r)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", r.ObjectType(), err)
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a list of typed rules.
func (c *RuleContainer) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode rules")
	}
	c.rules = c.rules[:0]
	for i, raw := range raws {
		obj, err := decodeObject(raw)
		if err != nil {
			return fmt.Errorf("rule #%d: %w", i, err)
		}
		if _, isGroup := obj.(SceneNodeGroup); isGroup {
			return errors.New(errors.ErrCodeInvalidManifest, "rule #%d: %s is a group, not a rule", i, obj.ObjectType())
		}
		c.Add(obj)
	}
	return nil
}

// =============================================================================
// Manifest API
// =============================================================================

type document struct {
	Values []json.RawMessage `json:"values"`
}

// Marshal encodes a manifest as indented JSON.
func Marshal(m *Manifest) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(m, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes a manifest as JSON to w.
func Write(m *Manifest, w io.Writer) error {
	doc := document{Values: make([]json.RawMessage, 0, m.Len())}
	for obj := range m.Objects() {
		raw, err := encodeObject(obj)
		if err != nil {
			return fmt.Errorf("encode %s: %w", obj.ObjectType(), err)
		}
		doc.Values = append(doc.Values, raw)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Unmarshal decodes a manifest from JSON bytes.
func Unmarshal(data []byte) (*Manifest, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode manifest")
	}
	m := New()
	for i, raw := range doc.Values {
		obj, err := decodeObject(raw)
		if err != nil {
			return nil, fmt.Errorf("value #%d: %w", i, err)
		}
		if g, ok := obj.(SceneNodeGroup); ok {
			if err := errors.ValidateGroupName(g.Name()); err != nil {
				return nil, fmt.Errorf("value #%d: %w", i, err)
			}
		}
		m.Add(obj)
	}
	return m, nil
}

// Read decodes a manifest from r.
func Read(r io.Reader) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Unmarshal(data)
}

// ReadFile reads a manifest file.
func ReadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}

// WriteFile writes a manifest to path with 0644 permissions.
func WriteFile(m *Manifest, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(m, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
