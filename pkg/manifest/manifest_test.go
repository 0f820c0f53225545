package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/meshrules/pkg/errors"
)

func TestNewRulesStartDisabled(t *testing.T) {
	tests := []struct {
		name string
		rule VertexColorStreamRule
	}{
		{"static", NewStaticMeshAdvancedRule()},
		{"skin", NewSkinMeshAdvancedRule()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.VertexColorStreamName(); got != DisabledStream {
				t.Errorf("VertexColorStreamName() = %q, want %q", got, DisabledStream)
			}
			tt.rule.SetVertexColorStreamName("mesh1:colors")
			if got := tt.rule.VertexColorStreamName(); got != "mesh1:colors" {
				t.Errorf("after set = %q, want mesh1:colors", got)
			}
		})
	}
}

func TestGroupAdvancedRuleVariant(t *testing.T) {
	mesh := NewMeshGroup("props")
	if _, ok := mesh.NewAdvancedRule().(*StaticMeshAdvancedRule); !ok {
		t.Error("MeshGroup should produce a StaticMeshAdvancedRule")
	}

	skin := NewSkinGroup("hero", "root_bone")
	if _, ok := skin.NewAdvancedRule().(*SkinMeshAdvancedRule); !ok {
		t.Error("SkinGroup should produce a SkinMeshAdvancedRule")
	}

	if mesh.ID() == skin.ID() {
		t.Error("groups should receive distinct IDs")
	}
}

func TestRuleContainer(t *testing.T) {
	var c RuleContainer
	material := &MaterialRule{UpdateMaterials: true}
	advanced := NewStaticMeshAdvancedRule()

	c.Add(material)
	c.Add(nil)
	c.Add(advanced)

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if c.At(1) != advanced {
		t.Error("At(1) should return the advanced rule")
	}

	found, ok := FindRule[VertexColorStreamRule](&c)
	if !ok || found != advanced {
		t.Error("FindRule should locate the vertex-color rule")
	}
	if _, ok := FindRule[*OriginRule](&c); ok {
		t.Error("FindRule should not find an absent type")
	}

	if !c.Remove(material) {
		t.Error("Remove(material) = false, want true")
	}
	if c.Remove(material) {
		t.Error("second Remove should report false")
	}
	if c.Len() != 1 {
		t.Errorf("Len() after remove = %d, want 1", c.Len())
	}
}

func TestManifestVertexColorRules(t *testing.T) {
	m := New()
	mesh := NewMeshGroup("props")
	mesh.Rules().Add(&MaterialRule{})
	mesh.Rules().Add(NewStaticMeshAdvancedRule())
	skin := NewSkinGroup("hero", "root")
	skin.Rules().Add(NewSkinMeshAdvancedRule())
	m.Add(mesh)
	m.Add(&OriginRule{}) // loose objects are not groups
	m.Add(skin)

	var groups []string
	for g, r := range m.VertexColorRules() {
		groups = append(groups, g.Name()+"/"+r.ObjectType())
	}

	want := "props/StaticMeshAdvancedRule,hero/SkinMeshAdvancedRule"
	if got := strings.Join(groups, ","); got != want {
		t.Errorf("VertexColorRules = %s, want %s", got, want)
	}

	if g, ok := m.FindGroup("hero"); !ok || g != skin {
		t.Error("FindGroup(hero) should return the skin group")
	}
	if _, ok := m.FindGroup("missing"); ok {
		t.Error("FindGroup(missing) should fail")
	}
}

func TestManifestRoundTrip(t *testing.T) {
	m := New()
	mesh := NewMeshGroup("props", "mesh1", "mesh2")
	rule := NewStaticMeshAdvancedRule()
	rule.ColorStream = "mesh1:colors"
	rule.Use32BitVertices = true
	mesh.Rules().Add(rule)
	mesh.Rules().Add(&MaterialRule{RemoveUnusedMaterials: true})
	skin := NewSkinGroup("hero", "pelvis", "body")
	skin.Rules().Add(NewSkinMeshAdvancedRule())
	m.Add(mesh)
	m.Add(skin)

	path := filepath.Join(t.TempDir(), "hero.manifest.json")
	if err := WriteFile(m, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if got.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", got.Len())
	}

	g, ok := got.FindGroup("props")
	if !ok {
		t.Fatal("props group missing")
	}
	if g.ID() != mesh.ID() {
		t.Errorf("ID = %s, want %s", g.ID(), mesh.ID())
	}
	if _, ok := g.(*MeshGroup); !ok {
		t.Errorf("props decoded as %T", g)
	}
	adv, ok := FindRule[*StaticMeshAdvancedRule](g.Rules())
	if !ok {
		t.Fatal("advanced rule missing")
	}
	if adv.ColorStream != "mesh1:colors" || !adv.Use32BitVertices || !adv.MergeMeshes {
		t.Errorf("advanced rule = %+v", adv)
	}

	h, _ := got.FindGroup("hero")
	sg, ok := h.(*SkinGroup)
	if !ok {
		t.Fatalf("hero decoded as %T", h)
	}
	if sg.RootBone != "pelvis" {
		t.Errorf("RootBone = %q, want pelvis", sg.RootBone)
	}
}

func TestUnmarshalKeepsRuleDefaults(t *testing.T) {
	data := `{"values":[
		{"$type":"MeshGroup","name":"props","rules":[{"$type":"StaticMeshAdvancedRule"}]},
		{"$type":"SkinGroup","name":"hero","rules":[{"$type":"SkinMeshAdvancedRule","use_32bit_vertices":true}]}
	]}`
	m, err := Unmarshal([]byte(data))
	if err != nil {
		t.Fatal(err)
	}

	props, _ := m.FindGroup("props")
	static, ok := FindRule[*StaticMeshAdvancedRule](props.Rules())
	if !ok {
		t.Fatal("static rule missing")
	}
	if static.ColorStream != DisabledStream || !static.MergeMeshes || !static.UseCustomNormals {
		t.Errorf("static rule = %+v, want constructor defaults", *static)
	}

	hero, _ := m.FindGroup("hero")
	skin, ok := FindRule[*SkinMeshAdvancedRule](hero.Rules())
	if !ok {
		t.Fatal("skin rule missing")
	}
	if skin.ColorStream != DisabledStream || !skin.Use32BitVertices {
		t.Errorf("skin rule = %+v, want disabled stream and the encoded flag", *skin)
	}

	explicit, err := Unmarshal([]byte(`{"values":[{"$type":"MeshGroup","name":"p","rules":[{"$type":"StaticMeshAdvancedRule","merge_meshes":false,"vertex_color_stream_name":"a:colors"}]}]}`))
	if err != nil {
		t.Fatal(err)
	}
	p, _ := explicit.FindGroup("p")
	r, _ := FindRule[*StaticMeshAdvancedRule](p.Rules())
	if r.MergeMeshes || r.ColorStream != "a:colors" {
		t.Errorf("encoded fields should win over defaults: %+v", *r)
	}
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		code errors.Code
	}{
		{"not json", `{`, errors.ErrCodeInvalidManifest},
		{"missing type", `{"values":[{"name":"x"}]}`, errors.ErrCodeInvalidManifest},
		{"unknown type", `{"values":[{"$type":"LodGroup","name":"x"}]}`, errors.ErrCodeUnknownType},
		{"group as rule", `{"values":[{"$type":"MeshGroup","name":"a","rules":[{"$type":"MeshGroup","name":"b"}]}]}`, errors.ErrCodeInvalidManifest},
		{"bad group name", `{"values":[{"$type":"MeshGroup","name":"a/b"}]}`, errors.ErrCodeInvalidManifest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("code = %v, want %v (%v)", errors.GetCode(err), tt.code, err)
			}
		})
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestWriteFileReportsWriteErrors(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}
	m := New()
	m.Add(NewMeshGroup("props"))
	if err := WriteFile(m, "/dev/full"); err == nil {
		t.Error("WriteFile to a full device should fail")
	}
}

type lodRule struct {
	Levels int `json:"levels"`
}

func (*lodRule) ObjectType() string { return "LodRule" }

func TestRegister(t *testing.T) {
	Register("LodRule", func() Object { return &lodRule{} })

	m, err := Unmarshal([]byte(`{"values":[{"$type":"MeshGroup","name":"a","rules":[{"$type":"LodRule","levels":3}]}]}`))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	g, _ := m.FindGroup("a")
	r, ok := FindRule[*lodRule](g.Rules())
	if !ok || r.Levels != 3 {
		t.Errorf("lodRule = %+v, %v", r, ok)
	}

	found := false
	for _, n := range RegisteredTypes() {
		if n == "LodRule" {
			found = true
		}
	}
	if !found {
		t.Error("RegisteredTypes should include LodRule")
	}
}
