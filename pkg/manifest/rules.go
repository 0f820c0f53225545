package manifest

// DisabledStream is the vertex-color stream name meaning "no stream selected".
// It is never looked up as a node name.
const DisabledStream = "Disabled"

// Object type names used as "$type" discriminators.
const (
	TypeMeshGroup              = "MeshGroup"
	TypeSkinGroup              = "SkinGroup"
	TypeStaticMeshAdvancedRule = "StaticMeshAdvancedRule"
	TypeSkinMeshAdvancedRule   = "SkinMeshAdvancedRule"
	TypeMaterialRule           = "MaterialRule"
	TypeOriginRule             = "OriginRule"
)

// Object is anything that can live in a manifest.
type Object interface {
	ObjectType() string
}

// Rule is an object that can be attached to a group's [RuleContainer].
// Groups are never rules; the codec rejects a group nested in a rule list.
type Rule interface {
	Object
}

// VertexColorStreamRule is implemented by rules that select a vertex-color
// stream by node name. The stored value is either a node name or
// [DisabledStream].
type VertexColorStreamRule interface {
	Rule
	VertexColorStreamName() string
	SetVertexColorStreamName(name string)
}

// =============================================================================
// StaticMeshAdvancedRule
// =============================================================================

// StaticMeshAdvancedRule holds advanced export settings for static meshes.
type StaticMeshAdvancedRule struct {
	Use32BitVertices bool   `json:"use_32bit_vertices"`
	MergeMeshes      bool   `json:"merge_meshes"`
	UseCustomNormals bool   `json:"use_custom_normals"`
	ColorStream      string `json:"vertex_color_stream_name"`
}

// NewStaticMeshAdvancedRule returns a rule with import defaults.
func NewStaticMeshAdvancedRule() *StaticMeshAdvancedRule {
	return &StaticMeshAdvancedRule{
		MergeMeshes:      true,
		UseCustomNormals: true,
		ColorStream:      DisabledStream,
	}
}

func (*StaticMeshAdvancedRule) ObjectType() string { return TypeStaticMeshAdvancedRule }

func (r *StaticMeshAdvancedRule) VertexColorStreamName() string { return r.ColorStream }

func (r *StaticMeshAdvancedRule) SetVertexColorStreamName(name string) { r.ColorStream = name }

// =============================================================================
// SkinMeshAdvancedRule
// =============================================================================

// SkinMeshAdvancedRule holds advanced export settings for skinned meshes.
type SkinMeshAdvancedRule struct {
	Use32BitVertices bool   `json:"use_32bit_vertices"`
	ColorStream      string `json:"vertex_color_stream_name"`
}

// NewSkinMeshAdvancedRule returns a rule with import defaults.
func NewSkinMeshAdvancedRule() *SkinMeshAdvancedRule {
	return &SkinMeshAdvancedRule{ColorStream: DisabledStream}
}

func (*SkinMeshAdvancedRule) ObjectType() string { return TypeSkinMeshAdvancedRule }

func (r *SkinMeshAdvancedRule) VertexColorStreamName() string { return r.ColorStream }

func (r *SkinMeshAdvancedRule) SetVertexColorStreamName(name string) { r.ColorStream = name }

// =============================================================================
// Rules without a color stream
// =============================================================================

// MaterialRule controls how materials are generated on import.
type MaterialRule struct {
	RemoveUnusedMaterials bool `json:"remove_unused_materials"`
	UpdateMaterials       bool `json:"update_materials"`
}

func (*MaterialRule) ObjectType() string { return TypeMaterialRule }

// OriginRule relocates the exported mesh relative to a scene node.
type OriginRule struct {
	OriginNode  string     `json:"origin_node"`
	Translation [3]float64 `json:"translation"`
	Scale       float64    `json:"scale"`
}

func (*OriginRule) ObjectType() string { return TypeOriginRule }

var (
	_ VertexColorStreamRule = (*StaticMeshAdvancedRule)(nil)
	_ VertexColorStreamRule = (*SkinMeshAdvancedRule)(nil)
	_ Rule                  = (*MaterialRule)(nil)
	_ Rule                  = (*OriginRule)(nil)
)
