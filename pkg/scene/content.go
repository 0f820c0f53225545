package scene

// ContentKind identifies the type of data attached to a scene node.
type ContentKind string

// Content kinds known to the scene codec.
const (
	KindMesh        ContentKind = "mesh"
	KindVertexColor ContentKind = "vertex_color"
	KindVertexUV    ContentKind = "vertex_uv"
	KindTransform   ContentKind = "transform"
	KindBone        ContentKind = "bone"
	KindMaterial    ContentKind = "material"
)

// Content is the typed payload carried by a scene node.
type Content interface {
	Kind() ContentKind
}

// VertexColorSource is implemented by any content that carries a per-vertex
// color channel. Filtering by this interface instead of by [KindVertexColor]
// lets derived color formats count as vertex-color streams too.
type VertexColorSource interface {
	Content
	ColorCount() int
}

// IsVertexColor reports whether c carries vertex-color data.
func IsVertexColor(c Content) bool {
	_, ok := c.(VertexColorSource)
	return ok
}

// MeshData describes the geometry of a mesh node.
type MeshData struct {
	VertexCount int `json:"vertex_count,omitempty"`
	FaceCount   int `json:"face_count,omitempty"`
}

func (MeshData) Kind() ContentKind { return KindMesh }

// VertexColorData is a named per-vertex RGBA channel.
type VertexColorData struct {
	Count int `json:"count,omitempty"`
}

func (VertexColorData) Kind() ContentKind { return KindVertexColor }

// ColorCount returns the number of colors in the stream.
func (v VertexColorData) ColorCount() int { return v.Count }

// VertexUVData is a per-vertex texture coordinate channel.
type VertexUVData struct {
	Count int `json:"count,omitempty"`
}

func (VertexUVData) Kind() ContentKind { return KindVertexUV }

// TransformData is a local transform relative to the parent node.
type TransformData struct {
	Translation [3]float64 `json:"translation"`
	Rotation    [4]float64 `json:"rotation"` // quaternion x, y, z, w
	Scale       [3]float64 `json:"scale"`
}

func (TransformData) Kind() ContentKind { return KindTransform }

// BoneData marks a node as part of a skeleton.
type BoneData struct {
	Index int `json:"index"`
}

func (BoneData) Kind() ContentKind { return KindBone }

// MaterialData references a material by name.
type MaterialData struct {
	Material string `json:"material"`
}

func (MaterialData) Kind() ContentKind { return KindMaterial }
