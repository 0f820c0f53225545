package manifest

import "iter"

// Manifest is the ordered collection of objects configured for a scene.
type Manifest struct {
	objects []Object
}

// New returns an empty manifest.
func New() *Manifest {
	return &Manifest{}
}

// Add appends an object. Nil objects are ignored.
func (m *Manifest) Add(obj Object) {
	if obj == nil {
		return
	}
	m.objects = append(m.objects, obj)
}

// Remove deletes the first occurrence of obj and reports whether it was found.
func (m *Manifest) Remove(obj Object) bool {
	for i, existing := range m.objects {
		if existing == obj {
			m.objects = append(m.objects[:i], m.objects[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of top-level objects.
func (m *Manifest) Len() int { return len(m.objects) }

// Objects yields the top-level objects in order.
func (m *Manifest) Objects() iter.Seq[Object] {
	return func(yield func(Object) bool) {
		for _, o := range m.objects {
			if !yield(o) {
				return
			}
		}
	}
}

// Groups yields every scene-node group in order.
func (m *Manifest) Groups() iter.Seq[SceneNodeGroup] {
	return func(yield func(SceneNodeGroup) bool) {
		for _, o := range m.objects {
			if g, ok := o.(SceneNodeGroup); ok {
				if !yield(g) {
					return
				}
			}
		}
	}
}

// FindGroup returns the first group with the given name.
func (m *Manifest) FindGroup(name string) (SceneNodeGroup, bool) {
	for g := range m.Groups() {
		if g.Name() == name {
			return g, true
		}
	}
	return nil, false
}

// VertexColorRules yields every rule exposing a vertex-color stream name,
// paired with the group that owns it.
func (m *Manifest) VertexColorRules() iter.Seq2[SceneNodeGroup, VertexColorStreamRule] {
	return func(yield func(SceneNodeGroup, VertexColorStreamRule) bool) {
		for g := range m.Groups() {
			for _, r := range g.Rules().All() {
				vc, ok := r.(VertexColorStreamRule)
				if !ok {
					continue
				}
				if !yield(g, vc) {
					return
				}
			}
		}
	}
}
