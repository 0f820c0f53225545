package scene

import "github.com/matzehuels/meshrules/pkg/manifest"

// Scene pairs an imported graph with the manifest of user-configurable
// import rules that belongs to it. Behaviors borrow a Scene for the duration
// of a single callback; the host owns it.
type Scene struct {
	// Name identifies the scene, usually the source file's base name.
	Name string
	// Source is the path the graph was read from, if any.
	Source string

	Graph    *Graph
	Manifest *manifest.Manifest
}

// New creates a scene with an empty graph and manifest.
func New(name string) *Scene {
	return &Scene{
		Name:     name,
		Graph:    NewGraph(),
		Manifest: manifest.New(),
	}
}
