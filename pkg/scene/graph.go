package scene

import (
	"iter"

	"github.com/matzehuels/meshrules/pkg/errors"
)

// NodeIndex addresses a node in a [Graph].
type NodeIndex int

// NoParent is the parent index of root nodes.
const NoParent NodeIndex = -1

// Graph is an ordered table of named scene nodes.
// The zero value is not usable; create graphs with [NewGraph].
type Graph struct {
	names    []string
	parents  []NodeIndex
	contents []Content
	byName   map[string]NodeIndex
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{byName: make(map[string]NodeIndex)}
}

// AddNode appends a node and returns its index. Content may be nil.
//
// Returns an error if the name is invalid, already taken, or if parent is
// neither [NoParent] nor an existing index.
func (g *Graph) AddNode(parent NodeIndex, name string, content Content) (NodeIndex, error) {
	if err := errors.ValidateNodeName(name); err != nil {
		return NoParent, err
	}
	if _, exists := g.byName[name]; exists {
		return NoParent, errors.New(errors.ErrCodeDuplicateNode, "node %q already exists", name)
	}
	if parent != NoParent && !g.valid(parent) {
		return NoParent, errors.New(errors.ErrCodeInvalidScene, "parent index %d out of range for %q", parent, name)
	}

	idx := NodeIndex(len(g.names))
	g.names = append(g.names, name)
	g.parents = append(g.parents, parent)
	g.contents = append(g.contents, content)
	g.byName[name] = idx
	return idx, nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.names) }

// Name returns the name of node i, or "" if i is out of range.
func (g *Graph) Name(i NodeIndex) string {
	if !g.valid(i) {
		return ""
	}
	return g.names[i]
}

// Content returns the content of node i, or nil.
func (g *Graph) Content(i NodeIndex) Content {
	if !g.valid(i) {
		return nil
	}
	return g.contents[i]
}

// Parent returns the parent of node i, or [NoParent].
func (g *Graph) Parent(i NodeIndex) NodeIndex {
	if !g.valid(i) {
		return NoParent
	}
	return g.parents[i]
}

// Children returns the direct children of node i in storage order.
// Passing [NoParent] returns the roots.
func (g *Graph) Children(i NodeIndex) []NodeIndex {
	var out []NodeIndex
	for idx, p := range g.parents {
		if p == i {
			out = append(out, NodeIndex(idx))
		}
	}
	return out
}

// Find returns the index of the node named name.
func (g *Graph) Find(name string) (NodeIndex, bool) {
	idx, ok := g.byName[name]
	return idx, ok
}

// Names yields every node name in storage order.
func (g *Graph) Names() iter.Seq2[NodeIndex, string] {
	return func(yield func(NodeIndex, string) bool) {
		for i, n := range g.names {
			if !yield(NodeIndex(i), n) {
				return
			}
		}
	}
}

// Contents yields every node's content in storage order, including nodes
// without content (nil).
func (g *Graph) Contents() iter.Seq2[NodeIndex, Content] {
	return func(yield func(NodeIndex, Content) bool) {
		for i, c := range g.contents {
			if !yield(NodeIndex(i), c) {
				return
			}
		}
	}
}

// CountKind returns how many nodes carry content of the given kind.
func (g *Graph) CountKind(kind ContentKind) int {
	n := 0
	for _, c := range g.contents {
		if c != nil && c.Kind() == kind {
			n++
		}
	}
	return n
}

func (g *Graph) valid(i NodeIndex) bool {
	return i >= 0 && int(i) < len(g.names)
}
