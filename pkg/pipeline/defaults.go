package pipeline

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/meshrules/pkg/events"
	"github.com/matzehuels/meshrules/pkg/manifest"
	"github.com/matzehuels/meshrules/pkg/scene"
)

// ConstructDefault fills s.Manifest with one group per top-level mesh node
// and lets the behaviors on bus initialize each group as it is added.
//
// A mesh node is top-level when none of its ancestors is a mesh. Groups
// select the mesh and its descendants. When the scene contains a skeleton
// the groups are skin groups rooted at the first top-level bone.
func ConstructDefault(s *scene.Scene, bus *events.Bus) []manifest.SceneNodeGroup {
	g := s.Graph
	rootBone := firstRootBone(g)

	var groups []manifest.SceneNodeGroup
	taken := map[string]bool{}
	for i, c := range g.Contents() {
		if _, ok := c.(scene.MeshData); !ok || hasMeshAncestor(g, i) {
			continue
		}
		name := uniqueGroupName(g.Name(i), taken)
		nodes := subtree(g, i)

		var group manifest.SceneNodeGroup
		if rootBone != "" {
			group = manifest.NewSkinGroup(name, rootBone, nodes...)
		} else {
			group = manifest.NewMeshGroup(name, nodes...)
		}
		s.Manifest.Add(group)
		bus.InitializeObject(s, group)
		groups = append(groups, group)
	}
	return groups
}

func hasMeshAncestor(g *scene.Graph, i scene.NodeIndex) bool {
	for p := g.Parent(i); p != scene.NoParent; p = g.Parent(p) {
		if _, ok := g.Content(p).(scene.MeshData); ok {
			return true
		}
	}
	return false
}

func firstRootBone(g *scene.Graph) string {
	for i, c := range g.Contents() {
		if _, ok := c.(scene.BoneData); !ok {
			continue
		}
		if _, parentIsBone := g.Content(g.Parent(i)).(scene.BoneData); !parentIsBone {
			return g.Name(i)
		}
	}
	return ""
}

// subtree returns the names of i and its descendants, depth first.
func subtree(g *scene.Graph, i scene.NodeIndex) []string {
	out := []string{g.Name(i)}
	for _, child := range g.Children(i) {
		out = append(out, subtree(g, child)...)
	}
	return out
}

// maxGroupBase leaves room for a numeric suffix under the group name limit.
const maxGroupBase = 240

var groupNameReplacer = strings.NewReplacer("/", "_", "\\", "_")

func uniqueGroupName(node string, taken map[string]bool) string {
	base := groupNameReplacer.Replace(node)
	if len(base) > maxGroupBase {
		cut := maxGroupBase
		for cut > 0 && !utf8.RuneStart(base[cut]) {
			cut--
		}
		base = base[:cut]
	}
	name := base
	for n := 2; taken[name]; n++ {
		name = base + "_" + strconv.Itoa(n)
	}
	taken[name] = true
	return name
}
