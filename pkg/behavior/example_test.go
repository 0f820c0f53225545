package behavior_test

import (
	"fmt"

	"github.com/matzehuels/meshrules/pkg/behavior"
	"github.com/matzehuels/meshrules/pkg/events"
	"github.com/matzehuels/meshrules/pkg/manifest"
	"github.com/matzehuels/meshrules/pkg/scene"
)

func ExampleFirstVertexColorStream() {
	g := scene.NewGraph()
	root, _ := g.AddNode(scene.NoParent, "root", nil)
	g.AddNode(root, "mesh1:colors", scene.VertexColorData{Count: 24})
	g.AddNode(root, "mesh1", scene.MeshData{VertexCount: 24})

	fmt.Println(behavior.FirstVertexColorStream(g))
	// Output: mesh1:colors
}

func ExampleVertexColor_UpdateManifest() {
	s := scene.New("crate")
	root, _ := s.Graph.AddNode(scene.NoParent, "root", nil)
	s.Graph.AddNode(root, "mesh1:colors", scene.VertexColorData{})

	rule := manifest.NewStaticMeshAdvancedRule()
	rule.SetVertexColorStreamName("old:colors")
	group := manifest.NewMeshGroup("crate")
	group.Rules().Add(rule)
	s.Manifest.Add(group)

	vc := behavior.NewVertexColor(nil, behavior.WithRepairFunc(func(r behavior.Repair) {
		fmt.Printf("%s: %s -> %s\n", r.Group, r.OldName, r.NewName)
	}))
	result := vc.UpdateManifest(s, events.Update, events.Generic)

	fmt.Println(result)
	fmt.Println(rule.VertexColorStreamName())
	// Output:
	// crate: old:colors -> mesh1:colors
	// success
	// mesh1:colors
}

func ExampleVertexColor_InitializeObject() {
	s := scene.New("hero")
	s.Graph.AddNode(scene.NoParent, "body", scene.MeshData{})

	rule := manifest.NewSkinMeshAdvancedRule()
	rule.SetVertexColorStreamName("")
	behavior.NewVertexColor(nil).InitializeObject(s, rule)

	fmt.Println(rule.VertexColorStreamName())
	// Output: Disabled
}
