// Package manifest models the user-configurable import rules attached to a
// scene: scene-node groups and the rules each group carries.
//
// # Objects
//
// Everything stored in a [Manifest] is an [Object]. Groups ([MeshGroup],
// [SkinGroup]) implement [SceneNodeGroup] and own a [RuleContainer]. Rules
// are objects too, so hosts can initialize a freshly created rule on its own.
//
// # Capabilities
//
// Behaviors never switch on concrete rule types. They test for small
// capability interfaces instead:
//
//   - [VertexColorStreamRule]: the rule stores a vertex-color stream name.
//     Implemented by [StaticMeshAdvancedRule] and [SkinMeshAdvancedRule].
//   - [AdvancedRuleFactory]: the group knows which advanced-rule variant it
//     should carry. Implemented by both group types.
//
// # Serialization
//
// Manifests are JSON. Each object carries a "$type" discriminator resolved
// through a registry; hosts can add their own types with [Register].
//
//	{
//	  "values": [
//	    {
//	      "$type": "MeshGroup",
//	      "id": "2f1d9c8e-...",
//	      "name": "hero",
//	      "rules": [
//	        {"$type": "StaticMeshAdvancedRule", "vertex_color_stream_name": "mesh1:colors", ...}
//	      ]
//	    }
//	  ]
//	}
package manifest
