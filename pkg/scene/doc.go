// Package scene provides the in-memory scene graph produced by an asset
// import front end, plus its JSON file format.
//
// # Graph
//
// A [Graph] is an ordered, append-only table of named nodes. Each node has
// exactly one name, an optional parent, and optional typed [Content]
// (vertex colors, UVs, mesh data, transforms, bones, materials). Node indices
// are stable for the lifetime of the graph.
//
// # Storage Order
//
// Iteration with [Graph.Names] and [Graph.Contents] always yields nodes in
// insertion order, and the JSON codec preserves file order. Consumers that
// pick "the first node of some kind" (see package behavior) rely on this to
// produce reproducible imports, so it is part of the contract rather than an
// accident of the layout.
//
// # File Format
//
//	{
//	  "name": "hero",
//	  "nodes": [
//	    {"name": "root"},
//	    {"name": "mesh1", "parent": "root", "content": {"type": "mesh", "vertex_count": 512}},
//	    {"name": "mesh1:colors", "parent": "mesh1", "content": {"type": "vertex_color", "count": 512}}
//	  ]
//	}
//
// Parents are referenced by name and must appear earlier in the list.
//
// # Concurrency
//
// A Graph is safe for concurrent reads but not concurrent writes.
package scene
