// Package pkg provides the core libraries for meshrules.
//
// # Overview
//
// meshrules keeps scene manifests consistent with the scene graphs they were
// authored against. A manifest holds groups of scene nodes and the rules that
// configure their export; advanced mesh rules name the vertex-color stream
// they use. When a scene changes, stream names go stale. meshrules picks the
// initial stream for new rules and repairs stale names on every update.
//
// # Architecture
//
// The typical data flow:
//
//	Scene graph file            Stored manifest
//	         ↓                         ↓
//	    [scene] package          [store] package
//	         └──────────┬──────────────┘
//	                    ↓
//	   [pipeline] (construct default, dispatch update on an [events] bus)
//	                    ↓
//	   [behavior] (assign and repair vertex-color streams)
//	                    ↓
//	   updated manifest, repairs, and an optional [render] of the graph
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, st, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{ScenePath: "hero.scene.json"})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Result, len(res.Repairs))
//
// # Main Packages
//
// ## Domain
//
// [scene] - Ordered scene graph with typed node content and its JSON codec.
// Node order is insertion order and is never changed.
//
// [manifest] - Groups, rules and the manifest container, with a JSON codec
// keyed by a "$type" discriminator.
//
// [events] - Manifest actions, requesting applications, processing results,
// and the bus that behaviors connect to.
//
// [behavior] - The vertex-color stream behavior.
//
// [dropgate] - Acceptance rules for files dropped onto the asset importer.
//
// ## Infrastructure
//
// [pipeline] - Load, process and save passes shared by the CLI and the API.
//
// [cache] - Result cache with file, Redis and null backends.
//
// [store] - Manifest storage in sidecar files or MongoDB.
//
// [render] - Graphviz DOT and SVG drawings of scene graphs.
//
// [config] - TOML settings with environment overrides.
//
// [errors] - Coded errors and input validation.
//
// [observability] - Optional hooks for metrics and tracing.
//
// [buildinfo] - Version information stamped in at build time.
//
// # Testing
//
//	go test ./...                # All tests
//	go test ./pkg/behavior/...   # Specific package
//	go test -run Example ./...   # Examples only
package pkg
