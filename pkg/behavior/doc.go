// Package behavior implements scene-processing behaviors that keep manifest
// rules consistent with the scene graph they were authored against.
//
// # Vertex-color streams
//
// [VertexColor] owns the vertex-color stream name stored in advanced mesh
// rules:
//
//   - When the host creates a group, the group receives an advanced rule of its
//     own variant pointing at the first vertex-color stream in the graph
//     ([FirstVertexColorStream]). When the host creates a rule on its own, the
//     rule gets the same initial value, or [manifest.DisabledStream].
//   - On every manifest update, each stored name is checked against the graph's
//     node names. A name that no longer exists is replaced with the current
//     first stream and a warning is logged with the old and new names.
//
// A rule holding [manifest.DisabledStream] is never touched by updates.
//
// # Usage
//
//	bus := events.NewBus()
//	vc := behavior.NewVertexColor(logger)
//	vc.Activate(bus)
//	defer vc.Deactivate(bus)
//
//	bus.InitializeObject(s, group)
//	result := bus.UpdateManifest(s, events.Update, events.Generic)
//
// All calls are synchronous and never return errors; the worst outcome of a
// repair is a rule falling back to the disabled sentinel.
package behavior
