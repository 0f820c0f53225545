// Package events defines the callback contracts between the import host and
// the behaviors that process a scene, and the bus that dispatches them.
//
// A behavior connects its handlers to a [Bus] when it is activated and
// disconnects them when it is deactivated. The host then calls
// [Bus.InitializeObject] whenever it creates a manifest object and
// [Bus.UpdateManifest] once per manifest pass. All dispatch is synchronous on
// the caller's goroutine, in connection order.
package events

import (
	"github.com/matzehuels/meshrules/pkg/manifest"
	"github.com/matzehuels/meshrules/pkg/scene"
)

// ManifestAction tells handlers why the manifest is being processed.
type ManifestAction int

const (
	// ConstructDefault asks handlers to populate a brand-new manifest.
	ConstructDefault ManifestAction = iota
	// Update asks handlers to revalidate an existing manifest.
	Update
)

func (a ManifestAction) String() string {
	switch a {
	case ConstructDefault:
		return "construct-default"
	case Update:
		return "update"
	default:
		return "unknown"
	}
}

// ParseManifestAction converts a name produced by String back to an action.
func ParseManifestAction(s string) (ManifestAction, bool) {
	switch s {
	case "construct-default", "construct":
		return ConstructDefault, true
	case "update":
		return Update, true
	default:
		return 0, false
	}
}

// RequestingApplication identifies who triggered the manifest pass.
type RequestingApplication int

const (
	Generic RequestingApplication = iota
	Editor
	AssetProcessor
)

func (r RequestingApplication) String() string {
	switch r {
	case Editor:
		return "editor"
	case AssetProcessor:
		return "asset-processor"
	default:
		return "generic"
	}
}

// ParseRequestingApplication converts a name produced by String back to a value.
// Unknown names map to Generic.
func ParseRequestingApplication(s string) RequestingApplication {
	switch s {
	case "editor":
		return Editor
	case "asset-processor":
		return AssetProcessor
	default:
		return Generic
	}
}

// ProcessingResult is what a handler reports back for a manifest pass.
type ProcessingResult int

const (
	// Ignored means the handler had nothing to do. It is not an error.
	Ignored ProcessingResult = iota
	Success
	Failure
)

func (r ProcessingResult) String() string {
	switch r {
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "ignored"
	}
}

// Combine merges two results: any Failure wins, otherwise any Success wins,
// otherwise the pass was Ignored.
func Combine(a, b ProcessingResult) ProcessingResult {
	if a == Failure || b == Failure {
		return Failure
	}
	if a == Success || b == Success {
		return Success
	}
	return Ignored
}

// ManifestMetaInfoHandler is notified when the host creates a manifest object.
type ManifestMetaInfoHandler interface {
	InitializeObject(s *scene.Scene, target manifest.Object)
}

// AssetImportRequestHandler takes part in manifest update passes.
type AssetImportRequestHandler interface {
	UpdateManifest(s *scene.Scene, action ManifestAction, requester RequestingApplication) ProcessingResult
}
