// Package store persists scene manifests between runs.
//
// A manifest is addressed by a scene key: a slash-separated relative path
// such as "props/crate" (see [errors.ValidateSceneKey]). [FileStore] keeps
// each manifest as a JSON sidecar file; [MongoStore] keeps one document per
// scene in a MongoDB collection so API servers can share them.
package store

import (
	"context"

	"github.com/matzehuels/meshrules/pkg/manifest"
)

// Store loads and saves manifests by scene key.
type Store interface {
	// Load returns the manifest stored for key. The boolean is false when no
	// manifest exists yet; that is not an error.
	Load(ctx context.Context, key string) (*manifest.Manifest, bool, error)

	// Save replaces the manifest stored for key.
	Save(ctx context.Context, key string, m *manifest.Manifest) error

	// Delete removes the manifest for key. Missing keys are ignored.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
