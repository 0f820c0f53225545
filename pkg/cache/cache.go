// Package cache stores the results of manifest passes and rendered scene
// graphs so repeated runs over unchanged inputs are free.
//
// Three backends implement [Cache]:
//
//   - [FileCache] keeps JSON entries under a local directory (CLI default).
//   - [RedisCache] shares entries between API servers.
//   - [NullCache] disables caching.
//
// Keys are derived by a [Keyer] from content hashes, never from paths, so a
// renamed scene file still hits and an edited one never does.
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry kind.
const (
	ManifestTTL = 7 * 24 * time.Hour
	RenderTTL   = 30 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored bytes and whether the key was present.
	// A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ManifestKeyOpts are the inputs besides scene and manifest content that
// change the outcome of a manifest pass.
type ManifestKeyOpts struct {
	Action    string `json:"action"`
	Requester string `json:"requester"`
}

// RenderKeyOpts are the inputs that change a rendered graph.
type RenderKeyOpts struct {
	Format    string   `json:"format"`
	Highlight []string `json:"highlight,omitempty"`
	Detailed  bool     `json:"detailed,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// ManifestKey addresses the result of running a manifest pass over the
	// given scene and manifest contents.
	ManifestKey(sceneHash, manifestHash string, opts ManifestKeyOpts) string

	// RenderKey addresses a rendered scene graph.
	RenderKey(sceneHash string, opts RenderKeyOpts) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ManifestKey returns "manifest:<sha256>".
func (DefaultKeyer) ManifestKey(sceneHash, manifestHash string, opts ManifestKeyOpts) string {
	return hashKey("manifest", sceneHash, manifestHash, opts)
}

// RenderKey returns "render:<sha256>".
func (DefaultKeyer) RenderKey(sceneHash string, opts RenderKeyOpts) string {
	return hashKey("render", sceneHash, opts)
}

var _ Keyer = DefaultKeyer{}
