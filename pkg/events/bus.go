package events

import (
	"slices"
	"sync"

	"github.com/matzehuels/meshrules/pkg/manifest"
	"github.com/matzehuels/meshrules/pkg/scene"
)

// Bus fans host callbacks out to connected handlers.
// Connecting and disconnecting is safe from any goroutine; dispatch takes a
// snapshot of the handler lists so handlers may disconnect while running.
type Bus struct {
	mu       sync.RWMutex
	metaInfo []ManifestMetaInfoHandler
	requests []AssetImportRequestHandler
}

// NewBus returns a bus with no handlers.
func NewBus() *Bus {
	return &Bus{}
}

// ConnectMetaInfo registers h for object initialization. Duplicate
// connections are ignored.
func (b *Bus) ConnectMetaInfo(h ManifestMetaInfoHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !slices.Contains(b.metaInfo, h) {
		b.metaInfo = append(b.metaInfo, h)
	}
}

// DisconnectMetaInfo removes h.
func (b *Bus) DisconnectMetaInfo(h ManifestMetaInfoHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.metaInfo = slices.DeleteFunc(b.metaInfo, func(x ManifestMetaInfoHandler) bool { return x == h })
}

// ConnectImportRequest registers h for manifest passes. Duplicate
// connections are ignored.
func (b *Bus) ConnectImportRequest(h AssetImportRequestHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !slices.Contains(b.requests, h) {
		b.requests = append(b.requests, h)
	}
}

// DisconnectImportRequest removes h.
func (b *Bus) DisconnectImportRequest(h AssetImportRequestHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = slices.DeleteFunc(b.requests, func(x AssetImportRequestHandler) bool { return x == h })
}

// Handlers returns the number of connected meta-info and import-request handlers.
func (b *Bus) Handlers() (metaInfo, requests int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.metaInfo), len(b.requests)
}

// InitializeObject notifies every meta-info handler about a new object.
func (b *Bus) InitializeObject(s *scene.Scene, target manifest.Object) {
	b.mu.RLock()
	handlers := slices.Clone(b.metaInfo)
	b.mu.RUnlock()

	for _, h := range handlers {
		h.InitializeObject(s, target)
	}
}

// UpdateManifest runs a manifest pass through every import-request handler
// and returns the combined result. With no handlers the pass is Ignored.
func (b *Bus) UpdateManifest(s *scene.Scene, action ManifestAction, requester RequestingApplication) ProcessingResult {
	b.mu.RLock()
	handlers := slices.Clone(b.requests)
	b.mu.RUnlock()

	result := Ignored
	for _, h := range handlers {
		result = Combine(result, h.UpdateManifest(s, action, requester))
	}
	return result
}

// Behavior is a unit of scene processing that attaches itself to a bus.
type Behavior interface {
	Activate(b *Bus)
	Deactivate(b *Bus)
}
