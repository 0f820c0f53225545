package cache

// ScopedKeyer prefixes every key of an inner [Keyer]. The API server uses it
// to keep entries of different projects apart in a shared Redis.
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "project:crates:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or a [DefaultKeyer] when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) ManifestKey(sceneHash, manifestHash string, opts ManifestKeyOpts) string {
	return k.prefix + k.inner.ManifestKey(sceneHash, manifestHash, opts)
}

func (k *ScopedKeyer) RenderKey(sceneHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(sceneHash, opts)
}
