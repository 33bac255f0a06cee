package cache

// ScopedKeyer wraps a Keyer with a prefix so that several builds can share
// one backend without serving each other's results.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), buildinfo.Version+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ExportKey generates a prefixed export key.
func (k *ScopedKeyer) ExportKey(digest string, opts ExportKeyOpts) string {
	return k.prefix + k.inner.ExportKey(digest, opts)
}

// RenderKey generates a prefixed render key.
func (k *ScopedKeyer) RenderKey(digest string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(digest, opts)
}
