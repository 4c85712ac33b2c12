package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one Redis instance without seeing each other's entries.
//
// Example usage:
//
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
//	staging.Key("downloads", "react") // "staging:pkgtrack:downloads:react"
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

// Key generates a prefixed key.
func (k *ScopedKeyer) Key(source, pkg string) string {
	return k.prefix + k.inner.Key(source, pkg)
}

// Prefix returns the scope prefix followed by the inner keyer's prefix.
func (k *ScopedKeyer) Prefix() string {
	return k.prefix + k.inner.Prefix()
}
