package cache

// Keyer builds cache keys for upstream responses.
type Keyer interface {
	// Key returns the key for the response of source (e.g. "downloads")
	// for the canonical package name.
	Key(source, pkg string) string

	// Prefix returns the common prefix of every key this keyer produces.
	Prefix() string
}

// DefaultKeyer produces keys of the form "pkgtrack:<source>:<pkg>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// Key implements Keyer.
func (DefaultKeyer) Key(source, pkg string) string {
	return "pkgtrack:" + source + ":" + pkg
}

// Prefix implements Keyer.
func (DefaultKeyer) Prefix() string {
	return "pkgtrack:"
}
