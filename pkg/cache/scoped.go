package cache

// ScopedKeyer prefixes every key of an inner [Keyer].
//
// Example usage:
//
//	// Keep results of different gate libraries apart
//	k := NewScopedKeyer(NewDefaultKeyer(), "lib:"+libraryHash+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or a [DefaultKeyer] when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) *ScopedKeyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) SequentialMapKey(netlistHash string, opts SequentialKeyOpts) string {
	return k.prefix + k.inner.SequentialMapKey(netlistHash, opts)
}

func (k *ScopedKeyer) AbstractionKey(netlistHash string, opts AbstractionKeyOpts) string {
	return k.prefix + k.inner.AbstractionKey(netlistHash, opts)
}

var _ Keyer = (*ScopedKeyer)(nil)
