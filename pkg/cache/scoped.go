package cache

// ScopedKeyer prefixes every key of an inner Keyer, so separate catalogs
// or users sharing one Redis instance do not collide.
//
//	keyer := cache.NewScopedKeyer(nil, "team-a:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// OrderKey returns the prefixed order key.
func (k *ScopedKeyer) OrderKey(graphHash string, opts OrderKeyOpts) string {
	return k.prefix + k.inner.OrderKey(graphHash, opts)
}
