package cache

import "strings"

// ScopedKeyer puts every key of an inner [Keyer] under a scope, so that
// staging and production, or two teams, can cluster the same edge list into
// one Redis or MongoDB backend without reading each other's dendrograms.
// The [cache] prefix setting selects it.
type ScopedKeyer struct {
	inner Keyer
	scope string
}

// NewScopedKeyer scopes inner, or the [DefaultKeyer] when inner is nil. A
// missing trailing colon is added to scope, so "staging" and "staging:" name
// the same scope.
func NewScopedKeyer(inner Keyer, scope string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if scope != "" && !strings.HasSuffix(scope, ":") {
		scope += ":"
	}
	return &ScopedKeyer{inner: inner, scope: scope}
}

func (k *ScopedKeyer) ClusterKey(graphHash string, opts ClusterKeyOpts) string {
	return k.scope + k.inner.ClusterKey(graphHash, opts)
}

func (k *ScopedKeyer) RenderKey(clusterHash string, opts RenderKeyOpts) string {
	return k.scope + k.inner.RenderKey(clusterHash, opts)
}
