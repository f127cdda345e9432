package cache

import "github.com/laneflow/laneflow/pkg/layout"

// Keyer constructs cache keys for the three pipeline stages.
type Keyer interface {
	// GraphKey keys a parsed process graph by the hash of its triple text.
	GraphKey(inputHash string) string

	// LayoutKey keys a computed layout by graph hash and geometry options.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact by layout hash and render options.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the options that change layout output.
type LayoutKeyOpts struct {
	Config     layout.Config
	Procedures []string // procedure filter, empty means all
}

// ArtifactKeyOpts are the options that change rendered output.
type ArtifactKeyOpts struct {
	Format string
}

// DefaultKeyer generates versioned, collision-resistant keys. Bump the
// version constants when a stage's output format changes incompatibly.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

const (
	graphKeyVersion    = "v1"
	layoutKeyVersion   = "v1"
	artifactKeyVersion = "v1"
)

// GraphKey implements Keyer.
func (k *DefaultKeyer) GraphKey(inputHash string) string {
	return hashKey("graph", graphKeyVersion, inputHash)
}

// LayoutKey implements Keyer.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", layoutKeyVersion, graphHash, opts)
}

// ArtifactKey implements Keyer.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", artifactKeyVersion, layoutHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation, e.g.
// per-tenant caches in serve mode.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to all keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// GraphKey implements Keyer.
func (k *ScopedKeyer) GraphKey(inputHash string) string {
	return k.prefix + k.inner.GraphKey(inputHash)
}

// LayoutKey implements Keyer.
func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

// ArtifactKey implements Keyer.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
