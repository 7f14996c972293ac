package cache

import "strings"

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey returns the key of a layout of the graph with the given
	// content hash.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ArtifactKey returns the key of a rendering of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds everything besides the graph that changes a layout.
type LayoutKeyOpts struct {
	Algorithm string `json:"algorithm"`
	Root      string `json:"root,omitempty"`

	// Config is the algorithm's configuration section. It is hashed through
	// its JSON encoding, so it must marshal deterministically.
	Config any `json:"config,omitempty"`
}

// ArtifactKeyOpts identifies a rendering of a layout.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Engine string `json:"engine,omitempty"`
	Labels bool   `json:"labels,omitempty"`
}

// DefaultKeyer produces unprefixed keys of the form "kind:version:...".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// keyVersion is bumped whenever cached payloads change shape.
const keyVersion = "v1"

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout:"+keyVersion+":"+opts.Algorithm, graphHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+keyVersion+":"+opts.Format, layoutHash, opts)
}

// KeyKind returns the kind segment of a key ("layout", "artifact"), the text
// before the first colon, or "other" for keys without one.
func KeyKind(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "other"
}
