package cache

// Key prefixes, also used as the keyType of cache hooks.
const (
	KeyTypeExport = "export"
	KeyTypeRender = "render"
)

// ExportKeyOpts are the settings an exported blueprint depends on besides
// the graph itself.
type ExportKeyOpts struct {
	ConfigDigest string `json:"config"`
	ShortDesc    string `json:"short_desc,omitempty"`
	Desc         string `json:"desc,omitempty"`
}

// RenderKeyOpts are the settings a circuit rendering depends on.
type RenderKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
}

// Keyer derives cache keys from a digest of the input document and options.
type Keyer interface {
	// ExportKey keys a blueprint text exported from a graph.
	ExportKey(digest string, opts ExportKeyOpts) string

	// RenderKey keys a DOT or SVG rendering of a graph.
	RenderKey(digest string, opts RenderKeyOpts) string
}

// DefaultKeyer hashes the document digest and options into a prefixed key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ExportKey implements Keyer.
func (DefaultKeyer) ExportKey(digest string, opts ExportKeyOpts) string {
	return hashKey(KeyTypeExport, digest, opts)
}

// RenderKey implements Keyer.
func (DefaultKeyer) RenderKey(digest string, opts RenderKeyOpts) string {
	return hashKey(KeyTypeRender, digest, opts)
}
