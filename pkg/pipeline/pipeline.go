// Package pipeline provides the end-to-end flows of beltwright.
//
// This package ties the core packages together so that the CLI and any
// other entry point behave the same way:
//
//  1. Load: read a circuit document, parse its graph and packages
//  2. Export: assemble the graph and encode the blueprint text
//  3. Import: decode and verify blueprint text
//  4. Render: draw the circuit as DOT or SVG
//
// Export and Render results are cached by content hash.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	loaded, err := pipeline.LoadFile(ctx, "circuit.json", logger)
//	if err != nil {
//	    return err
//	}
//	res, err := runner.Export(ctx, loaded.Graph, loaded.Registry, pipeline.Options{
//	    Config:    config.Default(),
//	    ShortDesc: "smelter line",
//	})
//	fmt.Println(res.Text)
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/beltwright/pkg/assembler"
	"github.com/matzehuels/beltwright/pkg/blueprint"
	"github.com/matzehuels/beltwright/pkg/cache"
	"github.com/matzehuels/beltwright/pkg/config"
	"github.com/matzehuels/beltwright/pkg/graph"
)

// Format constants for rendered outputs.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// ValidFormats is the set of supported render formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
}

// ValidateFormat checks that a render format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: dot, svg)", format)
	}
	return nil
}

// =============================================================================
// Options - Export Configuration
// =============================================================================

// Options configures an export.
type Options struct {
	Config config.Config `json:"config"`

	// Blueprint header fields
	ShortDesc   string `json:"short_desc,omitempty"`
	Desc        string `json:"desc,omitempty"`
	Icons       [5]int `json:"icons,omitempty"`
	GameVersion string `json:"game_version,omitempty"`

	// UseGraphLayout replaces preset regions with those in the graph header.
	UseGraphLayout bool `json:"use_graph_layout,omitempty"`

	// Refresh bypasses the cache read; the result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// SetDefaults fills in the logger and game version.
func (o *Options) SetDefaults() {
	if o.GameVersion == "" {
		o.GameVersion = blueprint.DefaultGameVersion
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// header returns the blueprint header for these options.
func (o *Options) header() blueprint.Header {
	return blueprint.Header{
		Icons:       o.Icons,
		GameVersion: o.GameVersion,
		ShortDesc:   o.ShortDesc,
		Desc:        o.Desc,
	}
}

// ExportKeyOpts returns cache key options for export. The digest covers
// everything that shapes the output except the cache and library settings.
func (o *Options) ExportKeyOpts(cfg config.Config) cache.ExportKeyOpts {
	cfg.Cache = config.CacheConfig{}
	cfg.Library = ""
	data, _ := json.Marshal(struct {
		Config      config.Config
		Icons       [5]int
		GameVersion string
	}{cfg, o.Icons, o.GameVersion})
	return cache.ExportKeyOpts{
		ConfigDigest: cache.Hash(data),
		ShortDesc:    o.ShortDesc,
		Desc:         o.Desc,
	}
}

// documentDigest hashes the serialized form of g and the packages it
// reaches. The content address leaves out counts, flows, slot offsets and
// text, all of which shape the output, so cache keys use this instead.
func documentDigest(g *graph.Graph, packages map[string]*graph.PackageModel) string {
	data, _ := json.Marshal(g.Document(packages, graph.SerializeOptions{PruneUnused: true}))
	return cache.Hash(data)
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of an export.
type Result struct {
	// GraphHash is the content hash of the exported graph.
	GraphHash string

	// Text is the blueprint string.
	Text string

	// Blueprint is the structured blueprint Text encodes.
	Blueprint *blueprint.Blueprint

	// Assembly holds assembly counters. It is nil on a cache hit.
	Assembly *assembler.Result

	Stats Stats

	// CacheHit reports whether Text came from the cache.
	CacheHit bool
}

// Stats contains export timings.
type Stats struct {
	NodeCount    int
	EdgeCount    int
	AssembleTime time.Duration
	EncodeTime   time.Duration
}
