// Package config holds the immutable settings of an assembly run.
//
// A [Config] is a value: it is built once, from [Default] or a TOML file via
// [Load], and passed explicitly to the assembler. Methods that adjust it
// return a modified copy.
package config

import (
	"fmt"
	"maps"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/beltwright/pkg/errors"
	"github.com/matzehuels/beltwright/pkg/items"
	"github.com/matzehuels/beltwright/pkg/layout"
)

// GenerationMode selects how logical edges become physical connections.
type GenerationMode string

const (
	// GenerationAirGap links routers directly to their neighbours and drops
	// the connector belts that become redundant.
	GenerationAirGap GenerationMode = "airgap"
	// GenerationSplice joins the two connector belts of an edge end to end.
	GenerationSplice GenerationMode = "splice"
	// GenerationSorter bridges the two connector belts with a sorter.
	GenerationSorter GenerationMode = "sorter"
)

// Preset names, one per placement group.
const (
	PresetRouter  = "router"
	PresetMonitor = "monitor"
	PresetSource  = "source"
	PresetSink    = "sink"
	PresetSorter  = "sorter"
)

// RequiredPresets lists the presets every valid config defines.
var RequiredPresets = []string{PresetRouter, PresetMonitor, PresetSource, PresetSink, PresetSorter}

// Preset is a placement region, its origin, and the footprint of one object
// placed in it.
type Preset struct {
	layout.Region
	Origin layout.Vec3      `toml:"origin" json:"origin"`
	Object layout.Footprint `toml:"object" json:"object"`
}

// CacheConfig selects the export cache backend.
type CacheConfig struct {
	Backend   string        `toml:"backend" validate:"oneof=file redis none"`
	Dir       string        `toml:"dir"`
	RedisAddr string        `toml:"redis_addr" validate:"required_if=Backend redis"`
	TTL       time.Duration `toml:"ttl" validate:"gte=0"`
}

// Config is the complete assembly configuration.
type Config struct {
	Generation   GenerationMode    `toml:"generation" validate:"oneof=airgap splice sorter"`
	LayoutMode   layout.Mode       `toml:"layout_mode" validate:"oneof=central-cube sequential"`
	SignalsFirst bool              `toml:"signals_first"`
	DefaultTier  int               `toml:"default_tier" validate:"min=1,max=3"`
	PriorityTier int               `toml:"priority_tier" validate:"min=1,max=3"`
	SorterTier   int               `toml:"sorter_tier" validate:"min=1,max=3"`
	Presets      map[string]Preset `toml:"presets" validate:"dive"`

	Cache   CacheConfig `toml:"cache"`
	Library string      `toml:"library"`
}

var validate = validator.New()

// Default returns the built-in configuration. Groups grow into separate
// quadrants around the origin; sorters sit above everything else.
func Default() Config {
	router := layout.Footprint{W: 5, H: 1, D: 5, AnchorX: 2.5, AnchorY: 2.5}
	monitor := layout.Footprint{W: 3, H: 1, D: 1, AnchorX: 1.5, AnchorY: 0.5}
	sorter := layout.Footprint{W: 1, H: 1, D: 1, AnchorX: 0.5, AnchorY: 0.5}
	region := func(w, h, d float64, dir layout.Direction) layout.Region {
		return layout.Region{MaxWidth: w, MaxHeight: h, MaxDepth: d, Direction: dir, Spacing: layout.Vec3{X: 1, Y: 1}}
	}
	return Config{
		Generation:   GenerationSorter,
		LayoutMode:   layout.ModeCentralCube,
		DefaultTier:  items.TierMk3,
		PriorityTier: items.TierMk2,
		SorterTier:   items.TierMk3,
		Presets: map[string]Preset{
			PresetRouter:  {Region: region(120, 8, 120, layout.DirNorthEast), Origin: layout.Vec3{X: 2, Y: 2}, Object: router},
			PresetMonitor: {Region: region(120, 8, 120, layout.DirSouthEast), Origin: layout.Vec3{X: 2, Y: -2}, Object: monitor},
			PresetSource:  {Region: region(60, 4, 120, layout.DirNorthWest), Origin: layout.Vec3{X: -2, Y: 2}, Object: monitor},
			PresetSink:    {Region: region(60, 4, 120, layout.DirSouthWest), Origin: layout.Vec3{X: -2, Y: -2}, Object: monitor},
			PresetSorter:  {Region: layout.Region{MaxWidth: 120, MaxHeight: 8, MaxDepth: 120, Direction: layout.DirNorthEast}, Origin: layout.Vec3{X: 2, Y: 2, Z: 10}, Object: sorter},
		},
		Cache: CacheConfig{Backend: "file", TTL: 24 * time.Hour},
	}
}

// Load reads a TOML file over the defaults and validates the result. Keys
// the config does not know are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field ranges and that every required preset is defined.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, formatValidationError(err), "invalid config")
	}
	for _, name := range RequiredPresets {
		if _, ok := c.Presets[name]; !ok {
			return errors.New(errors.ErrCodeInvalidConfig, "missing preset %q", name)
		}
	}
	return nil
}

// Preset returns the named preset.
func (c Config) Preset(name string) (Preset, error) {
	p, ok := c.Presets[name]
	if !ok {
		return Preset{}, errors.New(errors.ErrCodeInvalidConfig, "missing preset %q", name)
	}
	return p, nil
}

// WithGraphLayout returns a copy of c whose preset regions are replaced by
// the regions a graph carries in its header. Origins and footprints are kept.
func (c Config) WithGraphLayout(regions map[string]layout.Region) Config {
	out := c
	out.Presets = maps.Clone(c.Presets)
	for name, r := range regions {
		p := out.Presets[name]
		p.Region = r
		out.Presets[name] = p
	}
	return out
}

// WithGeneration returns a copy of c with the given generation mode.
func (c Config) WithGeneration(mode GenerationMode) Config {
	out := c
	out.Presets = maps.Clone(c.Presets)
	out.Generation = mode
	return out
}

func formatValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
