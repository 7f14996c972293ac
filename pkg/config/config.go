// Package config loads atlas configuration from TOML or YAML files.
//
// Every section mirrors the options of one layout package, so a file only
// needs the values it wants to change:
//
//	[tree]
//	level_separation = 120
//
//	[community]
//	resolution = 1.5
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
// The format is chosen by file extension (.toml, .yaml or .yml). Unknown keys
// are rejected so typos do not silently fall back to defaults.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/layout/community"
	"github.com/matzehuels/atlas/pkg/layout/packing"
	"github.com/matzehuels/atlas/pkg/layout/tidytree"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the complete atlas configuration.
type Config struct {
	Tree      TreeConfig      `toml:"tree" yaml:"tree"`
	Community CommunityConfig `toml:"community" yaml:"community"`
	Codebase  CodebaseConfig  `toml:"codebase" yaml:"codebase"`
	Bubble    BubbleConfig    `toml:"bubble" yaml:"bubble"`
	Cache     CacheConfig     `toml:"cache" yaml:"cache"`
	Server    ServerConfig    `toml:"server" yaml:"server"`
}

// TreeConfig configures the tree and radial layouts.
type TreeConfig struct {
	SiblingSeparation float32 `toml:"sibling_separation" yaml:"sibling_separation" json:"sibling_separation"`
	SubtreeSeparation float32 `toml:"subtree_separation" yaml:"subtree_separation" json:"subtree_separation"`
	LevelSeparation   float32 `toml:"level_separation" yaml:"level_separation" json:"level_separation"`
}

// Layout returns the tidy tree configuration for mode.
func (c TreeConfig) Layout(mode tidytree.Mode) tidytree.Config {
	return tidytree.Config{
		SiblingSeparation: c.SiblingSeparation,
		SubtreeSeparation: c.SubtreeSeparation,
		LevelSeparation:   c.LevelSeparation,
		Mode:              mode,
	}
}

// CommunityConfig configures community detection and the community layout.
type CommunityConfig struct {
	Resolution        float64 `toml:"resolution" yaml:"resolution" json:"resolution"`
	MaxIterations     int     `toml:"max_iterations" yaml:"max_iterations" json:"max_iterations"`
	MinModularityGain float64 `toml:"min_modularity_gain" yaml:"min_modularity_gain" json:"min_modularity_gain"`

	CommunitySpacing float32 `toml:"community_spacing" yaml:"community_spacing" json:"community_spacing"`
	NodeSpacing      float32 `toml:"node_spacing" yaml:"node_spacing" json:"node_spacing"`
	SpreadFactor     float32 `toml:"spread_factor" yaml:"spread_factor" json:"spread_factor"`
}

// Options returns the detection options.
func (c CommunityConfig) Options() community.Options {
	return community.Options{
		Resolution:        c.Resolution,
		MaxIterations:     c.MaxIterations,
		MinModularityGain: c.MinModularityGain,
	}
}

// Layout returns the community layout configuration.
func (c CommunityConfig) Layout() community.LayoutConfig {
	return community.LayoutConfig{
		CommunitySpacing: c.CommunitySpacing,
		NodeSpacing:      c.NodeSpacing,
		SpreadFactor:     c.SpreadFactor,
	}
}

// CodebaseConfig configures the codebase circle packing.
type CodebaseConfig struct {
	DirectoryPadding float32 `toml:"directory_padding" yaml:"directory_padding" json:"directory_padding"`
	FilePadding      float32 `toml:"file_padding" yaml:"file_padding" json:"file_padding"`
	SymbolRadius     float32 `toml:"symbol_radius" yaml:"symbol_radius" json:"symbol_radius"`
	FileRadius       float32 `toml:"file_radius" yaml:"file_radius" json:"file_radius"`
	DirectoryRadius  float32 `toml:"directory_radius" yaml:"directory_radius" json:"directory_radius"`
	SpreadFactor     float32 `toml:"spread_factor" yaml:"spread_factor" json:"spread_factor"`
}

// Layout returns the packing configuration.
func (c CodebaseConfig) Layout() packing.CodebaseConfig {
	return packing.CodebaseConfig{
		DirectoryPadding: c.DirectoryPadding,
		FilePadding:      c.FilePadding,
		SymbolRadius:     c.SymbolRadius,
		FileRadius:       c.FileRadius,
		DirectoryRadius:  c.DirectoryRadius,
		SpreadFactor:     c.SpreadFactor,
	}
}

// BubbleConfig configures bubble metrics.
type BubbleConfig struct {
	BaseRadius        float32 `toml:"base_radius" yaml:"base_radius" json:"base_radius"`
	Padding           float32 `toml:"padding" yaml:"padding" json:"padding"`
	PackingEfficiency float32 `toml:"packing_efficiency" yaml:"packing_efficiency" json:"packing_efficiency"`
}

// Layout returns the bubble configuration.
func (c BubbleConfig) Layout() packing.BubbleConfig {
	return packing.BubbleConfig{
		BaseRadius:        c.BaseRadius,
		Padding:           c.Padding,
		PackingEfficiency: c.PackingEfficiency,
	}
}

// CacheConfig selects and configures the layout cache.
type CacheConfig struct {
	Backend  string        `toml:"backend" yaml:"backend"`
	Dir      string        `toml:"dir" yaml:"dir"` // file backend; empty means the user cache dir
	RedisURL string        `toml:"redis_url" yaml:"redis_url"`
	Prefix   string        `toml:"prefix" yaml:"prefix"`
	TTL      time.Duration `toml:"ttl" yaml:"ttl"`
}

// ServerConfig configures `atlas serve`.
type ServerConfig struct {
	Addr         string        `toml:"addr" yaml:"addr"`
	MaxBodyBytes int64         `toml:"max_body_bytes" yaml:"max_body_bytes"`
	ReadTimeout  time.Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout" yaml:"write_timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	tree := tidytree.DefaultConfig()
	opts := community.DefaultOptions()
	cl := community.DefaultLayoutConfig()
	cb := packing.DefaultCodebaseConfig()
	bb := packing.DefaultBubbleConfig()

	return Config{
		Tree: TreeConfig{
			SiblingSeparation: tree.SiblingSeparation,
			SubtreeSeparation: tree.SubtreeSeparation,
			LevelSeparation:   tree.LevelSeparation,
		},
		Community: CommunityConfig{
			Resolution:        opts.Resolution,
			MaxIterations:     opts.MaxIterations,
			MinModularityGain: opts.MinModularityGain,
			CommunitySpacing:  cl.CommunitySpacing,
			NodeSpacing:       cl.NodeSpacing,
			SpreadFactor:      cl.SpreadFactor,
		},
		Codebase: CodebaseConfig{
			DirectoryPadding: cb.DirectoryPadding,
			FilePadding:      cb.FilePadding,
			SymbolRadius:     cb.SymbolRadius,
			FileRadius:       cb.FileRadius,
			DirectoryRadius:  cb.DirectoryRadius,
			SpreadFactor:     cb.SpreadFactor,
		},
		Bubble: BubbleConfig{
			BaseRadius:        bb.BaseRadius,
			Padding:           bb.Padding,
			PackingEfficiency: bb.PackingEfficiency,
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			Prefix:  "atlas:",
			TTL:     7 * 24 * time.Hour,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxBodyBytes: 64 << 20,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 2 * time.Minute,
		},
	}
}

// Validate checks every section and returns an INVALID_CONFIG error naming
// the first bad value.
func (c Config) Validate() error {
	checks := []struct {
		name     string
		v        float64
		positive bool
	}{
		{"tree.sibling_separation", float64(c.Tree.SiblingSeparation), true},
		{"tree.subtree_separation", float64(c.Tree.SubtreeSeparation), true},
		{"tree.level_separation", float64(c.Tree.LevelSeparation), true},
		{"community.resolution", c.Community.Resolution, true},
		{"community.max_iterations", float64(c.Community.MaxIterations), true},
		{"community.min_modularity_gain", c.Community.MinModularityGain, false},
		{"community.community_spacing", float64(c.Community.CommunitySpacing), false},
		{"community.node_spacing", float64(c.Community.NodeSpacing), true},
		{"community.spread_factor", float64(c.Community.SpreadFactor), true},
		{"codebase.directory_padding", float64(c.Codebase.DirectoryPadding), false},
		{"codebase.file_padding", float64(c.Codebase.FilePadding), false},
		{"codebase.symbol_radius", float64(c.Codebase.SymbolRadius), false},
		{"codebase.file_radius", float64(c.Codebase.FileRadius), false},
		{"codebase.directory_radius", float64(c.Codebase.DirectoryRadius), false},
		{"codebase.spread_factor", float64(c.Codebase.SpreadFactor), true},
		{"bubble.base_radius", float64(c.Bubble.BaseRadius), false},
		{"bubble.padding", float64(c.Bubble.Padding), false},
		{"bubble.packing_efficiency", float64(c.Bubble.PackingEfficiency), true},
		{"cache.ttl", float64(c.Cache.TTL), false},
		{"server.max_body_bytes", float64(c.Server.MaxBodyBytes), true},
	}
	for _, ck := range checks {
		var err error
		if ck.positive {
			err = errors.ValidatePositive(ck.name, ck.v)
		} else {
			err = errors.ValidateNonNegative(ck.name, ck.v)
		}
		if err != nil {
			return err
		}
	}
	if c.Bubble.PackingEfficiency > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "bubble.packing_efficiency must be at most 1, got %v", c.Bubble.PackingEfficiency)
	}

	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_url is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache.backend %q (want file, redis or none)", c.Cache.Backend)
	}
	return nil
}

// Load reads path on top of [Default] and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	ext, err := errors.ValidateFileExtension(path, ".toml", ".yaml", ".yml")
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "read config %s", path)
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInternal, err, "read config %s", path)
	}

	if ext == ".toml" {
		err = decodeTOML(data, &cfg)
	} else {
		err = decodeYAML(data, &cfg)
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	return cfg, cfg.Validate()
}

func decodeTOML(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown key %q", undecoded[0].String())
	}
	return nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/atlas/config.toml (or the platform
// equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "atlas", "config.toml"), nil
}

// LoadDefault loads the file at [DefaultPath] if it exists and returns
// [Default] otherwise.
func LoadDefault() (Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return Default(), nil
	}
	return Load(path)
}

// WriteTOML writes cfg as TOML to path, creating parent directories.
func WriteTOML(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create config dir")
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}
