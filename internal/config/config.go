// Package config loads project manifests and turns them, or the equivalent
// command-line inputs, into a compile.Config.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	foundationerrors "git.home.luguber.info/inful/ssio/internal/foundation/errors"
	"git.home.luguber.info/inful/ssio/internal/logfields"
)

// Manifest is a project file (ssio.toml or ssio.yaml).
type Manifest struct {
	// Root is the project root, relative to the manifest's directory.
	Root string `toml:"root" yaml:"root"`
	// OutputDir, Template and every rule path are relative to Root.
	OutputDir   string         `toml:"output_dir" yaml:"output_dir" validate:"required"`
	Template    string         `toml:"template" yaml:"template"`
	PrettyPrint *bool          `toml:"pretty_print" yaml:"pretty_print"`
	Jobs        int            `toml:"jobs" yaml:"jobs" validate:"gte=0"`
	Globs       []GlobRule     `toml:"globs" yaml:"globs" validate:"dive"`
	Manual      []ManualRule   `toml:"manual" yaml:"manual" validate:"dive"`
	Assets      []GlobRule     `toml:"assets" yaml:"assets" validate:"dive"`
	Bundles     []BundleEntry  `toml:"bundles" yaml:"bundles" validate:"dive"`
	Exclude     []string       `toml:"exclude" yaml:"exclude" validate:"dive,required"`
	Markdown    MarkdownConfig `toml:"markdown" yaml:"markdown"`

	path string
}

// GlobRule selects files by pattern. With StripPrefix set, each match is placed at
// its path below that prefix instead of at its path below the root.
type GlobRule struct {
	Pattern     string `toml:"pattern" yaml:"pattern" validate:"required"`
	StripPrefix string `toml:"strip_prefix" yaml:"strip_prefix" validate:"omitempty,relpath"`
}

// ManualRule places one source file at an explicit output path.
type ManualRule struct {
	Source string `toml:"source" yaml:"source" validate:"required"`
	Target string `toml:"target" yaml:"target" validate:"required,relpath"`
}

// BundleEntry is a directory linked into the output as a whole.
type BundleEntry struct {
	Location string `toml:"location" yaml:"location" validate:"required"`
}

// MarkdownConfig tunes rendering of .md sources.
type MarkdownConfig struct {
	DisableGFM bool `toml:"disable_gfm" yaml:"disable_gfm"`
	HeadingIDs bool `toml:"heading_ids" yaml:"heading_ids"`
}

// Path is the file the manifest was loaded from.
func (m *Manifest) Path() string { return m.path }

// Dir is the directory Root is relative to.
func (m *Manifest) Dir() string { return filepath.Dir(m.path) }

// LoadManifest reads, expands and validates the manifest at path. A .env file next
// to the manifest is loaded first so that ${VAR} references can use it.
func LoadManifest(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "resolve manifest path").Build()
	}

	if loaded, envErr := loadEnvFile(filepath.Dir(abs)); envErr != nil {
		slog.Warn("Could not load .env file", logfields.Path(loaded), logfields.Error(envErr))
	} else if loaded != "" {
		slog.Debug("Loaded environment variables", logfields.Path(loaded))
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, foundationerrors.NotFoundError("manifest not found").
				WithCause(err).
				WithContext(logfields.KeyPath, abs).
				Build()
		}
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "read manifest").
			WithContext(logfields.KeyPath, abs).
			Build()
	}

	m, err := decode(abs, []byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, err
	}
	m.path = abs
	applyDefaults(m)
	if err := validateManifest(m); err != nil {
		return nil, err
	}
	return m, nil
}

func decode(path string, data []byte) (*Manifest, error) {
	var m Manifest
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), &m)
		if err != nil {
			return nil, parseError(path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			sort.Strings(keys)
			return nil, foundationerrors.ConfigError(fmt.Sprintf("unknown manifest keys: %s", strings.Join(keys, ", "))).
				WithContext(logfields.KeyPath, path).
				Build()
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
			return nil, parseError(path, err)
		}
	default:
		return nil, foundationerrors.ConfigError(fmt.Sprintf("unsupported manifest format %q (use .toml, .yaml or .yml)", ext)).
			WithContext(logfields.KeyPath, path).
			Build()
	}
	return &m, nil
}

func parseError(path string, err error) error {
	return foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "parse manifest").
		WithContext(logfields.KeyPath, path).
		Build()
}

func applyDefaults(m *Manifest) {
	if m.Root == "" {
		m.Root = "."
	}
	if m.OutputDir == "" {
		m.OutputDir = "output"
	}
}
