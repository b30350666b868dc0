// Package config holds compiler-wide constants and the project manifest
// format, mirroring the teacher's internal/config (constants.go) and its
// YAML-driven internal/ext/config.go.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Version is the compiler version, set at build time via -ldflags the same
// way the teacher stamps internal/config.Version.
var Version = "0.1.0"

const SourceFileExt = ".ctl"

// IsTestMode mirrors the teacher's config.IsTestMode; nothing in this
// module reads or sets it.
var IsTestMode = false

// IsLSPMode mirrors the teacher's config.IsLSPMode; nothing in this module
// reads or sets it.
var IsLSPMode = false

// Lang item names the checker expects to find registered via @lang (spec §6).
const (
	LangOption          = "option"
	LangVec             = "vec"
	LangSet             = "set"
	LangMap             = "map"
	LangString          = "string"
	LangSpan            = "span"
	LangSpanMut         = "span_mut"
	LangRange           = "range"
	LangRangeInclusive  = "range_inclusive"
	LangRangeTo         = "range_to"
	LangRangeToInclusive = "range_to_inclusive"
	LangRangeFrom       = "range_from"
)

// IterTraitName is the lang_traits key for the for-loop iterator protocol.
const IterTraitName = "iter"

// Manifest is the ctl.yaml project manifest: source roots and the flags
// documented in spec.md §6 (--no-core, --no-std, --leak, --no-bit-int, --lib).
type Manifest struct {
	Name       string   `yaml:"name"`
	Roots      []string `yaml:"roots"`
	NoCore     bool     `yaml:"no_core"`
	NoStd      bool     `yaml:"no_std"`
	Leak       bool     `yaml:"leak"`
	NoBitInt   bool     `yaml:"no_bit_int"`
	Lib        bool     `yaml:"lib"`
	LibraryDir []string `yaml:"library_dirs"`
}

// DefaultManifest returns a manifest for a single-file/no-config invocation.
func DefaultManifest() *Manifest {
	return &Manifest{Roots: []string{"."}}
}

// LoadManifest reads and parses a ctl.yaml project manifest. cmd/ctl does
// not call it; the CLI takes its settings from flags only.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := DefaultManifest()
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, err
	}
	return m, nil
}
