// Copyright 2025 speclabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// specNames are the logical documents published on every run, in the order
// they are copied and converted. Each name maps to one JSON copy and one
// YAML conversion write.
var specNames = []string{
	"spec3",
	"spec3.sdk",
	"spec3.beta.sdk",
	"fixtures3",
}

// 📄 SpecFile is one logical document: where it comes from, where the JSON
// copy lands, and where the YAML conversion is written.
type SpecFile struct {
	Name      string // Logical name (e.g. "spec3")
	Source    string // Absolute path of the JSON file in the source tree
	Target    string // Absolute path of the JSON copy in the target tree
	Converted string // Absolute path of the YAML sibling in the target tree
}

// 📚 Config represents the complete run configuration. It is fixed at process
// start and never mutated by the updater.
type Config struct {
	Source            string `json:"source" yaml:"source" hcl:"source"`
	Target            string `json:"target" yaml:"target" hcl:"target"`
	Org               string `json:"org" yaml:"org" hcl:"org"`
	Repo              string `json:"repo" yaml:"repo" hcl:"repo"`
	Branch            string `json:"branch,omitempty" yaml:"branch,omitempty" hcl:"branch,optional"`
	SpecDir           string `json:"spec_dir,omitempty" yaml:"spec_dir,omitempty" hcl:"spec_dir,optional"`
	CredentialCommand string `json:"credential_command,omitempty" yaml:"credential_command,omitempty" hcl:"credential_command,optional"`
	CredentialAccount string `json:"credential_account,omitempty" yaml:"credential_account,omitempty" hcl:"credential_account,optional"`
	DryRun            bool   `json:"dry_run,omitempty" yaml:"dry_run,omitempty" hcl:"dry_run,optional"`
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks if the configuration is valid and applies defaults
func (cfg *Config) Validate() error {
	if cfg.Source == "" {
		return errors.Errorf("source is required")
	}
	if cfg.Target == "" {
		return errors.Errorf("target is required")
	}
	if cfg.Org == "" {
		return errors.Errorf("org is required")
	}
	if cfg.Repo == "" {
		return errors.Errorf("repo is required")
	}

	cfg.Source = filepath.Clean(cfg.Source)
	cfg.Target = filepath.Clean(cfg.Target)

	if cfg.Branch == "" {
		cfg.Branch = "master"
	}
	if cfg.SpecDir == "" {
		cfg.SpecDir = "openapi"
	}
	if cfg.CredentialCommand == "" {
		cfg.CredentialCommand = "fetch-password"
	}
	if cfg.CredentialAccount == "" {
		u, err := user.Current()
		if err != nil {
			return errors.Errorf("resolving current user for credential account: %w", err)
		}
		cfg.CredentialAccount = u.Username
	}

	// SPECPUB_DRY_RUN wins over the config file so a one-off rehearsal never
	// requires editing checked-in configuration.
	if os.Getenv("SPECPUB_DRY_RUN") != "" {
		cfg.DryRun = true
	}

	return nil
}

// 📄 Files returns the ordered file mapping for this run.
func (cfg *Config) Files() []SpecFile {
	files := make([]SpecFile, 0, len(specNames))
	for _, name := range specNames {
		files = append(files, SpecFile{
			Name:      name,
			Source:    filepath.Join(cfg.Source, cfg.SpecDir, name+".json"),
			Target:    filepath.Join(cfg.Target, cfg.SpecDir, name+".json"),
			Converted: filepath.Join(cfg.Target, cfg.SpecDir, name+".yaml"),
		})
	}
	return files
}

// FixturesPattern matches the fixture batch in the target tree.
func (cfg *Config) FixturesPattern() string {
	return filepath.Join(cfg.Target, cfg.SpecDir, "fixtures*")
}

// SpecPattern matches the specification batch in the target tree.
func (cfg *Config) SpecPattern() string {
	return filepath.Join(cfg.Target, cfg.SpecDir, "spec*")
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s -> %s (github.com/%s/%s)", cfg.Source, cfg.Target, cfg.Org, cfg.Repo)
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

func init() {
	Register(&HCLParser{})
}

func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var cfg Config
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &cfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}
