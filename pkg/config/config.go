// Copyright 2025 walteh LLC
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
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/rules"
	"github.com/walteh/patchrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte, filename string) (*Config, error)

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

// 🔄 Rule is an inline substitution rule
type Rule struct {
	Name        string `json:"name" yaml:"name" hcl:"name,label"`
	Pattern     string `json:"pattern" yaml:"pattern" hcl:"pattern"`
	Replacement string `json:"replacement" yaml:"replacement" hcl:"replacement,optional"`
	Literal     bool   `json:"literal,omitempty" yaml:"literal,omitempty" hcl:"literal,optional"`
}

// 📚 Config represents the complete configuration
type Config struct {
	// RuleSet names a built-in rule set; mutually exclusive with Rules
	RuleSet string `json:"rule_set,omitempty" yaml:"rule_set,omitempty" hcl:"rule_set,optional"`
	// Message overrides the confirmation printed after each write
	Message string `json:"message,omitempty" yaml:"message,omitempty" hcl:"message,optional"`
	// Targets are paths or doublestar globs, relative to the config file
	Targets      []string `json:"targets,omitempty" yaml:"targets,omitempty" hcl:"targets,optional"`
	Rules        []Rule   `json:"rules,omitempty" yaml:"rules,omitempty" hcl:"rule,block"`
	Strict       bool     `json:"strict,omitempty" yaml:"strict,omitempty" hcl:"strict,optional"`
	CheckBalance bool     `json:"check_balance,omitempty" yaml:"check_balance,omitempty" hcl:"check_balance,optional"`
	Backup       bool     `json:"backup,omitempty" yaml:"backup,omitempty" hcl:"backup,optional"`

	location string
}

// 🎯 LoadConfig loads and validates the configuration at path.
// The format is picked from the file extension.
func LoadConfig(ctx context.Context, path string) (*Config, error) {
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("unsupported file extension %q", filepath.Ext(path))
	}

	cfg, err := p.Parse(ctx, data, path)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	cfg.location = path

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks if the configuration is valid
func (cfg *Config) Validate() error {
	if cfg.RuleSet != "" && len(cfg.Rules) > 0 {
		return errors.Errorf("rule_set and rules are mutually exclusive")
	}

	if len(cfg.Rules) > 0 {
		if len(cfg.Targets) == 0 {
			return errors.Errorf("targets are required with inline rules")
		}
		for i, r := range cfg.Rules {
			if r.Name == "" {
				return errors.Errorf("rule %d: name is required", i)
			}
		}
		if err := text.NewRegexpTextReplacer().ValidateRules(cfg.textRules()); err != nil {
			return errors.Errorf("validating rules: %w", err)
		}
	} else if _, err := rules.Get(cfg.RuleSet); err != nil {
		return err
	}

	for i, t := range cfg.Targets {
		if strings.TrimSpace(t) == "" {
			return errors.Errorf("target %d: path is required", i)
		}
		if isGlob(t) && !doublestar.ValidatePattern(filepath.ToSlash(t)) {
			return errors.Errorf("target %d: invalid glob %q", i, t)
		}
	}

	return nil
}

// Location returns the path the config was loaded from, if any
func (cfg *Config) Location() string {
	return cfg.location
}

// Dir is the directory targets are relative to; empty means the working directory
func (cfg *Config) Dir() string {
	if cfg.location == "" {
		return ""
	}
	return filepath.Dir(cfg.location)
}

func (cfg *Config) textRules() []text.ReplacementRule {
	out := make([]text.ReplacementRule, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		out = append(out, text.ReplacementRule{
			Name:        r.Name,
			Pattern:     r.Pattern,
			Replacement: r.Replacement,
			Literal:     r.Literal,
		})
	}
	return out
}

// 📚 ResolveRuleSet returns the named built-in set, or a set built from the inline rules
func (cfg *Config) ResolveRuleSet() (*rules.Set, error) {
	if len(cfg.Rules) > 0 {
		name := "inline"
		if cfg.location != "" {
			name = filepath.Base(cfg.location)
		}
		msg := cfg.Message
		if msg == "" {
			msg = fmt.Sprintf("Applied %d rules from %s", len(cfg.Rules), name)
		}
		return &rules.Set{
			Name:        name,
			Description: "inline rules",
			Message:     msg,
			Rules:       cfg.textRules(),
		}, nil
	}

	s, err := rules.Get(cfg.RuleSet)
	if err != nil {
		return nil, err
	}
	if cfg.Message != "" {
		s.Message = cfg.Message
	}
	return s, nil
}

// targetKey identifies the file behind a cleaned target path
func (cfg *Config) targetKey(p string) string {
	if !filepath.IsAbs(p) && cfg.Dir() != "" {
		p = filepath.Join(cfg.Dir(), p)
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func isGlob(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}

// 🗂️ ResolveTargets expands globs and falls back to the set's default target.
// Returned paths are absolute or relative to Dir. Plain paths are not checked
// for existence; a glob that matches nothing is an error.
func (cfg *Config) ResolveTargets(ctx context.Context, set *rules.Set) ([]string, error) {
	targets := cfg.Targets
	if len(targets) == 0 {
		if set.Target == "" {
			return nil, errors.Errorf("no targets given and rule set %s has no default target", set.Name)
		}
		targets = []string{set.Target}
	}

	seen := map[string]bool{}
	var out []string
	add := func(p string) {
		p = filepath.Clean(p)
		key := cfg.targetKey(p)
		if !seen[key] {
			seen[key] = true
			out = append(out, p)
		}
	}

	for _, t := range targets {
		if !isGlob(t) {
			add(t)
			continue
		}

		base, pattern := doublestar.SplitPattern(filepath.ToSlash(t))
		root := filepath.FromSlash(base)
		if !filepath.IsAbs(root) && cfg.Dir() != "" {
			root = filepath.Join(cfg.Dir(), root)
		}

		matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Errorf("expanding %q: %w", t, err)
		}
		if len(matches) == 0 {
			return nil, errors.Errorf("target %q matched no files", t)
		}

		sort.Strings(matches)
		zerolog.Ctx(ctx).Debug().Str("glob", t).Strs("matches", matches).Msg("expanded target")
		for _, m := range matches {
			add(filepath.Join(filepath.FromSlash(base), filepath.FromSlash(m)))
		}
	}

	return out, nil
}
