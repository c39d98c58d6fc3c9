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

// Package patch rewrites a file in place by running a rule set over its full contents.
package patch

import (
	"bytes"
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/rules"
	"github.com/walteh/patchrc/pkg/status"
	"github.com/walteh/patchrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// ErrRuleNotMatched is returned in strict mode when a rule replaced nothing
var ErrRuleNotMatched = errors.Base("rule did not match")

// 🔧 Options tunes how a Patcher treats its results. The zero value patches
// silently: unmatched rules are ignored and the file is always rewritten.
type Options struct {
	// Strict fails without writing when any rule matched nothing
	Strict bool
	// CheckBalance fails without writing when the result has unbalanced brackets
	CheckBalance bool
	// Backup copies the original file next to it before writing
	Backup bool
	// DryRun computes the result without writing
	DryRun bool
	// Diff fills Result.Diff
	Diff bool
}

// 📦 Result describes one patched file
type Result struct {
	Path        string
	Status      status.FileStatus
	Replacement *text.ReplacementResult
	// Unmatched lists the rules that replaced nothing
	Unmatched []string
	Diff      string
	// Message is the rule set's confirmation, set once the file has been written
	Message string
}

// 🎯 Patcher applies a rule set to files
type Patcher struct {
	set      *rules.Set
	replacer text.TextReplacer
	files    *status.Manager
	opts     Options
}

// 🏭 New creates a patcher for set, reading and writing through files
func New(set *rules.Set, files *status.Manager, opts Options) (*Patcher, error) {
	if set == nil {
		return nil, errors.Errorf("rule set is required")
	}
	if files == nil {
		return nil, errors.Errorf("file manager is required")
	}

	replacer := text.NewRegexpTextReplacer()
	if err := replacer.ValidateRules(set.Rules); err != nil {
		return nil, errors.Errorf("validating rule set %s: %w", set.Name, err)
	}

	return &Patcher{
		set:      set,
		replacer: replacer,
		files:    files,
		opts:     opts,
	}, nil
}

// Set returns the rule set the patcher applies
func (p *Patcher) Set() *rules.Set {
	return p.set
}

// Options returns the patcher's options
func (p *Patcher) Options() Options {
	return p.opts
}

// 🏃 Patch reads path, applies every rule in order and writes the result back
func (p *Patcher) Patch(ctx context.Context, path string) (*Result, error) {
	logger := zerolog.Ctx(ctx).With().Str("path", path).Str("rule_set", p.set.Name).Logger()

	content, err := p.files.ReadFile(ctx, path)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", path, err)
	}

	replaced, err := p.replacer.ReplaceText(ctx, bytes.NewReader(content), p.set.Rules)
	if err != nil {
		return nil, errors.Errorf("applying rule set %s: %w", p.set.Name, err)
	}

	res := &Result{
		Path:        path,
		Status:      status.StatusUnchanged,
		Replacement: replaced,
		Unmatched:   replaced.Unmatched(),
	}
	if replaced.WasModified {
		res.Status = status.StatusModified
	}

	for _, rr := range replaced.RuleResults {
		logger.Debug().Str("rule", rr.Name).Int("count", rr.Count).Msg("applied rule")
	}

	if p.opts.Diff {
		res.Diff = Diff(path, string(replaced.OriginalContent), string(replaced.ModifiedContent))
	}

	if p.opts.Strict && len(res.Unmatched) > 0 {
		return res, errors.Errorf("%w: %s", ErrRuleNotMatched, strings.Join(res.Unmatched, ", "))
	}

	if p.opts.CheckBalance {
		if err := text.CheckBalance(string(replaced.ModifiedContent)); err != nil {
			return res, errors.Errorf("checking result: %w", err)
		}
	}

	if p.opts.DryRun {
		res.Status = status.StatusSkipped
		logger.Debug().Int("replacements", replaced.ReplacementCount).Msg("dry run, not writing")
		return res, nil
	}

	if p.opts.Backup {
		if err := p.files.BackupFile(ctx, path); err != nil {
			return res, errors.Errorf("backing up %s: %w", path, err)
		}
	}

	if err := p.files.WriteFile(ctx, path, replaced.ModifiedContent); err != nil {
		return res, errors.Errorf("writing %s: %w", path, err)
	}

	res.Message = p.set.Message
	logger.Debug().
		Int("replacements", replaced.ReplacementCount).
		Str("status", res.Status.String()).
		Msg("patched file")

	return res, nil
}

// 🎯 PatchFile patches path with set using default options and the working directory
func PatchFile(ctx context.Context, path string, set *rules.Set) (*Result, error) {
	p, err := New(set, status.New(""), Options{})
	if err != nil {
		return nil, err
	}
	return p.Patch(ctx, path)
}
