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

package text

import (
	"context"
	"io"
)

// 🔄 ReplacementRule defines a single substitution applied to the whole content
type ReplacementRule struct {
	// Name identifies the rule in results and errors
	Name string

	// Pattern is a regular expression, or plain text when Literal is set
	Pattern string

	// Replacement is the text inserted for every match.
	// Regex rules may reference groups with $1 or ${1}.
	Replacement string

	// Literal disables regex matching and group expansion
	Literal bool
}

// 📊 RuleResult records how many matches a single rule replaced
type RuleResult struct {
	Name  string
	Count int
}

// 📦 ReplacementResult contains the results of a text replacement operation
type ReplacementResult struct {
	// WasModified indicates the final content differs from the original
	WasModified bool

	// ReplacementCount is the number of matches replaced across all rules
	ReplacementCount int

	// RuleResults holds one entry per rule, in rule order
	RuleResults []RuleResult

	// OriginalContent is the content before replacements
	OriginalContent []byte

	// ModifiedContent is the content after replacements
	ModifiedContent []byte
}

// Unmatched returns the names of the rules that replaced nothing
func (r *ReplacementResult) Unmatched() []string {
	var names []string
	for _, rr := range r.RuleResults {
		if rr.Count == 0 {
			names = append(names, rr.Name)
		}
	}
	return names
}

// 🎯 TextReplacer defines the interface for text replacement operations
type TextReplacer interface {
	// ReplaceText applies the rules in order, each one over the output of the previous
	ReplaceText(ctx context.Context, content io.Reader, rules []ReplacementRule) (*ReplacementResult, error)

	// ValidateRules checks that all rules are usable
	ValidateRules(rules []ReplacementRule) error
}
