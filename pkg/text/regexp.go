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
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// RegexpTextReplacer implements TextReplacer with regular expressions
type RegexpTextReplacer struct{}

// NewRegexpTextReplacer creates a new RegexpTextReplacer
func NewRegexpTextReplacer() *RegexpTextReplacer {
	return &RegexpTextReplacer{}
}

// compiledRule pairs a rule with its compiled pattern; re is nil for literal rules
type compiledRule struct {
	rule ReplacementRule
	re   *regexp.Regexp
}

func (c compiledRule) apply(content string) (string, int) {
	if c.rule.Pattern == "" {
		return content, 0
	}
	if c.re == nil {
		count := strings.Count(content, c.rule.Pattern)
		if count == 0 {
			return content, 0
		}
		return strings.ReplaceAll(content, c.rule.Pattern, c.rule.Replacement), count
	}
	count := len(c.re.FindAllStringIndex(content, -1))
	if count == 0 {
		return content, 0
	}
	return c.re.ReplaceAllString(content, c.rule.Replacement), count
}

func compileRules(rules []ReplacementRule) ([]compiledRule, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for i, rule := range rules {
		c := compiledRule{rule: rule}
		if !rule.Literal && rule.Pattern != "" {
			re, err := regexp.Compile(rule.Pattern)
			if err != nil {
				return nil, errors.Errorf("rule %d (%s): compiling pattern: %w", i, rule.Name, err)
			}
			c.re = re
		}
		compiled = append(compiled, c)
	}
	return compiled, nil
}

// ReplaceText implements TextReplacer.ReplaceText
func (r *RegexpTextReplacer) ReplaceText(ctx context.Context, content io.Reader, rules []ReplacementRule) (*ReplacementResult, error) {
	originalContent, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.Errorf("reading content: %w", err)
	}

	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}

	result := &ReplacementResult{
		OriginalContent: originalContent,
		RuleResults:     make([]RuleResult, 0, len(compiled)),
	}

	original := string(originalContent)
	current := original
	for _, c := range compiled {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("replacing text: %w", err)
		}

		var count int
		current, count = c.apply(current)

		result.ReplacementCount += count
		result.RuleResults = append(result.RuleResults, RuleResult{Name: c.rule.Name, Count: count})
	}

	result.ModifiedContent = []byte(current)
	result.WasModified = current != original
	return result, nil
}

// ValidateRules implements TextReplacer.ValidateRules
func (r *RegexpTextReplacer) ValidateRules(rules []ReplacementRule) error {
	for i, rule := range rules {
		if rule.Pattern == "" {
			return errors.Errorf("rule %d: pattern is required", i)
		}
	}
	if _, err := compileRules(rules); err != nil {
		return err
	}
	return nil
}
