package text

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegexpTextReplacer_ReplaceText(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		rules         []ReplacementRule
		want          string
		wantCount     int
		wantRuleCount []int
		wantError     string
		wantModified  bool
	}{
		{
			name:    "simple_replacement",
			content: "Hello World",
			rules: []ReplacementRule{
				{Name: "world", Pattern: `World`, Replacement: "Universe"},
			},
			want:          "Hello Universe",
			wantCount:     1,
			wantRuleCount: []int{1},
			wantModified:  true,
		},
		{
			name:    "every_non_overlapping_match",
			content: "aaaa",
			rules: []ReplacementRule{
				{Name: "pairs", Pattern: `aa`, Replacement: "b"},
			},
			want:          "bb",
			wantCount:     2,
			wantRuleCount: []int{2},
			wantModified:  true,
		},
		{
			name:    "later_rules_see_earlier_output",
			content: "one",
			rules: []ReplacementRule{
				{Name: "first", Pattern: `one`, Replacement: "two"},
				{Name: "second", Pattern: `two`, Replacement: "three"},
			},
			want:          "three",
			wantCount:     2,
			wantRuleCount: []int{1, 1},
			wantModified:  true,
		},
		{
			name:    "group_expansion",
			content: "key=value",
			rules: []ReplacementRule{
				{Name: "swap", Pattern: `(\w+)=(\w+)`, Replacement: "${2}=${1}"},
			},
			want:          "value=key",
			wantCount:     1,
			wantRuleCount: []int{1},
			wantModified:  true,
		},
		{
			name:    "whitespace_flexible_pattern",
			content: "const {\n  a,\n  b\n} = x;",
			rules: []ReplacementRule{
				{Name: "collapse", Pattern: `const \{\s*a,\s*b\s*\} = x;`, Replacement: "const { b } = x;"},
			},
			want:          "const { b } = x;",
			wantCount:     1,
			wantRuleCount: []int{1},
			wantModified:  true,
		},
		{
			name:    "literal_rule_ignores_metacharacters",
			content: "price: $1.00 (each)",
			rules: []ReplacementRule{
				{Name: "price", Pattern: "$1.00 (each)", Replacement: "$2.00", Literal: true},
			},
			want:          "price: $2.00",
			wantCount:     1,
			wantRuleCount: []int{1},
			wantModified:  true,
		},
		{
			name:    "no_match",
			content: "Hello World",
			rules: []ReplacementRule{
				{Name: "goodbye", Pattern: `Goodbye`, Replacement: "Hi"},
			},
			want:          "Hello World",
			wantCount:     0,
			wantRuleCount: []int{0},
			wantModified:  false,
		},
		{
			name:    "empty_content",
			content: "",
			rules: []ReplacementRule{
				{Name: "world", Pattern: `World`, Replacement: "Universe"},
			},
			want:          "",
			wantCount:     0,
			wantRuleCount: []int{0},
			wantModified:  false,
		},
		{
			name:          "empty_rules",
			content:       "Hello World",
			rules:         []ReplacementRule{},
			want:          "Hello World",
			wantCount:     0,
			wantRuleCount: []int{},
			wantModified:  false,
		},
		{
			name:    "match_with_identical_replacement",
			content: "same",
			rules: []ReplacementRule{
				{Name: "noop", Pattern: `same`, Replacement: "same"},
			},
			want:          "same",
			wantCount:     1,
			wantRuleCount: []int{1},
			wantModified:  false,
		},
		{
			name:    "invalid_pattern",
			content: "Hello",
			rules: []ReplacementRule{
				{Name: "broken", Pattern: `(`, Replacement: ""},
			},
			wantError: "rule 0 (broken): compiling pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			replacer := NewRegexpTextReplacer()
			result, err := replacer.ReplaceText(
				context.Background(),
				strings.NewReader(tt.content),
				tt.rules,
			)

			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, tt.content, string(result.OriginalContent))
			assert.Equal(t, tt.want, string(result.ModifiedContent))
			assert.Equal(t, tt.wantCount, result.ReplacementCount)
			assert.Equal(t, tt.wantModified, result.WasModified)

			counts := make([]int, 0, len(result.RuleResults))
			for _, rr := range result.RuleResults {
				counts = append(counts, rr.Count)
			}
			assert.Equal(t, tt.wantRuleCount, counts)
		})
	}
}

func TestRegexpTextReplacer_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRegexpTextReplacer().ReplaceText(ctx, strings.NewReader("abc"), []ReplacementRule{
		{Name: "a", Pattern: `a`, Replacement: "b"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReplacementResult_Unmatched(t *testing.T) {
	result, err := NewRegexpTextReplacer().ReplaceText(context.Background(), strings.NewReader("abc"), []ReplacementRule{
		{Name: "hit", Pattern: `a`, Replacement: "x"},
		{Name: "miss", Pattern: `z`, Replacement: "y"},
		{Name: "also_miss", Pattern: `q`, Replacement: "y"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"miss", "also_miss"}, result.Unmatched())
}

func TestRegexpTextReplacer_ValidateRules(t *testing.T) {
	tests := []struct {
		name      string
		rules     []ReplacementRule
		wantError string
	}{
		{
			name: "valid_rules",
			rules: []ReplacementRule{
				{Name: "a", Pattern: `foo\s+bar`, Replacement: "baz"},
				{Name: "b", Pattern: "(", Replacement: "", Literal: true},
			},
		},
		{
			name: "missing_pattern",
			rules: []ReplacementRule{
				{Name: "a", Pattern: `foo`},
				{Name: "b", Replacement: "bar"},
			},
			wantError: "rule 1: pattern is required",
		},
		{
			name: "invalid_regex",
			rules: []ReplacementRule{
				{Name: "bad", Pattern: `[a-`},
			},
			wantError: "rule 0 (bad): compiling pattern",
		},
		{
			name:  "empty_rules",
			rules: []ReplacementRule{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRegexpTextReplacer().ValidateRules(tt.rules)

			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}

			require.NoError(t, err)
		})
	}
}
