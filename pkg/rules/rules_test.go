package rules

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/patchrc/pkg/text"
)

func apply(t *testing.T, rule text.ReplacementRule, content string) (string, int) {
	t.Helper()
	result, err := text.NewRegexpTextReplacer().ReplaceText(context.Background(), strings.NewReader(content), []text.ReplacementRule{rule})
	require.NoError(t, err)
	return string(result.ModifiedContent), result.ReplacementCount
}

func TestRules(t *testing.T) {
	tests := []struct {
		name    string
		rule    text.ReplacementRule
		content string
		want    string
	}{
		{
			name:    "dimensions_destructuring",
			rule:    DimensionsDestructuring,
			content: "const { subscriptionValidity, width, height } = Dimensions.get('window');\n",
			want:    "const { width, height } = Dimensions.get('window');\n",
		},
		{
			name:    "dimensions_destructuring_multiline",
			rule:    DimensionsDestructuring,
			content: "const {\n  subscriptionValidity,\n  width,\n  height\n} = Dimensions.get('window');",
			want:    "const { width, height } = Dimensions.get('window');",
		},
		{
			name:    "dimensions_destructuring_unicode_space",
			rule:    DimensionsDestructuring,
			content: "const {\u00a0subscriptionValidity,\vwidth,\u2003height\u3000} = Dimensions.get('window');",
			want:    "const { width, height } = Dimensions.get('window');",
		},
		{
			name:    "fetch_destructuring_nbsp",
			rule:    FetchDestructuring,
			content: "const {\u00a0subscriptionValidity,\u0085data,\u2028error\u00a0} = await supabase",
			want:    "const { data, error } = await supabase",
		},
		{
			name:    "fetch_destructuring",
			rule:    FetchDestructuring,
			content: "    const { subscriptionValidity, data, error } = await supabase\n      .from('properties')",
			want:    "    const { data, error } = await supabase\n      .from('properties')",
		},
		{
			name:    "conditional_render",
			rule:    ConditionalRender,
			content: "      subscriptionValidity {subscriptionStatus &&{subscriptionStatus && (\n        <Text>ok</Text>\n      )}",
			want:    "      {subscriptionValidity && (\n        <Text>ok</Text>\n      )}",
		},
		{
			name: "profile_loader_terminator",
			rule: ProfileLoaderTerminator,
			content: "    } catch (error) {\n" +
				"      console.error('Error loading user profile:', error);\n" +
				"    }\n" +
				"  const loadProperties = async () => {\n",
			want: "    } catch (error) {\n" +
				"      console.error('Error loading user profile:', error);\n" +
				"    }\n" +
				"    };\n" +
				"\n" +
				"  const loadProperties = async () => {\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, count := apply(t, tt.rule, tt.content)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, count)

			again, count := apply(t, tt.rule, got)
			assert.Equal(t, got, again, "rule should be idempotent")
			assert.Zero(t, count)
		})
	}
}

func TestProfileLoaderTerminator_Balances(t *testing.T) {
	content := "const loadUserProfile = async () => {\n" +
		"    try {\n" +
		"      load();\n" +
		"    } catch (error) {\n" +
		"      console.error('Error loading user profile:', error);\n" +
		"    }\n" +
		"  const loadProperties = async () => {\n" +
		"    load();\n" +
		"  };\n"

	require.Error(t, text.CheckBalance(content))

	got, _ := apply(t, ProfileLoaderTerminator, content)
	require.NoError(t, text.CheckBalance(got))
}

func TestGet(t *testing.T) {
	tests := []struct {
		name      string
		set       string
		wantName  string
		wantRules int
		wantMsg   string
		wantError bool
	}{
		{name: "default", set: "", wantName: AgentScreen, wantRules: 3, wantMsg: "Fixed AgentPropertyListScreen.tsx"},
		{name: "agent_screen", set: AgentScreen, wantName: AgentScreen, wantRules: 3, wantMsg: "Fixed AgentPropertyListScreen.tsx"},
		{name: "comprehensive", set: AgentScreenComprehensive, wantName: AgentScreenComprehensive, wantRules: 4, wantMsg: "Fixed AgentPropertyListScreen.tsx comprehensively"},
		{name: "unknown", set: "nope", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Get(tt.set)
			if tt.wantError {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnknownSet)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, s.Name)
			assert.Len(t, s.Rules, tt.wantRules)
			assert.Equal(t, tt.wantMsg, s.Message)
			assert.Equal(t, DefaultTarget, s.Target)
		})
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	s, err := Get(AgentScreen)
	require.NoError(t, err)
	s.Rules[0].Pattern = "changed"
	s.Message = "changed"

	fresh, err := Get(AgentScreen)
	require.NoError(t, err)
	assert.Equal(t, DimensionsDestructuring.Pattern, fresh.Rules[0].Pattern)
	assert.Equal(t, "Fixed AgentPropertyListScreen.tsx", fresh.Message)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{AgentScreen, AgentScreenComprehensive}, Names())
	assert.Len(t, All(), 2)
}

func TestRuleSets_Validate(t *testing.T) {
	for _, s := range All() {
		assert.NoError(t, text.NewRegexpTextReplacer().ValidateRules(s.Rules), s.Name)
	}
}
