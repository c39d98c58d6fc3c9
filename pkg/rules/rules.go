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

// Package rules holds the built-in rule sets that repair the agent property list
// screen after the subscriptionValidity rename collided with existing bindings.
package rules

import (
	"sort"
	"strings"

	"github.com/walteh/patchrc/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🎯 DefaultTarget is the file the built-in rule sets were written for
const DefaultTarget = "src/screens/agent/AgentPropertyListScreen.tsx"

const (
	AgentScreen              = "agent-screen"
	AgentScreenComprehensive = "agent-screen-comprehensive"

	// Default is used when no rule set is named
	Default = AgentScreen
)

// ErrUnknownSet is returned by Get for names that are not registered
var ErrUnknownSet = errors.Base("unknown rule set")

// 📚 Set is a named, ordered list of rules with the file it targets
type Set struct {
	Name        string
	Description string
	// Target is the path patched when no target is given
	Target string
	// Message is printed after every successful write
	Message string
	Rules   []text.ReplacementRule
}

// space matches the same characters as \s in a Python str pattern: ASCII
// whitespace plus \v, the information separators, NEL and Unicode separators.
const space = `[\s\v\x{1c}-\x{1f}\x{85}\p{Z}]`

// spaced widens every \s in pattern to space
func spaced(pattern string) string {
	return strings.ReplaceAll(pattern, `\s`, space)
}

var (
	// DimensionsDestructuring drops the stray flag from the window dimensions destructuring
	DimensionsDestructuring = text.ReplacementRule{
		Name:        "dimensions-destructuring",
		Pattern:     spaced(`const \{\s*subscriptionValidity,\s*width,\s*height\s*\} = Dimensions\.get\('window'\);`),
		Replacement: `const { width, height } = Dimensions.get('window');`,
	}

	// FetchDestructuring drops the stray flag from the supabase query result destructuring
	FetchDestructuring = text.ReplacementRule{
		Name:        "fetch-destructuring",
		Pattern:     spaced(`const \{\s*subscriptionValidity,\s*data,\s*error\s*\} = await supabase`),
		Replacement: `const { data, error } = await supabase`,
	}

	// ConditionalRender collapses the concatenated conditional into one block opening
	ConditionalRender = text.ReplacementRule{
		Name:        "conditional-render",
		Pattern:     `subscriptionValidity \{subscriptionStatus &&\{subscriptionStatus && \(`,
		Replacement: `{subscriptionValidity && (`,
	}

	// ProfileLoaderTerminator closes loadUserProfile before loadProperties starts
	ProfileLoaderTerminator = text.ReplacementRule{
		Name:        "profile-loader-terminator",
		Pattern:     spaced(`(\s+\} catch \(error\) \{\s+console\.error\('Error loading user profile:', error\);\s+\}\s+)(const loadProperties = async \(\) => \{)`),
		Replacement: "${1}  };\n\n  ${2}",
	}
)

var registry = map[string]*Set{
	AgentScreen: {
		Name:        AgentScreen,
		Description: "repair destructuring and conditional rendering",
		Target:      DefaultTarget,
		Message:     "Fixed AgentPropertyListScreen.tsx",
		Rules: []text.ReplacementRule{
			DimensionsDestructuring,
			FetchDestructuring,
			ConditionalRender,
		},
	},
	AgentScreenComprehensive: {
		Name:        AgentScreenComprehensive,
		Description: "agent-screen plus the missing loadUserProfile terminator",
		Target:      DefaultTarget,
		Message:     "Fixed AgentPropertyListScreen.tsx comprehensively",
		Rules: []text.ReplacementRule{
			DimensionsDestructuring,
			FetchDestructuring,
			ConditionalRender,
			ProfileLoaderTerminator,
		},
	},
}

// Get returns a copy of the named rule set
func Get(name string) (*Set, error) {
	if name == "" {
		name = Default
	}
	s, ok := registry[name]
	if !ok {
		return nil, errors.Errorf("%w: %q", ErrUnknownSet, name)
	}
	return s.clone(), nil
}

// Names returns the registered rule set names in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns copies of every registered rule set, sorted by name
func All() []*Set {
	sets := make([]*Set, 0, len(registry))
	for _, name := range Names() {
		sets = append(sets, registry[name].clone())
	}
	return sets
}

func (s *Set) clone() *Set {
	c := *s
	c.Rules = append([]text.ReplacementRule(nil), s.Rules...)
	return &c
}
