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
package main

import (
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/commands"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
)

// newRootCmd builds the command tree; running the root alone applies the default rule set
func newRootCmd(root *opts.RootOpts) *cobra.Command {
	ao := &commands.ApplyOpts{}

	cmd := &cobra.Command{
		Use:   "patchrc [paths...]",
		Short: "Repair source files with ordered regex rule sets",
		Long: `patchrc reads a source file, applies an ordered set of regex substitutions
and writes the result back in place. Without arguments it repairs
src/screens/agent/AgentPropertyListScreen.tsx with the agent-screen rules.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.RunApply(cmd.Context(), root, ao, args)
		},
	}

	cmd.SetOut(root.Stdout)
	cmd.SetErr(root.Stderr)

	addRootFlags(cmd, root)
	commands.AddApplyFlags(cmd, ao)

	cmd.AddCommand(
		commands.NewApplyCmd(root),
		commands.NewRestoreCmd(root),
		commands.NewRulesCmd(),
		newVersionCmd(),
	)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, root *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&root.ConfigFile, "config", "c", "", "config file path (.yaml, .json or .hcl)")
	cmd.PersistentFlags().BoolVarP(&root.Debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&root.Verbose, "verbose", "v", false, "print per-file status lines")
}
