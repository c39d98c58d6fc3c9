package commands

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/pkg/rules"
	"gitlab.com/tozd/go/errors"
)

// NewRulesCmd creates a command listing the built-in rule sets
func NewRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules [set]",
		Short: "List built-in rule sets, or the rules of one set",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				out string
				err error
			)
			if len(args) == 0 {
				out, err = renderSets(rules.All())
			} else {
				out, err = renderRules(args[0])
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
}

func renderSets(sets []*rules.Set) (string, error) {
	data := pterm.TableData{{"SET", "RULES", "TARGET", "DESCRIPTION"}}
	for _, s := range sets {
		name := s.Name
		if s.Name == rules.Default {
			name += " (default)"
		}
		data = append(data, []string{name, strconv.Itoa(len(s.Rules)), s.Target, s.Description})
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", errors.Errorf("rendering rule sets: %w", err)
	}
	return out, nil
}

func renderRules(name string) (string, error) {
	s, err := rules.Get(name)
	if err != nil {
		return "", err
	}

	data := pterm.TableData{{"#", "RULE", "PATTERN"}}
	for i, r := range s.Rules {
		data = append(data, []string{strconv.Itoa(i + 1), r.Name, r.Pattern})
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", errors.Errorf("rendering rules of %s: %w", s.Name, err)
	}
	return out, nil
}
