package commands

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/config"
	"github.com/walteh/patchrc/pkg/operation"
	"github.com/walteh/patchrc/pkg/patch"
	"github.com/walteh/patchrc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// ApplyOpts holds the flags of the apply command
type ApplyOpts struct {
	Set          string
	Strict       bool
	CheckBalance bool
	Backup       bool
	DryRun       bool
	Diff         bool
	Async        bool
}

// AddApplyFlags registers the apply flags on cmd
func AddApplyFlags(cmd *cobra.Command, ao *ApplyOpts) {
	cmd.Flags().StringVarP(&ao.Set, "set", "s", "", "rule set to apply (default agent-screen)")
	cmd.Flags().BoolVar(&ao.Strict, "strict", false, "fail without writing when a rule matches nothing")
	cmd.Flags().BoolVar(&ao.CheckBalance, "check-balance", false, "fail without writing when the result has unbalanced brackets")
	cmd.Flags().BoolVar(&ao.Backup, "backup", false, "keep a copy of each original file with a .orig suffix")
	cmd.Flags().BoolVarP(&ao.DryRun, "dry-run", "n", false, "report what would change without writing")
	cmd.Flags().BoolVar(&ao.Diff, "diff", false, "print a diff of each change")
	cmd.Flags().BoolVar(&ao.Async, "async", false, "patch targets concurrently")
}

// NewApplyCmd creates a new apply command
func NewApplyCmd(root *opts.RootOpts) *cobra.Command {
	ao := &ApplyOpts{}
	cmd := &cobra.Command{
		Use:   "apply [paths...]",
		Short: "Apply a rule set to target files",
		Long: `Apply reads each target fully, runs every rule of the rule set over it in
order and writes the result back in place. Rules that match nothing are skipped
unless --strict is set. Without paths the rule set's default target is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunApply(cmd.Context(), root, ao, args)
		},
	}
	AddApplyFlags(cmd, ao)
	return cmd
}

// RunApply patches the targets named by args, the config file, or the rule set default
func RunApply(ctx context.Context, root *opts.RootOpts, ao *ApplyOpts, args []string) error {
	ctx, console, zlog := newLoggers(ctx, root)

	cfg, err := buildConfig(ctx, root, ao, args)
	if err != nil {
		return err
	}

	set, err := cfg.ResolveRuleSet()
	if err != nil {
		return errors.Errorf("resolving rule set: %w", err)
	}

	targets, err := cfg.ResolveTargets(ctx, set)
	if err != nil {
		return errors.Errorf("resolving targets: %w", err)
	}

	files := status.New(cfg.Dir())
	patcher, err := patch.New(set, files, patch.Options{
		Strict:       cfg.Strict,
		CheckBalance: cfg.CheckBalance,
		Backup:       cfg.Backup,
		DryRun:       ao.DryRun,
		Diff:         ao.Diff,
	})
	if err != nil {
		return errors.Errorf("creating patcher: %w", err)
	}

	console.Header("applying " + set.Name)

	ops := make([]operation.Operation, 0, len(targets))
	for _, target := range targets {
		ops = append(ops, operation.NewPatchOperation(patcher, files, target))
	}

	if err := operation.NewRunner(zlog, ao.Async).Run(ctx, ops...); err != nil {
		return errors.Errorf("applying %s: %w", set.Name, err)
	}

	return nil
}

// buildConfig merges the optional config file with the command line
func buildConfig(ctx context.Context, root *opts.RootOpts, ao *ApplyOpts, args []string) (*config.Config, error) {
	cfg := &config.Config{}
	if root.ConfigFile != "" {
		loaded, err := config.LoadConfig(ctx, root.ConfigFile)
		if err != nil {
			return nil, errors.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	if ao.Set != "" {
		cfg.RuleSet = ao.Set
		cfg.Rules = nil
	}

	if len(args) > 0 {
		cfg.Targets = nil
		for _, arg := range args {
			abs, err := filepath.Abs(arg)
			if err != nil {
				return nil, errors.Errorf("resolving %s: %w", arg, err)
			}
			cfg.Targets = append(cfg.Targets, abs)
		}
	}

	cfg.Strict = cfg.Strict || ao.Strict
	cfg.CheckBalance = cfg.CheckBalance || ao.CheckBalance
	cfg.Backup = cfg.Backup || ao.Backup

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}
