package commands

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/patchrc/cmd/patchrc/opts"
	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/operation"
	"github.com/walteh/patchrc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// NewRestoreCmd creates a command undoing a patch from its .orig backup
func NewRestoreCmd(root *opts.RootOpts) *cobra.Command {
	ao := &ApplyOpts{}
	cmd := &cobra.Command{
		Use:   "restore [paths...]",
		Short: "Restore targets from the backups written by apply --backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunRestore(cmd.Context(), root, ao, args)
		},
	}
	cmd.Flags().StringVarP(&ao.Set, "set", "s", "", "rule set whose default target is restored")
	return cmd
}

// RunRestore restores the same targets apply would patch
func RunRestore(ctx context.Context, root *opts.RootOpts, ao *ApplyOpts, args []string) error {
	ctx, console, _ := newLoggers(ctx, root)

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
	ops := make([]operation.Operation, 0, len(targets))
	for _, target := range targets {
		ops = append(ops, operation.NewRestoreOperation(files, target))
	}

	console.Header("restoring " + set.Name)

	if err := operation.NewRunner(zerolog.Ctx(ctx), false).Run(ctx, ops...); err != nil {
		return errors.Errorf("restoring: %w", err)
	}
	return nil
}

func newLoggers(ctx context.Context, root *opts.RootOpts) (context.Context, *log.Logger, *zerolog.Logger) {
	level := zerolog.WarnLevel
	if root.Debug {
		level = zerolog.DebugLevel
	}
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: root.Stderr}).Level(level).With().Timestamp().Logger()
	ctx = zlog.WithContext(ctx)

	console := log.New(root.Stdout, zlog)
	console.SetVerbose(root.Verbose)
	return log.NewContext(ctx, console), console, &zlog
}
