// Package operation runs patch operations over target files
package operation

import (
	"context"
	"sync"

	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/patch"
	"github.com/walteh/patchrc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Operation is a unit of work the runner executes
type Operation interface {
	// Name identifies the operation in errors
	Name() string
	// Execute runs the operation
	Execute(ctx context.Context) error
}

// 🔧 PatchOperation patches a single file and reports the outcome
type PatchOperation struct {
	patcher *patch.Patcher
	files   *status.Manager
	path    string

	mu     sync.Mutex
	result *patch.Result
}

// 🏭 NewPatchOperation creates an operation patching path; files receives the outcome
func NewPatchOperation(patcher *patch.Patcher, files *status.Manager, path string) *PatchOperation {
	return &PatchOperation{
		patcher: patcher,
		files:   files,
		path:    path,
	}
}

// Name implements Operation.Name
func (op *PatchOperation) Name() string {
	return "patch " + op.path
}

// Result returns the last patch result, nil before Execute or after a read failure
func (op *PatchOperation) Result() *patch.Result {
	op.mu.Lock()
	defer op.mu.Unlock()
	return op.result
}

// 🏃 Execute implements Operation.Execute. The log.Logger must be on ctx.
func (op *PatchOperation) Execute(ctx context.Context) error {
	logger := log.FromContext(ctx)

	res, err := op.patcher.Patch(ctx, op.path)

	op.mu.Lock()
	op.result = res
	op.mu.Unlock()

	info := status.FileInfo{Path: op.path, Status: status.StatusFailed, Error: err}
	if res != nil {
		info.Replacements = res.Replacement.ReplacementCount
		info.Size = int64(len(res.Replacement.ModifiedContent))
		info.Checksum = status.Checksum(res.Replacement.ModifiedContent)
		if err == nil {
			info.Status = res.Status
		}
		if res.Diff != "" {
			logger.Diff(res.Diff)
		}
		if err == nil {
			for _, name := range res.Unmatched {
				logger.Noticef("%s: rule %s matched nothing", op.path, name)
			}
		}
	}

	op.files.Track(ctx, info)
	logger.LogFileOperation(ctx, info)

	if err != nil {
		return errors.Errorf("patching %s: %w", op.path, err)
	}

	if op.patcher.Options().DryRun {
		logger.Infof("%s: %d replacements (dry run)", op.path, res.Replacement.ReplacementCount)
		return nil
	}

	logger.Confirm(res.Message)
	return nil
}
