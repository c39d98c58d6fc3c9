package operation

import (
	"context"

	"github.com/walteh/patchrc/pkg/log"
	"github.com/walteh/patchrc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// ⏪ RestoreOperation puts a file's .orig backup back in place
type RestoreOperation struct {
	files *status.Manager
	path  string
}

// NewRestoreOperation creates an operation restoring path from its backup
func NewRestoreOperation(files *status.Manager, path string) *RestoreOperation {
	return &RestoreOperation{files: files, path: path}
}

// Name implements Operation.Name
func (op *RestoreOperation) Name() string {
	return "restore " + op.path
}

// Execute implements Operation.Execute
func (op *RestoreOperation) Execute(ctx context.Context) error {
	logger := log.FromContext(ctx)

	info := status.FileInfo{Path: op.path, Status: status.StatusModified}
	if err := op.files.RestoreFile(ctx, op.path); err != nil {
		info.Status = status.StatusFailed
		info.Error = err
		op.files.Track(ctx, info)
		logger.LogFileOperation(ctx, info)
		return errors.Errorf("restoring %s: %w", op.path, err)
	}

	op.files.Track(ctx, info)
	logger.LogFileOperation(ctx, info)
	logger.Confirm("Restored " + op.path)
	return nil
}
