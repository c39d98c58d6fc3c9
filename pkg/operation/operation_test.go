package operation_test

import (
	"bytes"
	"context"
	"os"
	"sync/atomic"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/patchrc/pkg/operation"
	"github.com/walteh/patchrc/pkg/patch"
	"github.com/walteh/patchrc/pkg/rules"
	"github.com/walteh/patchrc/pkg/status"
	"github.com/walteh/patchrc/pkg/testutils"
	"gitlab.com/tozd/go/errors"
)

// 🧪 createTestEnv creates a temp dir holding broken copies of the screen
func createTestEnv(t *testing.T, names ...string) (context.Context, *bytes.Buffer, *status.Manager, *zerolog.Logger) {
	t.Helper()

	dir := t.TempDir()
	for _, name := range names {
		testutils.WriteFixture(t, dir, testutils.Broken, name)
	}

	ctx, console, zlog := testutils.Context(t)
	return ctx, console, status.New(dir), zlog
}

func newPatcher(t *testing.T, files *status.Manager, set string, opts patch.Options) *patch.Patcher {
	t.Helper()
	s, err := rules.Get(set)
	require.NoError(t, err)
	p, err := patch.New(s, files, opts)
	require.NoError(t, err)
	return p
}

func TestPatchOperation_Execute(t *testing.T) {
	ctx, console, files, _ := createTestEnv(t, "screen.tsx")

	op := operation.NewPatchOperation(newPatcher(t, files, rules.AgentScreenComprehensive, patch.Options{}), files, "screen.tsx")
	assert.Equal(t, "patch screen.tsx", op.Name())
	assert.Nil(t, op.Result())

	require.NoError(t, op.Execute(ctx))
	assert.Equal(t, "Fixed AgentPropertyListScreen.tsx comprehensively\n", console.String())

	require.NotNil(t, op.Result())
	assert.Equal(t, status.StatusModified, op.Result().Status)

	info, err := files.GetFileInfo("screen.tsx")
	require.NoError(t, err)
	assert.Equal(t, status.StatusModified, info.Status)
	assert.Equal(t, 4, info.Replacements)
	assert.NotEmpty(t, info.Checksum)
}

func TestPatchOperation_ExecuteFailure(t *testing.T) {
	ctx, console, files, _ := createTestEnv(t)

	op := operation.NewPatchOperation(newPatcher(t, files, rules.AgentScreen, patch.Options{}), files, "missing.tsx")

	err := op.Execute(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "patching missing.tsx")
	assert.Empty(t, console.String(), "no confirmation on failure")

	info, err := files.GetFileInfo("missing.tsx")
	require.NoError(t, err)
	assert.Equal(t, status.StatusFailed, info.Status)
	assert.Error(t, info.Error)
}

func TestPatchOperation_DryRunDiff(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	ctx, console, files, _ := createTestEnv(t, "screen.tsx")

	op := operation.NewPatchOperation(newPatcher(t, files, rules.AgentScreen, patch.Options{DryRun: true, Diff: true}), files, "screen.tsx")
	require.NoError(t, op.Execute(ctx))

	out := console.String()
	assert.Contains(t, out, "--- a/screen.tsx")
	assert.Contains(t, out, "+const { width, height } = Dimensions.get('window');")
	assert.Contains(t, out, "screen.tsx: 3 replacements (dry run)")
	assert.NotContains(t, out, "Fixed AgentPropertyListScreen.tsx")
}

func TestRunner(t *testing.T) {
	for _, async := range []bool{false, true} {
		name := "sync"
		if async {
			name = "async"
		}
		t.Run(name, func(t *testing.T) {
			ctx, console, files, zlog := createTestEnv(t, "a.tsx", "b.tsx", "c.tsx")
			p := newPatcher(t, files, rules.AgentScreen, patch.Options{})

			var ops []operation.Operation
			for _, f := range []string{"a.tsx", "b.tsx", "c.tsx"} {
				ops = append(ops, operation.NewPatchOperation(p, files, f))
			}

			require.NoError(t, operation.NewRunner(zlog, async).Run(ctx, ops...))

			assert.Equal(t,
				"Fixed AgentPropertyListScreen.tsx\nFixed AgentPropertyListScreen.tsx\nFixed AgentPropertyListScreen.tsx\n",
				console.String())

			tracked := files.ListFiles()
			require.Len(t, tracked, 3)
			for _, info := range tracked {
				assert.Equal(t, status.StatusModified, info.Status, info.Path)
			}
		})
	}
}

type funcOperation struct {
	name string
	fn   func(ctx context.Context) error
}

func (f *funcOperation) Name() string                      { return f.name }
func (f *funcOperation) Execute(ctx context.Context) error { return f.fn(ctx) }

func TestRunner_SyncStopsAtFirstError(t *testing.T) {
	zlog := zerolog.New(zerolog.NewTestWriter(t))
	var ran atomic.Int32
	boom := errors.New("boom")

	err := operation.NewRunner(&zlog, false).Run(context.Background(),
		&funcOperation{name: "first", fn: func(ctx context.Context) error { ran.Add(1); return boom }},
		&funcOperation{name: "second", fn: func(ctx context.Context) error { ran.Add(1); return nil }},
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Contains(t, err.Error(), "executing first")
	assert.Equal(t, int32(1), ran.Load())
}

func TestRunner_AsyncPropagatesError(t *testing.T) {
	zlog := zerolog.New(zerolog.NewTestWriter(t))
	boom := errors.New("boom")

	err := operation.NewRunner(&zlog, true).Run(context.Background(),
		&funcOperation{name: "ok", fn: func(ctx context.Context) error { return nil }},
		&funcOperation{name: "bad", fn: func(ctx context.Context) error { return boom }},
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

func TestRunner_Cancelled(t *testing.T) {
	zlog := zerolog.New(zerolog.NewTestWriter(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := operation.NewRunner(&zlog, false).Run(ctx,
		&funcOperation{name: "never", fn: func(ctx context.Context) error { return nil }},
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRestoreOperation(t *testing.T) {
	ctx, console, files, _ := createTestEnv(t, "screen.tsx")

	patchOp := operation.NewPatchOperation(newPatcher(t, files, rules.AgentScreen, patch.Options{Backup: true}), files, "screen.tsx")
	require.NoError(t, patchOp.Execute(ctx))
	console.Reset()

	op := operation.NewRestoreOperation(files, "screen.tsx")
	assert.Equal(t, "restore screen.tsx", op.Name())
	require.NoError(t, op.Execute(ctx))
	assert.Equal(t, "Restored screen.tsx\n", console.String())

	got, err := os.ReadFile(files.AbsPath("screen.tsx"))
	require.NoError(t, err)
	assert.Equal(t, testutils.Fixture(t, testutils.Broken), got)

	_, err = os.Stat(files.AbsPath("screen.tsx") + status.BackupSuffix)
	assert.True(t, os.IsNotExist(err), "backup removed after restore")

	err = op.Execute(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	info, err := files.GetFileInfo("screen.tsx")
	require.NoError(t, err)
	assert.Equal(t, status.StatusFailed, info.Status)
}
