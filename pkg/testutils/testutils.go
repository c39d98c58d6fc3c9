// Package testutils holds shared fixtures for tests that patch the agent screen
package testutils

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/walteh/patchrc/pkg/log"
)

const (
	Broken             = "broken.tsx"
	Fixed              = "fixed.tsx"
	FixedComprehensive = "fixed_comprehensive.tsx"
)

// FixturePath returns the absolute path of a file in pkg/patch/testdata
func FixturePath(name string) string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "patch", "testdata", name)
}

// Fixture reads a fixture or fails the test
func Fixture(t testing.TB, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(FixturePath(name))
	require.NoError(t, err, "reading fixture %s", name)
	return data
}

// WriteFixture copies fixture into dir as name and returns the new path
func WriteFixture(t testing.TB, dir, fixture, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, Fixture(t, fixture), 0o644))
	return path
}

// Context returns a context carrying a test zerolog logger and a log.Logger
// whose console output lands in the returned buffer
func Context(t testing.TB) (context.Context, *bytes.Buffer, *zerolog.Logger) {
	t.Helper()
	zlog := zerolog.New(zerolog.NewTestWriter(t)).With().Timestamp().Logger()
	console := &bytes.Buffer{}
	ctx := zlog.WithContext(context.Background())
	ctx = log.NewContext(ctx, log.New(console, zlog))
	return ctx, console, &zlog
}
