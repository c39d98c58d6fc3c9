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

package status

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// BackupSuffix is appended to a path to name its backup copy
const BackupSuffix = ".orig"

// 📊 FileStatus represents what happened to a patched file
type FileStatus int

const (
	StatusUnknown   FileStatus = iota
	StatusModified             // Content changed and was written
	StatusUnchanged            // Content matched and was written back as is
	StatusSkipped              // Nothing was written (dry run)
	StatusFailed               // Patching failed
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusModified:
		return "modified"
	case StatusUnchanged:
		return "unchanged"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 📄 FileInfo contains metadata about a patched file
type FileInfo struct {
	Path         string     // Path as given to the manager
	Status       FileStatus // Outcome
	Size         int64      // Size after patching
	Checksum     string     // SHA-256 of the content after patching
	Replacements int        // Matches replaced
	Error        error      // Failure, if any
}

// 💾 Manager reads and writes target files and tracks what happened to them.
// Relative paths resolve against baseDir; absolute paths are used as is.
type Manager struct {
	baseDir string

	mu    sync.RWMutex
	files map[string]FileInfo
}

// 🏭 New creates a new status manager; an empty baseDir means the working directory
func New(baseDir string) *Manager {
	if baseDir != "" {
		baseDir = filepath.Clean(baseDir)
	}
	return &Manager{
		baseDir: baseDir,
		files:   make(map[string]FileInfo),
	}
}

// AbsPath returns the filesystem path used for path
func (m *Manager) AbsPath(path string) string {
	if filepath.IsAbs(path) || m.baseDir == "" {
		return path
	}
	return filepath.Join(m.baseDir, path)
}

// Checksum generates a SHA-256 hash of the content
func Checksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

// ReadFile reads the whole file
func (m *Manager) ReadFile(ctx context.Context, path string) ([]byte, error) {
	content, err := os.ReadFile(m.AbsPath(path))
	if err != nil {
		return nil, errors.Errorf("reading file: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("path", path).Int("bytes", len(content)).Msg("read file")
	return content, nil
}

// WriteFile overwrites the file in place. An existing file keeps its mode.
func (m *Manager) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := os.WriteFile(m.AbsPath(path), content, 0o644); err != nil {
		return errors.Errorf("writing file: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("path", path).Int("bytes", len(content)).Msg("wrote file")
	return nil
}

// BackupFile copies the file to path+BackupSuffix, replacing an older backup
func (m *Manager) BackupFile(ctx context.Context, path string) error {
	absPath := m.AbsPath(path)
	if err := copyFile(absPath, absPath+BackupSuffix); err != nil {
		return errors.Errorf("creating backup: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("path", path).Str("backup", absPath+BackupSuffix).Msg("backed up file")
	return nil
}

// RestoreFile copies the backup over the file and removes the backup
func (m *Manager) RestoreFile(ctx context.Context, path string) error {
	absPath := m.AbsPath(path)
	backupPath := absPath + BackupSuffix

	if err := copyFile(backupPath, absPath); err != nil {
		return errors.Errorf("restoring from backup: %w", err)
	}
	if err := os.Remove(backupPath); err != nil {
		return errors.Errorf("removing backup: %w", err)
	}
	return nil
}

// Track records the outcome for a file, replacing any earlier record
func (m *Manager) Track(ctx context.Context, info FileInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.files[info.Path] = info

	ev := zerolog.Ctx(ctx).Debug()
	if info.Error != nil {
		ev = zerolog.Ctx(ctx).Warn().Err(info.Error)
	}
	ev.Str("path", info.Path).
		Str("status", info.Status.String()).
		Int("replacements", info.Replacements).
		Str("checksum", info.Checksum).
		Msg("tracked file")
}

// GetFileInfo returns the record for a tracked file
func (m *Manager) GetFileInfo(path string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.files[path]
	if !ok {
		return FileInfo{}, errors.Errorf("file not tracked: %s", path)
	}
	return info, nil
}

// ListFiles returns every tracked file sorted by path
func (m *Manager) ListFiles() []FileInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]FileInfo, 0, len(m.files))
	for _, info := range m.files {
		files = append(files, info)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files
}

func copyFile(src, dst string) error {
	source, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source file: %w", err)
	}
	defer source.Close()

	stat, err := source.Stat()
	if err != nil {
		return errors.Errorf("checking source file: %w", err)
	}

	destination, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, stat.Mode().Perm())
	if err != nil {
		return errors.Errorf("creating destination file: %w", err)
	}

	return copyAndClose(destination, source)
}

// copyAndClose copies src into dst and closes dst; a failed close is a failed copy
func copyAndClose(dst io.WriteCloser, src io.Reader) error {
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return errors.Errorf("copying file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return errors.Errorf("closing destination file: %w", err)
	}
	return nil
}
