// Package staging implements the staging buffer that holds extracted cases
// between navigation and persistence.
//
// FileBuffer keeps the batch as one indented JSON array on disk. Every
// append rewrites the whole file with the temp-file, fsync, rename pattern,
// so a crash leaves either the previous list or the new one.
package staging

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/docket/pkg/types"
)

// DefaultFileName is the staging file name used under the data directory.
const DefaultFileName = "expedientes.json"

// FileBuffer is a types.StagingBuffer backed by a JSON file.
// It is not safe for concurrent use by several processes.
type FileBuffer struct {
	path   string
	logger *slog.Logger
}

var _ types.StagingBuffer = (*FileBuffer)(nil)

// NewFileBuffer returns a buffer stored at path. The file and its directory
// are created on the first Append.
func NewFileBuffer(path string, logger *slog.Logger) *FileBuffer {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileBuffer{path: path, logger: logger}
}

// Path returns the staging file location.
func (b *FileBuffer) Path() string {
	return b.path
}

// Append loads the staged list, adds c and rewrites the file. A missing or
// unparsable file is treated as an empty list; its content is replaced.
func (b *FileBuffer) Append(c types.Case) error {
	batch, err := b.load()
	if err != nil {
		b.logger.Warn("staging file unreadable, starting a new batch", "path", b.path, "err", err)
		batch = nil
	}
	batch = append(batch, c)
	if err := b.write(batch); err != nil {
		return fmt.Errorf("staging case %q: %w", c.Number, err)
	}
	return nil
}

// ReadAll returns the staged batch. A missing file is an empty batch;
// unparsable content is an error so that a corrupt buffer is never mistaken
// for an empty one.
func (b *FileBuffer) ReadAll() ([]types.Case, error) {
	batch, err := b.load()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", b.path, err)
	}
	return batch, nil
}

// Clear deletes the staging file. Failures are logged and swallowed: a
// leftover file is recovered by the next commit run.
func (b *FileBuffer) Clear() error {
	err := os.Remove(b.path)
	switch {
	case err == nil:
		b.logger.Info("staging file removed", "path", b.path)
	case errors.Is(err, fs.ErrNotExist):
	default:
		b.logger.Warn("could not remove staging file", "path", b.path, "err", err)
	}
	return nil
}

// load reads the staged list. A missing or blank file yields an empty list.
func (b *FileBuffer) load() ([]types.Case, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var batch []types.Case
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("parsing staged batch: %w", err)
	}
	return batch, nil
}

// write atomically replaces the staging file with batch.
func (b *FileBuffer) write(batch []types.Case) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(batch); err != nil {
		return fmt.Errorf("encoding batch: %w", err)
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".staging-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing batch: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
