// Package filex implements the atomic file store every persisted record goes
// through.
//
// Writes go to a temporary sibling of the target and are renamed over it only
// after the content is fully written and synced, so readers observe either
// the old file or the new one. Reads are lenient: a missing or undecodable
// file is reported through a typed ReadResult and the caller falls back to
// its default value.
package filex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/spendkeeper/internal/common"
	"github.com/dmitrijs2005/spendkeeper/internal/logging"
)

// createTemp and rename are indirections used to simulate failures in tests.
var (
	createTemp = os.CreateTemp
	rename     = os.Rename
)

// staleTempAge is how old a temporary file must be before SweepTemp treats it
// as left over from an interrupted write.
const staleTempAge = time.Minute

var errNoPath = errors.New("empty path")

// Status classifies the outcome of a lenient read.
type Status int

const (
	StatusOK Status = iota
	StatusMissing
	StatusCorrupt
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusMissing:
		return "missing"
	case StatusCorrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

// ReadResult tells a caller whether the value it got back was read from disk
// or is its default. Err carries the cause for StatusCorrupt.
type ReadResult struct {
	Status Status
	Err    error
}

// OK reports whether the value was read from disk.
func (r ReadResult) OK() bool { return r.Status == StatusOK }

// UsedDefault reports whether the caller is looking at its default value.
func (r ReadResult) UsedDefault() bool { return r.Status != StatusOK }

// Missing is the result for records that do not exist at all.
func Missing() ReadResult { return ReadResult{Status: StatusMissing} }

// Store reads and writes files atomically and logs every failure.
type Store struct {
	logger logging.Logger
}

func NewStore(logger logging.Logger) *Store {
	return &Store{logger: logger}
}

// EnsureDir creates dir (and parents) if needed.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// WriteFile streams encode's output into a temporary sibling of path and
// renames it over path. On failure the temporary file is removed, path is
// left as it was, and the returned error wraps common.ErrWriteFailure.
func (s *Store) WriteFile(ctx context.Context, path string, encode func(w io.Writer) error) error {
	if err := ctx.Err(); err != nil {
		return s.writeFailed(ctx, path, err)
	}
	if path == "" {
		return s.writeFailed(ctx, path, errNoPath)
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return s.writeFailed(ctx, path, fmt.Errorf("%s is a directory", path))
	}

	f, err := createTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return s.writeFailed(ctx, path, err)
	}
	tmp := f.Name()

	if err := writeAndSync(f, encode); err != nil {
		_ = os.Remove(tmp)
		return s.writeFailed(ctx, path, err)
	}

	if err := rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return s.writeFailed(ctx, path, err)
	}

	if err := syncDir(filepath.Dir(path)); err != nil {
		s.logger.Warn(ctx, "directory sync failed", "path", path, "err", err)
	}

	s.logger.Debug(ctx, "file written", "path", path)
	return nil
}

// syncDir flushes dir so that a completed rename survives a crash.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	if err := d.Sync(); err != nil {
		_ = d.Close()
		return err
	}
	return d.Close()
}

// SweepTemp removes temporary files that interrupted writes left in dir and
// returns how many it removed. Recent ones are kept since a write may still
// be in progress.
func (s *Store) SweepTemp(ctx context.Context, dir string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.*.tmp"))
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-staleTempAge)
	removed := 0
	var errs []error
	for _, m := range matches {
		fi, err := os.Stat(m)
		if err != nil || fi.IsDir() || fi.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(m); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		s.logger.Info(ctx, "stale temporary file removed", "path", m)
		removed++
	}
	return removed, errors.Join(errs...)
}

func writeAndSync(f *os.File, encode func(w io.Writer) error) error {
	if err := encode(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (s *Store) writeFailed(ctx context.Context, path string, err error) error {
	s.logger.Error(ctx, "write failed", "path", path, "err", err)
	return fmt.Errorf("%w: %s: %w", common.ErrWriteFailure, path, err)
}

// WriteJSON atomically writes v as indented JSON.
func (s *Store) WriteJSON(ctx context.Context, path string, v any) error {
	return s.WriteFile(ctx, path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		return enc.Encode(v)
	})
}

// ReadFile opens path and hands it to decode. It never fails: a missing file
// yields StatusMissing, an open or decode error yields StatusCorrupt.
func (s *Store) ReadFile(ctx context.Context, path string, decode func(r io.Reader) error) ReadResult {
	if path == "" {
		return s.readFailed(ctx, path, errNoPath)
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug(ctx, "file missing, using default", "path", path)
			return Missing()
		}
		return s.readFailed(ctx, path, err)
	}
	defer f.Close()

	if err := decode(f); err != nil {
		return s.readFailed(ctx, path, err)
	}
	return ReadResult{Status: StatusOK}
}

func (s *Store) readFailed(ctx context.Context, path string, err error) ReadResult {
	s.logger.Warn(ctx, "file unreadable, using default", "path", path, "err", err)
	return ReadResult{Status: StatusCorrupt, Err: fmt.Errorf("%w: %s: %w", common.ErrCorruptData, path, err)}
}

// ReadJSON decodes path into v. v is only meaningful when the result is OK;
// callers should reset it to their default otherwise.
func (s *Store) ReadJSON(ctx context.Context, path string, v any) ReadResult {
	return s.ReadFile(ctx, path, func(r io.Reader) error {
		return json.NewDecoder(r).Decode(v)
	})
}

// Remove deletes path. A missing file is not an error.
func (s *Store) Remove(ctx context.Context, path string) error {
	err := os.Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	s.logger.Error(ctx, "remove failed", "path", path, "err", err)
	return fmt.Errorf("remove %s: %w", path, err)
}

// Exists reports whether path exists.
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
