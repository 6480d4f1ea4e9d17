package gen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/sync/errgroup"
)

// FileWriter writes generated files in parallel.
type FileWriter struct {
	workers int

	// Metrics for performance monitoring
	mu      sync.Mutex
	metrics *WriterMetrics
}

// WriterMetrics tracks the written output.
type WriterMetrics struct {
	FilesWritten   int
	FilesUnchanged int
	TotalBytes     int64
}

// NewFileWriter creates a new file writer.
func NewFileWriter() *FileWriter {
	return &FileWriter{
		workers: runtime.GOMAXPROCS(0),
		metrics: &WriterMetrics{},
	}
}

// WithWorkers sets the number of parallel workers.
func (w *FileWriter) WithWorkers(n int) *FileWriter {
	if n > 0 {
		w.workers = n
	}
	return w
}

// Metrics returns the write metrics.
func (w *FileWriter) Metrics() *WriterMetrics {
	return w.metrics
}

// WriteAll writes all files, creating missing directories. Files whose
// contents did not change are left untouched.
func (w *FileWriter) WriteAll(ctx context.Context, files []*File) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)
	for _, f := range files {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return w.writeFile(f)
			}
		})
	}
	return eg.Wait()
}

func (w *FileWriter) writeFile(f *File) error {
	if f.Path == "" {
		return NewGenerationError("write", "", fmt.Sprintf("no output path for %s", f.Where), nil)
	}
	if current, err := os.ReadFile(f.Path); err == nil && bytes.Equal(current, f.Content) {
		w.mu.Lock()
		w.metrics.FilesUnchanged++
		w.mu.Unlock()
		return nil
	}
	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return NewGenerationError("write", f.Path, "create directory", err)
		}
	}
	if err := os.WriteFile(f.Path, f.Content, 0o644); err != nil {
		return NewGenerationError("write", f.Path, "write file", err)
	}

	w.mu.Lock()
	w.metrics.FilesWritten++
	w.metrics.TotalBytes += int64(len(f.Content))
	w.mu.Unlock()
	return nil
}

// WriteFiles writes files with a default FileWriter.
func WriteFiles(ctx context.Context, files []*File) error {
	return NewFileWriter().WriteAll(ctx, files)
}

// Diff returns the unified diff between the file on disk and the generated
// contents. A missing file compares as empty. The result is empty if both
// are equal.
func (f *File) Diff() (string, error) {
	current, err := os.ReadFile(f.Path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", NewGenerationError("check", f.Path, "read file", err)
	}
	if bytes.Equal(current, f.Content) {
		return "", nil
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(current)),
		B:        difflib.SplitLines(string(f.Content)),
		FromFile: f.Path,
		ToFile:   f.Path + " (generated)",
		Context:  3,
	})
	if err != nil {
		return "", NewGenerationError("check", f.Path, "diff", err)
	}
	return diff, nil
}

// ErrOutdated is returned by CheckFiles when a file differs from its
// generated contents.
var ErrOutdated = errors.New("protobuilder: generated file is out of date")

// CheckFiles compares every file with its generated contents and returns
// the concatenated diffs. The error wraps ErrOutdated if any file differs.
func CheckFiles(files []*File) (string, error) {
	var (
		b        strings.Builder
		outdated []string
	)
	for _, f := range files {
		diff, err := f.Diff()
		if err != nil {
			return "", err
		}
		if diff != "" {
			outdated = append(outdated, f.Path)
			b.WriteString(diff)
		}
	}
	if len(outdated) > 0 {
		return b.String(), fmt.Errorf("%w: %s", ErrOutdated, strings.Join(outdated, ", "))
	}
	return "", nil
}
