// Package load compiles .proto files and converts their descriptors into
// the schema model used by the generator.
package load

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bufbuild/protocompile"

	"github.com/syssam/protobuilder"
	"github.com/syssam/protobuilder/internal/logx"
	"github.com/syssam/protobuilder/schema"
)

// Loader compiles .proto files found in its import paths.
type Loader struct {
	// ImportPaths are the directories searched for files and their
	// imports. Empty means the current directory.
	ImportPaths []string
	Logger      *slog.Logger
}

// Result holds the converted files of a Load call.
type Result struct {
	// Files are the requested files, in request order.
	Files    []*schema.File
	files    map[string]*schema.File
	messages map[string]*schema.Message
}

// File returns the loaded file with the given import path, requested or
// imported, or nil.
func (r *Result) File(name string) *schema.File { return r.files[name] }

// Message returns the message with the given full name from any loaded
// file, or nil.
func (r *Result) Message(fullName string) *schema.Message { return r.messages[fullName] }

func (l *Loader) importPaths() []string {
	if len(l.ImportPaths) == 0 {
		return []string{"."}
	}
	return l.ImportPaths
}

// Exists reports whether the file is found in one of the import paths.
func (l *Loader) Exists(name string) bool {
	for _, dir := range l.importPaths() {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// Load compiles the files and everything they import. The builder
// annotation definitions (AnnotationsFile) are always available.
func (l *Loader) Load(ctx context.Context, files ...string) (*Result, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("load: at least one proto file required")
	}
	log := logx.OrDefault(l.Logger)
	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(protocompile.CompositeResolver{
			&protocompile.SourceResolver{
				Accessor: protocompile.SourceAccessorFromMap(map[string]string{AnnotationsFile: annotationsProto}),
			},
			&protocompile.SourceResolver{ImportPaths: l.importPaths()},
		}),
	}
	names := slices.Clone(files)
	if !slices.Contains(names, AnnotationsFile) {
		names = append(names, AnnotationsFile)
	}
	compiled, err := compiler.Compile(ctx, names...)
	if err != nil {
		return nil, fmt.Errorf("load: compile %s: %w", strings.Join(files, ","), err)
	}
	ann, err := newAnnotations(compiled.AsResolver())
	if err != nil {
		return nil, err
	}

	c := newConverter(ann)
	res := &Result{}
	for i := range files {
		f, err := c.file(compiled[i])
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", files[i], err)
		}
		res.Files = append(res.Files, f)
	}
	res.files = c.files
	res.messages = make(map[string]*schema.Message, len(c.messages))
	for name, m := range c.messages {
		res.messages[string(name)] = m
	}
	log.Debug("loaded proto files",
		slog.Any("files", files),
		slog.Int("messages", len(res.messages)))
	return res, nil
}

// Selection is the outcome of resolving a ProtoFlag.
type Selection struct {
	Mode     SearchMode
	Messages []*schema.Message
	Result   *Result
}

// FullNames returns the sorted full names of the selected messages.
func (s *Selection) FullNames() []string {
	names := make([]string, 0, len(s.Messages))
	for _, m := range s.Messages {
		names = append(names, m.FullName)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// Select loads the files of the flag and returns the selected messages.
// Search modes other than Explicit select from the first file only.
func (l *Loader) Select(ctx context.Context, flag *ProtoFlag) (*Selection, error) {
	if len(flag.Files) == 0 {
		return nil, fmt.Errorf("load: at least one proto file required, none given")
	}
	for _, name := range flag.Files {
		if !l.Exists(name) {
			return nil, protobuilder.NewNotFoundError("proto file", name)
		}
	}
	res, err := l.Load(ctx, flag.Files...)
	if err != nil {
		return nil, err
	}
	sel := &Selection{Mode: flag.Mode, Result: res}
	if flag.Mode != Explicit {
		sel.Messages = Messages(res.Files[0], flag.Mode)
		return sel, nil
	}
	for _, name := range flag.Names {
		m := res.Message(name)
		if m == nil {
			return nil, protobuilder.NewNotFoundError("message", name)
		}
		sel.Messages = append(sel.Messages, m)
	}
	return sel, nil
}
