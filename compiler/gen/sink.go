package gen

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/syssam/protobuilder/schema"
)

// Where names the output channel a line of generated code is written to.
type Where uint8

const (
	// Header is the header file (.h).
	Header Where = iota
	// Source holds the function bodies (.cc).
	Source
	// Interface is the optional interface header (.interface.h).
	Interface

	numChannels = int(Interface) + 1
)

// String returns the channel name.
func (w Where) String() string {
	switch w {
	case Header:
		return "HEADER"
	case Source:
		return "SOURCE"
	case Interface:
		return "INTERFACE"
	default:
		return fmt.Sprintf("Where(%d)", w)
	}
}

// Channels lists every output channel.
var Channels = [...]Where{Header, Source, Interface}

// BuilderWriter receives generated code line by line. Lines must not
// contain new-line characters; the receiver terminates every line.
type BuilderWriter interface {
	Write(to Where, line string)
	CodeInfo() *CodeInfoCollector
}

// writeLine joins parts and writes them as a single line.
func writeLine(w BuilderWriter, to Where, parts ...string) {
	w.Write(to, strings.Join(parts, ""))
}

// FormatInclude quotes a bare include. Includes that start with '<' or '"'
// are returned unchanged.
func FormatInclude(include string) string {
	if strings.HasPrefix(include, "<") || strings.HasPrefix(include, `"`) {
		return include
	}
	return `"` + include + `"`
}

// CodeInfoCollector gathers the includes needed by each channel and knows the
// namespace the generated code lives in.
type CodeInfoCollector struct {
	packagePath   []string
	namespacePath string
	includes      [numChannels]map[string]struct{}
}

// NewCodeInfoCollector returns a collector for code generated into the
// namespace formed by packagePath (e.g. "foo", "bar" for ::foo::bar).
func NewCodeInfoCollector(packagePath ...string) *CodeInfoCollector {
	c := &CodeInfoCollector{packagePath: slices.Clone(packagePath)}
	if len(packagePath) > 0 {
		c.namespacePath = "::" + strings.Join(packagePath, "::")
	}
	for i := range c.includes {
		c.includes[i] = make(map[string]struct{})
	}
	return c
}

// AddInclude adds include to where. System includes keep their angle
// brackets, other includes are quoted as needed. A trailing comment such as
// "// IWYU pragma: export" may follow the closing '>' or '"'.
func (c *CodeInfoCollector) AddInclude(where Where, include string) {
	c.includes[where][FormatInclude(include)] = struct{}{}
}

// AddMessageInclude adds the generated header that declares m.
func (c *CodeInfoCollector) AddMessageInclude(where Where, m *schema.Message) {
	c.AddDescriptorInclude(where, m.FullName, m.File)
}

// AddEnumInclude adds the generated header that declares e.
func (c *CodeInfoCollector) AddEnumInclude(where Where, e *schema.Enum) {
	c.AddDescriptorInclude(where, e.FullName, e.File)
}

// AddDescriptorInclude adds the exported generated header of file for the
// type fullName. Types without a file get an include that fails to compile
// and names the type.
func (c *CodeInfoCollector) AddDescriptorInclude(where Where, fullName string, file *schema.File) {
	if file == nil {
		c.AddInclude(where, "ERROR_HEADER_UNKNOWN_FOR_"+fullName)
		return
	}
	base := file.Name
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	c.AddInclude(where, `"`+base+`.pb.h"  // IWYU pragma: export`)
}

// GetIncludes returns the sorted includes of where.
func (c *CodeInfoCollector) GetIncludes(where Where) []string {
	out := make([]string, 0, len(c.includes[where]))
	for inc := range c.includes[where] {
		out = append(out, inc)
	}
	slices.Sort(out)
	return out
}

// PackagePath returns the namespace components of the collector.
func (c *CodeInfoCollector) PackagePath() []string { return slices.Clone(c.packagePath) }

// RelativeType returns cppType relative to the collector's namespace, or
// cppType unchanged if it is not inside that namespace.
func (c *CodeInfoCollector) RelativeType(cppType string) string {
	if c.namespacePath == "" {
		return cppType
	}
	rest, ok := strings.CutPrefix(cppType, c.namespacePath)
	if !ok {
		return cppType
	}
	rest, ok = strings.CutPrefix(rest, "::")
	if !ok || rest == "" {
		return cppType
	}
	return rest
}

// BufferWriter keeps the written lines of each channel in memory.
type BufferWriter struct {
	buffer   [numChannels][]string
	codeInfo *CodeInfoCollector
}

// NewBufferWriter returns an empty buffer for code in the namespace
// formed by packagePath.
func NewBufferWriter(packagePath ...string) *BufferWriter {
	return &BufferWriter{codeInfo: NewCodeInfoCollector(packagePath...)}
}

// Write appends line to the channel to.
func (b *BufferWriter) Write(to Where, line string) {
	b.buffer[to] = append(b.buffer[to], line)
}

// CodeInfo returns the buffer's include collector.
func (b *BufferWriter) CodeInfo() *CodeInfoCollector { return b.codeInfo }

// From returns the lines written to from.
func (b *BufferWriter) From(from Where) []string { return b.buffer[from] }

// Contents returns the lines written to from joined by new-lines.
func (b *BufferWriter) Contents(from Where) string {
	return strings.Join(b.buffer[from], "\n")
}

// WriteFile writes the contents of from to filename.
func (b *BufferWriter) WriteFile(from Where, filename string) error {
	if err := os.WriteFile(filename, []byte(b.Contents(from)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return nil
}

// MoveContents appends the lines of from to the same channel of to. The
// channel from is empty afterwards.
func (b *BufferWriter) MoveContents(from Where, to *BufferWriter) {
	to.buffer[from] = append(to.buffer[from], b.buffer[from]...)
	b.buffer[from] = nil
}

// Decorator wraps a writer, changing one aspect of how lines are written.
type Decorator func(BuilderWriter) BuilderWriter

// OwnWrapped wraps base in the given decorators, the first decorator being
// the innermost, and returns the resulting chain as a single writer.
func OwnWrapped(base BuilderWriter, decorators ...Decorator) BuilderWriter {
	w := base
	for _, d := range decorators {
		w = d(w)
	}
	return &ownedWriter{BuilderWriter: w, base: base}
}

type ownedWriter struct {
	BuilderWriter
	base BuilderWriter
}

// Unwrap returns the writer at the root of the chain.
func (o *ownedWriter) Unwrap() BuilderWriter { return o.base }

// NoDoubleEmptyLineWriter drops an empty line if it is the first line of a
// channel or follows another empty line.
type NoDoubleEmptyLineWriter struct {
	wrapped      BuilderWriter
	lastNonEmpty [numChannels]bool
}

// NewNoDoubleEmptyLineWriter wraps w.
func NewNoDoubleEmptyLineWriter(w BuilderWriter) *NoDoubleEmptyLineWriter {
	return &NoDoubleEmptyLineWriter{wrapped: w}
}

// NoDoubleEmptyLine is the Decorator form of NewNoDoubleEmptyLineWriter.
func NoDoubleEmptyLine(w BuilderWriter) BuilderWriter { return NewNoDoubleEmptyLineWriter(w) }

// Write forwards line unless it would start the channel with, or repeat, an
// empty line.
func (n *NoDoubleEmptyLineWriter) Write(to Where, line string) {
	empty := line == ""
	if !empty || n.lastNonEmpty[to] {
		n.wrapped.Write(to, line)
	}
	n.lastNonEmpty[to] = !empty
}

// CodeInfo returns the wrapped writer's collector.
func (n *NoDoubleEmptyLineWriter) CodeInfo() *CodeInfoCollector { return n.wrapped.CodeInfo() }

// IndentWriter prefixes every non-empty line with a per channel indent.
type IndentWriter struct {
	wrapped BuilderWriter
	indent  [numChannels]string
}

// NewIndentWriter wraps w. Header and interface lines get headIndent,
// source lines get bodyIndent.
func NewIndentWriter(w BuilderWriter, headIndent, bodyIndent string) *IndentWriter {
	i := &IndentWriter{wrapped: w}
	i.SetIndent(Header, headIndent)
	i.SetIndent(Interface, headIndent)
	i.SetIndent(Source, bodyIndent)
	return i
}

// Indent returns a Decorator that wraps writers in an IndentWriter.
func Indent(headIndent, bodyIndent string) Decorator {
	return func(w BuilderWriter) BuilderWriter { return NewIndentWriter(w, headIndent, bodyIndent) }
}

// SetIndent sets the prefix of lines written to to.
func (i *IndentWriter) SetIndent(to Where, indent string) {
	i.indent[to] = indent
}

// Write forwards line with the channel's indent; empty lines stay empty.
func (i *IndentWriter) Write(to Where, line string) {
	if line == "" {
		i.wrapped.Write(to, line)
		return
	}
	i.wrapped.Write(to, i.indent[to]+line)
}

// CodeInfo returns the wrapped writer's collector.
func (i *IndentWriter) CodeInfo() *CodeInfoCollector { return i.wrapped.CodeInfo() }
