package gen

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"log/slog"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"text/template"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/protobuilder/compiler/config"
	"github.com/syssam/protobuilder/compiler/cpp"
	"github.com/syssam/protobuilder/internal/logx"
	"github.com/syssam/protobuilder/schema"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var defaultTemplates = map[Where]string{
	Header:    "templates/header.h.tmpl",
	Source:    "templates/source.cc.tmpl",
	Interface: "templates/interface.h.tmpl",
}

// DefaultTemplate returns the builtin template of the channel.
func DefaultTemplate(where Where) string {
	buf, err := templateFS.ReadFile(defaultTemplates[where])
	if err != nil {
		panic(fmt.Sprintf("gen: missing builtin template for %s: %v", where, err))
	}
	return string(buf)
}

// exportMarker follows the includes of generated proto headers.
const exportMarker = "  // IWYU pragma: export"

// StripPrefixDir removes the first matching prefix of the comma separated
// list of regular expressions from in. Each expression is anchored to the
// left and a slash following the match is removed as well.
func StripPrefixDir(in, prefixDirList string) (string, error) {
	for _, re := range strings.Split(prefixDirList, ",") {
		re = strings.TrimSuffix(re, "/")
		rx, err := regexp.Compile("^" + re + "/*")
		if err != nil {
			return "", fmt.Errorf("strip prefix dir %q: %w", re, err)
		}
		if loc := rx.FindStringIndex(in); loc != nil {
			return in[loc[1]:], nil
		}
	}
	return in, nil
}

// HeaderGuard returns the include guard for the header path in: letters
// and digits upper cased, everything else replaced by '_', plus a trailing
// '_'.
func HeaderGuard(in string) string {
	b := []byte(in)
	for i, c := range b {
		switch {
		case 'a' <= c && c <= 'z':
			b[i] = c - 'a' + 'A'
		case 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		default:
			b[i] = '_'
		}
	}
	return string(b) + "_"
}

// InterfaceGuard returns the include guard of the interface header that
// belongs to the header path in.
func InterfaceGuard(in string) string {
	return strings.TrimSuffix(HeaderGuard(in), "_H_") + "_INTERFACE_H_"
}

// Dictionary holds the values the header, source and interface templates
// are expanded with.
type Dictionary struct {
	HeaderGuard    string
	InterfaceGuard string
	HeaderFile     string
	InterfaceFile  string
	MakeInterface  bool
	// Include sections hold complete "#include" lines, system includes
	// first, separated from the others by an empty line.
	Includes          []string
	HeaderIncludes    []string
	InterfaceIncludes []string
	SourceIncludes    []string
	Namespaces        []string
	AllNamespaces     string
	NamespacesEnd     []string
	Builders          []*BuilderData
}

// BuilderData holds the template values of a single builder class.
type BuilderData struct {
	ClassName      string
	InterfaceName  string
	BaseClasses    string
	Namespace      string
	ProtoType      string
	ProtoTypeShort string
	RootData       string
	ValidateData   string
	// Expanded maps the expansions of the special types, e.g.
	// "%Status+param=value".
	Expanded               map[string]string
	GeneratedHeaderCode    string
	GeneratedInterfaceCode string
	GeneratedSourceCode    string
	UseBuild               bool
	UseConversion          bool
	UseStatus              bool
	UseValidator           bool
}

// TemplateOptions configures a TemplateBuilder.
type TemplateOptions struct {
	Config *config.Manager
	// Writer receives the expanded templates.
	Writer   BuilderWriter
	Messages []*schema.Message
	// Header is the header path as referenced by the generated code.
	Header string
	// Template texts; empty selects the builtin template.
	HeaderTemplate    string
	SourceTemplate    string
	InterfaceTemplate string
	MaxFieldDepth     int
	MaxDepth          int
	UseValidator      bool
	ValidatorHeader   string
	MakeInterface     bool
	InterfaceHeader   string
	// Workers bounds the number of messages generated concurrently.
	Workers int
	Logger  *slog.Logger
}

// messageOutput generates the code of one message into its own writer,
// using the configuration updated with the message's type map.
type messageOutput struct {
	config  *config.Manager
	writer  *BufferWriter
	builder *MessageBuilder
}

// TemplateBuilder generates the builders of several messages of one package
// and expands the templates with them.
type TemplateBuilder struct {
	opts        TemplateOptions
	packagePath []string
	target      BuilderWriter
	outputs     []*messageOutput
}

// NewTemplateBuilder prepares a builder for every message. All messages
// must belong to the same package.
func NewTemplateBuilder(opts TemplateOptions) (*TemplateBuilder, error) {
	if len(opts.Messages) == 0 {
		return nil, NewSchemaError("", "", "at least one message required", nil)
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	opts.Logger = logx.OrDefault(opts.Logger)
	pkg, _ := schema.PackageAndClassName(opts.Messages[0])
	for _, m := range opts.Messages[1:] {
		if p, _ := schema.PackageAndClassName(m); p != pkg {
			return nil, NewSchemaError(m.FullName, "",
				fmt.Sprintf("all messages must be in the same package, got %q and %q", pkg, p), nil)
		}
	}
	var packagePath []string
	if pkg != "" {
		packagePath = strings.Split(pkg, ".")
	}
	tb := &TemplateBuilder{
		opts:        opts,
		packagePath: packagePath,
		target:      NewNoDoubleEmptyLineWriter(opts.Writer),
		outputs:     make([]*messageOutput, 0, len(opts.Messages)),
	}
	for _, m := range opts.Messages {
		cfg, err := opts.Config.Update(m.BuilderOptions())
		if err != nil {
			return nil, NewSchemaError(m.FullName, "", "invalid type map", err)
		}
		w := NewBufferWriter(packagePath...)
		tb.outputs = append(tb.outputs, &messageOutput{
			config: cfg,
			writer: w,
			builder: NewMessageBuilder(MessageOptions{
				Config:        cfg,
				Writer:        w,
				Message:       m,
				MaxFieldDepth: opts.MaxFieldDepth,
				MaxDepth:      opts.MaxDepth,
				UseValidator:  opts.UseValidator,
				MakeInterface: opts.MakeInterface,
				Logger:        opts.Logger,
			}),
		})
	}
	return tb, nil
}

func useBuild(o *schema.MessageBuilderOptions) bool { return o.GetUseBuild() || o.GetUseValidator() }

func useConversion(o *schema.MessageBuilderOptions) bool { return o.UseConversion }

func useStatus(o *schema.MessageBuilderOptions) bool {
	return o.GetUseStatus() || o.GetUseBuild() || o.GetUseValidator()
}

func useValidator(o *schema.MessageBuilderOptions) bool { return o.GetUseValidator() }

// addSpecialIncludes registers the includes of the special type typ.
func addSpecialIncludes(cfg *config.Manager, ci *CodeInfoCollector, typ string) {
	if opts := cfg.GetTypeInfo(typ, config.TypeInfoSpecial); opts != nil {
		addIncludes(ci, opts)
	}
}

func (tb *TemplateBuilder) writeMessage(out *messageOutput) {
	root := out.builder.RootOptions()
	ci := out.writer.CodeInfo()
	ci.AddInclude(Header, "<utility>")
	if useStatus(root) {
		for _, typ := range []string{"%LogSourceLocation", "%SourceLocation", "%StatusOr", "%Status"} {
			addSpecialIncludes(out.config, ci, typ)
		}
	}
	if useValidator(root) && tb.opts.ValidatorHeader != "" {
		ci.AddInclude(Header, tb.opts.ValidatorHeader)
	}
	tb.opts.Logger.Debug("generating builder",
		slog.String("message", out.builder.Message().FullName),
		slog.String("class", out.builder.ClassName()))
	out.builder.WriteBuilder()
}

// WriteBuilder generates the code of all messages concurrently, expands the
// header, source and (if enabled) interface templates and writes them to
// the target writer.
func (tb *TemplateBuilder) WriteBuilder(ctx context.Context) error {
	targets := []Where{Header, Source}
	if tb.opts.MakeInterface {
		targets = append(targets, Interface)
	}
	tmpls := make(map[Where]*template.Template, len(targets))
	for _, where := range targets {
		t, err := tb.loadTemplate(where)
		if err != nil {
			return err
		}
		tmpls[where] = t
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(tb.opts.Workers)
	for _, out := range tb.outputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tb.writeMessage(out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	dict := tb.Dictionary()
	for _, where := range targets {
		var buf bytes.Buffer
		if err := tmpls[where].Execute(&buf, dict); err != nil {
			return NewGenerationError("template", where.String(), "expand template", err)
		}
		for _, line := range strings.Split(buf.String(), "\n") {
			tb.target.Write(where, line)
		}
		// Ensure terminating new-line.
		tb.target.Write(where, "")
	}
	return nil
}

func (tb *TemplateBuilder) templateText(where Where) string {
	var text string
	switch where {
	case Header:
		text = tb.opts.HeaderTemplate
	case Source:
		text = tb.opts.SourceTemplate
	case Interface:
		text = tb.opts.InterfaceTemplate
	}
	if text == "" {
		text = DefaultTemplate(where)
	}
	return text
}

var templateFuncs = template.FuncMap{
	"join": strings.Join,
}

func (tb *TemplateBuilder) loadTemplate(where Where) (*template.Template, error) {
	t, err := template.New(where.String()).
		Funcs(templateFuncs).
		Option("missingkey=zero").
		Parse(PrepareTemplate(tb.templateText(where)))
	if err != nil {
		return nil, NewGenerationError("template", where.String(), "parse template", err)
	}
	return t, nil
}

// templateMarkers turn template actions hidden in C++ comments back into
// plain actions, so templates may be kept as compilable C++ files.
var templateMarkers = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`^\s*//\s*(\{\{[^{}]*\}\})\s*$`), "$1"},
	{regexp.MustCompile(`^(\s*#\s*(?:ifndef\s|define\s|endif\s+//\s?)).*(\{\{\s*\.HeaderGuard\s*\}\}).*$`), "${1}${2}"},
	{regexp.MustCompile(`^(\s*#\s*(?:ifndef\s|define\s|endif\s+//\s?)).*(\{\{\s*\.InterfaceGuard\s*\}\}).*$`), "${1}${2}"},
}

// PrepareTemplate rewrites every line of text that consists of a single
// commented template action ("// {{range .Builders}}") into the action, and
// every include guard line that mentions the guard action into the guard
// directive followed by the action.
func PrepareTemplate(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		for _, m := range templateMarkers {
			if m.re.MatchString(line) {
				lines[i] = m.re.ReplaceAllString(line, m.repl)
				break
			}
		}
	}
	return strings.Join(lines, "\n")
}

// Dictionary returns the template values. It is meaningful once the code of
// the messages has been generated.
func (tb *TemplateBuilder) Dictionary() *Dictionary {
	header := tb.opts.Header
	headerInclude := `"` + header + `"`
	interfaceInclude := `"` + tb.opts.InterfaceHeader + `"`
	dropInterface := map[string]bool{headerInclude: true, interfaceInclude: true}
	for _, out := range tb.outputs {
		for _, inc := range out.builder.RootOptions().BuilderInclude {
			dropInterface[FormatInclude(inc)] = true
		}
	}
	d := &Dictionary{
		HeaderGuard:       HeaderGuard(header),
		InterfaceGuard:    InterfaceGuard(header),
		HeaderFile:        header,
		InterfaceFile:     tb.opts.InterfaceHeader,
		MakeInterface:     tb.opts.MakeInterface,
		Includes:          tb.includes([]Where{Header, Source}, false, nil),
		HeaderIncludes:    tb.includes([]Where{Header}, false, nil),
		InterfaceIncludes: tb.includes([]Where{Header}, false, dropInterface),
		SourceIncludes:    tb.includes([]Where{Source}, true, map[string]bool{headerInclude: true}),
		Namespaces:        slices.Clone(tb.packagePath),
		AllNamespaces:     strings.Join(tb.packagePath, "::"),
		NamespacesEnd:     slices.Clone(tb.packagePath),
	}
	slices.Reverse(d.NamespacesEnd)
	for _, out := range tb.outputs {
		d.Builders = append(d.Builders, tb.builderData(out))
	}
	return d
}

// includes collects the includes of all messages in the given channels as
// "#include" lines: system includes first, then an empty line if both
// kinds exist, then all others.
func (tb *TemplateBuilder) includes(wheres []Where, stripExport bool, drop map[string]bool) []string {
	all := make(map[string]struct{})
	for _, out := range tb.outputs {
		for _, where := range wheres {
			for _, inc := range out.writer.CodeInfo().GetIncludes(where) {
				all[inc] = struct{}{}
			}
		}
	}
	if tb.opts.MakeInterface {
		all[`"`+tb.opts.InterfaceHeader+`"`] = struct{}{}
	}
	sorted := make([]string, 0, len(all))
	for inc := range all {
		sorted = append(sorted, inc)
	}
	slices.Sort(sorted)
	var system, other []string
	for _, inc := range sorted {
		if stripExport {
			inc = strings.TrimSuffix(inc, exportMarker)
		}
		if drop[inc] {
			continue
		}
		if strings.HasPrefix(inc, "<") {
			system = append(system, "#include "+inc)
		} else {
			other = append(other, "#include "+inc)
		}
	}
	out := system
	if len(system) > 0 && len(other) > 0 {
		out = append(out, "")
	}
	return append(out, other...)
}

func (tb *TemplateBuilder) builderData(out *messageOutput) *BuilderData {
	root := out.builder.RootOptions()
	ci := out.writer.CodeInfo()
	className := out.builder.ClassName()
	m := out.builder.Message()

	var bases []string
	if tb.opts.MakeInterface {
		bases = append(bases, "public "+className+"Interface")
	}
	bases = append(bases, root.BaseClass...)
	var baseClasses string
	if len(bases) > 0 {
		baseClasses = " : " + strings.Join(bases, ", ")
	}

	namespace := strings.Join(tb.packagePath, "::")
	protoType := ci.RelativeType(cpp.AbsoluteTypeName(m.FullName))
	if rest, ok := strings.CutPrefix(protoType, "::"+namespace+"::"); ok {
		protoType = rest
	} else {
		protoType = strings.TrimPrefix(protoType, namespace+"::")
	}

	rootData, ok := strings.CutSuffix(root.RootData, ".")
	if !ok {
		rootData = strings.TrimSuffix(rootData, "->")
	}
	var validateData string
	if useValidator(root) {
		validateData = "ValidateData();"
	}
	return &BuilderData{
		ClassName:              className,
		InterfaceName:          className + "Interface",
		BaseClasses:            baseClasses,
		Namespace:              namespace,
		ProtoType:              protoType,
		ProtoTypeShort:         ci.RelativeType(cpp.AbsoluteTypeName(m.Name)),
		RootData:               rootData,
		ValidateData:           validateData,
		Expanded:               out.config.GetExpandedTypes(),
		GeneratedHeaderCode:    strings.Join(out.writer.From(Header), "\n"),
		GeneratedInterfaceCode: strings.Join(out.writer.From(Interface), "\n"),
		GeneratedSourceCode:    strings.Join(out.writer.From(Source), "\n"),
		UseBuild:               useBuild(root),
		UseConversion:          useConversion(root),
		UseStatus:              useStatus(root),
		UseValidator:           useValidator(root),
	}
}
