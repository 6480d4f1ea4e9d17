package gen

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/syssam/protobuilder/compiler/config"
	"github.com/syssam/protobuilder/compiler/cpp"
	"github.com/syssam/protobuilder/internal/logx"
	"github.com/syssam/protobuilder/schema"
)

// DefaultMaxDepth is the deepest level of nested messages whose fields are
// flattened into the builder of the root message.
const DefaultMaxDepth = 5

// DefaultRootData is the accessor of the message held by a builder.
const DefaultRootData = "data_."

// MessageOptions configures a MessageBuilder.
type MessageOptions struct {
	Config *config.Manager
	// Writer receives the generated code. It is wrapped, not owned.
	Writer  BuilderWriter
	Message *schema.Message
	// MaxFieldDepth is the maximum message depth, 1 meaning the message's
	// own fields only. Zero means unlimited.
	MaxFieldDepth int
	// MaxDepth bounds the recursion into nested messages. Zero selects
	// DefaultMaxDepth.
	MaxDepth      int
	UseValidator  bool
	MakeInterface bool
	Logger        *slog.Logger
}

// MessageBuilder writes the methods of the builder for a single message.
type MessageBuilder struct {
	opts        MessageOptions
	writer      BuilderWriter
	rootOptions *schema.MessageBuilderOptions
	className   string
}

// NewMessageBuilder returns a builder for opts.Message. The message's
// use_validator annotation takes precedence over opts.UseValidator.
func NewMessageBuilder(opts MessageOptions) *MessageBuilder {
	if opts.Message == nil {
		panic("gen: MessageOptions.Message must not be nil")
	}
	if opts.MaxFieldDepth <= 0 {
		opts.MaxFieldDepth = math.MaxInt
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	opts.Logger = logx.OrDefault(opts.Logger)
	root := opts.Message.BuilderOptions().Clone()
	if root.UseValidator == nil {
		root.UseValidator = schema.Bool(opts.UseValidator)
	}
	if root.RootData == "" {
		root.RootData = DefaultRootData
	}
	className := root.ClassName
	if className == "" {
		_, name := schema.PackageAndClassName(opts.Message)
		className = name + "Builder"
	}
	return &MessageBuilder{
		opts:        opts,
		writer:      OwnWrapped(opts.Writer, Indent("  ", ""), NoDoubleEmptyLine),
		rootOptions: root,
		className:   className,
	}
}

// ClassName returns the name of the generated builder class.
func (mb *MessageBuilder) ClassName() string { return mb.className }

// RootOptions returns the message annotation with root_data and
// use_validator resolved.
func (mb *MessageBuilder) RootOptions() *schema.MessageBuilderOptions { return mb.rootOptions }

// Message returns the root message.
func (mb *MessageBuilder) Message() *schema.Message { return mb.opts.Message }

// WriteBuilder writes the methods of all fields, flattening nested message
// fields as configured, and terminates every channel with an empty line.
func (mb *MessageBuilder) WriteBuilder() {
	mb.writer.CodeInfo().AddMessageInclude(Header, mb.opts.Message)
	visited := make(map[*schema.Message]struct{})
	mb.writeMessage(mb.opts.Message, mb.rootOptions.RootData, mb.rootOptions.RootName, 0, visited)
	for _, to := range Channels {
		mb.writer.Write(to, "")
	}
}

// useGetRawData reports whether the builder exposes its data for
// set-from-builder overloads.
func (mb *MessageBuilder) useGetRawData() bool {
	r := mb.rootOptions
	return r.GetUseBuild() || r.GetUseStatus() || r.GetUseValidator()
}

func (mb *MessageBuilder) fieldData(opts *schema.FieldBuilderOptions, f *schema.Field, dataParent, nameParent string, first bool) FieldData {
	return FieldData{
		Config:        mb.opts.Config,
		Writer:        mb.writer,
		RawOptions:    opts,
		Field:         f,
		ClassName:     mb.className,
		DataParent:    dataParent,
		NameParent:    nameParent,
		UseGetRawData: mb.useGetRawData(),
		MakeInterface: mb.opts.MakeInterface,
		FirstMethod:   first,
		UseStatus:     mb.rootOptions.GetUseStatus(),
		Logger:        mb.opts.Logger,
	}
}

func (mb *MessageBuilder) writeMethod(data FieldData) {
	NewFieldBuilder(data).WriteField()
}

// writeField writes the methods of every annotation of f and reports
// whether f may be recursed into.
func (mb *MessageBuilder) writeField(f *schema.Field, dataParent, nameParent string) bool {
	cfg := mb.opts.Config
	recurse := mb.opts.MaxFieldDepth > 1
	if len(f.Annotations) == 0 {
		mb.writeMethod(mb.fieldData(&schema.FieldBuilderOptions{}, f, dataParent, nameParent, true))
		if automatic := cfg.GetAutomaticType(cpp.FieldType(f)); automatic != nil {
			mb.writeMethod(mb.fieldData(automatic.Clone(), f, dataParent, nameParent, false))
		}
	}
	for i, annotation := range f.Annotations {
		opts := cfg.MergeFieldBuilderOptions(annotation)
		if opts.Mode() == schema.OutputSkip {
			continue
		}
		if opts.HasRecurse() {
			recurse = recurse && opts.GetRecurse()
		} else if typ := cpp.OptionsType(opts, f); typ == "" || typ[0] != '%' {
			if info := cfg.GetTypeInfo(typ, config.TypeInfoParameter); info.HasRecurse() {
				recurse = recurse && info.GetRecurse()
			}
		}
		mb.writeMethod(mb.fieldData(opts, f, dataParent, nameParent, i == 0))
	}
	return recurse
}

func (mb *MessageBuilder) writeMessage(m *schema.Message, dataParent, nameParent string, depth int, visited map[*schema.Message]struct{}) {
	log := mb.opts.Logger.With(slog.String("message", fmt.Sprintf("%s[%d]", m.FullName, depth)))
	if depth > mb.opts.MaxDepth {
		log.Error("max sub-field setter depth reached")
		return
	}
	if _, ok := visited[m]; ok {
		log.Info("already used in sub-field setter stack")
		return
	}
	visited[m] = struct{}{}
	defer delete(visited, m)

	ci := mb.writer.CodeInfo()
	for _, inc := range mb.rootOptions.Include {
		ci.AddInclude(Header, inc)
	}
	for _, inc := range mb.rootOptions.BuilderInclude {
		ci.AddInclude(Header, inc)
	}
	for _, inc := range mb.rootOptions.SourceInclude {
		ci.AddInclude(Source, inc)
	}
	for _, f := range m.Fields {
		first := f.Annotation(0)
		if first.Output == schema.OutputSkip {
			continue
		}
		recurse := mb.writeField(f, dataParent, nameParent)
		if recurse && f.IsNonRepeatedMessage() {
			// Nested types are included so transitive dependencies hold.
			ci.AddMessageInclude(Header, f.Message)
			name := first.GetName()
			if name == "" {
				name = cpp.CamelCaseName(f)
			}
			mb.writeMessage(f.Message,
				dataParent+"mutable_"+cpp.FieldName(f)+"()->",
				nameParent+name,
				depth+1, visited)
		}
		if value := f.MapValueMessage(); value != nil {
			ci.AddMessageInclude(Header, value)
		}
	}
}
