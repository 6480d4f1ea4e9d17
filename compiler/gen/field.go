package gen

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/syssam/protobuilder/compiler/config"
	"github.com/syssam/protobuilder/compiler/cpp"
	"github.com/syssam/protobuilder/internal/logx"
	"github.com/syssam/protobuilder/schema"
)

// FieldData holds everything needed to generate the methods of one field
// annotation.
type FieldData struct {
	Config *config.Manager
	Writer BuilderWriter
	// RawOptions is the field annotation as written (macro already resolved).
	RawOptions *schema.FieldBuilderOptions
	Field      *schema.Field
	ClassName  string
	// DataParent is the accessor prefix of the enclosing message, e.g.
	// "data_." or "data_.mutable_sub()->".
	DataParent string
	// NameParent prefixes the method names of flattened nested fields.
	NameParent    string
	UseGetRawData bool
	MakeInterface bool
	// FirstMethod is set for the first annotation of a field only.
	FirstMethod bool
	UseStatus   bool
	Logger      *slog.Logger
}

// FieldBuilder writes the code for a single field annotation.
type FieldBuilder struct {
	data     FieldData
	typeInfo *schema.FieldBuilderOptions
	options  *schema.FieldBuilderOptions
}

// NewFieldBuilder resolves the effective options of the annotation: the
// type map entry named by the annotation's type (or the field's C++ type)
// is used as defaults, the annotation is merged on top and '@type@' is
// replaced in the resulting type.
func NewFieldBuilder(data FieldData) *FieldBuilder {
	if data.RawOptions == nil {
		data.RawOptions = &schema.FieldBuilderOptions{}
	}
	data.Logger = logx.OrDefault(data.Logger)
	b := &FieldBuilder{data: data}
	// Special types cannot be used as field types.
	if typ := cpp.OptionsType(data.RawOptions, data.Field); !strings.HasPrefix(typ, "%") {
		b.typeInfo = data.Config.GetTypeInfo(typ, config.TypeInfoParameter)
	}
	defaults := b.typeInfo
	if defaults == nil {
		defaults = &schema.FieldBuilderOptions{}
	}
	b.options = cpp.UpdateOptions(cpp.MergeOptions(data.RawOptions, defaults), data.Field)
	return b
}

// Options returns the effective options.
func (b *FieldBuilder) Options() *schema.FieldBuilderOptions { return b.options }

func (b *FieldBuilder) mode() schema.OutputMode { return b.options.Mode() }

func (b *FieldBuilder) write(to Where, parts ...string) {
	writeLine(b.data.Writer, to, parts...)
}

func (b *FieldBuilder) codeInfo() *CodeInfoCollector { return b.data.Writer.CodeInfo() }

// WriteField writes the declarations and definitions of the field.
func (b *FieldBuilder) WriteField() {
	m := b.mode()
	if m == schema.OutputSkip || !b.IsValidOrWriteError() {
		return
	}
	b.AddIncludes()
	if m.UseHeader() {
		if m.UseTemplate() || m.UseForeach() {
			b.writeImplementation(Header)
		} else {
			b.writeDeclaration(Header)
		}
	}
	if m.UseSource() {
		b.writeImplementation(Source)
	}
	if b.data.MakeInterface {
		b.writeDeclaration(Interface)
	}
}

// IsValidOrWriteError reports whether the output mode can be applied to
// the field. If not, an #error block is written to every channel in use.
func (b *FieldBuilder) IsValidOrWriteError() bool {
	m := b.mode()
	output := "'output: " + m.String() + "'"
	if m.UseForeach() && !b.data.Field.IsRepeated() {
		b.writeError("Cannot use " + output + " with a non repeated field.")
		return false
	}
	if m.UseTemplate() && b.options.HasValue() {
		b.writeError("Cannot use " + output + " and specify a value.")
		return false
	}
	return true
}

func (b *FieldBuilder) writeError(msg string) {
	lines := []string{
		"",
		msg,
		"Field: " + b.data.Field.FullName,
		"FieldBuilderOptions: <" + b.options.DebugString() + ">",
		"",
	}
	b.data.Logger.Error(msg,
		slog.String("field", b.data.Field.FullName),
		slog.String("options", b.options.DebugString()))
	m := b.mode()
	for _, line := range lines {
		if line != "" {
			line = "#error " + line
		}
		if m.UseHeader() {
			b.write(Header, line)
		}
		if m.UseSource() {
			b.write(Source, line)
		}
		if b.data.MakeInterface {
			b.write(Interface, line)
		}
	}
}

// AddIncludes registers the includes required by the field type, the
// effective options and the source location parameter.
func (b *FieldBuilder) AddIncludes() {
	ci := b.codeInfo()
	f := b.data.Field
	switch f.Kind.CppType() {
	case schema.CppMessage:
		ci.AddMessageInclude(Header, f.Message)
	case schema.CppEnum:
		ci.AddEnumInclude(Header, f.Enum)
	case schema.CppString:
		// Not needed when the type is overridden.
		if cpp.OptionsType(b.data.RawOptions, f) == "std::string" {
			ci.AddInclude(Header, "<string>")
		}
	}
	addIncludes(ci, b.options)
	if b.options.AddSourceLocation {
		if loc := b.data.Config.GetTypeInfo("%SourceLocation", config.TypeInfoSpecial); loc != nil {
			addIncludes(ci, loc)
		}
	}
}

func addIncludes(ci *CodeInfoCollector, opts *schema.FieldBuilderOptions) {
	for _, inc := range opts.Include {
		ci.AddInclude(Header, inc)
	}
	for _, inc := range opts.SourceInclude {
		ci.AddInclude(Source, inc)
	}
}

// RelativeFieldType returns the C++ type of the field relative to the
// namespace of the generated code.
func (b *FieldBuilder) RelativeFieldType() string {
	return b.codeInfo().RelativeType(cpp.FieldType(b.data.Field))
}

// applyData expands the placeholders of input. An empty input yields value.
func (b *FieldBuilder) applyData(input, value string) string {
	if input == "" {
		return value
	}
	srcLoc := "%SourceLocation%value"
	if b.data.RawOptions.AddSourceLocation {
		srcLoc = "%SourceLocation%param"
	}
	oldnew := []string{
		"@type@", b.RelativeFieldType(),
		"@value@", value,
		"@default@", cpp.DefaultValue(b.data.Field),
		"@source_location@", b.data.Config.GetExpandedType(srcLoc),
	}
	keys := make([]string, 0, len(b.options.Data))
	for k := range b.options.Data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		oldnew = append(oldnew, "%"+k+"%", b.options.Data[k])
	}
	return strings.NewReplacer(oldnew...).Replace(input)
}

// RawCppType returns the configured type, or the C++ type of the field.
func (b *FieldBuilder) RawCppType() string {
	if t := b.options.GetType(); t != "" {
		return t
	}
	return cpp.FieldType(b.data.Field)
}

// decorate turns typ into a const reference unless it is a string_view,
// a pointer or already a reference.
func decorate(enable bool, typ string) string {
	if !enable || typ == "" || typ == "absl::string_view" ||
		strings.HasSuffix(typ, "*") || strings.HasSuffix(typ, "&") {
		return typ
	}
	return "const " + typ + "&"
}

// ParameterType returns the type of the method parameter. With dec set,
// class types are passed by const reference.
func (b *FieldBuilder) ParameterType(dec bool) string {
	m := b.mode()
	switch {
	case m.UseInitializerList():
		item := "Item"
		if b.data.Field.IsMap() {
			item = b.RawCppType()
		}
		return "std::initializer_list<" + item + ">"
	case m.UseTemplate():
		if m.UseForeach() {
			return decorate(dec, "Container")
		}
		return decorate(dec, "Value")
	case dec && b.options.DecoratedType != "":
		return b.options.DecoratedType
	}
	typ := b.RawCppType()
	dec = dec && (strings.Contains(typ, "::") || typ == "string")
	dec = dec && b.data.Field.Kind != schema.KindEnum
	return decorate(dec, b.codeInfo().RelativeType(typ))
}

func (b *FieldBuilder) camelCaseFieldName(name string) string {
	if name == "" {
		name = cpp.CamelCaseName(b.data.Field)
	}
	return b.data.NameParent + name
}

// MethodName returns the name of the generated method: Insert for maps,
// Add for repeated fields and Set otherwise.
func (b *FieldBuilder) MethodName() string {
	name := b.camelCaseFieldName(b.options.GetName())
	switch f := b.data.Field; {
	case f.IsMap():
		return "Insert" + name
	case f.IsRepeated():
		return "Add" + name
	default:
		return "Set" + name
	}
}

// MethodParam returns the parameter list of the method. The source
// location parameter only gets its default value in the header.
func (b *FieldBuilder) MethodParam(to Where) string {
	var param string
	if b.options.GetValue() == "" {
		name := "value"
		if b.data.Field.IsMap() {
			name = "key_value_pair"
		}
		if b.mode().UseForeach() {
			name += "s"
		}
		param = b.ParameterType(true) + " " + name
	}
	if b.options.AddSourceLocation {
		if loc := b.data.Config.GetTypeInfo("%SourceLocation", config.TypeInfoSpecial); loc != nil {
			if param != "" {
				param += ", "
			}
			param += loc.GetType() + " " + b.data.Config.GetExpandedType("%SourceLocation%param")
			if to == Header && loc.GetValue() != "" {
				param += " = " + loc.GetValue()
			}
		}
	}
	return param
}

func (b *FieldBuilder) useMapInsert() bool {
	m := b.mode()
	return b.data.Field.IsMap() && (m.UseInitializerList() || !m.UseForeachAdd())
}

func (b *FieldBuilder) useSetFromBuilder() bool {
	if !b.data.FirstMethod || !b.data.UseGetRawData {
		return false
	}
	if f := b.data.Field; !f.IsMap() {
		return f.IsMessage()
	}
	return b.data.Field.MapValueMessage() != nil
}

func (b *FieldBuilder) keyValuePair() string {
	if b.mode().UseForeach() {
		return "key_value_pairs"
	}
	return "key_value_pair"
}

// SetValue returns the expression that is stored into the field.
func (b *FieldBuilder) SetValue() string {
	value := b.options.GetValue()
	if value == "" {
		foreach := b.mode().UseForeach()
		switch {
		case b.useMapInsert() && (!foreach || b.options.GetConversion() == ""):
			value = b.keyValuePair()
		case foreach:
			value = "v"
		default:
			value = "value"
		}
	}
	return b.applyData(b.options.GetConversion(), value)
}

// Predicate returns the expression that guards setting the field.
func (b *FieldBuilder) Predicate() string {
	value := b.options.GetValue()
	if value == "" {
		value = "value"
		if b.useMapInsert() {
			value = b.keyValuePair()
		}
	}
	return b.applyData(b.options.GetPredicate(), value)
}

func (b *FieldBuilder) writeTemplateLine(to Where) {
	m := b.mode()
	switch {
	case m.UseInitializerList():
		// Map items are pairs and cannot be deduced from a braced list.
		if !b.data.Field.IsMap() {
			b.write(to, "template <class Item>")
		}
	case m.UseTemplate() && m.UseForeach():
		b.write(to, fmt.Sprintf(
			"template <class %[1]s, class = typename std::enable_if<!std::is_convertible<%[1]s, %[2]s>::value>::type>",
			b.ParameterType(false), b.RelativeFieldType()))
	case m.UseTemplate():
		b.write(to, "template <class ", b.ParameterType(false), ">")
	}
}

func (b *FieldBuilder) writeDeclaration(to Where) {
	b.writeTemplateLine(to)
	iface := to == Interface && b.data.MakeInterface
	var prefix, suffix string
	if iface {
		prefix = "virtual "
	}
	switch {
	case (to != Interface && b.data.MakeInterface) || b.data.RawOptions.Override:
		suffix = " override"
	case iface:
		suffix = " =0"
	}
	b.write(to, prefix, b.data.ClassName, "& ", b.MethodName(), "(", b.MethodParam(Header), ")", suffix, ";")
	if !b.data.MakeInterface {
		b.writeSetFromBuilder()
	}
}

// writeSetFromBuilder writes an overload that accepts another builder of
// the field's message type and forwards its data or its error status.
func (b *FieldBuilder) writeSetFromBuilder() {
	if !b.useSetFromBuilder() {
		return
	}
	typ, params, args := b.RawCppType(), "Builder builder", "*std::move(value)"
	if f := b.data.Field; f.IsMap() {
		key, value := f.MapKey(), f.MapValue()
		typ = cpp.FieldType(value)
		params = decorate(key.Kind == schema.KindString, cpp.FieldType(key)) + " key, " + params
		args = "{key, " + args + "}"
	}
	method := b.MethodName()
	for _, line := range []string{
		"",
		"template <",
		"    class Builder,",
		"    class = std::enable_if_t<std::is_same_v<",
		"        std::invoke_result_t<",
		"            decltype(&Builder::MaybeGetRawData), Builder>,",
		"        absl::StatusOr<" + typ + ">>>>",
		b.data.ClassName + "& " + method + "(" + params + ") {",
		"  auto value = std::move(builder).MaybeGetRawData();",
		"  if (value.ok()) {",
		"    " + method + "(" + args + ");",
		"  } else {",
		"    UpdateStatus(value.status());",
		"  }",
		"  return *this;",
		"}",
		"",
	} {
		b.write(Header, line)
	}
}

func (b *FieldBuilder) writeImplementation(to Where) {
	name := b.MethodName()
	if to != Header {
		name = b.data.ClassName + "::" + name
	}
	var suffix string
	if to == Header && b.data.RawOptions.Override {
		suffix = " override"
	}
	b.write(to, "")
	b.writeTemplateLine(to)
	b.write(to, b.data.ClassName, "& ", name, "(", b.MethodParam(to), ")", suffix, " {")
	b.writePredicate(to)
	b.writeBody(to)
	b.write(to, "  return *this;")
	b.write(to, "}")
	b.write(to, "")
}

// writePredicate writes the early return for a failing predicate. With
// status support the first error is kept in the builder's status.
func (b *FieldBuilder) writePredicate(to Where) {
	if b.data.RawOptions.GetPredicate() == "" {
		return
	}
	if b.data.UseStatus {
		b.write(to, "const auto status = ", b.Predicate(), ";")
		b.write(to, "if (!status.ok()) {")
		b.write(to, "  if (status_.ok()) {")
		b.write(to, "    UpdateStatus(status);")
		b.write(to, "  }")
	} else {
		b.write(to, "if (!", b.Predicate(), ".ok()) {")
	}
	b.write(to, "  return *this;")
	b.write(to, "}")
}

func (b *FieldBuilder) writeBody(to Where) {
	f, m, dp := b.data.Field, b.mode(), b.data.DataParent
	name := cpp.FieldName(f)
	if b.useMapInsert() {
		switch {
		case !m.UseForeach():
			b.write(to, "  ", dp, "mutable_", name, "()->insert(", b.SetValue(), ");")
			return
		case b.options.GetConversion() == "":
			sv := b.SetValue()
			b.write(to, "  ", dp, "mutable_", name, "()->insert(", sv, ".begin(), ", sv, ".end());")
			return
		}
	}
	if !f.IsRepeated() {
		if f.IsMessage() {
			b.write(to, "  *", dp, "mutable_", name, "() = ", b.SetValue(), ";")
		} else {
			b.write(to, "  ", dp, "set_", name, "(", b.SetValue(), ");")
		}
		return
	}
	add := dp + "add_" + name
	addValue := add + "(" + b.SetValue() + ");"
	if f.IsMessage() {
		addValue = "*" + add + "() = " + b.SetValue() + ";"
	}
	if !m.UseForeach() && !f.IsMap() {
		b.write(to, "  ", addValue)
		return
	}
	values := "values"
	if f.IsMap() {
		values = "key_value_pairs"
	}
	b.write(to, "  for (const auto& v : ", values, ") {")
	switch {
	case !m.UseForeachAdd():
		b.write(to, "    ", addValue)
	case f.IsMap() && b.options.GetConversion() == "":
		sv := b.SetValue()
		b.write(to, "    Insert", b.camelCaseFieldName(""), "(", cpp.FieldType(f), "(", sv, ".first, ", sv, ".second)", b.sourceLocationArg(), ");")
	default:
		method := "Add"
		if f.IsMap() {
			method = "Insert"
		}
		b.write(to, "    ", method, b.camelCaseFieldName(""), "(", b.SetValue(), b.sourceLocationArg(), ");")
	}
	b.write(to, "  }")
}

func (b *FieldBuilder) sourceLocationArg() string {
	if !b.options.AddSourceLocation {
		return ""
	}
	return ", " + b.data.Config.GetExpandedType("%SourceLocation%param")
}
