// Package cpp derives C++ names and type spellings from schema nodes.
package cpp

import (
	"fmt"
	"strings"

	"github.com/syssam/protobuilder/schema"
)

// protobuf scalar type names and their C++ spelling.
var translation = map[string]string{
	"int32":    "int32_t",
	"int64":    "int64_t",
	"uint32":   "uint32_t",
	"uint64":   "uint64_t",
	"sint32":   "int32_t",
	"sint64":   "int64_t",
	"fixed32":  "uint32_t",
	"fixed64":  "uint64_t",
	"sfixed32": "int32_t",
	"sfixed64": "int64_t",
}

// AbsoluteTypeName returns the C++ spelling of a protobuf or C++ type name.
// Qualified names become absolute ("a.b" and "a::b" both yield "::a::b"),
// protobuf integer types map to their fixed width C++ types and names in
// std:: are returned unchanged.
func AbsoluteTypeName(t string) string {
	if strings.HasPrefix(t, "std::") {
		return t
	}
	if c, ok := translation[t]; ok {
		return c
	}
	c := strings.ReplaceAll(t, ".", "::")
	if c != "" && c[0] != ':' && len(c) > 2 && strings.IndexByte(c[2:], ':') >= 0 {
		return "::" + c
	}
	return c
}

// CamelCaseName returns the field name in CamelCase with the underscores
// removed: "sub_one" becomes "SubOne".
func CamelCaseName(f *schema.Field) string {
	return CamelCase(f.Name)
}

// CamelCase upper cases the first byte of each underscore separated part
// of name and joins the parts. The remaining bytes are kept as is, so
// "point_3d" becomes "Point3d".
func CamelCase(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for part := range strings.SplitSeq(name, "_") {
		if part == "" {
			continue
		}
		c := part[0]
		if 'a' <= c && c <= 'z' {
			c -= 'a' - 'A'
		}
		b.WriteByte(c)
		b.WriteString(part[1:])
	}
	return b.String()
}

// FieldType returns the absolute C++ type stored in a field. Map fields
// yield the value_type of the protobuf Map.
func FieldType(f *schema.Field) string {
	if f.IsMap() {
		return fmt.Sprintf("::google::protobuf::Map<%s, %s>::value_type",
			FieldType(f.MapKey()), FieldType(f.MapValue()))
	}
	switch f.Kind.CppType() {
	case schema.CppMessage:
		return AbsoluteTypeName(f.Message.FullName)
	case schema.CppEnum:
		return AbsoluteTypeName(f.Enum.FullName)
	case schema.CppString:
		return "std::string"
	default:
		return AbsoluteTypeName(f.Kind.CppType().String())
	}
}

// FieldName returns the name protoc uses for the accessors of a field: the
// lower cased field name, with a trailing underscore for C++ keywords.
func FieldName(f *schema.Field) string {
	name := strings.ToLower(f.Name)
	if IsKeyword(name) {
		return name + "_"
	}
	return name
}

// IsKeyword reports whether name is a reserved C++ keyword.
func IsKeyword(name string) bool {
	_, ok := keywords[name]
	return ok
}

// DefaultValue returns the C++ literal of the field's default value, or
// "{}" if the field has no explicit default.
func DefaultValue(f *schema.Field) string {
	if !f.HasDefault {
		return "{}"
	}
	switch f.Kind.CppType() {
	case schema.CppString:
		return `"` + CEscape(f.Default) + `"`
	case schema.CppMessage, schema.CppInvalid:
		return "{}"
	default:
		return f.Default
	}
}

// CEscape escapes s for use inside a C string literal.
func CEscape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '"':
			b.WriteString(`\"`)
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		default:
			if c < 0x20 || c >= 0x7f {
				fmt.Fprintf(&b, `\%03o`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	return b.String()
}

var keywords = map[string]struct{}{
	"NULL": {}, "alignas": {}, "alignof": {}, "and": {}, "and_eq": {}, "asm": {},
	"auto": {}, "bitand": {}, "bitor": {}, "bool": {}, "break": {}, "case": {},
	"catch": {}, "char": {}, "class": {}, "compl": {}, "const": {}, "constexpr": {},
	"const_cast": {}, "continue": {}, "decltype": {}, "default": {}, "delete": {},
	"do": {}, "double": {}, "dynamic_cast": {}, "else": {}, "enum": {},
	"explicit": {}, "export": {}, "extern": {}, "false": {}, "float": {},
	"for": {}, "friend": {}, "goto": {}, "if": {}, "inline": {}, "int": {},
	"long": {}, "mutable": {}, "namespace": {}, "new": {}, "noexcept": {},
	"not": {}, "not_eq": {}, "nullptr": {}, "operator": {}, "or": {}, "or_eq": {},
	"private": {}, "protected": {}, "public": {}, "register": {},
	"reinterpret_cast": {}, "return": {}, "short": {}, "signed": {}, "sizeof": {},
	"static": {}, "static_assert": {}, "static_cast": {}, "struct": {},
	"switch": {}, "template": {}, "this": {}, "thread_local": {}, "throw": {},
	"true": {}, "try": {}, "typedef": {}, "typeid": {}, "typename": {},
	"union": {}, "unsigned": {}, "using": {}, "virtual": {}, "void": {},
	"volatile": {}, "wchar_t": {}, "while": {}, "xor": {}, "xor_eq": {},
	"char8_t": {}, "char16_t": {}, "char32_t": {}, "concept": {},
	"consteval": {}, "constinit": {}, "co_await": {}, "co_return": {},
	"co_yield": {}, "requires": {},
}

// MergeOptions merges the annotation of a field onto the policy found for
// its type. Fields set in fromField win, except for the type which always
// comes from defaults when it names one.
func MergeOptions(fromField, defaults *schema.FieldBuilderOptions) *schema.FieldBuilderOptions {
	result := defaults.Clone()
	result.Merge(fromField)
	if defaults.GetType() != "" {
		result.Type = schema.String(defaults.GetType())
	}
	return result
}

// UpdateOptions returns a copy of options with "@type@" in the type
// replaced by the C++ type of f.
func UpdateOptions(options *schema.FieldBuilderOptions, f *schema.Field) *schema.FieldBuilderOptions {
	result := options.Clone()
	if t := result.GetType(); t != "" {
		result.Type = schema.String(strings.ReplaceAll(t, "@type@", FieldType(f)))
	}
	return result
}

// OptionsType returns the type named by options, or the C++ type of f.
func OptionsType(options *schema.FieldBuilderOptions, f *schema.Field) string {
	if options.HasType() {
		return options.GetType()
	}
	return FieldType(f)
}
