package schema

import "strings"

// Kind is the protobuf type of a field.
type Kind uint8

// Field kinds, numbered like descriptor.proto's FieldDescriptorProto.Type.
const (
	KindInvalid Kind = iota
	KindDouble
	KindFloat
	KindInt64
	KindUint64
	KindInt32
	KindFixed64
	KindFixed32
	KindBool
	KindString
	KindGroup
	KindMessage
	KindBytes
	KindUint32
	KindEnum
	KindSfixed32
	KindSfixed64
	KindSint32
	KindSint64
)

var kindNames = [...]string{
	KindInvalid:  "invalid",
	KindDouble:   "double",
	KindFloat:    "float",
	KindInt64:    "int64",
	KindUint64:   "uint64",
	KindInt32:    "int32",
	KindFixed64:  "fixed64",
	KindFixed32:  "fixed32",
	KindBool:     "bool",
	KindString:   "string",
	KindGroup:    "group",
	KindMessage:  "message",
	KindBytes:    "bytes",
	KindUint32:   "uint32",
	KindEnum:     "enum",
	KindSfixed32: "sfixed32",
	KindSfixed64: "sfixed64",
	KindSint32:   "sint32",
	KindSint64:   "sint64",
}

// String returns the protobuf name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindInvalid]
}

// CppType is the C++ representation class of a field kind.
type CppType uint8

// C++ representation classes.
const (
	CppInvalid CppType = iota
	CppInt32
	CppInt64
	CppUint32
	CppUint64
	CppDouble
	CppFloat
	CppBool
	CppEnum
	CppString
	CppMessage
)

var cppTypeNames = [...]string{
	CppInvalid: "invalid",
	CppInt32:   "int32",
	CppInt64:   "int64",
	CppUint32:  "uint32",
	CppUint64:  "uint64",
	CppDouble:  "double",
	CppFloat:   "float",
	CppBool:    "bool",
	CppEnum:    "enum",
	CppString:  "string",
	CppMessage: "message",
}

// String returns the name protoc uses for the C++ type class.
func (c CppType) String() string {
	if int(c) < len(cppTypeNames) {
		return cppTypeNames[c]
	}
	return cppTypeNames[CppInvalid]
}

// CppType returns the C++ representation class of the kind.
func (k Kind) CppType() CppType {
	switch k {
	case KindInt32, KindSint32, KindSfixed32:
		return CppInt32
	case KindInt64, KindSint64, KindSfixed64:
		return CppInt64
	case KindUint32, KindFixed32:
		return CppUint32
	case KindUint64, KindFixed64:
		return CppUint64
	case KindDouble:
		return CppDouble
	case KindFloat:
		return CppFloat
	case KindBool:
		return CppBool
	case KindEnum:
		return CppEnum
	case KindString, KindBytes:
		return CppString
	case KindMessage, KindGroup:
		return CppMessage
	default:
		return CppInvalid
	}
}

// Label is the cardinality of a field.
type Label uint8

// Field cardinalities.
const (
	LabelOptional Label = iota
	LabelRequired
	LabelRepeated
)

// File is a resolved .proto file.
type File struct {
	Name     string // path as imported, e.g. "proto_builder/tests/test_message.proto"
	Package  string
	Messages []*Message
	Enums    []*Enum
}

// Message is a resolved message type. Messages are compared by identity.
type Message struct {
	Name     string
	FullName string
	Parent   *Message // enclosing message, nil for top-level messages
	File     *File
	Fields   []*Field
	Nested   []*Message
	Enums    []*Enum
	Options  *MessageBuilderOptions
	MapEntry bool // synthesized key/value entry of a map field
}

// Field is a resolved message field.
type Field struct {
	Name        string
	FullName    string
	Number      int32
	Kind        Kind
	Label       Label
	Message     *Message // message type, or the map entry for map fields
	Enum        *Enum
	Default     string // textual default for scalar fields, enum value name for enums
	HasDefault  bool
	Annotations []*FieldBuilderOptions
	Parent      *Message
}

// Enum is a resolved enum type.
type Enum struct {
	Name     string
	FullName string
	Parent   *Message
	File     *File
	Values   []*EnumValue
}

// EnumValue is one value of an enum.
type EnumValue struct {
	Name   string
	Number int32
}

// IsRepeated reports whether the field is repeated (maps included).
func (f *Field) IsRepeated() bool { return f.Label == LabelRepeated }

// IsMap reports whether the field is a map field.
func (f *Field) IsMap() bool {
	return f.Label == LabelRepeated && f.Message != nil && f.Message.MapEntry
}

// IsMessage reports whether the field holds messages (maps included).
func (f *Field) IsMessage() bool { return f.Kind.CppType() == CppMessage }

// IsNonRepeatedMessage reports whether the field holds a single message.
func (f *Field) IsNonRepeatedMessage() bool { return f.IsMessage() && !f.IsRepeated() }

// MapKey returns the key field of a map field.
func (f *Field) MapKey() *Field {
	return f.mapEntryField(0)
}

// MapValue returns the value field of a map field.
func (f *Field) MapValue() *Field {
	return f.mapEntryField(1)
}

func (f *Field) mapEntryField(i int) *Field {
	if !f.IsMap() || len(f.Message.Fields) <= i {
		panic("schema: field " + f.FullName + " is not a well formed map field")
	}
	return f.Message.Fields[i]
}

// MapValueMessage returns the message type of the values of a map field,
// or nil if the field is not a map or its values are not messages.
func (f *Field) MapValueMessage() *Message {
	if !f.IsMap() {
		return nil
	}
	if v := f.MapValue(); v.IsMessage() {
		return v.Message
	}
	return nil
}

// Annotation returns the i-th builder annotation of the field, or an empty
// annotation if the field has fewer annotations.
func (f *Field) Annotation(i int) *FieldBuilderOptions {
	if i < len(f.Annotations) && f.Annotations[i] != nil {
		return f.Annotations[i]
	}
	return &FieldBuilderOptions{}
}

// Field returns the field with the given name, or nil.
func (m *Message) Field(name string) *Field {
	for _, f := range m.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// BuilderOptions returns the message level builder annotation, never nil.
func (m *Message) BuilderOptions() *MessageBuilderOptions {
	if m.Options == nil {
		return &MessageBuilderOptions{}
	}
	return m.Options
}

// Message returns the message with the given full name defined in the file
// (nested messages included), or nil.
func (f *File) Message(fullName string) *Message {
	var find func([]*Message) *Message
	find = func(ms []*Message) *Message {
		for _, m := range ms {
			if m.FullName == fullName {
				return m
			}
			if n := find(m.Nested); n != nil {
				return n
			}
		}
		return nil
	}
	return find(f.Messages)
}

// NewFile returns a file holding the given top-level messages and enums.
// It links every message, field and enum to its parents and fills in full
// names that were left empty.
func NewFile(name, pkg string, messages []*Message, enums ...*Enum) *File {
	f := &File{Name: name, Package: pkg, Messages: messages, Enums: enums}
	f.Link()
	return f
}

// Link sets parent and file references and derives missing full names.
func (f *File) Link() {
	for _, e := range f.Enums {
		e.File = f
		if e.FullName == "" {
			e.FullName = qualify(f.Package, e.Name)
		}
	}
	for _, m := range f.Messages {
		m.link(f, nil, f.Package)
	}
}

func (m *Message) link(f *File, parent *Message, scope string) {
	m.File, m.Parent = f, parent
	if m.FullName == "" {
		m.FullName = qualify(scope, m.Name)
	}
	for _, e := range m.Enums {
		e.File, e.Parent = f, m
		if e.FullName == "" {
			e.FullName = qualify(m.FullName, e.Name)
		}
	}
	for _, n := range m.Nested {
		n.link(f, m, m.FullName)
	}
	for _, fd := range m.Fields {
		fd.Parent = m
		if fd.FullName == "" {
			fd.FullName = qualify(m.FullName, fd.Name)
		}
	}
}

func qualify(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "." + name
}

// PackageAndClassName returns the package of the outermost message and the
// flattened class name of m (Outer_Inner for nested messages).
func PackageAndClassName(m *Message) (pkg, name string) {
	name = m.Name
	for m.Parent != nil {
		m = m.Parent
		name = m.Name + "_" + name
	}
	if pos := strings.LastIndexByte(m.FullName, '.'); pos >= 0 {
		pkg = m.FullName[:pos]
	}
	return pkg, name
}
