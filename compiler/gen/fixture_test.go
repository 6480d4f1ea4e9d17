package gen

import (
	"fmt"

	"github.com/syssam/protobuilder/schema"
)

const (
	includeString         = "<string>"
	includeStringView     = `"absl/strings/string_view.h"`
	includeDuration       = `"absl/time/time.h"`
	includeTestMessage    = `"proto_builder/tests/test_message.pb.h"  // IWYU pragma: export`
	includeTestTypes      = `"proto_builder/tests/test_types.pb.h"  // IWYU pragma: export`
	includeSourceLocation = `"proto_builder/oss/source_location.h"`
)

// testSchema mirrors the messages of the proto_builder/tests protos.
type testSchema struct {
	TestMessage    *schema.Message
	Sub            *schema.Message
	Extra          *schema.Message
	MapValue       *schema.Message
	TestTypes      *schema.Message
	Optional       *schema.Message
	SourceLocation *schema.Message
	Recursive      *schema.Message
	Chain          []*schema.Message
}

func field(name string, kind schema.Kind, annotations ...*schema.FieldBuilderOptions) *schema.Field {
	return &schema.Field{Name: name, Kind: kind, Annotations: annotations}
}

func repeated(f *schema.Field) *schema.Field {
	f.Label = schema.LabelRepeated
	return f
}

func messageField(name string, m *schema.Message, annotations ...*schema.FieldBuilderOptions) *schema.Field {
	f := field(name, schema.KindMessage, annotations...)
	f.Message = m
	return f
}

// mapField returns a map field and its synthesized entry, which must be
// nested in the field's message.
func mapField(name, entry string, key, value *schema.Field) (*schema.Field, *schema.Message) {
	key.Name, value.Name = "key", "value"
	key.Number, value.Number = 1, 2
	e := &schema.Message{Name: entry, MapEntry: true, Fields: []*schema.Field{key, value}}
	return repeated(messageField(name, e)), e
}

func number(fields []*schema.Field) []*schema.Field {
	for i, f := range fields {
		if f.Number == 0 {
			f.Number = int32(i + 1)
		}
	}
	return fields
}

func newTestSchema() *testSchema {
	s := &testSchema{}

	s.Extra = &schema.Message{Name: "ExtraTestMessage", Fields: number([]*schema.Field{
		field("extra", schema.KindInt32),
	})}
	schema.NewFile("proto_builder/tests/extra_test_message.proto", "proto_builder", []*schema.Message{s.Extra})

	s.MapValue = &schema.Message{Name: "MapValueTestMessage", Fields: number([]*schema.Field{
		field("label", schema.KindString),
	})}
	schema.NewFile("proto_builder/tests/map_value_test_message.proto", "proto_builder", []*schema.Message{s.MapValue})

	s.Sub = &schema.Message{Name: "Sub", Fields: number([]*schema.Field{
		field("sub_one", schema.KindString),
		repeated(field("sub_two", schema.KindString)),
		field("__sub__3__", schema.KindString),
	})}
	eight, eightEntry := mapField("eight", "EightEntry", field("", schema.KindInt32), field("", schema.KindString))
	nineValue := messageField("", s.MapValue)
	nine, nineEntry := mapField("nine", "NineEntry", field("", schema.KindString), nineValue)
	s.TestMessage = &schema.Message{
		Name: "TestMessage",
		Fields: number([]*schema.Field{
			field("one", schema.KindInt32),
			repeated(field("two", schema.KindInt32)),
			messageField("three", s.Sub),
			repeated(messageField("four", s.Sub)),
			messageField("five", s.Extra),
			field("seven", schema.KindString),
			eight,
			nine,
			field("string22", schema.KindString, &schema.FieldBuilderOptions{Type: schema.String("string")}),
			field("string24", schema.KindString, &schema.FieldBuilderOptions{Type: schema.String("@absl::string_view")}),
			field("bytes26", schema.KindBytes, &schema.FieldBuilderOptions{Type: schema.String("bytes")}),
			field("namespace", schema.KindInt32),
			repeated(field("and", schema.KindInt32)),
			messageField("or", s.Sub),
			repeated(messageField("not", s.Sub)),
			field("operator", schema.KindInt32),
		}),
		Nested: []*schema.Message{s.Sub, eightEntry, nineEntry},
	}
	schema.NewFile("proto_builder/tests/test_message.proto", "proto_builder", []*schema.Message{s.TestMessage})

	enum := &schema.Enum{Name: "Enum", Values: []*schema.EnumValue{{Name: "ENUM_A", Number: 0}, {Name: "ENUM_B", Number: 1}}}
	subMsg := &schema.Message{Name: "SubMsg"}
	group := &schema.Message{Name: "FieldGroup"}
	fieldEnum := field("field_enum", schema.KindEnum)
	fieldEnum.Enum = enum
	fieldGroup := messageField("fieldgroup", group)
	fieldGroup.Kind = schema.KindGroup
	s.Optional = &schema.Message{
		Name: "Optional",
		Fields: number([]*schema.Field{
			field("field_double", schema.KindDouble),
			field("field_float", schema.KindFloat),
			field("field_int64", schema.KindInt64),
			field("field_uint64", schema.KindUint64),
			field("field_int32", schema.KindInt32),
			field("field_fixed64", schema.KindFixed64),
			field("field_fixed32", schema.KindFixed32),
			field("field_bool", schema.KindBool),
			field("field_string", schema.KindString),
			fieldGroup,
			messageField("field_message", subMsg),
			field("field_bytes", schema.KindBytes),
			field("field_uint32", schema.KindUint32),
			fieldEnum,
			field("field_sfixed32", schema.KindSfixed32),
			field("field_sfixed64", schema.KindSfixed64),
			field("field_sint32", schema.KindSint32),
			field("field_sint64", schema.KindSint64),
		}),
		Nested: []*schema.Message{group},
	}
	s.TestTypes = &schema.Message{
		Name:   "TestTypes",
		Nested: []*schema.Message{subMsg, s.Optional},
		Enums:  []*schema.Enum{enum},
	}
	schema.NewFile("proto_builder/tests/test_types.proto", "proto_builder", []*schema.Message{s.TestTypes})

	s.SourceLocation = &schema.Message{Name: "SourceLocation", Fields: number([]*schema.Field{
		repeated(field("target", schema.KindString)),
	})}
	schema.NewFile("proto_builder/tests/source_location.proto", "proto_builder.tests", []*schema.Message{s.SourceLocation})

	s.Recursive = &schema.Message{Name: "Recursive"}
	s.Recursive.Fields = number([]*schema.Field{
		field("value", schema.KindInt32),
		messageField("child", s.Recursive),
	})
	const chainLength = 8
	s.Chain = make([]*schema.Message, chainLength)
	for i := chainLength - 1; i >= 0; i-- {
		m := &schema.Message{Name: fmt.Sprintf("Level%d", i)}
		m.Fields = []*schema.Field{field("value", schema.KindInt32)}
		if i+1 < chainLength {
			m.Fields = append(m.Fields, messageField("next", s.Chain[i+1]))
		}
		number(m.Fields)
		s.Chain[i] = m
	}
	schema.NewFile("proto_builder/tests/recursive.proto", "proto_builder",
		append([]*schema.Message{s.Recursive}, s.Chain...))
	return s
}
