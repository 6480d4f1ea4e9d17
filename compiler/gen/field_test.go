package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/syssam/protobuilder/compiler/config"
	"github.com/syssam/protobuilder/compiler/cpp"
	"github.com/syssam/protobuilder/internal/logx"
	"github.com/syssam/protobuilder/schema"
)

// parseOptions decodes a flow style YAML annotation such as
// "{output: TEMPLATE, type: '@ToInt64Seconds'}".
func parseOptions(t *testing.T, text string) *schema.FieldBuilderOptions {
	t.Helper()
	opts := &schema.FieldBuilderOptions{}
	if text != "" {
		require.NoError(t, yaml.Unmarshal([]byte(text), opts))
	}
	return opts
}

type fieldDataOption func(*FieldData)

func withRawData() fieldDataOption {
	return func(d *FieldData) { d.UseGetRawData, d.FirstMethod = true, true }
}

func withInterface() fieldDataOption { return func(d *FieldData) { d.MakeInterface = true } }

func withStatus() fieldDataOption { return func(d *FieldData) { d.UseStatus = true } }

// newTestFieldBuilder merges opts onto the field's own annotation, the way
// a message builder resolves a single annotation.
func newTestFieldBuilder(t *testing.T, w BuilderWriter, m *schema.Message, name, opts string, options ...fieldDataOption) *FieldBuilder {
	t.Helper()
	f := m.Field(name)
	require.NotNil(t, f, "field %q of %s", name, m.FullName)
	raw := f.Annotation(0).Clone()
	raw.Merge(parseOptions(t, opts))
	data := FieldData{
		Config:     config.Default(),
		Writer:     w,
		RawOptions: raw,
		Field:      f,
		ClassName:  "my_type",
		DataParent: "data_.",
		NameParent: "my_parent",
		Logger:     logx.Discard(),
	}
	for _, o := range options {
		o(&data)
	}
	return NewFieldBuilder(data)
}

// nonEmpty drops empty lines, which only separate the generated methods.
func nonEmpty(lines []string) []string {
	out := []string{}
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func writeTestField(t *testing.T, m *schema.Message, name, opts string, options ...fieldDataOption) *BufferWriter {
	t.Helper()
	w := NewBufferWriter()
	newTestFieldBuilder(t, w, m, name, opts, options...).WriteField()
	return w
}

func TestFieldBuilderTypes(t *testing.T) {
	s := newTestSchema()
	tests := []struct {
		field    string
		typ      string
		decorate bool
		include  string
	}{
		{"field_double", "double", false, ""},
		{"field_float", "float", false, ""},
		{"field_int64", "int64_t", false, ""},
		{"field_uint64", "uint64_t", false, ""},
		{"field_int32", "int32_t", false, ""},
		{"field_fixed64", "uint64_t", false, ""},
		{"field_fixed32", "uint32_t", false, ""},
		{"field_bool", "bool", false, ""},
		{"field_string", "std::string", true, includeString},
		{"fieldgroup", "::proto_builder::TestTypes::Optional::FieldGroup", true, includeTestTypes},
		{"field_message", "::proto_builder::TestTypes::SubMsg", true, includeTestTypes},
		{"field_bytes", "std::string", true, includeString},
		{"field_uint32", "uint32_t", false, ""},
		{"field_enum", "::proto_builder::TestTypes::Enum", false, includeTestTypes},
		{"field_sfixed32", "int32_t", false, ""},
		{"field_sfixed64", "int64_t", false, ""},
		{"field_sint32", "int32_t", false, ""},
		{"field_sint64", "int64_t", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			w := NewBufferWriter()
			b := newTestFieldBuilder(t, w, s.Optional, tt.field, "")
			assert.Equal(t, tt.typ, cpp.FieldType(s.Optional.Field(tt.field)))
			assert.Equal(t, tt.typ, b.RawCppType())
			want := tt.typ
			if tt.decorate {
				want = "const " + tt.typ + "&"
			}
			assert.Equal(t, want, b.ParameterType(true), "only class types get decorated")
			b.AddIncludes()
			if tt.include == "" {
				assert.Empty(t, w.CodeInfo().GetIncludes(Header))
			} else {
				assert.Equal(t, []string{tt.include}, w.CodeInfo().GetIncludes(Header))
			}
			assert.Empty(t, w.CodeInfo().GetIncludes(Source))
		})
	}
}

func TestFieldBuilderLookupAndConversion(t *testing.T) {
	s := newTestSchema()
	tests := []struct {
		options          string
		rawType          string
		parameterType    string
		decoratedType    string
		methodParam      string
		setValue         string
		includesDuration bool
	}{
		{"", "int32_t", "int32_t", "int32_t", "int32_t value", "value", false},
		{"{type: '@ToInt64Seconds'}", "absl::Duration", "absl::Duration", "absl::Duration", "absl::Duration value", "absl::ToInt64Seconds(value)", true},
		{"{type: '@ToInt64Milliseconds'}", "absl::Duration", "absl::Duration", "absl::Duration", "absl::Duration value", "absl::ToInt64Milliseconds(value)", true},
		{"{type: '@ToDoubleSeconds'}", "absl::Duration", "absl::Duration", "absl::Duration", "absl::Duration value", "absl::ToDoubleSeconds(value)", true},
		{"{type: '@ToDoubleMilliseconds'}", "absl::Duration", "absl::Duration", "absl::Duration", "absl::Duration value", "absl::ToDoubleMilliseconds(value)", true},
		{"{output: TEMPLATE}", "int32_t", "Value", "const Value&", "const Value& value", "value", false},
		{"{output: FOREACH}", "int32_t", "Container", "const Container&", "const Container& values", "v", false},
		{"{output: FOREACH_ADD}", "int32_t", "Container", "const Container&", "const Container& values", "v", false},
		{"{output: INITIALIZER_LIST}", "int32_t", "std::initializer_list<Item>", "std::initializer_list<Item>", "std::initializer_list<Item> values", "v", false},
		{"{output: TEMPLATE, type: '@ToInt64Seconds'}", "absl::Duration", "Value", "const Value&", "const Value& value", "absl::ToInt64Seconds(value)", true},
		{"{output: FOREACH, type: '@ToInt64Seconds'}", "absl::Duration", "Container", "const Container&", "const Container& values", "absl::ToInt64Seconds(v)", true},
		{"{output: FOREACH_ADD, type: '@ToInt64Seconds'}", "absl::Duration", "Container", "const Container&", "const Container& values", "absl::ToInt64Seconds(v)", true},
		{"{output: INITIALIZER_LIST, type: '@ToInt64Seconds'}", "absl::Duration", "std::initializer_list<Item>", "std::initializer_list<Item>", "std::initializer_list<Item> values", "absl::ToInt64Seconds(v)", true},
		{"{type: '@ToInt64Seconds', conversion: ''}", "absl::Duration", "absl::Duration", "absl::Duration", "absl::Duration value", "value", true},
		{"{value: '42'}", "int32_t", "int32_t", "int32_t", "", "42", false},
		{"{value: '42', type: '@ToInt64Seconds'}", "absl::Duration", "absl::Duration", "absl::Duration", "", "absl::ToInt64Seconds(42)", true},
		{"{value: '42', type: '@ToInt64Seconds', output: FOREACH}", "absl::Duration", "Container", "const Container&", "", "absl::ToInt64Seconds(42)", true},
		{"{value: '42', type: '@ToInt64Seconds', output: FOREACH_ADD}", "absl::Duration", "Container", "const Container&", "", "absl::ToInt64Seconds(42)", true},
		{"{value: '42', type: '@ToInt64Seconds', output: INITIALIZER_LIST}", "absl::Duration", "std::initializer_list<Item>", "std::initializer_list<Item>", "", "absl::ToInt64Seconds(42)", true},
	}
	for _, tt := range tests {
		t.Run(tt.options, func(t *testing.T) {
			w := NewBufferWriter()
			b := newTestFieldBuilder(t, w, s.TestMessage, "one", tt.options)
			assert.Equal(t, tt.rawType, b.RawCppType())
			assert.Equal(t, tt.parameterType, b.ParameterType(false))
			assert.Equal(t, tt.decoratedType, b.ParameterType(true))
			assert.Equal(t, tt.methodParam, b.MethodParam(Header))
			assert.Equal(t, tt.setValue, b.SetValue())
			b.AddIncludes()
			if tt.includesDuration {
				assert.Equal(t, []string{includeDuration}, w.CodeInfo().GetIncludes(Header))
			} else {
				assert.Empty(t, w.CodeInfo().GetIncludes(Header))
			}
			assert.Empty(t, w.CodeInfo().GetIncludes(Source))
		})
	}
}

func TestFieldBuilderRelativeFieldType(t *testing.T) {
	s := newTestSchema()
	tests := []struct {
		field, options                   string
		fieldType, parameterType         string
		relativeField, relativeParameter string
	}{
		{
			"field_enum", "",
			"::proto_builder::TestTypes::Enum", "::proto_builder::TestTypes::Enum",
			"TestTypes::Enum", "TestTypes::Enum",
		},
		{
			"field_message", "",
			"::proto_builder::TestTypes::SubMsg", "::proto_builder::TestTypes::SubMsg",
			"TestTypes::SubMsg", "TestTypes::SubMsg",
		},
		{
			"field_int64", "{type: '::proto_builder::Test'}",
			"int64_t", "::proto_builder::Test",
			"int64_t", "Test",
		},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			b := newTestFieldBuilder(t, NewBufferWriter(), s.Optional, tt.field, tt.options)
			assert.Equal(t, tt.fieldType, b.RelativeFieldType())
			assert.Equal(t, tt.parameterType, b.ParameterType(false))

			b = newTestFieldBuilder(t, NewBufferWriter("proto_builder"), s.Optional, tt.field, tt.options)
			assert.Equal(t, tt.relativeField, b.RelativeFieldType())
			assert.Equal(t, tt.relativeParameter, b.ParameterType(false))
		})
	}
}

func TestFieldBuilderIsValidOrWriteError(t *testing.T) {
	s := newTestSchema()
	tests := []struct {
		field, options string
		valid          bool
	}{
		{"one", "{value: ''}", true},
		{"two", "{value: ''}", true},
		{"two", "{output: TEMPLATE}", true},
		{"two", "{output: FOREACH}", true},
		{"two", "{output: FOREACH_ADD}", true},
		{"two", "{output: INITIALIZER_LIST}", true},
		{"two", "{value: '', output: TEMPLATE}", false},
		{"two", "{value: '', output: FOREACH}", false},
		{"two", "{value: '', output: FOREACH_ADD}", false},
		{"one", "{output: TEMPLATE}", true},
		{"one", "{value: '', output: TEMPLATE}", false},
		{"one", "{output: FOREACH}", false},
		{"one", "{output: FOREACH_ADD}", false},
		{"one", "{output: INITIALIZER_LIST}", false},
	}
	for _, tt := range tests {
		t.Run(tt.field+" "+tt.options, func(t *testing.T) {
			w := NewBufferWriter()
			b := newTestFieldBuilder(t, w, s.TestMessage, tt.field, tt.options)
			assert.Equal(t, tt.valid, b.IsValidOrWriteError())
			assert.Empty(t, w.From(Source))
			assert.Empty(t, w.From(Interface))
			if tt.valid {
				assert.Empty(t, w.From(Header))
				return
			}
			lines := w.From(Header)
			require.Len(t, lines, 5)
			assert.Equal(t, "", lines[0])
			assert.Regexp(t, `^#error Cannot use 'output: [A-Z_]+' `, lines[1])
			assert.Equal(t, "#error Field: proto_builder.TestMessage."+tt.field, lines[2])
			assert.Regexp(t, `^#error FieldBuilderOptions: <output: [A-Z_]+.*>$`, lines[3])
			assert.Equal(t, "", lines[4])
		})
	}
}

func TestFieldBuilderWriteErrorChannels(t *testing.T) {
	s := newTestSchema()
	w := writeTestField(t, s.TestMessage, "one", "{output: FOREACH}", withInterface())
	assert.Len(t, nonEmpty(w.From(Header)), 3)
	assert.Empty(t, w.From(Source))
	assert.Len(t, nonEmpty(w.From(Interface)), 3)
	assert.Equal(t, "#error Cannot use 'output: FOREACH' with a non repeated field.", w.From(Interface)[1])
}

func TestFieldBuilderWriteFieldOutputModes(t *testing.T) {
	s := newTestSchema()
	tests := []struct {
		field  string
		header []string
		source []string
	}{
		{
			"one",
			[]string{"my_type& Setmy_parentOne(int32_t value);"},
			[]string{
				"my_type& my_type::Setmy_parentOne(int32_t value) {",
				"  data_.set_one(value);",
				"  return *this;",
				"}",
			},
		},
		{
			"namespace",
			[]string{"my_type& Setmy_parentNamespace(int32_t value);"},
			[]string{
				"my_type& my_type::Setmy_parentNamespace(int32_t value) {",
				"  data_.set_namespace_(value);",
				"  return *this;",
				"}",
			},
		},
		{
			"two",
			[]string{"my_type& Addmy_parentTwo(int32_t value);"},
			[]string{
				"my_type& my_type::Addmy_parentTwo(int32_t value) {",
				"  data_.add_two(value);",
				"  return *this;",
				"}",
			},
		},
		{
			"and",
			[]string{"my_type& Addmy_parentAnd(int32_t value);"},
			[]string{
				"my_type& my_type::Addmy_parentAnd(int32_t value) {",
				"  data_.add_and_(value);",
				"  return *this;",
				"}",
			},
		},
	}
	modes := []struct {
		output         string
		header, source bool
	}{
		{"SKIP", false, false},
		{"HEADER", true, false},
		{"SOURCE", false, true},
		{"BOTH", true, true},
	}
	for _, tt := range tests {
		for _, m := range modes {
			t.Run(tt.field+"/"+m.output, func(t *testing.T) {
				w := writeTestField(t, s.TestMessage, tt.field, "{output: "+m.output+"}")
				if m.header {
					assert.Equal(t, tt.header, nonEmpty(w.From(Header)))
				} else {
					assert.Empty(t, nonEmpty(w.From(Header)))
				}
				if m.source {
					assert.Equal(t, tt.source, nonEmpty(w.From(Source)))
				} else {
					assert.Empty(t, nonEmpty(w.From(Source)))
				}
				assert.Empty(t, w.From(Interface))
			})
		}
	}
}

func TestFieldBuilderWriteField(t *testing.T) {
	s := newTestSchema()
	const enableIfInt32 = "template <class Container, class = typename std::enable_if<!std::is_convertible<Container, int32_t>::value>::type>"
	tests := []struct {
		name     string
		message  *schema.Message
		field    string
		options  string
		header   []string
		source   []string
		includes []string
	}{
		{
			name:    "conversion",
			message: s.TestMessage, field: "one", options: "{type: '@ToInt64Seconds'}",
			header: []string{"my_type& Setmy_parentOne(absl::Duration value);"},
			source: []string{
				"my_type& my_type::Setmy_parentOne(absl::Duration value) {",
				"  data_.set_one(absl::ToInt64Seconds(value));",
				"  return *this;",
				"}",
			},
			includes: []string{includeDuration},
		},
		{
			name:    "repeated conversion",
			message: s.TestMessage, field: "two", options: "{type: '@ToInt64Seconds'}",
			header: []string{"my_type& Addmy_parentTwo(absl::Duration value);"},
			source: []string{
				"my_type& my_type::Addmy_parentTwo(absl::Duration value) {",
				"  data_.add_two(absl::ToInt64Seconds(value));",
				"  return *this;",
				"}",
			},
			includes: []string{includeDuration},
		},
		{
			name:    "repeated template",
			message: s.TestMessage, field: "two", options: "{output: TEMPLATE}",
			header: []string{
				"template <class Value>",
				"my_type& Addmy_parentTwo(const Value& value) {",
				"  data_.add_two(value);",
				"  return *this;",
				"}",
			},
		},
		{
			name:    "repeated template conversion",
			message: s.TestMessage, field: "two", options: "{output: TEMPLATE, type: '@ToInt64Seconds'}",
			header: []string{
				"template <class Value>",
				"my_type& Addmy_parentTwo(const Value& value) {",
				"  data_.add_two(absl::ToInt64Seconds(value));",
				"  return *this;",
				"}",
			},
			includes: []string{includeDuration},
		},
		{
			name:    "repeated foreach",
			message: s.TestMessage, field: "two", options: "{output: FOREACH}",
			header: []string{
				enableIfInt32,
				"my_type& Addmy_parentTwo(const Container& values) {",
				"  for (const auto& v : values) {",
				"    data_.add_two(v);",
				"  }",
				"  return *this;",
				"}",
			},
		},
		{
			name:    "repeated foreach conversion",
			message: s.TestMessage, field: "two", options: "{output: FOREACH, type: '@ToInt64Seconds'}",
			header: []string{
				enableIfInt32,
				"my_type& Addmy_parentTwo(const Container& values) {",
				"  for (const auto& v : values) {",
				"    data_.add_two(absl::ToInt64Seconds(v));",
				"  }",
				"  return *this;",
				"}",
			},
			includes: []string{includeDuration},
		},
		{
			name:    "repeated foreach add",
			message: s.TestMessage, field: "two", options: "{output: FOREACH_ADD}",
			header: []string{
				enableIfInt32,
				"my_type& Addmy_parentTwo(const Container& values) {",
				"  for (const auto& v : values) {",
				"    Addmy_parentTwo(v);",
				"  }",
				"  return *this;",
				"}",
			},
		},
		{
			name:    "repeated foreach add conversion",
			message: s.TestMessage, field: "two", options: "{output: FOREACH_ADD, type: '@ToInt64Seconds'}",
			header: []string{
				enableIfInt32,
				"my_type& Addmy_parentTwo(const Container& values) {",
				"  for (const auto& v : values) {",
				"    Addmy_parentTwo(absl::ToInt64Seconds(v));",
				"  }",
				"  return *this;",
				"}",
			},
			includes: []string{includeDuration},
		},
		{
			name:    "repeated initializer list",
			message: s.TestMessage, field: "two", options: "{output: INITIALIZER_LIST}",
			header: []string{
				"template <class Item>",
				"my_type& Addmy_parentTwo(std::initializer_list<Item> values) {",
				"  for (const auto& v : values) {",
				"    Addmy_parentTwo(v);",
				"  }",
				"  return *this;",
				"}",
			},
		},
		{
			name:    "repeated initializer list conversion",
			message: s.TestMessage, field: "two", options: "{output: INITIALIZER_LIST, type: '@ToInt64Seconds'}",
			header: []string{
				"template <class Item>",
				"my_type& Addmy_parentTwo(std::initializer_list<Item> values) {",
				"  for (const auto& v : values) {",
				"    Addmy_parentTwo(absl::ToInt64Seconds(v));",
				"  }",
				"  return *this;",
				"}",
			},
			includes: []string{includeDuration},
		},
		{
			name:    "non repeated message",
			message: s.TestMessage, field: "three",
			header: []string{"my_type& Setmy_parentThree(const ::proto_builder::TestMessage::Sub& value);"},
			source: []string{
				"my_type& my_type::Setmy_parentThree(const ::proto_builder::TestMessage::Sub& value) {",
				"  *data_.mutable_three() = value;",
				"  return *this;",
				"}",
			},
			includes: []string{includeTestMessage},
		},
		{
			name:    "repeated message",
			message: s.TestMessage, field: "four",
			header: []string{"my_type& Addmy_parentFour(const ::proto_builder::TestMessage::Sub& value);"},
			source: []string{
				"my_type& my_type::Addmy_parentFour(const ::proto_builder::TestMessage::Sub& value) {",
				"  *data_.add_four() = value;",
				"  return *this;",
				"}",
			},
			includes: []string{includeTestMessage},
		},
		{
			name:    "string annotated as string",
			message: s.TestMessage, field: "string22",
			header: []string{"my_type& Setmy_parentString22(const std::string& value);"},
			source: []string{
				"my_type& my_type::Setmy_parentString22(const std::string& value) {",
				"  data_.set_string22(value);",
				"  return *this;",
				"}",
			},
			includes: []string{includeString},
		},
		{
			name:    "string annotated as string_view",
			message: s.TestMessage, field: "string24",
			header: []string{"my_type& Setmy_parentString24(absl::string_view value);"},
			source: []string{
				"my_type& my_type::Setmy_parentString24(absl::string_view value) {",
				"  data_.set_string24(std::string(value));",
				"  return *this;",
				"}",
			},
			includes: []string{includeStringView},
		},
		{
			name:    "bytes annotated as bytes",
			message: s.TestMessage, field: "bytes26",
			header: []string{"my_type& Setmy_parentBytes26(const std::string& value);"},
			source: []string{
				"my_type& my_type::Setmy_parentBytes26(const std::string& value) {",
				"  data_.set_bytes26(value);",
				"  return *this;",
				"}",
			},
			includes: []string{includeString},
		},
		{
			name:    "map",
			message: s.TestMessage, field: "eight",
			header: []string{"my_type& Insertmy_parentEight(const ::google::protobuf::Map<int32_t, std::string>::value_type& key_value_pair);"},
			source: []string{
				"my_type& my_type::Insertmy_parentEight(const ::google::protobuf::Map<int32_t, std::string>::value_type& key_value_pair) {",
				"  data_.mutable_eight()->insert(key_value_pair);",
				"  return *this;",
				"}",
			},
			includes: []string{includeTestMessage},
		},
		{
			name:    "map foreach",
			message: s.TestMessage, field: "eight", options: "{output: FOREACH}",
			header: []string{
				"template <class Container, class = typename std::enable_if<!std::is_convertible<Container, ::google::protobuf::Map<int32_t, std::string>::value_type>::value>::type>",
				"my_type& Insertmy_parentEight(const Container& key_value_pairs) {",
				"  data_.mutable_eight()->insert(key_value_pairs.begin(), key_value_pairs.end());",
				"  return *this;",
				"}",
			},
			includes: []string{includeTestMessage},
		},
		{
			name:    "map foreach add",
			message: s.TestMessage, field: "eight", options: "{output: FOREACH_ADD}",
			header: []string{
				"template <class Container, class = typename std::enable_if<!std::is_convertible<Container, ::google::protobuf::Map<int32_t, std::string>::value_type>::value>::type>",
				"my_type& Insertmy_parentEight(const Container& key_value_pairs) {",
				"  for (const auto& v : key_value_pairs) {",
				"    Insertmy_parentEight(::google::protobuf::Map<int32_t, std::string>::value_type(v.first, v.second));",
				"  }",
				"  return *this;",
				"}",
			},
			includes: []string{includeTestMessage},
		},
		{
			name:    "map initializer list",
			message: s.TestMessage, field: "eight", options: "{output: INITIALIZER_LIST}",
			header: []string{
				"my_type& Insertmy_parentEight(std::initializer_list<::google::protobuf::Map<int32_t, std::string>::value_type> key_value_pairs) {",
				"  data_.mutable_eight()->insert(key_value_pairs.begin(), key_value_pairs.end());",
				"  return *this;",
				"}",
			},
			includes: []string{includeTestMessage},
		},
		{
			name:    "source location",
			message: s.SourceLocation, field: "target",
			options: "{output: BOTH, name: Target, add_source_location: true}",
			header: []string{
				"my_type& Addmy_parentTarget(const std::string& value, proto_builder::oss::SourceLocation source_location = proto_builder::oss::SourceLocation::current());",
			},
			source: []string{
				"my_type& my_type::Addmy_parentTarget(const std::string& value, proto_builder::oss::SourceLocation source_location) {",
				"  data_.add_target(value);",
				"  return *this;",
				"}",
			},
			includes: []string{includeSourceLocation, includeString},
		},
		{
			name:    "source location initializer list",
			message: s.SourceLocation, field: "target",
			options: "{output: INITIALIZER_LIST, name: Targets, add_source_location: true}",
			header: []string{
				"template <class Item>",
				"my_type& Addmy_parentTargets(std::initializer_list<Item> values, proto_builder::oss::SourceLocation source_location = proto_builder::oss::SourceLocation::current()) {",
				"  for (const auto& v : values) {",
				"    Addmy_parentTarget(v, source_location);",
				"  }",
				"  return *this;",
				"}",
			},
			includes: []string{includeSourceLocation, includeString},
		},
		{
			name:    "data and default placeholders",
			message: s.TestMessage, field: "one",
			options: "{output: SOURCE, conversion: '%fn%(@value@, @default@, @type@)', data: {fn: Convert}}",
			source: []string{
				"my_type& my_type::Setmy_parentOne(int32_t value) {",
				"  data_.set_one(Convert(value, {}, int32_t));",
				"  return *this;",
				"}",
			},
		},
		{
			name:    "predicate",
			message: s.TestMessage, field: "one",
			options: "{output: SOURCE, predicate: 'Check(@value@)'}",
			source: []string{
				"my_type& my_type::Setmy_parentOne(int32_t value) {",
				"if (!Check(value).ok()) {",
				"  return *this;",
				"}",
				"  data_.set_one(value);",
				"  return *this;",
				"}",
			},
		},
		{
			name:    "literal value",
			message: s.TestMessage, field: "one",
			options: "{output: SOURCE, name: Answer, value: '42'}",
			source: []string{
				"my_type& my_type::Setmy_parentAnswer() {",
				"  data_.set_one(42);",
				"  return *this;",
				"}",
			},
		},
		{
			name:    "override",
			message: s.TestMessage, field: "one",
			options: "{override: true}",
			header:  []string{"my_type& Setmy_parentOne(int32_t value) override;"},
			source: []string{
				"my_type& my_type::Setmy_parentOne(int32_t value) {",
				"  data_.set_one(value);",
				"  return *this;",
				"}",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := writeTestField(t, tt.message, tt.field, tt.options)
			assert.Equal(t, nonEmpty(tt.header), nonEmpty(w.From(Header)))
			assert.Equal(t, nonEmpty(tt.source), nonEmpty(w.From(Source)))
			assert.Empty(t, w.From(Interface))
			if tt.includes == nil {
				assert.Empty(t, w.CodeInfo().GetIncludes(Header))
			} else {
				assert.Equal(t, tt.includes, w.CodeInfo().GetIncludes(Header))
			}
			assert.Empty(t, w.CodeInfo().GetIncludes(Source))
		})
	}
}

func TestFieldBuilderPredicateWithStatus(t *testing.T) {
	s := newTestSchema()
	w := writeTestField(t, s.TestMessage, "one", "{output: SOURCE, predicate: 'Check(@value@)'}", withStatus())
	assert.Equal(t, []string{
		"my_type& my_type::Setmy_parentOne(int32_t value) {",
		"const auto status = Check(value);",
		"if (!status.ok()) {",
		"  if (status_.ok()) {",
		"    UpdateStatus(status);",
		"  }",
		"  return *this;",
		"}",
		"  data_.set_one(value);",
		"  return *this;",
		"}",
	}, nonEmpty(w.From(Source)))
}

func TestFieldBuilderMethodNameDigits(t *testing.T) {
	points, entry := mapField("points_2d", "Points2dEntry", field("", schema.KindString), field("", schema.KindInt32))
	m := &schema.Message{Name: "Shape", Nested: []*schema.Message{entry}, Fields: number([]*schema.Field{
		field("point_3d", schema.KindInt32),
		repeated(field("field_1_2b", schema.KindString)),
		points,
	})}
	schema.NewFile("shape.proto", "geo", []*schema.Message{m})
	noParent := func(d *FieldData) { d.NameParent = "" }

	tests := []struct {
		field, want string
	}{
		{"point_3d", "SetPoint3d"},
		{"field_1_2b", "AddField12b"},
		{"points_2d", "InsertPoints2d"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			b := newTestFieldBuilder(t, NewBufferWriter(), m, tt.field, "", noParent)
			assert.Equal(t, tt.want, b.MethodName())
		})
	}

	w := writeTestField(t, m, "point_3d", "", noParent)
	assert.Contains(t, nonEmpty(w.From(Header)), "my_type& SetPoint3d(int32_t value);")
}

func TestFieldBuilderInterface(t *testing.T) {
	s := newTestSchema()
	w := writeTestField(t, s.TestMessage, "one", "", withInterface())
	assert.Equal(t, []string{"my_type& Setmy_parentOne(int32_t value) override;"}, nonEmpty(w.From(Header)))
	assert.Equal(t, []string{"virtual my_type& Setmy_parentOne(int32_t value) =0;"}, nonEmpty(w.From(Interface)))
	assert.Len(t, nonEmpty(w.From(Source)), 4)
}

func TestFieldBuilderSetFromBuilder(t *testing.T) {
	s := newTestSchema()
	t.Run("message", func(t *testing.T) {
		w := writeTestField(t, s.TestMessage, "three", "{output: HEADER}", withRawData())
		assert.Equal(t, []string{
			"my_type& Setmy_parentThree(const ::proto_builder::TestMessage::Sub& value);",
			"template <",
			"    class Builder,",
			"    class = std::enable_if_t<std::is_same_v<",
			"        std::invoke_result_t<",
			"            decltype(&Builder::MaybeGetRawData), Builder>,",
			"        absl::StatusOr<::proto_builder::TestMessage::Sub>>>>",
			"my_type& Setmy_parentThree(Builder builder) {",
			"  auto value = std::move(builder).MaybeGetRawData();",
			"  if (value.ok()) {",
			"    Setmy_parentThree(*std::move(value));",
			"  } else {",
			"    UpdateStatus(value.status());",
			"  }",
			"  return *this;",
			"}",
		}, nonEmpty(w.From(Header)))
	})

	t.Run("map with message values", func(t *testing.T) {
		w := writeTestField(t, s.TestMessage, "nine", "{output: HEADER}", withRawData())
		lines := nonEmpty(w.From(Header))
		require.Len(t, lines, 16)
		assert.Equal(t, "        absl::StatusOr<::proto_builder::MapValueTestMessage>>>>", lines[6])
		assert.Equal(t, "my_type& Insertmy_parentNine(const std::string& key, Builder builder) {", lines[7])
		assert.Equal(t, "    Insertmy_parentNine({key, *std::move(value)});", lines[10])
	})

	t.Run("scalars have no overload", func(t *testing.T) {
		w := writeTestField(t, s.TestMessage, "one", "{output: HEADER}", withRawData())
		assert.Len(t, nonEmpty(w.From(Header)), 1)
	})

	t.Run("map with scalar values have no overload", func(t *testing.T) {
		w := writeTestField(t, s.TestMessage, "eight", "{output: HEADER}", withRawData())
		assert.Len(t, nonEmpty(w.From(Header)), 1)
	})
}

func TestFieldBuilderIdempotent(t *testing.T) {
	s := newTestSchema()
	for _, opts := range []string{"", "{output: FOREACH_ADD, type: '@ToInt64Seconds'}"} {
		first := writeTestField(t, s.TestMessage, "two", opts)
		second := writeTestField(t, s.TestMessage, "two", opts)
		for _, to := range Channels {
			assert.Equal(t, first.From(to), second.From(to))
			assert.Equal(t, first.CodeInfo().GetIncludes(to), second.CodeInfo().GetIncludes(to))
		}
	}
}

func TestFieldBuilderSpecialType(t *testing.T) {
	s := newTestSchema()
	assert.NotPanics(t, func() {
		b := newTestFieldBuilder(t, NewBufferWriter(), s.TestMessage, "one", "{type: '%Status'}")
		assert.Equal(t, "%Status", b.RawCppType())
	})
}
