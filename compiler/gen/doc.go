// Package gen generates C++ builder classes for protobuf messages.
//
// For every message a builder class is emitted that exposes one fluent
// method per field, prefixed Set, Add or Insert by the field's label. Field
// annotations and the type map configuration (package config) control
// the parameter type, conversions, predicates, template parameters, batch
// variants and source location parameters of each method.
//
// # Architecture
//
// The generation pipeline follows this flow:
//
//	schema.Message (compiler/load)
//	        ↓
//	   MessageBuilder (one per message, own config and BufferWriter)
//	        ↓
//	   FieldBuilder (one per field annotation)
//	        ↓
//	   TemplateBuilder (Dictionary + text/template)
//	        ↓
//	   Result (header, source, interface) → FileWriter
//
// # Key Types
//
//   - BuilderWriter: line sink with a header, source and interface channel
//     and a CodeInfoCollector for includes and relative type names
//   - FieldBuilder: resolves the effective options of one field annotation
//     and writes the matching methods
//   - MessageBuilder: walks the fields of a message, flattening nested
//     message fields into setters of the root builder
//   - TemplateBuilder: generates all messages of one package concurrently
//     and expands the templates
//   - Config: settings of one generation run, built from Options
//
// # Writers
//
// Writers are composed from decorators:
//
//	w := OwnWrapped(NewBufferWriter("proto_builder"), Indent("  ", ""), NoDoubleEmptyLine)
//
// # Templates
//
// The builtin templates live in templates/*.tmpl. Template actions may be
// hidden in C++ comments so that templates stay valid C++:
//
//	// {{range .Builders}}
//	class {{.ClassName}};
//	// {{end}}
//
// # Usage
//
//	cfg, err := gen.NewConfig(
//		gen.WithHeader("foo/bar_builder.h"),
//		gen.WithSource("foo/bar_builder.cc"),
//	)
//	if err != nil {
//		return err
//	}
//	res, err := gen.Generate(ctx, cfg, messages)
//	if err != nil {
//		return err
//	}
//	return gen.WriteFiles(ctx, res.Files)
//
// # Error Handling
//
// Errors are typed and match the sentinels of the root package:
//
//   - SchemaError: messages that cannot be generated together
//   - OptionError: invalid generator options
//   - GenerationError: template and file output failures
//
// Invalid field annotations do not fail the run. The generated code then
// contains an #error block and an error is logged.
package gen
