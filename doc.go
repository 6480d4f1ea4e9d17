// Package protobuilder generates C++ builder classes for protocol buffer
// messages.
//
// A builder exposes one fluent method per field of a message:
//
//	TestMessageBuilder()
//	    .SetOne(1)
//	    .AddTwo(2)
//	    .InsertEight({"key", 42});
//
// The generation pipeline is split into several packages:
//
//   - [schema]: the resolved message model and the builder annotations
//   - [compiler/config]: the type map that drives per-type generation policies
//   - [compiler/gen]: field and message expansion, output sinks and template assembly
//   - [compiler/load]: compilation of .proto files into the schema model
//
// The cmd/protobuilder command wires these together.
package protobuilder
