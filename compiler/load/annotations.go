package load

import (
	_ "embed"
	"fmt"

	json "github.com/goccy/go-json"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/syssam/protobuilder/schema"
)

// AnnotationsFile is the import path of the builder annotation definitions.
const AnnotationsFile = "protobuilder/protobuilder.proto"

//go:embed protobuilder/protobuilder.proto
var annotationsProto string

const (
	fieldExtension   protoreflect.FullName = "protobuilder.field"
	messageExtension protoreflect.FullName = "protobuilder.message"
)

// annotations decodes the builder annotations of descriptor options.
// Options are re-parsed with the annotation extensions registered, then
// rendered as JSON and decoded into the schema option types.
type annotations struct {
	types   *protoregistry.Types
	field   protoreflect.ExtensionType
	message protoreflect.ExtensionType
}

func newAnnotations(r protodesc.Resolver) (*annotations, error) {
	a := &annotations{types: new(protoregistry.Types)}
	var err error
	if a.field, err = a.register(r, fieldExtension); err != nil {
		return nil, err
	}
	if a.message, err = a.register(r, messageExtension); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *annotations) register(r protodesc.Resolver, name protoreflect.FullName) (protoreflect.ExtensionType, error) {
	d, err := r.FindDescriptorByName(name)
	if err != nil {
		return nil, fmt.Errorf("load: annotation extension %s: %w", name, err)
	}
	xd, ok := d.(protoreflect.ExtensionDescriptor)
	if !ok {
		return nil, fmt.Errorf("load: %s is not an extension", name)
	}
	xt := dynamicpb.NewExtensionType(xd)
	if err := a.types.RegisterExtension(xt); err != nil {
		return nil, fmt.Errorf("load: register %s: %w", name, err)
	}
	return xt, nil
}

func (a *annotations) reparse(from, to proto.Message) error {
	if from == nil || !from.ProtoReflect().IsValid() {
		return nil
	}
	buf, err := proto.Marshal(from)
	if err != nil {
		return err
	}
	return proto.UnmarshalOptions{Resolver: a.types}.Unmarshal(buf, to)
}

func decodeOptions(m protoreflect.Message, v any) error {
	buf, err := protojson.MarshalOptions{UseProtoNames: true}.Marshal(m.Interface())
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, v)
}

// fieldOptions returns the field annotations in declaration order.
func (a *annotations) fieldOptions(fd protoreflect.FieldDescriptor) ([]*schema.FieldBuilderOptions, error) {
	opts := &descriptorpb.FieldOptions{}
	if err := a.reparse(fd.Options(), opts); err != nil {
		return nil, fmt.Errorf("field %s options: %w", fd.FullName(), err)
	}
	if !proto.HasExtension(opts, a.field) {
		return nil, nil
	}
	list := opts.ProtoReflect().Get(a.field.TypeDescriptor()).List()
	out := make([]*schema.FieldBuilderOptions, 0, list.Len())
	for i := range list.Len() {
		o := &schema.FieldBuilderOptions{}
		if err := decodeOptions(list.Get(i).Message(), o); err != nil {
			return nil, fmt.Errorf("field %s annotation %d: %w", fd.FullName(), i, err)
		}
		out = append(out, o)
	}
	return out, nil
}

// messageOptions returns the message annotation, or nil.
func (a *annotations) messageOptions(md protoreflect.MessageDescriptor) (*schema.MessageBuilderOptions, error) {
	opts := &descriptorpb.MessageOptions{}
	if err := a.reparse(md.Options(), opts); err != nil {
		return nil, fmt.Errorf("message %s options: %w", md.FullName(), err)
	}
	if !proto.HasExtension(opts, a.message) {
		return nil, nil
	}
	o := &schema.MessageBuilderOptions{}
	if err := decodeOptions(opts.ProtoReflect().Get(a.message.TypeDescriptor()).Message(), o); err != nil {
		return nil, fmt.Errorf("message %s annotation: %w", md.FullName(), err)
	}
	return o, nil
}
