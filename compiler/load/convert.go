package load

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/syssam/protobuilder"
	"github.com/syssam/protobuilder/schema"
)

// converter turns linked descriptors into schema files. Imports are
// converted before the files importing them, so field types always
// resolve to an already declared message or enum.
type converter struct {
	ann      *annotations
	files    map[string]*schema.File
	messages map[protoreflect.FullName]*schema.Message
	enums    map[protoreflect.FullName]*schema.Enum
}

func newConverter(ann *annotations) *converter {
	return &converter{
		ann:      ann,
		files:    make(map[string]*schema.File),
		messages: make(map[protoreflect.FullName]*schema.Message),
		enums:    make(map[protoreflect.FullName]*schema.Enum),
	}
}

func (c *converter) file(fd protoreflect.FileDescriptor) (*schema.File, error) {
	if f, ok := c.files[fd.Path()]; ok {
		return f, nil
	}
	f := &schema.File{Name: fd.Path(), Package: string(fd.Package())}
	c.files[fd.Path()] = f
	imports := fd.Imports()
	for i := range imports.Len() {
		if _, err := c.file(imports.Get(i).FileDescriptor); err != nil {
			return nil, err
		}
	}
	f.Enums = c.declareEnums(fd.Enums())
	f.Messages = c.declareMessages(fd.Messages())
	if err := c.fillMessages(fd.Messages()); err != nil {
		return nil, err
	}
	f.Link()
	return f, nil
}

func (c *converter) declareEnums(eds protoreflect.EnumDescriptors) []*schema.Enum {
	out := make([]*schema.Enum, 0, eds.Len())
	for i := range eds.Len() {
		ed := eds.Get(i)
		e := &schema.Enum{Name: string(ed.Name()), FullName: string(ed.FullName())}
		values := ed.Values()
		for j := range values.Len() {
			v := values.Get(j)
			e.Values = append(e.Values, &schema.EnumValue{Name: string(v.Name()), Number: int32(v.Number())})
		}
		c.enums[ed.FullName()] = e
		out = append(out, e)
	}
	return out
}

func (c *converter) declareMessages(mds protoreflect.MessageDescriptors) []*schema.Message {
	out := make([]*schema.Message, 0, mds.Len())
	for i := range mds.Len() {
		md := mds.Get(i)
		m := &schema.Message{
			Name:     string(md.Name()),
			FullName: string(md.FullName()),
			MapEntry: md.IsMapEntry(),
		}
		c.messages[md.FullName()] = m
		m.Enums = c.declareEnums(md.Enums())
		m.Nested = c.declareMessages(md.Messages())
		out = append(out, m)
	}
	return out
}

func (c *converter) fillMessages(mds protoreflect.MessageDescriptors) error {
	for i := range mds.Len() {
		md := mds.Get(i)
		m := c.messages[md.FullName()]
		opts, err := c.ann.messageOptions(md)
		if err != nil {
			return err
		}
		m.Options = opts
		fields := md.Fields()
		for j := range fields.Len() {
			f, err := c.field(fields.Get(j))
			if err != nil {
				return err
			}
			m.Fields = append(m.Fields, f)
		}
		if err := c.fillMessages(md.Messages()); err != nil {
			return err
		}
	}
	return nil
}

func (c *converter) field(fd protoreflect.FieldDescriptor) (*schema.Field, error) {
	f := &schema.Field{
		Name:     string(fd.Name()),
		FullName: string(fd.FullName()),
		Number:   int32(fd.Number()),
		Kind:     schema.Kind(fd.Kind()),
		Label:    label(fd.Cardinality()),
	}
	switch fd.Kind() {
	case protoreflect.MessageKind, protoreflect.GroupKind:
		name := fd.Message().FullName()
		if f.Message = c.messages[name]; f.Message == nil {
			return nil, protobuilder.NewNotFoundError("message", string(name))
		}
	case protoreflect.EnumKind:
		name := fd.Enum().FullName()
		if f.Enum = c.enums[name]; f.Enum == nil {
			return nil, protobuilder.NewNotFoundError("enum", string(name))
		}
	}
	if fd.HasDefault() {
		f.HasDefault = true
		f.Default = defaultValue(fd)
	}
	ann, err := c.ann.fieldOptions(fd)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	f.Annotations = ann
	return f, nil
}

func label(c protoreflect.Cardinality) schema.Label {
	switch c {
	case protoreflect.Required:
		return schema.LabelRequired
	case protoreflect.Repeated:
		return schema.LabelRepeated
	default:
		return schema.LabelOptional
	}
}

// defaultValue renders an explicit default. Enum defaults are the value
// name.
func defaultValue(fd protoreflect.FieldDescriptor) string {
	switch fd.Kind() {
	case protoreflect.EnumKind:
		return string(fd.DefaultEnumValue().Name())
	case protoreflect.BytesKind:
		return string(fd.Default().Bytes())
	default:
		return fd.Default().String()
	}
}
