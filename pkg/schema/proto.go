package schema

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bufbuild/protocompile"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// wellKnown maps google.protobuf types to type expressions.
var wellKnown = map[protoreflect.FullName]string{
	"google.protobuf.Timestamp":   "datetime",
	"google.protobuf.Duration":    "str",
	"google.protobuf.Struct":      "dict[str, Any]",
	"google.protobuf.Value":       "Any",
	"google.protobuf.Any":         "Any",
	"google.protobuf.StringValue": "str | None",
	"google.protobuf.BoolValue":   "bool | None",
	"google.protobuf.Int32Value":  "int | None",
	"google.protobuf.Int64Value":  "int | None",
	"google.protobuf.UInt32Value": "int | None",
	"google.protobuf.UInt64Value": "int | None",
	"google.protobuf.FloatValue":  "float | None",
	"google.protobuf.DoubleValue": "float | None",
}

// LoadProto compiles a .proto file (imports are resolved relative to its
// directory, plus the standard google/protobuf files) and registers every
// message and enum it defines, along with any message types they reference.
func LoadProto(ctx context.Context, path string) (*Registry, error) {
	dir, file := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
			ImportPaths: []string{dir},
		}),
	}
	files, err := compiler.Compile(ctx, file)
	if err != nil {
		if strings.Contains(err.Error(), "no such file") {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}

	c := &protoConverter{reg: NewRegistry(), seen: make(map[protoreflect.FullName]bool)}
	for _, f := range files {
		if err := c.file(f); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if len(c.reg.schemaOrder) == 0 {
		return nil, ErrNoSchemas
	}
	if msgs := files[0].Messages(); msgs.Len() > 0 {
		c.reg.Root = localName(msgs.Get(0))
	}
	return c.reg, nil
}

type protoConverter struct {
	reg  *Registry
	seen map[protoreflect.FullName]bool
}

func (c *protoConverter) file(f protoreflect.FileDescriptor) error {
	enums := f.Enums()
	for i := 0; i < enums.Len(); i++ {
		if err := c.enum(enums.Get(i)); err != nil {
			return err
		}
	}
	msgs := f.Messages()
	for i := 0; i < msgs.Len(); i++ {
		if err := c.message(msgs.Get(i)); err != nil {
			return err
		}
	}
	return nil
}

// localName strips the package from a full name: "shop.v1.Order.Line"
// becomes "Order.Line".
func localName(d protoreflect.Descriptor) string {
	pkg := string(d.ParentFile().Package())
	name := string(d.FullName())
	if pkg != "" {
		name = strings.TrimPrefix(name, pkg+".")
	}
	return name
}

func (c *protoConverter) enum(ed protoreflect.EnumDescriptor) error {
	if c.seen[ed.FullName()] {
		return nil
	}
	c.seen[ed.FullName()] = true
	e := &Enum{Name: localName(ed)}
	values := ed.Values()
	for i := 0; i < values.Len(); i++ {
		v := values.Get(i)
		e.Members = append(e.Members, EnumMember{Name: string(v.Name()), Value: string(v.Name())})
	}
	return c.reg.AddEnum(e)
}

func (c *protoConverter) message(md protoreflect.MessageDescriptor) error {
	if md.IsMapEntry() || c.seen[md.FullName()] {
		return nil
	}
	if _, ok := wellKnown[md.FullName()]; ok {
		return nil
	}
	c.seen[md.FullName()] = true

	s := NewSchema(localName(md))
	fields := md.Fields()
	for i := 0; i < fields.Len(); i++ {
		fd := fields.Get(i)
		typ, err := c.fieldType(fd)
		if err != nil {
			return err
		}
		if err := s.AddField(&Field{Name: string(fd.Name()), Type: typ}); err != nil {
			return err
		}
	}
	if err := c.reg.AddSchema(s); err != nil {
		return err
	}

	nestedEnums := md.Enums()
	for i := 0; i < nestedEnums.Len(); i++ {
		if err := c.enum(nestedEnums.Get(i)); err != nil {
			return err
		}
	}
	nested := md.Messages()
	for i := 0; i < nested.Len(); i++ {
		if err := c.message(nested.Get(i)); err != nil {
			return err
		}
	}
	return nil
}

func (c *protoConverter) fieldType(fd protoreflect.FieldDescriptor) (string, error) {
	if fd.IsMap() {
		key := "str"
		if fd.MapKey().Kind() != protoreflect.StringKind {
			key = c.scalar(fd.MapKey())
		}
		val, err := c.singular(fd.MapValue())
		if err != nil {
			return "", err
		}
		return "dict[" + key + ", " + val + "]", nil
	}

	typ, err := c.singular(fd)
	if err != nil {
		return "", err
	}
	if fd.IsList() {
		return "list[" + typ + "]", nil
	}
	// Message fields and explicit-presence scalars may be unset.
	if fd.HasPresence() && !strings.HasSuffix(typ, "| None") {
		typ += " | None"
	}
	return typ, nil
}

func (c *protoConverter) singular(fd protoreflect.FieldDescriptor) (string, error) {
	switch fd.Kind() {
	case protoreflect.MessageKind, protoreflect.GroupKind:
		md := fd.Message()
		if t, ok := wellKnown[md.FullName()]; ok {
			return t, nil
		}
		if err := c.message(md); err != nil {
			return "", err
		}
		return localName(md), nil
	case protoreflect.EnumKind:
		ed := fd.Enum()
		if err := c.enum(ed); err != nil {
			return "", err
		}
		return localName(ed), nil
	}
	return c.scalar(fd), nil
}

func (c *protoConverter) scalar(fd protoreflect.FieldDescriptor) string {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		return "bool"
	case protoreflect.FloatKind, protoreflect.DoubleKind:
		return "float"
	case protoreflect.StringKind, protoreflect.BytesKind:
		return "str"
	default:
		return "int"
	}
}
