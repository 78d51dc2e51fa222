package openapi

import (
	"encoding"
	"encoding/json"
	"path"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	timeType      = reflect.TypeFor[time.Time]()
	uuidType      = reflect.TypeFor[uuid.UUID]()
	rawType       = reflect.TypeFor[json.RawMessage]()
	marshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

// SchemaFor derives a JSON schema from the Go type of v using its json
// tags. Named structs are registered in c and referenced; generic and
// anonymous structs are inlined. A nil v yields nil.
func (c *Components) SchemaFor(v any) *Schema {
	if v == nil {
		return nil
	}
	return c.schemaOf(reflect.TypeOf(v), map[reflect.Type]bool{})
}

func (c *Components) schemaOf(t reflect.Type, visiting map[reflect.Type]bool) *Schema {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch {
	case t == timeType:
		return &Schema{Type: "string", Format: "date-time"}
	case t == uuidType:
		return &Schema{Type: "string", Format: "uuid"}
	case t == rawType:
		return &Schema{}
	case t.Kind() != reflect.Struct && reflect.PointerTo(t).Implements(marshalerType):
		return &Schema{Type: "string"}
	}

	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}
	case reflect.Bool:
		return &Schema{Type: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return &Schema{Type: "string", Format: "byte"}
		}
		return &Schema{Type: "array", Items: c.schemaOf(t.Elem(), visiting)}
	case reflect.Map:
		return &Schema{Type: "object", AdditionalProperties: c.schemaOf(t.Elem(), visiting)}
	case reflect.Struct:
		return c.structSchema(t, visiting)
	}
	return &Schema{}
}

func (c *Components) structSchema(t reflect.Type, visiting map[reflect.Type]bool) *Schema {
	name := schemaName(t)
	if name != "" {
		if _, ok := c.Schemas[name]; ok || visiting[t] {
			return SchemaRef(name)
		}
	}

	visiting[t] = true
	defer delete(visiting, t)

	s := &Schema{Type: "object", Properties: map[string]*Schema{}}
	c.addFields(s, t, visiting)

	if name == "" {
		return s
	}
	c.Schemas[name] = s
	return SchemaRef(name)
}

func (c *Components) addFields(s *Schema, t reflect.Type, visiting map[reflect.Type]bool) {
	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")

		if f.Anonymous && name == "" {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				c.addFields(s, ft, visiting)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}

		if name == "" {
			name = f.Name
		}
		s.Properties[name] = c.schemaOf(f.Type, visiting)

		optional := f.Type.Kind() == reflect.Pointer || strings.Contains(opts, "omitempty") || strings.Contains(opts, "omitzero")
		if !optional {
			s.Required = append(s.Required, name)
		}
	}
}

// schemaName qualifies a struct by its package, e.g. templates.Template.
// Generic instantiations and anonymous structs have no component name.
func schemaName(t reflect.Type) string {
	if t.Name() == "" || strings.Contains(t.Name(), "[") {
		return ""
	}
	return path.Base(t.PkgPath()) + "." + t.Name()
}
