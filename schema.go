package searchkit

import (
	"fmt"
	"reflect"
	"strings"
)

const tagKey = "searchkit"

// schemaMeta holds parsed struct tag metadata, cached per Repository.
type schemaMeta struct {
	typ   reflect.Type
	idIdx int // -1 if no field carries the id modifier

	fields []MappingField
}

// parseSchema reflects on T and extracts searchkit struct tag metadata.
//
// Tag format: `searchkit:"<engine field>,<modifier>"`. The modifier is either
// "id" (the field holds the document ID) or a field type such as keyword,
// text, integer, long, double, boolean, date, geo_point or object. An empty
// engine field name falls back to the json tag name, then the Go field name.
func parseSchema[T any]() (*schemaMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return nil, fmt.Errorf("searchkit: type parameter is an interface")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("searchkit: type %s is not a struct", t)
	}

	meta := &schemaMeta{typ: t, idIdx: -1}
	seen := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get(tagKey)
		if tag == "" || tag == "-" {
			continue
		}
		if err := applyTag(meta, i, f, tag, seen); err != nil {
			return nil, err
		}
	}
	return meta, nil
}

// applyTag processes a single struct field's searchkit tag.
func applyTag(meta *schemaMeta, idx int, f reflect.StructField, tag string, seen map[string]bool) error {
	name, modifier, _ := strings.Cut(tag, ",")
	if name == "" {
		name = jsonName(f)
	}

	switch modifier {
	case "id":
		if meta.idIdx != -1 {
			return fmt.Errorf("searchkit: duplicate id tag on field %s", f.Name)
		}
		if f.Type.Kind() != reflect.String {
			return fmt.Errorf("searchkit: id field %s must be a string", f.Name)
		}
		meta.idIdx = idx
	case "":
		// Field named but not mapped explicitly.
	default:
		typ := FieldType(modifier)
		switch typ {
		case FieldKeyword, FieldText, FieldInteger, FieldLong, FieldDouble,
			FieldBoolean, FieldDate, FieldGeoPoint, FieldObject:
		default:
			return fmt.Errorf("searchkit: unknown modifier %q on field %s", modifier, f.Name)
		}
		if seen[name] {
			return fmt.Errorf("searchkit: duplicate mapped field %q", name)
		}
		seen[name] = true
		meta.fields = append(meta.fields, MappingField{Name: name, Type: typ})
	}
	return nil
}

func jsonName(f reflect.StructField) string {
	if tag := f.Tag.Get("json"); tag != "" {
		if name, _, _ := strings.Cut(tag, ","); name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// mapping returns the mapping implied by the tags, or nil when no field is mapped.
func (m *schemaMeta) mapping() *Mapping {
	if len(m.fields) == 0 {
		return nil
	}
	return &Mapping{Fields: append([]MappingField(nil), m.fields...)}
}

// idOf returns the tagged ID of item, or "" when there is none.
func (m *schemaMeta) idOf(item any) string {
	if m == nil || m.idIdx == -1 {
		return ""
	}
	v := reflect.ValueOf(item)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	return v.Field(m.idIdx).String()
}

// MappingFor derives a mapping from T's searchkit struct tags.
func MappingFor[T any]() (*Mapping, error) {
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, err
	}
	m := meta.mapping()
	if m == nil {
		return nil, fmt.Errorf("searchkit: %s has no mapped fields", meta.typ)
	}
	return m, nil
}
