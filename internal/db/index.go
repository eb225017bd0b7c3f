package db

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// FieldType is an engine mapping field type.
type FieldType string

const (
	// FieldKeyword is an exact-match string.
	FieldKeyword FieldType = "keyword"
	// FieldText is an analyzed full-text string.
	FieldText FieldType = "text"
	// FieldInteger is a 32-bit signed integer.
	FieldInteger FieldType = "integer"
	// FieldLong is a 64-bit signed integer.
	FieldLong FieldType = "long"
	// FieldDouble is a 64-bit float.
	FieldDouble FieldType = "double"
	// FieldBoolean is true/false.
	FieldBoolean FieldType = "boolean"
	// FieldDate is a date or date-time.
	FieldDate FieldType = "date"
	// FieldGeoPoint is a lat/lon pair.
	FieldGeoPoint FieldType = "geo_point"
	// FieldObject is a nested JSON object without its own document identity.
	FieldObject FieldType = "object"
)

// DynamicMode controls how the engine treats fields missing from the mapping.
type DynamicMode string

const (
	// DynamicTrue adds unknown fields to the mapping.
	DynamicTrue DynamicMode = "true"
	// DynamicFalse keeps unknown fields in _source without indexing them.
	DynamicFalse DynamicMode = "false"
	// DynamicStrict rejects documents with unknown fields.
	DynamicStrict DynamicMode = "strict"
)

// MappingField describes a single field of an index mapping.
type MappingField struct {
	Name string
	Type FieldType

	// Format applies to date fields, e.g. "strict_date_optional_time".
	Format string
	// Analyzer applies to text fields.
	Analyzer string
	// KeywordSubfield adds a "<name>.keyword" multi-field to text fields.
	KeywordSubfield bool
	// NotIndexed keeps the field in _source only.
	NotIndexed bool
}

// MappingDefinition is a complete set of field mappings.
type MappingDefinition struct {
	Dynamic DynamicMode
	Fields  []MappingField
}

// Validate checks that the mapping is well-formed.
func (m *MappingDefinition) Validate() error {
	if len(m.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool)
	for i := range m.Fields {
		f := &m.Fields[i]
		if f.Name == "" {
			return errors.New("field name is required at index " + strconv.Itoa(i))
		}
		if seen[f.Name] {
			return errors.New("duplicate field name: " + f.Name)
		}
		seen[f.Name] = true

		if f.Type == "" {
			return errors.New("field type is required for " + f.Name)
		}
		if f.Format != "" && f.Type != FieldDate {
			return errors.New("format is only valid on date fields: " + f.Name)
		}
		if (f.Analyzer != "" || f.KeywordSubfield) && f.Type != FieldText {
			return errors.New("analyzer and keyword subfield are only valid on text fields: " + f.Name)
		}
	}

	return nil
}

// MarshalJSON renders the engine-native {"dynamic":..,"properties":{..}} object.
// Dotted names become nested object properties.
func (m *MappingDefinition) MarshalJSON() ([]byte, error) {
	props := make(map[string]any, len(m.Fields))
	for i := range m.Fields {
		f := &m.Fields[i]
		def := map[string]any{"type": string(f.Type)}
		if f.Format != "" {
			def["format"] = f.Format
		}
		if f.Analyzer != "" {
			def["analyzer"] = f.Analyzer
		}
		if f.KeywordSubfield {
			def["fields"] = map[string]any{
				"keyword": map[string]any{"type": "keyword", "ignore_above": 256},
			}
		}
		if f.NotIndexed {
			def["index"] = false
		}
		insertProperty(props, strings.Split(f.Name, "."), def)
	}

	body := map[string]any{"properties": props}
	if m.Dynamic != "" {
		body["dynamic"] = string(m.Dynamic)
	}
	return json.Marshal(body)
}

func insertProperty(props map[string]any, path []string, def map[string]any) {
	if len(path) == 1 {
		props[path[0]] = def
		return
	}
	parent, ok := props[path[0]].(map[string]any)
	if !ok {
		parent = map[string]any{"properties": map[string]any{}}
		props[path[0]] = parent
	}
	children, ok := parent["properties"].(map[string]any)
	if !ok {
		children = map[string]any{}
		parent["properties"] = children
	}
	insertProperty(children, path[1:], def)
}

// IsValidIndexName reports whether s is acceptable as an engine index or alias
// name: lowercase, no reserved characters, not starting with -, _ or +.
func IsValidIndexName(s string) bool {
	if s == "" || s == "." || s == ".." || len(s) > 255 {
		return false
	}
	switch s[0] {
	case '-', '_', '+':
		return false
	}
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			return false
		}
		if strings.ContainsRune(`\/*?"<>| ,#:`, r) {
			return false
		}
	}
	return true
}
