package searchkit

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kailas-cloud/searchkit/internal/db"
)

// Mapping types re-exported from the driver layer.
type (
	Mapping        = db.MappingDefinition
	MappingField   = db.MappingField
	MappingBuilder = db.MappingBuilder
	FieldType      = db.FieldType
	DynamicMode    = db.DynamicMode
)

// Field types.
const (
	FieldKeyword  = db.FieldKeyword
	FieldText     = db.FieldText
	FieldInteger  = db.FieldInteger
	FieldLong     = db.FieldLong
	FieldDouble   = db.FieldDouble
	FieldBoolean  = db.FieldBoolean
	FieldDate     = db.FieldDate
	FieldGeoPoint = db.FieldGeoPoint
	FieldObject   = db.FieldObject
)

// Dynamic modes.
const (
	DynamicTrue   = db.DynamicTrue
	DynamicFalse  = db.DynamicFalse
	DynamicStrict = db.DynamicStrict
)

// NewMapping starts a fluent mapping definition.
func NewMapping() *MappingBuilder { return db.NewMapping() }

// loadMapping reads a mapping resource. A document with a top-level
// "mappings" or "settings" key is a full index body; any other object is the
// mappings object itself.
func loadMapping(fsys fs.FS, name string) (mappings, settings []byte, err error) {
	clean := path.Clean(strings.TrimPrefix(name, "/"))
	if name == "" || !fs.ValidPath(clean) {
		return nil, nil, fmt.Errorf("%w: invalid resource name %q", ErrMappingNotFound, name)
	}

	data, err := fs.ReadFile(fsys, clean)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrMappingNotFound, name)
		}
		return nil, nil, fmt.Errorf("%w: read %s: %w", ErrConfiguration, name, err)
	}

	if !gjson.ValidBytes(data) {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidMapping, name)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidMapping, name)
	}

	m, s := doc.Get("mappings"), doc.Get("settings")
	if !m.Exists() && !s.Exists() {
		return []byte(doc.Raw), nil, nil
	}
	if m.Exists() {
		if !m.IsObject() {
			return nil, nil, fmt.Errorf("%w: %s: mappings must be an object", ErrInvalidMapping, name)
		}
		mappings = []byte(m.Raw)
	}
	if s.Exists() {
		if !s.IsObject() {
			return nil, nil, fmt.Errorf("%w: %s: settings must be an object", ErrInvalidMapping, name)
		}
		settings = []byte(s.Raw)
	}
	return mappings, settings, nil
}
