package db

// MappingBuilder is a fluent builder for index mappings.
type MappingBuilder struct {
	def MappingDefinition
}

// NewMapping starts building a mapping.
func NewMapping() *MappingBuilder {
	return &MappingBuilder{}
}

// Dynamic sets how unmapped fields are handled.
func (b *MappingBuilder) Dynamic(mode DynamicMode) *MappingBuilder {
	b.def.Dynamic = mode
	return b
}

// Field adds a field of an arbitrary type.
func (b *MappingBuilder) Field(name string, typ FieldType) *MappingBuilder {
	b.def.Fields = append(b.def.Fields, MappingField{Name: name, Type: typ})
	return b
}

// Keyword adds a keyword field.
func (b *MappingBuilder) Keyword(name string) *MappingBuilder {
	return b.Field(name, FieldKeyword)
}

// Text adds a text field.
func (b *MappingBuilder) Text(name string) *MappingBuilder {
	return b.Field(name, FieldText)
}

// TextWithOpts adds a text field with an analyzer and an optional keyword subfield.
func (b *MappingBuilder) TextWithOpts(name, analyzer string, keywordSubfield bool) *MappingBuilder {
	b.def.Fields = append(b.def.Fields, MappingField{
		Name:            name,
		Type:            FieldText,
		Analyzer:        analyzer,
		KeywordSubfield: keywordSubfield,
	})
	return b
}

// Integer adds an integer field.
func (b *MappingBuilder) Integer(name string) *MappingBuilder {
	return b.Field(name, FieldInteger)
}

// Long adds a long field.
func (b *MappingBuilder) Long(name string) *MappingBuilder {
	return b.Field(name, FieldLong)
}

// Double adds a double field.
func (b *MappingBuilder) Double(name string) *MappingBuilder {
	return b.Field(name, FieldDouble)
}

// Boolean adds a boolean field.
func (b *MappingBuilder) Boolean(name string) *MappingBuilder {
	return b.Field(name, FieldBoolean)
}

// Date adds a date field. An empty format uses the engine default.
func (b *MappingBuilder) Date(name, format string) *MappingBuilder {
	b.def.Fields = append(b.def.Fields, MappingField{Name: name, Type: FieldDate, Format: format})
	return b
}

// GeoPoint adds a geo_point field.
func (b *MappingBuilder) GeoPoint(name string) *MappingBuilder {
	return b.Field(name, FieldGeoPoint)
}

// Stored adds a field kept in _source but not indexed.
func (b *MappingBuilder) Stored(name string, typ FieldType) *MappingBuilder {
	b.def.Fields = append(b.def.Fields, MappingField{Name: name, Type: typ, NotIndexed: true})
	return b
}

// Build validates and returns the mapping definition.
func (b *MappingBuilder) Build() (*MappingDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	def := b.def
	def.Fields = append([]MappingField(nil), b.def.Fields...)
	return &def, nil
}

// MustBuild calls Build and panics on error.
func (b *MappingBuilder) MustBuild() *MappingDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}
