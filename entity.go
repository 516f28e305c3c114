package admingen

import (
	"fmt"
	"sort"
)

// FieldType is the presentation type assigned to a field.
type FieldType string

const (
	FieldTypeNumber         FieldType = "number"
	FieldTypeString         FieldType = "string"
	FieldTypeWysiwyg        FieldType = "wysiwyg"
	FieldTypeText           FieldType = "text"
	FieldTypeDate           FieldType = "date"
	FieldTypeDateTime       FieldType = "datetime"
	FieldTypeReferencedList FieldType = "referenced_list"
	FieldTypeReferenceMany  FieldType = "reference_many"
	FieldTypeReference      FieldType = "reference"
)

// IsRelationship reports whether the type describes a link to another entity.
func (t FieldType) IsRelationship() bool {
	switch t {
	case FieldTypeReferencedList, FieldTypeReferenceMany, FieldTypeReference:
		return true
	}
	return false
}

// EntityDefinition is a persistent class exposed to the generated configuration.
type EntityDefinition struct {
	Class string `json:"class" yaml:"class"`
	Name  string `json:"name" yaml:"name"`
}

// TypeRef is a serialized type with optional type arguments, e.g. ArrayCollection<App\Comment>.
type TypeRef struct {
	Name   string    `json:"name" yaml:"name"`
	Params []TypeRef `json:"params,omitempty" yaml:"params,omitempty"`
}

// Param returns the type argument at index i, or an empty TypeRef.
func (t TypeRef) Param(i int) TypeRef {
	if i < 0 || i >= len(t.Params) {
		return TypeRef{}
	}
	return t.Params[i]
}

func (t TypeRef) String() string {
	if len(t.Params) == 0 {
		return t.Name
	}
	s := t.Name + "<"
	for i, p := range t.Params {
		if i > 0 {
			s += ","
		}
		s += p.String()
	}
	return s + ">"
}

// PropertyDescriptor describes one exposed property of a class.
// Name is the source property name, SerializedName the name used on the wire.
type PropertyDescriptor struct {
	Name           string  `json:"name" yaml:"name"`
	SerializedName string  `json:"serialized_name,omitempty" yaml:"serialized_name,omitempty"`
	Type           TypeRef `json:"type" yaml:"type"`
	ReadOnly       bool    `json:"read_only,omitempty" yaml:"read_only,omitempty"`
}

// EntityRef points at another entity of the batch.
type EntityRef struct {
	Class string `json:"class" yaml:"class"`
	Name  string `json:"name" yaml:"name"`
}

// FieldConfiguration is the presentation descriptor for one entity property.
type FieldConfiguration struct {
	Name             string     `json:"name" yaml:"name"`
	Type             FieldType  `json:"type" yaml:"type"`
	ReadOnly         bool       `json:"readOnly" yaml:"readOnly"`
	ReferencedEntity *EntityRef `json:"referencedEntity,omitempty" yaml:"referencedEntity,omitempty"`
	ReferencedField  string     `json:"referencedField,omitempty" yaml:"referencedField,omitempty"`
}

// IsRelationship reports whether the field links to another entity.
func (f *FieldConfiguration) IsRelationship() bool {
	return f != nil && f.Type.IsRelationship()
}

// Validate checks that relationship fields carry their referenced entity.
func (f *FieldConfiguration) Validate() error {
	if f == nil {
		return fmt.Errorf("nil field configuration")
	}
	if f.Type.IsRelationship() && f.ReferencedEntity == nil {
		return fmt.Errorf("field %q of type %s has no referenced entity", f.Name, f.Type)
	}
	return nil
}

// EntityConfiguration is the per-entity output of the pipeline.
type EntityConfiguration struct {
	Class            string                `json:"class" yaml:"class"`
	Name             string                `json:"name" yaml:"name"`
	Fields           []*FieldConfiguration `json:"fields" yaml:"fields"`
	HasRelationships bool                  `json:"has_relationships" yaml:"has_relationships"`
}

// Field returns the first field with the given name.
func (e *EntityConfiguration) Field(name string) (*FieldConfiguration, bool) {
	for _, f := range e.Fields {
		if f != nil && f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// RelationshipFields returns the fields that reference other entities, in order.
func (e *EntityConfiguration) RelationshipFields() []*FieldConfiguration {
	out := make([]*FieldConfiguration, 0)
	for _, f := range e.Fields {
		if f.IsRelationship() {
			out = append(out, f)
		}
	}
	return out
}

// AssociationKind mirrors the ORM association bitmask.
type AssociationKind int

const (
	OneToOne   AssociationKind = 1
	ManyToOne  AssociationKind = 2
	OneToMany  AssociationKind = 4
	ManyToMany AssociationKind = 8
)

func (k AssociationKind) String() string {
	switch k {
	case OneToOne:
		return "one-to-one"
	case ManyToOne:
		return "many-to-one"
	case OneToMany:
		return "one-to-many"
	case ManyToMany:
		return "many-to-many"
	}
	return fmt.Sprintf("association(%d)", int(k))
}

// ParseAssociationKind accepts the ORM spelling (OneToMany), the kebab
// spelling (one-to-many) and bun relation names (has-many, belongs-to, has-one).
func ParseAssociationKind(s string) (AssociationKind, bool) {
	switch normalizeKindName(s) {
	case "onetoone", "hasone":
		return OneToOne, true
	case "manytoone", "belongsto":
		return ManyToOne, true
	case "onetomany", "hasmany":
		return OneToMany, true
	case "manytomany", "m2m":
		return ManyToMany, true
	}
	return 0, false
}

func normalizeKindName(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '-' || c == '_' || c == ' ':
			continue
		case c >= 'A' && c <= 'Z':
			out = append(out, c+('a'-'A'))
		default:
			out = append(out, c)
		}
	}
	return string(out)
}

// JoinColumn is one column of an association join.
type JoinColumn struct {
	Name                 string `json:"name" yaml:"name"`
	ReferencedColumnName string `json:"referenced_column_name,omitempty" yaml:"referenced_column_name,omitempty"`
}

// AssociationDescriptor is the ORM description of a relationship.
type AssociationDescriptor struct {
	FieldName   string          `json:"field_name" yaml:"field_name"`
	Kind        AssociationKind `json:"kind" yaml:"kind"`
	TargetClass string          `json:"target_class" yaml:"target_class"`
	MappedBy    string          `json:"mapped_by,omitempty" yaml:"mapped_by,omitempty"`
	InversedBy  string          `json:"inversed_by,omitempty" yaml:"inversed_by,omitempty"`
	JoinColumns []JoinColumn    `json:"join_columns,omitempty" yaml:"join_columns,omitempty"`
}

// JoinColumnName returns the name of the first join column, if any.
func (a AssociationDescriptor) JoinColumnName() string {
	if len(a.JoinColumns) == 0 {
		return ""
	}
	return a.JoinColumns[0].Name
}

// Document maps entity names to their final configuration.
type Document map[string]*EntityConfiguration

// Names returns the entity names in sorted order.
func (d Document) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entities returns the configurations sorted by name.
func (d Document) Entities() []*EntityConfiguration {
	out := make([]*EntityConfiguration, 0, len(d))
	for _, name := range d.Names() {
		out = append(out, d[name])
	}
	return out
}
