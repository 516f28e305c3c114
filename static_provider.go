package admingen

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v2"
)

// StaticProvider serves metadata declared up front, either in code or in a
// YAML (or JSON) metadata document.
type StaticProvider struct {
	order      []string
	entities   map[string]*staticEntity
	references map[string]string
}

type staticEntity struct {
	def          EntityDefinition
	properties   []PropertyDescriptor
	associations []AssociationDescriptor
}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		entities:   make(map[string]*staticEntity),
		references: make(map[string]string),
	}
}

// AddEntity declares a class. Declaring the same class twice replaces its metadata.
func (p *StaticProvider) AddEntity(def EntityDefinition, props []PropertyDescriptor, assocs []AssociationDescriptor) *StaticProvider {
	if _, exists := p.entities[def.Class]; !exists {
		p.order = append(p.order, def.Class)
	}
	p.entities[def.Class] = &staticEntity{
		def:          def,
		properties:   slices.Clone(props),
		associations: slices.Clone(assocs),
	}
	return p
}

// SetReference records the reference field of a class.
func (p *StaticProvider) SetReference(class, field string) *StaticProvider {
	p.references[class] = field
	return p
}

// Definitions lists the declared entities in declaration order.
func (p *StaticProvider) Definitions() []EntityDefinition {
	defs := make([]EntityDefinition, 0, len(p.order))
	for _, class := range p.order {
		def := p.entities[class].def
		if def.Name == "" {
			def.Name = EntityNameForClass(def.Class)
		}
		defs = append(defs, def)
	}
	return defs
}

// References returns the declared reference fields by class.
func (p *StaticProvider) References() map[string]string {
	out := make(map[string]string, len(p.references))
	for k, v := range p.references {
		out[k] = v
	}
	return out
}

func (p *StaticProvider) PropertiesOf(class string) ([]PropertyDescriptor, error) {
	entity, ok := p.entities[class]
	if !ok {
		return nil, NewConfigurationError("class is not declared", map[string]any{"class": class})
	}
	return slices.Clone(entity.properties), nil
}

func (p *StaticProvider) AssociationsOf(class string) ([]AssociationDescriptor, error) {
	entity, ok := p.entities[class]
	if !ok {
		return nil, NewConfigurationError("class is not declared", map[string]any{"class": class})
	}
	return slices.Clone(entity.associations), nil
}

type metadataDocument struct {
	Entities   []metadataEntity  `yaml:"entities"`
	References map[string]string `yaml:"references"`
}

type metadataEntity struct {
	Class        string                `yaml:"class"`
	Name         string                `yaml:"name"`
	Properties   []metadataProperty    `yaml:"properties"`
	Associations []metadataAssociation `yaml:"associations"`
}

type metadataProperty struct {
	Name           string `yaml:"name"`
	SerializedName string `yaml:"serialized_name"`
	Type           string `yaml:"type"`
	ReadOnly       bool   `yaml:"read_only"`
}

type metadataAssociation struct {
	FieldName   string       `yaml:"field_name"`
	Kind        string       `yaml:"kind"`
	TargetClass string       `yaml:"target_class"`
	MappedBy    string       `yaml:"mapped_by"`
	InversedBy  string       `yaml:"inversed_by"`
	JoinColumns []JoinColumn `yaml:"join_columns"`
}

// LoadStaticProvider reads a metadata document:
//
//	entities:
//	  - class: App\Entity\Post
//	    properties:
//	      - {name: title, type: string}
//	      - {name: comments, type: ArrayCollection<App\Entity\Comment>}
//	    associations:
//	      - {field_name: comments, kind: OneToMany, target_class: App\Entity\Comment, mapped_by: post}
//	references:
//	  App\Entity\Comment: body
func LoadStaticProvider(r io.Reader) (*StaticProvider, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	var doc metadataDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, NewConfigurationError("invalid metadata document", map[string]any{"cause": err.Error()})
	}

	p := NewStaticProvider()
	for i, entity := range doc.Entities {
		if strings.TrimSpace(entity.Class) == "" {
			return nil, NewConfigurationError("metadata entity has no class", map[string]any{"index": i})
		}

		props := make([]PropertyDescriptor, 0, len(entity.Properties))
		for _, prop := range entity.Properties {
			typeRef, err := ParseTypeRef(prop.Type)
			if err != nil {
				return nil, NewConfigurationError("invalid property type", map[string]any{
					"class":    entity.Class,
					"property": prop.Name,
					"cause":    err.Error(),
				})
			}
			props = append(props, PropertyDescriptor{
				Name:           prop.Name,
				SerializedName: prop.SerializedName,
				Type:           typeRef,
				ReadOnly:       prop.ReadOnly,
			})
		}

		assocs := make([]AssociationDescriptor, 0, len(entity.Associations))
		for _, assoc := range entity.Associations {
			kind, ok := ParseAssociationKind(assoc.Kind)
			if !ok {
				// unknown kinds are kept so resolution can report them
				kind = AssociationKind(0)
			}
			assocs = append(assocs, AssociationDescriptor{
				FieldName:   assoc.FieldName,
				Kind:        kind,
				TargetClass: assoc.TargetClass,
				MappedBy:    assoc.MappedBy,
				InversedBy:  assoc.InversedBy,
				JoinColumns: assoc.JoinColumns,
			})
		}

		p.AddEntity(EntityDefinition{Class: entity.Class, Name: entity.Name}, props, assocs)
	}

	for class, field := range doc.References {
		p.SetReference(class, field)
	}

	return p, nil
}

func LoadStaticProviderFile(path string) (*StaticProvider, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open metadata %s: %w", path, err)
	}
	defer f.Close()
	return LoadStaticProvider(f)
}

// ParseTypeRef parses serialized type names such as
// ArrayCollection<App\Entity\Comment> or Map<string, List<integer>>.
func ParseTypeRef(s string) (TypeRef, error) {
	ref, rest, err := parseTypeRef(strings.TrimSpace(s))
	if err != nil {
		return TypeRef{}, err
	}
	if strings.TrimSpace(rest) != "" {
		return TypeRef{}, fmt.Errorf("unexpected %q after type %q", rest, ref.Name)
	}
	return ref, nil
}

func parseTypeRef(s string) (TypeRef, string, error) {
	end := strings.IndexAny(s, "<>,")
	if end == -1 {
		end = len(s)
	}

	ref := TypeRef{Name: strings.TrimSpace(s[:end])}
	if ref.Name == "" {
		return TypeRef{}, "", fmt.Errorf("empty type name in %q", s)
	}

	rest := s[end:]
	if !strings.HasPrefix(rest, "<") {
		return ref, rest, nil
	}

	rest = rest[1:]
	for {
		param, remaining, err := parseTypeRef(strings.TrimSpace(rest))
		if err != nil {
			return TypeRef{}, "", err
		}
		ref.Params = append(ref.Params, param)

		remaining = strings.TrimSpace(remaining)
		switch {
		case strings.HasPrefix(remaining, ","):
			rest = remaining[1:]
		case strings.HasPrefix(remaining, ">"):
			return ref, remaining[1:], nil
		default:
			return TypeRef{}, "", fmt.Errorf("unterminated type arguments for %q", ref.Name)
		}
	}
}
