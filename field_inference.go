package admingen

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Serialized type names recognized by the default rules.
const (
	KindInteger         = "integer"
	KindString          = "string"
	KindArrayCollection = "ArrayCollection"
	KindIdCollection    = "IdCollection"
	KindDate            = "Date"
	KindDateTime        = "DateTime"
)

var (
	wysiwygPropertyNames = []string{"body", "content", "description"}
	textPropertyNames    = []string{"details"}
)

// TypeRule is one row of the type inference table. Rules are evaluated in
// order and the first match wins; unmatched properties pass their raw
// serialized type name through.
type TypeRule struct {
	Name  string
	Match func(prop PropertyDescriptor) bool
	Apply func(prop PropertyDescriptor, field *FieldConfiguration)
}

// DefaultTypeRules returns the built in inference table.
func DefaultTypeRules() []TypeRule {
	return []TypeRule{
		{
			Name:  "integer",
			Match: kindIs(KindInteger),
			Apply: setType(FieldTypeNumber),
		},
		{
			Name: "rich_text",
			Match: func(prop PropertyDescriptor) bool {
				return prop.Type.Name == KindString && slices.Contains(wysiwygPropertyNames, prop.Name)
			},
			Apply: setType(FieldTypeWysiwyg),
		},
		{
			Name: "long_text",
			Match: func(prop PropertyDescriptor) bool {
				return prop.Type.Name == KindString && slices.Contains(textPropertyNames, prop.Name)
			},
			Apply: setType(FieldTypeText),
		},
		{
			Name:  "string",
			Match: kindIs(KindString),
			Apply: setType(FieldTypeString),
		},
		{
			Name:  "collection",
			Match: collectionOf(KindArrayCollection),
			Apply: referenceTo(FieldTypeReferencedList),
		},
		{
			Name:  "id_collection",
			Match: collectionOf(KindIdCollection),
			Apply: referenceTo(FieldTypeReferenceMany),
		},
		{
			Name:  "date",
			Match: kindIs(KindDate),
			Apply: setType(FieldTypeDate),
		},
		{
			Name:  "datetime",
			Match: kindIs(KindDateTime),
			Apply: setType(FieldTypeDateTime),
		},
	}
}

func kindIs(kind string) func(PropertyDescriptor) bool {
	return func(prop PropertyDescriptor) bool {
		return prop.Type.Name == kind
	}
}

// collectionOf matches both the short and the namespaced collection type.
func collectionOf(kind string) func(PropertyDescriptor) bool {
	return func(prop PropertyDescriptor) bool {
		return ShortClassName(prop.Type.Name) == kind && prop.Type.Param(0).Name != ""
	}
}

func setType(t FieldType) func(PropertyDescriptor, *FieldConfiguration) {
	return func(_ PropertyDescriptor, field *FieldConfiguration) {
		field.Type = t
	}
}

func referenceTo(t FieldType) func(PropertyDescriptor, *FieldConfiguration) {
	return func(prop PropertyDescriptor, field *FieldConfiguration) {
		class := prop.Type.Param(0).Name
		field.Type = t
		field.ReferencedEntity = &EntityRef{
			Class: class,
			Name:  EntityNameForClass(class),
		}
	}
}

// FieldTypeTransformer turns class property metadata into field configurations.
type FieldTypeTransformer struct {
	provider    MetadataProvider
	naming      NamingStrategy
	rules       []TypeRule
	concurrency int
	logger      Logger
}

type FieldTypeOption func(*FieldTypeTransformer)

// WithTypeRules registers rules evaluated before the default table.
func WithTypeRules(rules ...TypeRule) FieldTypeOption {
	return func(t *FieldTypeTransformer) {
		t.rules = append(slices.Clone(rules), t.rules...)
	}
}

// WithConcurrency fetches metadata for up to n entities at once.
func WithConcurrency(n int) FieldTypeOption {
	return func(t *FieldTypeTransformer) {
		t.concurrency = n
	}
}

func WithFieldTypeLogger(lgr Logger) FieldTypeOption {
	return func(t *FieldTypeTransformer) {
		t.logger = getLogger(lgr)
	}
}

func NewFieldTypeTransformer(provider MetadataProvider, naming NamingStrategy, opts ...FieldTypeOption) *FieldTypeTransformer {
	if naming == nil {
		naming = IdenticalNaming{}
	}
	t := &FieldTypeTransformer{
		provider:    provider,
		naming:      naming,
		rules:       DefaultTypeRules(),
		concurrency: 1,
		logger:      getLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *FieldTypeTransformer) Name() string {
	return "field_types"
}

// Transform builds fresh entity configurations with inferred field types.
// Output order follows input order.
func (t *FieldTypeTransformer) Transform(ctx context.Context, entities []*EntityConfiguration) ([]*EntityConfiguration, error) {
	if t.provider == nil {
		return nil, NewConfigurationError("field type transformer requires a metadata provider", nil)
	}

	out := make([]*EntityConfiguration, len(entities))

	g, ctx := errgroup.WithContext(ctx)
	if t.concurrency > 0 {
		g.SetLimit(t.concurrency)
	}

	for i, entity := range entities {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			configured, err := t.transformEntity(entity)
			if err != nil {
				return err
			}
			out[i] = configured
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *FieldTypeTransformer) transformEntity(entity *EntityConfiguration) (*EntityConfiguration, error) {
	props, err := t.provider.PropertiesOf(entity.Class)
	if err != nil {
		return nil, fmt.Errorf("properties of %s: %w", entity.Class, err)
	}

	configured := &EntityConfiguration{
		Class:  entity.Class,
		Name:   entity.Name,
		Fields: make([]*FieldConfiguration, 0, len(props)),
	}

	for _, prop := range props {
		configured.Fields = append(configured.Fields, t.InferField(prop))
	}

	t.logger.Debug("inferred %d fields for %s", len(configured.Fields), entity.Class)
	return configured, nil
}

// InferField applies the rule table to a single property.
func (t *FieldTypeTransformer) InferField(prop PropertyDescriptor) *FieldConfiguration {
	field := &FieldConfiguration{
		Name:     t.naming.FieldNameFor(prop),
		ReadOnly: prop.ReadOnly,
	}

	for _, rule := range t.rules {
		if rule.Match == nil || rule.Apply == nil {
			continue
		}
		if rule.Match(prop) {
			rule.Apply(prop, field)
			return field
		}
	}

	field.Type = FieldType(prop.Type.Name)
	return field
}

func (t *FieldTypeTransformer) ReverseTransform(context.Context, []*EntityConfiguration) ([]*EntityConfiguration, error) {
	return nil, NewUnsupportedOperationError("turning field configurations back into class metadata")
}
