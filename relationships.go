package admingen

import (
	"context"
	"fmt"
)

// RelationshipTransformer rewrites fields backed by ORM associations into
// relationship descriptors. Entities are updated in place.
type RelationshipTransformer struct {
	provider MetadataProvider
	guesser  ReferenceGuesser
	logger   Logger
}

type RelationshipOption func(*RelationshipTransformer)

func WithRelationshipLogger(lgr Logger) RelationshipOption {
	return func(t *RelationshipTransformer) {
		t.logger = getLogger(lgr)
	}
}

func NewRelationshipTransformer(provider MetadataProvider, guesser ReferenceGuesser, opts ...RelationshipOption) *RelationshipTransformer {
	t := &RelationshipTransformer{
		provider: provider,
		guesser:  guesser,
		logger:   getLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *RelationshipTransformer) Name() string {
	return "relationships"
}

func (t *RelationshipTransformer) Transform(ctx context.Context, entities []*EntityConfiguration) ([]*EntityConfiguration, error) {
	if t.provider == nil || t.guesser == nil {
		return nil, NewConfigurationError("relationship transformer requires a metadata provider and a reference guesser", nil)
	}

	// every entity may point at any other one, so the lookup is complete
	// before the first rewrite
	byClass := make(map[string]*EntityConfiguration, len(entities))
	for _, entity := range entities {
		byClass[entity.Class] = entity
	}

	for _, entity := range entities {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		assocs, err := t.provider.AssociationsOf(entity.Class)
		if err != nil {
			return nil, fmt.Errorf("associations of %s: %w", entity.Class, err)
		}

		entity.HasRelationships = len(assocs) > 0
		if len(assocs) == 0 {
			continue
		}

		if err := t.resolveEntity(entity, assocs, byClass); err != nil {
			return nil, err
		}
	}

	return entities, nil
}

func (t *RelationshipTransformer) resolveEntity(entity *EntityConfiguration, assocs []AssociationDescriptor, byClass map[string]*EntityConfiguration) error {
	index := newFieldIndex(entity.Fields)

	for _, assoc := range assocs {
		pos, ok := index.lookup(Tableize(assoc.FieldName))
		if !ok {
			pos, ok = index.lookup(assoc.JoinColumnName())
		}
		if !ok {
			t.logger.Debug("%s.%s: no field matches association, skipping", entity.Class, assoc.FieldName)
			continue
		}

		field, err := t.relationshipField(entity.Class, assoc, byClass)
		if err != nil {
			return err
		}
		if field == nil {
			continue
		}

		field.ReadOnly = entity.Fields[pos].ReadOnly
		index.replace(pos, field)
	}

	entity.Fields = index.fields
	return nil
}

// relationshipField builds the replacement field for assoc. It returns nil
// when the target class is not part of the batch.
func (t *RelationshipTransformer) relationshipField(class string, assoc AssociationDescriptor, byClass map[string]*EntityConfiguration) (*FieldConfiguration, error) {
	var fieldType FieldType
	switch assoc.Kind {
	case OneToOne, ManyToOne:
		fieldType = FieldTypeReference
	case OneToMany:
		fieldType = FieldTypeReferencedList
	case ManyToMany:
		fieldType = FieldTypeReferenceMany
	default:
		return nil, NewUnsupportedAssociationError(class, assoc)
	}

	target, ok := byClass[assoc.TargetClass]
	if !ok {
		t.logger.Debug("%s.%s: target %s is not part of the batch, skipping", class, assoc.FieldName, assoc.TargetClass)
		return nil, nil
	}

	var (
		referencedField string
		err             error
	)
	if assoc.Kind == OneToMany {
		referencedField, err = t.guesser.GuessOneToManyReferenceField(assoc)
	} else {
		referencedField, err = t.guesser.Guess(assoc.TargetClass)
	}
	if err != nil {
		return nil, err
	}

	return &FieldConfiguration{
		Name: Tableize(assoc.FieldName),
		Type: fieldType,
		ReferencedEntity: &EntityRef{
			Name:  target.Name,
			Class: assoc.TargetClass,
		},
		ReferencedField: referencedField,
	}, nil
}

func (t *RelationshipTransformer) ReverseTransform(context.Context, []*EntityConfiguration) ([]*EntityConfiguration, error) {
	return nil, NewUnsupportedOperationError("removing relationships from a configuration")
}

// fieldIndex resolves field names to positions, first occurrence wins.
type fieldIndex struct {
	fields []*FieldConfiguration
	byName map[string]int
}

func newFieldIndex(fields []*FieldConfiguration) *fieldIndex {
	idx := &fieldIndex{fields: fields}
	idx.rebuild()
	return idx
}

func (idx *fieldIndex) rebuild() {
	idx.byName = make(map[string]int, len(idx.fields))
	for i, f := range idx.fields {
		if f == nil {
			continue
		}
		if _, seen := idx.byName[f.Name]; !seen {
			idx.byName[f.Name] = i
		}
	}
}

func (idx *fieldIndex) lookup(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	pos, ok := idx.byName[name]
	return pos, ok
}

func (idx *fieldIndex) replace(pos int, field *FieldConfiguration) {
	previous := idx.fields[pos]
	idx.fields[pos] = field
	if previous == nil || previous.Name != field.Name {
		idx.rebuild()
	}
}
