package admingen

import (
	"context"
)

// MetadataProvider exposes per-class property and association metadata.
// Both lists are ordered and the order is preserved by the pipeline.
type MetadataProvider interface {
	PropertiesOf(class string) ([]PropertyDescriptor, error)
	AssociationsOf(class string) ([]AssociationDescriptor, error)
}

// NamingStrategy computes the presentation field name of a property.
type NamingStrategy interface {
	FieldNameFor(prop PropertyDescriptor) string
}

// NamingStrategyFunc adapts a function to NamingStrategy.
type NamingStrategyFunc func(prop PropertyDescriptor) string

func (f NamingStrategyFunc) FieldNameFor(prop PropertyDescriptor) string {
	return f(prop)
}

// ReferenceGuesser picks the field on a related entity used as its back-reference.
// Failures are fatal to the generation run.
type ReferenceGuesser interface {
	Guess(targetClass string) (string, error)
	GuessOneToManyReferenceField(assoc AssociationDescriptor) (string, error)
}

// Renderer serializes the final document.
type Renderer interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, doc Document) ([]byte, error)

func (f RendererFunc) Render(ctx context.Context, doc Document) ([]byte, error) {
	return f(ctx, doc)
}

// Transformer is one stage of the generation pipeline. The first stage
// receives configurations that only carry Class and Name.
type Transformer interface {
	Name() string
	Transform(ctx context.Context, entities []*EntityConfiguration) ([]*EntityConfiguration, error)
	ReverseTransform(ctx context.Context, entities []*EntityConfiguration) ([]*EntityConfiguration, error)
}
