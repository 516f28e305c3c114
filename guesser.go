package admingen

import (
	"slices"
)

// DefaultReferenceFields are tried in order when guessing the field shown for a reference.
var DefaultReferenceFields = []string{"name", "title", "label", "username", "email", "slug"}

// DefaultReferenceGuesser looks at the target class properties to pick the
// label of a reference, and at mappedBy for one-to-many back-references.
type DefaultReferenceGuesser struct {
	provider   MetadataProvider
	naming     NamingStrategy
	candidates []string
	identifier string
}

type GuesserOption func(*DefaultReferenceGuesser)

// WithReferenceCandidates replaces the preferred property names.
func WithReferenceCandidates(names ...string) GuesserOption {
	return func(g *DefaultReferenceGuesser) {
		g.candidates = slices.Clone(names)
	}
}

// WithIdentifierField sets the fallback used when no candidate exists.
func WithIdentifierField(name string) GuesserOption {
	return func(g *DefaultReferenceGuesser) {
		g.identifier = name
	}
}

func NewDefaultReferenceGuesser(provider MetadataProvider, naming NamingStrategy, opts ...GuesserOption) *DefaultReferenceGuesser {
	if naming == nil {
		naming = IdenticalNaming{}
	}
	g := &DefaultReferenceGuesser{
		provider:   provider,
		naming:     naming,
		candidates: slices.Clone(DefaultReferenceFields),
		identifier: "id",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Guess returns the first candidate property of targetClass, the identifier
// when none matches.
func (g *DefaultReferenceGuesser) Guess(targetClass string) (string, error) {
	if g.provider == nil {
		return "", NewGuessFailedError("reference guesser has no metadata provider", map[string]any{
			"target_class": targetClass,
		})
	}

	props, err := g.provider.PropertiesOf(targetClass)
	if err != nil {
		return "", NewGuessFailedError("cannot read target properties", map[string]any{
			"target_class": targetClass,
			"cause":        err.Error(),
		})
	}

	names := make(map[string]string, len(props))
	for _, prop := range props {
		names[prop.Name] = g.naming.FieldNameFor(prop)
	}

	for _, candidate := range g.candidates {
		if name, ok := names[candidate]; ok {
			return name, nil
		}
	}

	if name, ok := names[g.identifier]; ok && g.identifier != "" {
		return name, nil
	}

	return "", NewGuessFailedError("no reference field found on target", map[string]any{
		"target_class": targetClass,
		"candidates":   g.candidates,
	})
}

// GuessOneToManyReferenceField returns the table cased owning side of the association.
func (g *DefaultReferenceGuesser) GuessOneToManyReferenceField(assoc AssociationDescriptor) (string, error) {
	if assoc.MappedBy == "" {
		return "", NewGuessFailedError("one-to-many association has no mapped by field", map[string]any{
			"field":        assoc.FieldName,
			"target_class": assoc.TargetClass,
		})
	}
	return Tableize(assoc.MappedBy), nil
}

// StaticReferenceGuesser answers from fixed tables, useful when the
// back-references are known up front. Misses go to Next when set.
type StaticReferenceGuesser struct {
	ByClass  map[string]string
	ByField  map[string]string
	Fallback string
	Next     ReferenceGuesser
}

func (s StaticReferenceGuesser) Guess(targetClass string) (string, error) {
	if field, ok := s.ByClass[targetClass]; ok {
		return field, nil
	}
	if s.Next != nil {
		return s.Next.Guess(targetClass)
	}
	if s.Fallback != "" {
		return s.Fallback, nil
	}
	return "", NewGuessFailedError("no reference field configured", map[string]any{
		"target_class": targetClass,
	})
}

func (s StaticReferenceGuesser) GuessOneToManyReferenceField(assoc AssociationDescriptor) (string, error) {
	if field, ok := s.ByField[assoc.FieldName]; ok {
		return field, nil
	}
	if s.Next != nil {
		return s.Next.GuessOneToManyReferenceField(assoc)
	}
	if assoc.MappedBy != "" {
		return Tableize(assoc.MappedBy), nil
	}
	return "", NewGuessFailedError("no back-reference configured", map[string]any{
		"field":        assoc.FieldName,
		"target_class": assoc.TargetClass,
	})
}
