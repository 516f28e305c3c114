package admingen

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/goliatone/go-admingen"

// DuplicatePolicy decides what happens when two entities share a name.
type DuplicatePolicy string

const (
	// DuplicateOverwrite keeps the last entity with a given name.
	DuplicateOverwrite DuplicatePolicy = "overwrite"
	// DuplicateError fails the run with a configuration error.
	DuplicateError DuplicatePolicy = "error"
)

// Generator runs the transformer pipeline and renders the resulting document.
type Generator struct {
	transformers []Transformer
	renderer     Renderer
	logger       Logger
	tracer       trace.Tracer
	duplicates   DuplicatePolicy
	filter       func(EntityDefinition) bool
}

type Option func(*Generator)

// WithTransformers appends pipeline stages, run in the given order.
func WithTransformers(transformers ...Transformer) Option {
	return func(g *Generator) {
		for _, t := range transformers {
			if t != nil {
				g.transformers = append(g.transformers, t)
			}
		}
	}
}

func WithLogger(lgr Logger) Option {
	return func(g *Generator) {
		g.logger = getLogger(lgr)
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(g *Generator) {
		if tracer != nil {
			g.tracer = tracer
		}
	}
}

func WithDuplicatePolicy(policy DuplicatePolicy) Option {
	return func(g *Generator) {
		if policy != "" {
			g.duplicates = policy
		}
	}
}

// WithEntityFilter drops definitions for which keep returns false before the run.
func WithEntityFilter(keep func(EntityDefinition) bool) Option {
	return func(g *Generator) {
		g.filter = keep
	}
}

// NewGenerator builds a generator. At least one transformer is required.
func NewGenerator(renderer Renderer, opts ...Option) (*Generator, error) {
	g := &Generator{
		renderer:   renderer,
		logger:     getLogger(),
		tracer:     otel.Tracer(tracerName),
		duplicates: DuplicateOverwrite,
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.renderer == nil {
		return nil, NewConfigurationError("generator requires a renderer", nil)
	}

	if len(g.transformers) == 0 {
		return nil, NewConfigurationError("generator requires at least one transformer", nil)
	}

	switch g.duplicates {
	case DuplicateOverwrite, DuplicateError:
	default:
		return nil, NewConfigurationError("unknown duplicate name policy", map[string]any{
			"policy": string(g.duplicates),
		})
	}

	return g, nil
}

// NewDefaultGenerator wires the field type and relationship stages, followed
// by any transformer passed through opts.
func NewDefaultGenerator(provider MetadataProvider, naming NamingStrategy, guesser ReferenceGuesser, renderer Renderer, opts ...Option) (*Generator, error) {
	stages := WithTransformers(
		NewFieldTypeTransformer(provider, naming),
		NewRelationshipTransformer(provider, guesser),
	)
	return NewGenerator(renderer, append([]Option{stages}, opts...)...)
}

// Generate builds the document for defs and renders it.
func (g *Generator) Generate(ctx context.Context, defs []EntityDefinition) ([]byte, error) {
	ctx, span := g.tracer.Start(ctx, "admingen.generate")
	defer span.End()

	doc, err := g.Build(ctx, defs)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	out, err := g.Render(ctx, doc)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("admingen.output_bytes", len(out)))
	return out, nil
}

// Render hands an already built document to the renderer.
func (g *Generator) Render(ctx context.Context, doc Document) ([]byte, error) {
	out, err := g.renderer.Render(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("render configuration: %w", err)
	}
	return out, nil
}

// Build runs every stage and indexes the result by entity name.
func (g *Generator) Build(ctx context.Context, defs []EntityDefinition) (Document, error) {
	seeds, err := g.seed(defs)
	if err != nil {
		return nil, err
	}

	entities := seeds
	for _, stage := range g.transformers {
		stageCtx, span := g.tracer.Start(ctx, "admingen.stage."+stage.Name(),
			trace.WithAttributes(attribute.Int("admingen.entities", len(entities))))

		entities, err = stage.Transform(stageCtx, entities)
		if err != nil {
			recordError(span, err)
			span.End()
			return nil, err
		}
		span.End()
		g.logger.Debug("stage %s produced %d entities", stage.Name(), len(entities))
	}

	return g.index(entities)
}

func (g *Generator) seed(defs []EntityDefinition) ([]*EntityConfiguration, error) {
	if len(defs) == 0 {
		return nil, NewConfigurationError("no entity available for generation", nil)
	}

	seeds := make([]*EntityConfiguration, 0, len(defs))
	for i, def := range defs {
		if def.Class == "" {
			return nil, NewConfigurationError("entity definition has no class", map[string]any{
				"index": i,
				"name":  def.Name,
			})
		}
		if g.filter != nil && !g.filter(def) {
			g.logger.Debug("entity %s excluded by filter", def.Class)
			continue
		}

		name := def.Name
		if name == "" {
			name = EntityNameForClass(def.Class)
		}
		seeds = append(seeds, &EntityConfiguration{Class: def.Class, Name: name})
	}

	if len(seeds) == 0 {
		return nil, NewConfigurationError("no entity available for generation", map[string]any{
			"filtered": len(defs),
		})
	}

	return seeds, nil
}

func (g *Generator) index(entities []*EntityConfiguration) (Document, error) {
	doc := make(Document, len(entities))
	for _, entity := range entities {
		if entity == nil {
			continue
		}
		if previous, exists := doc[entity.Name]; exists {
			if g.duplicates == DuplicateError {
				return nil, NewConfigurationError("duplicate entity name", map[string]any{
					"name":     entity.Name,
					"class":    entity.Class,
					"previous": previous.Class,
				})
			}
			g.logger.Warn("entity name %q used by %s and %s, keeping %s", entity.Name, previous.Class, entity.Class, entity.Class)
		}
		doc[entity.Name] = entity
	}
	return doc, nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
