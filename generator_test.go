package admingen

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticStage replaces the batch with fixed entities.
type staticStage struct {
	name     string
	entities []*EntityConfiguration
	err      error
	calls    int
}

func (s *staticStage) Name() string { return s.name }

func (s *staticStage) Transform(_ context.Context, _ []*EntityConfiguration) ([]*EntityConfiguration, error) {
	s.calls++
	return s.entities, s.err
}

func (s *staticStage) ReverseTransform(context.Context, []*EntityConfiguration) ([]*EntityConfiguration, error) {
	return nil, NewUnsupportedOperationError("static stage")
}

func TestNewGenerator_Validation(t *testing.T) {
	_, err := NewGenerator(JSONRenderer{})
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err), "zero transformers")

	_, err = NewGenerator(nil, WithTransformers(&staticStage{name: "noop"}))
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err), "missing renderer")

	_, err = NewGenerator(JSONRenderer{}, WithTransformers(&staticStage{name: "noop"}), WithDuplicatePolicy("merge"))
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err), "unknown duplicate policy")

	g, err := NewGenerator(JSONRenderer{}, WithTransformers(nil, &staticStage{name: "noop"}))
	require.NoError(t, err)
	assert.Len(t, g.transformers, 1)
}

func TestGenerator_EmptyBatch(t *testing.T) {
	g, err := NewDefaultGenerator(blogProvider(), IdenticalNaming{}, blogGuesser(), JSONRenderer{})
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.Contains(t, err.Error(), "no entity available for generation")
}

func TestGenerator_Build(t *testing.T) {
	provider := blogProvider()
	g, err := NewDefaultGenerator(provider, IdenticalNaming{}, blogGuesser(), JSONRenderer{})
	require.NoError(t, err)

	doc, err := g.Build(context.Background(), provider.Definitions())
	require.NoError(t, err)

	assert.Equal(t, []string{"comments", "posts", "tags", "users"}, doc.Names())

	for name, entity := range doc {
		assert.Equal(t, name, entity.Name)
	}

	comments, ok := doc["posts"].Field("comments")
	require.True(t, ok)
	assert.Equal(t, &FieldConfiguration{
		Name:             "comments",
		Type:             FieldTypeReferencedList,
		ReferencedEntity: &EntityRef{Name: "comments", Class: classComment},
		ReferencedField:  "post",
	}, comments)
}

func TestGenerator_Idempotent(t *testing.T) {
	provider := blogProvider()
	g, err := NewDefaultGenerator(provider, SnakeCaseNaming{}, blogGuesser(), JSONRenderer{Indent: "  "})
	require.NoError(t, err)

	first, err := g.Generate(context.Background(), provider.Definitions())
	require.NoError(t, err)
	second, err := g.Generate(context.Background(), provider.Definitions())
	require.NoError(t, err)

	if diff := cmp.Diff(string(first), string(second)); diff != "" {
		t.Errorf("output changed between runs (-first +second):\n%s", diff)
	}
}

func TestGenerator_DerivesMissingNames(t *testing.T) {
	provider := NewStaticProvider()
	provider.AddEntity(EntityDefinition{Class: `App\Entity\Category`},
		[]PropertyDescriptor{{Name: "label", Type: TypeRef{Name: "string"}}}, nil)

	g, err := NewDefaultGenerator(provider, nil, StaticReferenceGuesser{}, JSONRenderer{})
	require.NoError(t, err)

	doc, err := g.Build(context.Background(), []EntityDefinition{{Class: `App\Entity\Category`}})
	require.NoError(t, err)
	assert.Equal(t, []string{"categories"}, doc.Names())
}

func TestGenerator_MissingClass(t *testing.T) {
	g, err := NewGenerator(JSONRenderer{}, WithTransformers(&staticStage{name: "noop"}))
	require.NoError(t, err)

	_, err = g.Build(context.Background(), []EntityDefinition{{Name: "orphans"}})
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
}

func TestGenerator_DuplicateNames(t *testing.T) {
	stage := &staticStage{
		name: "duplicates",
		entities: []*EntityConfiguration{
			{Class: `App\A\Item`, Name: "items"},
			{Class: `App\B\Item`, Name: "items"},
		},
	}
	defs := []EntityDefinition{{Class: `App\A\Item`}, {Class: `App\B\Item`}}

	t.Run("overwrite", func(t *testing.T) {
		lgr := newRecordingLogger()
		g, err := NewGenerator(JSONRenderer{}, WithTransformers(stage), WithLogger(lgr))
		require.NoError(t, err)

		doc, err := g.Build(context.Background(), defs)
		require.NoError(t, err)
		require.Len(t, doc, 1)
		assert.Equal(t, `App\B\Item`, doc["items"].Class)
		assert.Equal(t, 1, lgr.count("warn"))
	})

	t.Run("error", func(t *testing.T) {
		g, err := NewGenerator(JSONRenderer{}, WithTransformers(stage), WithDuplicatePolicy(DuplicateError))
		require.NoError(t, err)

		_, err = g.Build(context.Background(), defs)
		require.Error(t, err)
		assert.True(t, IsConfigurationError(err))
	})
}

func TestGenerator_EntityFilter(t *testing.T) {
	provider := blogProvider()
	keep := func(def EntityDefinition) bool { return def.Class != classTag }

	g, err := NewDefaultGenerator(provider, IdenticalNaming{}, blogGuesser(), JSONRenderer{}, WithEntityFilter(keep))
	require.NoError(t, err)

	doc, err := g.Build(context.Background(), provider.Definitions())
	require.NoError(t, err)
	assert.Equal(t, []string{"comments", "posts", "users"}, doc.Names())

	// tags left the batch, so the association is skipped and the field keeps its inferred type
	tags, ok := doc["posts"].Field("tags")
	require.True(t, ok)
	assert.Equal(t, FieldTypeReferenceMany, tags.Type)
	assert.Empty(t, tags.ReferencedField)

	_, err = g.Build(context.Background(), []EntityDefinition{{Class: classTag, Name: "tags"}})
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err), "everything filtered out")
}

func TestGenerator_StageErrorStopsPipeline(t *testing.T) {
	boom := errors.New("boom")
	failing := &staticStage{name: "failing", err: boom}
	after := &staticStage{name: "after"}

	g, err := NewGenerator(JSONRenderer{}, WithTransformers(failing, after))
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), []EntityDefinition{{Class: `App\Thing`}})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 0, after.calls)
}

func TestGenerator_RenderError(t *testing.T) {
	boom := errors.New("template exploded")
	renderer := RendererFunc(func(context.Context, Document) ([]byte, error) {
		return nil, boom
	})
	stage := &staticStage{name: "one", entities: []*EntityConfiguration{{Class: `App\Thing`, Name: "things"}}}

	g, err := NewGenerator(renderer, WithTransformers(stage))
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), []EntityDefinition{{Class: `App\Thing`}})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "render configuration")
}

func TestGenerator_RendererReceivesDocument(t *testing.T) {
	var seen []string
	renderer := RendererFunc(func(_ context.Context, doc Document) ([]byte, error) {
		for name := range doc {
			seen = append(seen, name)
		}
		sort.Strings(seen)
		return []byte("ok"), nil
	})

	provider := blogProvider()
	g, err := NewDefaultGenerator(provider, IdenticalNaming{}, blogGuesser(), renderer)
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), provider.Definitions())
	require.NoError(t, err)
	assert.Equal(t, "ok", string(out))
	assert.Equal(t, []string{"comments", "posts", "tags", "users"}, seen)
}
