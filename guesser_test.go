package admingen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultReferenceGuesser_Guess(t *testing.T) {
	provider := blogProvider()
	guesser := NewDefaultReferenceGuesser(provider, IdenticalNaming{})

	field, err := guesser.Guess(classPost)
	require.NoError(t, err)
	assert.Equal(t, "title", field)

	field, err = guesser.Guess(classUser)
	require.NoError(t, err)
	assert.Equal(t, "username", field)

	field, err = guesser.Guess(classComment)
	require.NoError(t, err)
	assert.Equal(t, "id", field, "falls back to the identifier")

	_, err = guesser.Guess(`App\Entity\Unknown`)
	require.Error(t, err)
	assert.True(t, IsGuessFailed(err))
}

func TestDefaultReferenceGuesser_Options(t *testing.T) {
	provider := NewStaticProvider()
	provider.AddEntity(EntityDefinition{Class: `App\Country`},
		[]PropertyDescriptor{
			{Name: "isoCode", Type: TypeRef{Name: "string"}},
			{Name: "name", Type: TypeRef{Name: "string"}},
		}, nil)
	provider.AddEntity(EntityDefinition{Class: `App\Log`},
		[]PropertyDescriptor{{Name: "message", Type: TypeRef{Name: "string"}}}, nil)

	guesser := NewDefaultReferenceGuesser(provider, SnakeCaseNaming{}, WithReferenceCandidates("isoCode"))
	field, err := guesser.Guess(`App\Country`)
	require.NoError(t, err)
	assert.Equal(t, "iso_code", field, "result follows the naming strategy")

	_, err = guesser.Guess(`App\Log`)
	require.Error(t, err)
	assert.True(t, IsGuessFailed(err))

	guesser = NewDefaultReferenceGuesser(provider, nil, WithIdentifierField("message"))
	field, err = guesser.Guess(`App\Log`)
	require.NoError(t, err)
	assert.Equal(t, "message", field)
}

func TestDefaultReferenceGuesser_OneToMany(t *testing.T) {
	guesser := NewDefaultReferenceGuesser(NewStaticProvider(), nil)

	field, err := guesser.GuessOneToManyReferenceField(AssociationDescriptor{FieldName: "comments", MappedBy: "blogPost"})
	require.NoError(t, err)
	assert.Equal(t, "blog_post", field)

	_, err = guesser.GuessOneToManyReferenceField(AssociationDescriptor{FieldName: "comments"})
	require.Error(t, err)
	assert.True(t, IsGuessFailed(err))
}

func TestDefaultReferenceGuesser_NoProvider(t *testing.T) {
	_, err := NewDefaultReferenceGuesser(nil, nil).Guess(classPost)
	require.Error(t, err)
	assert.True(t, IsGuessFailed(err))
}

func TestStaticReferenceGuesser(t *testing.T) {
	guesser := blogGuesser()

	field, err := guesser.Guess(classTag)
	require.NoError(t, err)
	assert.Equal(t, "name", field)

	_, err = guesser.Guess(classComment)
	require.Error(t, err)
	assert.True(t, IsGuessFailed(err))

	field, err = guesser.GuessOneToManyReferenceField(AssociationDescriptor{FieldName: "comments"})
	require.NoError(t, err)
	assert.Equal(t, "post", field)

	field, err = guesser.GuessOneToManyReferenceField(AssociationDescriptor{FieldName: "replies", MappedBy: "parentComment"})
	require.NoError(t, err)
	assert.Equal(t, "parent_comment", field)

	_, err = guesser.GuessOneToManyReferenceField(AssociationDescriptor{FieldName: "replies"})
	require.Error(t, err)
	assert.True(t, IsGuessFailed(err))

	guesser.Fallback = "id"
	field, err = guesser.Guess(classComment)
	require.NoError(t, err)
	assert.Equal(t, "id", field)
}

func TestStaticReferenceGuesser_Chain(t *testing.T) {
	provider := blogProvider()
	guesser := StaticReferenceGuesser{
		ByClass: map[string]string{classUser: "details"},
		Next:    NewDefaultReferenceGuesser(provider, nil),
	}

	field, err := guesser.Guess(classUser)
	require.NoError(t, err)
	assert.Equal(t, "details", field)

	field, err = guesser.Guess(classTag)
	require.NoError(t, err)
	assert.Equal(t, "name", field)

	_, err = guesser.GuessOneToManyReferenceField(AssociationDescriptor{FieldName: "comments"})
	require.Error(t, err, "the next guesser needs mapped by")
	assert.True(t, IsGuessFailed(err))
}
