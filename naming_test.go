package admingen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityNameForClass(t *testing.T) {
	tests := map[string]string{
		`App\Entity\Comment`:  "comments",
		`App\Entity\Category`: "categories",
		`App\Post`:            "posts",
		"models.User":         "users",
		"Tag":                 "tags",
		"":                    "",
	}

	for class, expected := range tests {
		assert.Equal(t, expected, EntityNameForClass(class), class)
	}
}

func TestShortClassName(t *testing.T) {
	assert.Equal(t, "Comment", ShortClassName(`App\Entity\Comment`))
	assert.Equal(t, "User", ShortClassName("github.com/acme/models.User"))
	assert.Equal(t, "ArrayCollection", ShortClassName(`Doctrine\Common\Collections\ArrayCollection`))
	assert.Equal(t, "Post", ShortClassName(`App\Post\`))
	assert.Equal(t, "Post", ShortClassName("Post"))
}

func TestTableize(t *testing.T) {
	assert.Equal(t, "post_tags", Tableize("postTags"))
	assert.Equal(t, "author", Tableize("author"))
	assert.Equal(t, "published_at", Tableize("PublishedAt"))
	assert.Equal(t, "author_id", Tableize("author_id"))
}

func TestNamingStrategies(t *testing.T) {
	prop := PropertyDescriptor{Name: "publishedAt", SerializedName: "published"}

	assert.Equal(t, "publishedAt", IdenticalNaming{}.FieldNameFor(prop))
	assert.Equal(t, "published", SerializedNameNaming{}.FieldNameFor(prop))
	assert.Equal(t, "published_at", SnakeCaseNaming{}.FieldNameFor(prop))
	assert.Equal(t, "title", SerializedNameNaming{}.FieldNameFor(PropertyDescriptor{Name: "title"}))

	custom := NamingStrategyFunc(func(p PropertyDescriptor) string { return "x_" + p.Name })
	assert.Equal(t, "x_publishedAt", custom.FieldNameFor(prop))
}

func TestNamingStrategyByName(t *testing.T) {
	tests := []struct {
		name     string
		expected NamingStrategy
		ok       bool
	}{
		{"", SnakeCaseNaming{}, true},
		{"snake_case", SnakeCaseNaming{}, true},
		{" Identical ", IdenticalNaming{}, true},
		{"serialized", SerializedNameNaming{}, true},
		{"kebab", nil, false},
	}

	for _, tt := range tests {
		strategy, ok := NamingStrategyByName(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.expected, strategy, tt.name)
	}
}
