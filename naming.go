package admingen

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ettle/strcase"
	"github.com/gertd/go-pluralize"
)

var pluralizer = pluralize.NewClient()

// namespace separators accepted in class identifiers
const classSeparators = `\./`

// Tableize converts a camel or mixed case identifier to snake case.
func Tableize(s string) string {
	return strcase.ToSnake(s)
}

// EntityNameForClass derives the entity name of a class identifier:
// last namespace segment, first letter lower cased, pluralized.
// App\Entity\Comment becomes comments.
func EntityNameForClass(class string) string {
	short := ShortClassName(class)
	if short == "" {
		return ""
	}
	return pluralizer.Plural(lowerFirst(short))
}

// ShortClassName returns the last namespace segment of a class identifier.
func ShortClassName(class string) string {
	class = strings.TrimRight(strings.TrimSpace(class), classSeparators)
	if idx := strings.LastIndexAny(class, classSeparators); idx != -1 {
		return class[idx+1:]
	}
	return class
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// IdenticalNaming uses the property name as is.
type IdenticalNaming struct{}

func (IdenticalNaming) FieldNameFor(prop PropertyDescriptor) string {
	return prop.Name
}

// SerializedNameNaming prefers the serialized name, falling back to the property name.
type SerializedNameNaming struct{}

func (SerializedNameNaming) FieldNameFor(prop PropertyDescriptor) string {
	if prop.SerializedName != "" {
		return prop.SerializedName
	}
	return prop.Name
}

// SnakeCaseNaming converts the property name to snake case, the way
// serializers configured with a camel-case-to-underscore strategy do.
type SnakeCaseNaming struct{}

func (SnakeCaseNaming) FieldNameFor(prop PropertyDescriptor) string {
	return Tableize(prop.Name)
}

// NamingStrategyByName resolves the naming strategies known to the configuration.
func NamingStrategyByName(name string) (NamingStrategy, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "snake", "snake_case", "underscore":
		return SnakeCaseNaming{}, true
	case "identical", "identity":
		return IdenticalNaming{}, true
	case "serialized", "serialized_name":
		return SerializedNameNaming{}, true
	}
	return nil, false
}
