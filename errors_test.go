package admingen

import (
	"errors"
	"fmt"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorPredicates(t *testing.T) {
	config := NewConfigurationError("bad setup", nil)
	assoc := NewUnsupportedAssociationError(`App\Node`, AssociationDescriptor{FieldName: "parent", Kind: 16, TargetClass: `App\Node`})
	op := NewUnsupportedOperationError("reverse")
	guess := NewGuessFailedError("no field", map[string]any{"target_class": `App\Node`})

	assert.True(t, IsConfigurationError(config))
	assert.False(t, IsConfigurationError(assoc))
	assert.True(t, IsUnsupportedAssociation(assoc))
	assert.True(t, IsUnsupportedOperation(op))
	assert.True(t, IsGuessFailed(guess))
	assert.False(t, IsGuessFailed(errors.New("plain")))
	assert.False(t, IsGuessFailed(nil))

	wrapped := fmt.Errorf("properties of App\\Node: %w", guess)
	assert.True(t, IsGuessFailed(wrapped))
}

func TestUnsupportedAssociationErrorDetails(t *testing.T) {
	err := NewUnsupportedAssociationError(`App\Node`, AssociationDescriptor{FieldName: "parent", Kind: 16, TargetClass: `App\Node`})

	var ge *goerrors.Error
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, goerrors.CategoryBadInput, ge.Category)
	assert.Equal(t, "unhandled relationship type: association(16)", ge.Message)
	assert.Equal(t, "parent", ge.Metadata["field"])
	assert.Equal(t, 16, ge.Metadata["kind"])
}

func TestConfigurationErrorMetadata(t *testing.T) {
	err := NewConfigurationError("duplicate entity name", map[string]any{"name": "items"})

	var ge *goerrors.Error
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, goerrors.CategoryValidation, ge.Category)
	assert.Equal(t, TextCodeConfiguration, ge.TextCode)
	assert.Equal(t, "items", ge.Metadata["name"])
}
