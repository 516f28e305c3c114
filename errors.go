package admingen

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to generator errors.
const (
	TextCodeConfiguration          = "CONFIGURATION_ERROR"
	TextCodeUnsupportedAssociation = "UNSUPPORTED_ASSOCIATION"
	TextCodeUnsupportedOperation   = "UNSUPPORTED_OPERATION"
	TextCodeGuessFailed            = "GUESS_FAILED"
)

// NewConfigurationError reports an invalid generator setup or input batch.
func NewConfigurationError(message string, metadata map[string]any) error {
	return goerrors.New(message, goerrors.CategoryValidation).
		WithTextCode(TextCodeConfiguration).
		WithMetadata(ensureMetadata(metadata))
}

// NewUnsupportedAssociationError reports an association kind the resolver cannot handle.
func NewUnsupportedAssociationError(class string, assoc AssociationDescriptor) error {
	message := fmt.Sprintf("unhandled relationship type: %s", assoc.Kind)
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithTextCode(TextCodeUnsupportedAssociation).
		WithMetadata(map[string]any{
			"class":        class,
			"field":        assoc.FieldName,
			"kind":         int(assoc.Kind),
			"target_class": assoc.TargetClass,
		})
}

// NewUnsupportedOperationError is returned by reverse transforms.
func NewUnsupportedOperationError(operation string) error {
	return goerrors.New(operation+" is not supported", goerrors.CategoryInternal).
		WithTextCode(TextCodeUnsupportedOperation).
		WithMetadata(map[string]any{"operation": operation})
}

// NewGuessFailedError reports that no back-reference field could be determined.
func NewGuessFailedError(message string, metadata map[string]any) error {
	return goerrors.New(message, goerrors.CategoryNotFound).
		WithTextCode(TextCodeGuessFailed).
		WithMetadata(ensureMetadata(metadata))
}

func IsConfigurationError(err error) bool {
	return hasTextCode(err, TextCodeConfiguration)
}

func IsUnsupportedAssociation(err error) bool {
	return hasTextCode(err, TextCodeUnsupportedAssociation)
}

func IsUnsupportedOperation(err error) bool {
	return hasTextCode(err, TextCodeUnsupportedOperation)
}

func IsGuessFailed(err error) bool {
	return hasTextCode(err, TextCodeGuessFailed)
}

func hasTextCode(err error, code string) bool {
	var ge *goerrors.Error
	if !errors.As(err, &ge) {
		return false
	}
	return ge.TextCode == code
}

func ensureMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return map[string]any{}
	}
	return metadata
}
