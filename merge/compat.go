package merge

import (
	"errors"
	"fmt"

	"github.com/attrcare/attrcare/schema"
)

var (
	ErrDifferentEntityType = errors.New("attributes belong to different entity types")
	ErrBackendMismatch     = errors.New("backend storage types differ")
	ErrInputMismatch       = errors.New("frontend input types are not compatible")
	ErrStaticAttribute     = errors.New("static attributes have no value storage")
)

// compatibleInputs lists one-directional source -> target input allowances
// beyond exact equality. text and textarea are interchangeable; boolean can
// widen into select; price and weight read cleanly as text.
var compatibleInputs = map[schema.FrontendInput][]schema.FrontendInput{
	schema.FrontendInputText:     {schema.FrontendInputTextarea},
	schema.FrontendInputTextarea: {schema.FrontendInputText},
	schema.FrontendInputBoolean:  {schema.FrontendInputSelect},
	schema.FrontendInputPrice:    {schema.FrontendInputText},
	schema.FrontendInputWeight:   {schema.FrontendInputText},
}

// CheckCompatibility decides whether source values can move into target.
// Backend storage types must match exactly; frontend inputs must match or be
// allow-listed.
func CheckCompatibility(source, target schema.EavAttributeRow) error {
	if source.BackendType == schema.BackendTypeStatic || target.BackendType == schema.BackendTypeStatic {
		return ErrStaticAttribute
	}

	if source.EntityTypeID != target.EntityTypeID {
		return ErrDifferentEntityType
	}

	if source.BackendType != target.BackendType {
		return fmt.Errorf("%w: %s vs %s", ErrBackendMismatch, source.BackendType, target.BackendType)
	}

	if source.FrontendInput == target.FrontendInput {
		return nil
	}

	for _, allowed := range compatibleInputs[source.FrontendInput] {
		if allowed == target.FrontendInput {
			return nil
		}
	}

	return fmt.Errorf("%w: %s vs %s", ErrInputMismatch, source.FrontendInput, target.FrontendInput)
}
