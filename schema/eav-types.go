package schema

// BackendType is the physical storage family of an attribute's values. It
// selects the value table; static attributes carry no value rows at all.
type BackendType string

const (
	BackendTypeVarchar  BackendType = "varchar"
	BackendTypeText     BackendType = "text"
	BackendTypeInt      BackendType = "int"
	BackendTypeDecimal  BackendType = "decimal"
	BackendTypeDatetime BackendType = "datetime"
	BackendTypeStatic   BackendType = "static"
)

// FrontendInput is the logical value shape presented by the admin UI.
type FrontendInput string

const (
	FrontendInputText        FrontendInput = "text"
	FrontendInputTextarea    FrontendInput = "textarea"
	FrontendInputSelect      FrontendInput = "select"
	FrontendInputMultiselect FrontendInput = "multiselect"
	FrontendInputBoolean     FrontendInput = "boolean"
	FrontendInputDate        FrontendInput = "date"
	FrontendInputDatetime    FrontendInput = "datetime"
	FrontendInputPrice       FrontendInput = "price"
	FrontendInputWeight      FrontendInput = "weight"
	FrontendInputMediaImage  FrontendInput = "media_image"
	FrontendInputHidden      FrontendInput = "hidden"
)

// HasOptions reports whether the input type stores option ids instead of
// literal values.
func (f FrontendInput) HasOptions() bool {
	return f == FrontendInputSelect || f == FrontendInputMultiselect
}
