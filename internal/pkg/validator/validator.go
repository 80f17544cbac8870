package validator

// Validator validates structs using struct-tag rules.
type Validator interface {
	// Validate checks the provided data and returns an error describing the
	// first set of violated rules, or nil when the data is valid.
	Validate(data any) error
}
