package errors

// ConfigError is a specialized error type for configuration and option
// validation failures. It embeds baseError to inherit all the standard error
// functionality, then adds fields that identify exactly which field failed
// and what rule was violated.
type ConfigError struct {
	*baseError

	// Identifies which specific option field failed validation.
	field string

	// Specifies which validation rule was violated (e.g. "required", "range").
	rule string

	// Captures what value was actually provided that failed validation.
	provided any

	// Describes what would have been valid.
	expected any
}

// NewConfigError creates a new configuration-specific error with the provided context.
func NewConfigError(err error, code ErrorCode, msg string) *ConfigError {
	return &ConfigError{baseError: NewBaseError(err, code, msg)}
}

// Override base error methods to return *ConfigError instead of *baseError.

// WithMessage updates the error message while maintaining the ConfigError type.
func (ce *ConfigError) WithMessage(msg string) *ConfigError {
	ce.baseError.WithMessage(msg)
	return ce
}

// WithCode sets the error code while preserving the ConfigError type.
func (ce *ConfigError) WithCode(code ErrorCode) *ConfigError {
	ce.baseError.WithCode(code)
	return ce
}

// WithDetail adds contextual information while maintaining the ConfigError type.
func (ce *ConfigError) WithDetail(key string, value any) *ConfigError {
	ce.baseError.WithDetail(key, value)
	return ce
}

// WithField sets which field failed validation.
func (ce *ConfigError) WithField(field string) *ConfigError {
	ce.field = field
	return ce
}

// WithRule specifies which validation rule was violated.
func (ce *ConfigError) WithRule(rule string) *ConfigError {
	ce.rule = rule
	return ce
}

// WithProvided captures what value was provided that failed validation.
func (ce *ConfigError) WithProvided(value any) *ConfigError {
	ce.provided = value
	return ce
}

// WithExpected describes what would have been a valid value.
func (ce *ConfigError) WithExpected(value any) *ConfigError {
	ce.expected = value
	return ce
}

// Field returns the field name that failed validation.
func (ce *ConfigError) Field() string {
	return ce.field
}

// Rule returns the validation rule that was violated.
func (ce *ConfigError) Rule() string {
	return ce.rule
}

// Provided returns the value that was provided and failed validation.
func (ce *ConfigError) Provided() any {
	return ce.provided
}

// Expected returns what would have been a valid value.
func (ce *ConfigError) Expected() any {
	return ce.expected
}

// NewRequiredFieldError creates a specialized error for missing required fields.
func NewRequiredFieldError(fieldName string) *ConfigError {
	return NewConfigError(nil, ErrorCodeInvalidInput, "required field is missing or empty").
		WithField(fieldName).
		WithRule("required")
}

// NewFieldRangeError creates an error for fields that are outside acceptable ranges.
func NewFieldRangeError(fieldName string, provided, min, max any) *ConfigError {
	return NewConfigError(nil, ErrorCodeInvalidInput, "field value is outside acceptable range").
		WithField(fieldName).
		WithRule("range").
		WithProvided(provided).
		WithDetail("minValue", min).
		WithDetail("maxValue", max)
}

// NewConfigurationValidationError creates an error for invalid configuration objects.
func NewConfigurationValidationError(field, issue string) *ConfigError {
	return NewConfigError(nil, ErrorCodeInvalidInput, "configuration validation failed").
		WithField(field).
		WithRule("configuration_integrity").
		WithDetail("validationIssue", issue)
}
