package errors

// TableError provides specialized error handling for Table-level operations:
// point reads, batched writes, removes, and the startup index-load pipeline.
// This structure extends the base error system with Table-specific context
// while properly supporting method chaining through all base error methods.
type TableError struct {
	// Embed the base error to inherit all standard error functionality
	// including error chaining, structured details, and error codes.
	*baseError

	// Identifies which topic was being operated on when the error occurred.
	topic string

	// Identifies the dense column index derived from the topic, when known.
	column int

	// Describes what Table operation was being performed (e.g. "Read",
	// "Write", "Remove", "LoadIndex").
	operation string

	// Captures the 32-bit key hash involved, when the error is tied to a
	// specific key rather than a whole-topic operation.
	keyHash int32
}

// NewTableError creates a new Table-specific error with the provided context.
func NewTableError(err error, code ErrorCode, msg string) *TableError {
	return &TableError{baseError: NewBaseError(err, code, msg)}
}

// Override base error methods to return *TableError instead of *baseError.

// WithMessage updates the error message while maintaining the TableError type.
func (te *TableError) WithMessage(msg string) *TableError {
	te.baseError.WithMessage(msg)
	return te
}

// WithCode sets the error code while preserving the TableError type.
func (te *TableError) WithCode(code ErrorCode) *TableError {
	te.baseError.WithCode(code)
	return te
}

// WithDetail adds contextual information while maintaining the TableError type.
func (te *TableError) WithDetail(key string, value any) *TableError {
	te.baseError.WithDetail(key, value)
	return te
}

// WithTopic records which topic was being processed when the error occurred.
func (te *TableError) WithTopic(topic string) *TableError {
	te.topic = topic
	return te
}

// WithColumn records the column index associated with the error.
func (te *TableError) WithColumn(column int) *TableError {
	te.column = column
	return te
}

// WithOperation records what Table operation was being performed.
func (te *TableError) WithOperation(operation string) *TableError {
	te.operation = operation
	return te
}

// WithKeyHash records which key hash was being processed when the error occurred.
func (te *TableError) WithKeyHash(h int32) *TableError {
	te.keyHash = h
	return te
}

// Topic returns the topic that was being processed when the error occurred.
func (te *TableError) Topic() string {
	return te.topic
}

// Column returns the column index associated with the error.
func (te *TableError) Column() int {
	return te.column
}

// Operation returns the name of the operation that was being performed.
func (te *TableError) Operation() string {
	return te.operation
}

// KeyHash returns the key hash associated with the error.
func (te *TableError) KeyHash() int32 {
	return te.keyHash
}

// NewUnknownTopicError creates an error for a reference to an undeclared topic.
func NewUnknownTopicError(topic, operation string) *TableError {
	return NewTableError(nil, ErrorCodeUnknownTopic, "topic was not declared at construction time").
		WithTopic(topic).
		WithOperation(operation)
}

// NewOffsetOverflowError creates an error for a raw offset outside [0, 2^31).
func NewOffsetOverflowError(topic string, offset int64) *TableError {
	return NewTableError(nil, ErrorCodeOffsetOverflow, "raw offset does not fit in 31 bits").
		WithTopic(topic).
		WithDetail("offset", offset).
		WithDetail("max", int64(1)<<31-1)
}

// NewIndexLoadError creates an error for a failed startup index-load pass.
func NewIndexLoadError(topic string, column int, cause error) *TableError {
	return NewTableError(cause, ErrorCodeIndexLoadFailed, "failed to rebuild index from on-disk log").
		WithTopic(topic).
		WithColumn(column).
		WithOperation("LoadIndex")
}

// NewTableClosedError creates an error for operations attempted after Close.
func NewTableClosedError(operation string) *TableError {
	return NewTableError(nil, ErrorCodeTableClosed, "table is closed").
		WithOperation(operation)
}
