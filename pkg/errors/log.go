package errors

// LogError is a specialized error type for failures coming from the log
// engine or its reference implementation (internal/memlog). It embeds
// baseError to inherit all the standard error functionality, then adds
// fields that pinpoint exactly which physical file and offset were involved.
type LogError struct {
	*baseError
	topic    string // Physical topic (T, T~, T_idx, T~_idx) involved.
	offset   int64  // Byte or record offset where the problem happened.
	fileName string // Name of the file that caused the issue.
	path     string // Path of the file that caused the issue.
}

// NewLogError creates a new log-specific error.
func NewLogError(err error, code ErrorCode, msg string) *LogError {
	return &LogError{baseError: NewBaseError(err, code, msg)}
}

// Override base error methods to return *LogError instead of *baseError.

// WithMessage updates the error message while maintaining the LogError type.
func (le *LogError) WithMessage(msg string) *LogError {
	le.baseError.WithMessage(msg)
	return le
}

// WithCode sets the error code while preserving the LogError type.
func (le *LogError) WithCode(code ErrorCode) *LogError {
	le.baseError.WithCode(code)
	return le
}

// WithDetail adds contextual information while maintaining the LogError type.
func (le *LogError) WithDetail(key string, value any) *LogError {
	le.baseError.WithDetail(key, value)
	return le
}

// WithTopic records which physical topic was involved in the error.
func (le *LogError) WithTopic(topic string) *LogError {
	le.topic = topic
	return le
}

// WithOffset records the offset where the error occurred.
func (le *LogError) WithOffset(offset int64) *LogError {
	le.offset = offset
	return le
}

// WithFileName captures which file was being processed when the error occurred.
func (le *LogError) WithFileName(fileName string) *LogError {
	le.fileName = fileName
	return le
}

// WithPath captures which path was being processed when the error occurred.
func (le *LogError) WithPath(path string) *LogError {
	le.path = path
	return le
}

// Topic returns the physical topic associated with the error.
func (le *LogError) Topic() string {
	return le.topic
}

// Offset returns the offset within the log where the error happened.
func (le *LogError) Offset() int64 {
	return le.offset
}

// FileName returns the name of the file that was being processed.
func (le *LogError) FileName() string {
	return le.fileName
}

// Path returns the path of the file that was being processed.
func (le *LogError) Path() string {
	return le.path
}
