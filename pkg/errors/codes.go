package errors

// ErrorCode represents a standardized way to categorize different types of errors.
type ErrorCode string

// Base error codes represent the fundamental categories of failures that can
// occur across any software system.
const (
	// ErrorCodeIO represents failures in input/output operations across any
	// system boundary: opening, reading, writing or syncing the log files the
	// memlog reference engine keeps on disk.
	ErrorCodeIO ErrorCode = "IO_ERROR"

	// ErrorCodeInvalidInput represents caller errors where the provided data
	// doesn't meet the system's requirements.
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrorCodeInternal represents unexpected system failures that don't fit
	// into other categories: assertion failures, programming errors.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Log/storage error codes cover the failure modes of the log engine and its
// reference file-backed implementation.
const (
	// ErrorCodeLogCorrupted indicates a log file's data is damaged or truncated
	// mid-record.
	ErrorCodeLogCorrupted ErrorCode = "LOG_CORRUPTED"

	// ErrorCodeLogAppendFailed indicates the log engine rejected a batch append.
	ErrorCodeLogAppendFailed ErrorCode = "LOG_APPEND_FAILED"

	// ErrorCodeLogProtocolViolation indicates the log engine violated its own
	// contract, e.g. last_offset != first_offset + n - 1 after an append.
	ErrorCodeLogProtocolViolation ErrorCode = "LOG_PROTOCOL_VIOLATION"

	// ErrorCodePermissionDenied indicates insufficient permissions to access a
	// log file or directory.
	ErrorCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// ErrorCodeDiskFull indicates the storage device backing the log ran out
	// of space.
	ErrorCodeDiskFull ErrorCode = "DISK_FULL"

	// ErrorCodeFilesystemReadonly indicates the filesystem holding the log is
	// mounted read-only.
	ErrorCodeFilesystemReadonly ErrorCode = "FILESYSTEM_READONLY"
)

// Table-specific error codes address the specialized needs of the hash-indexed
// overlay: unknown topics, offset overflow, and startup index-load failures.
const (
	// ErrorCodeUnknownTopic indicates a caller referenced a topic that was not
	// declared at construction time.
	ErrorCodeUnknownTopic ErrorCode = "UNKNOWN_TOPIC"

	// ErrorCodeOffsetOverflow indicates a raw offset did not fit in 31 bits.
	ErrorCodeOffsetOverflow ErrorCode = "OFFSET_OVERFLOW"

	// ErrorCodeIndexLoadFailed indicates a startup index loader failed to
	// fully rebuild HashOffsets or the time index from the on-disk logs.
	ErrorCodeIndexLoadFailed ErrorCode = "INDEX_LOAD_FAILED"

	// ErrorCodeTableClosed indicates an operation was attempted on a Table
	// that has already been closed.
	ErrorCodeTableClosed ErrorCode = "TABLE_CLOSED"
)
