// This package addresses the fundamental challenge that generic error handling presents in complex
// systems: when an error occurs, developers and operators need much more than just "something went wrong."
// They need to understand exactly what failed, why it failed, where it failed, and most importantly,
// what they can do about it.
//
// Architecture and Design Philosophy:
//
// The error system is built around a hierarchical structure that starts with a foundational baseError
// and extends into domain-specific error types. A ConfigError needs to know which option field failed
// and what rule was violated. A LogError needs to know which physical topic and offset were involved.
// A TableError needs to know which key hash and operation were being processed. By capturing this
// domain-specific context at the point of failure, the system enables much more intelligent error
// handling throughout the application stack.
package errors

import (
	stdErrors "errors"
	"os"
	"syscall"
)

// IsConfigError checks if the given error is a ConfigError or contains one in its error chain.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return stdErrors.As(err, &ce)
}

// IsLogError determines if an error is related to log engine operations, such as file I/O,
// disk space issues, or log corruption.
func IsLogError(err error) bool {
	var le *LogError
	return stdErrors.As(err, &le)
}

// IsTableError identifies errors that occurred during Table operations such as point reads,
// writes, removes, or the startup index-load pipeline.
func IsTableError(err error) bool {
	var te *TableError
	return stdErrors.As(err, &te)
}

// AsConfigError safely extracts a ConfigError from an error chain.
func AsConfigError(err error) (*ConfigError, bool) {
	var ce *ConfigError
	if stdErrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// AsLogError extracts LogError context from an error chain.
func AsLogError(err error) (*LogError, bool) {
	var le *LogError
	if stdErrors.As(err, &le) {
		return le, true
	}
	return nil, false
}

// AsTableError extracts TableError context from an error chain.
func AsTableError(err error) (*TableError, bool) {
	var te *TableError
	if stdErrors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from any error that supports it, or returns
// ErrorCodeInternal for errors that don't have specific codes.
func GetErrorCode(err error) ErrorCode {
	if ce, ok := AsConfigError(err); ok {
		return ce.Code()
	}
	if le, ok := AsLogError(err); ok {
		return le.Code()
	}
	if te, ok := AsTableError(err); ok {
		return te.Code()
	}
	return ErrorCodeInternal
}

// GetErrorDetails extracts structured details from any error that supports them,
// returning an empty map for errors without details.
func GetErrorDetails(err error) map[string]any {
	if ce, ok := AsConfigError(err); ok {
		if details := ce.Details(); details != nil {
			return details
		}
	}
	if le, ok := AsLogError(err); ok {
		if details := le.Details(); details != nil {
			return details
		}
	}
	if te, ok := AsTableError(err); ok {
		if details := te.Details(); details != nil {
			return details
		}
	}
	return make(map[string]any)
}

// ClassifyDirectoryCreationError analyzes directory creation failures and returns
// appropriate error codes based on the underlying system error.
func ClassifyDirectoryCreationError(err error, path string) error {
	if os.IsPermission(err) {
		return NewLogError(
			err, ErrorCodePermissionDenied,
			"insufficient permissions to create log directory",
		).WithPath(path).
			WithDetail("operation", "directory_creation").
			WithDetail("required_permission", "write").
			WithDetail("suggestion", "check directory permissions or run with elevated privileges")
	}

	if pathErr, ok := err.(*os.PathError); ok {
		if errno, ok := pathErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ENOSPC:
				return NewLogError(
					err, ErrorCodeDiskFull,
					"insufficient disk space to create log directory",
				).WithPath(path).
					WithDetail("operation", "directory_creation").
					WithDetail("suggestion", "free up disk space or choose a different location")
			case syscall.EROFS:
				return NewLogError(
					err, ErrorCodeFilesystemReadonly,
					"cannot create directory on read-only filesystem",
				).WithPath(path).
					WithDetail("operation", "directory_creation").
					WithDetail("suggestion", "remount filesystem with write permissions")
			}
		}
	}

	return NewLogError(
		err, ErrorCodeIO, "failed to create log directory",
	).WithPath(path).WithDetail("operation", "directory_creation")
}

// ClassifyFileOpenError analyzes file opening failures and returns appropriate
// error codes based on the underlying system error.
func ClassifyFileOpenError(err error, filePath, fileName string) error {
	if os.IsPermission(err) {
		return NewLogError(
			err, ErrorCodePermissionDenied,
			"insufficient permissions to open log file",
		).WithPath(filePath).
			WithFileName(fileName).
			WithDetail("operation", "file_open").
			WithDetail("required_permission", "read_write").
			WithDetail("suggestion", "check file permissions or run with elevated privileges")
	}

	if pathErr, ok := err.(*os.PathError); ok {
		if errno, ok := pathErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ENOSPC:
				return NewLogError(
					err, ErrorCodeDiskFull,
					"insufficient disk space to create log file",
				).WithPath(filePath).
					WithFileName(fileName).
					WithDetail("operation", "file_open").
					WithDetail("suggestion", "free up disk space")
			case syscall.EROFS:
				return NewLogError(
					err, ErrorCodeFilesystemReadonly,
					"cannot create file on read-only filesystem",
				).WithPath(filePath).
					WithFileName(fileName).
					WithDetail("operation", "file_open").
					WithDetail("suggestion", "remount filesystem with write permissions")
			}
		}
	}

	return NewLogError(err, ErrorCodeIO, "failed to open log file").
		WithPath(filePath).
		WithFileName(fileName).
		WithDetail("operation", "file_open").
		WithDetail("flags", []string{"O_CREATE", "O_RDWR"})
}

// ClassifySyncError analyzes sync operation failures and returns appropriate error codes.
func ClassifySyncError(err error, fileName, filePath string, offset int64) error {
	if pathErr, ok := err.(*os.PathError); ok {
		if errno, ok := pathErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ENOSPC:
				return NewLogError(
					err, ErrorCodeDiskFull,
					"cannot sync file: insufficient disk space",
				).WithFileName(fileName).
					WithPath(filePath).
					WithOffset(offset).
					WithDetail("operation", "file_sync").
					WithDetail("suggestion", "free up disk space before continuing")
			case syscall.EROFS:
				return NewLogError(
					err, ErrorCodeFilesystemReadonly,
					"cannot sync file: filesystem is read-only",
				).WithFileName(fileName).
					WithPath(filePath).
					WithOffset(offset).
					WithDetail("operation", "file_sync").
					WithDetail("suggestion", "remount filesystem with write permissions")
			case syscall.EIO:
				return NewLogError(
					err, ErrorCodeIO,
					"I/O error during file sync - possible hardware or corruption issue",
				).WithFileName(fileName).
					WithPath(filePath).
					WithOffset(offset).
					WithDetail("operation", "file_sync").
					WithDetail("severity", "high").
					WithDetail("suggestion", "check filesystem integrity and hardware health")
			}
		}
	}

	return NewLogError(
		err, ErrorCodeIO, "failed to sync log file to disk",
	).WithFileName(fileName).WithPath(filePath).WithOffset(offset).
		WithDetail("operation", "file_sync")
}
