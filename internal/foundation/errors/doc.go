// Package errors provides foundational, type-safe error primitives used across ssio.
//
// Key features:
//   - ErrorCategory: broad classification (config, not_found, resolve, filesystem, invariant, ...)
//   - ErrorSeverity: impact level (fatal, error, warning, info)
//   - ClassifiedError: structured error with category, severity, and context
//   - ErrorBuilder: fluent API for creating classified errors
//   - CLIErrorAdapter: exit codes and user-facing formatting
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryFileSystem, "write page").
//		WithContext("output", outPath).
//		Build()
package errors
