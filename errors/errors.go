// Package errors provides error types for pipeline rollback operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a failed rollback operation with context about where it
// failed. It wraps the underlying AWS SDK error with the operation name and,
// when applicable, the pipeline, bucket and object key involved.
type Error struct {
	// Op is the operation that failed (e.g., "resolve", "history", "repoint")
	Op string

	// Pipeline is the CodePipeline pipeline name (if applicable)
	Pipeline string

	// Bucket is the S3 bucket name (if applicable)
	Bucket string

	// Key is the S3 object key or prefix (if applicable)
	Key string

	// Err is the underlying error from the AWS SDK or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	switch {
	case e.Pipeline != "":
		return fmt.Sprintf("rollback.%s pipeline %s: %v", e.Op, e.Pipeline, e.Err)
	case e.Bucket != "" && e.Key != "":
		return fmt.Sprintf("rollback.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	case e.Bucket != "":
		return fmt.Sprintf("rollback.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	default:
		return fmt.Sprintf("rollback.%s: %v", e.Op, e.Err)
	}
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithPipeline adds pipeline context to an existing error.
func (e *Error) WithPipeline(pipeline string) *Error {
	e.Pipeline = pipeline
	return e
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// Sentinel errors for common rollback failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrReleaseNotFound indicates that no artifacts exist for the requested commit
	ErrReleaseNotFound = errors.New("rollback: release not found")

	// ErrLatestMissing indicates that the latest prefix holds no objects
	ErrLatestMissing = errors.New("rollback: latest pointer is empty")

	// ErrPipelineNotFound indicates that the named pipeline does not exist
	ErrPipelineNotFound = errors.New("rollback: pipeline not found")

	// ErrNoDeployTarget indicates that the pipeline has no S3 deploy action
	// carrying a bucket and object key configuration
	ErrNoDeployTarget = errors.New("rollback: pipeline has no S3 deploy target")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("rollback: access denied")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("rollback: invalid input")
)

// IsReleaseNotFound checks if an error indicates a missing release.
func IsReleaseNotFound(err error) bool {
	return errors.Is(err, ErrReleaseNotFound)
}

// IsPipelineNotFound checks if an error indicates a missing pipeline.
func IsPipelineNotFound(err error) bool {
	return errors.Is(err, ErrPipelineNotFound)
}

// IsNoDeployTarget checks if an error indicates a pipeline without an S3
// deploy action.
func IsNoDeployTarget(err error) bool {
	return errors.Is(err, ErrNoDeployTarget)
}

// IsAccessDenied checks if an error indicates access was denied.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsInvalidInput checks if an error indicates invalid input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
