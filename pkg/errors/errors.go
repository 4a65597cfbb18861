/*
 * Copyright 2026 The Tasklane Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package errors

import (
	"errors"
)

// StatusError is an error that carries a status and a stable error code. The
// message is written to be shown to end users as-is.
type StatusError interface {
	error
	Status() StatusCode
	Code() string
	WithCode(code string) StatusError
}

type errorWithStatus struct {
	err    error
	status StatusCode
	code   string
}

// Error returns the error message.
func (e errorWithStatus) Error() string {
	return e.err.Error()
}

// Status returns the error status.
func (e errorWithStatus) Status() StatusCode {
	return e.status
}

// Code returns the string representation of the error code.
func (e errorWithStatus) Code() string {
	return e.code
}

// Unwrap returns the underlying error.
func (e errorWithStatus) Unwrap() error {
	return e.err
}

// WithCode returns a new StatusError with the given code.
func (e errorWithStatus) WithCode(code string) StatusError {
	return errorWithStatus{
		err:    e.err,
		status: e.status,
		code:   code,
	}
}

func newErrorWithStatus(err error, status StatusCode) StatusError {
	return errorWithStatus{err: err, status: status}
}

// NotFound creates a new "not found" error.
func NotFound(message string) StatusError {
	return newErrorWithStatus(errors.New(message), ErrCodeNotFound)
}

// InvalidArgument creates a new "invalid argument" error.
func InvalidArgument(message string) StatusError {
	return newErrorWithStatus(errors.New(message), ErrCodeInvalidArgument)
}

// AlreadyExists creates a new "already exists" error.
func AlreadyExists(message string) StatusError {
	return newErrorWithStatus(errors.New(message), ErrCodeAlreadyExists)
}

// PermissionDenied creates a new "permission denied" error.
func PermissionDenied(message string) StatusError {
	return newErrorWithStatus(errors.New(message), ErrCodePermissionDenied)
}

// ResourceExhausted creates a new "resource exhausted" error.
func ResourceExhausted(message string) StatusError {
	return newErrorWithStatus(errors.New(message), ErrCodeResourceExhausted)
}

// FailedPrecond creates a new "failed precondition" error. Use this when the
// stored state does not allow the operation, e.g. an invite that was revoked.
func FailedPrecond(message string) StatusError {
	return newErrorWithStatus(errors.New(message), ErrCodeFailedPrecondition)
}

// Aborted creates a new "aborted" error.
func Aborted(message string) StatusError {
	return newErrorWithStatus(errors.New(message), ErrCodeAborted)
}

// Unauthenticated creates a new "unauthenticated" error.
func Unauthenticated(message string) StatusError {
	return newErrorWithStatus(errors.New(message), ErrCodeUnauthenticated)
}

// Internal creates a new "internal" error.
func Internal(message string) StatusError {
	return newErrorWithStatus(errors.New(message), ErrCodeInternal)
}

// Unavailable creates a new "unavailable" error.
func Unavailable(message string) StatusError {
	return newErrorWithStatus(errors.New(message), ErrCodeUnavailable)
}

// StatusOf extracts the status from the given error chain. It returns 0 if no
// StatusError is found.
func StatusOf(err error) StatusCode {
	if err == nil {
		return 0
	}

	var statusErr StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status()
	}

	return 0
}

// IsStatus checks if the given error has the specified status.
func IsStatus(err error, code StatusCode) bool {
	return StatusOf(err) == code
}

// ErrorInfo provides detailed information about an error.
type ErrorInfo struct {
	Status  StatusCode
	Code    string
	Message string

	// Cause is the message of the innermost StatusError. Wrapping adds
	// operation names to Message, Cause keeps the end-user text.
	Cause string
}

// ErrorInfoOf extracts comprehensive information from an error.
func ErrorInfoOf(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{}
	}

	info := ErrorInfo{
		Status:  StatusOf(err),
		Message: err.Error(),
		Cause:   err.Error(),
	}

	var statusErr StatusError
	if errors.As(err, &statusErr) {
		info.Code = statusErr.Code()
		info.Cause = statusErr.Error()
	}

	return info
}
