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

// Package errors provides status-carrying errors shared by the store, the
// business packages and the HTTP API.
package errors

import (
	"fmt"
	"net/http"
)

// StatusCode represents the error codes used throughout the server. The
// numeric values follow the gRPC code space so that store errors can be
// translated without a lookup table.
type StatusCode int

const (
	// ErrCodeInvalidArgument indicates that the caller specified an invalid argument.
	ErrCodeInvalidArgument StatusCode = 3

	// ErrCodeNotFound indicates that a requested entity was not found.
	ErrCodeNotFound StatusCode = 5

	// ErrCodeAlreadyExists indicates that the entity a caller attempted to create already exists.
	ErrCodeAlreadyExists StatusCode = 6

	// ErrCodePermissionDenied indicates that the caller may not execute the operation.
	ErrCodePermissionDenied StatusCode = 7

	// ErrCodeResourceExhausted indicates that some resource has been exhausted.
	ErrCodeResourceExhausted StatusCode = 8

	// ErrCodeFailedPrecondition indicates that the system is not in a state
	// required for the operation's execution.
	ErrCodeFailedPrecondition StatusCode = 9

	// ErrCodeAborted indicates that the operation was aborted, typically due to
	// a concurrency conflict inside a transaction.
	ErrCodeAborted StatusCode = 10

	// ErrCodeInternal indicates that some invariants expected by the system have been broken.
	ErrCodeInternal StatusCode = 13

	// ErrCodeUnavailable indicates that the service is currently unavailable.
	ErrCodeUnavailable StatusCode = 14

	// ErrCodeUnauthenticated indicates that the request does not have valid credentials.
	ErrCodeUnauthenticated StatusCode = 16
)

// String returns the string representation of the error code.
func (c StatusCode) String() string {
	switch c {
	case ErrCodeInvalidArgument:
		return "invalid_argument"
	case ErrCodeNotFound:
		return "not_found"
	case ErrCodeAlreadyExists:
		return "already_exists"
	case ErrCodePermissionDenied:
		return "permission_denied"
	case ErrCodeResourceExhausted:
		return "resource_exhausted"
	case ErrCodeFailedPrecondition:
		return "failed_precondition"
	case ErrCodeAborted:
		return "aborted"
	case ErrCodeInternal:
		return "internal"
	case ErrCodeUnavailable:
		return "unavailable"
	case ErrCodeUnauthenticated:
		return "unauthenticated"
	default:
		return fmt.Sprintf("code_%d", int(c))
	}
}

// HTTPStatus returns the HTTP status that the API responds with for this code.
func (c StatusCode) HTTPStatus() int {
	switch c {
	case ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeAlreadyExists, ErrCodeAborted:
		return http.StatusConflict
	case ErrCodePermissionDenied:
		return http.StatusForbidden
	case ErrCodeResourceExhausted:
		return http.StatusTooManyRequests
	case ErrCodeFailedPrecondition:
		return http.StatusPreconditionFailed
	case ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// IsClientError returns true if the error code represents a client-side error.
func (c StatusCode) IsClientError() bool {
	switch c {
	case ErrCodeInvalidArgument, ErrCodeNotFound, ErrCodeAlreadyExists,
		ErrCodePermissionDenied, ErrCodeResourceExhausted, ErrCodeFailedPrecondition,
		ErrCodeAborted, ErrCodeUnauthenticated:
		return true
	default:
		return false
	}
}

// IsServerError returns true if the error code represents a server-side error.
func (c StatusCode) IsServerError() bool {
	switch c {
	case ErrCodeInternal, ErrCodeUnavailable:
		return true
	default:
		return false
	}
}
