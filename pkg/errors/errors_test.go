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
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	t.Run("String test", func(t *testing.T) {
		assert.Equal(t, "not_found", ErrCodeNotFound.String())
		assert.Equal(t, "failed_precondition", ErrCodeFailedPrecondition.String())
		assert.Equal(t, "aborted", ErrCodeAborted.String())
		assert.Equal(t, "code_999", StatusCode(999).String())
	})

	t.Run("HTTPStatus test", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, ErrCodeInvalidArgument.HTTPStatus())
		assert.Equal(t, http.StatusNotFound, ErrCodeNotFound.HTTPStatus())
		assert.Equal(t, http.StatusForbidden, ErrCodePermissionDenied.HTTPStatus())
		assert.Equal(t, http.StatusPreconditionFailed, ErrCodeFailedPrecondition.HTTPStatus())
		assert.Equal(t, http.StatusUnauthorized, ErrCodeUnauthenticated.HTTPStatus())
		assert.Equal(t, http.StatusInternalServerError, StatusCode(0).HTTPStatus())
	})

	t.Run("client and server error test", func(t *testing.T) {
		assert.True(t, ErrCodeNotFound.IsClientError())
		assert.False(t, ErrCodeNotFound.IsServerError())
		assert.True(t, ErrCodeUnavailable.IsServerError())
		assert.False(t, ErrCodeUnavailable.IsClientError())
	})
}

func TestStatusError(t *testing.T) {
	errNotPending := FailedPrecond("invite has already been used or revoked").WithCode("ErrInviteNotPending")

	t.Run("StatusOf wrapped error test", func(t *testing.T) {
		wrapped := fmt.Errorf("accept invite: %w", errNotPending)
		assert.Equal(t, ErrCodeFailedPrecondition, StatusOf(wrapped))
		assert.True(t, IsStatus(wrapped, ErrCodeFailedPrecondition))
		assert.True(t, errors.Is(wrapped, errNotPending))
	})

	t.Run("StatusOf plain error test", func(t *testing.T) {
		assert.Equal(t, StatusCode(0), StatusOf(errors.New("plain")))
		assert.Equal(t, StatusCode(0), StatusOf(nil))
	})

	t.Run("ErrorInfoOf test", func(t *testing.T) {
		info := ErrorInfoOf(fmt.Errorf("tok1: %w", errNotPending))
		assert.Equal(t, "ErrInviteNotPending", info.Code)
		assert.Equal(t, ErrCodeFailedPrecondition, info.Status)
		assert.Equal(t, "tok1: invite has already been used or revoked", info.Message)
		assert.Equal(t, "invite has already been used or revoked", info.Cause)

		assert.Equal(t, ErrorInfo{}, ErrorInfoOf(nil))
	})
}
