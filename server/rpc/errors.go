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

package rpc

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/pkg/errors"
	"github.com/tasklane/tasklane/server/logging"
)

var (
	// ErrRouteNotFound is returned for unknown routes.
	ErrRouteNotFound = errors.NotFound("route not found").WithCode("ErrRouteNotFound")
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// toErrorResponse converts the error into the status and body the API
// responds with. Messages of server errors are not exposed.
func toErrorResponse(err error) (int, ErrorResponse) {
	info := errors.ErrorInfoOf(err)
	status := info.Status.HTTPStatus()

	if info.Status == 0 || info.Status.IsServerError() {
		code := info.Code
		if code == "" {
			code = "ErrInternal"
		}
		return status, ErrorResponse{
			Code:    code,
			Message: http.StatusText(status),
		}
	}

	// Validation failures carry the offending field in the wrapping text.
	message := info.Cause
	if info.Status == errors.ErrCodeInvalidArgument {
		message = info.Message
	}

	return status, ErrorResponse{
		Code:    info.Code,
		Message: message,
	}
}

// abortWithError records the error for the request log and writes the error
// response.
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)

	status, body := toErrorResponse(err)
	if status >= http.StatusInternalServerError {
		logging.From(c.Request.Context()).Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, body)
}

// bindJSON decodes the request body. Malformed bodies are reported as
// invalid fields.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		abortWithError(c, fmt.Errorf("%s: %w", err.Error(), types.ErrInvalidFields))
		return false
	}
	return true
}
