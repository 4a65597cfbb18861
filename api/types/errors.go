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

package types

import (
	"github.com/tasklane/tasklane/pkg/errors"
)

var (
	// ErrInvalidRole is returned when a role is not one of the known roles.
	ErrInvalidRole = errors.InvalidArgument("invalid role").WithCode("ErrInvalidRole")

	// ErrInvalidTaskKind is returned when a kind is neither task nor project.
	ErrInvalidTaskKind = errors.InvalidArgument("invalid task kind").WithCode("ErrInvalidTaskKind")

	// ErrInvalidFields is returned when user supplied fields fail validation.
	ErrInvalidFields = errors.InvalidArgument("invalid fields").WithCode("ErrInvalidFields")
)
