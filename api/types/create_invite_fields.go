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
	"fmt"
	"strings"

	"github.com/tasklane/tasklane/internal/validation"
)

// CreateInviteFields is a set of fields that use to invite a user.
type CreateInviteFields struct {
	// Email is the address of the invited user. It is normalized to lowercase.
	Email string `json:"email" validate:"required,email,max=254"`

	// Role is the role granted on acceptance.
	Role MemberRole `json:"role" validate:"required,oneof=ADMIN MEMBER VIEWER GUEST"`
}

// Validate normalizes the email and validates the fields.
func (i *CreateInviteFields) Validate() error {
	i.Email = strings.ToLower(strings.TrimSpace(i.Email))

	if err := validation.ValidateStruct(i); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), ErrInvalidFields)
	}
	return nil
}
