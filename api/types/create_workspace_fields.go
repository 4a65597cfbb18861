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

// CreateWorkspaceFields is a set of fields that use to create a workspace.
type CreateWorkspaceFields struct {
	// Name is the name of the workspace.
	Name string `json:"name" validate:"required,min=2,max=60,workspace_name"`

	// Description is an optional description.
	Description string `json:"description" validate:"max=500"`
}

// Validate trims the fields and validates them.
func (i *CreateWorkspaceFields) Validate() error {
	i.Name = strings.TrimSpace(i.Name)
	i.Description = strings.TrimSpace(i.Description)

	if err := validation.ValidateStruct(i); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), ErrInvalidFields)
	}
	return nil
}
