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
	"time"
)

// TaskKind distinguishes tasks from projects. Both share the same storage.
type TaskKind string

const (
	// KindTask is a single unit of work.
	KindTask TaskKind = "task"

	// KindProject groups tasks.
	KindProject TaskKind = "project"
)

// Validate returns an error if the kind is unknown.
func (k TaskKind) Validate() error {
	if k != KindTask && k != KindProject {
		return fmt.Errorf("%q: %w", string(k), ErrInvalidTaskKind)
	}
	return nil
}

// Task is a task or a project with its free-form fields.
type Task struct {
	ID          ID        `json:"id"`
	WorkspaceID ID        `json:"workspaceId"`
	Kind        TaskKind  `json:"kind"`
	Fields      Fields    `json:"fields"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
