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
	"time"
)

// Plan is the billing plan of a workspace.
type Plan string

const (
	// PlanFree is the plan every workspace starts with.
	PlanFree Plan = "free"

	// PlanTeam is the paid plan.
	PlanTeam Plan = "team"
)

// Workspace is a tenant boundary owning tasks, projects and members.
type Workspace struct {
	// ID is the unique ID of the workspace.
	ID ID `json:"id"`

	// Name is the display name of the workspace.
	Name string `json:"name"`

	// Description is an optional free text description.
	Description string `json:"description,omitempty"`

	// OwnerID is the ID of the user owning the workspace.
	OwnerID ID `json:"ownerId"`

	// Plan is the billing plan of the workspace.
	Plan Plan `json:"plan"`

	// CreatedAt is the time when the workspace was created.
	CreatedAt time.Time `json:"createdAt"`
}
