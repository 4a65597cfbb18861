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

package database

import (
	"time"

	"github.com/tasklane/tasklane/api/types"
)

// WorkspaceInfo is a structure representing information of a workspace.
type WorkspaceInfo struct {
	// ID is the unique ID of the workspace.
	ID types.ID `bson:"_id" firestore:"-"`

	// Name is the name of the workspace.
	Name string `bson:"name" firestore:"name"`

	// Description is the description of the workspace.
	Description string `bson:"description" firestore:"description"`

	// OwnerID is the ID of the user that owns the workspace.
	OwnerID types.ID `bson:"owner_id" firestore:"ownerId"`

	// Plan is the billing plan of the workspace.
	Plan types.Plan `bson:"plan" firestore:"plan"`

	// CreatedAt is the time when the workspace was created.
	CreatedAt time.Time `bson:"created_at" firestore:"createdAt"`
}

// NewWorkspaceInfo creates a new WorkspaceInfo owned by the given user.
func NewWorkspaceInfo(name, description string, ownerID types.ID) *WorkspaceInfo {
	return &WorkspaceInfo{
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		Plan:        types.PlanFree,
		CreatedAt:   types.Now(),
	}
}

// DeepCopy returns a deep copy of the WorkspaceInfo.
func (i *WorkspaceInfo) DeepCopy() *WorkspaceInfo {
	if i == nil {
		return nil
	}

	return &WorkspaceInfo{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		OwnerID:     i.OwnerID,
		Plan:        i.Plan,
		CreatedAt:   i.CreatedAt,
	}
}

// ToWorkspace converts the WorkspaceInfo to a Workspace.
func (i *WorkspaceInfo) ToWorkspace() *types.Workspace {
	plan := i.Plan
	if plan == "" {
		plan = types.PlanFree
	}

	return &types.Workspace{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		OwnerID:     i.OwnerID,
		Plan:        plan,
		CreatedAt:   i.CreatedAt,
	}
}
