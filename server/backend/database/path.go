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
	"fmt"
	"strings"

	"github.com/tasklane/tasklane/api/types"
)

const (
	// CollWorkspaces is the top level collection of workspaces.
	CollWorkspaces = "workspaces"
	// CollMembers is the member sub-collection of a workspace.
	CollMembers = "members"
	// CollInvites is the invite sub-collection of a workspace.
	CollInvites = "invites"
	// CollUsers is the top level collection of user profiles.
	CollUsers = "users"
)

// MemberPath returns the storage path of a member document.
func MemberPath(workspaceID, memberID types.ID) string {
	return fmt.Sprintf("%s/%s/%s/%s", CollWorkspaces, workspaceID, CollMembers, memberID)
}

// InvitePath returns the storage path of an invite document.
func InvitePath(workspaceID types.ID, token string) string {
	return fmt.Sprintf("%s/%s/%s/%s", CollWorkspaces, workspaceID, CollInvites, token)
}

// TaskCollection returns the sub-collection tasks or projects are stored in.
func TaskCollection(kind types.TaskKind) string {
	if kind == types.KindProject {
		return "projects"
	}
	return "tasks"
}

// WorkspaceIDFromPath resolves the owning workspace of a document from its
// storage path. Both relative paths and fully qualified resource names are
// accepted, e.g. "workspaces/W1/members/u2" or
// "projects/p/databases/(default)/documents/workspaces/W1/members/u2".
func WorkspaceIDFromPath(path string) (types.ID, error) {
	segments := strings.Split(strings.Trim(path, "/"), "/")

	// the last "workspaces" segment followed by an id and a sub-collection
	for i := len(segments) - 3; i >= 0; i-- {
		if segments[i] == CollWorkspaces && segments[i+1] != "" {
			return types.ID(segments[i+1]), nil
		}
	}

	return "", fmt.Errorf("%q: %w", path, ErrInvalidPath)
}
