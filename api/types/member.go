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

// MemberRole is the role of a member in a workspace.
type MemberRole string

const (
	// RoleOwner is held by exactly one member per workspace.
	RoleOwner MemberRole = "OWNER"

	// RoleAdmin can manage members and invites.
	RoleAdmin MemberRole = "ADMIN"

	// RoleMember can edit tasks and projects.
	RoleMember MemberRole = "MEMBER"

	// RoleViewer can only read.
	RoleViewer MemberRole = "VIEWER"

	// RoleGuest has access to what is shared with them.
	RoleGuest MemberRole = "GUEST"
)

// Validate returns an error if the role is not one of the known roles.
func (r MemberRole) Validate() error {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember, RoleViewer, RoleGuest:
		return nil
	default:
		return ErrInvalidRole
	}
}

// IsInvitable returns true if the role can be granted through an invite.
func (r MemberRole) IsInvitable() bool {
	return r != RoleOwner && r.Validate() == nil
}

// CanManageMembers returns true if the role may remove members, change roles
// and issue invites.
func (r MemberRole) CanManageMembers() bool {
	return r == RoleOwner || r == RoleAdmin
}

// CanEditTasks returns true if the role may create and update tasks and
// projects.
func (r MemberRole) CanEditTasks() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleMember
}

// MemberStatus is the status of a membership.
type MemberStatus string

const (
	// MemberActive is a membership that grants access.
	MemberActive MemberStatus = "ACTIVE"

	// MemberInactive is a membership that was deactivated.
	MemberInactive MemberStatus = "INACTIVE"

	// MemberSuspended is a membership temporarily blocked by an admin.
	MemberSuspended MemberStatus = "SUSPENDED"
)

// Member is a (workspace, user) binding with a role and status.
type Member struct {
	// WorkspaceID is the ID of the workspace.
	WorkspaceID ID `json:"workspaceId"`

	// UserID is the ID of the user.
	UserID ID `json:"userId"`

	// Email is the email of the user at the time they joined.
	Email string `json:"email"`

	// Role is the role of the user in the workspace.
	Role MemberRole `json:"role"`

	// Status is the status of the membership.
	Status MemberStatus `json:"status"`

	// JoinedAt is the time when the user joined the workspace.
	JoinedAt time.Time `json:"joinedAt"`

	// InvitedBy is the ID of the user who invited this member.
	InvitedBy ID `json:"invitedBy,omitempty"`

	// NotificationChannelID is the external chat id notifications are sent to.
	NotificationChannelID string `json:"notificationChannelId,omitempty"`
}

// IsActive returns true if the membership grants access.
func (m *Member) IsActive() bool {
	return m.Status == MemberActive
}
