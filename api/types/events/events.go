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

// Package events defines the events that occur around workspace membership.
package events

// WorkspaceEventType represents the type of the WorkspaceEvent.
type WorkspaceEventType string

const (
	// WorkspaceCreatedEvent occurs when a workspace and its owner member are created.
	WorkspaceCreatedEvent WorkspaceEventType = "workspace.created"

	// InviteAcceptedEvent occurs when an invite is consumed by its recipient.
	InviteAcceptedEvent WorkspaceEventType = "invite.accepted"

	// InviteRevokedEvent occurs when a pending invite is revoked.
	InviteRevokedEvent WorkspaceEventType = "invite.revoked"

	// MemberRemovedEvent occurs when a member is removed from a workspace.
	MemberRemovedEvent WorkspaceEventType = "member.removed"

	// MemberRoleChangedEvent occurs when the role of a member changes.
	MemberRoleChangedEvent WorkspaceEventType = "member.role_changed"
)
