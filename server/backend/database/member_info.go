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

// MemberInfo is a struct for workspace member information.
type MemberInfo struct {
	// ID is the id of the member document. It equals UserID for every member
	// written by this server; legacy records may differ or lack a UserID.
	ID types.ID `bson:"member_id" firestore:"-"`

	// WorkspaceID is the ID of the workspace.
	WorkspaceID types.ID `bson:"workspace_id" firestore:"-"`

	// UserID is the ID of the user as stored in the record.
	UserID types.ID `bson:"user_id" firestore:"userId"`

	// Email is the email of the user.
	Email string `bson:"email" firestore:"email"`

	// Role is the role of the user in the workspace.
	Role types.MemberRole `bson:"role" firestore:"role"`

	// Status is the status of the membership.
	Status types.MemberStatus `bson:"status" firestore:"status"`

	// JoinedAt is the time when the user joined the workspace.
	JoinedAt time.Time `bson:"joined_at" firestore:"joinedAt"`

	// InvitedBy is the ID of the user who invited this member.
	InvitedBy types.ID `bson:"invited_by,omitempty" firestore:"invitedBy,omitempty"`

	// NotificationChannelID is the external chat id of the member.
	NotificationChannelID string `bson:"notification_channel_id,omitempty" firestore:"notificationChannelId,omitempty"`

	// Path is the storage path of the record. It is filled on reads.
	Path string `bson:"-" firestore:"-"`
}

// NewMemberInfo creates a new active MemberInfo.
func NewMemberInfo(
	workspaceID types.ID,
	userID types.ID,
	email string,
	role types.MemberRole,
	invitedBy types.ID,
) (*MemberInfo, error) {
	if err := role.Validate(); err != nil {
		return nil, err
	}

	return &MemberInfo{
		ID:          userID,
		WorkspaceID: workspaceID,
		UserID:      userID,
		Email:       email,
		Role:        role,
		Status:      types.MemberActive,
		JoinedAt:    types.Now(),
		InvitedBy:   invitedBy,
	}, nil
}

// IsValid returns false for malformed records without a user id.
func (i *MemberInfo) IsValid() bool {
	return !i.UserID.IsBlank()
}

// DeepCopy returns a deep copy of the MemberInfo.
func (i *MemberInfo) DeepCopy() *MemberInfo {
	if i == nil {
		return nil
	}

	return &MemberInfo{
		ID:                    i.ID,
		WorkspaceID:           i.WorkspaceID,
		UserID:                i.UserID,
		Email:                 i.Email,
		Role:                  i.Role,
		Status:                i.Status,
		JoinedAt:              i.JoinedAt,
		InvitedBy:             i.InvitedBy,
		NotificationChannelID: i.NotificationChannelID,
		Path:                  i.Path,
	}
}

// Apply merges the non-nil fields of the update into the member.
func (i *MemberInfo) Apply(update *MemberUpdate) {
	if update == nil {
		return
	}
	if update.Role != nil {
		i.Role = *update.Role
	}
	if update.Status != nil {
		i.Status = *update.Status
	}
	if update.JoinedAt != nil {
		i.JoinedAt = *update.JoinedAt
	}
	if update.NotificationChannelID != nil {
		i.NotificationChannelID = *update.NotificationChannelID
	}
}

// ToMember converts the MemberInfo to a Member.
func (i *MemberInfo) ToMember() *types.Member {
	return &types.Member{
		WorkspaceID:           i.WorkspaceID,
		UserID:                i.UserID,
		Email:                 i.Email,
		Role:                  i.Role,
		Status:                i.Status,
		JoinedAt:              i.JoinedAt,
		InvitedBy:             i.InvitedBy,
		NotificationChannelID: i.NotificationChannelID,
	}
}

// MemberUpdate is a field-level merge of a member. Nil fields are untouched.
type MemberUpdate struct {
	Role                  *types.MemberRole
	Status                *types.MemberStatus
	JoinedAt              *time.Time
	NotificationChannelID *string
}
