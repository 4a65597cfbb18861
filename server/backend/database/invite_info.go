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
	"strings"
	"time"

	"github.com/tasklane/tasklane/api/types"
)

// InviteInfo is a struct for workspace invite information. An invite is
// consumed once: by acceptance or by revocation.
type InviteInfo struct {
	// ID is the invite token. It is the document id and the bearer credential.
	ID string `bson:"token" firestore:"-"`

	// WorkspaceID is the ID of the workspace.
	WorkspaceID types.ID `bson:"workspace_id" firestore:"workspaceId"`

	// Email is the lowercased address of the invited user.
	Email string `bson:"email" firestore:"email"`

	// Role is the role granted to the invited user.
	Role types.MemberRole `bson:"role" firestore:"role"`

	// InvitedBy is the user who created this invite.
	InvitedBy types.ID `bson:"invited_by" firestore:"invitedBy"`

	// Status is the status of the invite.
	Status types.InviteStatus `bson:"status" firestore:"status"`

	// CreatedAt is the time when the invite was created.
	CreatedAt time.Time `bson:"created_at" firestore:"createdAt"`

	// ExpiresAt is the time after which the invite cannot be accepted.
	ExpiresAt time.Time `bson:"expires_at" firestore:"expiresAt"`

	// AcceptedAt is the time when the invite was accepted.
	AcceptedAt *time.Time `bson:"accepted_at,omitempty" firestore:"acceptedAt,omitempty"`

	// AcceptedBy is the user who accepted the invite.
	AcceptedBy types.ID `bson:"accepted_by,omitempty" firestore:"acceptedBy,omitempty"`

	// RevokedAt is the time when the invite was revoked.
	RevokedAt *time.Time `bson:"revoked_at,omitempty" firestore:"revokedAt,omitempty"`
}

// NewInviteInfo creates a new pending InviteInfo that expires after
// types.InviteTTL.
func NewInviteInfo(
	workspaceID types.ID,
	token string,
	email string,
	role types.MemberRole,
	invitedBy types.ID,
) *InviteInfo {
	now := types.Now()
	return &InviteInfo{
		ID:          token,
		WorkspaceID: workspaceID,
		Email:       strings.ToLower(strings.TrimSpace(email)),
		Role:        role,
		InvitedBy:   invitedBy,
		Status:      types.InvitePending,
		CreatedAt:   now,
		ExpiresAt:   now.Add(types.InviteTTL),
	}
}

// IsExpired returns true if the invite expired at the given time.
func (i *InviteInfo) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// DeepCopy returns a deep copy of the InviteInfo.
func (i *InviteInfo) DeepCopy() *InviteInfo {
	if i == nil {
		return nil
	}

	return &InviteInfo{
		ID:          i.ID,
		WorkspaceID: i.WorkspaceID,
		Email:       i.Email,
		Role:        i.Role,
		InvitedBy:   i.InvitedBy,
		Status:      i.Status,
		CreatedAt:   i.CreatedAt,
		ExpiresAt:   i.ExpiresAt,
		AcceptedAt:  copyTime(i.AcceptedAt),
		AcceptedBy:  i.AcceptedBy,
		RevokedAt:   copyTime(i.RevokedAt),
	}
}

// Apply changes the status of the invite and stamps the transition time.
func (i *InviteInfo) Apply(update *InviteUpdate, now time.Time) {
	i.Status = update.Status
	switch update.Status {
	case types.InviteAccepted:
		i.AcceptedAt = &now
		i.AcceptedBy = update.AcceptedBy
	case types.InviteRevoked:
		i.RevokedAt = &now
	}
}

// ToInvite converts the InviteInfo to an Invite.
func (i *InviteInfo) ToInvite() *types.Invite {
	return &types.Invite{
		ID:          i.ID,
		WorkspaceID: i.WorkspaceID,
		Email:       i.Email,
		Role:        i.Role,
		InvitedBy:   i.InvitedBy,
		Status:      i.Status,
		CreatedAt:   i.CreatedAt,
		ExpiresAt:   i.ExpiresAt,
		AcceptedAt:  copyTime(i.AcceptedAt),
		AcceptedBy:  i.AcceptedBy,
		RevokedAt:   copyTime(i.RevokedAt),
	}
}

// InviteUpdate is a status transition of an invite.
type InviteUpdate struct {
	Status     types.InviteStatus
	AcceptedBy types.ID
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	copied := *t
	return &copied
}
