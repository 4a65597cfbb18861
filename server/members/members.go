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

// Package members provides business logic for the member directory of a
// workspace.
package members

import (
	"context"
	goerrors "errors"
	"fmt"
	"strings"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/api/types/events"
	"github.com/tasklane/tasklane/internal/validation"
	"github.com/tasklane/tasklane/pkg/errors"
	"github.com/tasklane/tasklane/server/backend"
	"github.com/tasklane/tasklane/server/backend/database"
	"github.com/tasklane/tasklane/server/backend/messagebroker"
)

var (
	// ErrCannotRemoveOwner is returned when the target of a removal is the owner.
	ErrCannotRemoveOwner = errors.FailedPrecond("cannot remove the workspace owner").WithCode("ErrCannotRemoveOwner")

	// ErrInsufficientPrivileges is returned when the acting member may not
	// manage other members.
	ErrInsufficientPrivileges = errors.PermissionDenied("insufficient privileges").WithCode("ErrInsufficientPrivileges")

	// ErrCannotChangeOwnerRole is returned when the role of the owner is changed.
	ErrCannotChangeOwnerRole = errors.FailedPrecond(
		"cannot change the role of the workspace owner",
	).WithCode("ErrCannotChangeOwnerRole")

	// ErrCannotGrantOwner is returned when a member is promoted to owner.
	ErrCannotGrantOwner = errors.InvalidArgument("the owner role cannot be granted").WithCode("ErrCannotGrantOwner")

	// ErrNotMember is returned when the acting user is not an active member
	// of the workspace.
	ErrNotMember = errors.PermissionDenied("not a member of this workspace").WithCode("ErrNotMember")
)

// FindActing returns the membership the identity acts with in the workspace.
// The owner of a workspace without an owner member record acts as OWNER, and
// a member record whose user id predates the identity's id is matched by
// email.
func FindActing(
	ctx context.Context,
	be *backend.Backend,
	workspaceID types.ID,
	identity *types.Identity,
) (*types.Member, error) {
	info, err := be.DB.FindMemberInfo(ctx, workspaceID, identity.ID)
	if err == nil {
		if info.Status != types.MemberActive {
			return nil, ErrNotMember
		}
		return info.ToMember(), nil
	}
	if !goerrors.Is(err, database.ErrMemberNotFound) {
		return nil, err
	}

	workspace, err := be.DB.FindWorkspaceInfoByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if workspace.OwnerID == identity.ID {
		return &types.Member{
			WorkspaceID: workspaceID,
			UserID:      identity.ID,
			Email:       identity.Email,
			Role:        types.RoleOwner,
			Status:      types.MemberActive,
			JoinedAt:    workspace.CreatedAt,
		}, nil
	}

	if strings.TrimSpace(identity.Email) == "" {
		return nil, ErrNotMember
	}
	infos, err := be.DB.ListMemberInfos(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		if info.IsValid() && info.Status == types.MemberActive &&
			strings.EqualFold(info.Email, strings.TrimSpace(identity.Email)) {
			return info.ToMember(), nil
		}
	}

	return nil, ErrNotMember
}

// List returns all member records of the workspace as stored, including
// malformed ones.
func List(
	ctx context.Context,
	be *backend.Backend,
	workspaceID types.ID,
) ([]*types.Member, error) {
	infos, err := be.DB.ListMemberInfos(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	members := make([]*types.Member, 0, len(infos))
	for _, info := range infos {
		members = append(members, info.ToMember())
	}
	return members, nil
}

// Remove removes a member from the workspace. The owner can never be removed
// and only owners and admins may remove members.
func Remove(
	ctx context.Context,
	be *backend.Backend,
	workspaceID types.ID,
	memberUserID types.ID,
	acting *types.Member,
) error {
	target, err := be.DB.FindMemberInfo(ctx, workspaceID, memberUserID)
	if err != nil {
		return err
	}

	if target.Role == types.RoleOwner {
		return ErrCannotRemoveOwner
	}
	if !canManage(acting, workspaceID) {
		return ErrInsufficientPrivileges
	}

	if err := be.DB.DeleteMemberInfo(ctx, workspaceID, memberUserID); err != nil {
		return fmt.Errorf("remove member %s of %s: %w", memberUserID, workspaceID, err)
	}

	be.PublishWorkspaceEvent(messagebroker.WorkspaceEventMessage{
		WorkspaceID: workspaceID.String(),
		EventType:   events.MemberRemovedEvent,
		ActorID:     acting.UserID.String(),
		UserID:      target.UserID.String(),
		Role:        string(target.Role),
	}, channelsOf(target), "You were removed from the workspace")

	return nil
}

// canManage returns true if acting is an active owner or admin of the
// workspace.
func canManage(acting *types.Member, workspaceID types.ID) bool {
	return acting != nil && acting.WorkspaceID == workspaceID &&
		acting.IsActive() && acting.Role.CanManageMembers()
}

// UpdateRole changes the role of a member. The owner's role cannot change and
// nobody can be promoted to owner.
func UpdateRole(
	ctx context.Context,
	be *backend.Backend,
	workspaceID types.ID,
	memberUserID types.ID,
	role types.MemberRole,
	acting *types.Member,
) (*types.Member, error) {
	if err := role.Validate(); err != nil {
		return nil, err
	}
	if role == types.RoleOwner {
		return nil, ErrCannotGrantOwner
	}
	if !canManage(acting, workspaceID) {
		return nil, ErrInsufficientPrivileges
	}

	target, err := be.DB.FindMemberInfo(ctx, workspaceID, memberUserID)
	if err != nil {
		return nil, err
	}
	if target.Role == types.RoleOwner {
		return nil, ErrCannotChangeOwnerRole
	}

	update := &database.MemberUpdate{Role: &role}
	if err := be.DB.UpdateMemberInfo(ctx, workspaceID, memberUserID, update); err != nil {
		return nil, fmt.Errorf("update role of %s in %s: %w", memberUserID, workspaceID, err)
	}
	target.Apply(update)

	be.PublishWorkspaceEvent(messagebroker.WorkspaceEventMessage{
		WorkspaceID: workspaceID.String(),
		EventType:   events.MemberRoleChangedEvent,
		ActorID:     acting.UserID.String(),
		UserID:      target.UserID.String(),
		Role:        string(role),
	}, channelsOf(target), fmt.Sprintf("Your role is now %s", role))

	return target.ToMember(), nil
}

// LinkNotificationChannel links the chat the member is notified in. Every
// other field of the member is preserved.
func LinkNotificationChannel(
	ctx context.Context,
	be *backend.Backend,
	workspaceID types.ID,
	userID types.ID,
	channelID string,
) (*types.Member, error) {
	if err := validation.ValidateValue(channelID, "required,channel_id"); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), types.ErrInvalidFields)
	}

	if err := be.DB.UpdateMemberInfo(ctx, workspaceID, userID, &database.MemberUpdate{
		NotificationChannelID: &channelID,
	}); err != nil {
		return nil, err
	}

	info, err := be.DB.FindMemberInfo(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	return info.ToMember(), nil
}

func channelsOf(info *database.MemberInfo) []string {
	if info.NotificationChannelID == "" {
		return nil
	}
	return []string{info.NotificationChannelID}
}
