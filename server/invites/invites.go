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

// Package invites provides business logic for the single-use invites that
// grant membership of a workspace.
package invites

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	goerrors "errors"
	"fmt"
	"strings"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/api/types/events"
	"github.com/tasklane/tasklane/pkg/errors"
	"github.com/tasklane/tasklane/server/backend"
	"github.com/tasklane/tasklane/server/backend/database"
	"github.com/tasklane/tasklane/server/backend/messagebroker"
	"github.com/tasklane/tasklane/server/logging"
	"github.com/tasklane/tasklane/server/users"
)

var (
	// ErrInviteNotPending is returned when the invite was already accepted or revoked.
	ErrInviteNotPending = errors.FailedPrecond("invite has already been used or revoked").WithCode("ErrInviteNotPending")

	// ErrInviteExpired is returned when the invite is accepted after it expired.
	ErrInviteExpired = errors.FailedPrecond("invite has expired").WithCode("ErrInviteExpired")

	// ErrInviteRecipientMismatch is returned when the invite is accepted by
	// a user with a different email.
	ErrInviteRecipientMismatch = errors.PermissionDenied(
		"invite was issued to a different email",
	).WithCode("ErrInviteRecipientMismatch")

	// ErrOwnerCannotAcceptInvite is returned when the owner of the workspace
	// accepts an invite to it. The owner's role never changes.
	ErrOwnerCannotAcceptInvite = errors.FailedPrecond(
		"the workspace owner cannot accept an invite",
	).WithCode("ErrOwnerCannotAcceptInvite")

	// ErrNotAllowedToInvite is returned when the inviter is not an active
	// owner or admin of the workspace.
	ErrNotAllowedToInvite = errors.PermissionDenied(
		"only owners and admins can invite",
	).WithCode("ErrNotAllowedToInvite")
)

// tokenAttempts is the number of tokens tried before giving up on collisions.
const tokenAttempts = 3

// Create creates a pending invite for the given email and returns it. The
// inviter must be an active owner or admin of the workspace.
func Create(
	ctx context.Context,
	be *backend.Backend,
	workspaceID types.ID,
	email string,
	role types.MemberRole,
	invitedBy *types.Member,
) (*types.Invite, error) {
	fields := &types.CreateInviteFields{Email: email, Role: role}
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	if invitedBy == nil || invitedBy.WorkspaceID != workspaceID ||
		!invitedBy.IsActive() || !invitedBy.Role.CanManageMembers() {
		return nil, ErrNotAllowedToInvite
	}

	for i := 0; i < tokenAttempts; i++ {
		token, err := newToken()
		if err != nil {
			return nil, err
		}

		info := database.NewInviteInfo(workspaceID, token, fields.Email, fields.Role, invitedBy.UserID)
		err = be.DB.CreateInviteInfo(ctx, info)
		if err == nil {
			return info.ToInvite(), nil
		}
		if goerrors.Is(err, database.ErrInviteAlreadyExists) {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("create invite: %w", database.ErrInviteAlreadyExists)
}

// Get returns the invite of the given token. It returns nil without an error
// if there is no such invite.
func Get(
	ctx context.Context,
	be *backend.Backend,
	workspaceID types.ID,
	token string,
) (*types.Invite, error) {
	info, err := be.DB.FindInviteInfo(ctx, workspaceID, token)
	if goerrors.Is(err, database.ErrInviteNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return info.ToInvite(), nil
}

// List returns the pending invites of the workspace.
func List(
	ctx context.Context,
	be *backend.Backend,
	workspaceID types.ID,
) ([]*types.Invite, error) {
	infos, err := be.DB.ListInviteInfos(ctx, workspaceID, types.InvitePending)
	if err != nil {
		return nil, err
	}

	invites := make([]*types.Invite, 0, len(infos))
	for _, info := range infos {
		invites = append(invites, info.ToInvite())
	}
	return invites, nil
}

// Revoke revokes a pending invite. Revoking a missing, accepted or already
// revoked invite does nothing.
func Revoke(
	ctx context.Context,
	be *backend.Backend,
	workspaceID types.ID,
	token string,
) error {
	var revoked *database.InviteInfo
	if err := be.DB.RunTransaction(ctx, func(ctx context.Context, txn database.Txn) error {
		revoked = nil

		info, err := txn.FindInviteInfo(ctx, workspaceID, token)
		if goerrors.Is(err, database.ErrInviteNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if info.Status != types.InvitePending {
			return nil
		}

		if err := txn.UpdateInviteInfo(ctx, workspaceID, token, &database.InviteUpdate{
			Status: types.InviteRevoked,
		}); err != nil {
			return err
		}
		revoked = info
		return nil
	}); err != nil {
		return fmt.Errorf("revoke invite of %s: %w", workspaceID, err)
	}

	if revoked != nil {
		be.PublishWorkspaceEvent(messagebroker.WorkspaceEventMessage{
			WorkspaceID: workspaceID.String(),
			EventType:   events.InviteRevokedEvent,
			ActorID:     revoked.InvitedBy.String(),
			Role:        string(revoked.Role),
		}, nil, "")
	}
	return nil
}

// Accept consumes the invite and makes the identity an active member of the
// workspace with the invited role. All reads of the transaction precede its
// writes, so a failed check leaves no trace.
func Accept(
	ctx context.Context,
	be *backend.Backend,
	workspaceID types.ID,
	token string,
	identity *types.Identity,
) (*types.Member, error) {
	if err := identity.ID.Validate(); err != nil {
		return nil, err
	}

	var member *database.MemberInfo
	var workspace *database.WorkspaceInfo
	if err := be.DB.RunTransaction(ctx, func(ctx context.Context, txn database.Txn) error {
		invite, err := txn.FindInviteInfo(ctx, workspaceID, token)
		if err != nil {
			return err
		}

		now := types.Now()
		if invite.Status != types.InvitePending {
			return ErrInviteNotPending
		}
		if invite.IsExpired(now) {
			return ErrInviteExpired
		}
		if !strings.EqualFold(invite.Email, strings.TrimSpace(identity.Email)) {
			return ErrInviteRecipientMismatch
		}

		existing, err := txn.FindMemberInfo(ctx, workspaceID, identity.ID)
		if err != nil && !goerrors.Is(err, database.ErrMemberNotFound) {
			return err
		}

		if workspace, err = txn.FindWorkspaceInfoByID(ctx, workspaceID); err != nil {
			return err
		}
		if workspace.OwnerID == identity.ID || (existing != nil && existing.Role == types.RoleOwner) {
			return ErrOwnerCannotAcceptInvite
		}

		if existing == nil {
			if member, err = database.NewMemberInfo(
				workspaceID,
				identity.ID,
				strings.TrimSpace(identity.Email),
				invite.Role,
				invite.InvitedBy,
			); err != nil {
				return err
			}
			member.JoinedAt = now
			if err := txn.CreateMemberInfo(ctx, member); err != nil {
				return err
			}
		} else {
			active := types.MemberActive
			update := &database.MemberUpdate{
				Role:     &invite.Role,
				Status:   &active,
				JoinedAt: &now,
			}
			if err := txn.UpdateMemberInfo(ctx, workspaceID, identity.ID, update); err != nil {
				return err
			}
			member = existing.DeepCopy()
			member.Apply(update)
		}

		return txn.UpdateInviteInfo(ctx, workspaceID, token, &database.InviteUpdate{
			Status:     types.InviteAccepted,
			AcceptedBy: identity.ID,
		})
	}); err != nil {
		return nil, fmt.Errorf("accept invite of %s: %w", workspaceID, err)
	}

	if _, err := users.EnsureProfile(ctx, be, identity); err != nil {
		logging.From(ctx).Warnf("ensure profile of %s: %v", identity.ID, err)
	}

	be.PublishWorkspaceEvent(messagebroker.WorkspaceEventMessage{
		WorkspaceID: workspaceID.String(),
		EventType:   events.InviteAcceptedEvent,
		ActorID:     identity.ID.String(),
		UserID:      identity.ID.String(),
		Role:        string(member.Role),
	}, managerChannels(ctx, be, workspaceID), fmt.Sprintf(
		"%s joined %s as %s",
		member.Email,
		workspace.Name,
		member.Role,
	))

	return member.ToMember(), nil
}

// managerChannels returns the notification channels of the active owners
// and admins of the workspace.
func managerChannels(ctx context.Context, be *backend.Backend, workspaceID types.ID) []string {
	infos, err := be.DB.ListMemberInfos(ctx, workspaceID)
	if err != nil {
		logging.From(ctx).Warnf("list members of %s: %v", workspaceID, err)
		return nil
	}

	var channels []string
	for _, info := range infos {
		if !info.IsValid() || info.NotificationChannelID == "" {
			continue
		}
		if info.Status == types.MemberActive && info.Role.CanManageMembers() {
			channels = append(channels, info.NotificationChannelID)
		}
	}
	return channels
}

func newToken() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generate invite token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}
