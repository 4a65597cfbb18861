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

package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/server/backend/database"
)

// fsTxn is the database.Txn of a Firestore transaction. Writes are buffered
// and checked at commit, so errNotFound names the record a failed update
// targeted.
type fsTxn struct {
	client      *Client
	tx          *firestore.Transaction
	wrote       bool
	errNotFound error
}

func (t *fsTxn) read() error {
	if t.wrote {
		return database.ErrReadAfterWrite
	}
	return nil
}

// FindWorkspaceInfoByID returns a workspace by the given id.
func (t *fsTxn) FindWorkspaceInfoByID(_ context.Context, id types.ID) (*database.WorkspaceInfo, error) {
	if err := t.read(); err != nil {
		return nil, err
	}

	snap, err := t.tx.Get(t.client.workspaceRef(id))
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", id, database.ErrWorkspaceNotFound)
		}
		return nil, fmt.Errorf("find workspace %s: %w", id, err)
	}
	return decodeWorkspaceInfo(snap)
}

// FindMemberInfo returns the member stored under the given member id.
func (t *fsTxn) FindMemberInfo(
	_ context.Context,
	workspaceID, memberID types.ID,
) (*database.MemberInfo, error) {
	if err := t.read(); err != nil {
		return nil, err
	}

	snap, err := t.tx.Get(t.client.memberRef(workspaceID, memberID))
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s/%s: %w", workspaceID, memberID, database.ErrMemberNotFound)
		}
		return nil, fmt.Errorf("find member %s/%s: %w", workspaceID, memberID, err)
	}
	return decodeMemberInfo(snap)
}

// FindInviteInfo returns the invite of the given token.
func (t *fsTxn) FindInviteInfo(
	_ context.Context,
	workspaceID types.ID,
	token string,
) (*database.InviteInfo, error) {
	if err := t.read(); err != nil {
		return nil, err
	}

	snap, err := t.tx.Get(t.client.inviteRef(workspaceID, token))
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("invite of %s: %w", workspaceID, database.ErrInviteNotFound)
		}
		return nil, fmt.Errorf("find invite of %s: %w", workspaceID, err)
	}
	return decodeInviteInfo(snap)
}

// CreateWorkspaceInfo stores a new workspace and assigns its id.
func (t *fsTxn) CreateWorkspaceInfo(_ context.Context, info *database.WorkspaceInfo) error {
	t.wrote = true

	coll := t.client.client.Collection(database.CollWorkspaces)
	ref := coll.NewDoc()
	if info.ID != "" {
		ref = coll.Doc(info.ID.String())
	}
	info.ID = types.ID(ref.ID)

	if err := t.tx.Create(ref, info); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	return nil
}

// CreateMemberInfo stores a new member.
func (t *fsTxn) CreateMemberInfo(_ context.Context, info *database.MemberInfo) error {
	t.wrote = true

	if info.ID == "" {
		info.ID = info.UserID
	}
	if err := t.tx.Create(t.client.memberRef(info.WorkspaceID, info.ID), info); err != nil {
		return fmt.Errorf("create member: %w", err)
	}
	return nil
}

// UpdateMemberInfo merges the non-nil fields of update into the member.
func (t *fsTxn) UpdateMemberInfo(
	_ context.Context,
	workspaceID, memberID types.ID,
	update *database.MemberUpdate,
) error {
	t.wrote = true

	updates := memberUpdates(update)
	if len(updates) == 0 {
		return nil
	}

	t.errNotFound = database.ErrMemberNotFound
	if err := t.tx.Update(t.client.memberRef(workspaceID, memberID), updates); err != nil {
		return fmt.Errorf("update member %s/%s: %w", workspaceID, memberID, err)
	}
	return nil
}

// UpdateInviteInfo changes the status of the invite. The transition time is
// the commit time of the transaction.
func (t *fsTxn) UpdateInviteInfo(
	_ context.Context,
	workspaceID types.ID,
	token string,
	update *database.InviteUpdate,
) error {
	t.wrote = true

	updates := []firestore.Update{{Path: "status", Value: string(update.Status)}}
	switch update.Status {
	case types.InviteAccepted:
		updates = append(updates,
			firestore.Update{Path: "acceptedAt", Value: firestore.ServerTimestamp},
			firestore.Update{Path: "acceptedBy", Value: update.AcceptedBy.String()},
		)
	case types.InviteRevoked:
		updates = append(updates, firestore.Update{Path: "revokedAt", Value: firestore.ServerTimestamp})
	}

	t.errNotFound = database.ErrInviteNotFound
	if err := t.tx.Update(t.client.inviteRef(workspaceID, token), updates); err != nil {
		return fmt.Errorf("update invite of %s: %w", workspaceID, err)
	}
	return nil
}
