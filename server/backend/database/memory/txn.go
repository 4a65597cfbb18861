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

package memory

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-memdb"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/server/backend/database"
)

// memTxn is the database.Txn of the memory database.
type memTxn struct {
	txn   *memdb.Txn
	wrote bool
}

func (t *memTxn) read() error {
	if t.wrote {
		return database.ErrReadAfterWrite
	}
	return nil
}

// FindWorkspaceInfoByID returns a workspace by the given id.
func (t *memTxn) FindWorkspaceInfoByID(_ context.Context, id types.ID) (*database.WorkspaceInfo, error) {
	if err := t.read(); err != nil {
		return nil, err
	}
	return findWorkspaceInfo(t.txn, id)
}

// FindMemberInfo returns the member stored under the given member id.
func (t *memTxn) FindMemberInfo(
	_ context.Context,
	workspaceID, memberID types.ID,
) (*database.MemberInfo, error) {
	if err := t.read(); err != nil {
		return nil, err
	}
	return findMemberInfo(t.txn, workspaceID, memberID)
}

// FindInviteInfo returns the invite of the given token.
func (t *memTxn) FindInviteInfo(
	_ context.Context,
	workspaceID types.ID,
	token string,
) (*database.InviteInfo, error) {
	if err := t.read(); err != nil {
		return nil, err
	}
	return findInviteInfo(t.txn, workspaceID, token)
}

// CreateWorkspaceInfo stores a new workspace and assigns its id.
func (t *memTxn) CreateWorkspaceInfo(_ context.Context, info *database.WorkspaceInfo) error {
	t.wrote = true

	if info.ID == "" {
		info.ID = newID()
	}
	if err := t.txn.Insert(tblWorkspaces, info.DeepCopy()); err != nil {
		return fmt.Errorf("insert workspace: %w", err)
	}
	return nil
}

// CreateMemberInfo stores a new member.
func (t *memTxn) CreateMemberInfo(_ context.Context, info *database.MemberInfo) error {
	t.wrote = true

	if info.ID == "" {
		info.ID = info.UserID
	}

	existing, err := t.txn.First(tblMembers, "id", info.WorkspaceID.String(), info.ID.String())
	if err != nil {
		return fmt.Errorf("find member: %w", err)
	}
	if existing != nil {
		return fmt.Errorf("%s/%s: %w", info.WorkspaceID, info.ID, database.ErrMemberAlreadyExists)
	}

	stored := info.DeepCopy()
	stored.Path = ""
	if err := t.txn.Insert(tblMembers, stored); err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

// UpdateMemberInfo merges the non-nil fields of update into the member.
func (t *memTxn) UpdateMemberInfo(
	_ context.Context,
	workspaceID, memberID types.ID,
	update *database.MemberUpdate,
) error {
	t.wrote = true
	return updateMemberInfo(t.txn, workspaceID, memberID, update)
}

// UpdateInviteInfo changes the status of the invite.
func (t *memTxn) UpdateInviteInfo(
	_ context.Context,
	workspaceID types.ID,
	token string,
	update *database.InviteUpdate,
) error {
	t.wrote = true

	info, err := findInviteInfo(t.txn, workspaceID, token)
	if err != nil {
		return err
	}

	info.Apply(update, types.Now())
	if err := t.txn.Insert(tblInvites, info); err != nil {
		return fmt.Errorf("update invite of %s: %w", workspaceID, err)
	}
	return nil
}
