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

// Package memory implements the database interface using in-memory database.
package memory

import (
	"context"
	"fmt"
	"sort"
	gotime "time"

	"github.com/hashicorp/go-memdb"
	"github.com/rs/xid"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/server/backend/database"
)

// DB is an in-memory database for testing or temporarily.
type DB struct {
	db *memdb.MemDB
}

// New returns a new in-memory database.
func New() (*DB, error) {
	memDB, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("new memdb: %w", err)
	}

	return &DB{
		db: memDB,
	}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return nil
}

// RunTransaction runs fn in a single write transaction. memdb allows one
// writer at a time, so transactions are serialized and never conflict.
func (d *DB) RunTransaction(
	ctx context.Context,
	fn func(ctx context.Context, txn database.Txn) error,
) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	if err := fn(ctx, &memTxn{txn: txn}); err != nil {
		return err
	}

	txn.Commit()
	return nil
}

// FindWorkspaceInfoByID returns a workspace by the given id.
func (d *DB) FindWorkspaceInfoByID(_ context.Context, id types.ID) (*database.WorkspaceInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	return findWorkspaceInfo(txn, id)
}

// FindWorkspaceInfosByOwner returns the workspaces owned by the given user.
func (d *DB) FindWorkspaceInfosByOwner(
	_ context.Context,
	ownerID types.ID,
) ([]*database.WorkspaceInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	infos, _, err := workspacesByOwner(txn, ownerID)
	return infos, err
}

// WatchWorkspacesByOwner delivers the workspaces owned by the given user on
// every change.
func (d *DB) WatchWorkspacesByOwner(
	ctx context.Context,
	ownerID types.ID,
	onSnapshot func([]*database.WorkspaceInfo),
	onError func(error),
) (database.Unsubscribe, error) {
	return watch(ctx, d.db, func(txn *memdb.Txn) ([]*database.WorkspaceInfo, <-chan struct{}, error) {
		return workspacesByOwner(txn, ownerID)
	}, onSnapshot, onError)
}

// FindMemberInfo returns the member stored under the given member id.
func (d *DB) FindMemberInfo(
	_ context.Context,
	workspaceID, memberID types.ID,
) (*database.MemberInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	return findMemberInfo(txn, workspaceID, memberID)
}

// ListMemberInfos returns all member records of the workspace.
func (d *DB) ListMemberInfos(
	_ context.Context,
	workspaceID types.ID,
) ([]*database.MemberInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	infos, _, err := membersByWorkspace(txn, workspaceID)
	return infos, err
}

// FindMemberInfosByUser returns the member records of the given user with the
// given status across all workspaces.
func (d *DB) FindMemberInfosByUser(
	_ context.Context,
	userID types.ID,
	status types.MemberStatus,
) ([]*database.MemberInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	infos, _, err := membershipsByUser(txn, userID, status)
	return infos, err
}

// UpdateMemberInfo merges the non-nil fields of update into the member.
func (d *DB) UpdateMemberInfo(
	_ context.Context,
	workspaceID, memberID types.ID,
	update *database.MemberUpdate,
) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	if err := updateMemberInfo(txn, workspaceID, memberID, update); err != nil {
		return err
	}

	txn.Commit()
	return nil
}

// DeleteMemberInfo deletes the member.
func (d *DB) DeleteMemberInfo(_ context.Context, workspaceID, memberID types.ID) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	info, err := findMemberInfo(txn, workspaceID, memberID)
	if err != nil {
		return err
	}

	if err := txn.Delete(tblMembers, info); err != nil {
		return fmt.Errorf("delete member %s/%s: %w", workspaceID, memberID, err)
	}

	txn.Commit()
	return nil
}

// WatchMembershipsByUser delivers the member records of the given user with
// the given status across all workspaces.
func (d *DB) WatchMembershipsByUser(
	ctx context.Context,
	userID types.ID,
	status types.MemberStatus,
	onSnapshot func([]*database.MemberInfo),
	onError func(error),
) (database.Unsubscribe, error) {
	return watch(ctx, d.db, func(txn *memdb.Txn) ([]*database.MemberInfo, <-chan struct{}, error) {
		return membershipsByUser(txn, userID, status)
	}, onSnapshot, onError)
}

// WatchMembersByWorkspace delivers all member records of the workspace.
func (d *DB) WatchMembersByWorkspace(
	ctx context.Context,
	workspaceID types.ID,
	onSnapshot func([]*database.MemberInfo),
	onError func(error),
) (database.Unsubscribe, error) {
	return watch(ctx, d.db, func(txn *memdb.Txn) ([]*database.MemberInfo, <-chan struct{}, error) {
		return membersByWorkspace(txn, workspaceID)
	}, onSnapshot, onError)
}

// CreateInviteInfo stores a new invite.
func (d *DB) CreateInviteInfo(_ context.Context, info *database.InviteInfo) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	existing, err := txn.First(tblInvites, "id", info.WorkspaceID.String(), info.ID)
	if err != nil {
		return fmt.Errorf("find invite: %w", err)
	}
	if existing != nil {
		return fmt.Errorf("create invite: %w", database.ErrInviteAlreadyExists)
	}

	if err := txn.Insert(tblInvites, info.DeepCopy()); err != nil {
		return fmt.Errorf("insert invite: %w", err)
	}

	txn.Commit()
	return nil
}

// FindInviteInfo returns the invite of the given token.
func (d *DB) FindInviteInfo(
	_ context.Context,
	workspaceID types.ID,
	token string,
) (*database.InviteInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	return findInviteInfo(txn, workspaceID, token)
}

// ListInviteInfos returns the invites of the workspace with the given status.
func (d *DB) ListInviteInfos(
	_ context.Context,
	workspaceID types.ID,
	status types.InviteStatus,
) ([]*database.InviteInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	iter, err := txn.Get(tblInvites, "workspace_id_status", workspaceID.String(), string(status))
	if err != nil {
		return nil, fmt.Errorf("list invites of %s: %w", workspaceID, err)
	}

	var infos []*database.InviteInfo
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		infos = append(infos, raw.(*database.InviteInfo).DeepCopy())
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})

	return infos, nil
}

// PurgeInviteInfos deletes consumed or expired invites created before
// createdBefore.
func (d *DB) PurgeInviteInfos(
	_ context.Context,
	createdBefore, expiredBefore gotime.Time,
) (int, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()

	iter, err := txn.Get(tblInvites, "id")
	if err != nil {
		return 0, fmt.Errorf("scan invites: %w", err)
	}

	var stale []*database.InviteInfo
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		info := raw.(*database.InviteInfo)
		if !info.CreatedAt.Before(createdBefore) {
			continue
		}
		if info.Status != types.InvitePending || info.ExpiresAt.Before(expiredBefore) {
			stale = append(stale, info)
		}
	}

	for _, info := range stale {
		if err := txn.Delete(tblInvites, info); err != nil {
			return 0, fmt.Errorf("delete invite: %w", err)
		}
	}

	txn.Commit()
	return len(stale), nil
}

// FindUserInfoByID returns the profile of the given user.
func (d *DB) FindUserInfoByID(_ context.Context, id types.ID) (*database.UserInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblUsers, "id", id.String())
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%s: %w", id, database.ErrUserNotFound)
	}

	return raw.(*database.UserInfo).DeepCopy(), nil
}

// UpsertUserInfo creates the profile or refreshes its identity fields.
func (d *DB) UpsertUserInfo(_ context.Context, info *database.UserInfo) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblUsers, "id", info.ID.String())
	if err != nil {
		return fmt.Errorf("find user %s: %w", info.ID, err)
	}

	stored := info.DeepCopy()
	if raw != nil {
		stored = raw.(*database.UserInfo).DeepCopy()
		if info.Email != "" {
			stored.Email = info.Email
		}
		if info.DisplayName != "" {
			stored.DisplayName = info.DisplayName
		}
		if info.PhotoURL != "" {
			stored.PhotoURL = info.PhotoURL
		}
	}

	if err := txn.Insert(tblUsers, stored); err != nil {
		return fmt.Errorf("upsert user %s: %w", info.ID, err)
	}

	txn.Commit()
	return nil
}

// CreateTaskInfo stores a new task or project and assigns its id.
func (d *DB) CreateTaskInfo(_ context.Context, info *database.TaskInfo) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	if info.ID == "" {
		info.ID = newID()
	}

	if err := txn.Insert(tblTasks, info.DeepCopy()); err != nil {
		return fmt.Errorf("insert %s: %w", info.Kind, err)
	}

	txn.Commit()
	return nil
}

// FindTaskInfo returns a task or project.
func (d *DB) FindTaskInfo(
	_ context.Context,
	workspaceID types.ID,
	kind types.TaskKind,
	id types.ID,
) (*database.TaskInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	info, err := findTaskInfo(txn, workspaceID, kind, id)
	if err != nil {
		return nil, err
	}
	return info.DeepCopy(), nil
}

// UpdateTaskFields merges fields into the task.
func (d *DB) UpdateTaskFields(
	_ context.Context,
	workspaceID types.ID,
	kind types.TaskKind,
	id types.ID,
	fields types.Fields,
) (*database.TaskInfo, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()

	info, err := findTaskInfo(txn, workspaceID, kind, id)
	if err != nil {
		return nil, err
	}

	updated := info.DeepCopy()
	updated.MergeFields(fields, types.Now())
	if err := txn.Insert(tblTasks, updated); err != nil {
		return nil, fmt.Errorf("update %s %s: %w", kind, id, err)
	}

	txn.Commit()
	return updated.DeepCopy(), nil
}

func findWorkspaceInfo(txn *memdb.Txn, id types.ID) (*database.WorkspaceInfo, error) {
	raw, err := txn.First(tblWorkspaces, "id", id.String())
	if err != nil {
		return nil, fmt.Errorf("find workspace %s: %w", id, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%s: %w", id, database.ErrWorkspaceNotFound)
	}

	return raw.(*database.WorkspaceInfo).DeepCopy(), nil
}

func findMemberInfo(txn *memdb.Txn, workspaceID, memberID types.ID) (*database.MemberInfo, error) {
	raw, err := txn.First(tblMembers, "id", workspaceID.String(), memberID.String())
	if err != nil {
		return nil, fmt.Errorf("find member %s/%s: %w", workspaceID, memberID, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%s/%s: %w", workspaceID, memberID, database.ErrMemberNotFound)
	}

	return withPath(raw.(*database.MemberInfo)), nil
}

func findInviteInfo(txn *memdb.Txn, workspaceID types.ID, token string) (*database.InviteInfo, error) {
	raw, err := txn.First(tblInvites, "id", workspaceID.String(), token)
	if err != nil {
		return nil, fmt.Errorf("find invite of %s: %w", workspaceID, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("invite of %s: %w", workspaceID, database.ErrInviteNotFound)
	}

	return raw.(*database.InviteInfo).DeepCopy(), nil
}

func findTaskInfo(
	txn *memdb.Txn,
	workspaceID types.ID,
	kind types.TaskKind,
	id types.ID,
) (*database.TaskInfo, error) {
	raw, err := txn.First(tblTasks, "id", workspaceID.String(), string(kind), id.String())
	if err != nil {
		return nil, fmt.Errorf("find %s %s: %w", kind, id, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%s %s: %w", kind, id, database.ErrTaskNotFound)
	}

	return raw.(*database.TaskInfo), nil
}

func updateMemberInfo(
	txn *memdb.Txn,
	workspaceID, memberID types.ID,
	update *database.MemberUpdate,
) error {
	info, err := findMemberInfo(txn, workspaceID, memberID)
	if err != nil {
		return err
	}

	info.Apply(update)
	info.Path = ""
	if err := txn.Insert(tblMembers, info); err != nil {
		return fmt.Errorf("update member %s/%s: %w", workspaceID, memberID, err)
	}

	return nil
}

func workspacesByOwner(
	txn *memdb.Txn,
	ownerID types.ID,
) ([]*database.WorkspaceInfo, <-chan struct{}, error) {
	iter, err := txn.Get(tblWorkspaces, "owner_id", ownerID.String())
	if err != nil {
		return nil, nil, fmt.Errorf("find workspaces of %s: %w", ownerID, err)
	}

	var infos []*database.WorkspaceInfo
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		infos = append(infos, raw.(*database.WorkspaceInfo).DeepCopy())
	}

	return infos, iter.WatchCh(), nil
}

func membersByWorkspace(
	txn *memdb.Txn,
	workspaceID types.ID,
) ([]*database.MemberInfo, <-chan struct{}, error) {
	iter, err := txn.Get(tblMembers, "workspace_id", workspaceID.String())
	if err != nil {
		return nil, nil, fmt.Errorf("find members of %s: %w", workspaceID, err)
	}

	var infos []*database.MemberInfo
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		infos = append(infos, withPath(raw.(*database.MemberInfo)))
	}

	return infos, iter.WatchCh(), nil
}

func membershipsByUser(
	txn *memdb.Txn,
	userID types.ID,
	status types.MemberStatus,
) ([]*database.MemberInfo, <-chan struct{}, error) {
	iter, err := txn.Get(tblMembers, "user_id_status", userID.String(), string(status))
	if err != nil {
		return nil, nil, fmt.Errorf("find memberships of %s: %w", userID, err)
	}

	var infos []*database.MemberInfo
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		infos = append(infos, withPath(raw.(*database.MemberInfo)))
	}

	return infos, iter.WatchCh(), nil
}

func withPath(info *database.MemberInfo) *database.MemberInfo {
	copied := info.DeepCopy()
	copied.Path = database.MemberPath(info.WorkspaceID, info.ID)
	return copied
}

// newID returns a new globally unique, sortable id.
func newID() types.ID {
	return types.ID(xid.New().String())
}
