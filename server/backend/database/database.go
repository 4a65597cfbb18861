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

// Package database provides the document store interface for the Tasklane
// backend.
package database

import (
	"context"
	gotime "time"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/pkg/errors"
)

var (
	// ErrWorkspaceNotFound is returned when the workspace could not be found.
	ErrWorkspaceNotFound = errors.NotFound("workspace not found").WithCode("ErrWorkspaceNotFound")

	// ErrMemberNotFound is returned when the member could not be found.
	ErrMemberNotFound = errors.NotFound("member not found").WithCode("ErrMemberNotFound")

	// ErrMemberAlreadyExists is returned when the member already exists.
	ErrMemberAlreadyExists = errors.AlreadyExists("member already exists").WithCode("ErrMemberAlreadyExists")

	// ErrInviteNotFound is returned when the invite could not be found.
	ErrInviteNotFound = errors.NotFound("invite not found").WithCode("ErrInviteNotFound")

	// ErrInviteAlreadyExists is returned when an invite with the same token exists.
	ErrInviteAlreadyExists = errors.AlreadyExists("invite already exists").WithCode("ErrInviteAlreadyExists")

	// ErrUserNotFound is returned when the user profile could not be found.
	ErrUserNotFound = errors.NotFound("user not found").WithCode("ErrUserNotFound")

	// ErrTaskNotFound is returned when the task or project could not be found.
	ErrTaskNotFound = errors.NotFound("task not found").WithCode("ErrTaskNotFound")

	// ErrReadAfterWrite is returned when a transaction reads after it wrote.
	// Every read of a transaction must precede its first write.
	ErrReadAfterWrite = errors.Internal("read after write in transaction").WithCode("ErrReadAfterWrite")

	// ErrInvalidPath is returned when a storage path does not name a
	// document below a workspace.
	ErrInvalidPath = errors.InvalidArgument("invalid storage path").WithCode("ErrInvalidPath")
)

// Unsubscribe tears down a live query. It is idempotent and returns once the
// query's goroutine has stopped delivering.
type Unsubscribe func()

// Database represents the document store which reads or saves Tasklane data.
type Database interface {
	// Close all resources of this database.
	Close() error

	// RunTransaction runs fn in a single atomic transaction. All reads of fn
	// must precede its writes; a read after a write fails with
	// ErrReadAfterWrite. If fn returns an error nothing is written.
	RunTransaction(ctx context.Context, fn func(ctx context.Context, txn Txn) error) error

	// FindWorkspaceInfoByID returns a workspace by the given id.
	FindWorkspaceInfoByID(ctx context.Context, id types.ID) (*WorkspaceInfo, error)

	// FindWorkspaceInfosByOwner returns the workspaces owned by the given user.
	FindWorkspaceInfosByOwner(ctx context.Context, ownerID types.ID) ([]*WorkspaceInfo, error)

	// WatchWorkspacesByOwner delivers the workspaces owned by the given user
	// now and again after every change. onError is called at most once, after
	// which the query stops.
	WatchWorkspacesByOwner(
		ctx context.Context,
		ownerID types.ID,
		onSnapshot func([]*WorkspaceInfo),
		onError func(error),
	) (Unsubscribe, error)

	// FindMemberInfo returns the member stored under the given member id.
	FindMemberInfo(ctx context.Context, workspaceID, memberID types.ID) (*MemberInfo, error)

	// ListMemberInfos returns all member records of the workspace, including
	// malformed ones.
	ListMemberInfos(ctx context.Context, workspaceID types.ID) ([]*MemberInfo, error)

	// FindMemberInfosByUser returns the member records of the given user with
	// the given status across all workspaces.
	FindMemberInfosByUser(
		ctx context.Context,
		userID types.ID,
		status types.MemberStatus,
	) ([]*MemberInfo, error)

	// UpdateMemberInfo merges the non-nil fields of update into the member.
	UpdateMemberInfo(ctx context.Context, workspaceID, memberID types.ID, update *MemberUpdate) error

	// DeleteMemberInfo deletes the member.
	DeleteMemberInfo(ctx context.Context, workspaceID, memberID types.ID) error

	// WatchMembershipsByUser delivers the member records of the given user with
	// the given status across all workspaces, with their storage paths.
	WatchMembershipsByUser(
		ctx context.Context,
		userID types.ID,
		status types.MemberStatus,
		onSnapshot func([]*MemberInfo),
		onError func(error),
	) (Unsubscribe, error)

	// WatchMembersByWorkspace delivers all member records of the workspace.
	WatchMembersByWorkspace(
		ctx context.Context,
		workspaceID types.ID,
		onSnapshot func([]*MemberInfo),
		onError func(error),
	) (Unsubscribe, error)

	// CreateInviteInfo stores a new invite. It returns ErrInviteAlreadyExists
	// if the token is already taken.
	CreateInviteInfo(ctx context.Context, info *InviteInfo) error

	// FindInviteInfo returns the invite of the given token.
	FindInviteInfo(ctx context.Context, workspaceID types.ID, token string) (*InviteInfo, error)

	// ListInviteInfos returns the invites of the workspace with the given status.
	ListInviteInfos(
		ctx context.Context,
		workspaceID types.ID,
		status types.InviteStatus,
	) ([]*InviteInfo, error)

	// PurgeInviteInfos deletes invites created before createdBefore that are
	// either no longer pending or expired before expiredBefore. It returns the
	// number of deleted invites.
	PurgeInviteInfos(ctx context.Context, createdBefore, expiredBefore gotime.Time) (int, error)

	// FindUserInfoByID returns the profile of the given user.
	FindUserInfoByID(ctx context.Context, id types.ID) (*UserInfo, error)

	// UpsertUserInfo creates the profile or refreshes its identity fields.
	UpsertUserInfo(ctx context.Context, info *UserInfo) error

	// CreateTaskInfo stores a new task or project and assigns its id.
	CreateTaskInfo(ctx context.Context, info *TaskInfo) error

	// FindTaskInfo returns a task or project.
	FindTaskInfo(ctx context.Context, workspaceID types.ID, kind types.TaskKind, id types.ID) (*TaskInfo, error)

	// UpdateTaskFields merges fields into the task. A value of
	// types.DeleteField removes the field.
	UpdateTaskFields(
		ctx context.Context,
		workspaceID types.ID,
		kind types.TaskKind,
		id types.ID,
		fields types.Fields,
	) (*TaskInfo, error)
}

// Txn is the view of the store inside RunTransaction.
type Txn interface {
	// FindWorkspaceInfoByID returns a workspace by the given id.
	FindWorkspaceInfoByID(ctx context.Context, id types.ID) (*WorkspaceInfo, error)

	// FindMemberInfo returns the member stored under the given member id.
	FindMemberInfo(ctx context.Context, workspaceID, memberID types.ID) (*MemberInfo, error)

	// FindInviteInfo returns the invite of the given token.
	FindInviteInfo(ctx context.Context, workspaceID types.ID, token string) (*InviteInfo, error)

	// CreateWorkspaceInfo stores a new workspace and assigns its id.
	CreateWorkspaceInfo(ctx context.Context, info *WorkspaceInfo) error

	// CreateMemberInfo stores a new member under info.ID, which defaults to
	// info.UserID.
	CreateMemberInfo(ctx context.Context, info *MemberInfo) error

	// UpdateMemberInfo merges the non-nil fields of update into the member.
	UpdateMemberInfo(ctx context.Context, workspaceID, memberID types.ID, update *MemberUpdate) error

	// UpdateInviteInfo changes the status of the invite. The store stamps the
	// acceptance or revocation time.
	UpdateInviteInfo(ctx context.Context, workspaceID types.ID, token string, update *InviteUpdate) error
}
