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

// Package testcases contains testcases for database. It is used by database
// implementations to test their own implementations with the same testcases.
package testcases

import (
	"context"
	"errors"
	"fmt"
	"testing"
	gotime "time"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/server/backend/database"
)

const waitTimeout = 5 * gotime.Second

// NewUserID returns a user id that is unique across test runs.
func NewUserID() types.ID {
	return types.ID("u-" + xid.New().String())
}

// CreateWorkspace creates a workspace and its owner member the way the
// workspaces package does.
func CreateWorkspace(t *testing.T, db database.Database, ownerID types.ID) *database.WorkspaceInfo {
	ctx := context.Background()
	info := database.NewWorkspaceInfo("Test Workspace", "", ownerID)

	err := db.RunTransaction(ctx, func(ctx context.Context, txn database.Txn) error {
		if err := txn.CreateWorkspaceInfo(ctx, info); err != nil {
			return err
		}
		owner, err := database.NewMemberInfo(info.ID, ownerID, fmt.Sprintf("%s@x.com", ownerID), types.RoleOwner, "")
		if err != nil {
			return err
		}
		return txn.CreateMemberInfo(ctx, owner)
	})
	require.NoError(t, err)
	require.NotEmpty(t, info.ID)

	return info
}

// AddMember adds an active member to the workspace.
func AddMember(
	t *testing.T,
	db database.Database,
	workspaceID, userID types.ID,
	role types.MemberRole,
) *database.MemberInfo {
	ctx := context.Background()
	info, err := database.NewMemberInfo(workspaceID, userID, fmt.Sprintf("%s@x.com", userID), role, "")
	require.NoError(t, err)

	require.NoError(t, db.RunTransaction(ctx, func(ctx context.Context, txn database.Txn) error {
		return txn.CreateMemberInfo(ctx, info)
	}))
	return info
}

// nestedFields returns the nested map stored under a task field.
func nestedFields(t *testing.T, value any) map[string]any {
	switch nested := value.(type) {
	case types.Fields:
		return nested
	case map[string]any:
		return nested
	}
	t.Fatalf("expected a nested map, got %T", value)
	return nil
}

// RunTransactionTest runs the transaction contract testcases.
func RunTransactionTest(t *testing.T, db database.Database) {
	ctx := context.Background()

	t.Run("workspace and owner are created atomically test", func(t *testing.T) {
		ownerID := NewUserID()
		info := CreateWorkspace(t, db, ownerID)

		stored, err := db.FindWorkspaceInfoByID(ctx, info.ID)
		assert.NoError(t, err)
		assert.Equal(t, ownerID, stored.OwnerID)
		assert.Equal(t, types.PlanFree, stored.Plan)

		owner, err := db.FindMemberInfo(ctx, info.ID, ownerID)
		assert.NoError(t, err)
		assert.Equal(t, types.RoleOwner, owner.Role)
		assert.Equal(t, types.MemberActive, owner.Status)
	})

	t.Run("failed transaction writes nothing test", func(t *testing.T) {
		ownerID := NewUserID()
		info := database.NewWorkspaceInfo("Aborted", "", ownerID)
		errAbort := errors.New("abort")

		err := db.RunTransaction(ctx, func(ctx context.Context, txn database.Txn) error {
			if err := txn.CreateWorkspaceInfo(ctx, info); err != nil {
				return err
			}
			return errAbort
		})
		assert.ErrorIs(t, err, errAbort)

		infos, err := db.FindWorkspaceInfosByOwner(ctx, ownerID)
		assert.NoError(t, err)
		assert.Empty(t, infos)
	})

	t.Run("read after write is rejected test", func(t *testing.T) {
		ownerID := NewUserID()
		workspace := CreateWorkspace(t, db, ownerID)
		role := types.RoleAdmin

		err := db.RunTransaction(ctx, func(ctx context.Context, txn database.Txn) error {
			if err := txn.UpdateMemberInfo(ctx, workspace.ID, ownerID, &database.MemberUpdate{Role: &role}); err != nil {
				return err
			}
			_, err := txn.FindWorkspaceInfoByID(ctx, workspace.ID)
			return err
		})
		assert.ErrorIs(t, err, database.ErrReadAfterWrite)

		owner, err := db.FindMemberInfo(ctx, workspace.ID, ownerID)
		assert.NoError(t, err)
		assert.Equal(t, types.RoleOwner, owner.Role)
	})

	t.Run("duplicate member test", func(t *testing.T) {
		ownerID := NewUserID()
		workspace := CreateWorkspace(t, db, ownerID)

		err := db.RunTransaction(ctx, func(ctx context.Context, txn database.Txn) error {
			dup, err := database.NewMemberInfo(workspace.ID, ownerID, "dup@x.com", types.RoleMember, "")
			if err != nil {
				return err
			}
			return txn.CreateMemberInfo(ctx, dup)
		})
		assert.ErrorIs(t, err, database.ErrMemberAlreadyExists)
	})
}

// RunMemberTest runs the member testcases.
func RunMemberTest(t *testing.T, db database.Database) {
	ctx := context.Background()

	t.Run("update merges fields test", func(t *testing.T) {
		ownerID := NewUserID()
		workspace := CreateWorkspace(t, db, ownerID)
		userID := NewUserID()
		AddMember(t, db, workspace.ID, userID, types.RoleViewer)

		channelID := "-1001"
		assert.NoError(t, db.UpdateMemberInfo(ctx, workspace.ID, userID, &database.MemberUpdate{
			NotificationChannelID: &channelID,
		}))
		role := types.RoleMember
		assert.NoError(t, db.UpdateMemberInfo(ctx, workspace.ID, userID, &database.MemberUpdate{Role: &role}))

		info, err := db.FindMemberInfo(ctx, workspace.ID, userID)
		assert.NoError(t, err)
		assert.Equal(t, types.RoleMember, info.Role)
		assert.Equal(t, channelID, info.NotificationChannelID)
		assert.Equal(t, database.MemberPath(workspace.ID, userID), info.Path)

		_, err = db.FindMemberInfo(ctx, workspace.ID, NewUserID())
		assert.ErrorIs(t, err, database.ErrMemberNotFound)
	})

	t.Run("list and delete test", func(t *testing.T) {
		ownerID := NewUserID()
		workspace := CreateWorkspace(t, db, ownerID)
		userID := NewUserID()
		AddMember(t, db, workspace.ID, userID, types.RoleMember)

		infos, err := db.ListMemberInfos(ctx, workspace.ID)
		assert.NoError(t, err)
		assert.Len(t, infos, 2)

		assert.NoError(t, db.DeleteMemberInfo(ctx, workspace.ID, userID))
		infos, err = db.ListMemberInfos(ctx, workspace.ID)
		assert.NoError(t, err)
		assert.Len(t, infos, 1)

		assert.ErrorIs(t, db.DeleteMemberInfo(ctx, workspace.ID, userID), database.ErrMemberNotFound)
	})

	t.Run("memberships across workspaces test", func(t *testing.T) {
		userID := NewUserID()
		w1 := CreateWorkspace(t, db, NewUserID())
		w2 := CreateWorkspace(t, db, NewUserID())
		AddMember(t, db, w1.ID, userID, types.RoleMember)
		AddMember(t, db, w2.ID, userID, types.RoleGuest)

		inactive := types.MemberInactive
		assert.NoError(t, db.UpdateMemberInfo(ctx, w2.ID, userID, &database.MemberUpdate{Status: &inactive}))

		infos, err := db.FindMemberInfosByUser(ctx, userID, types.MemberActive)
		assert.NoError(t, err)
		require.Len(t, infos, 1)

		workspaceID, err := database.WorkspaceIDFromPath(infos[0].Path)
		assert.NoError(t, err)
		assert.Equal(t, w1.ID, workspaceID)
	})

	t.Run("malformed member is stored and listed test", func(t *testing.T) {
		workspace := CreateWorkspace(t, db, NewUserID())
		legacy := &database.MemberInfo{
			ID:          types.ID("legacy-" + xid.New().String()),
			WorkspaceID: workspace.ID,
			Email:       "legacy@x.com",
			Role:        types.RoleMember,
			Status:      types.MemberActive,
		}
		assert.NoError(t, db.RunTransaction(ctx, func(ctx context.Context, txn database.Txn) error {
			return txn.CreateMemberInfo(ctx, legacy)
		}))

		infos, err := db.ListMemberInfos(ctx, workspace.ID)
		assert.NoError(t, err)
		assert.Len(t, infos, 2)
	})
}

// RunInviteTest runs the invite testcases.
func RunInviteTest(t *testing.T, db database.Database) {
	ctx := context.Background()

	t.Run("create and find test", func(t *testing.T) {
		workspace := CreateWorkspace(t, db, NewUserID())
		token := "tok-" + xid.New().String()
		info := database.NewInviteInfo(workspace.ID, token, "B@X.com", types.RoleMember, workspace.OwnerID)
		assert.NoError(t, db.CreateInviteInfo(ctx, info))
		assert.ErrorIs(t, db.CreateInviteInfo(ctx, info), database.ErrInviteAlreadyExists)

		stored, err := db.FindInviteInfo(ctx, workspace.ID, token)
		assert.NoError(t, err)
		assert.Equal(t, "b@x.com", stored.Email)
		assert.Equal(t, types.InvitePending, stored.Status)
		assert.WithinDuration(t, info.ExpiresAt, stored.ExpiresAt, gotime.Millisecond)

		_, err = db.FindInviteInfo(ctx, workspace.ID, "missing")
		assert.ErrorIs(t, err, database.ErrInviteNotFound)
	})

	t.Run("status transition test", func(t *testing.T) {
		workspace := CreateWorkspace(t, db, NewUserID())
		token := "tok-" + xid.New().String()
		assert.NoError(t, db.CreateInviteInfo(ctx, database.NewInviteInfo(
			workspace.ID, token, "c@x.com", types.RoleViewer, workspace.OwnerID,
		)))

		assert.NoError(t, db.RunTransaction(ctx, func(ctx context.Context, txn database.Txn) error {
			return txn.UpdateInviteInfo(ctx, workspace.ID, token, &database.InviteUpdate{
				Status: types.InviteRevoked,
			})
		}))

		stored, err := db.FindInviteInfo(ctx, workspace.ID, token)
		assert.NoError(t, err)
		assert.Equal(t, types.InviteRevoked, stored.Status)
		assert.NotNil(t, stored.RevokedAt)

		pending, err := db.ListInviteInfos(ctx, workspace.ID, types.InvitePending)
		assert.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("purge test", func(t *testing.T) {
		workspace := CreateWorkspace(t, db, NewUserID())
		accepted := database.NewInviteInfo(workspace.ID, "tok-"+xid.New().String(), "d@x.com", types.RoleMember, "")
		pending := database.NewInviteInfo(workspace.ID, "tok-"+xid.New().String(), "e@x.com", types.RoleMember, "")
		assert.NoError(t, db.CreateInviteInfo(ctx, accepted))
		assert.NoError(t, db.CreateInviteInfo(ctx, pending))
		assert.NoError(t, db.RunTransaction(ctx, func(ctx context.Context, txn database.Txn) error {
			return txn.UpdateInviteInfo(ctx, workspace.ID, accepted.ID, &database.InviteUpdate{
				Status:     types.InviteAccepted,
				AcceptedBy: "u2",
			})
		}))

		// pending invites survive until they expire
		now := types.Now()
		_, err := db.PurgeInviteInfos(ctx, now.Add(gotime.Minute), now)
		assert.NoError(t, err)

		_, err = db.FindInviteInfo(ctx, workspace.ID, accepted.ID)
		assert.ErrorIs(t, err, database.ErrInviteNotFound)
		_, err = db.FindInviteInfo(ctx, workspace.ID, pending.ID)
		assert.NoError(t, err)

		_, err = db.PurgeInviteInfos(ctx, now.Add(gotime.Minute), now.Add(types.InviteTTL+gotime.Hour))
		assert.NoError(t, err)
		_, err = db.FindInviteInfo(ctx, workspace.ID, pending.ID)
		assert.ErrorIs(t, err, database.ErrInviteNotFound)
	})
}

// RunUserInfoTest runs the profile testcases.
func RunUserInfoTest(t *testing.T, db database.Database) {
	ctx := context.Background()

	t.Run("upsert keeps profile fields test", func(t *testing.T) {
		userID := NewUserID()
		_, err := db.FindUserInfoByID(ctx, userID)
		assert.ErrorIs(t, err, database.ErrUserNotFound)

		info := database.NewUserInfo(&types.Identity{ID: userID, Email: "b@x.com", DisplayName: "Bee"})
		info.PhotoURL = "https://x.com/b.png"
		assert.NoError(t, db.UpsertUserInfo(ctx, info))

		assert.NoError(t, db.UpsertUserInfo(ctx, &database.UserInfo{ID: userID, Email: "bee@x.com"}))

		stored, err := db.FindUserInfoByID(ctx, userID)
		assert.NoError(t, err)
		assert.Equal(t, "bee@x.com", stored.Email)
		assert.Equal(t, "Bee", stored.DisplayName)
		assert.Equal(t, "https://x.com/b.png", stored.PhotoURL)
		assert.True(t, stored.IsActive)
	})
}

// RunTaskTest runs the task testcases.
func RunTaskTest(t *testing.T, db database.Database) {
	ctx := context.Background()

	t.Run("field level merge test", func(t *testing.T) {
		workspace := CreateWorkspace(t, db, NewUserID())
		now := types.Now()
		info := &database.TaskInfo{
			WorkspaceID: workspace.ID,
			Kind:        types.KindTask,
			Fields:      types.Fields{"title": "write docs", "assigneeId": "u1", "priority": "high"},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		assert.NoError(t, db.CreateTaskInfo(ctx, info))
		assert.NotEmpty(t, info.ID)

		updated, err := db.UpdateTaskFields(ctx, workspace.ID, types.KindTask, info.ID, types.Fields{
			"assigneeId":  types.DeleteField,
			"assigneeIds": []any{},
			"title":       "write more docs",
		})
		assert.NoError(t, err)
		assert.Equal(t, "write more docs", updated.Fields["title"])
		assert.Equal(t, "high", updated.Fields["priority"])
		assert.NotContains(t, updated.Fields, "assigneeId")
		assert.Contains(t, updated.Fields, "assigneeIds")

		_, err = db.FindTaskInfo(ctx, workspace.ID, types.KindProject, info.ID)
		assert.ErrorIs(t, err, database.ErrTaskNotFound)

		_, err = db.UpdateTaskFields(ctx, workspace.ID, types.KindTask, "missing", types.Fields{"a": 1})
		assert.ErrorIs(t, err, database.ErrTaskNotFound)
	})

	t.Run("nested field merge test", func(t *testing.T) {
		workspace := CreateWorkspace(t, db, NewUserID())
		now := types.Now()
		info := &database.TaskInfo{
			WorkspaceID: workspace.ID,
			Kind:        types.KindTask,
			Fields: types.Fields{
				"title": "nested",
				"meta":  map[string]any{"color": "red", "icon": "x"},
			},
			CreatedAt: now,
			UpdatedAt: now,
		}
		assert.NoError(t, db.CreateTaskInfo(ctx, info))

		// 01. A nested delete marker removes only that key.
		updated, err := db.UpdateTaskFields(ctx, workspace.ID, types.KindTask, info.ID, types.Fields{
			"meta": map[string]any{"color": types.DeleteField},
		})
		assert.NoError(t, err)
		meta := nestedFields(t, updated.Fields["meta"])
		assert.NotContains(t, meta, "color")
		assert.Equal(t, "x", meta["icon"])

		// 02. A nested value is merged next to its siblings.
		updated, err = db.UpdateTaskFields(ctx, workspace.ID, types.KindTask, info.ID, types.Fields{
			"meta": map[string]any{"size": "l"},
		})
		assert.NoError(t, err)
		meta = nestedFields(t, updated.Fields["meta"])
		assert.Equal(t, "x", meta["icon"])
		assert.Equal(t, "l", meta["size"])
		assert.Len(t, meta, 2)

		stored, err := db.FindTaskInfo(ctx, workspace.ID, types.KindTask, info.ID)
		assert.NoError(t, err)
		assert.Equal(t, meta, nestedFields(t, stored.Fields["meta"]))
	})
}

// RunWatchTest runs the live query testcases.
func RunWatchTest(t *testing.T, db database.Database) {
	ctx := context.Background()

	t.Run("watch workspaces by owner test", func(t *testing.T) {
		ownerID := NewUserID()
		snapshots := make(chan []*database.WorkspaceInfo, 16)
		unsubscribe, err := db.WatchWorkspacesByOwner(ctx, ownerID, func(infos []*database.WorkspaceInfo) {
			snapshots <- infos
		}, func(err error) {
			t.Errorf("unexpected watch error: %v", err)
		})
		require.NoError(t, err)
		defer unsubscribe()

		assert.Empty(t, nextSnapshot(t, snapshots))

		workspace := CreateWorkspace(t, db, ownerID)
		waitFor(t, snapshots, func(infos []*database.WorkspaceInfo) bool {
			return len(infos) == 1 && infos[0].ID == workspace.ID
		})
	})

	t.Run("watch memberships by user test", func(t *testing.T) {
		userID := NewUserID()
		workspace := CreateWorkspace(t, db, NewUserID())

		snapshots := make(chan []*database.MemberInfo, 16)
		unsubscribe, err := db.WatchMembershipsByUser(ctx, userID, types.MemberActive, func(infos []*database.MemberInfo) {
			snapshots <- infos
		}, func(err error) {
			t.Errorf("unexpected watch error: %v", err)
		})
		require.NoError(t, err)
		defer unsubscribe()

		assert.Empty(t, nextSnapshot(t, snapshots))

		AddMember(t, db, workspace.ID, userID, types.RoleMember)
		waitFor(t, snapshots, func(infos []*database.MemberInfo) bool {
			if len(infos) != 1 {
				return false
			}
			id, err := database.WorkspaceIDFromPath(infos[0].Path)
			return err == nil && id == workspace.ID
		})

		suspended := types.MemberSuspended
		assert.NoError(t, db.UpdateMemberInfo(ctx, workspace.ID, userID, &database.MemberUpdate{Status: &suspended}))
		waitFor(t, snapshots, func(infos []*database.MemberInfo) bool {
			return len(infos) == 0
		})
	})

	t.Run("watch members by workspace test", func(t *testing.T) {
		workspace := CreateWorkspace(t, db, NewUserID())

		snapshots := make(chan []*database.MemberInfo, 16)
		unsubscribe, err := db.WatchMembersByWorkspace(ctx, workspace.ID, func(infos []*database.MemberInfo) {
			snapshots <- infos
		}, func(err error) {
			t.Errorf("unexpected watch error: %v", err)
		})
		require.NoError(t, err)

		assert.Len(t, nextSnapshot(t, snapshots), 1)

		userID := NewUserID()
		AddMember(t, db, workspace.ID, userID, types.RoleViewer)
		waitFor(t, snapshots, func(infos []*database.MemberInfo) bool {
			return len(infos) == 2
		})

		unsubscribe()
		unsubscribe()
	})
}

func nextSnapshot[T any](t *testing.T, snapshots <-chan T) T {
	t.Helper()

	select {
	case snapshot := <-snapshots:
		return snapshot
	case <-gotime.After(waitTimeout):
		t.Fatal("timed out waiting for snapshot")
	}

	var zero T
	return zero
}

func waitFor[T any](t *testing.T, snapshots <-chan T, match func(T) bool) {
	t.Helper()

	deadline := gotime.After(waitTimeout)
	for {
		select {
		case snapshot := <-snapshots:
			if match(snapshot) {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for matching snapshot")
		}
	}
}
