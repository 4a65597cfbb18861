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

// Package firestore implements database interfaces using Cloud Firestore.
package firestore

import (
	"context"
	"fmt"
	"sort"
	gotime "time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/server/backend/database"
	"github.com/tasklane/tasklane/server/logging"
)

// Client is a client that connects to Cloud Firestore and reads or saves
// Tasklane data.
type Client struct {
	config *Config
	app    *firebase.App
	client *firestore.Client
}

// NewApp creates the Firebase app of the given project. The app is shared by
// the Firestore client and the ID token verifier.
func NewApp(ctx context.Context, conf *Config) (*firebase.App, error) {
	var opts []option.ClientOption
	if conf.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(conf.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: conf.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("new firebase app: %w", err)
	}

	return app, nil
}

// Dial creates an instance of Client and checks that the database answers.
func Dial(conf *Config) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.ParseConnectionTimeout())
	defer cancel()

	app, err := NewApp(ctx, conf)
	if err != nil {
		return nil, err
	}

	client, err := app.Firestore(context.Background())
	if err != nil {
		return nil, fmt.Errorf("connect to firestore: %w", err)
	}

	if _, err := client.Collection(database.CollWorkspaces).Limit(1).Documents(ctx).GetAll(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping firestore: %w", err)
	}

	logging.DefaultLogger().Infof("Firestore connected, project: %s", conf.ProjectID)

	return &Client{
		config: conf,
		app:    app,
		client: client,
	}, nil
}

// App returns the Firebase app of this client.
func (c *Client) App() *firebase.App {
	return c.app
}

// Close all resources of this client.
func (c *Client) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("close firestore client: %w", err)
	}

	return nil
}

// RunTransaction runs fn in a Firestore transaction. Firestore retries fn on
// contention, so fn must not have side effects outside of txn.
func (c *Client) RunTransaction(
	ctx context.Context,
	fn func(ctx context.Context, txn database.Txn) error,
) error {
	var txn *fsTxn
	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		txn = &fsTxn{client: c, tx: tx}
		return fn(ctx, txn)
	})
	if err == nil {
		return nil
	}

	// writes are validated at commit time
	switch status.Code(err) {
	case codes.AlreadyExists:
		return fmt.Errorf("commit: %w", database.ErrMemberAlreadyExists)
	case codes.NotFound:
		if txn != nil && txn.errNotFound != nil {
			return fmt.Errorf("commit: %w", txn.errNotFound)
		}
	}

	return err
}

func (c *Client) workspaceRef(id types.ID) *firestore.DocumentRef {
	return c.client.Collection(database.CollWorkspaces).Doc(id.String())
}

func (c *Client) memberRef(workspaceID, memberID types.ID) *firestore.DocumentRef {
	return c.workspaceRef(workspaceID).Collection(database.CollMembers).Doc(memberID.String())
}

func (c *Client) inviteRef(workspaceID types.ID, token string) *firestore.DocumentRef {
	return c.workspaceRef(workspaceID).Collection(database.CollInvites).Doc(token)
}

func (c *Client) taskRef(workspaceID types.ID, kind types.TaskKind, id types.ID) *firestore.DocumentRef {
	return c.workspaceRef(workspaceID).Collection(database.TaskCollection(kind)).Doc(id.String())
}

func (c *Client) userRef(id types.ID) *firestore.DocumentRef {
	return c.client.Collection(database.CollUsers).Doc(id.String())
}

// FindWorkspaceInfoByID returns a workspace by the given id.
func (c *Client) FindWorkspaceInfoByID(ctx context.Context, id types.ID) (*database.WorkspaceInfo, error) {
	snap, err := c.workspaceRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%s: %w", id, database.ErrWorkspaceNotFound)
		}
		return nil, fmt.Errorf("find workspace %s: %w", id, err)
	}

	return decodeWorkspaceInfo(snap)
}

// FindWorkspaceInfosByOwner returns the workspaces owned by the given user.
func (c *Client) FindWorkspaceInfosByOwner(
	ctx context.Context,
	ownerID types.ID,
) ([]*database.WorkspaceInfo, error) {
	docs, err := c.workspacesByOwner(ownerID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("find workspaces of %s: %w", ownerID, err)
	}

	return decodeAll(docs, decodeWorkspaceInfo)
}

// WatchWorkspacesByOwner delivers the workspaces owned by the given user on
// every change.
func (c *Client) WatchWorkspacesByOwner(
	ctx context.Context,
	ownerID types.ID,
	onSnapshot func([]*database.WorkspaceInfo),
	onError func(error),
) (database.Unsubscribe, error) {
	return watch(ctx, c.workspacesByOwner(ownerID), decodeWorkspaceInfo, onSnapshot, onError), nil
}

func (c *Client) workspacesByOwner(ownerID types.ID) firestore.Query {
	return c.client.Collection(database.CollWorkspaces).Where("ownerId", "==", ownerID.String())
}

// FindMemberInfo returns the member stored under the given member id.
func (c *Client) FindMemberInfo(
	ctx context.Context,
	workspaceID, memberID types.ID,
) (*database.MemberInfo, error) {
	snap, err := c.memberRef(workspaceID, memberID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%s/%s: %w", workspaceID, memberID, database.ErrMemberNotFound)
		}
		return nil, fmt.Errorf("find member %s/%s: %w", workspaceID, memberID, err)
	}

	return decodeMemberInfo(snap)
}

// ListMemberInfos returns all member records of the workspace.
func (c *Client) ListMemberInfos(
	ctx context.Context,
	workspaceID types.ID,
) ([]*database.MemberInfo, error) {
	docs, err := c.membersByWorkspace(workspaceID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("find members of %s: %w", workspaceID, err)
	}

	return decodeAll(docs, decodeMemberInfo)
}

// FindMemberInfosByUser returns the member records of the given user with the
// given status across all workspaces.
func (c *Client) FindMemberInfosByUser(
	ctx context.Context,
	userID types.ID,
	status types.MemberStatus,
) ([]*database.MemberInfo, error) {
	docs, err := c.membershipsByUser(userID, status).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("find memberships of %s: %w", userID, err)
	}

	return decodeAll(docs, decodeMemberInfo)
}

// UpdateMemberInfo merges the non-nil fields of update into the member.
func (c *Client) UpdateMemberInfo(
	ctx context.Context,
	workspaceID, memberID types.ID,
	update *database.MemberUpdate,
) error {
	updates := memberUpdates(update)
	if len(updates) == 0 {
		return nil
	}

	if _, err := c.memberRef(workspaceID, memberID).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%s/%s: %w", workspaceID, memberID, database.ErrMemberNotFound)
		}
		return fmt.Errorf("update member %s/%s: %w", workspaceID, memberID, err)
	}

	return nil
}

// DeleteMemberInfo deletes the member.
func (c *Client) DeleteMemberInfo(ctx context.Context, workspaceID, memberID types.ID) error {
	if _, err := c.memberRef(workspaceID, memberID).Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%s/%s: %w", workspaceID, memberID, database.ErrMemberNotFound)
		}
		return fmt.Errorf("delete member %s/%s: %w", workspaceID, memberID, err)
	}

	return nil
}

// WatchMembershipsByUser delivers the member records of the given user with
// the given status across all workspaces.
func (c *Client) WatchMembershipsByUser(
	ctx context.Context,
	userID types.ID,
	status types.MemberStatus,
	onSnapshot func([]*database.MemberInfo),
	onError func(error),
) (database.Unsubscribe, error) {
	return watch(ctx, c.membershipsByUser(userID, status), decodeMemberInfo, onSnapshot, onError), nil
}

// WatchMembersByWorkspace delivers all member records of the workspace.
func (c *Client) WatchMembersByWorkspace(
	ctx context.Context,
	workspaceID types.ID,
	onSnapshot func([]*database.MemberInfo),
	onError func(error),
) (database.Unsubscribe, error) {
	return watch(ctx, c.membersByWorkspace(workspaceID), decodeMemberInfo, onSnapshot, onError), nil
}

func (c *Client) membersByWorkspace(workspaceID types.ID) firestore.Query {
	return c.workspaceRef(workspaceID).Collection(database.CollMembers).Query
}

// membershipsByUser scans the member sub-collections of every workspace. It
// needs a collection group index on (userId, status).
func (c *Client) membershipsByUser(userID types.ID, status types.MemberStatus) firestore.Query {
	return c.client.CollectionGroup(database.CollMembers).
		Where("userId", "==", userID.String()).
		Where("status", "==", string(status))
}

// CreateInviteInfo stores a new invite.
func (c *Client) CreateInviteInfo(ctx context.Context, info *database.InviteInfo) error {
	if _, err := c.inviteRef(info.WorkspaceID, info.ID).Create(ctx, info); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("create invite: %w", database.ErrInviteAlreadyExists)
		}
		return fmt.Errorf("create invite: %w", err)
	}

	return nil
}

// FindInviteInfo returns the invite of the given token.
func (c *Client) FindInviteInfo(
	ctx context.Context,
	workspaceID types.ID,
	token string,
) (*database.InviteInfo, error) {
	snap, err := c.inviteRef(workspaceID, token).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("invite of %s: %w", workspaceID, database.ErrInviteNotFound)
		}
		return nil, fmt.Errorf("find invite of %s: %w", workspaceID, err)
	}

	return decodeInviteInfo(snap)
}

// ListInviteInfos returns the invites of the workspace with the given status.
func (c *Client) ListInviteInfos(
	ctx context.Context,
	workspaceID types.ID,
	status types.InviteStatus,
) ([]*database.InviteInfo, error) {
	docs, err := c.workspaceRef(workspaceID).Collection(database.CollInvites).
		Where("status", "==", string(status)).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list invites of %s: %w", workspaceID, err)
	}

	infos, err := decodeAll(docs, decodeInviteInfo)
	if err != nil {
		return nil, err
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})

	return infos, nil
}

// PurgeInviteInfos deletes consumed or expired invites created before
// createdBefore.
func (c *Client) PurgeInviteInfos(
	ctx context.Context,
	createdBefore, expiredBefore gotime.Time,
) (int, error) {
	docs, err := c.client.CollectionGroup(database.CollInvites).
		Where("createdAt", "<", createdBefore).
		Documents(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("scan invites: %w", err)
	}

	writer := c.client.BulkWriter(ctx)
	var jobs []*firestore.BulkWriterJob
	for _, doc := range docs {
		info, err := decodeInviteInfo(doc)
		if err != nil {
			return 0, err
		}
		if info.Status == types.InvitePending && !info.ExpiresAt.Before(expiredBefore) {
			continue
		}

		job, err := writer.Delete(doc.Ref)
		if err != nil {
			writer.End()
			return 0, fmt.Errorf("delete invite: %w", err)
		}
		jobs = append(jobs, job)
	}
	writer.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return 0, fmt.Errorf("delete invite: %w", err)
		}
	}

	return len(jobs), nil
}

// FindUserInfoByID returns the profile of the given user.
func (c *Client) FindUserInfoByID(ctx context.Context, id types.ID) (*database.UserInfo, error) {
	snap, err := c.userRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%s: %w", id, database.ErrUserNotFound)
		}
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}

	return decodeUserInfo(snap)
}

// UpsertUserInfo creates the profile or refreshes its identity fields.
func (c *Client) UpsertUserInfo(ctx context.Context, info *database.UserInfo) error {
	ref := c.userRef(info.ID)

	err := c.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			created := info.DeepCopy()
			created.IsActive = true
			if created.CreatedAt.IsZero() {
				created.CreatedAt = types.Now()
			}
			return tx.Create(ref, created)
		}
		if err != nil {
			return err
		}

		var updates []firestore.Update
		if info.Email != "" {
			updates = append(updates, firestore.Update{Path: "email", Value: info.Email})
		}
		if info.DisplayName != "" {
			updates = append(updates, firestore.Update{Path: "displayName", Value: info.DisplayName})
		}
		if info.PhotoURL != "" {
			updates = append(updates, firestore.Update{Path: "photoURL", Value: info.PhotoURL})
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Update(ref, updates)
	})
	if err != nil {
		return fmt.Errorf("upsert user %s: %w", info.ID, err)
	}

	return nil
}

// CreateTaskInfo stores a new task or project and assigns its id.
func (c *Client) CreateTaskInfo(ctx context.Context, info *database.TaskInfo) error {
	coll := c.workspaceRef(info.WorkspaceID).Collection(database.TaskCollection(info.Kind))

	ref := coll.NewDoc()
	if info.ID != "" {
		ref = coll.Doc(info.ID.String())
	}

	if _, err := ref.Create(ctx, info); err != nil {
		return fmt.Errorf("create %s: %w", info.Kind, err)
	}
	info.ID = types.ID(ref.ID)

	return nil
}

// FindTaskInfo returns a task or project.
func (c *Client) FindTaskInfo(
	ctx context.Context,
	workspaceID types.ID,
	kind types.TaskKind,
	id types.ID,
) (*database.TaskInfo, error) {
	snap, err := c.taskRef(workspaceID, kind, id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%s %s: %w", kind, id, database.ErrTaskNotFound)
		}
		return nil, fmt.Errorf("find %s %s: %w", kind, id, err)
	}

	return decodeTaskInfo(snap)
}

// UpdateTaskFields merges fields into the task leaf by leaf.
// types.DeleteField becomes firestore.Delete at its path.
func (c *Client) UpdateTaskFields(
	ctx context.Context,
	workspaceID types.ID,
	kind types.TaskKind,
	id types.ID,
	fields types.Fields,
) (*database.TaskInfo, error) {
	updates := []firestore.Update{{Path: "updatedAt", Value: types.Now()}}
	for _, field := range database.FlattenFields(fields) {
		value := field.Value
		if field.IsDelete() {
			value = firestore.Delete
		}
		path := append(firestore.FieldPath{"fields"}, field.Path...)
		updates = append(updates, firestore.Update{FieldPath: path, Value: value})
	}

	ref := c.taskRef(workspaceID, kind, id)
	if _, err := ref.Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%s %s: %w", kind, id, database.ErrTaskNotFound)
		}
		return nil, fmt.Errorf("update %s %s: %w", kind, id, err)
	}

	return c.FindTaskInfo(ctx, workspaceID, kind, id)
}

func memberUpdates(update *database.MemberUpdate) []firestore.Update {
	if update == nil {
		return nil
	}

	var updates []firestore.Update
	if update.Role != nil {
		updates = append(updates, firestore.Update{Path: "role", Value: string(*update.Role)})
	}
	if update.Status != nil {
		updates = append(updates, firestore.Update{Path: "status", Value: string(*update.Status)})
	}
	if update.JoinedAt != nil {
		updates = append(updates, firestore.Update{Path: "joinedAt", Value: *update.JoinedAt})
	}
	if update.NotificationChannelID != nil {
		updates = append(updates, firestore.Update{
			Path:  "notificationChannelId",
			Value: *update.NotificationChannelID,
		})
	}
	return updates
}
