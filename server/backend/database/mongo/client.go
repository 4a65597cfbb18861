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

// Package mongo implements database interfaces using MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	gotime "time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/server/backend/database"
	"github.com/tasklane/tasklane/server/logging"
)

// Client is a client that connects to Mongo DB and reads or saves Tasklane data.
type Client struct {
	config *Config
	client *mongo.Client
	db     *mongo.Database
}

// Dial creates an instance of Client and dials the given MongoDB.
func Dial(conf *Config) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.ParseConnectionTimeout())
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(conf.ConnectionURI).
		SetRegistry(NewRegistry())

	if conf.MonitoringEnabled {
		threshold, err := gotime.ParseDuration(conf.MonitoringSlowQueryThreshold)
		if err != nil {
			return nil, fmt.Errorf("parse slow query threshold: %w", err)
		}
		clientOptions.SetMonitor(NewQueryMonitor(threshold).CreateCommandMonitor())
	}

	client, err := mongo.Connect(clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	ctxPing, cancelPing := context.WithTimeout(ctx, conf.ParsePingTimeout())
	defer cancelPing()

	if err := client.Ping(ctxPing, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(conf.Database)
	if err := ensureIndexes(ctx, db); err != nil {
		return nil, err
	}

	logging.DefaultLogger().Infof("MongoDB connected, URI: %s, DB: %s", conf.ConnectionURI, conf.Database)

	return &Client{
		config: conf,
		client: client,
		db:     db,
	}, nil
}

// Close all resources of this client.
func (c *Client) Close() error {
	if err := c.client.Disconnect(context.Background()); err != nil {
		return fmt.Errorf("close mongo client: %w", err)
	}

	return nil
}

func (c *Client) collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}

// RunTransaction runs fn in a multi-document transaction. The driver retries
// the whole callback on transient transaction errors.
func (c *Client) RunTransaction(
	ctx context.Context,
	fn func(ctx context.Context, txn database.Txn) error,
) error {
	session, err := c.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	if _, err := session.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx, &mongoTxn{client: c})
	}); err != nil {
		return err
	}

	return nil
}

// FindWorkspaceInfoByID returns a workspace by the given id.
func (c *Client) FindWorkspaceInfoByID(ctx context.Context, id types.ID) (*database.WorkspaceInfo, error) {
	info := &database.WorkspaceInfo{}
	result := c.collection(ColWorkspaces).FindOne(ctx, bson.M{"_id": id})
	if err := result.Decode(info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", id, database.ErrWorkspaceNotFound)
		}
		return nil, fmt.Errorf("find workspace %s: %w", id, err)
	}

	return info, nil
}

// FindWorkspaceInfosByOwner returns the workspaces owned by the given user.
func (c *Client) FindWorkspaceInfosByOwner(
	ctx context.Context,
	ownerID types.ID,
) ([]*database.WorkspaceInfo, error) {
	cursor, err := c.collection(ColWorkspaces).Find(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("find workspaces of %s: %w", ownerID, err)
	}

	var infos []*database.WorkspaceInfo
	if err := cursor.All(ctx, &infos); err != nil {
		return nil, fmt.Errorf("fetch workspaces of %s: %w", ownerID, err)
	}

	return infos, nil
}

// WatchWorkspacesByOwner delivers the workspaces owned by the given user on
// every change.
func (c *Client) WatchWorkspacesByOwner(
	ctx context.Context,
	ownerID types.ID,
	onSnapshot func([]*database.WorkspaceInfo),
	onError func(error),
) (database.Unsubscribe, error) {
	return watch(ctx, c.collection(ColWorkspaces), bson.D{{Key: "owner_id", Value: ownerID}},
		func(ctx context.Context) ([]*database.WorkspaceInfo, error) {
			return c.FindWorkspaceInfosByOwner(ctx, ownerID)
		}, onSnapshot, onError)
}

// FindMemberInfo returns the member stored under the given member id.
func (c *Client) FindMemberInfo(
	ctx context.Context,
	workspaceID, memberID types.ID,
) (*database.MemberInfo, error) {
	info := &database.MemberInfo{}
	result := c.collection(ColMembers).FindOne(ctx, bson.M{
		"workspace_id": workspaceID,
		"member_id":    memberID,
	})
	if err := result.Decode(info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s/%s: %w", workspaceID, memberID, database.ErrMemberNotFound)
		}
		return nil, fmt.Errorf("find member %s/%s: %w", workspaceID, memberID, err)
	}

	info.Path = database.MemberPath(info.WorkspaceID, info.ID)
	return info, nil
}

// ListMemberInfos returns all member records of the workspace.
func (c *Client) ListMemberInfos(
	ctx context.Context,
	workspaceID types.ID,
) ([]*database.MemberInfo, error) {
	return c.findMemberInfos(ctx, bson.M{"workspace_id": workspaceID})
}

// FindMemberInfosByUser returns the member records of the given user with the
// given status across all workspaces.
func (c *Client) FindMemberInfosByUser(
	ctx context.Context,
	userID types.ID,
	status types.MemberStatus,
) ([]*database.MemberInfo, error) {
	return c.findMemberInfos(ctx, bson.M{"user_id": userID, "status": status})
}

func (c *Client) findMemberInfos(ctx context.Context, filter bson.M) ([]*database.MemberInfo, error) {
	cursor, err := c.collection(ColMembers).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find members: %w", err)
	}

	var infos []*database.MemberInfo
	if err := cursor.All(ctx, &infos); err != nil {
		return nil, fmt.Errorf("fetch members: %w", err)
	}

	for _, info := range infos {
		info.Path = database.MemberPath(info.WorkspaceID, info.ID)
	}

	return infos, nil
}

// UpdateMemberInfo merges the non-nil fields of update into the member.
func (c *Client) UpdateMemberInfo(
	ctx context.Context,
	workspaceID, memberID types.ID,
	update *database.MemberUpdate,
) error {
	set := memberUpdateDoc(update)
	if len(set) == 0 {
		return nil
	}

	result, err := c.collection(ColMembers).UpdateOne(ctx, bson.M{
		"workspace_id": workspaceID,
		"member_id":    memberID,
	}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update member %s/%s: %w", workspaceID, memberID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%s/%s: %w", workspaceID, memberID, database.ErrMemberNotFound)
	}

	return nil
}

// DeleteMemberInfo deletes the member.
func (c *Client) DeleteMemberInfo(ctx context.Context, workspaceID, memberID types.ID) error {
	result, err := c.collection(ColMembers).DeleteOne(ctx, bson.M{
		"workspace_id": workspaceID,
		"member_id":    memberID,
	})
	if err != nil {
		return fmt.Errorf("delete member %s/%s: %w", workspaceID, memberID, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%s/%s: %w", workspaceID, memberID, database.ErrMemberNotFound)
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
	return watch(ctx, c.collection(ColMembers), bson.D{{Key: "user_id", Value: userID}},
		func(ctx context.Context) ([]*database.MemberInfo, error) {
			return c.FindMemberInfosByUser(ctx, userID, status)
		}, onSnapshot, onError)
}

// WatchMembersByWorkspace delivers all member records of the workspace.
func (c *Client) WatchMembersByWorkspace(
	ctx context.Context,
	workspaceID types.ID,
	onSnapshot func([]*database.MemberInfo),
	onError func(error),
) (database.Unsubscribe, error) {
	return watch(ctx, c.collection(ColMembers), bson.D{{Key: "workspace_id", Value: workspaceID}},
		func(ctx context.Context) ([]*database.MemberInfo, error) {
			return c.ListMemberInfos(ctx, workspaceID)
		}, onSnapshot, onError)
}

// CreateInviteInfo stores a new invite.
func (c *Client) CreateInviteInfo(ctx context.Context, info *database.InviteInfo) error {
	if _, err := c.collection(ColInvites).InsertOne(ctx, info); err != nil {
		if mongo.IsDuplicateKeyError(err) {
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
	info := &database.InviteInfo{}
	result := c.collection(ColInvites).FindOne(ctx, bson.M{
		"workspace_id": workspaceID,
		"token":        token,
	})
	if err := result.Decode(info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("invite of %s: %w", workspaceID, database.ErrInviteNotFound)
		}
		return nil, fmt.Errorf("find invite of %s: %w", workspaceID, err)
	}

	return info, nil
}

// ListInviteInfos returns the invites of the workspace with the given status.
func (c *Client) ListInviteInfos(
	ctx context.Context,
	workspaceID types.ID,
	status types.InviteStatus,
) ([]*database.InviteInfo, error) {
	cursor, err := c.collection(ColInvites).Find(ctx, bson.M{
		"workspace_id": workspaceID,
		"status":       status,
	}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list invites of %s: %w", workspaceID, err)
	}

	var infos []*database.InviteInfo
	if err := cursor.All(ctx, &infos); err != nil {
		return nil, fmt.Errorf("fetch invites of %s: %w", workspaceID, err)
	}

	return infos, nil
}

// PurgeInviteInfos deletes consumed or expired invites created before
// createdBefore.
func (c *Client) PurgeInviteInfos(
	ctx context.Context,
	createdBefore, expiredBefore gotime.Time,
) (int, error) {
	result, err := c.collection(ColInvites).DeleteMany(ctx, bson.M{
		"created_at": bson.M{"$lt": createdBefore},
		"$or": bson.A{
			bson.M{"status": bson.M{"$ne": types.InvitePending}},
			bson.M{"expires_at": bson.M{"$lt": expiredBefore}},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("purge invites: %w", err)
	}

	return int(result.DeletedCount), nil
}

// FindUserInfoByID returns the profile of the given user.
func (c *Client) FindUserInfoByID(ctx context.Context, id types.ID) (*database.UserInfo, error) {
	info := &database.UserInfo{}
	result := c.collection(ColUsers).FindOne(ctx, bson.M{"_id": id})
	if err := result.Decode(info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", id, database.ErrUserNotFound)
		}
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}

	return info, nil
}

// UpsertUserInfo creates the profile or refreshes its identity fields.
func (c *Client) UpsertUserInfo(ctx context.Context, info *database.UserInfo) error {
	set := bson.M{}
	if info.Email != "" {
		set["email"] = info.Email
	}
	if info.DisplayName != "" {
		set["display_name"] = info.DisplayName
	}
	if info.PhotoURL != "" {
		set["photo_url"] = info.PhotoURL
	}

	createdAt := info.CreatedAt
	if createdAt.IsZero() {
		createdAt = types.Now()
	}

	update := bson.M{"$setOnInsert": bson.M{
		"created_at": createdAt,
		"is_active":  true,
	}}
	if len(set) > 0 {
		update["$set"] = set
	}

	if _, err := c.collection(ColUsers).UpdateOne(
		ctx,
		bson.M{"_id": info.ID},
		update,
		options.UpdateOne().SetUpsert(true),
	); err != nil {
		return fmt.Errorf("upsert user %s: %w", info.ID, err)
	}

	return nil
}

// CreateTaskInfo stores a new task or project and assigns its id.
func (c *Client) CreateTaskInfo(ctx context.Context, info *database.TaskInfo) error {
	if info.ID == "" {
		info.ID = newID()
	}

	if _, err := c.collection(ColTasks).InsertOne(ctx, info); err != nil {
		return fmt.Errorf("create %s: %w", info.Kind, err)
	}

	return nil
}

// FindTaskInfo returns a task or project.
func (c *Client) FindTaskInfo(
	ctx context.Context,
	workspaceID types.ID,
	kind types.TaskKind,
	id types.ID,
) (*database.TaskInfo, error) {
	info := &database.TaskInfo{}
	result := c.collection(ColTasks).FindOne(ctx, taskFilter(workspaceID, kind, id))
	if err := result.Decode(info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s %s: %w", kind, id, database.ErrTaskNotFound)
		}
		return nil, fmt.Errorf("find %s %s: %w", kind, id, err)
	}

	return info, nil
}

// UpdateTaskFields merges fields into the task leaf by leaf.
// types.DeleteField becomes an $unset of the field at its path.
func (c *Client) UpdateTaskFields(
	ctx context.Context,
	workspaceID types.ID,
	kind types.TaskKind,
	id types.ID,
	fields types.Fields,
) (*database.TaskInfo, error) {
	set := bson.M{"updated_at": types.Now()}
	unset := bson.M{}
	for _, field := range database.FlattenFields(fields) {
		path := "fields." + strings.Join(field.Path, ".")
		if field.IsDelete() {
			unset[path] = ""
			continue
		}
		set[path] = field.Value
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	info := &database.TaskInfo{}
	result := c.collection(ColTasks).FindOneAndUpdate(
		ctx,
		taskFilter(workspaceID, kind, id),
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if err := result.Decode(info); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s %s: %w", kind, id, database.ErrTaskNotFound)
		}
		return nil, fmt.Errorf("update %s %s: %w", kind, id, err)
	}

	return info, nil
}

func taskFilter(workspaceID types.ID, kind types.TaskKind, id types.ID) bson.M {
	return bson.M{
		"workspace_id": workspaceID,
		"kind":         kind,
		"task_id":      id,
	}
}

func memberUpdateDoc(update *database.MemberUpdate) bson.M {
	set := bson.M{}
	if update == nil {
		return set
	}
	if update.Role != nil {
		set["role"] = *update.Role
	}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	if update.JoinedAt != nil {
		set["joined_at"] = *update.JoinedAt
	}
	if update.NotificationChannelID != nil {
		set["notification_channel_id"] = *update.NotificationChannelID
	}
	return set
}

// newID returns a new id in the ObjectID hex format.
func newID() types.ID {
	return types.ID(bson.NewObjectID().Hex())
}
