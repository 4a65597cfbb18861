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

package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/server/backend/database"
)

// mongoTxn is the database.Txn of a session transaction. The context passed
// to its methods carries the session.
type mongoTxn struct {
	client *Client
	wrote  bool
}

func (t *mongoTxn) read() error {
	if t.wrote {
		return database.ErrReadAfterWrite
	}
	return nil
}

// FindWorkspaceInfoByID returns a workspace by the given id.
func (t *mongoTxn) FindWorkspaceInfoByID(ctx context.Context, id types.ID) (*database.WorkspaceInfo, error) {
	if err := t.read(); err != nil {
		return nil, err
	}
	return t.client.FindWorkspaceInfoByID(ctx, id)
}

// FindMemberInfo returns the member stored under the given member id.
func (t *mongoTxn) FindMemberInfo(
	ctx context.Context,
	workspaceID, memberID types.ID,
) (*database.MemberInfo, error) {
	if err := t.read(); err != nil {
		return nil, err
	}
	return t.client.FindMemberInfo(ctx, workspaceID, memberID)
}

// FindInviteInfo returns the invite of the given token.
func (t *mongoTxn) FindInviteInfo(
	ctx context.Context,
	workspaceID types.ID,
	token string,
) (*database.InviteInfo, error) {
	if err := t.read(); err != nil {
		return nil, err
	}
	return t.client.FindInviteInfo(ctx, workspaceID, token)
}

// CreateWorkspaceInfo stores a new workspace and assigns its id.
func (t *mongoTxn) CreateWorkspaceInfo(ctx context.Context, info *database.WorkspaceInfo) error {
	t.wrote = true

	if info.ID == "" {
		info.ID = newID()
	}
	if _, err := t.client.collection(ColWorkspaces).InsertOne(ctx, info); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	return nil
}

// CreateMemberInfo stores a new member.
func (t *mongoTxn) CreateMemberInfo(ctx context.Context, info *database.MemberInfo) error {
	t.wrote = true

	if info.ID == "" {
		info.ID = info.UserID
	}
	if _, err := t.client.collection(ColMembers).InsertOne(ctx, info); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s/%s: %w", info.WorkspaceID, info.ID, database.ErrMemberAlreadyExists)
		}
		return fmt.Errorf("create member: %w", err)
	}
	return nil
}

// UpdateMemberInfo merges the non-nil fields of update into the member.
func (t *mongoTxn) UpdateMemberInfo(
	ctx context.Context,
	workspaceID, memberID types.ID,
	update *database.MemberUpdate,
) error {
	t.wrote = true
	return t.client.UpdateMemberInfo(ctx, workspaceID, memberID, update)
}

// UpdateInviteInfo changes the status of the invite. The transition time is
// taken from the server clock with $currentDate.
func (t *mongoTxn) UpdateInviteInfo(
	ctx context.Context,
	workspaceID types.ID,
	token string,
	update *database.InviteUpdate,
) error {
	t.wrote = true

	set := bson.M{"status": update.Status}
	currentDate := bson.M{}
	switch update.Status {
	case types.InviteAccepted:
		set["accepted_by"] = update.AcceptedBy
		currentDate["accepted_at"] = true
	case types.InviteRevoked:
		currentDate["revoked_at"] = true
	}

	doc := bson.M{"$set": set}
	if len(currentDate) > 0 {
		doc["$currentDate"] = currentDate
	}

	result, err := t.client.collection(ColInvites).UpdateOne(ctx, bson.M{
		"workspace_id": workspaceID,
		"token":        token,
	}, doc)
	if err != nil {
		return fmt.Errorf("update invite of %s: %w", workspaceID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("invite of %s: %w", workspaceID, database.ErrInviteNotFound)
	}
	return nil
}
