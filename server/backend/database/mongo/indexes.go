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
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	// ColWorkspaces represents the workspaces collection in the database.
	ColWorkspaces = "workspaces"
	// ColMembers represents the members collection in the database.
	ColMembers = "members"
	// ColInvites represents the invites collection in the database.
	ColInvites = "invites"
	// ColUsers represents the users collection in the database.
	ColUsers = "users"
	// ColTasks represents the tasks collection in the database. Projects are
	// stored alongside tasks and told apart by their kind.
	ColTasks = "tasks"
)

type collectionInfo struct {
	name    string
	indexes []mongo.IndexModel
}

// Below are names and indexes information of Collections that stores Tasklane data.
var collectionInfos = []collectionInfo{
	{
		name: ColWorkspaces,
		indexes: []mongo.IndexModel{{
			Keys: bson.D{{Key: "owner_id", Value: int32(1)}},
		}},
	},
	{
		name: ColMembers,
		indexes: []mongo.IndexModel{{
			Keys: bson.D{
				{Key: "workspace_id", Value: int32(1)},
				{Key: "member_id", Value: int32(1)},
			},
			Options: options.Index().SetUnique(true),
		}, {
			Keys: bson.D{
				{Key: "user_id", Value: int32(1)},
				{Key: "status", Value: int32(1)},
			},
		}},
	},
	{
		name: ColInvites,
		indexes: []mongo.IndexModel{{
			Keys: bson.D{
				{Key: "workspace_id", Value: int32(1)},
				{Key: "token", Value: int32(1)},
			},
			Options: options.Index().SetUnique(true),
		}, {
			Keys: bson.D{
				{Key: "workspace_id", Value: int32(1)},
				{Key: "status", Value: int32(1)},
			},
		}, {
			Keys: bson.D{{Key: "created_at", Value: int32(1)}},
		}},
	},
	{
		name: ColTasks,
		indexes: []mongo.IndexModel{{
			Keys: bson.D{
				{Key: "workspace_id", Value: int32(1)},
				{Key: "kind", Value: int32(1)},
				{Key: "task_id", Value: int32(1)},
			},
			Options: options.Index().SetUnique(true),
		}},
	},
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, info := range collectionInfos {
		_, err := db.Collection(info.name).Indexes().CreateMany(ctx, info.indexes)
		if err != nil {
			return fmt.Errorf("create indexes of %s: %w", info.name, err)
		}
	}
	return nil
}
