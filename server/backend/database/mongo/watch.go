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

	"github.com/tasklane/tasklane/server/backend/database"
)

// watch opens a change stream on the collection and re-runs query whenever a
// document matching filter changes. Deletes carry no document, so every
// delete in the collection triggers a re-run.
func watch[T any](
	ctx context.Context,
	coll *mongo.Collection,
	filter bson.D,
	query func(ctx context.Context) ([]T, error),
	onSnapshot func([]T),
	onError func(error),
) (database.Unsubscribe, error) {
	match := bson.A{bson.D{{Key: "operationType", Value: "delete"}}}
	for _, e := range filter {
		match = append(match, bson.D{{Key: "fullDocument." + e.Key, Value: e.Value}})
	}
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "$or", Value: match}}}},
	}

	stream, err := coll.Watch(
		ctx,
		pipeline,
		options.ChangeStream().SetFullDocument(options.UpdateLookup),
	)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", coll.Name(), err)
	}

	return database.Go(ctx, func(ctx context.Context) {
		defer func() {
			_ = stream.Close(context.Background())
		}()

		for {
			items, err := query(ctx)
			if err != nil {
				if ctx.Err() == nil {
					onError(err)
				}
				return
			}
			onSnapshot(items)

			if !stream.Next(ctx) {
				if err := stream.Err(); err != nil && ctx.Err() == nil {
					onError(fmt.Errorf("watch %s: %w", coll.Name(), err))
				}
				return
			}
		}
	}), nil
}
