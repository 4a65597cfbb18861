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
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/server/backend/database"
)

// watch listens to the query's snapshots and delivers the decoded documents
// of each one.
func watch[T any](
	ctx context.Context,
	query firestore.Query,
	decode func(*firestore.DocumentSnapshot) (T, error),
	onSnapshot func([]T),
	onError func(error),
) database.Unsubscribe {
	return database.Go(ctx, func(ctx context.Context) {
		iter := query.Snapshots(ctx)
		defer iter.Stop()

		for {
			snap, err := iter.Next()
			if err != nil {
				if ctx.Err() == nil && status.Code(err) != codes.Canceled {
					onError(fmt.Errorf("listen: %w", err))
				}
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				if ctx.Err() == nil {
					onError(fmt.Errorf("read snapshot: %w", err))
				}
				return
			}

			items, err := decodeAll(docs, decode)
			if err != nil {
				onError(err)
				return
			}
			onSnapshot(items)
		}
	})
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func decodeAll[T any](
	docs []*firestore.DocumentSnapshot,
	decode func(*firestore.DocumentSnapshot) (T, error),
) ([]T, error) {
	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		item, err := decode(doc)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func decodeWorkspaceInfo(snap *firestore.DocumentSnapshot) (*database.WorkspaceInfo, error) {
	info := &database.WorkspaceInfo{}
	if err := snap.DataTo(info); err != nil {
		return nil, fmt.Errorf("decode workspace %s: %w", snap.Ref.ID, err)
	}
	info.ID = types.ID(snap.Ref.ID)
	return info, nil
}

// decodeMemberInfo fills the ids from the document path, so members without
// a userId field still decode.
func decodeMemberInfo(snap *firestore.DocumentSnapshot) (*database.MemberInfo, error) {
	info := &database.MemberInfo{}
	if err := snap.DataTo(info); err != nil {
		return nil, fmt.Errorf("decode member %s: %w", snap.Ref.ID, err)
	}

	info.ID = types.ID(snap.Ref.ID)
	info.WorkspaceID = types.ID(snap.Ref.Parent.Parent.ID)
	info.Path = database.MemberPath(info.WorkspaceID, info.ID)
	return info, nil
}

func decodeInviteInfo(snap *firestore.DocumentSnapshot) (*database.InviteInfo, error) {
	info := &database.InviteInfo{}
	if err := snap.DataTo(info); err != nil {
		return nil, fmt.Errorf("decode invite: %w", err)
	}

	info.ID = snap.Ref.ID
	if info.WorkspaceID == "" {
		info.WorkspaceID = types.ID(snap.Ref.Parent.Parent.ID)
	}
	return info, nil
}

func decodeUserInfo(snap *firestore.DocumentSnapshot) (*database.UserInfo, error) {
	info := &database.UserInfo{}
	if err := snap.DataTo(info); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", snap.Ref.ID, err)
	}
	info.ID = types.ID(snap.Ref.ID)
	return info, nil
}

func decodeTaskInfo(snap *firestore.DocumentSnapshot) (*database.TaskInfo, error) {
	info := &database.TaskInfo{}
	if err := snap.DataTo(info); err != nil {
		return nil, fmt.Errorf("decode task %s: %w", snap.Ref.ID, err)
	}
	info.ID = types.ID(snap.Ref.ID)
	info.WorkspaceID = types.ID(snap.Ref.Parent.Parent.ID)
	return info, nil
}
