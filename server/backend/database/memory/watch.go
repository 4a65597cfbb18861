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

	"github.com/hashicorp/go-memdb"

	"github.com/tasklane/tasklane/server/backend/database"
)

// watch runs query in a read transaction and delivers its result on every
// change of the radix subtree the query read from.
func watch[T any](
	ctx context.Context,
	db *memdb.MemDB,
	query func(txn *memdb.Txn) ([]T, <-chan struct{}, error),
	onSnapshot func([]T),
	onError func(error),
) (database.Unsubscribe, error) {
	run := func() ([]T, <-chan struct{}, error) {
		txn := db.Txn(false)
		defer txn.Abort()
		return query(txn)
	}

	items, watchCh, err := run()
	if err != nil {
		return nil, err
	}

	return database.Go(ctx, func(ctx context.Context) {
		for {
			onSnapshot(items)

			ws := memdb.NewWatchSet()
			ws.Add(watchCh)
			if err := ws.WatchCtx(ctx); err != nil {
				return
			}

			if items, watchCh, err = run(); err != nil {
				onError(err)
				return
			}
		}
	}), nil
}
