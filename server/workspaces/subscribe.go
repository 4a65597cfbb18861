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

package workspaces

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/server/backend"
	"github.com/tasklane/tasklane/server/backend/database"
	"github.com/tasklane/tasklane/server/logging"
)

// Unsubscribe stops a workspace subscription. It is idempotent.
type Unsubscribe func()

// Subscribe delivers the workspaces the identity owns or is an active member
// of, now and after every change of either. onChange receives the full list
// every time and may be called from different goroutines, one call at a time.
func Subscribe(
	ctx context.Context,
	be *backend.Backend,
	identity *types.Identity,
	onChange func([]*types.Workspace),
) (Unsubscribe, error) {
	if identity == nil || strings.TrimSpace(identity.Email) == "" {
		onChange([]*types.Workspace{})
		return func() {}, nil
	}

	agg := &aggregator{
		be:         be,
		userID:     identity.ID,
		workspaces: make(map[types.ID]*types.Workspace),
		onChange:   onChange,
	}

	unsubOwned, err := be.DB.WatchWorkspacesByOwner(
		ctx,
		identity.ID,
		func(infos []*database.WorkspaceInfo) { agg.onOwned(ctx, infos) },
		agg.onError(ctx, "owned workspaces"),
	)
	if err != nil {
		return nil, fmt.Errorf("watch owned workspaces of %s: %w", identity.ID, err)
	}

	unsubMemberships, err := be.DB.WatchMembershipsByUser(
		ctx,
		identity.ID,
		types.MemberActive,
		func(infos []*database.MemberInfo) { agg.onMemberships(ctx, infos) },
		agg.onError(ctx, "memberships"),
	)
	if err != nil {
		unsubOwned()
		return nil, fmt.Errorf("watch memberships of %s: %w", identity.ID, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubOwned()
			unsubMemberships()
		})
	}, nil
}

// aggregator merges the owned workspaces and the workspaces of the user's
// memberships into one map keyed by workspace id. Entries are only inserted
// or updated. A nil value marks a workspace known by id whose document is not
// loaded yet.
type aggregator struct {
	be     *backend.Backend
	userID types.ID

	mu         sync.Mutex
	workspaces map[types.ID]*types.Workspace
	onChange   func([]*types.Workspace)
}

func (a *aggregator) onOwned(ctx context.Context, infos []*database.WorkspaceInfo) {
	a.mu.Lock()
	for _, info := range infos {
		a.workspaces[info.ID] = info.ToWorkspace()
	}
	a.mu.Unlock()

	a.resolve(ctx)
}

func (a *aggregator) onMemberships(ctx context.Context, infos []*database.MemberInfo) {
	a.mu.Lock()
	for _, info := range infos {
		id, err := database.WorkspaceIDFromPath(info.Path)
		if err != nil {
			logging.From(ctx).Warnf("membership %q of %s: %v", info.Path, a.userID, err)
			continue
		}
		if _, ok := a.workspaces[id]; !ok {
			a.workspaces[id] = nil
		}
	}
	a.mu.Unlock()

	a.resolve(ctx)
}

// resolve fetches the workspaces known only by id, merges them and delivers
// the current list.
func (a *aggregator) resolve(ctx context.Context) {
	a.mu.Lock()
	var missing []types.ID
	for id, workspace := range a.workspaces {
		if workspace == nil {
			missing = append(missing, id)
		}
	}
	a.mu.Unlock()

	fetched := make(map[types.ID]*types.Workspace, len(missing))
	for _, id := range missing {
		info, err := a.be.DB.FindWorkspaceInfoByID(ctx, id)
		if err != nil {
			if !errors.Is(err, database.ErrWorkspaceNotFound) && ctx.Err() != nil {
				return
			}
			logging.From(ctx).Warnf("fetch workspace %s of %s: %v", id, a.userID, err)
			continue
		}
		fetched[id] = info.ToWorkspace()
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for id, workspace := range fetched {
		if a.workspaces[id] == nil {
			a.workspaces[id] = workspace
		}
	}
	a.onChange(sortedValues(a.workspaces))
}

func (a *aggregator) onError(ctx context.Context, query string) func(error) {
	return func(err error) {
		logging.From(ctx).Errorf("subscription to %s of %s: %v", query, a.userID, err)
	}
}
