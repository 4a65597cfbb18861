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

package members

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/server/backend"
	"github.com/tasklane/tasklane/server/backend/database"
	"github.com/tasklane/tasklane/server/logging"
)

// Project converts the member records of the workspace into display-ready
// users with their profiles resolved. Malformed records are skipped and the
// current user is always present exactly once.
func Project(
	ctx context.Context,
	be *backend.Backend,
	workspace *types.Workspace,
	infos []*database.MemberInfo,
	current *types.Identity,
) []*types.User {
	users := project(ctx, workspace, infos, current)
	enrich(ctx, be, users)
	return users
}

// Watch delivers the member directory of the workspace now and after every
// change of its members. Each snapshot is delivered twice: at once with
// emails as display names, then again with profiles resolved unless a newer
// snapshot arrived meanwhile.
func Watch(
	ctx context.Context,
	be *backend.Backend,
	workspaceID types.ID,
	current *types.Identity,
	onChange func([]*types.User),
) (database.Unsubscribe, error) {
	info, err := be.DB.FindWorkspaceInfoByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	enrichCtx, cancel := context.WithCancel(ctx)
	w := &watcher{
		be:        be,
		ctx:       enrichCtx,
		workspace: info.ToWorkspace(),
		current:   current,
		onChange:  onChange,
	}

	unsubscribe, err := be.DB.WatchMembersByWorkspace(ctx, workspaceID, w.onSnapshot, func(err error) {
		logging.From(ctx).Errorf("subscription to members of %s: %v", workspaceID, err)
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("watch members of %s: %w", workspaceID, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			cancel()
			w.wg.Wait()
		})
	}, nil
}

type watcher struct {
	be        *backend.Backend
	ctx       context.Context
	workspace *types.Workspace
	current   *types.Identity
	wg        sync.WaitGroup

	mu         sync.Mutex
	generation int64
	onChange   func([]*types.User)
}

func (w *watcher) onSnapshot(infos []*database.MemberInfo) {
	users := project(w.ctx, w.workspace, infos, w.current)

	w.mu.Lock()
	w.generation++
	generation := w.generation
	w.onChange(copyUsers(users))
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		enrich(w.ctx, w.be, users)
		if w.ctx.Err() != nil {
			return
		}

		w.mu.Lock()
		defer w.mu.Unlock()
		if generation == w.generation {
			w.onChange(users)
		}
	}()
}

// project builds the directory without profiles. Display names fall back to
// emails.
func project(
	ctx context.Context,
	workspace *types.Workspace,
	infos []*database.MemberInfo,
	current *types.Identity,
) []*types.User {
	users := make([]*types.User, 0, len(infos)+1)
	seen := make(map[types.ID]bool, len(infos))
	for _, info := range infos {
		if !info.IsValid() {
			logging.From(ctx).Warnf(
				"skip invalid member %s of %s: email: %q, userId: %q",
				info.ID, info.WorkspaceID, info.Email, info.UserID,
			)
			continue
		}
		if seen[info.UserID] {
			continue
		}
		seen[info.UserID] = true

		users = append(users, &types.User{
			ID:          info.UserID,
			Email:       info.Email,
			DisplayName: info.Email,
			Role:        string(info.Role),
			IsActive:    info.Status == types.MemberActive,
		})
	}

	if current == nil || current.ID.IsBlank() || seen[current.ID] {
		return users
	}

	// The member record of the current user may predate the id it signs in
	// with. The stored user id is kept so that lookups keyed by it succeed.
	if email := strings.TrimSpace(current.Email); email != "" {
		if matched, ok := lo.Find(users, func(user *types.User) bool {
			return strings.EqualFold(user.Email, email)
		}); ok {
			if logging.Enabled(zap.DebugLevel) {
				logging.From(ctx).Debugf(
					"current user %s matched member %s by email", current.ID, matched.ID,
				)
			}
			return users
		}
	}

	user := &types.User{
		ID:          current.ID,
		Email:       current.Email,
		DisplayName: lo.CoalesceOrEmpty(current.DisplayName, current.Email),
		IsActive:    true,
	}
	if workspace != nil && workspace.OwnerID == current.ID {
		user.Role = string(types.RoleOwner)
		return append([]*types.User{user}, users...)
	}
	return append(users, user)
}

// enrich resolves the profiles of the users in parallel. A missing profile or
// a failed lookup keeps the email as the display name.
func enrich(ctx context.Context, be *backend.Backend, users []*types.User) {
	group := errgroup.Group{}
	if limit := be.Config.EnrichmentConcurrency; limit > 0 {
		group.SetLimit(limit)
	}

	for _, user := range users {
		group.Go(func() error {
			info, err := be.Cache.FindUserInfo(ctx, be.DB, user.ID)
			if err != nil {
				if !errors.Is(err, database.ErrUserNotFound) && ctx.Err() == nil {
					logging.From(ctx).Warnf("find profile of %s: %v", user.ID, err)
				}
				return nil
			}

			if info.DisplayName != "" {
				user.DisplayName = info.DisplayName
			}
			user.PhotoURL = info.PhotoURL
			user.CreatedAt = info.CreatedAt
			if !info.IsActive {
				user.IsActive = false
			}
			return nil
		})
	}

	_ = group.Wait()
}

func copyUsers(users []*types.User) []*types.User {
	return lo.Map(users, func(user *types.User, _ int) *types.User {
		copied := *user
		return &copied
	})
}
