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

// Package cache provides the caches of the Tasklane backend.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/pkg/errors"
	"github.com/tasklane/tasklane/server/backend/database"
)

// ErrInvalidCacheSize is returned when the cache size is not positive.
var ErrInvalidCacheSize = errors.InvalidArgument("cache size must be positive").WithCode("ErrInvalidCacheSize")

// Options contains configuration for the cache manager.
type Options struct {
	ProfileCacheSize int
	ProfileCacheTTL  time.Duration
}

// Manager manages all caches used in the backend.
type Manager struct {
	// Profiles caches user profiles looked up by the member directory.
	Profiles *LRUWithExpires[types.ID, *database.UserInfo]
}

// New creates a new cache manager.
func New(opts Options) (*Manager, error) {
	profiles, err := NewLRUWithExpires[types.ID, *database.UserInfo](
		opts.ProfileCacheSize,
		opts.ProfileCacheTTL,
		"profiles",
	)
	if err != nil {
		return nil, fmt.Errorf("new profile cache: %w", err)
	}

	return &Manager{
		Profiles: profiles,
	}, nil
}

// FindUserInfo returns the profile of the user from the cache or from db.
// Lookup failures are not cached.
func (m *Manager) FindUserInfo(
	ctx context.Context,
	db database.Database,
	userID types.ID,
) (*database.UserInfo, error) {
	if info, ok := m.Profiles.Get(userID); ok {
		return info.DeepCopy(), nil
	}

	info, err := db.FindUserInfoByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	m.Profiles.Add(userID, info.DeepCopy())
	return info, nil
}

// InvalidateUserInfo drops the cached profile of the user.
func (m *Manager) InvalidateUserInfo(userID types.ID) {
	m.Profiles.Remove(userID)
}
