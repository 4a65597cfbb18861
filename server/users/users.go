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

// Package users provides the user profile related business logic.
package users

import (
	"context"
	"fmt"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/server/backend"
	"github.com/tasklane/tasklane/server/backend/database"
)

// EnsureProfile creates the profile of the identity or refreshes its email
// and display name. The cached copy is dropped so that the member directory
// sees the new values.
func EnsureProfile(
	ctx context.Context,
	be *backend.Backend,
	identity *types.Identity,
) (*types.User, error) {
	if err := identity.ID.Validate(); err != nil {
		return nil, err
	}

	info := database.NewUserInfo(identity)
	if err := be.DB.UpsertUserInfo(ctx, info); err != nil {
		return nil, fmt.Errorf("upsert profile of %s: %w", identity.ID, err)
	}
	be.Cache.InvalidateUserInfo(identity.ID)

	return info.ToUser(), nil
}

// GetUser returns the profile of the given user.
func GetUser(
	ctx context.Context,
	be *backend.Backend,
	id types.ID,
) (*types.User, error) {
	info, err := be.Cache.FindUserInfo(ctx, be.DB, id)
	if err != nil {
		return nil, err
	}

	return info.ToUser(), nil
}
