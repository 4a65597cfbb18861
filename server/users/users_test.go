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

package users_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/server/backend/database"
	"github.com/tasklane/tasklane/server/users"
	"github.com/tasklane/tasklane/test/helper"
)

func TestUsers(t *testing.T) {
	ctx := context.Background()
	be := helper.TestBackend(t)

	t.Run("EnsureProfile and GetUser test", func(t *testing.T) {
		identity := helper.TestIdentity("alice")

		_, err := users.GetUser(ctx, be, identity.ID)
		assert.ErrorIs(t, err, database.ErrUserNotFound)

		created, err := users.EnsureProfile(ctx, be, identity)
		assert.NoError(t, err)
		assert.Equal(t, identity.Email, created.Email)

		found, err := users.GetUser(ctx, be, identity.ID)
		assert.NoError(t, err)
		assert.Equal(t, "alice", found.DisplayName)
	})

	t.Run("EnsureProfile refreshes cached profile test", func(t *testing.T) {
		identity := helper.TestIdentity("bob")

		_, err := users.EnsureProfile(ctx, be, identity)
		assert.NoError(t, err)
		_, err = users.GetUser(ctx, be, identity.ID)
		assert.NoError(t, err)

		identity.DisplayName = "Bobby"
		_, err = users.EnsureProfile(ctx, be, identity)
		assert.NoError(t, err)

		found, err := users.GetUser(ctx, be, identity.ID)
		assert.NoError(t, err)
		assert.Equal(t, "Bobby", found.DisplayName)
	})

	t.Run("EnsureProfile invalid id test", func(t *testing.T) {
		_, err := users.EnsureProfile(ctx, be, &types.Identity{Email: "x@tasklane.test"})
		assert.ErrorIs(t, err, types.ErrInvalidID)
	})

	t.Run("identity context test", func(t *testing.T) {
		assert.Nil(t, users.From(ctx))

		identity := helper.TestIdentity("carol")
		assert.Equal(t, identity, users.From(users.With(ctx, identity)))
	})
}
