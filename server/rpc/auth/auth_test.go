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

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/server/rpc/auth"
)

func TestTokenManager(t *testing.T) {
	ctx := context.Background()
	identity := &types.Identity{ID: "u1", Email: "a@x.com", DisplayName: "Ann"}

	t.Run("Generate and Verify test", func(t *testing.T) {
		manager := auth.NewTokenManager("secret", time.Hour)

		token, err := manager.Generate(identity)
		assert.NoError(t, err)

		verified, err := manager.Verify(ctx, token)
		assert.NoError(t, err)
		assert.Equal(t, identity, verified)
	})

	t.Run("wrong secret test", func(t *testing.T) {
		token, err := auth.NewTokenManager("secret", time.Hour).Generate(identity)
		assert.NoError(t, err)

		_, err = auth.NewTokenManager("other", time.Hour).Verify(ctx, token)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("expired token test", func(t *testing.T) {
		manager := auth.NewTokenManager("secret", -time.Minute)
		token, err := manager.Generate(identity)
		assert.NoError(t, err)

		_, err = manager.Verify(ctx, token)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("token without subject test", func(t *testing.T) {
		manager := auth.NewTokenManager("secret", time.Hour)
		token, err := manager.Generate(&types.Identity{Email: "a@x.com"})
		assert.NoError(t, err)

		_, err = manager.Verify(ctx, token)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})
}

func TestBearerToken(t *testing.T) {
	t.Run("BearerToken test", func(t *testing.T) {
		token, ok := auth.BearerToken("Bearer abc")
		assert.True(t, ok)
		assert.Equal(t, "abc", token)

		token, ok = auth.BearerToken("bearer  abc ")
		assert.True(t, ok)
		assert.Equal(t, "abc", token)

		_, ok = auth.BearerToken("Basic abc")
		assert.False(t, ok)
		_, ok = auth.BearerToken("Bearer")
		assert.False(t, ok)
		_, ok = auth.BearerToken("")
		assert.False(t, ok)
	})
}
