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

package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tasklane/tasklane/api/types"
)

func TestCreateWorkspaceFields(t *testing.T) {
	t.Run("valid name test", func(t *testing.T) {
		fields := &types.CreateWorkspaceFields{Name: "  Design Team  "}
		assert.NoError(t, fields.Validate())
		assert.Equal(t, "Design Team", fields.Name)
	})

	t.Run("invalid name test", func(t *testing.T) {
		fields := &types.CreateWorkspaceFields{Name: "x"}
		assert.ErrorIs(t, fields.Validate(), types.ErrInvalidFields)

		fields = &types.CreateWorkspaceFields{Name: "<b>team</b>"}
		assert.ErrorIs(t, fields.Validate(), types.ErrInvalidFields)
	})
}

func TestCreateInviteFields(t *testing.T) {
	t.Run("email is normalized test", func(t *testing.T) {
		fields := &types.CreateInviteFields{Email: " B@X.com ", Role: types.RoleMember}
		assert.NoError(t, fields.Validate())
		assert.Equal(t, "b@x.com", fields.Email)
	})

	t.Run("owner role is rejected test", func(t *testing.T) {
		fields := &types.CreateInviteFields{Email: "b@x.com", Role: types.RoleOwner}
		assert.ErrorIs(t, fields.Validate(), types.ErrInvalidFields)
	})

	t.Run("invalid email test", func(t *testing.T) {
		fields := &types.CreateInviteFields{Email: "not-an-email", Role: types.RoleMember}
		assert.ErrorIs(t, fields.Validate(), types.ErrInvalidFields)
	})
}
