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
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tasklane/tasklane/api/types"
)

func TestFields(t *testing.T) {
	t.Run("IsAbsent test", func(t *testing.T) {
		var nilSlice []string
		var nilMap map[string]any
		var nilPtr *time.Time

		assert.True(t, types.IsAbsent(nil))
		assert.True(t, types.IsAbsent(nilSlice))
		assert.True(t, types.IsAbsent(nilMap))
		assert.True(t, types.IsAbsent(nilPtr))

		assert.False(t, types.IsAbsent(""))
		assert.False(t, types.IsAbsent(0))
		assert.False(t, types.IsAbsent([]string{}))
		assert.False(t, types.IsAbsent(types.DeleteField))
	})

	t.Run("IsDeleteField test", func(t *testing.T) {
		assert.True(t, types.IsDeleteField(types.DeleteField))
		assert.False(t, types.IsDeleteField(nil))
		assert.False(t, types.IsDeleteField("<delete>"))
	})

	t.Run("DeepCopy test", func(t *testing.T) {
		original := types.Fields{
			"title": "write docs",
			"tags":  []any{"a"},
			"meta":  map[string]any{"color": "red"},
		}
		copied := original.DeepCopy()

		copied["tags"].([]any)[0] = "b"
		copied["meta"].(map[string]any)["color"] = "blue"

		assert.Equal(t, "a", original["tags"].([]any)[0])
		assert.Equal(t, "red", original["meta"].(map[string]any)["color"])
	})

	t.Run("canonical zone test", func(t *testing.T) {
		_, offset := types.Now().Zone()
		assert.Equal(t, 3*60*60, offset)

		utc := time.Date(2026, 1, 1, 22, 0, 0, 0, time.UTC)
		assert.Equal(t, 2, types.InCanonicalZone(utc).Day())
	})
}

func TestMemberRole(t *testing.T) {
	t.Run("Validate test", func(t *testing.T) {
		assert.NoError(t, types.RoleGuest.Validate())
		assert.ErrorIs(t, types.MemberRole("SUPERUSER").Validate(), types.ErrInvalidRole)
	})

	t.Run("IsInvitable test", func(t *testing.T) {
		assert.False(t, types.RoleOwner.IsInvitable())
		assert.True(t, types.RoleAdmin.IsInvitable())
		assert.True(t, types.RoleViewer.IsInvitable())
		assert.False(t, types.MemberRole("").IsInvitable())
	})

	t.Run("CanManageMembers test", func(t *testing.T) {
		assert.True(t, types.RoleOwner.CanManageMembers())
		assert.True(t, types.RoleAdmin.CanManageMembers())
		assert.False(t, types.RoleMember.CanManageMembers())
		assert.False(t, types.RoleViewer.CanManageMembers())
		assert.False(t, types.RoleGuest.CanManageMembers())
	})
}

func TestID(t *testing.T) {
	assert.NoError(t, types.ID("u1").Validate())
	assert.ErrorIs(t, types.ID("  ").Validate(), types.ErrInvalidID)
	assert.ErrorIs(t, types.ID("a/b").Validate(), types.ErrInvalidID)
	assert.True(t, types.ID("").IsBlank())
}
