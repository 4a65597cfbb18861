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

package database

import (
	"time"

	"github.com/tasklane/tasklane/api/types"
)

// UserInfo is a structure representing the profile of a user.
type UserInfo struct {
	ID          types.ID  `bson:"_id" firestore:"-"`
	Email       string    `bson:"email" firestore:"email"`
	DisplayName string    `bson:"display_name" firestore:"displayName"`
	PhotoURL    string    `bson:"photo_url,omitempty" firestore:"photoURL,omitempty"`
	Role        string    `bson:"role,omitempty" firestore:"role,omitempty"`
	IsActive    bool      `bson:"is_active" firestore:"isActive"`
	CreatedAt   time.Time `bson:"created_at" firestore:"createdAt"`
}

// NewUserInfo creates a new active UserInfo from the given identity.
func NewUserInfo(identity *types.Identity) *UserInfo {
	return &UserInfo{
		ID:          identity.ID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		IsActive:    true,
		CreatedAt:   types.Now(),
	}
}

// DeepCopy returns a deep copy of the UserInfo.
func (i *UserInfo) DeepCopy() *UserInfo {
	if i == nil {
		return nil
	}

	return &UserInfo{
		ID:          i.ID,
		Email:       i.Email,
		DisplayName: i.DisplayName,
		PhotoURL:    i.PhotoURL,
		Role:        i.Role,
		IsActive:    i.IsActive,
		CreatedAt:   i.CreatedAt,
	}
}

// ToUser converts the UserInfo to a User.
func (i *UserInfo) ToUser() *types.User {
	return &types.User{
		ID:          i.ID,
		Email:       i.Email,
		DisplayName: i.DisplayName,
		PhotoURL:    i.PhotoURL,
		Role:        i.Role,
		IsActive:    i.IsActive,
		CreatedAt:   i.CreatedAt,
	}
}
