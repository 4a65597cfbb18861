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

package types

import (
	"time"
)

// User is a display-ready user. Within a member directory Role is the
// workspace role of the user.
type User struct {
	// ID is the unique ID of the user.
	ID ID `json:"id"`

	// Email is the email of the user.
	Email string `json:"email"`

	// DisplayName is the name shown in the UI. It falls back to the email.
	DisplayName string `json:"displayName"`

	// PhotoURL is the avatar of the user.
	PhotoURL string `json:"photoURL,omitempty"`

	// Role is the role of the user.
	Role string `json:"role,omitempty"`

	// IsActive is false for deactivated accounts.
	IsActive bool `json:"isActive"`

	// CreatedAt is the time when the user was created.
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Identity is the acting user as known to the identity provider.
type Identity struct {
	ID          ID     `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}
