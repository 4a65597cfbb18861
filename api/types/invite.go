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

// InviteStatus is the status of an invite. It only moves from pending to one
// of the terminal states.
type InviteStatus string

const (
	// InvitePending is the status of an invite that can still be consumed.
	InvitePending InviteStatus = "PENDING"

	// InviteAccepted is the terminal status of a consumed invite.
	InviteAccepted InviteStatus = "ACCEPTED"

	// InviteRevoked is the terminal status of a cancelled invite.
	InviteRevoked InviteStatus = "REVOKED"
)

// InviteTTL is how long an invite stays valid after creation.
const InviteTTL = 7 * 24 * time.Hour

// Invite is a single-use, time-boxed credential granting membership at a
// specific role. ID is the token itself.
type Invite struct {
	ID          string       `json:"id"`
	WorkspaceID ID           `json:"workspaceId"`
	Email       string       `json:"email"`
	Role        MemberRole   `json:"role"`
	InvitedBy   ID           `json:"invitedBy"`
	Status      InviteStatus `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	AcceptedAt  *time.Time   `json:"acceptedAt,omitempty"`
	AcceptedBy  ID           `json:"acceptedBy,omitempty"`
	RevokedAt   *time.Time   `json:"revokedAt,omitempty"`
}
