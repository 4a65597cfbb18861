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

package memory

import "github.com/hashicorp/go-memdb"

var (
	tblWorkspaces = "workspaces"
	tblMembers    = "members"
	tblInvites    = "invites"
	tblUsers      = "users"
	tblTasks      = "tasks"
)

var schema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tblWorkspaces: {
			Name: tblWorkspaces,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "ID"},
				},
				"owner_id": {
					Name:    "owner_id",
					Indexer: &memdb.StringFieldIndex{Field: "OwnerID"},
				},
			},
		},
		tblMembers: {
			Name: tblMembers,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:   "id",
					Unique: true,
					Indexer: &memdb.CompoundIndex{
						Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "WorkspaceID"},
							&memdb.StringFieldIndex{Field: "ID"},
						},
					},
				},
				"workspace_id": {
					Name:    "workspace_id",
					Indexer: &memdb.StringFieldIndex{Field: "WorkspaceID"},
				},
				// malformed legacy records have no user id
				"user_id_status": {
					Name:         "user_id_status",
					AllowMissing: true,
					Indexer: &memdb.CompoundIndex{
						Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "UserID"},
							&memdb.StringFieldIndex{Field: "Status"},
						},
					},
				},
			},
		},
		tblInvites: {
			Name: tblInvites,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:   "id",
					Unique: true,
					Indexer: &memdb.CompoundIndex{
						Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "WorkspaceID"},
							&memdb.StringFieldIndex{Field: "ID"},
						},
					},
				},
				"workspace_id_status": {
					Name: "workspace_id_status",
					Indexer: &memdb.CompoundIndex{
						Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "WorkspaceID"},
							&memdb.StringFieldIndex{Field: "Status"},
						},
					},
				},
			},
		},
		tblUsers: {
			Name: tblUsers,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "ID"},
				},
			},
		},
		tblTasks: {
			Name: tblTasks,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:   "id",
					Unique: true,
					Indexer: &memdb.CompoundIndex{
						Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "WorkspaceID"},
							&memdb.StringFieldIndex{Field: "Kind"},
							&memdb.StringFieldIndex{Field: "ID"},
						},
					},
				},
			},
		},
	},
}
