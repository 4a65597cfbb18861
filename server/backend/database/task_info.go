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

// TaskInfo is a structure representing a task or a project.
type TaskInfo struct {
	ID          types.ID       `bson:"task_id" firestore:"-"`
	WorkspaceID types.ID       `bson:"workspace_id" firestore:"-"`
	Kind        types.TaskKind `bson:"kind" firestore:"kind"`
	Fields      types.Fields   `bson:"fields" firestore:"fields"`
	CreatedAt   time.Time      `bson:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time      `bson:"updated_at" firestore:"updatedAt"`
}

// DeepCopy returns a deep copy of the TaskInfo.
func (i *TaskInfo) DeepCopy() *TaskInfo {
	if i == nil {
		return nil
	}

	return &TaskInfo{
		ID:          i.ID,
		WorkspaceID: i.WorkspaceID,
		Kind:        i.Kind,
		Fields:      i.Fields.DeepCopy(),
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

// FieldUpdate is one leaf of a field-level merge. Path is the key path
// below the task fields, e.g. ["meta", "color"].
type FieldUpdate struct {
	Path  []string
	Value any
}

// IsDelete returns true if the update removes the field.
func (u FieldUpdate) IsDelete() bool {
	return types.IsDeleteField(u.Value)
}

// FlattenFields flattens nested maps into leaf updates, so that a merge of
// {"meta": {"color": "red"}} touches meta.color and keeps the siblings of
// color. An empty map is a leaf value.
func FlattenFields(fields types.Fields) []FieldUpdate {
	var updates []FieldUpdate
	flattenFields(&updates, nil, fields)
	return updates
}

func flattenFields(updates *[]FieldUpdate, prefix []string, fields map[string]any) {
	for k, v := range fields {
		path := append(append(make([]string, 0, len(prefix)+1), prefix...), k)
		if nested, ok := asMap(v); ok && len(nested) > 0 {
			flattenFields(updates, path, nested)
			continue
		}
		*updates = append(*updates, FieldUpdate{Path: path, Value: v})
	}
}

func asMap(v any) (map[string]any, bool) {
	switch value := v.(type) {
	case types.Fields:
		return value, true
	case map[string]any:
		return value, true
	default:
		return nil, false
	}
}

// MergeFields applies a field-level merge of the flattened fields:
// types.DeleteField removes a key at any depth, every other value replaces
// the stored one. Missing or non-map parents are created for set values.
func (i *TaskInfo) MergeFields(fields types.Fields, now time.Time) {
	if i.Fields == nil {
		i.Fields = types.Fields{}
	}

	for _, update := range FlattenFields(fields) {
		parent := map[string]any(i.Fields)
		last := len(update.Path) - 1
		for _, key := range update.Path[:last] {
			child, ok := asMap(parent[key])
			if !ok {
				if update.IsDelete() {
					parent = nil
					break
				}
				child = map[string]any{}
				parent[key] = child
			}
			parent = child
		}
		if parent == nil {
			continue
		}

		if update.IsDelete() {
			delete(parent, update.Path[last])
			continue
		}
		parent[update.Path[last]] = update.Value
	}
	i.UpdatedAt = now
}

// ToTask converts the TaskInfo to a Task.
func (i *TaskInfo) ToTask() *types.Task {
	return &types.Task{
		ID:          i.ID,
		WorkspaceID: i.WorkspaceID,
		Kind:        i.Kind,
		Fields:      i.Fields.DeepCopy(),
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}
