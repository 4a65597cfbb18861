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

package tasks

import (
	"reflect"
	"time"

	"github.com/tasklane/tasklane/api/types"
)

const (
	// AssigneeIDsField is the list of assignees of a task.
	AssigneeIDsField = "assigneeIds"

	// AssigneeIDField is the single assignee kept for older clients. It
	// mirrors the first element of AssigneeIDsField.
	AssigneeIDField = "assigneeId"

	// UpdatedAtField is stamped on every sanitized update.
	UpdatedAtField = "updatedAt"
)

// emptyListFields are the list fields whose empty value is stored instead of
// being dropped.
var emptyListFields = map[string]bool{
	"tags":         true,
	"dependencies": true,
}

// Sanitize returns a copy of the fields the store accepts: no absent value at
// any depth, the legacy assignee mirrored from the assignee list, empty lists
// and empty nested maps dropped and updatedAt set to now. types.DeleteField
// values are kept.
func Sanitize(fields types.Fields, now time.Time) types.Fields {
	cleaned := make(types.Fields, len(fields)+1)
	for key, value := range fields {
		if types.IsAbsent(value) {
			continue
		}
		cleaned[key] = value
	}

	if value, ok := cleaned[AssigneeIDsField]; ok {
		if list, ok := toList(value); ok {
			if len(list) == 0 {
				cleaned[AssigneeIDsField] = []any{}
				cleaned[AssigneeIDField] = types.DeleteField
			} else {
				cleaned[AssigneeIDsField] = list
				cleaned[AssigneeIDField] = list[0]
			}
		}
	}

	for key, value := range cleaned {
		if types.IsDeleteField(value) || key == AssigneeIDsField {
			continue
		}

		if list, ok := toList(value); ok {
			if len(list) == 0 && !emptyListFields[key] {
				delete(cleaned, key)
				continue
			}
			cleaned[key] = list
			continue
		}

		if nested, ok := toMap(value); ok {
			stripped := stripNested(nested)
			if len(stripped) == 0 {
				delete(cleaned, key)
				continue
			}
			cleaned[key] = stripped
		}
	}

	for key, value := range cleaned {
		if types.IsAbsent(value) {
			delete(cleaned, key)
		}
	}

	cleaned[UpdatedAtField] = types.InCanonicalZone(now)
	return cleaned
}

// stripNested removes absent values and empty maps from a nested map.
func stripNested(nested map[string]any) map[string]any {
	stripped := make(map[string]any, len(nested))
	for key, value := range nested {
		if types.IsAbsent(value) {
			continue
		}

		if list, ok := toList(value); ok {
			stripped[key] = list
			continue
		}

		if inner, ok := toMap(value); ok {
			if inner = stripNested(inner); len(inner) > 0 {
				stripped[key] = inner
			}
			continue
		}

		stripped[key] = value
	}
	return stripped
}

// toList returns the elements of a slice value without absent elements.
// Maps and lists inside the slice are stripped the same way.
func toList(value any) ([]any, bool) {
	var items []any
	switch list := value.(type) {
	case []any:
		items = list
	case []string:
		items = make([]any, len(list))
		for i, item := range list {
			items[i] = item
		}
		return items, true
	default:
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, false
		}

		items = make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items = append(items, rv.Index(i).Interface())
		}
	}

	return compact(items), true
}

// compact drops absent elements. A map element is kept even when it is empty
// after stripping, so the positions of the other elements do not shift.
func compact(list []any) []any {
	items := make([]any, 0, len(list))
	for _, item := range list {
		if types.IsAbsent(item) {
			continue
		}

		if nested, ok := toMap(item); ok {
			item = stripNested(nested)
		} else if inner, ok := toList(item); ok {
			item = inner
		}
		items = append(items, item)
	}
	return items
}

func toMap(value any) (map[string]any, bool) {
	switch nested := value.(type) {
	case types.Fields:
		return nested, true
	case map[string]any:
		return nested, true
	default:
		return nil, false
	}
}
