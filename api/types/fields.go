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
	"reflect"
)

// Fields is a partial document destined for a field-level merge. A key mapped
// to nil (or to a nil pointer, slice or map) carries no value and is rejected
// by the store.
type Fields map[string]any

// deleteField is the type of DeleteField. It is unexported so that the only
// value of the type is the sentinel itself.
type deleteField struct{}

// String returns a readable form of the sentinel for logs.
func (deleteField) String() string {
	return "<delete>"
}

// DeleteField is a write instruction meaning "remove this field from the
// stored document". It is not an absent value.
var DeleteField any = deleteField{}

// IsDeleteField returns true if v is the delete-field sentinel.
func IsDeleteField(v any) bool {
	_, ok := v.(deleteField)
	return ok
}

// IsAbsent returns true if v carries no value: an untyped nil or a typed nil
// pointer, slice, map or interface.
func IsAbsent(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// DeepCopy returns a copy of the fields. Nested maps and slices are copied,
// other values are shared.
func (f Fields) DeepCopy() Fields {
	if f == nil {
		return nil
	}

	copied := make(Fields, len(f))
	for k, v := range f {
		copied[k] = deepCopyValue(v)
	}
	return copied
}

func deepCopyValue(v any) any {
	switch value := v.(type) {
	case Fields:
		return value.DeepCopy()
	case map[string]any:
		return map[string]any(Fields(value).DeepCopy())
	case []any:
		if value == nil {
			return value
		}
		copied := make([]any, len(value))
		for i, item := range value {
			copied[i] = deepCopyValue(item)
		}
		return copied
	case []string:
		if value == nil {
			return value
		}
		return append([]string{}, value...)
	default:
		return v
	}
}
