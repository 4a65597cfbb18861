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

package mongo

import (
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	tMap   = reflect.TypeOf(map[string]any{})
	tSlice = reflect.TypeOf([]any{})
	tTime  = reflect.TypeOf(time.Time{})
)

// NewRegistry returns the registry used by the client. Free-form task fields
// are decoded into plain maps, slices and times so that they look the same
// as the values the other stores return.
func NewRegistry() *bson.Registry {
	registry := bson.NewRegistry()

	registry.RegisterTypeMapEntry(bson.TypeEmbeddedDocument, tMap)
	registry.RegisterTypeMapEntry(bson.TypeArray, tSlice)
	registry.RegisterTypeMapEntry(bson.TypeDateTime, tTime)

	return registry
}
