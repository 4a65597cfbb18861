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

// Package types provides the types used in the Tasklane API. This package is
// used by both the server and the admin client.
package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidID is returned when the given ID cannot be used as a document id.
	ErrInvalidID = errors.New("invalid ID")
)

// ID represents ID of entity. User ids come from the identity provider and
// workspace ids are generated by the store, so no format beyond being a
// usable path segment is assumed.
type ID string

// String returns a string representation of this ID.
func (id ID) String() string {
	return string(id)
}

// IsBlank returns true if the ID is empty or whitespace only.
func (id ID) IsBlank() bool {
	return strings.TrimSpace(string(id)) == ""
}

// Validate returns error if this ID is invalid.
func (id ID) Validate() error {
	if id.IsBlank() || strings.Contains(string(id), "/") || len(id) > 256 {
		return fmt.Errorf("%q: %w", string(id), ErrInvalidID)
	}

	return nil
}
