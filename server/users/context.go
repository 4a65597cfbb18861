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

package users

import (
	"context"

	"github.com/tasklane/tasklane/api/types"
)

// identityKey is the key for the context.Context.
type identityKey struct{}

// From returns the acting identity from the context. It returns nil if the
// context carries no identity.
func From(ctx context.Context) *types.Identity {
	identity, _ := ctx.Value(identityKey{}).(*types.Identity)
	return identity
}

// With returns a new context with the given identity.
func With(ctx context.Context, identity *types.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}
