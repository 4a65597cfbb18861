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

// Package helper provides helper functions for testing.
package helper

import (
	"fmt"
	"testing"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/server/backend"
	"github.com/tasklane/tasklane/server/backend/housekeeping"
	"github.com/tasklane/tasklane/server/profiling/prometheus"
)

var (
	// SecretKey signs the access tokens of test servers.
	SecretKey = "tasklane-test-secret"

	// TokenDuration is the lifetime of test access tokens.
	TokenDuration = "1h"

	// ProfileCacheSize is the profile cache size of test backends.
	ProfileCacheSize = 100

	// ProfileCacheTTL is the profile cache TTL of test backends.
	ProfileCacheTTL = "1m"

	// EnrichmentConcurrency is the enrichment concurrency of test backends.
	EnrichmentConcurrency = 4

	// HousekeepingSchedule never fires during a test run.
	HousekeepingSchedule = "@every 1h"
)

// BackendConfig returns the backend configuration used by tests.
func BackendConfig() *backend.Config {
	return &backend.Config{
		SecretKey:             SecretKey,
		TokenDuration:         TokenDuration,
		ProfileCacheSize:      ProfileCacheSize,
		ProfileCacheTTL:       ProfileCacheTTL,
		EnrichmentConcurrency: EnrichmentConcurrency,
		Hostname:              "tasklane-test",
	}
}

// HousekeepingConfig returns the housekeeping configuration used by tests.
func HousekeepingConfig() *housekeeping.Config {
	return &housekeeping.Config{
		Schedule:           HousekeepingSchedule,
		InviteRetention:    "720h",
		ExpiredInviteGrace: "168h",
	}
}

// TestBackend creates a backend on the memory database. It is shut down
// when the test finishes.
func TestBackend(t testing.TB) *backend.Backend {
	metrics, err := prometheus.NewMetrics()
	require.NoError(t, err)

	be, err := backend.New(
		BackendConfig(),
		nil,
		nil,
		HousekeepingConfig(),
		nil,
		nil,
		metrics,
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, be.Shutdown())
	})
	return be
}

// TestIdentity returns an identity with a unique id and an email derived
// from the given name.
func TestIdentity(name string) *types.Identity {
	id := xid.New().String()
	return &types.Identity{
		ID:          types.ID(id),
		Email:       fmt.Sprintf("%s-%s@tasklane.test", name, id),
		DisplayName: name,
	}
}
