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

package firestore_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tasklane/tasklane/server/backend/database/firestore"
	"github.com/tasklane/tasklane/server/backend/database/testcases"
)

// setupTestClient dials the Firestore emulator named by
// FIRESTORE_EMULATOR_HOST.
func setupTestClient(t *testing.T) *firestore.Client {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST is not set")
	}

	config := &firestore.Config{
		ProjectID:         "tasklane-test",
		ConnectionTimeout: "5s",
	}
	require.NoError(t, config.Validate())

	cli, err := firestore.Dial(config)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = cli.Close()
	})

	return cli
}

func TestClient(t *testing.T) {
	cli := setupTestClient(t)

	t.Run("RunTransaction test", func(t *testing.T) {
		testcases.RunTransactionTest(t, cli)
	})

	t.Run("RunMember test", func(t *testing.T) {
		testcases.RunMemberTest(t, cli)
	})

	t.Run("RunInvite test", func(t *testing.T) {
		testcases.RunInviteTest(t, cli)
	})

	t.Run("RunUserInfo test", func(t *testing.T) {
		testcases.RunUserInfoTest(t, cli)
	})

	t.Run("RunTask test", func(t *testing.T) {
		testcases.RunTaskTest(t, cli)
	})

	t.Run("RunWatch test", func(t *testing.T) {
		testcases.RunWatchTest(t, cli)
	})
}
