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

package housekeeping

import (
	"context"
	"fmt"
	"time"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/server/backend/database"
	"github.com/tasklane/tasklane/server/logging"
	"github.com/tasklane/tasklane/server/profiling/prometheus"
)

// PurgeStaleInvitesTaskName is the name of the task that deletes stale invites.
const PurgeStaleInvitesTaskName = "purge-stale-invites"

// PurgeStaleInvites returns the task that deletes invites created more than
// retention ago which are either consumed or expired more than grace ago.
func PurgeStaleInvites(
	db database.Database,
	metrics *prometheus.Metrics,
	retention time.Duration,
	grace time.Duration,
) Task {
	return func(ctx context.Context) error {
		start := time.Now()
		now := types.Now()

		purged, err := db.PurgeInviteInfos(ctx, now.Add(-retention), now.Add(-grace))
		if err != nil {
			return fmt.Errorf("purge stale invites: %w", err)
		}
		metrics.AddPurgedInvites(purged)

		if purged > 0 {
			logging.From(ctx).Infof("HSKP: purged %d invites, %s", purged, time.Since(start))
		}

		return nil
	}
}
