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
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/event"
	"go.uber.org/zap"

	"github.com/tasklane/tasklane/server/logging"
)

// QueryMonitor logs the commands sent to MongoDB.
type QueryMonitor struct {
	logger             logging.Logger
	slowQueryThreshold time.Duration
}

// NewQueryMonitor creates a new instance of QueryMonitor.
func NewQueryMonitor(slowQueryThreshold time.Duration) *QueryMonitor {
	return &QueryMonitor{
		logger:             logging.New("mongo"),
		slowQueryThreshold: slowQueryThreshold,
	}
}

// CreateCommandMonitor creates a new instance of event.CommandMonitor.
func (m *QueryMonitor) CreateCommandMonitor() *event.CommandMonitor {
	return &event.CommandMonitor{
		Started: func(ctx context.Context, evt *event.CommandStartedEvent) {
			if logging.Enabled(zap.DebugLevel) {
				m.logger.Debugf("STAR: %d(%s): %s", evt.RequestID, evt.CommandName, evt.Command)
			}
		},
		Succeeded: func(ctx context.Context, evt *event.CommandSucceededEvent) {
			duration := evt.Duration.Milliseconds()

			if m.slowQueryThreshold > 0 && evt.Duration > m.slowQueryThreshold {
				m.logger.Warnf("SLOW: %d(%s): %dms", evt.RequestID, evt.CommandName, duration)
				return
			}

			m.logger.Debugf("SUCC: %d(%s): %dms", evt.RequestID, evt.CommandName, duration)
		},
		Failed: func(ctx context.Context, evt *event.CommandFailedEvent) {
			if isExpectedFailure(evt) {
				m.logger.Debugf("FAIL: %d(%s), %s", evt.RequestID, evt.CommandName, evt.Failure)
				return
			}

			m.logger.Warnf("FAIL: %d(%s), %s: %dms",
				evt.RequestID,
				evt.CommandName,
				evt.Failure,
				evt.Duration.Milliseconds(),
			)
		},
	}
}

// isExpectedFailure reports failures that are part of normal operation:
// token collisions on invite creation and transient transaction conflicts
// the driver retries by itself.
func isExpectedFailure(evt *event.CommandFailedEvent) bool {
	if evt.Failure == nil {
		return false
	}

	failure := evt.Failure.Error()
	if strings.Contains(failure, "E11000 duplicate key") && strings.Contains(failure, ColInvites) {
		return true
	}

	return strings.Contains(failure, "WriteConflict")
}
