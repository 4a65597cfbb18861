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

package mongo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tasklane/tasklane/server/backend/database/mongo"
)

func TestConfig(t *testing.T) {
	t.Run("validate test", func(t *testing.T) {
		config := &mongo.Config{
			ConnectionURI:     "mongodb://localhost:27017",
			ConnectionTimeout: "5s",
			PingTimeout:       "5s",
		}
		assert.NoError(t, config.Validate())

		config.ConnectionTimeout = "5"
		assert.Error(t, config.Validate())

		config.ConnectionTimeout = "5s"
		config.PingTimeout = "5"
		assert.Error(t, config.Validate())

		config.PingTimeout = "5s"
		config.MonitoringEnabled = true
		config.MonitoringSlowQueryThreshold = "fast"
		assert.Error(t, config.Validate())

		config.MonitoringSlowQueryThreshold = "100ms"
		assert.NoError(t, config.Validate())

		config.ConnectionURI = ""
		assert.Error(t, config.Validate())
	})
}
