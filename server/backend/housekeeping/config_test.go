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

package housekeeping_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tasklane/tasklane/server/backend/housekeeping"
)

func TestConfig(t *testing.T) {
	t.Run("validate test", func(t *testing.T) {
		validConf := housekeeping.Config{
			Schedule:           "@every 1h",
			InviteRetention:    "720h",
			ExpiredInviteGrace: "168h",
		}
		assert.NoError(t, validConf.Validate())

		conf1 := validConf
		conf1.Schedule = "hourly"
		assert.Error(t, conf1.Validate())

		conf2 := validConf
		conf2.Schedule = "0 4 * * *"
		assert.NoError(t, conf2.Validate())

		conf3 := validConf
		conf3.InviteRetention = "month"
		assert.Error(t, conf3.Validate())

		conf4 := validConf
		conf4.ExpiredInviteGrace = "-"
		assert.Error(t, conf4.Validate())
	})

	t.Run("parse durations test", func(t *testing.T) {
		conf := housekeeping.Config{InviteRetention: "720h", ExpiredInviteGrace: "168h"}

		retention, err := conf.ParseInviteRetention()
		assert.NoError(t, err)
		assert.Equal(t, 30*24*time.Hour, retention)

		grace, err := conf.ParseExpiredInviteGrace()
		assert.NoError(t, err)
		assert.Equal(t, 7*24*time.Hour, grace)
	})
}
