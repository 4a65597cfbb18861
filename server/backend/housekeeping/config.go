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

// Package housekeeping runs scheduled maintenance tasks of the backend, such
// as deleting invites that can no longer be used.
package housekeeping

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Config is the configuration for the housekeeping service.
type Config struct {
	// Schedule is the cron spec of the runs, e.g. "@every 1h" or "0 4 * * *".
	Schedule string `yaml:"Schedule"`

	// InviteRetention is how long consumed invites are kept after creation.
	InviteRetention string `yaml:"InviteRetention"`

	// ExpiredInviteGrace is how long pending invites are kept after expiry.
	ExpiredInviteGrace string `yaml:"ExpiredInviteGrace"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := cron.ParseStandard(c.Schedule); err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--housekeeping-schedule" flag: %w`,
			c.Schedule,
			err,
		)
	}

	if _, err := time.ParseDuration(c.InviteRetention); err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--housekeeping-invite-retention" flag: %w`,
			c.InviteRetention,
			err,
		)
	}

	if _, err := time.ParseDuration(c.ExpiredInviteGrace); err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--housekeeping-expired-invite-grace" flag: %w`,
			c.ExpiredInviteGrace,
			err,
		)
	}

	return nil
}

// ParseInviteRetention parses the invite retention.
func (c *Config) ParseInviteRetention() (time.Duration, error) {
	retention, err := time.ParseDuration(c.InviteRetention)
	if err != nil {
		return 0, fmt.Errorf("parse invite retention %s: %w", c.InviteRetention, err)
	}

	return retention, nil
}

// ParseExpiredInviteGrace parses the grace period of expired invites.
func (c *Config) ParseExpiredInviteGrace() (time.Duration, error) {
	grace, err := time.ParseDuration(c.ExpiredInviteGrace)
	if err != nil {
		return 0, fmt.Errorf("parse expired invite grace %s: %w", c.ExpiredInviteGrace, err)
	}

	return grace, nil
}
