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

package notification

import (
	"fmt"
	"net/url"
	"time"
)

// Config is the configuration of the notifier.
type Config struct {
	// WebhookURL receives one POST per recipient. Notifications are dropped
	// when it is empty.
	WebhookURL string `yaml:"WebhookURL"`

	// WebhookToken is sent as a bearer token when it is set.
	WebhookToken string `yaml:"WebhookToken"`

	// RequestTimeout bounds a single delivery.
	RequestTimeout string `yaml:"RequestTimeout"`

	// MaxRetries is the number of retries of a failed delivery.
	MaxRetries int `yaml:"MaxRetries"`

	// Concurrency is the number of deliveries in flight.
	Concurrency int `yaml:"Concurrency"`
}

// Validate validates this config.
func (c *Config) Validate() error {
	if c.WebhookURL != "" {
		if _, err := url.ParseRequestURI(c.WebhookURL); err != nil {
			return fmt.Errorf(`invalid argument "%s" for "--notification-webhook-url" flag: %w`, c.WebhookURL, err)
		}
	}

	if _, err := time.ParseDuration(c.RequestTimeout); err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--notification-request-timeout" flag: %w`,
			c.RequestTimeout,
			err,
		)
	}

	if c.MaxRetries < 0 {
		return fmt.Errorf(`invalid argument %d for "--notification-max-retries" flag`, c.MaxRetries)
	}

	if c.Concurrency <= 0 {
		return fmt.Errorf(`invalid argument %d for "--notification-concurrency" flag`, c.Concurrency)
	}

	return nil
}

// ParseRequestTimeout returns the timeout of a single delivery.
func (c *Config) ParseRequestTimeout() time.Duration {
	timeout, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return DefaultRequestTimeout
	}

	return timeout
}
