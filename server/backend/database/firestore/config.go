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

package firestore

import (
	"fmt"
	"os"
	"time"
)

// Config is the configuration for creating a Client instance.
type Config struct {
	// ProjectID is the Google Cloud project that holds the database.
	ProjectID string `yaml:"ProjectID"`

	// CredentialsFile is the path of a service account key. Application
	// Default Credentials are used when it is empty. FIRESTORE_EMULATOR_HOST
	// is honored by the underlying client.
	CredentialsFile string `yaml:"CredentialsFile"`

	// ConnectionTimeout bounds the initial connection check.
	ConnectionTimeout string `yaml:"ConnectionTimeout"`
}

// Validate returns an error if the provided Config is invalidated.
func (c *Config) Validate() error {
	if c.ProjectID == "" {
		return fmt.Errorf(`invalid argument "" for "--firestore-project-id" flag`)
	}

	if _, err := time.ParseDuration(c.ConnectionTimeout); err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--firestore-connection-timeout" flag: %w`,
			c.ConnectionTimeout,
			err,
		)
	}

	return nil
}

// ParseConnectionTimeout returns connection timeout duration.
func (c *Config) ParseConnectionTimeout() time.Duration {
	result, err := time.ParseDuration(c.ConnectionTimeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse connection timeout: %v\n", err)
		os.Exit(1)
	}

	return result
}
