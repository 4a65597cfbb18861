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

package backend

import (
	"fmt"
	"os"
	"time"
)

// Config is the configuration for creating a Backend instance.
type Config struct {
	// SecretKey is the secret key for signing access tokens.
	SecretKey string `yaml:"SecretKey"`

	// TokenDuration is the lifetime of an access token. Default is "24h".
	TokenDuration string `yaml:"TokenDuration"`

	// ProfileCacheSize is the number of user profiles kept in memory.
	ProfileCacheSize int `yaml:"ProfileCacheSize"`

	// ProfileCacheTTL is how long a cached profile is served.
	ProfileCacheTTL string `yaml:"ProfileCacheTTL"`

	// EnrichmentConcurrency is the number of profile lookups the member
	// directory runs in parallel.
	EnrichmentConcurrency int `yaml:"EnrichmentConcurrency"`

	// Hostname is the hostname of this server. It is attached to events.
	Hostname string `yaml:"Hostname"`
}

// Validate validates this config.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.TokenDuration); err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--token-duration" flag: %w`,
			c.TokenDuration,
			err,
		)
	}

	if c.ProfileCacheSize <= 0 {
		return fmt.Errorf(`invalid argument %d for "--profile-cache-size" flag`, c.ProfileCacheSize)
	}

	if _, err := time.ParseDuration(c.ProfileCacheTTL); err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--profile-cache-ttl" flag: %w`,
			c.ProfileCacheTTL,
			err,
		)
	}

	if c.EnrichmentConcurrency <= 0 {
		return fmt.Errorf(
			`invalid argument %d for "--enrichment-concurrency" flag`,
			c.EnrichmentConcurrency,
		)
	}

	return nil
}

// ParseTokenDuration returns the lifetime of an access token.
func (c *Config) ParseTokenDuration() time.Duration {
	result, err := time.ParseDuration(c.TokenDuration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse token duration: %v\n", err)
		os.Exit(1)
	}

	return result
}

// ParseProfileCacheTTL returns TTL for the profile cache.
func (c *Config) ParseProfileCacheTTL() time.Duration {
	result, err := time.ParseDuration(c.ProfileCacheTTL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse profile cache ttl: %v\n", err)
		os.Exit(1)
	}

	return result
}
