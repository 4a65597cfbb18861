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

package server

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tasklane/tasklane/server/backend"
	"github.com/tasklane/tasklane/server/backend/database/firestore"
	"github.com/tasklane/tasklane/server/backend/database/mongo"
	"github.com/tasklane/tasklane/server/backend/housekeeping"
	"github.com/tasklane/tasklane/server/backend/messagebroker"
	"github.com/tasklane/tasklane/server/backend/notification"
	"github.com/tasklane/tasklane/server/profiling"
	"github.com/tasklane/tasklane/server/rpc"
)

// Below are the values of the default values of Tasklane config.
const (
	DefaultRPCPort            = 8080
	DefaultRPCMaxRequestBytes = 4 * 1024 * 1024
	DefaultRPCShutdownTimeout = 10 * time.Second
	DefaultProfilingPort      = 8081

	DefaultHousekeepingSchedule           = "@every 1h"
	DefaultHousekeepingInviteRetention    = 30 * 24 * time.Hour
	DefaultHousekeepingExpiredInviteGrace = 7 * 24 * time.Hour

	DefaultSecretKey             = "tasklane-secret"
	DefaultTokenDuration         = 24 * time.Hour
	DefaultProfileCacheSize      = 1000
	DefaultProfileCacheTTL       = time.Minute
	DefaultEnrichmentConcurrency = 8

	DefaultMongoConnectionURI                = "mongodb://localhost:27017"
	DefaultMongoConnectionTimeout            = 5 * time.Second
	DefaultMongoPingTimeout                  = 5 * time.Second
	DefaultMongoDatabase                     = "tasklane"
	DefaultMongoMonitoringSlowQueryThreshold = 100 * time.Millisecond

	DefaultFirestoreConnectionTimeout = 10 * time.Second

	DefaultKafkaTopic        = "workspace-events"
	DefaultKafkaWriteTimeout = 5 * time.Second

	DefaultNotificationRequestTimeout = 3 * time.Second
	DefaultNotificationMaxRetries     = 3
	DefaultNotificationConcurrency    = 8
)

// Config is the configuration for creating a Tasklane instance.
type Config struct {
	RPC          *rpc.Config           `yaml:"RPC"`
	Profiling    *profiling.Config     `yaml:"Profiling"`
	Housekeeping *housekeeping.Config  `yaml:"Housekeeping"`
	Backend      *backend.Config       `yaml:"Backend"`
	Mongo        *mongo.Config         `yaml:"Mongo"`
	Firestore    *firestore.Config     `yaml:"Firestore"`
	Kafka        *messagebroker.Config `yaml:"Kafka"`
	Notification *notification.Config  `yaml:"Notification"`
}

// NewConfig returns a Config struct that contains reasonable defaults
// for most of the configurations.
func NewConfig() *Config {
	return newConfig(DefaultRPCPort, DefaultProfilingPort)
}

// NewConfigFromFile returns a Config struct for the given conf file.
func NewConfigFromFile(path string) (*Config, error) {
	conf := &Config{}
	bytes, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err = yaml.Unmarshal(bytes, conf); err != nil {
		return nil, fmt.Errorf("unmarshal config file: %w", err)
	}

	conf.ensureDefaultValue()
	return conf, nil
}

// RPCAddr returns the RPC address.
func (c *Config) RPCAddr() string {
	return fmt.Sprintf("localhost:%d", c.RPC.Port)
}

// Validate returns an error if the provided Config is invalidated.
func (c *Config) Validate() error {
	if err := c.RPC.Validate(); err != nil {
		return err
	}

	if err := c.Profiling.Validate(); err != nil {
		return err
	}

	if err := c.Housekeeping.Validate(); err != nil {
		return err
	}

	if err := c.Backend.Validate(); err != nil {
		return err
	}

	if c.Mongo != nil {
		if err := c.Mongo.Validate(); err != nil {
			return err
		}
	}

	if c.Firestore != nil {
		if err := c.Firestore.Validate(); err != nil {
			return err
		}
	}

	if c.RPC.FirebaseAuth && c.Firestore == nil {
		return fmt.Errorf(`"--rpc-firebase-auth" flag requires the firestore configuration`)
	}

	if c.Kafka != nil {
		if err := c.Kafka.Validate(); err != nil {
			return err
		}
	}

	if err := c.Notification.Validate(); err != nil {
		return err
	}

	return nil
}

// ensureDefaultValue sets the value of the option to which the default value
// should be applied when the user does not input it.
func (c *Config) ensureDefaultValue() {
	defaults := NewConfig()
	if c.RPC == nil {
		c.RPC = defaults.RPC
	}
	if c.Profiling == nil {
		c.Profiling = defaults.Profiling
	}
	if c.Housekeeping == nil {
		c.Housekeeping = defaults.Housekeeping
	}
	if c.Backend == nil {
		c.Backend = defaults.Backend
	}
	if c.Notification == nil {
		c.Notification = defaults.Notification
	}

	if c.RPC.Port == 0 {
		c.RPC.Port = DefaultRPCPort
	}
	if c.RPC.MaxRequestBytes == 0 {
		c.RPC.MaxRequestBytes = DefaultRPCMaxRequestBytes
	}
	if c.RPC.ShutdownTimeout == "" {
		c.RPC.ShutdownTimeout = DefaultRPCShutdownTimeout.String()
	}

	if c.Profiling.Port == 0 {
		c.Profiling.Port = DefaultProfilingPort
	}

	if c.Housekeeping.Schedule == "" {
		c.Housekeeping.Schedule = DefaultHousekeepingSchedule
	}
	if c.Housekeeping.InviteRetention == "" {
		c.Housekeeping.InviteRetention = DefaultHousekeepingInviteRetention.String()
	}
	if c.Housekeeping.ExpiredInviteGrace == "" {
		c.Housekeeping.ExpiredInviteGrace = DefaultHousekeepingExpiredInviteGrace.String()
	}

	if c.Backend.SecretKey == "" {
		c.Backend.SecretKey = DefaultSecretKey
	}
	if c.Backend.TokenDuration == "" {
		c.Backend.TokenDuration = DefaultTokenDuration.String()
	}
	if c.Backend.ProfileCacheSize == 0 {
		c.Backend.ProfileCacheSize = DefaultProfileCacheSize
	}
	if c.Backend.ProfileCacheTTL == "" {
		c.Backend.ProfileCacheTTL = DefaultProfileCacheTTL.String()
	}
	if c.Backend.EnrichmentConcurrency == 0 {
		c.Backend.EnrichmentConcurrency = DefaultEnrichmentConcurrency
	}

	if c.Mongo != nil {
		if c.Mongo.ConnectionURI == "" {
			c.Mongo.ConnectionURI = DefaultMongoConnectionURI
		}
		if c.Mongo.ConnectionTimeout == "" {
			c.Mongo.ConnectionTimeout = DefaultMongoConnectionTimeout.String()
		}
		if c.Mongo.Database == "" {
			c.Mongo.Database = DefaultMongoDatabase
		}
		if c.Mongo.PingTimeout == "" {
			c.Mongo.PingTimeout = DefaultMongoPingTimeout.String()
		}
		if c.Mongo.MonitoringEnabled && c.Mongo.MonitoringSlowQueryThreshold == "" {
			c.Mongo.MonitoringSlowQueryThreshold = DefaultMongoMonitoringSlowQueryThreshold.String()
		}
	}

	if c.Firestore != nil && c.Firestore.ConnectionTimeout == "" {
		c.Firestore.ConnectionTimeout = DefaultFirestoreConnectionTimeout.String()
	}

	if c.Kafka != nil && c.Kafka.Addresses != "" {
		if c.Kafka.Topic == "" {
			c.Kafka.Topic = DefaultKafkaTopic
		}
		if c.Kafka.WriteTimeout == "" {
			c.Kafka.WriteTimeout = DefaultKafkaWriteTimeout.String()
		}
	}

	if c.Notification.RequestTimeout == "" {
		c.Notification.RequestTimeout = DefaultNotificationRequestTimeout.String()
	}
	if c.Notification.MaxRetries == 0 {
		c.Notification.MaxRetries = DefaultNotificationMaxRetries
	}
	if c.Notification.Concurrency == 0 {
		c.Notification.Concurrency = DefaultNotificationConcurrency
	}
}

func newConfig(port int, profilingPort int) *Config {
	return &Config{
		RPC: &rpc.Config{
			Port:            port,
			MaxRequestBytes: DefaultRPCMaxRequestBytes,
			ShutdownTimeout: DefaultRPCShutdownTimeout.String(),
		},
		Profiling: &profiling.Config{
			Port: profilingPort,
		},
		Housekeeping: &housekeeping.Config{
			Schedule:           DefaultHousekeepingSchedule,
			InviteRetention:    DefaultHousekeepingInviteRetention.String(),
			ExpiredInviteGrace: DefaultHousekeepingExpiredInviteGrace.String(),
		},
		Backend: &backend.Config{
			SecretKey:             DefaultSecretKey,
			TokenDuration:         DefaultTokenDuration.String(),
			ProfileCacheSize:      DefaultProfileCacheSize,
			ProfileCacheTTL:       DefaultProfileCacheTTL.String(),
			EnrichmentConcurrency: DefaultEnrichmentConcurrency,
		},
		Notification: &notification.Config{
			RequestTimeout: DefaultNotificationRequestTimeout.String(),
			MaxRetries:     DefaultNotificationMaxRetries,
			Concurrency:    DefaultNotificationConcurrency,
		},
	}
}
