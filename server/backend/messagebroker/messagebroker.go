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

// Package messagebroker publishes workspace membership events to Kafka.
package messagebroker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tasklane/tasklane/api/types/events"
	"github.com/tasklane/tasklane/server/logging"
)

// Message represents a message that can be sent to the message broker.
type Message interface {
	Key() string
	Marshal() ([]byte, error)
}

// WorkspaceEventMessage represents a change of the membership of a workspace.
type WorkspaceEventMessage struct {
	WorkspaceID string                    `json:"workspace_id"`
	EventType   events.WorkspaceEventType `json:"event_type"`
	ActorID     string                    `json:"actor_id,omitempty"`
	UserID      string                    `json:"user_id,omitempty"`
	Role        string                    `json:"role,omitempty"`
	Timestamp   time.Time                 `json:"timestamp"`
}

// Key returns the partition key of the message.
func (m WorkspaceEventMessage) Key() string {
	return m.WorkspaceID
}

// Marshal marshals the workspace event message to JSON.
func (m WorkspaceEventMessage) Marshal() ([]byte, error) {
	encoded, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	return encoded, nil
}

// Broker is an interface for the message broker.
type Broker interface {
	Produce(ctx context.Context, msg Message) error
	Close() error
}

// Ensure creates a message broker based on the given configuration. If the
// configuration is nil or invalid, it returns a DummyBroker so that callers
// can produce without nil checks.
func Ensure(kafkaConf *Config) Broker {
	if kafkaConf == nil {
		return &DummyBroker{}
	}

	if err := kafkaConf.Validate(); err != nil {
		logging.DefaultLogger().Warnf("invalid kafka configuration: %v", err)
		return &DummyBroker{}
	}

	logging.DefaultLogger().Infof(
		"connecting to kafka: %s, topic: %s",
		kafkaConf.Addresses,
		kafkaConf.Topic,
	)

	return newKafkaBroker(kafkaConf)
}
