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

// Package backend provides the backend implementation of Tasklane. It owns
// the database and the other resources every operation needs, and is created
// once at process start.
package backend

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/server/backend/background"
	"github.com/tasklane/tasklane/server/backend/cache"
	"github.com/tasklane/tasklane/server/backend/database"
	"github.com/tasklane/tasklane/server/backend/database/firestore"
	memdb "github.com/tasklane/tasklane/server/backend/database/memory"
	"github.com/tasklane/tasklane/server/backend/database/mongo"
	"github.com/tasklane/tasklane/server/backend/housekeeping"
	"github.com/tasklane/tasklane/server/backend/messagebroker"
	"github.com/tasklane/tasklane/server/backend/notification"
	"github.com/tasklane/tasklane/server/logging"
	"github.com/tasklane/tasklane/server/profiling/prometheus"
)

// Backend manages Tasklane's backend such as Database and the message broker.
type Backend struct {
	Config *Config

	// Cache holds the user profiles looked up by the member directory.
	Cache *cache.Manager

	// Background runs the follow-ups of committed operations.
	Background *background.Background
	// Housekeeping runs scheduled maintenance tasks.
	Housekeeping *housekeeping.Housekeeping

	// Notifier delivers push notifications to members.
	Notifier *notification.Notifier

	// Metrics is used to expose metrics.
	Metrics *prometheus.Metrics
	// DB is the database instance.
	DB database.Database
	// MsgBroker is the message producer instance.
	MsgBroker messagebroker.Broker
}

// New creates a new instance of Backend.
func New(
	conf *Config,
	mongoConf *mongo.Config,
	firestoreConf *firestore.Config,
	housekeepingConf *housekeeping.Config,
	kafkaConf *messagebroker.Config,
	notificationConf *notification.Config,
	metrics *prometheus.Metrics,
) (*Backend, error) {
	// 01. Resolve the hostname of this server.
	if conf.Hostname == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("os.Hostname: %w", err)
		}
		conf.Hostname = hostname
	}

	// 02. Create the profile cache and the background service.
	cacheManager, err := cache.New(cache.Options{
		ProfileCacheSize: conf.ProfileCacheSize,
		ProfileCacheTTL:  conf.ParseProfileCacheTTL(),
	})
	if err != nil {
		return nil, err
	}
	bg := background.New(metrics)

	// 03. Create the database instance. Firestore is preferred over MongoDB,
	// and the memory database is used when neither is configured.
	var db database.Database
	dbInfo := "memory"
	switch {
	case firestoreConf != nil:
		if db, err = firestore.Dial(firestoreConf); err != nil {
			return nil, err
		}
		dbInfo = "firestore:" + firestoreConf.ProjectID
	case mongoConf != nil:
		if db, err = mongo.Dial(mongoConf); err != nil {
			return nil, err
		}
		dbInfo = mongoConf.ConnectionURI
	default:
		if db, err = memdb.New(); err != nil {
			return nil, err
		}
	}

	// 04. Create the housekeeping instance and register its tasks.
	housekeeper, err := newHousekeeping(housekeepingConf, db, metrics)
	if err != nil {
		return nil, err
	}

	// 05. Create the message broker and the notifier.
	broker := messagebroker.Ensure(kafkaConf)
	notifier := notification.Ensure(notificationConf)

	logging.DefaultLogger().Infof("backend created: db: %s", dbInfo)

	return &Backend{
		Config: conf,

		Cache:        cacheManager,
		Background:   bg,
		Housekeeping: housekeeper,
		Notifier:     notifier,

		Metrics:   metrics,
		DB:        db,
		MsgBroker: broker,
	}, nil
}

func newHousekeeping(
	conf *housekeeping.Config,
	db database.Database,
	metrics *prometheus.Metrics,
) (*housekeeping.Housekeeping, error) {
	retention, err := conf.ParseInviteRetention()
	if err != nil {
		return nil, err
	}
	grace, err := conf.ParseExpiredInviteGrace()
	if err != nil {
		return nil, err
	}

	housekeeper, err := housekeeping.New(conf, metrics)
	if err != nil {
		return nil, err
	}

	if err := housekeeper.RegisterTask(
		housekeeping.PurgeStaleInvitesTaskName,
		housekeeping.PurgeStaleInvites(db, metrics, retention, grace),
	); err != nil {
		return nil, err
	}

	return housekeeper, nil
}

// Start starts the backend.
func (b *Backend) Start(_ context.Context) error {
	if err := b.Housekeeping.Start(); err != nil {
		return err
	}

	logging.DefaultLogger().Infof("backend started")
	return nil
}

// Shutdown closes all resources of this instance.
func (b *Backend) Shutdown() error {
	var errs []error

	if err := b.Housekeeping.Stop(); err != nil {
		errs = append(errs, err)
	}

	b.Background.Close()

	if err := b.MsgBroker.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := b.DB.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	logging.DefaultLogger().Infof("backend stopped")
	return nil
}

// PublishWorkspaceEvent produces the event to the message broker and notifies
// the given chat recipients. Both happen in the background; failures are
// logged and never reach the caller.
func (b *Backend) PublishWorkspaceEvent(
	msg messagebroker.WorkspaceEventMessage,
	recipients []string,
	text string,
) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = types.Now()
	}
	b.Metrics.AddWorkspaceEvent(string(msg.EventType))

	b.Background.Attach("publish-workspace-event", func(ctx context.Context) {
		if err := b.MsgBroker.Produce(ctx, msg); err != nil {
			logging.From(ctx).Warnf("produce %s of %s: %v", msg.EventType, msg.WorkspaceID, err)
		}

		if len(recipients) == 0 {
			return
		}

		failed := 0
		for _, result := range b.Notifier.Fanout(ctx, recipients, notification.Payload{
			WorkspaceID: msg.WorkspaceID,
			EventType:   string(msg.EventType),
			Text:        text,
		}) {
			if result.Err != nil {
				failed++
				logging.From(ctx).Warnf("notify %s of %s: %v", result.Recipient, msg.EventType, result.Err)
			}
		}
		b.Metrics.AddNotifications("ok", len(recipients)-failed)
		b.Metrics.AddNotifications("failed", failed)
	})
}
