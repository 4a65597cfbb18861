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

// Package notification delivers push notifications about workspace events to
// external chat channels of members.
package notification

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tasklane/tasklane/server/logging"
)

const (
	// DefaultRequestTimeout is the timeout of a single delivery.
	DefaultRequestTimeout = 5 * time.Second

	// DefaultConcurrency is the number of deliveries in flight.
	DefaultConcurrency = 8
)

// Payload is the content delivered to every recipient.
type Payload struct {
	WorkspaceID string `json:"workspaceId"`
	EventType   string `json:"eventType"`
	Text        string `json:"text"`
}

// Sender delivers a payload to one recipient, e.g. a chat id.
type Sender interface {
	Send(ctx context.Context, recipient string, payload Payload) error
}

// Result is the outcome of the delivery to one recipient.
type Result struct {
	Recipient string
	Err       error
}

// Notifier fans a payload out to many recipients through a Sender.
type Notifier struct {
	sender      Sender
	concurrency int
}

// New creates a Notifier that runs at most concurrency deliveries at once.
func New(sender Sender, concurrency int) *Notifier {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	return &Notifier{
		sender:      sender,
		concurrency: concurrency,
	}
}

// Ensure creates a Notifier from the configuration. Without a webhook URL the
// notifier drops every payload.
func Ensure(conf *Config) *Notifier {
	if conf == nil || conf.WebhookURL == "" {
		return New(&DiscardSender{}, DefaultConcurrency)
	}

	logging.DefaultLogger().Infof("notifications are delivered to %s", conf.WebhookURL)
	return New(NewWebhookSender(conf), conf.Concurrency)
}

// Fanout delivers the payload to every recipient and returns one Result per
// recipient in the same order. A failed delivery does not stop the others.
func (n *Notifier) Fanout(ctx context.Context, recipients []string, payload Payload) []Result {
	results := make([]Result, len(recipients))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(n.concurrency)
	for i, recipient := range recipients {
		group.Go(func() error {
			results[i] = Result{
				Recipient: recipient,
				Err:       n.sender.Send(ctx, recipient, payload),
			}
			return nil
		})
	}
	_ = group.Wait()

	return results
}

// DiscardSender drops every payload.
type DiscardSender struct{}

// Send does nothing.
func (s *DiscardSender) Send(_ context.Context, _ string, _ Payload) error {
	return nil
}
