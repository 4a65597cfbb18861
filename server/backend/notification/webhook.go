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
	"context"
	"fmt"

	"github.com/imroc/req/v3"

	"github.com/tasklane/tasklane/internal/version"
	"github.com/tasklane/tasklane/pkg/errors"
)

// ErrDeliveryFailed is returned when the webhook answers with an error status.
var ErrDeliveryFailed = errors.Unavailable("notification delivery failed").WithCode("ErrDeliveryFailed")

// WebhookSender posts every delivery as JSON to a webhook.
type WebhookSender struct {
	client *req.Client
	url    string
}

// webhookRequest is the body posted to the webhook.
type webhookRequest struct {
	Recipient string  `json:"recipient"`
	Payload   Payload `json:"payload"`
}

// NewWebhookSender creates a WebhookSender from the configuration.
func NewWebhookSender(conf *Config) *WebhookSender {
	client := req.C().
		SetUserAgent("tasklane/"+version.Version).
		SetTimeout(conf.ParseRequestTimeout()).
		SetCommonRetryCount(conf.MaxRetries).
		SetCommonRetryBackoffInterval(DefaultRequestTimeout/10, DefaultRequestTimeout).
		SetCommonRetryCondition(func(resp *req.Response, err error) bool {
			return err != nil || resp.StatusCode >= 500
		})
	if conf.WebhookToken != "" {
		client.SetCommonBearerAuthToken(conf.WebhookToken)
	}

	return &WebhookSender{
		client: client,
		url:    conf.WebhookURL,
	}
}

// Send posts the payload for the recipient.
func (s *WebhookSender) Send(ctx context.Context, recipient string, payload Payload) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(&webhookRequest{Recipient: recipient, Payload: payload}).
		Post(s.url)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}

	if resp.IsErrorState() {
		return fmt.Errorf("send notification: status %d: %w", resp.StatusCode, ErrDeliveryFailed)
	}

	return nil
}
