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

// Package background runs the follow-ups of committed operations, such as
// publishing events and sending notifications, outside of the request.
package background

import (
	"context"
	"sync"

	"github.com/rs/xid"

	"github.com/tasklane/tasklane/server/logging"
	"github.com/tasklane/tasklane/server/profiling/prometheus"
)

// Background tracks the goroutines it starts so that shutdown can wait for
// them.
type Background struct {
	// closing is closed by Close.
	closing chan struct{}

	// wgMu keeps Attach from adding to wg while Close waits on it.
	wgMu sync.RWMutex
	wg   sync.WaitGroup

	metrics *prometheus.Metrics
}

// New creates a new background service.
func New(metrics *prometheus.Metrics) *Background {
	return &Background{
		closing: make(chan struct{}),
		metrics: metrics,
	}
}

// Attach runs f on a tracked goroutine with a logger named after the task.
// It returns false if the service is already closed.
func (b *Background) Attach(taskType string, f func(ctx context.Context)) bool {
	b.wgMu.RLock()
	defer b.wgMu.RUnlock()

	select {
	case <-b.closing:
		logging.DefaultLogger().Warnf("background closed, skipping %s", taskType)
		return false
	default:
	}

	b.wg.Add(1)
	logger := logging.New("BG", logging.NewField("task", taskType), logging.NewField("id", xid.New().String()))
	b.metrics.AddBackgroundGoroutines(taskType)

	go func() {
		defer func() {
			b.metrics.RemoveBackgroundGoroutines(taskType)
			b.wg.Done()
		}()
		f(logging.With(context.Background(), logger))
	}()

	return true
}

// Close stops accepting goroutines and waits for the running ones.
func (b *Background) Close() {
	b.wgMu.Lock()
	close(b.closing)
	b.wgMu.Unlock()

	b.wg.Wait()
}
