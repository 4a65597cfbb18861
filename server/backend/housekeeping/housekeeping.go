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

package housekeeping

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/tasklane/tasklane/api/types"
	"github.com/tasklane/tasklane/server/logging"
	"github.com/tasklane/tasklane/server/profiling/prometheus"
)

// Task is a unit of housekeeping work.
type Task func(ctx context.Context) error

// Housekeeping is the housekeeping service. It runs every registered task on
// the configured schedule. A run is skipped while the previous run of the
// same task is still in progress.
type Housekeeping struct {
	schedule string
	cron     *cron.Cron
	metrics  *prometheus.Metrics

	ctx        context.Context
	cancelFunc context.CancelFunc
}

// New creates a new housekeeping instance.
func New(conf *Config, metrics *prometheus.Metrics) (*Housekeeping, error) {
	if _, err := cron.ParseStandard(conf.Schedule); err != nil {
		return nil, fmt.Errorf("parse schedule %s: %w", conf.Schedule, err)
	}

	ctx, cancelFunc := context.WithCancel(context.Background())

	return &Housekeeping{
		schedule: conf.Schedule,
		cron:     cron.New(cron.WithLocation(types.CanonicalZone)),
		metrics:  metrics,

		ctx:        ctx,
		cancelFunc: cancelFunc,
	}, nil
}

// RegisterTask registers the task under the given name.
func (h *Housekeeping) RegisterTask(name string, task Task) error {
	job := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(func() {
		h.run(name, task)
	}))

	if _, err := h.cron.AddJob(h.schedule, job); err != nil {
		return fmt.Errorf("register housekeeping task %s: %w", name, err)
	}

	return nil
}

// Start starts the scheduler.
func (h *Housekeeping) Start() error {
	h.cron.Start()
	logging.DefaultLogger().Infof("housekeeping started, schedule: %s", h.schedule)
	return nil
}

// Stop cancels running tasks and waits for them to return.
func (h *Housekeeping) Stop() error {
	h.cancelFunc()
	<-h.cron.Stop().Done()

	return nil
}

func (h *Housekeeping) run(name string, task Task) {
	logger := logging.New("HSKP", logging.NewField("task", name))
	ctx := logging.With(h.ctx, logger)

	if err := task(ctx); err != nil {
		h.metrics.AddHousekeepingRun(name, "failed")
		logger.Errorf("housekeeping task failed: %v", err)
		return
	}

	h.metrics.AddHousekeepingRun(name, "ok")
}
