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

package background_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklane/tasklane/server/backend/background"
	"github.com/tasklane/tasklane/server/profiling/prometheus"
)

func TestBackground(t *testing.T) {
	metrics, err := prometheus.NewMetrics()
	require.NoError(t, err)

	t.Run("close waits for attached goroutines test", func(t *testing.T) {
		bg := background.New(metrics)

		var done atomic.Int32
		for range 3 {
			assert.True(t, bg.Attach("test", func(ctx context.Context) {
				done.Add(1)
			}))
		}

		bg.Close()
		assert.Equal(t, int32(3), done.Load())
	})

	t.Run("attach after close test", func(t *testing.T) {
		bg := background.New(metrics)
		bg.Close()

		assert.False(t, bg.Attach("test", func(ctx context.Context) {
			t.Error("must not run")
		}))
	})
}
