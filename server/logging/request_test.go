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

package logging

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"

	tlerrors "github.com/tasklane/tasklane/pkg/errors"
)

func TestLevelOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected zapcore.Level
	}{
		{name: "nil error", err: nil, expected: zapcore.DebugLevel},
		{name: "context canceled", err: context.Canceled, expected: zapcore.DebugLevel},
		{name: "not found", err: tlerrors.NotFound("invite not found"), expected: zapcore.InfoLevel},
		{
			name:     "wrapped precondition",
			err:      fmt.Errorf("accept: %w", tlerrors.FailedPrecond("invite has expired")),
			expected: zapcore.WarnLevel,
		},
		{name: "permission denied", err: tlerrors.PermissionDenied("nope"), expected: zapcore.WarnLevel},
		{name: "unavailable", err: tlerrors.Unavailable("store down"), expected: zapcore.ErrorLevel},
		{name: "plain error", err: errors.New("boom"), expected: zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LevelOf(tt.err))
		})
	}
}

func TestContextLogger(t *testing.T) {
	t.Run("From without logger test", func(t *testing.T) {
		assert.Equal(t, DefaultLogger(), From(context.Background()))
	})

	t.Run("With and From test", func(t *testing.T) {
		logger := New("test", NewField("request_id", "abc"))
		ctx := With(context.Background(), logger)
		assert.Equal(t, logger, From(ctx))
	})

	t.Run("SetLogLevel test", func(t *testing.T) {
		assert.Error(t, SetLogLevel("verbose"))
		assert.NoError(t, SetLogLevel("info"))
		assert.False(t, Enabled(zapcore.DebugLevel))
		assert.True(t, Enabled(zapcore.WarnLevel))
	})
}
