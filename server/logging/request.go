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
	"time"

	"go.uber.org/zap/zapcore"

	tlerrors "github.com/tasklane/tasklane/pkg/errors"
)

// LevelOf determines the level an API error is logged with. Client mistakes
// are expected and stay quiet, store and server failures are loud.
func LevelOf(err error) zapcore.Level {
	if err == nil || errors.Is(err, context.Canceled) {
		return zapcore.DebugLevel
	}

	switch tlerrors.StatusOf(err) {
	case tlerrors.ErrCodeInvalidArgument, tlerrors.ErrCodeNotFound, tlerrors.ErrCodeAlreadyExists:
		return zapcore.InfoLevel
	case tlerrors.ErrCodeUnauthenticated, tlerrors.ErrCodePermissionDenied,
		tlerrors.ErrCodeFailedPrecondition, tlerrors.ErrCodeAborted,
		tlerrors.ErrCodeResourceExhausted:
		return zapcore.WarnLevel
	case tlerrors.ErrCodeInternal, tlerrors.ErrCodeUnavailable:
		return zapcore.ErrorLevel
	default:
		return zapcore.ErrorLevel
	}
}

// LogRequest logs a finished API request. Successful requests are only
// logged at debug level.
func LogRequest(logger Logger, route string, status int, duration time.Duration, err error) {
	if err == nil {
		logger.Debugf("API : %q %d %s", route, status, duration)
		return
	}

	logger.Logf(LevelOf(err), "API : %q %d %s => %q", route, status, duration, err)
}
