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

package rpc

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
)

// keepAliveInterval is how often an idle watch stream sends a comment so
// that proxies keep the connection open.
const keepAliveInterval = 30 * time.Second

// latest is a buffer of one value where a newer value replaces an unread
// older one. Watch callbacks never block on slow clients.
type latest[T any] struct {
	ch chan T
}

func newLatest[T any]() *latest[T] {
	return &latest[T]{ch: make(chan T, 1)}
}

// offer stores the value, dropping an unread older one. It must not be
// called concurrently.
func (l *latest[T]) offer(value T) {
	for {
		select {
		case l.ch <- value:
			return
		default:
		}

		select {
		case <-l.ch:
		default:
		}
	}
}

// stream writes every value of the buffer as a server-sent event until the
// client goes away or the server shuts down.
func stream[T any](c *gin.Context, done <-chan struct{}, event string, values *latest[T]) {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case <-done:
			return false
		case value := <-values.ch:
			c.SSEvent(event, value)
			return true
		case <-ticker.C:
			_, err := io.WriteString(w, ": keep-alive\n\n")
			return err == nil
		}
	})
}
