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

package cache

import (
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Stats counts the lookups of a cache.
type Stats struct {
	hits   atomic.Int64
	misses atomic.Int64
}

// Hits returns the number of lookups that found a live entry.
func (s *Stats) Hits() int64 {
	return s.hits.Load()
}

// Misses returns the number of lookups that found nothing.
func (s *Stats) Misses() int64 {
	return s.misses.Load()
}

// HitRate returns the share of hits in percent.
func (s *Stats) HitRate() float64 {
	total := s.Hits() + s.Misses()
	if total == 0 {
		return 0
	}
	return float64(s.Hits()) / float64(total) * 100
}

// LRUWithExpires is an expirable LRU that counts its hits and misses.
type LRUWithExpires[K comparable, V any] struct {
	cache *expirable.LRU[K, V]
	stats *Stats
	name  string
}

// NewLRUWithExpires creates a new expirable LRU with the given size and ttl.
func NewLRUWithExpires[K comparable, V any](
	size int,
	ttl time.Duration,
	name string,
) (*LRUWithExpires[K, V], error) {
	if size <= 0 {
		return nil, ErrInvalidCacheSize
	}

	return &LRUWithExpires[K, V]{
		cache: expirable.NewLRU[K, V](size, nil, ttl),
		stats: &Stats{},
		name:  name,
	}, nil
}

// Get returns the live value of the key.
func (c *LRUWithExpires[K, V]) Get(key K) (V, bool) {
	value, ok := c.cache.Get(key)
	if ok {
		c.stats.hits.Add(1)
	} else {
		c.stats.misses.Add(1)
	}
	return value, ok
}

// Add stores the value and reports whether an entry was evicted.
func (c *LRUWithExpires[K, V]) Add(key K, value V) bool {
	return c.cache.Add(key, value)
}

// Remove drops the key.
func (c *LRUWithExpires[K, V]) Remove(key K) bool {
	return c.cache.Remove(key)
}

// Purge clears all entries from the cache.
func (c *LRUWithExpires[K, V]) Purge() {
	c.cache.Purge()
}

// Len returns the number of items in the cache.
func (c *LRUWithExpires[K, V]) Len() int {
	return c.cache.Len()
}

// Stats returns the cache statistics.
func (c *LRUWithExpires[K, V]) Stats() *Stats {
	return c.stats
}

// Name returns the cache name.
func (c *LRUWithExpires[K, V]) Name() string {
	return c.name
}
