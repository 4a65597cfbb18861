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

package types

import (
	gotime "time"
)

// CanonicalZone is the fixed UTC+3 zone every generated timestamp is expressed
// in, independent of the server locale.
var CanonicalZone = gotime.FixedZone("UTC+3", 3*60*60)

// Now returns the current time in the canonical zone.
func Now() gotime.Time {
	return gotime.Now().In(CanonicalZone)
}

// InCanonicalZone converts the given time into the canonical zone.
func InCanonicalZone(t gotime.Time) gotime.Time {
	return t.In(CanonicalZone)
}
