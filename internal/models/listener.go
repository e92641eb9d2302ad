/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

import "time"

// InvalidationEvent is pushed to websocket clients whenever a mutation marks
// cached views stale. Tags are rendered as "Type:Id" or "Type:*".
type InvalidationEvent struct {
	Seq  uint64    `json:"seq"`
	Tags []string  `json:"tags"`
	At   time.Time `json:"at"`
}
