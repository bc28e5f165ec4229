// Copyright 2024 Jack Bister
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package events

import "time"

// Kind is the lifecycle event name found in the Event column. The set is open, unknown kinds are kept as-is.
type Kind string

const (
	KindSubmitted Kind = "SUBMITTED"
	KindStarted   Kind = "STARTED"
	KindCompleted Kind = "COMPLETED"
	KindFailed    Kind = "FAILED"
	KindKilled    Kind = "KILLED"
)

// KnownKinds is the order in which kinds are listed in reports.
var KnownKinds = []Kind{KindSubmitted, KindStarted, KindCompleted, KindFailed, KindKilled}

// TerminalKinds are ordered by precedence when a job has several terminal events with the same timestamp.
var TerminalKinds = []Kind{KindCompleted, KindFailed, KindKilled}

func (k Kind) IsTerminal() bool {
	for _, t := range TerminalKinds {
		if k == t {
			return true
		}
	}
	return false
}

// TerminalRank returns the tie-break rank of a terminal kind, lower wins. Non-terminal kinds return -1.
func (k Kind) TerminalRank() int {
	for i, t := range TerminalKinds {
		if k == t {
			return i
		}
	}
	return -1
}

// Event is one row of the job log.
type Event struct {
	JobId     string
	Kind      Kind
	Timestamp time.Time

	// JobName is empty when the row has no name.
	JobName string
	// CoreId is nil when the row has no core or the core is not a non-negative integer.
	CoreId *int
	// DurationMs is nil when the duration is missing or not numeric. RawDuration keeps the original text.
	DurationMs  *float64
	RawDuration string

	// Attributes holds the values of any columns beyond the ones above, e.g. Command or Priority.
	Attributes map[string]string
}
