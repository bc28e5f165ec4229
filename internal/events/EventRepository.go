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

// Repository stores the raw events of a log. Derived data such as job intervals is never stored.
type Repository interface {
	AddBatch(events []Event) error
	// ReplaceAll deletes every stored event and stores events instead, in one transaction.
	ReplaceAll(events []Event) error
	// All returns every stored event in insertion order.
	All() ([]Event, error)
}
