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

package intervals

import "fmt"

const (
	ReasonNoJobName = "no JobName on any event of the job"
	ReasonNoCoreId  = "no CoreID on any event of the job"
)

// Resolved is a field value that was either observed in the log or filled in with a default.
// DefaultReason is empty for observed values.
type Resolved[T any] struct {
	Value         T      `json:"value"`
	DefaultReason string `json:"defaultReason,omitempty"`
}

func Observed[T any](v T) Resolved[T] {
	return Resolved[T]{Value: v}
}

func Defaulted[T any](v T, reason string) Resolved[T] {
	return Resolved[T]{Value: v, DefaultReason: reason}
}

func (r Resolved[T]) IsDefault() bool {
	return r.DefaultReason != ""
}

func (r Resolved[T]) String() string {
	if r.IsDefault() {
		return fmt.Sprintf("%v (default: %s)", r.Value, r.DefaultReason)
	}
	return fmt.Sprint(r.Value)
}
