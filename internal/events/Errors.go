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

import "fmt"

// MalformedLogError means the log is missing a mandatory column or has a row whose timestamp cannot be parsed.
type MalformedLogError struct {
	Reason string
	// Row is the 1-based data row (not counting the header) that failed, or 0 if the problem is not tied to a row.
	Row int
	Err error
}

func (e *MalformedLogError) Error() string {
	if e.Row > 0 {
		if e.Err != nil {
			return fmt.Sprintf("malformed log: row %d: %s: %v", e.Row, e.Reason, e.Err)
		}
		return fmt.Sprintf("malformed log: row %d: %s", e.Row, e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("malformed log: %s: %v", e.Reason, e.Err)
	}
	return "malformed log: " + e.Reason
}

func (e *MalformedLogError) Unwrap() error {
	return e.Err
}

// SourceNotFoundError means the log file does not exist or could not be read.
type SourceNotFoundError struct {
	Path string
	Err  error
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("could not read log file '%s': %v", e.Path, e.Err)
}

func (e *SourceNotFoundError) Unwrap() error {
	return e.Err
}

// EmptyLogError means the log was read successfully but contained no events.
type EmptyLogError struct {
	Path string
}

func (e *EmptyLogError) Error() string {
	return fmt.Sprintf("no job data found in log file '%s'", e.Path)
}
