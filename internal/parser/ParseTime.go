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

package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// TimeParser turns the text of a Timestamp column into an absolute time.
// Timestamps that carry no zone information are interpreted in Location.
type TimeParser struct {
	// Layout follows Go's time.Parse style, or one of the special layouts "UNIX", "UNIX_MILLIS" and "UNIX_DECIMAL_NANOS".
	// If Layout is empty the format is detected with dateparse.
	Layout   string
	Location *time.Location
}

func (p TimeParser) Parse(value string) (time.Time, error) {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("failed to parse time: value is empty")
	}
	if p.Layout == "" {
		t, err := dateparse.ParseIn(value, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse time: failed to detect format of value='%s': %w", value, err)
		}
		return t, nil
	}
	return ParseTime(p.Layout, value, loc)
}

func ParseTime(layout string, value string, loc *time.Location) (time.Time, error) {
	if layout == "UNIX" {
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse time: failed to parse value='%s' as int64: %w", value, err)
		}
		return time.Unix(i, 0).In(loc), nil
	} else if layout == "UNIX_MILLIS" {
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse time: failed to parse value='%s' as int64: %w", value, err)
		}
		return time.UnixMilli(i).In(loc), nil
	} else if layout == "UNIX_DECIMAL_NANOS" {
		split := strings.Split(value, ".")
		if len(split) != 2 {
			return time.Time{}, fmt.Errorf("failed to parse time: failed to parse value='%s' as UNIX_DECIMAL_NANOS: unexpected length after splitting on '.'. Got length=%v", value, len(split))
		}
		i0, err := strconv.ParseInt(split[0], 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse time: failed to parse split[0]='%s' as int64: %w", split[0], err)
		}
		i1, err := strconv.ParseInt(split[1], 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse time: failed to parse split[1]='%s' as int64: %w", split[1], err)
		}
		return time.Unix(i0, i1).In(loc), nil
	} else {
		return time.ParseInLocation(layout, value, loc)
	}
}
