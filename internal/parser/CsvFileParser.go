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
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Table is the raw tabular content of a log: a header row and the data rows below it.
// Rows may be shorter or longer than Columns.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the index of the named column or -1 if the table has no such column.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the trimmed value of column idx in row, or the empty string if the row is too short or idx is -1.
func (t *Table) Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

type CsvParserConfig struct {
	// Delimiter defaults to ',' when zero.
	Delimiter rune
}

// ParseCsv reads a header row followed by any number of data rows.
// An input without even a header row results in a Table with no columns and no rows.
func ParseCsv(input io.Reader, cfg CsvParserConfig) (*Table, error) {
	rdr := csv.NewReader(bufio.NewReader(input))
	if cfg.Delimiter != 0 {
		rdr.Comma = cfg.Delimiter
	}
	rdr.FieldsPerRecord = -1
	rdr.LazyQuotes = true
	header, err := rdr.Read()
	if errors.Is(err, io.EOF) {
		return &Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	ret := Table{
		Columns: make([]string, len(header)),
		Rows:    [][]string{},
	}
	for i, h := range header {
		if i == 0 {
			// Spreadsheets that re-save the log add a BOM.
			h = strings.TrimPrefix(h, "\ufeff")
		}
		ret.Columns[i] = strings.TrimSpace(h)
	}
	for {
		fields, err := rdr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			continue
		}
		ret.Rows = append(ret.Rows, fields)
	}
	return &ret, nil
}
