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

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackbister/jobsuck/internal/parser"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

type LoadOptions struct {
	TimeParser parser.TimeParser
	Csv        parser.CsvParserConfig
}

// IsDatabaseFile reports whether filename is read as a SQLite export instead of as CSV.
func IsDatabaseFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// LoadFile reads a job log and returns its EventTable.
// Every fatal input problem is detected here: the error is a *SourceNotFoundError, *MalformedLogError or *EmptyLogError.
func LoadFile(filename string, opts LoadOptions, logger *zap.Logger) (*EventTable, error) {
	startTime := time.Now()
	fi, err := os.Stat(filename)
	if err != nil {
		return nil, &SourceNotFoundError{Path: filename, Err: err}
	}
	if fi.IsDir() {
		return nil, &SourceNotFoundError{Path: filename, Err: errors.New("is a directory")}
	}

	var tbl *EventTable
	if IsDatabaseFile(filename) {
		tbl, err = loadDatabase(filename, logger)
	} else {
		tbl, err = loadCsv(filename, opts)
	}
	if err != nil {
		return nil, err
	}
	if skipped := tbl.SkippedRows(); len(skipped) > 0 {
		logger.Warn("skipped rows without a job id or event kind",
			zap.String("fileName", filename),
			zap.Int("numRows", len(skipped)),
			zap.Ints("rows", skipped))
	}
	if tbl.Len() == 0 {
		return nil, &EmptyLogError{Path: filename}
	}
	logger.Info("loaded job log",
		zap.String("fileName", filename),
		zap.Int("numEvents", tbl.Len()),
		zap.Stringer("duration", time.Since(startTime)))
	return tbl, nil
}

func loadCsv(filename string, opts LoadOptions) (*EventTable, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, &SourceNotFoundError{Path: filename, Err: err}
	}
	defer f.Close()
	raw, err := parser.ParseCsv(f, opts.Csv)
	if err != nil {
		return nil, &MalformedLogError{Reason: "invalid csv", Err: err}
	}
	if len(raw.Columns) == 0 {
		return nil, &EmptyLogError{Path: filename}
	}
	return NewEventTable(raw, opts.TimeParser)
}

func loadDatabase(filename string, logger *zap.Logger) (*EventTable, error) {
	db, err := sql.Open("sqlite3", "file:"+filename+"?mode=ro")
	if err != nil {
		return nil, &SourceNotFoundError{Path: filename, Err: err}
	}
	defer db.Close()
	repo, err := ExistingSqliteRepository(db, logger.Named("SqliteEventRepository"))
	if err != nil {
		return nil, &MalformedLogError{Reason: "not a job events database", Err: err}
	}
	evts, err := repo.All()
	if err != nil {
		return nil, &MalformedLogError{Reason: "failed to read job events database", Err: err}
	}
	return TableFromEvents(evts), nil
}
