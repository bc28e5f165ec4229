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

package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackbister/jobsuck/internal/events"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// stagedExport is a complete SQLite export in a temporary file next to its destination.
type stagedExport struct {
	path      string
	tmpPath   string
	numEvents int
}

// stageExport writes the events of tbl to a temporary database. The file at filename is not touched until commit.
func stageExport(filename string, tbl *events.EventTable, logger *zap.Logger) (*stagedExport, error) {
	tmp, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create export database next to '%s': %w", filename, err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	err = writeExport(tmpPath, tbl, logger)
	if err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to export events to '%s': %w", filename, err)
	}
	return &stagedExport{path: filename, tmpPath: tmpPath, numEvents: tbl.Len()}, nil
}

func writeExport(path string, tbl *events.EventTable, logger *zap.Logger) error {
	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return err
	}
	defer db.Close()
	repo, err := events.SqliteRepository(db, logger.Named("SqliteEventRepository"))
	if err != nil {
		return err
	}
	return repo.ReplaceAll(tbl.Events())
}

// commit replaces the destination with the staged export, so an earlier export at the same path is overwritten.
func (s *stagedExport) commit(logger *zap.Logger) error {
	err := os.Rename(s.tmpPath, s.path)
	if err != nil {
		os.Remove(s.tmpPath)
		return fmt.Errorf("failed to move export database to '%s': %w", s.path, err)
	}
	logger.Info("exported job events", zap.String("fileName", s.path), zap.Int("numEvents", s.numEvents))
	return nil
}

func (s *stagedExport) discard() {
	os.Remove(s.tmpPath)
}
