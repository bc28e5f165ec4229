// Copyright 2021 Jack Bister
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Eight columns per row keeps a full batch well below SQLite's limit on bound variables.
const insertBatchSize = 1000

type sqliteRepository struct {
	db *sql.DB

	logger *zap.Logger
}

func SqliteRepository(db *sql.DB, logger *zap.Logger) (Repository, error) {
	_, err := db.Exec("CREATE TABLE IF NOT EXISTS JobEvents (id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT, job_id TEXT NOT NULL, event TEXT NOT NULL, timestamp DATETIME NOT NULL, job_name TEXT NOT NULL, core_id INTEGER NULL, duration_ms REAL NULL, raw_duration TEXT NOT NULL, attributes TEXT NULL);")
	if err != nil {
		return nil, fmt.Errorf("error creating job events table: %w", err)
	}
	_, err = db.Exec("CREATE INDEX IF NOT EXISTS IX_JobEvents_JobId ON JobEvents(job_id);")
	if err != nil {
		return nil, fmt.Errorf("error creating job events job_id index: %w", err)
	}
	return &sqliteRepository{
		db:     db,
		logger: logger,
	}, nil
}

// ErrNoJobEventsTable is returned when a database was not written by SqliteRepository.
var ErrNoJobEventsTable = errors.New("database has no JobEvents table")

// ExistingSqliteRepository wraps a database that already contains the JobEvents table, without touching its schema.
// It is meant for reading: db may be opened read-only.
func ExistingSqliteRepository(db *sql.DB, logger *zap.Logger) (Repository, error) {
	var name string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'JobEvents';").Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoJobEventsTable
	}
	if err != nil {
		return nil, fmt.Errorf("error looking up JobEvents table: %w", err)
	}
	return &sqliteRepository{
		db:     db,
		logger: logger,
	}, nil
}

const esbBase = "INSERT INTO JobEvents (job_id, event, timestamp, job_name, core_id, duration_ms, raw_duration, attributes) VALUES "
const esbPerEvt = "(?, ?, ?, ?, ?, ?, ?, ?)"

func (repo *sqliteRepository) AddBatch(events []Event) error {
	if len(events) == 0 {
		return nil
	}
	return repo.write(events, false)
}

func (repo *sqliteRepository) ReplaceAll(events []Event) error {
	return repo.write(events, true)
}

func (repo *sqliteRepository) write(events []Event, replace bool) error {
	startTime := time.Now()
	tx, err := repo.db.BeginTx(context.TODO(), nil)
	if err != nil {
		return fmt.Errorf("error starting transaction for adding event batch: %w", err)
	}
	if replace {
		_, err = tx.Exec("DELETE FROM JobEvents;")
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("error deleting existing events from JobEvents table: %w", err)
		}
	}
	for start := 0; start < len(events); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(events) {
			end = len(events)
		}
		chunk := events[start:end]
		var sb strings.Builder
		sb.Grow(len(esbBase) + (len(esbPerEvt)+1)*len(chunk))
		sb.WriteString(esbBase)
		args := make([]interface{}, 0, 8*len(chunk))
		for i, evt := range chunk {
			sb.WriteString(esbPerEvt)
			if i != len(chunk)-1 {
				sb.WriteRune(',')
			}
			var coreId interface{}
			if evt.CoreId != nil {
				coreId = *evt.CoreId
			}
			var durationMs interface{}
			if evt.DurationMs != nil {
				durationMs = *evt.DurationMs
			}
			var attributes interface{}
			if len(evt.Attributes) > 0 {
				b, err := json.Marshal(evt.Attributes)
				if err != nil {
					tx.Rollback()
					return fmt.Errorf("error serializing attributes for jobId=%v: %w", evt.JobId, err)
				}
				attributes = string(b)
			}
			args = append(args, evt.JobId, string(evt.Kind), evt.Timestamp, evt.JobName, coreId, durationMs, evt.RawDuration, attributes)
		}
		_, err = tx.Exec(sb.String(), args...)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("error adding event batch to JobEvents table: %w", err)
		}
	}
	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("error committing event batch: %w", err)
	}
	repo.logger.Info("added events",
		zap.Int("numEvents", len(events)),
		zap.Bool("replaced", replace),
		zap.Stringer("duration", time.Since(startTime)))
	return nil
}

func (repo *sqliteRepository) All() ([]Event, error) {
	rows, err := repo.db.Query("SELECT job_id, event, timestamp, job_name, core_id, duration_ms, raw_duration, attributes FROM JobEvents ORDER BY id ASC;")
	if err != nil {
		return nil, fmt.Errorf("error querying JobEvents table: %w", err)
	}
	defer rows.Close()
	ret := []Event{}
	for rows.Next() {
		var evt Event
		var kind string
		var coreId sql.NullInt64
		var durationMs sql.NullFloat64
		var attributes sql.NullString
		err := rows.Scan(&evt.JobId, &kind, &evt.Timestamp, &evt.JobName, &coreId, &durationMs, &evt.RawDuration, &attributes)
		if err != nil {
			return nil, fmt.Errorf("error scanning row from JobEvents table: %w", err)
		}
		evt.Kind = Kind(kind)
		if coreId.Valid {
			c := int(coreId.Int64)
			evt.CoreId = &c
		}
		if durationMs.Valid {
			d := durationMs.Float64
			evt.DurationMs = &d
		}
		if attributes.Valid && attributes.String != "" {
			err = json.Unmarshal([]byte(attributes.String), &evt.Attributes)
			if err != nil {
				repo.logger.Warn("failed to deserialize event attributes, will ignore them",
					zap.String("jobId", evt.JobId), zap.Error(err))
				evt.Attributes = nil
			}
		}
		ret = append(ret, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading rows from JobEvents table: %w", err)
	}
	return ret, nil
}
