package events

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackbister/jobsuck/internal/parser"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, name, content string) string {
	p := filepath.Join(t.TempDir(), name)
	err := os.WriteFile(p, []byte(content), 0o644)
	if err != nil {
		t.Fatalf("got error when writing test file: %v", err)
	}
	return p
}

func defaultOptions() LoadOptions {
	return LoadOptions{TimeParser: parser.TimeParser{Location: time.UTC}}
}

func TestLoadFile(t *testing.T) {
	p := writeFile(t, "job_log.csv", loggerHeader+"2024-03-05 14:22:07.000,7,build,\"make all\",1,0,0,-1,0,SUBMITTED\n")
	tbl, err := LoadFile(p, defaultOptions(), zap.NewNop())
	if err != nil {
		t.Fatalf("got unexpected error: %v", err)
	}
	if tbl.Len() != 1 {
		t.Fatalf("expected 1 event but got %v", tbl.Len())
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.csv"), defaultOptions(), zap.NewNop())
	var notFound *SourceNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected SourceNotFoundError but got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected the error to wrap os.ErrNotExist, got %v", err)
	}
}

func TestLoadFile_Directory(t *testing.T) {
	_, err := LoadFile(t.TempDir(), defaultOptions(), zap.NewNop())
	var notFound *SourceNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected SourceNotFoundError but got %v", err)
	}
}

func TestLoadFile_Empty(t *testing.T) {
	for _, content := range []string{"", loggerHeader} {
		p := writeFile(t, "job_log.csv", content)
		_, err := LoadFile(p, defaultOptions(), zap.NewNop())
		var empty *EmptyLogError
		if !errors.As(err, &empty) {
			t.Fatalf("expected EmptyLogError for content %q but got %v", content, err)
		}
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	p := writeFile(t, "job_log.csv", "JobID,Event\n1,SUBMITTED\n")
	_, err := LoadFile(p, defaultOptions(), zap.NewNop())
	var malformed *MalformedLogError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedLogError but got %v", err)
	}
}

func TestLoadFile_Database(t *testing.T) {
	p := filepath.Join(t.TempDir(), "events.db")
	db, err := sql.Open("sqlite3", "file:"+p)
	if err != nil {
		t.Fatalf("got error when opening database: %v", err)
	}
	repo, err := SqliteRepository(db, zap.NewNop())
	if err != nil {
		t.Fatalf("got error when creating repo: %v", err)
	}
	err = repo.AddBatch([]Event{
		{JobId: "1", Kind: KindSubmitted, Timestamp: time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)},
		{JobId: "1", Kind: KindStarted, Timestamp: time.Date(2024, 3, 5, 14, 0, 1, 0, time.UTC)},
	})
	if err != nil {
		t.Fatalf("got error when adding events: %v", err)
	}
	db.Close()

	tbl, err := LoadFile(p, defaultOptions(), zap.NewNop())
	if err != nil {
		t.Fatalf("got unexpected error: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("expected 2 events but got %v", tbl.Len())
	}
}

func TestLoadFile_EmptyDatabase(t *testing.T) {
	p := filepath.Join(t.TempDir(), "events.sqlite")
	db, err := sql.Open("sqlite3", "file:"+p)
	if err != nil {
		t.Fatalf("got error when opening database: %v", err)
	}
	_, err = SqliteRepository(db, zap.NewNop())
	if err != nil {
		t.Fatalf("got error when creating repo: %v", err)
	}
	db.Close()

	_, err = LoadFile(p, defaultOptions(), zap.NewNop())
	var empty *EmptyLogError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyLogError but got %v", err)
	}
}

func TestLoadFile_ForeignDatabaseIsNotModified(t *testing.T) {
	p := filepath.Join(t.TempDir(), "other.db")
	db, err := sql.Open("sqlite3", "file:"+p)
	if err != nil {
		t.Fatalf("got error when opening database: %v", err)
	}
	_, err = db.Exec("CREATE TABLE Foo (id INTEGER);")
	if err != nil {
		t.Fatalf("got error when creating table: %v", err)
	}
	db.Close()

	_, err = LoadFile(p, defaultOptions(), zap.NewNop())
	var malformed *MalformedLogError
	if !errors.As(err, &malformed) || !errors.Is(err, ErrNoJobEventsTable) {
		t.Fatalf("expected MalformedLogError wrapping ErrNoJobEventsTable but got %v", err)
	}

	db, err = sql.Open("sqlite3", "file:"+p)
	if err != nil {
		t.Fatalf("got error when reopening database: %v", err)
	}
	defer db.Close()
	rows, err := db.Query("SELECT name FROM sqlite_master ORDER BY name;")
	if err != nil {
		t.Fatalf("got error when listing schema: %v", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		err = rows.Scan(&name)
		if err != nil {
			t.Fatalf("got error when scanning schema: %v", err)
		}
		names = append(names, name)
	}
	if len(names) != 1 || names[0] != "Foo" {
		t.Fatalf("expected the schema to be unchanged, got %v", names)
	}
}

func TestLoadFile_OnlyRowsWithoutJobId(t *testing.T) {
	p := writeFile(t, "job_log.csv", "JobID,Event,Timestamp\n,SUBMITTED,2024-03-05 14:00:00\n")
	_, err := LoadFile(p, defaultOptions(), zap.NewNop())
	var empty *EmptyLogError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyLogError but got %v", err)
	}
}
