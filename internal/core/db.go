package core

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const dbFileName = "journal.sqlite"

func dbPath(root string) string {
	return filepath.Join(root, dataDirName, dbFileName)
}

func ensureDataDir(root string) (string, error) {
	dir := filepath.Join(root, dataDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func openDBAt(path string) (*sql.DB, error) {
	return sql.Open("sqlite", fmt.Sprintf("file:%s", path))
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          INTEGER PRIMARY KEY,
			from_path   TEXT NOT NULL,
			to_path     TEXT NOT NULL,
			status      TEXT NOT NULL,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS edits (
			id           INTEGER PRIMARY KEY,
			run_id       INTEGER NOT NULL,
			file         TEXT NOT NULL,
			start_offset INTEGER NOT NULL,
			end_offset   INTEGER NOT NULL,
			old_text     TEXT NOT NULL,
			new_text     TEXT NOT NULL,
			FOREIGN KEY(run_id) REFERENCES runs(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_edits_run ON edits(run_id);`,
		`CREATE INDEX IF NOT EXISTS idx_edits_file ON edits(file);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
