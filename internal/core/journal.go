package core

import (
	"database/sql"
	"fmt"
	"os"
	"time"
)

// Run statuses recorded in the journal.
const (
	RunRunning       = "running"
	RunDone          = "done"
	RunAlreadyMoved  = "already_moved"
	RunRewriteFailed = "rewrite_failed"
	RunRenameFailed  = "rename_failed"
	RunInterrupted   = "interrupted"
)

// Journal is the append-only audit trail of applied moves. Every rewritten
// file is recorded right after it is written, so an interrupted run still
// leaves an accurate account of what changed.
type Journal struct {
	db *sql.DB
}

// RunRecord summarizes one journaled move.
type RunRecord struct {
	ID         int64
	From       string
	To         string
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
	Files      int
	Edits      int
}

// EditRecord is one journaled edit.
type EditRecord struct {
	File  string
	Start int
	End   int
	Old   string
	New   string
}

// OpenJournal opens (creating if needed) the journal under root.
func OpenJournal(root string) (*Journal, error) {
	if _, err := ensureDataDir(root); err != nil {
		return nil, err
	}
	db, err := openDBAt(dbPath(root))
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

// OpenExistingJournal opens the journal under root for reading. It fails if
// no move has ever been applied there.
func OpenExistingJournal(root string) (*Journal, error) {
	if _, err := os.Stat(dbPath(root)); os.IsNotExist(err) {
		return nil, fmt.Errorf("journal not found: no move has been applied in %s", root)
	}
	return OpenJournal(root)
}

// Close releases the database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}

// BeginRun records the start of an applied move and returns its id.
func (j *Journal) BeginRun(from, to string, started time.Time) (int64, error) {
	res, err := j.db.Exec(
		`INSERT INTO runs (from_path, to_path, status, started_at) VALUES (?, ?, ?, ?)`,
		from, to, RunRunning, started.Unix())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RecordFile records the edits applied to one file.
func (j *Journal) RecordFile(runID int64, file string, edits []Edit) error {
	tx, err := j.db.Begin()
	if err != nil {
		return err
	}
	for _, e := range edits {
		if _, err := tx.Exec(
			`INSERT INTO edits (run_id, file, start_offset, end_offset, old_text, new_text)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			runID, file, e.Start, e.End, e.Old, e.New); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// FinishRun sets the final status of a run.
func (j *Journal) FinishRun(runID int64, status string, finished time.Time) error {
	_, err := j.db.Exec("UPDATE runs SET status = ?, finished_at = ? WHERE id = ?",
		status, finished.Unix(), runID)
	return err
}

// Runs returns the most recent runs, newest first. limit <= 0 means all.
func (j *Journal) Runs(limit int) ([]RunRecord, error) {
	query := `SELECT r.id, r.from_path, r.to_path, r.status, r.started_at, r.finished_at,
	                 COUNT(DISTINCT e.file), COUNT(e.id)
	          FROM runs r LEFT JOIN edits e ON e.run_id = r.id
	          GROUP BY r.id
	          ORDER BY r.id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		var started int64
		var finished sql.NullInt64
		if err := rows.Scan(&r.ID, &r.From, &r.To, &r.Status, &started, &finished, &r.Files, &r.Edits); err != nil {
			return nil, err
		}
		r.StartedAt = time.Unix(started, 0)
		if finished.Valid {
			r.FinishedAt = time.Unix(finished.Int64, 0)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunEdits returns the edits of one run in the order they were applied.
func (j *Journal) RunEdits(runID int64) ([]EditRecord, error) {
	rows, err := j.db.Query(
		`SELECT file, start_offset, end_offset, old_text, new_text
		 FROM edits WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EditRecord
	for rows.Next() {
		var e EditRecord
		if err := rows.Scan(&e.File, &e.Start, &e.End, &e.Old, &e.New); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
