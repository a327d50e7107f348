package store

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is the PRAGMA user_version the migrations reach.
const SchemaVersion = 2

func (db *DB) migrate() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var version int
	if err := tx.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return err
	}
	if version > SchemaVersion {
		return fmt.Errorf("database schema v%d is newer than supported v%d", version, SchemaVersion)
	}

	for version < SchemaVersion {
		version++
		var err error
		switch version {
		case 1:
			err = applySchemaV1(tx)
		case 2:
			err = applySchemaV2(tx)
		default:
			err = fmt.Errorf("unknown schema version: %d", version)
		}
		if err != nil {
			return fmt.Errorf("failed to apply schema v%d: %w", version, err)
		}
	}

	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

// applySchemaV1 creates the interview and answer tables.
func applySchemaV1(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS mock_interviews (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			mock_id TEXT NOT NULL UNIQUE,
			json_mock_resp TEXT NOT NULL,
			job_position TEXT NOT NULL,
			job_desc TEXT NOT NULL,
			job_experience TEXT NOT NULL,
			created_by TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS user_answers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			mock_id_ref TEXT NOT NULL,
			question TEXT NOT NULL,
			correct_ans TEXT NOT NULL DEFAULT '',
			user_ans TEXT NOT NULL DEFAULT '',
			feedback TEXT NOT NULL DEFAULT '',
			rating TEXT NOT NULL DEFAULT '',
			user_email TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);
	`)
	return err
}

// applySchemaV2 records where each rating came from and indexes lookups.
func applySchemaV2(tx *sql.Tx) error {
	_, err := tx.Exec(`
		ALTER TABLE user_answers ADD COLUMN source TEXT NOT NULL DEFAULT '';
		CREATE INDEX IF NOT EXISTS idx_user_answers_mock ON user_answers(mock_id_ref);
		CREATE INDEX IF NOT EXISTS idx_mock_interviews_created_by ON mock_interviews(created_by, created_at);
	`)
	return err
}
