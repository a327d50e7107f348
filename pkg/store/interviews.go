package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Question is one generated question with its reference answer.
type Question struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Interview is a generated mock interview.
type Interview struct {
	ID            int64      `json:"id"`
	MockID        string     `json:"mockId"`
	JobPosition   string     `json:"jobPosition"`
	JobDesc       string     `json:"jobDesc"`
	JobExperience string     `json:"jobExperience"`
	CreatedBy     string     `json:"createdBy"`
	CreatedAt     time.Time  `json:"createdAt"`
	Questions     []Question `json:"questions"`
}

// CreateInterview inserts iv and sets its ID. CreatedAt defaults to now.
func (db *DB) CreateInterview(ctx context.Context, iv *Interview) error {
	if iv.MockID == "" {
		return errors.New("interview mock id is required")
	}
	if iv.CreatedAt.IsZero() {
		iv.CreatedAt = time.Now()
	}
	questions := iv.Questions
	if questions == nil {
		questions = []Question{}
	}
	payload, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}

	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO mock_interviews (mock_id, json_mock_resp, job_position, job_desc, job_experience, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		iv.MockID, string(payload), iv.JobPosition, iv.JobDesc, iv.JobExperience, iv.CreatedBy, formatTime(iv.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert interview: %w", err)
	}
	iv.ID, err = res.LastInsertId()
	return err
}

// GetInterview returns the interview with mockID or ErrNotFound.
func (db *DB) GetInterview(ctx context.Context, mockID string) (*Interview, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, mock_id, json_mock_resp, job_position, job_desc, job_experience, created_by, created_at
		FROM mock_interviews WHERE mock_id = ?`, mockID)

	iv, err := scanInterview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get interview %s: %w", mockID, err)
	}
	return iv, nil
}

// ListInterviews returns the interviews created by createdBy, newest first.
func (db *DB) ListInterviews(ctx context.Context, createdBy string) ([]Interview, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, mock_id, json_mock_resp, job_position, job_desc, job_experience, created_by, created_at
		FROM mock_interviews WHERE created_by = ?
		ORDER BY created_at DESC, id DESC`, createdBy)
	if err != nil {
		return nil, fmt.Errorf("list interviews: %w", err)
	}
	defer rows.Close()

	interviews := []Interview{}
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan interview: %w", err)
		}
		interviews = append(interviews, *iv)
	}
	return interviews, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInterview(s scanner) (*Interview, error) {
	var (
		iv        Interview
		payload   string
		createdAt string
	)
	if err := s.Scan(&iv.ID, &iv.MockID, &payload, &iv.JobPosition, &iv.JobDesc, &iv.JobExperience, &iv.CreatedBy, &createdAt); err != nil {
		return nil, err
	}
	iv.CreatedAt = parseTime(createdAt)
	if err := json.Unmarshal([]byte(payload), &iv.Questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return &iv, nil
}
