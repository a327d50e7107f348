package store

import (
	"context"
	"fmt"
	"time"
)

// UserAnswer is one evaluated answer. Rating is kept as text, so rows
// written by other tools may hold values that do not parse.
type UserAnswer struct {
	ID         int64     `json:"id"`
	MockIDRef  string    `json:"mockIdRef"`
	Question   string    `json:"question"`
	CorrectAns string    `json:"correctAns"`
	UserAns    string    `json:"userAns"`
	Feedback   string    `json:"feedback"`
	Rating     string    `json:"rating"`
	Source     string    `json:"source,omitempty"`
	UserEmail  string    `json:"userEmail"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SaveAnswer inserts a and sets its ID. CreatedAt defaults to now.
func (db *DB) SaveAnswer(ctx context.Context, a *UserAnswer) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO user_answers (mock_id_ref, question, correct_ans, user_ans, feedback, rating, source, user_email, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.MockIDRef, a.Question, a.CorrectAns, a.UserAns, a.Feedback, a.Rating, a.Source, a.UserEmail, formatTime(a.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert answer: %w", err)
	}
	a.ID, err = res.LastInsertId()
	return err
}

// ListAnswers returns the answers recorded for mockID in insertion order.
func (db *DB) ListAnswers(ctx context.Context, mockID string) ([]UserAnswer, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, mock_id_ref, question, correct_ans, user_ans, feedback, rating, source, user_email, created_at
		FROM user_answers WHERE mock_id_ref = ? ORDER BY id`, mockID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	answers := []UserAnswer{}
	for rows.Next() {
		var (
			a         UserAnswer
			createdAt string
		)
		if err := rows.Scan(&a.ID, &a.MockIDRef, &a.Question, &a.CorrectAns, &a.UserAns, &a.Feedback, &a.Rating, &a.Source, &a.UserEmail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		a.CreatedAt = parseTime(createdAt)
		answers = append(answers, a)
	}
	return answers, rows.Err()
}
