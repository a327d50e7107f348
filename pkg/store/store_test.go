package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "acemock.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenMigratesAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "acemock.db")

	db, err := Open(path)
	require.NoError(t, err)

	var version int
	require.NoError(t, db.conn.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, SchemaVersion, version)
	require.NoError(t, db.Ping(context.Background()))
	require.NoError(t, db.Close())

	// A second open must find the schema current and leave it alone.
	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, path, db.Path())
}

func TestInterviewRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	iv := &Interview{
		MockID:        "3f1d2c1e-0000-4000-8000-000000000001",
		JobPosition:   "Backend Engineer",
		JobDesc:       "Go, SQL",
		JobExperience: "4",
		CreatedBy:     "dev@example.com",
		Questions: []Question{
			{Question: "What is a goroutine?", Answer: "A lightweight thread."},
			{Question: "What is a channel?", Answer: "A typed conduit."},
		},
	}
	require.NoError(t, db.CreateInterview(ctx, iv))
	assert.NotZero(t, iv.ID)
	assert.False(t, iv.CreatedAt.IsZero())

	got, err := db.GetInterview(ctx, iv.MockID)
	require.NoError(t, err)
	assert.Equal(t, iv.JobPosition, got.JobPosition)
	assert.Equal(t, iv.Questions, got.Questions)
	assert.WithinDuration(t, iv.CreatedAt, got.CreatedAt, time.Millisecond)

	_, err = db.GetInterview(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateInterviewRejectsDuplicateMockID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateInterview(ctx, &Interview{MockID: "dup", CreatedBy: "a"}))
	assert.Error(t, db.CreateInterview(ctx, &Interview{MockID: "dup", CreatedBy: "a"}))
	assert.Error(t, db.CreateInterview(ctx, &Interview{CreatedBy: "a"}))
}

func TestListInterviewsNewestFirst(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, db.CreateInterview(ctx, &Interview{MockID: "old", CreatedBy: "me", CreatedAt: base}))
	require.NoError(t, db.CreateInterview(ctx, &Interview{MockID: "new", CreatedBy: "me", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, db.CreateInterview(ctx, &Interview{MockID: "other", CreatedBy: "you", CreatedAt: base}))

	list, err := db.ListInterviews(ctx, "me")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].MockID)
	assert.Equal(t, "old", list[1].MockID)
	assert.Empty(t, list[1].Questions)

	none, err := db.ListInterviews(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestAnswersRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first := &UserAnswer{MockIDRef: "m1", Question: "Q1", UserAns: "A", Feedback: "ok", Rating: "4", Source: "model", UserEmail: "dev@example.com"}
	second := &UserAnswer{MockIDRef: "m1", Question: "Q2", UserAns: "B", Feedback: "meh", Rating: "2", Source: "heuristic"}
	other := &UserAnswer{MockIDRef: "m2", Question: "Q1", UserAns: "C", Rating: "5"}
	for _, a := range []*UserAnswer{first, second, other} {
		require.NoError(t, db.SaveAnswer(ctx, a))
	}

	answers, err := db.ListAnswers(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.Equal(t, "Q1", answers[0].Question)
	assert.Equal(t, "4", answers[0].Rating)
	assert.Equal(t, "model", answers[0].Source)
	assert.Equal(t, "", answers[0].CorrectAns)
	assert.Equal(t, "heuristic", answers[1].Source)
	assert.Less(t, answers[0].ID, answers[1].ID)
}

func TestClosedDBFailsWrites(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Close())

	err := db.SaveAnswer(context.Background(), &UserAnswer{MockIDRef: "m", Question: "Q"})
	assert.Error(t, err)
}
