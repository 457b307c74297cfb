package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/quizhub/quiz-go-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Problem{},
		&models.Submission{},
		&models.ProblemSet{},
		&models.ProblemSetCompletion{},
	))
	return db
}

func TestSubmissionRepositoryLatestByUserForProblems(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	now := time.Now().UTC()
	older := models.Submission{UserID: 1, ProblemID: 10, Verdict: models.VerdictWrong, CreatedAt: now.Add(-2 * time.Hour)}
	newer := models.Submission{UserID: 1, ProblemID: 10, Verdict: models.VerdictAccepted, CreatedAt: now.Add(-1 * time.Hour)}
	other := models.Submission{UserID: 1, ProblemID: 11, Verdict: models.VerdictPending, CreatedAt: now}
	foreign := models.Submission{UserID: 2, ProblemID: 10, Verdict: models.VerdictAccepted, CreatedAt: now}
	for _, s := range []*models.Submission{&older, &newer, &other, &foreign} {
		require.NoError(t, db.Create(s).Error)
	}

	latest, err := repo.LatestByUserForProblems(context.Background(), 1, []uint{10, 11, 12})
	require.NoError(t, err)
	require.Len(t, latest, 2)
	require.Equal(t, models.VerdictAccepted, latest[10].Verdict)
	require.Equal(t, newer.ID, latest[10].ID)
	require.Equal(t, models.VerdictPending, latest[11].Verdict)
	_, found := latest[12]
	require.False(t, found, "problem without submissions must be absent")
}

func TestSubmissionRepositoryLatestTieBrokenByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	ts := time.Now().UTC().Truncate(time.Second)
	first := models.Submission{UserID: 1, ProblemID: 10, Verdict: models.VerdictWrong, CreatedAt: ts}
	second := models.Submission{UserID: 1, ProblemID: 10, Verdict: models.VerdictAccepted, CreatedAt: ts}
	require.NoError(t, db.Create(&first).Error)
	require.NoError(t, db.Create(&second).Error)

	latest, err := repo.LatestByUserForProblems(context.Background(), 1, []uint{10})
	require.NoError(t, err)
	require.Equal(t, second.ID, latest[10].ID)
}

func TestSubmissionRepositoryUpdateVerdict(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	submission := models.Submission{UserID: 1, ProblemID: 10, Verdict: models.VerdictPending}
	require.NoError(t, repo.Create(context.Background(), &submission))

	updated, err := repo.UpdateVerdict(context.Background(), submission.ID, models.VerdictAccepted)
	require.NoError(t, err)
	require.Equal(t, models.VerdictAccepted, updated.Verdict)

	stored, err := repo.GetByID(context.Background(), submission.ID)
	require.NoError(t, err)
	require.Equal(t, models.VerdictAccepted, stored.Verdict)
}

func TestSubmissionRepositoryListAllPaginates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)

	for i := 0; i < 5; i++ {
		submission := models.Submission{UserID: 1, ProblemID: uint(i + 1), Verdict: models.VerdictPending}
		require.NoError(t, repo.Create(context.Background(), &submission))
	}

	page, total, err := repo.ListAll(context.Background(), 1, 2)
	require.NoError(t, err)
	require.EqualValues(t, 5, total)
	require.Len(t, page, 2)
}
