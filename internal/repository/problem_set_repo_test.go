package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quizhub/quiz-go-api/internal/models"
)

func TestProblemSetRepositoryContainingAnyOf(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProblemSetRepository(db)

	basics := models.ProblemSet{Title: "Basics", ProblemIDs: []uint{1, 2, 3}}
	advanced := models.ProblemSet{Title: "Advanced", ProblemIDs: []uint{4, 5}}
	require.NoError(t, repo.Create(context.Background(), &basics))
	require.NoError(t, repo.Create(context.Background(), &advanced))

	sets, err := repo.ContainingAnyOf(context.Background(), []uint{2})
	require.NoError(t, err)
	require.Len(t, sets, 1)
	require.Equal(t, "Basics", sets[0].Title)

	sets, err = repo.ContainingAnyOf(context.Background(), []uint{3, 5})
	require.NoError(t, err)
	require.Len(t, sets, 2)

	sets, err = repo.ContainingAnyOf(context.Background(), []uint{99})
	require.NoError(t, err)
	require.Empty(t, sets)
}

func TestProblemSetRepositoryDeleteMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProblemSetRepository(db)

	err := repo.Delete(context.Background(), 42)
	require.Error(t, err)
}

func TestCompletionRepositoryUpsertIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCompletionRepository(db)

	require.NoError(t, repo.Upsert(context.Background(), 1, 7))
	require.NoError(t, repo.Upsert(context.Background(), 1, 7))

	completions, err := repo.ListByProblemSet(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, completions, 1)
}

func TestCompletionRepositoryDeleteIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCompletionRepository(db)

	require.NoError(t, repo.Upsert(context.Background(), 1, 7))
	require.NoError(t, repo.Delete(context.Background(), 1, 7))
	require.NoError(t, repo.Delete(context.Background(), 1, 7))

	exists, err := repo.Exists(context.Background(), 1, 7)
	require.NoError(t, err)
	require.False(t, exists)
}
