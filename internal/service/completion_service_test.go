package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/quizhub/quiz-go-api/internal/models"
	"github.com/quizhub/quiz-go-api/internal/repository"
)

func setupServiceDB(t *testing.T) *gorm.DB {
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

type trackerFixture struct {
	tracker     CompletionTracker
	cache       *redis.Client
	sets        repository.ProblemSetRepository
	submissions repository.SubmissionRepository
	completions repository.CompletionRepository
}

func newTrackerFixture(t *testing.T) trackerFixture {
	t.Helper()
	db := setupServiceDB(t)
	cache := redis.NewClient(&redis.Options{Addr: miniredis.RunT(t).Addr()})

	sets := repository.NewProblemSetRepository(db)
	submissions := repository.NewSubmissionRepository(db)
	completions := repository.NewCompletionRepository(db)

	return trackerFixture{
		tracker:     NewCompletionTracker(sets, submissions, completions, cache, zerolog.Nop()),
		cache:       cache,
		sets:        sets,
		submissions: submissions,
		completions: completions,
	}
}

func (f trackerFixture) submit(t *testing.T, userID, problemID uint, verdict string) {
	t.Helper()
	submission := models.Submission{UserID: userID, ProblemID: problemID, Answer: "x", Verdict: verdict}
	require.NoError(t, f.submissions.Create(context.Background(), &submission))
}

func TestCompletionRefreshMarksFullyAcceptedSet(t *testing.T) {
	fixture := newTrackerFixture(t)
	ctx := context.Background()

	set := models.ProblemSet{Title: "Basics", ProblemIDs: []uint{1, 2}}
	require.NoError(t, fixture.sets.Create(ctx, &set))

	fixture.submit(t, 7, 1, models.VerdictAccepted)
	fixture.submit(t, 7, 2, models.VerdictAccepted)

	require.NoError(t, fixture.tracker.Refresh(ctx, 7, []uint{2}))

	done, err := fixture.completions.Exists(ctx, 7, set.ID)
	require.NoError(t, err)
	require.True(t, done)
}

func TestCompletionRefreshIgnoresPartialSet(t *testing.T) {
	fixture := newTrackerFixture(t)
	ctx := context.Background()

	set := models.ProblemSet{Title: "Basics", ProblemIDs: []uint{1, 2}}
	require.NoError(t, fixture.sets.Create(ctx, &set))

	fixture.submit(t, 7, 1, models.VerdictAccepted)

	require.NoError(t, fixture.tracker.Refresh(ctx, 7, []uint{1}))

	done, err := fixture.completions.Exists(ctx, 7, set.ID)
	require.NoError(t, err)
	require.False(t, done)
}

func TestCompletionRefreshLatestSubmissionWins(t *testing.T) {
	fixture := newTrackerFixture(t)
	ctx := context.Background()

	set := models.ProblemSet{Title: "Basics", ProblemIDs: []uint{1}}
	require.NoError(t, fixture.sets.Create(ctx, &set))

	fixture.submit(t, 7, 1, models.VerdictAccepted)
	require.NoError(t, fixture.tracker.Refresh(ctx, 7, []uint{1}))

	done, err := fixture.completions.Exists(ctx, 7, set.ID)
	require.NoError(t, err)
	require.True(t, done)

	// A newer failing submission supersedes the accepted one.
	fixture.submit(t, 7, 1, models.VerdictWrong)
	require.NoError(t, fixture.tracker.Refresh(ctx, 7, []uint{1}))

	done, err = fixture.completions.Exists(ctx, 7, set.ID)
	require.NoError(t, err)
	require.False(t, done)
}

func TestCompletionRefreshIsIdempotent(t *testing.T) {
	fixture := newTrackerFixture(t)
	ctx := context.Background()

	set := models.ProblemSet{Title: "Basics", ProblemIDs: []uint{1}}
	require.NoError(t, fixture.sets.Create(ctx, &set))
	fixture.submit(t, 7, 1, models.VerdictAccepted)

	for i := 0; i < 3; i++ {
		require.NoError(t, fixture.tracker.Refresh(ctx, 7, []uint{1}))
	}

	rows, err := fixture.completions.ListByProblemSet(ctx, set.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestCompletionRefreshSkipsEmptySets(t *testing.T) {
	fixture := newTrackerFixture(t)
	ctx := context.Background()

	empty := models.ProblemSet{Title: "Empty", ProblemIDs: []uint{}}
	require.NoError(t, fixture.sets.Create(ctx, &empty))

	require.NoError(t, fixture.tracker.Refresh(ctx, 7, []uint{1}))

	done, err := fixture.completions.Exists(ctx, 7, empty.ID)
	require.NoError(t, err)
	require.False(t, done)
}

func TestCompletionRefreshInvalidatesStatusCache(t *testing.T) {
	fixture := newTrackerFixture(t)
	ctx := context.Background()

	set := models.ProblemSet{Title: "Basics", ProblemIDs: []uint{1}}
	require.NoError(t, fixture.sets.Create(ctx, &set))
	fixture.submit(t, 7, 1, models.VerdictAccepted)

	key := problemSetStatusCacheKey(set.ID, 7)
	require.NoError(t, fixture.cache.Set(ctx, key, "stale", 0).Err())

	require.NoError(t, fixture.tracker.Refresh(ctx, 7, []uint{1}))

	err := fixture.cache.Get(ctx, key).Err()
	require.ErrorIs(t, err, redis.Nil)
}
