package service

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quizhub/quiz-go-api/internal/models"
	"github.com/quizhub/quiz-go-api/internal/repository"
)

// CompletionTracker recomputes problem-set completion state for a user
// after a submission verdict changes.
type CompletionTracker interface {
	// Refresh revisits every problem set touching the given problems and
	// creates or deletes the user's completion row accordingly. Safe to
	// re-run with unchanged submission state.
	Refresh(ctx context.Context, userID uint, problemIDs []uint) error
}

type completionTracker struct {
	sets        repository.ProblemSetRepository
	submissions repository.SubmissionRepository
	completions repository.CompletionRepository
	cache       *redis.Client
	logger      zerolog.Logger
}

// NewCompletionTracker constructs the tracker. The redis client is
// optional; when present, cached problem-set status entries are dropped
// on every change.
func NewCompletionTracker(
	sets repository.ProblemSetRepository,
	submissions repository.SubmissionRepository,
	completions repository.CompletionRepository,
	cache *redis.Client,
	logger zerolog.Logger,
) CompletionTracker {
	return &completionTracker{
		sets:        sets,
		submissions: submissions,
		completions: completions,
		cache:       cache,
		logger:      logger.With().Str("component", "completion_tracker").Logger(),
	}
}

func (t *completionTracker) Refresh(ctx context.Context, userID uint, problemIDs []uint) error {
	if len(problemIDs) == 0 {
		return nil
	}

	sets, err := t.sets.ContainingAnyOf(ctx, problemIDs)
	if err != nil {
		return fmt.Errorf("find problem sets: %w", err)
	}

	for _, set := range sets {
		complete, err := t.userCompletedSet(ctx, userID, set)
		if err != nil {
			return err
		}

		if complete {
			err = t.completions.Upsert(ctx, userID, set.ID)
		} else {
			err = t.completions.Delete(ctx, userID, set.ID)
		}
		if err != nil {
			return fmt.Errorf("update completion for set %d: %w", set.ID, err)
		}

		t.invalidateStatusCache(ctx, set.ID, userID)
	}

	return nil
}

// userCompletedSet checks that the user's latest submission for every
// member problem is accepted. An empty set is never complete.
func (t *completionTracker) userCompletedSet(ctx context.Context, userID uint, set models.ProblemSet) (bool, error) {
	if len(set.ProblemIDs) == 0 {
		return false, nil
	}

	latest, err := t.submissions.LatestByUserForProblems(ctx, userID, set.ProblemIDs)
	if err != nil {
		return false, fmt.Errorf("load latest submissions: %w", err)
	}

	for _, problemID := range set.ProblemIDs {
		submission, ok := latest[problemID]
		if !ok || !submission.Accepted() {
			return false, nil
		}
	}
	return true, nil
}

func (t *completionTracker) invalidateStatusCache(ctx context.Context, setID, userID uint) {
	if t.cache == nil {
		return
	}
	if err := t.cache.Del(ctx, problemSetStatusCacheKey(setID, userID)).Err(); err != nil {
		t.logger.Warn().Err(err).Uint("problem_set_id", setID).Msg("failed to invalidate status cache")
	}
}

// problemSetStatusCacheKey names the cached per-user status of a set.
func problemSetStatusCacheKey(setID, userID uint) string {
	return fmt.Sprintf("quiz:problem_set:%d:status:%d", setID, userID)
}
