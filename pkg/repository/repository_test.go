package repository_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/queuewatch/pkg/domain/interfaces"
	"github.com/secmon-lab/queuewatch/pkg/domain/model"
	"github.com/secmon-lab/queuewatch/pkg/domain/types"
	"github.com/secmon-lab/queuewatch/pkg/repository/firestore"
	"github.com/secmon-lab/queuewatch/pkg/repository/memory"
)

func runActionStateTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	const caseID = types.CaseID("500000000000001AAA")

	t.Run("action taken defaults to false", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		taken, err := repo.ActionState().IsActionTaken(ctx, caseID)
		gt.NoError(t, err).Required()
		gt.Value(t, taken).Equal(false)
	})

	t.Run("set and clear action taken", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.ActionState().SetActionTaken(ctx, caseID, true)).Required()

		taken, err := repo.ActionState().IsActionTaken(ctx, caseID)
		gt.NoError(t, err).Required()
		gt.Value(t, taken).Equal(true)

		gt.NoError(t, repo.ActionState().SetActionTaken(ctx, caseID, false)).Required()

		taken, err = repo.ActionState().IsActionTaken(ctx, caseID)
		gt.NoError(t, err).Required()
		gt.Value(t, taken).Equal(false)
	})

	t.Run("snooze round trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		until := time.Now().Add(30 * time.Minute).UTC().Truncate(time.Millisecond)
		gt.NoError(t, repo.ActionState().Snooze(ctx, caseID, until)).Required()

		got, err := repo.ActionState().GetSnoozeUntil(ctx, caseID)
		gt.NoError(t, err).Required()
		gt.Value(t, got).NotNil()
		gt.Bool(t, got.Equal(until)).True()
	})

	t.Run("unsnoozed case returns nil", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		got, err := repo.ActionState().GetSnoozeUntil(ctx, caseID)
		gt.NoError(t, err).Required()
		gt.Value(t, got).Nil()
	})

	t.Run("expired snooze is evicted on read", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		past := time.Now().Add(-time.Minute)
		gt.NoError(t, repo.ActionState().Snooze(ctx, caseID, past)).Required()

		got, err := repo.ActionState().GetSnoozeUntil(ctx, caseID)
		gt.NoError(t, err).Required()
		gt.Value(t, got).Nil()

		// A second read still sees nothing; the entry is gone, not merely
		// filtered.
		got, err = repo.ActionState().GetSnoozeUntil(ctx, caseID)
		gt.NoError(t, err).Required()
		gt.Value(t, got).Nil()
	})

	t.Run("eviction preserves action taken flag", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.ActionState().SetActionTaken(ctx, caseID, true)).Required()
		gt.NoError(t, repo.ActionState().Snooze(ctx, caseID, time.Now().Add(-time.Minute))).Required()

		got, err := repo.ActionState().GetSnoozeUntil(ctx, caseID)
		gt.NoError(t, err).Required()
		gt.Value(t, got).Nil()

		taken, err := repo.ActionState().IsActionTaken(ctx, caseID)
		gt.NoError(t, err).Required()
		gt.Value(t, taken).Equal(true)
	})

	t.Run("new snooze overwrites the old one", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first := time.Now().Add(10 * time.Minute).UTC().Truncate(time.Millisecond)
		second := time.Now().Add(60 * time.Minute).UTC().Truncate(time.Millisecond)
		gt.NoError(t, repo.ActionState().Snooze(ctx, caseID, first)).Required()
		gt.NoError(t, repo.ActionState().Snooze(ctx, caseID, second)).Required()

		got, err := repo.ActionState().GetSnoozeUntil(ctx, caseID)
		gt.NoError(t, err).Required()
		gt.Value(t, got).NotNil()
		gt.Bool(t, got.Equal(second)).True()
	})

	t.Run("clear snooze", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.ActionState().Snooze(ctx, caseID, time.Now().Add(time.Hour))).Required()
		gt.NoError(t, repo.ActionState().ClearSnooze(ctx, caseID)).Required()

		got, err := repo.ActionState().GetSnoozeUntil(ctx, caseID)
		gt.NoError(t, err).Required()
		gt.Value(t, got).Nil()
	})
}

func runTrackedActionTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	key := model.TrackedActionKey{
		Mode:       types.ModeSignature,
		CaseID:     "500000000000001AAA",
		ActionType: types.ActionTypeNewCase,
	}

	t.Run("first mark wins", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		already, err := repo.TrackedAction().Mark(ctx, &model.TrackedAction{
			Key:        key,
			AssignedTo: "Jordan Smith",
			Source:     types.DetectionHistory,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, already).Equal(false)

		already, err = repo.TrackedAction().Mark(ctx, &model.TrackedAction{
			Key:        key,
			AssignedTo: "Someone Else",
			Source:     types.DetectionComment,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, already).Equal(true)

		// The stored evidence is from the first mark.
		got, err := repo.TrackedAction().Get(ctx, key)
		gt.NoError(t, err).Required()
		gt.Value(t, got).NotNil()
		gt.Value(t, got.AssignedTo).Equal("Jordan Smith")
		gt.Value(t, got.Source).Equal(types.DetectionHistory)
	})

	t.Run("keys are scoped by mode and action type", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		already, err := repo.TrackedAction().Mark(ctx, &model.TrackedAction{Key: key})
		gt.NoError(t, err).Required()
		gt.Value(t, already).Equal(false)

		otherMode := key
		otherMode.Mode = types.ModePremier
		already, err = repo.TrackedAction().Mark(ctx, &model.TrackedAction{Key: otherMode})
		gt.NoError(t, err).Required()
		gt.Value(t, already).Equal(false)

		otherType := key
		otherType.ActionType = types.ActionTypeGHO
		already, err = repo.TrackedAction().Mark(ctx, &model.TrackedAction{Key: otherType})
		gt.NoError(t, err).Required()
		gt.Value(t, already).Equal(false)
	})

	t.Run("concurrent marks admit exactly one", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		const workers = 16
		var wg sync.WaitGroup
		results := make([]bool, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				already, err := repo.TrackedAction().Mark(ctx, &model.TrackedAction{Key: key})
				gt.NoError(t, err)
				results[i] = already
			}(i)
		}
		wg.Wait()

		var fresh int
		for _, already := range results {
			if !already {
				fresh++
			}
		}
		gt.Value(t, fresh).Equal(1)
	})

	t.Run("reset allows re-marking", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.TrackedAction().Mark(ctx, &model.TrackedAction{Key: key})
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.TrackedAction().Reset(ctx, key)).Required()

		tracked, err := repo.TrackedAction().AlreadyTracked(ctx, key)
		gt.NoError(t, err).Required()
		gt.Value(t, tracked).Equal(false)

		already, err := repo.TrackedAction().Mark(ctx, &model.TrackedAction{Key: key})
		gt.NoError(t, err).Required()
		gt.Value(t, already).Equal(false)
	})

	t.Run("reset of unmarked key is a no-op", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.TrackedAction().Reset(ctx, key))
	})

	t.Run("get of unmarked key returns nil", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		got, err := repo.TrackedAction().Get(ctx, key)
		gt.NoError(t, err).Required()
		gt.Value(t, got).Nil()
	})
}

func runPreferenceTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("mode defaults to signature", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		mode, err := repo.Preference().GetMode(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, mode).Equal(types.ModeSignature)
	})

	t.Run("set and get mode", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Preference().SetMode(ctx, types.ModePremier)).Required()

		mode, err := repo.Preference().GetMode(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, mode).Equal(types.ModePremier)
	})
}

func TestMemoryRepository(t *testing.T) {
	newRepo := func(t *testing.T) interfaces.Repository {
		return memory.New()
	}

	t.Run("ActionState", func(t *testing.T) { runActionStateTest(t, newRepo) })
	t.Run("TrackedAction", func(t *testing.T) { runTrackedActionTest(t, newRepo) })
	t.Run("Preference", func(t *testing.T) { runPreferenceTest(t, newRepo) })
}

func TestFirestoreRepository(t *testing.T) {
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	newRepo := func(t *testing.T) interfaces.Repository {
		repo, err := firestore.New(context.Background(), projectID, databaseID,
			firestore.WithCollectionPrefix("test_"+time.Now().Format("20060102150405")))
		gt.NoError(t, err).Required()
		t.Cleanup(func() {
			_ = repo.Close()
		})
		return repo
	}

	t.Run("ActionState", func(t *testing.T) { runActionStateTest(t, newRepo) })
	t.Run("TrackedAction", func(t *testing.T) { runTrackedActionTest(t, newRepo) })
	t.Run("Preference", func(t *testing.T) { runPreferenceTest(t, newRepo) })
}
