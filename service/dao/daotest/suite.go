// Package daotest provides a behaviour suite shared by dao.Repository implementations
package daotest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/offboard/model"
	"github.com/viant/offboard/service/dao"
)

// Run exercises the repository contract. newRepository must return an empty repository.
func Run(t *testing.T, newRepository func(t *testing.T) dao.Repository) {
	t.Run("create and get", func(t *testing.T) {
		repo := newRepository(t)
		ctx := context.Background()
		submission := model.NewSubmission("Jane Doe", "jane@example.com", time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC))
		submission.TeamLeader = "alice"
		id, err := repo.Create(ctx, submission)
		require.NoError(t, err)
		assert.True(t, id > 0)
		assert.Equal(t, id, submission.ID)

		actual, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", actual.EmployeeName)
		assert.Equal(t, "alice", actual.TeamLeader)
		assert.Equal(t, model.StatusSubmitted, actual.Status)
		assert.Equal(t, model.InterviewNotScheduled, actual.InterviewStatus)
		assert.Equal(t, model.ReplyUnset, actual.LeaderReply)
		assert.Equal(t, submission.LastWorkingDay.Unix(), actual.LastWorkingDay.Unix())
		assert.False(t, actual.CreatedAt.IsZero())

		second, err := repo.Create(ctx, model.NewSubmission("John Roe", "john@example.com", time.Time{}))
		require.NoError(t, err)
		assert.NotEqual(t, id, second)
	})

	t.Run("missing", func(t *testing.T) {
		repo := newRepository(t)
		ctx := context.Background()
		_, err := repo.Get(ctx, 404)
		assert.ErrorIs(t, err, dao.ErrNotFound)
		_, err = repo.Get(ctx, 0)
		assert.ErrorIs(t, err, dao.ErrInvalidID)
		_, err = repo.Update(ctx, 404, model.StatusSubmitted, nil)
		assert.ErrorIs(t, err, dao.ErrNotFound)
		_, err = repo.LatestByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, dao.ErrNotFound)
		_, err = repo.Create(ctx, nil)
		assert.ErrorIs(t, err, dao.ErrNilEntity)
	})

	t.Run("update with expected status", func(t *testing.T) {
		repo := newRepository(t)
		ctx := context.Background()
		id, err := repo.Create(ctx, model.NewSubmission("Jane Doe", "jane@example.com", time.Time{}))
		require.NoError(t, err)
		scheduled := time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC)

		updated, err := repo.Update(ctx, id, model.StatusSubmitted, func(s *model.Submission) error {
			s.Status = model.StatusLeaderApproved
			s.LeaderReply = model.ReplyApproved
			s.LeaderNotes = "ok"
			s.InterviewScheduledAt = &scheduled
			s.AssetsCleared = true
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, model.StatusLeaderApproved, updated.Status)

		actual, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.StatusLeaderApproved, actual.Status)
		assert.Equal(t, model.ReplyApproved, actual.LeaderReply)
		assert.Equal(t, model.ReplyUnset, actual.RegionalReply)
		assert.Equal(t, "ok", actual.LeaderNotes)
		assert.True(t, actual.AssetsCleared)
		if assert.NotNil(t, actual.InterviewScheduledAt) {
			assert.Equal(t, scheduled.Unix(), actual.InterviewScheduledAt.Unix())
		}

		_, err = repo.Update(ctx, id, model.StatusSubmitted, func(s *model.Submission) error {
			s.Status = model.StatusLeaderRejected
			return nil
		})
		assert.ErrorIs(t, err, dao.ErrConflict)

		boom := errors.New("boom")
		_, err = repo.Update(ctx, id, model.StatusLeaderApproved, func(s *model.Submission) error {
			s.Status = model.StatusRegionalApproved
			return boom
		})
		assert.ErrorIs(t, err, boom)
		actual, err = repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.StatusLeaderApproved, actual.Status, "failed mutation is not persisted")
	})

	t.Run("concurrent update", func(t *testing.T) {
		repo := newRepository(t)
		ctx := context.Background()
		id, err := repo.Create(ctx, model.NewSubmission("Jane Doe", "jane@example.com", time.Time{}))
		require.NoError(t, err)

		const workers = 8
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Update(ctx, id, model.StatusSubmitted, func(s *model.Submission) error {
					s.Status = model.StatusLeaderApproved
					return nil
				})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		succeeded := 0
		for err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, dao.ErrConflict)
		}
		assert.Equal(t, 1, succeeded)
	})

	t.Run("concurrent update rounds", func(t *testing.T) {
		repo := newRepository(t)
		ctx := context.Background()
		for round := 0; round < 10; round++ {
			id, err := repo.Create(ctx, model.NewSubmission("Jane Doe", "jane@example.com", time.Time{}))
			require.NoError(t, err)
			var wg sync.WaitGroup
			errs := make([]error, 2)
			for i := range errs {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, errs[i] = repo.Update(ctx, id, model.StatusSubmitted, func(s *model.Submission) error {
						s.Status = model.StatusLeaderApproved
						return nil
					})
				}(i)
			}
			wg.Wait()
			succeeded := 0
			for _, err := range errs {
				if err == nil {
					succeeded++
					continue
				}
				assert.ErrorIs(t, err, dao.ErrConflict, "round %d", round)
			}
			assert.Equal(t, 1, succeeded, "round %d", round)
		}
	})

	t.Run("latest by email and list", func(t *testing.T) {
		repo := newRepository(t)
		ctx := context.Background()
		first := model.NewSubmission("Jane Doe", "jane@example.com", time.Time{})
		first.SubmittedAt = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
		firstID, err := repo.Create(ctx, first)
		require.NoError(t, err)
		_, err = repo.Update(ctx, firstID, model.StatusSubmitted, func(s *model.Submission) error {
			s.Status = model.StatusLeaderRejected
			return nil
		})
		require.NoError(t, err)

		second := model.NewSubmission("Jane Doe", "Jane@Example.com", time.Time{})
		second.SubmittedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		secondID, err := repo.Create(ctx, second)
		require.NoError(t, err)
		_, err = repo.Create(ctx, model.NewSubmission("John Roe", "john@example.com", time.Time{}))
		require.NoError(t, err)

		latest, err := repo.LatestByEmail(ctx, "jane@example.com")
		require.NoError(t, err)
		assert.Equal(t, secondID, latest.ID)

		all, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		pending, err := repo.List(ctx, dao.NewParameter(dao.ParamStatus, string(model.StatusSubmitted)))
		require.NoError(t, err)
		assert.Len(t, pending, 2)

		rejected, err := repo.List(ctx, dao.NewParameter(dao.ParamStatus, string(model.StatusLeaderRejected), string(model.StatusRegionalRejected)))
		require.NoError(t, err)
		if assert.Len(t, rejected, 1) {
			assert.Equal(t, firstID, rejected[0].ID)
		}
	})
}
