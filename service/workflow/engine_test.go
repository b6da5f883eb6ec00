package workflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/offboard/model"
	"github.com/viant/offboard/service/dao/submission/memory"
	"github.com/viant/offboard/service/token"
	"github.com/viant/offboard/service/workflow"
)

type recorder struct {
	mux     sync.Mutex
	effects []model.Effect
	err     error
}

func (r *recorder) Dispatch(_ context.Context, effect model.Effect, _ *model.Submission) error {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.effects = append(r.effects, effect)
	return r.err
}

type fixture struct {
	repo     *memory.Repository
	tokens   *token.Service
	engine   *workflow.Engine
	recorder *recorder
}

func newFixture(t *testing.T) *fixture {
	tokens, err := token.New([]byte("workflow-test-secret"))
	require.NoError(t, err)
	repo := memory.New()
	rec := &recorder{}
	return &fixture{
		repo:     repo,
		tokens:   tokens,
		engine:   workflow.New(repo, workflow.WithDispatcher(rec)),
		recorder: rec,
	}
}

// seed stores a submission in the supplied status with every guard satisfied
func (f *fixture) seed(t *testing.T, status model.ResignationStatus) int {
	submission := model.NewSubmission("Jane Doe", "jane@example.com", time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC))
	submission.Status = status
	submission.AssetsCleared = true
	submission.MedicalCollected = true
	submission.VendorNotified = true
	id, err := f.repo.Create(context.Background(), submission)
	require.NoError(t, err)
	return id
}

func (f *fixture) verified(t *testing.T, id int, action model.Action, role model.Role) *token.ApprovalToken {
	tkn, err := f.tokens.Issue(id, action, role)
	require.NoError(t, err)
	verified, err := f.tokens.Verify(tkn)
	require.NoError(t, err)
	return verified
}

func (f *fixture) run(t *testing.T, role model.Role, action model.Action, id int) (*workflow.Result, error) {
	ctx := context.Background()
	scheduled := time.Date(2024, 4, 20, 10, 0, 0, 0, time.UTC)
	if role.IsApprover() {
		return f.engine.Apply(ctx, f.verified(t, id, action, role), "noted")
	}
	return f.engine.Operate(ctx, id, action, &workflow.Input{Notes: "noted", ScheduledAt: &scheduled})
}

func (f *fixture) status(t *testing.T, id int) model.ResignationStatus {
	s, err := f.repo.Get(context.Background(), id)
	require.NoError(t, err)
	return s.Status
}

func TestEngine_TableEdges(t *testing.T) {
	for _, transition := range workflow.Transitions() {
		f := newFixture(t)
		id := f.seed(t, transition.From)
		description := string(transition.Role) + " " + string(transition.Action) + " from " + string(transition.From)

		result, err := f.run(t, transition.Role, transition.Action, id)
		if !assert.NoError(t, err, description) {
			continue
		}
		assert.Equal(t, transition.To, result.To, description)
		assert.Equal(t, transition.To, f.status(t, id), description)
		if transition.Effect == model.EffectNone {
			assert.Empty(t, f.recorder.effects, description)
		} else {
			assert.Equal(t, []model.Effect{transition.Effect}, f.recorder.effects, description)
		}
	}
}

func TestEngine_AbsentEdges(t *testing.T) {
	operatorActions := []model.Action{
		model.ActionScheduleInterview, model.ActionCompleteInterview, model.ActionSkipInterview,
		model.ActionRecordAssets, model.ActionNotifyVendor, model.ActionCheckMedical, model.ActionFinalize,
	}
	candidates := map[model.Role][]model.Action{
		model.RoleLeader:       {model.ActionApprove, model.ActionReject},
		model.RoleRegionalHead: {model.ActionApprove, model.ActionReject},
		model.RoleOperator:     operatorActions,
	}
	for role, actions := range candidates {
		for _, action := range actions {
			for _, status := range model.Statuses {
				if _, ok := workflow.Lookup(role, action, status); ok {
					continue
				}
				f := newFixture(t)
				id := f.seed(t, status)
				_, err := f.run(t, role, action, id)
				description := string(role) + " " + string(action) + " from " + string(status)
				assert.ErrorIs(t, err, model.ErrPreconditionFailed, description)
				assert.Equal(t, status, f.status(t, id), description)
				assert.Empty(t, f.recorder.effects, description)
			}
		}
	}
}

func TestEngine_Apply(t *testing.T) {
	var testCases = []struct {
		description string
		action      model.Action
		notes       string
		expectErr   error
		expect      model.ResignationStatus
		expectReply model.Reply
	}{
		{description: "approve without notes", action: model.ActionApprove, expect: model.StatusLeaderApproved, expectReply: model.ReplyApproved},
		{description: "reject with notes", action: model.ActionReject, notes: "not now", expect: model.StatusLeaderRejected, expectReply: model.ReplyRejected},
		{description: "reject with empty notes", action: model.ActionReject, notes: "", expectErr: model.ErrValidationFailed, expect: model.StatusSubmitted},
		{description: "reject with blank notes", action: model.ActionReject, notes: " \t\n", expectErr: model.ErrValidationFailed, expect: model.StatusSubmitted},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			f := newFixture(t)
			id := f.seed(t, model.StatusSubmitted)
			_, err := f.engine.Apply(context.Background(), f.verified(t, id, testCase.action, model.RoleLeader), testCase.notes)
			if testCase.expectErr != nil {
				assert.ErrorIs(t, err, testCase.expectErr)
			} else {
				assert.NoError(t, err)
			}
			actual, err := f.repo.Get(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, testCase.expect, actual.Status)
			if testCase.expectErr == nil {
				assert.Equal(t, testCase.expectReply, actual.LeaderReply)
				assert.Equal(t, testCase.notes, actual.LeaderNotes)
			}
		})
	}
}

func TestEngine_ApplyUnverified(t *testing.T) {
	f := newFixture(t)
	id := f.seed(t, model.StatusSubmitted)
	_, err := f.engine.Apply(context.Background(), nil, "")
	assert.ErrorIs(t, err, model.ErrMalformedToken)
	_, err = f.engine.Apply(context.Background(), &token.ApprovalToken{SubmissionID: id, Action: model.ActionApprove, Role: model.RoleLeader}, "")
	assert.ErrorIs(t, err, model.ErrMalformedToken)
	assert.Equal(t, model.StatusSubmitted, f.status(t, id))
}

func TestEngine_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.Apply(context.Background(), f.verified(t, 404, model.ActionApprove, model.RoleLeader), "")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = f.engine.Operate(context.Background(), 404, model.ActionFinalize, nil)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestEngine_LeaderApproveScenario(t *testing.T) {
	f := newFixture(t)
	id := f.seed(t, model.StatusSubmitted)
	tkn, err := f.tokens.Issue(id, model.ActionApprove, model.RoleLeader, token.WithTTL(24*time.Hour))
	require.NoError(t, err)

	verified, err := f.tokens.Verify(tkn)
	require.NoError(t, err)
	result, err := f.engine.Apply(context.Background(), verified, "")
	require.NoError(t, err)
	assert.Equal(t, model.StatusLeaderApproved, result.To)
	assert.Equal(t, model.StatusLeaderApproved, f.status(t, id))

	verified, err = f.tokens.Verify(tkn)
	require.NoError(t, err, "token stays verifiable until expiry")
	_, err = f.engine.Apply(context.Background(), verified, "")
	assert.ErrorIs(t, err, model.ErrPreconditionFailed)
	assert.Equal(t, model.StatusLeaderApproved, f.status(t, id))
	assert.Equal(t, []model.Effect{model.EffectNotifyRegionalHead}, f.recorder.effects)
}

func TestEngine_RegionalBeforeLeader(t *testing.T) {
	f := newFixture(t)
	id := f.seed(t, model.StatusSubmitted)
	_, err := f.engine.Apply(context.Background(), f.verified(t, id, model.ActionApprove, model.RoleRegionalHead), "")
	assert.ErrorIs(t, err, model.ErrPreconditionFailed)
	assert.Equal(t, model.StatusSubmitted, f.status(t, id))
}

func TestEngine_ConcurrentApply(t *testing.T) {
	f := newFixture(t)
	id := f.seed(t, model.StatusSubmitted)
	verified := f.verified(t, id, model.ActionApprove, model.RoleLeader)

	const callers = 2
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.engine.Apply(context.Background(), verified, "")
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, model.ErrPreconditionFailed)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, model.StatusLeaderApproved, f.status(t, id))
	assert.Len(t, f.recorder.effects, 1)
}

func TestEngine_DispatchFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.recorder.err = errors.New("smtp unavailable")
	id := f.seed(t, model.StatusSubmitted)
	result, err := f.engine.Apply(context.Background(), f.verified(t, id, model.ActionApprove, model.RoleLeader), "")
	require.NoError(t, err)
	assert.Equal(t, model.StatusLeaderApproved, result.To)
	assert.Equal(t, model.StatusLeaderApproved, f.status(t, id))
}

func TestEngine_Operate(t *testing.T) {
	ctx := context.Background()
	scheduled := time.Date(2024, 4, 20, 10, 0, 0, 0, time.UTC)

	t.Run("full operator path", func(t *testing.T) {
		f := newFixture(t)
		submission := model.NewSubmission("Jane Doe", "jane@example.com", time.Time{})
		submission.Status = model.StatusRegionalApproved
		id, err := f.repo.Create(ctx, submission)
		require.NoError(t, err)

		_, err = f.engine.Operate(ctx, id, model.ActionScheduleInterview, &workflow.Input{ScheduledAt: &scheduled})
		require.NoError(t, err)
		_, err = f.engine.Operate(ctx, id, model.ActionCompleteInterview, &workflow.Input{Notes: "moving abroad"})
		require.NoError(t, err)
		_, err = f.engine.Operate(ctx, id, model.ActionRecordAssets, nil)
		require.NoError(t, err)
		_, err = f.engine.Operate(ctx, id, model.ActionCheckMedical, nil)
		require.NoError(t, err)

		_, err = f.engine.Operate(ctx, id, model.ActionFinalize, nil)
		assert.ErrorIs(t, err, model.ErrPreconditionFailed, "vendor not notified yet")

		_, err = f.engine.Operate(ctx, id, model.ActionNotifyVendor, nil)
		require.NoError(t, err)
		result, err := f.engine.Operate(ctx, id, model.ActionFinalize, nil)
		require.NoError(t, err)
		assert.Equal(t, model.StatusOffboarded, result.To)

		actual, err := f.repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.InterviewDone, actual.InterviewStatus)
		assert.Equal(t, "moving abroad", actual.InterviewNotes)
		assert.Equal(t, scheduled, *actual.InterviewScheduledAt)
		assert.Equal(t, model.ReplyApproved, actual.ITReply)
		assert.True(t, actual.AssetsCleared)
		assert.True(t, actual.MedicalCollected)
		assert.True(t, actual.VendorNotified)
		assert.Equal(t, []model.Effect{
			model.EffectNotifyEmployee,
			model.EffectNotifyIT,
			model.EffectNotifyHR,
			model.EffectNotifyVendor,
			model.EffectNotifyEmployee,
		}, f.recorder.effects)
	})

	t.Run("schedule after interview closed", func(t *testing.T) {
		f := newFixture(t)
		submission := model.NewSubmission("Jane Doe", "jane@example.com", time.Time{})
		submission.Status = model.StatusRegionalApproved
		submission.InterviewStatus = model.InterviewSkipped
		id, err := f.repo.Create(ctx, submission)
		require.NoError(t, err)
		_, err = f.engine.Operate(ctx, id, model.ActionScheduleInterview, &workflow.Input{ScheduledAt: &scheduled})
		assert.ErrorIs(t, err, model.ErrPreconditionFailed)
	})

	t.Run("schedule without date", func(t *testing.T) {
		f := newFixture(t)
		id := f.seed(t, model.StatusRegionalApproved)
		_, err := f.engine.Operate(ctx, id, model.ActionScheduleInterview, &workflow.Input{})
		assert.ErrorIs(t, err, model.ErrValidationFailed)
	})

	t.Run("decision actions are not operator actions", func(t *testing.T) {
		f := newFixture(t)
		id := f.seed(t, model.StatusSubmitted)
		_, err := f.engine.Operate(ctx, id, model.ActionApprove, nil)
		assert.ErrorIs(t, err, model.ErrValidationFailed)
		assert.Equal(t, model.StatusSubmitted, f.status(t, id))
	})
}
