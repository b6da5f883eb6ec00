package form

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/offboard/model"
	"github.com/viant/offboard/service/dao/submission/memory"
	"github.com/viant/offboard/service/token"
	"github.com/viant/offboard/service/workflow"
)

func newHandler(t *testing.T, options ...Option) (*Handler, *memory.Repository, *Service) {
	repo := memory.New()
	forms := New(newTokens(t), options...)
	return NewHandler(forms, repo, workflow.New(repo)), repo, forms
}

func seed(t *testing.T, repo *memory.Repository, status model.ResignationStatus) int {
	submission := model.NewSubmission("Jane Doe", "jane@example.com", time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC))
	submission.Status = status
	id, err := repo.Create(context.Background(), submission)
	require.NoError(t, err)
	return id
}

func TestHandler_Submit(t *testing.T) {
	ctx := context.Background()
	var testCases = []struct {
		description     string
		formType        Type
		from            model.ResignationStatus
		fields          map[string]string
		expectErr       error
		expectStatus    model.ResignationStatus
		expectInterview model.InterviewStatus
	}{
		{
			description:     "schedule interview",
			formType:        TypeScheduleInterview,
			from:            model.StatusRegionalApproved,
			fields:          map[string]string{FieldScheduledAt: "2024-04-20T10:00:00Z"},
			expectStatus:    model.StatusRegionalApproved,
			expectInterview: model.InterviewScheduled,
		},
		{
			description:     "schedule interview without date",
			formType:        TypeScheduleInterview,
			from:            model.StatusRegionalApproved,
			fields:          map[string]string{},
			expectErr:       model.ErrValidationFailed,
			expectStatus:    model.StatusRegionalApproved,
			expectInterview: model.InterviewNotScheduled,
		},
		{
			description:     "schedule interview with invalid date",
			formType:        TypeScheduleInterview,
			from:            model.StatusRegionalApproved,
			fields:          map[string]string{FieldScheduledAt: "next tuesday"},
			expectErr:       model.ErrValidationFailed,
			expectStatus:    model.StatusRegionalApproved,
			expectInterview: model.InterviewNotScheduled,
		},
		{
			description:     "feedback",
			formType:        TypeSubmitFeedback,
			from:            model.StatusRegionalApproved,
			fields:          map[string]string{FieldFeedback: "relocating"},
			expectStatus:    model.StatusExitDone,
			expectInterview: model.InterviewDone,
		},
		{
			description:     "feedback missing",
			formType:        TypeSubmitFeedback,
			from:            model.StatusRegionalApproved,
			expectErr:       model.ErrValidationFailed,
			expectStatus:    model.StatusRegionalApproved,
			expectInterview: model.InterviewNotScheduled,
		},
		{
			description:     "skip interview",
			formType:        TypeSkipInterview,
			from:            model.StatusRegionalApproved,
			expectStatus:    model.StatusExitDone,
			expectInterview: model.InterviewSkipped,
		},
		{
			description:     "it clearance",
			formType:        TypeITClearance,
			from:            model.StatusExitDone,
			expectStatus:    model.StatusAssetsRecorded,
			expectInterview: model.InterviewNotScheduled,
		},
		{
			description:     "it clearance too early",
			formType:        TypeITClearance,
			from:            model.StatusRegionalApproved,
			expectErr:       model.ErrPreconditionFailed,
			expectStatus:    model.StatusRegionalApproved,
			expectInterview: model.InterviewNotScheduled,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			handler, repo, forms := newHandler(t)
			id := seed(t, repo, testCase.from)
			tkn, err := forms.Issue(testCase.formType, submissionPayload(id, "jane@example.com"), 0)
			require.NoError(t, err)

			_, err = handler.Submit(ctx, testCase.formType, tkn, testCase.fields)
			if testCase.expectErr != nil {
				assert.ErrorIs(t, err, testCase.expectErr)
			} else {
				assert.NoError(t, err)
			}
			actual, err := repo.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, testCase.expectStatus, actual.Status)
			assert.Equal(t, testCase.expectInterview, actual.InterviewStatus)
		})
	}
}

func TestHandler_SkipReasonFromToken(t *testing.T) {
	ctx := context.Background()
	handler, repo, forms := newHandler(t)
	id := seed(t, repo, model.StatusRegionalApproved)
	tkn, err := forms.SkipInterviewToken(id, "jane@example.com", "contract ended")
	require.NoError(t, err)
	_, err = handler.Submit(ctx, TypeSkipInterview, tkn, nil)
	require.NoError(t, err)
	actual, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "contract ended", actual.InterviewNotes)
}

func TestHandler_SubmitReplay(t *testing.T) {
	ctx := context.Background()
	handler, repo, forms := newHandler(t, WithLedger(token.NewMemoryLedger()))
	id := seed(t, repo, model.StatusRegionalApproved)
	tkn, err := forms.InterviewSchedulingToken(id, "jane@example.com")
	require.NoError(t, err)

	_, err = handler.Submit(ctx, TypeScheduleInterview, tkn, map[string]string{FieldScheduledAt: "bad"})
	assert.ErrorIs(t, err, model.ErrValidationFailed)
	_, err = handler.Submit(ctx, TypeScheduleInterview, tkn, map[string]string{FieldScheduledAt: "2024-04-20T10:00:00Z"})
	require.NoError(t, err, "invalid fields do not consume the token")
	_, err = handler.Submit(ctx, TypeScheduleInterview, tkn, map[string]string{FieldScheduledAt: "2024-04-21T10:00:00Z"})
	assert.ErrorIs(t, err, model.ErrReplayed)
}

func TestHandler_WrongForm(t *testing.T) {
	ctx := context.Background()
	handler, repo, forms := newHandler(t)
	id := seed(t, repo, model.StatusRegionalApproved)
	tkn, err := forms.ITClearanceToken(id, "jane@example.com")
	require.NoError(t, err)
	_, err = handler.Submit(ctx, TypeSkipInterview, tkn, nil)
	assert.ErrorIs(t, err, model.ErrWrongFormType)
	_, err = handler.Submit(ctx, Type("payroll"), tkn, nil)
	assert.ErrorIs(t, err, model.ErrWrongFormType)
}

func TestHandler_Inspect(t *testing.T) {
	ctx := context.Background()
	handler, repo, forms := newHandler(t)
	id := seed(t, repo, model.StatusRegionalApproved)
	tkn, err := forms.FeedbackToken(id, "jane@example.com")
	require.NoError(t, err)
	view, err := handler.Inspect(ctx, TypeSubmitFeedback, tkn)
	require.NoError(t, err)
	assert.Equal(t, id, view.SubmissionID)
	assert.Equal(t, "Jane Doe", view.EmployeeName)
	assert.Equal(t, model.StatusRegionalApproved, view.Status)

	missing, err := forms.FeedbackToken(999, "ghost@example.com")
	require.NoError(t, err)
	_, err = handler.Inspect(ctx, TypeSubmitFeedback, missing)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

type flakyRepository struct {
	*memory.Repository
	failures int
}

func (r *flakyRepository) Get(ctx context.Context, id int) (*model.Submission, error) {
	if r.failures > 0 {
		r.failures--
		return nil, errors.New("connection reset")
	}
	return r.Repository.Get(ctx, id)
}

func TestHandler_SubmitKeepsLinkOnTransientFailure(t *testing.T) {
	ctx := context.Background()
	repo := &flakyRepository{Repository: memory.New()}
	forms := New(newTokens(t), WithLedger(token.NewMemoryLedger()))
	handler := NewHandler(forms, repo, workflow.New(repo))
	id := seed(t, repo.Repository, model.StatusExitDone)
	tkn, err := forms.ITClearanceToken(id, "jane@example.com")
	require.NoError(t, err)

	repo.failures = 1
	_, err = handler.Submit(ctx, TypeITClearance, tkn, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrReplayed)

	result, err := handler.Submit(ctx, TypeITClearance, tkn, nil)
	require.NoError(t, err, "retry with the same link succeeds")
	assert.Equal(t, model.StatusAssetsRecorded, result.To)

	_, err = handler.Submit(ctx, TypeITClearance, tkn, nil)
	assert.ErrorIs(t, err, model.ErrReplayed)
}

func TestHandler_SubmitConsumesLinkOnPreconditionFailure(t *testing.T) {
	ctx := context.Background()
	handler, repo, forms := newHandler(t, WithLedger(token.NewMemoryLedger()))
	id := seed(t, repo, model.StatusSubmitted)
	tkn, err := forms.ITClearanceToken(id, "jane@example.com")
	require.NoError(t, err)

	_, err = handler.Submit(ctx, TypeITClearance, tkn, nil)
	assert.ErrorIs(t, err, model.ErrPreconditionFailed)
	_, err = handler.Submit(ctx, TypeITClearance, tkn, nil)
	assert.ErrorIs(t, err, model.ErrReplayed)
}
