package form

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/offboard/model"
	"github.com/viant/offboard/service/token"
)

func newTokens(t *testing.T) *token.Service {
	tokens, err := token.New([]byte("form-test-secret"))
	require.NoError(t, err)
	return tokens
}

func TestService_Validate(t *testing.T) {
	forms := New(newTokens(t))
	var testCases = []struct {
		description string
		issue       func() (string, error)
		expected    Type
		expectErr   error
	}{
		{description: "scheduling", issue: func() (string, error) { return forms.InterviewSchedulingToken(1, "jane@example.com") }, expected: TypeScheduleInterview},
		{description: "feedback", issue: func() (string, error) { return forms.FeedbackToken(1, "jane@example.com") }, expected: TypeSubmitFeedback},
		{description: "skip", issue: func() (string, error) { return forms.SkipInterviewToken(1, "jane@example.com", "contractor") }, expected: TypeSkipInterview},
		{description: "it clearance", issue: func() (string, error) { return forms.ITClearanceToken(1, "jane@example.com") }, expected: TypeITClearance},
		{description: "wrong form", issue: func() (string, error) { return forms.FeedbackToken(1, "jane@example.com") }, expected: TypeSkipInterview, expectErr: model.ErrWrongFormType},
	}
	for _, testCase := range testCases {
		tkn, err := testCase.issue()
		require.NoError(t, err, testCase.description)
		actual, err := forms.Validate(tkn, testCase.expected)
		if testCase.expectErr != nil {
			assert.ErrorIs(t, err, testCase.expectErr, testCase.description)
			continue
		}
		if !assert.NoError(t, err, testCase.description) {
			continue
		}
		assert.Equal(t, string(testCase.expected), actual.FormType, testCase.description)
		id, err := SubmissionID(actual)
		assert.NoError(t, err, testCase.description)
		assert.Equal(t, 1, id, testCase.description)
		assert.Equal(t, "jane@example.com", actual.Payload[KeyEmployeeEmail], testCase.description)
	}
}

func TestService_ValidateRejectsApprovalToken(t *testing.T) {
	tokens := newTokens(t)
	forms := New(tokens)
	tkn, err := tokens.Issue(1, model.ActionApprove, model.RoleLeader)
	require.NoError(t, err)
	_, err = forms.Validate(tkn, TypeScheduleInterview)
	assert.ErrorIs(t, err, model.ErrInvalidSignature)
}

func TestService_TTL(t *testing.T) {
	forms := New(newTokens(t), WithTTL(time.Hour))
	tkn, err := forms.ITClearanceToken(2, "jane@example.com")
	require.NoError(t, err)
	actual, err := forms.Validate(tkn, TypeITClearance)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, actual.ExpiresAt.Sub(actual.IssuedAt))

	tkn, err = New(newTokens(t)).FeedbackToken(2, "jane@example.com")
	require.NoError(t, err)
	actual, err = New(newTokens(t)).Validate(tkn, TypeSubmitFeedback)
	require.NoError(t, err)
	assert.Equal(t, token.DefaultFormTTL, actual.ExpiresAt.Sub(actual.IssuedAt))
}

func TestService_TTLCappedAtTokenLifetime(t *testing.T) {
	tokens := newTokens(t)
	forms := New(tokens, WithTTL(30*24*time.Hour))
	tkn, err := forms.ITClearanceToken(2, "jane@example.com")
	require.NoError(t, err)
	actual, err := forms.Validate(tkn, TypeITClearance)
	require.NoError(t, err)
	assert.Equal(t, tokens.FormTTL(), actual.ExpiresAt.Sub(actual.IssuedAt))

	_, err = forms.Issue(TypeITClearance, nil, tokens.FormTTL()+time.Minute)
	assert.ErrorIs(t, err, model.ErrValidationFailed)
}

func TestService_Redeem(t *testing.T) {
	ctx := context.Background()
	t.Run("stateless", func(t *testing.T) {
		forms := New(newTokens(t))
		tkn, err := forms.FeedbackToken(3, "jane@example.com")
		require.NoError(t, err)
		_, err = forms.Redeem(ctx, tkn, TypeSubmitFeedback)
		assert.NoError(t, err)
		_, err = forms.Redeem(ctx, tkn, TypeSubmitFeedback)
		assert.NoError(t, err)
	})
	t.Run("single use", func(t *testing.T) {
		forms := New(newTokens(t), WithLedger(token.NewMemoryLedger()))
		tkn, err := forms.FeedbackToken(3, "jane@example.com")
		require.NoError(t, err)
		_, err = forms.Redeem(ctx, tkn, TypeSkipInterview)
		assert.ErrorIs(t, err, model.ErrWrongFormType)
		_, err = forms.Redeem(ctx, tkn, TypeSubmitFeedback)
		assert.NoError(t, err, "wrong form attempt does not consume the token")
		_, err = forms.Redeem(ctx, tkn, TypeSubmitFeedback)
		assert.ErrorIs(t, err, model.ErrReplayed)
	})
}
