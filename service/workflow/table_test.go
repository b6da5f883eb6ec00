package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/offboard/model"
)

func TestTable_UniqueKeys(t *testing.T) {
	assert.Len(t, index, len(table))
	for _, transition := range Transitions() {
		assert.True(t, transition.From.IsValid(), transition.From)
		assert.True(t, transition.To.IsValid(), transition.To)
		assert.False(t, transition.From.IsTerminal(), "no edge leaves a terminal status")
		if transition.Role.IsApprover() {
			assert.True(t, transition.Action.IsDecision())
		} else {
			assert.Equal(t, model.RoleOperator, transition.Role)
			assert.False(t, transition.Action.IsDecision())
		}
	}
}

func TestLookup(t *testing.T) {
	transition, ok := Lookup(model.RoleLeader, model.ActionApprove, model.StatusSubmitted)
	if assert.True(t, ok) {
		assert.Equal(t, model.StatusLeaderApproved, transition.To)
		assert.Equal(t, model.EffectNotifyRegionalHead, transition.Effect)
	}
	_, ok = Lookup(model.RoleRegionalHead, model.ActionApprove, model.StatusSubmitted)
	assert.False(t, ok)
	assert.True(t, Supports(model.RoleOperator, model.ActionFinalize))
	assert.False(t, Supports(model.RoleOperator, model.ActionApprove))
}
