package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/offboard/model"
	"github.com/viant/offboard/service/dao"
	"github.com/viant/offboard/service/dao/daotest"
)

func TestRepository(t *testing.T) {
	daotest.Run(t, func(t *testing.T) dao.Repository { return New() })
}

func TestRepository_Isolation(t *testing.T) {
	repo := New()
	ctx := context.Background()
	submission := model.NewSubmission("Jane Doe", "jane@example.com", time.Time{})
	id, err := repo.Create(ctx, submission)
	require.NoError(t, err)

	submission.Status = model.StatusOffboarded
	loaded, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSubmitted, loaded.Status)

	loaded.Status = model.StatusOffboarded
	again, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSubmitted, again.Status)
}
