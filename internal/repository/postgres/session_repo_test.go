package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/mkaradima/support-chat-backend/internal/repository/postgres"
	"github.com/mkaradima/support-chat-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSessionRepository_GetActiveByUserID(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewSessionRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	now := time.Now().UTC()

	// A closed session, an older open one and a newer open one. Nothing
	// prevents two open sessions from coexisting; the newest wins.
	testutil.NewSessionBuilder(user.ID).
		StartedAt(now.Add(-3 * time.Hour)).
		Ended(now.Add(-2 * time.Hour)).
		Build(t, testDB.DB)
	testutil.NewSessionBuilder(user.ID).
		StartedAt(now.Add(-2 * time.Hour)).
		Build(t, testDB.DB)
	newest := testutil.NewSessionBuilder(user.ID).
		StartedAt(now.Add(-1 * time.Hour)).
		Build(t, testDB.DB)

	active, err := repo.GetActiveByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, newest.ID, active.ID)
	assert.Nil(t, active.EndedAt)
}

func TestSessionRepository_GetActiveByUserID_NoneOpen(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewSessionRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	now := time.Now().UTC()

	testutil.NewSessionBuilder(user.ID).
		StartedAt(now.Add(-2 * time.Hour)).
		Ended(now.Add(-1 * time.Hour)).
		Build(t, testDB.DB)

	_, err := repo.GetActiveByUserID(ctx, user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSessionRepository_Update_ClosesSession(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewSessionRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	session := testutil.NewSessionBuilder(user.ID).Build(t, testDB.DB)

	ended := time.Now().UTC()
	session.EndedAt = &ended
	require.NoError(t, repo.Update(ctx, session))

	stored, err := repo.GetByID(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.EndedAt)
	assert.WithinDuration(t, ended, *stored.EndedAt, time.Second)
}
