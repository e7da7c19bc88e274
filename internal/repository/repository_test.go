package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nsvirk/ssqapi/internal/lottery"
	"github.com/nsvirk/ssqapi/internal/models"
	"github.com/nsvirk/ssqapi/internal/repository"
	"github.com/nsvirk/ssqapi/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserFirstIsAdmin(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(testutil.NewDB(t))

	first := &models.UserModel{Username: "alice", PasswordHash: "x"}
	require.NoError(t, repo.CreateUser(ctx, first))
	assert.True(t, first.IsAdmin)
	assert.True(t, first.IsApproved)

	second := &models.UserModel{Username: "bob", PasswordHash: "x"}
	require.NoError(t, repo.CreateUser(ctx, second))
	assert.False(t, second.IsAdmin)
	assert.False(t, second.IsApproved)

	pending, err := repo.ListPendingUsers(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "bob", pending[0].Username)

	require.NoError(t, repo.ApproveUser(ctx, second.ID))
	got, err := repo.GetUserByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, got.IsApproved)

	assert.ErrorIs(t, repo.ApproveUser(ctx, 999), repository.ErrNotFound)
}

func TestCreateUserConcurrentFirstSignupsYieldOneAdmin(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	repo := repository.NewUserRepository(db)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.CreateUser(ctx, &models.UserModel{Username: fmt.Sprintf("user%d", i), PasswordHash: "x"})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	var admins int64
	require.NoError(t, db.Model(&models.UserModel{}).Where("is_admin = ?", true).Count(&admins).Error)
	assert.EqualValues(t, 1, admins)

	pending, err := repo.ListPendingUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, n-1)

	err = repo.CreateUser(ctx, &models.UserModel{Username: "user0", PasswordHash: "x"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	users := repository.NewUserRepository(db)
	sessions := repository.NewSessionRepository(db)

	u := &models.UserModel{Username: "alice", PasswordHash: "x"}
	require.NoError(t, users.CreateUser(ctx, u))

	now := time.Now()
	live := &models.SessionModel{SessionToken: "live", UserID: u.ID, ExpiresAt: now.Add(time.Hour)}
	stale := &models.SessionModel{SessionToken: "stale", UserID: u.ID, ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, sessions.CreateSession(ctx, live))
	require.NoError(t, sessions.CreateSession(ctx, stale))

	got, err := sessions.GetSessionByToken(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.User.Username)

	purged, err := sessions.DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)

	n, err := sessions.DeleteSession(ctx, "live")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = sessions.GetSessionByToken(ctx, "live")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestInsertDrawsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewDrawRepository(testutil.NewDB(t))

	rows := []models.DrawModel{
		models.NewDrawModel(testutil.Result("2024001", "2024-01-02", 5, 9, 3, 21, 14, 30, 1)),
		models.NewDrawModel(testutil.Result("2024002", "2024-01-04", 12, 2, 4, 6, 8, 10, 12)),
	}
	n, err := repo.InsertDraws(ctx, rows)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = repo.InsertDraws(ctx, rows)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	total, err := repo.CountDraws(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	list, err := repo.ListDraws(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2024002", list[0].IssueNumber)
	assert.Equal(t, []string{"01", "03", "09", "14", "21", "30"}, list[1].SortedReds())
	assert.Equal(t, []string{"09", "03", "21", "14", "30", "01"}, list[1].OrderReds())
}

func TestDrawExistsMatchesAllSevenFields(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	testutil.SeedDraws(t, db, testutil.Result("2024001", "2024-01-02", 5, 9, 3, 21, 14, 30, 1))
	repo := repository.NewDrawRepository(db)

	exists, err := repo.DrawExists(ctx, lottery.NewPlay([]int{1, 3, 9, 14, 21, 30}, 5))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.DrawExists(ctx, lottery.NewPlay([]int{1, 3, 9, 14, 21, 30}, 6))
	require.NoError(t, err)
	assert.False(t, exists, "different blue")

	exists, err = repo.DrawExists(ctx, lottery.NewPlay([]int{1, 3, 9, 14, 21, 31}, 5))
	require.NoError(t, err)
	assert.False(t, exists, "different red")

	// the notify hook is a no-op outside Postgres
	assert.NoError(t, repo.NotifyHistoryChanged(ctx, "{}"))
}

func TestUpdateDrawDates(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	testutil.SeedDraws(t, db,
		testutil.Result("2024001", "2024-01-01", 5, 1, 2, 3, 4, 5, 6),
		testutil.Result("2024002", "2024-01-01", 5, 1, 2, 3, 4, 5, 7),
		testutil.Result("2024010", "2024-01-01", 5, 1, 2, 3, 4, 5, 8),
	)
	repo := repository.NewDrawRepository(db)

	inRange, err := repo.ListDrawsInRange(ctx, "2024001", "2024002")
	require.NoError(t, err)
	require.Len(t, inRange, 2)

	want := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
	n, err := repo.UpdateDrawDates(ctx, map[uint]time.Time{inRange[1].ID: want})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	existing, err := repo.ExistingIssues(ctx, []string{"2024002", "2024003"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"2024002": true}, existing)
}
