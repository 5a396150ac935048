package postgres

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"signage-user-service/internal/domain/user"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// Every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	// Migrate the schema
	err = db.AutoMigrate(&UserSchema{})
	require.NoError(t, err)

	return db
}

func newUser(name string, groups ...string) *user.User {
	return &user.User{Name: name, Groups: groups, PasswordHash: "$2a$10$hash"}
}

func TestUserRepoPG_CreateAndGet(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), 0, zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser("alice", "admin", "editor")))

	got, err := repo.GetByName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Name)
	assert.Equal(t, []string{"admin", "editor"}, got.Groups)
	assert.Equal(t, "$2a$10$hash", got.PasswordHash)

	exists, err := repo.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepoPG_NilGroupsStoredEmpty(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), 0, zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser("kiosk")))

	got, err := repo.GetByName(ctx, "kiosk")
	require.NoError(t, err)
	assert.NotNil(t, got.Groups)
	assert.Empty(t, got.Groups)
}

func TestUserRepoPG_GetByName_NotFound(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), 0, zaptest.NewLogger(t))

	_, err := repo.GetByName(context.Background(), "ghost")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestUserRepoPG_Create_DoesNotOverwrite(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), 0, zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser("alice", "admin")))

	second := newUser("alice", "display")
	second.PasswordHash = "$2a$10$other"
	err := repo.Create(ctx, second)
	assert.ErrorIs(t, err, user.ErrAlreadyExists)

	got, err := repo.GetByName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin"}, got.Groups)
	assert.Equal(t, "$2a$10$hash", got.PasswordHash)
}

func TestUserRepoPG_Create_Capacity(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), 2, zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser("a")))
	require.NoError(t, repo.Create(ctx, newUser("b")))

	err := repo.Create(ctx, newUser("c"))
	assert.ErrorIs(t, err, user.ErrTooManyUsers)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestUserRepoPG_Create_Nil(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), 0, zaptest.NewLogger(t))
	assert.Error(t, repo.Create(context.Background(), nil))
}

func TestUserRepoPG_Create_ConcurrentSameName(t *testing.T) {
	repo := NewUserRepoPG(setupTestDB(t), 0, zaptest.NewLogger(t))
	ctx := context.Background()

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := newUser("race")
			u.PasswordHash = fmt.Sprintf("hash-%d", i)
			errs[i] = repo.Create(ctx, u)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, user.ErrAlreadyExists)
	}
	assert.Equal(t, 1, succeeded)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
