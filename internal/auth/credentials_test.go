package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/cinetrack/cinetrack/internal/database"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&database.User{}, &database.Producer{}))
	return db
}

func TestSignupAndLogin(t *testing.T) {
	store := NewCredentialStore(testDB(t), 4)
	ctx := context.Background()

	ident, err := store.Signup(ctx, RoleUser, "alice", "alice@example.com", "hunter22")
	require.NoError(t, err)
	assert.NotZero(t, ident.ID)
	assert.Equal(t, "alice", ident.Username)
	assert.Equal(t, RoleUser, ident.Role)

	back, err := store.Login(ctx, RoleUser, "alice@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, ident.ID, back.ID)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	store := NewCredentialStore(testDB(t), 4)
	ctx := context.Background()

	_, err := store.Signup(ctx, RoleUser, "alice", "alice@example.com", "hunter22")
	require.NoError(t, err)

	_, err = store.Login(ctx, RoleUser, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidLogin)

	_, err = store.Login(ctx, RoleUser, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidLogin)
}

func TestSignupDuplicates(t *testing.T) {
	store := NewCredentialStore(testDB(t), 4)
	ctx := context.Background()

	_, err := store.Signup(ctx, RoleUser, "alice", "alice@example.com", "hunter22")
	require.NoError(t, err)

	_, err = store.Signup(ctx, RoleUser, "other", "alice@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = store.Signup(ctx, RoleUser, "alice", "fresh@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestPartitionsAreIndependent(t *testing.T) {
	store := NewCredentialStore(testDB(t), 4)
	ctx := context.Background()

	// The same username and email may register once per partition.
	_, err := store.Signup(ctx, RoleUser, "indie", "indie@example.com", "hunter22")
	require.NoError(t, err)
	prod, err := store.Signup(ctx, RoleProducer, "indie", "indie@example.com", "hunter22")
	require.NoError(t, err)

	// Logging into the user partition never yields the producer account.
	back, err := store.Login(ctx, RoleUser, "indie@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, back.Role)
	assert.NotEqual(t, prod.Role, back.Role)
}

func TestResolve(t *testing.T) {
	store := NewCredentialStore(testDB(t), 4)
	ctx := context.Background()

	ident, err := store.Signup(ctx, RoleProducer, "studio", "studio@example.com", "hunter22")
	require.NoError(t, err)

	got, err := store.Resolve(ctx, RoleProducer, "studio")
	require.NoError(t, err)
	assert.Equal(t, ident.ID, got.ID)

	_, err = store.Resolve(ctx, RoleProducer, "ghost")
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestLoginNormalizesEmail(t *testing.T) {
	store := NewCredentialStore(testDB(t), 4)
	ctx := context.Background()

	_, err := store.Signup(ctx, RoleUser, "alice", "  Alice@Example.COM ", "hunter22")
	require.NoError(t, err)

	_, err = store.Login(ctx, RoleUser, "alice@example.com", "hunter22")
	assert.NoError(t, err)
}
