package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"blogstore/application/fanout"
	"blogstore/infrastructure/persistence/memory"
	pkgerrors "blogstore/pkg/errors"
	"blogstore/tests/mocks"
)

func newUserServiceOverMemory(store *memory.Store) *UserService {
	return NewUserService(store.Users(), store.UsersByEmail(), store.Stats(), zap.NewNop())
}

func TestCreateUser_WritesAllThreeViews(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newUserServiceOverMemory(store)

	user, err := svc.CreateUser(ctx, "Ann", "ann@example.com")
	require.NoError(t, err)

	stored, err := store.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Ann", stored.Name)

	row, err := store.UsersByEmail().FindByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, user.ID, row.UserID)
	assert.Equal(t, "Ann", row.Name)

	stats, err := store.Stats().FindByUser(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 0, stats.TotalPosts)
}

func TestCreateUser_DuplicateEmailConflicts(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newUserServiceOverMemory(store)

	_, err := svc.CreateUser(ctx, "Ann", "ann@example.com")
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, "Other Ann", "ann@example.com")
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestUpdateUser_EmailChangeMovesEmailRow(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newUserServiceOverMemory(store)

	user, err := svc.CreateUser(ctx, "Ann", "ann@example.com")
	require.NoError(t, err)

	newEmail := "ann.b@example.com"
	updated, err := svc.UpdateUser(ctx, user.ID, UserUpdate{Email: &newEmail})
	require.NoError(t, err)
	assert.Equal(t, newEmail, updated.Email)

	oldRow, err := store.UsersByEmail().FindByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Nil(t, oldRow)

	newRow, err := store.UsersByEmail().FindByEmail(ctx, newEmail)
	require.NoError(t, err)
	require.NotNil(t, newRow)
	assert.Equal(t, user.ID, newRow.UserID)
}

func TestUpdateUser_EmailChangeToTakenEmailConflicts(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newUserServiceOverMemory(store)

	_, err := svc.CreateUser(ctx, "Ann", "ann@example.com")
	require.NoError(t, err)
	bob, err := svc.CreateUser(ctx, "Bob", "bob@example.com")
	require.NoError(t, err)

	taken := "ann@example.com"
	_, err = svc.UpdateUser(ctx, bob.ID, UserUpdate{Email: &taken})
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestUpdateUser_NameOnlyUpdatesEmailRowInPlace(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newUserServiceOverMemory(store)

	user, err := svc.CreateUser(ctx, "Ann", "ann@example.com")
	require.NoError(t, err)

	name := "Ann B"
	_, err = svc.UpdateUser(ctx, user.ID, UserUpdate{Name: &name})
	require.NoError(t, err)

	row, err := store.UsersByEmail().FindByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "Ann B", row.Name)
}

func TestUpdateUser_SameEmailIsNotAChange(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newUserServiceOverMemory(store)

	user, err := svc.CreateUser(ctx, "Ann", "ann@example.com")
	require.NoError(t, err)

	same := "ann@example.com"
	_, err = svc.UpdateUser(ctx, user.ID, UserUpdate{Email: &same})
	require.NoError(t, err)

	row, err := store.UsersByEmail().FindByEmail(ctx, same)
	require.NoError(t, err)
	require.NotNil(t, row)
}

func TestUpdateUser_NotFound(t *testing.T) {
	ctx := context.Background()
	svc := newUserServiceOverMemory(memory.NewStore())

	name := "Nobody"
	_, err := svc.UpdateUser(ctx, "missing", UserUpdate{Name: &name})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestGetUserByEmail_ResolvesThroughReverseLookup(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newUserServiceOverMemory(store)

	created, err := svc.CreateUser(ctx, "Ann", "ann@example.com")
	require.NoError(t, err)

	user, err := svc.GetUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, created.ID, user.ID)

	miss, err := svc.GetUserByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestGetUserWithStats_MissingStatsRowDefaultsToZero(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newUserServiceOverMemory(store)

	user, err := svc.CreateUser(ctx, "Ann", "ann@example.com")
	require.NoError(t, err)

	// Simulate a user whose stats row was never written.
	store2 := memory.NewStore()
	require.NoError(t, store2.Users().Save(ctx, user))
	svc2 := newUserServiceOverMemory(store2)

	result, err := svc2.GetUserWithStats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Stats.TotalPosts)
	assert.Equal(t, user.ID, result.Stats.UserID)
}

func TestGetUserWithStats_MissingUserIsAnError(t *testing.T) {
	ctx := context.Background()
	svc := newUserServiceOverMemory(memory.NewStore())

	_, err := svc.GetUserWithStats(ctx, "missing")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestCreateUser_PartialFailureLeavesEarlierWrites(t *testing.T) {
	ctx := context.Background()
	userRepo := new(mocks.MockUserRepository)
	emailRepo := new(mocks.MockUserByEmailRepository)
	statsRepo := new(mocks.MockUserStatsRepository)
	svc := NewUserService(userRepo, emailRepo, statsRepo, zap.NewNop())

	boom := errors.New("write rejected")
	emailRepo.On("FindByEmail", ctx, "ann@example.com").Return(nil, nil)
	userRepo.On("Save", ctx, mock.Anything).Return(nil)
	emailRepo.On("Save", ctx, mock.Anything).Return(boom)

	_, err := svc.CreateUser(ctx, "Ann", "ann@example.com")
	require.Error(t, err)

	var stepErr *fanout.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, 1, stepErr.Index)
	assert.Equal(t, "put users_by_email", stepErr.Name)
	assert.ErrorIs(t, err, boom)

	// The stats step never ran.
	statsRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	userRepo.AssertExpectations(t)
	emailRepo.AssertExpectations(t)
}
