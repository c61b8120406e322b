// Package mocks provides testify mock implementations of the
// persistence ports for unit testing the coordinators.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"blogstore/domain/model"
	"blogstore/infrastructure/migration"
)

// MockUserRepository mocks ports.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	if user := args.Get(0); user != nil {
		return user.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockUserByEmailRepository mocks ports.UserByEmailRepository
type MockUserByEmailRepository struct {
	mock.Mock
}

func (m *MockUserByEmailRepository) Save(ctx context.Context, row *model.UserByEmail) error {
	args := m.Called(ctx, row)
	return args.Error(0)
}

func (m *MockUserByEmailRepository) FindByEmail(ctx context.Context, email string) (*model.UserByEmail, error) {
	args := m.Called(ctx, email)
	if row := args.Get(0); row != nil {
		return row.(*model.UserByEmail), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserByEmailRepository) Delete(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// MockUserStatsRepository mocks ports.UserStatsRepository
type MockUserStatsRepository struct {
	mock.Mock
}

func (m *MockUserStatsRepository) Save(ctx context.Context, stats *model.UserStats) error {
	args := m.Called(ctx, stats)
	return args.Error(0)
}

func (m *MockUserStatsRepository) FindByUser(ctx context.Context, userID string) (*model.UserStats, error) {
	args := m.Called(ctx, userID)
	if stats := args.Get(0); stats != nil {
		return stats.(*model.UserStats), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockPostByUserRepository mocks ports.PostByUserRepository
type MockPostByUserRepository struct {
	mock.Mock
}

func (m *MockPostByUserRepository) Save(ctx context.Context, post *model.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostByUserRepository) Delete(ctx context.Context, key model.PostByUserKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockPostByUserRepository) FindByUser(ctx context.Context, userID string, limit int) ([]*model.Post, error) {
	args := m.Called(ctx, userID, limit)
	if posts := args.Get(0); posts != nil {
		return posts.([]*model.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockPostByIDRepository mocks ports.PostByIDRepository
type MockPostByIDRepository struct {
	mock.Mock
}

func (m *MockPostByIDRepository) Save(ctx context.Context, post *model.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostByIDRepository) Delete(ctx context.Context, postID string) error {
	args := m.Called(ctx, postID)
	return args.Error(0)
}

func (m *MockPostByIDRepository) FindByID(ctx context.Context, postID string) (*model.Post, error) {
	args := m.Called(ctx, postID)
	if post := args.Get(0); post != nil {
		return post.(*model.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockPostByUserStatusRepository mocks ports.PostByUserStatusRepository
type MockPostByUserStatusRepository struct {
	mock.Mock
}

func (m *MockPostByUserStatusRepository) Save(ctx context.Context, post *model.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostByUserStatusRepository) Delete(ctx context.Context, key model.PostByUserStatusKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockPostByUserStatusRepository) FindByUserAndStatus(ctx context.Context, userID, status string) ([]*model.Post, error) {
	args := m.Called(ctx, userID, status)
	if posts := args.Get(0); posts != nil {
		return posts.([]*model.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockSchemaClient mocks migration.SchemaClient
type MockSchemaClient struct {
	mock.Mock
}

func (m *MockSchemaClient) EnsureNamespace(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSchemaClient) DropNamespace(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSchemaClient) EnsureTable(ctx context.Context, spec migration.TableSpec) error {
	args := m.Called(ctx, spec)
	return args.Error(0)
}

func (m *MockSchemaClient) EnsureIndex(ctx context.Context, spec migration.IndexSpec) error {
	args := m.Called(ctx, spec)
	return args.Error(0)
}

func (m *MockSchemaClient) ListTables(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if tables := args.Get(0); tables != nil {
		return tables.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockLedger mocks migration.Ledger
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Append(ctx context.Context, record migration.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockLedger) Records(ctx context.Context) ([]migration.Record, error) {
	args := m.Called(ctx)
	if records := args.Get(0); records != nil {
		return records.([]migration.Record), args.Error(1)
	}
	return nil, args.Error(1)
}
