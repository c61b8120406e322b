package memory

import (
	"context"

	"blogstore/domain/model"
)

// UserRepository is the in-memory users view.
type UserRepository struct {
	store *Store
}

// Save persists a user (create or update)
func (r *UserRepository) Save(ctx context.Context, user *model.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.users[user.ID] = cloneUser(user)
	return nil
}

// FindByID retrieves a user by id, nil if absent
func (r *UserRepository) FindByID(ctx context.Context, userID string) (*model.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	user, ok := r.store.users[userID]
	if !ok {
		return nil, nil
	}
	return cloneUser(user), nil
}

// UserByEmailRepository is the in-memory users_by_email view.
type UserByEmailRepository struct {
	store *Store
}

// Save persists an email row (create or in-place update)
func (r *UserByEmailRepository) Save(ctx context.Context, row *model.UserByEmail) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.usersByEmail[row.Email] = cloneEmailRow(row)
	return nil
}

// FindByEmail retrieves the row for an email, nil if absent
func (r *UserByEmailRepository) FindByEmail(ctx context.Context, email string) (*model.UserByEmail, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	row, ok := r.store.usersByEmail[email]
	if !ok {
		return nil, nil
	}
	return cloneEmailRow(row), nil
}

// Delete removes the row for an email
func (r *UserByEmailRepository) Delete(ctx context.Context, email string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.usersByEmail, email)
	return nil
}

// UserStatsRepository is the in-memory user_stats view.
type UserStatsRepository struct {
	store *Store
}

// Save writes the full stats row (last-writer-wins)
func (r *UserStatsRepository) Save(ctx context.Context, stats *model.UserStats) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.stats[stats.UserID] = cloneStats(stats)
	return nil
}

// FindByUser retrieves stats for a user, nil if absent
func (r *UserStatsRepository) FindByUser(ctx context.Context, userID string) (*model.UserStats, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	stats, ok := r.store.stats[userID]
	if !ok {
		return nil, nil
	}
	return cloneStats(stats), nil
}
