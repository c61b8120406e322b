package ports

import (
	"context"

	"blogstore/domain/model"
)

// The view store offers per-table get/put/delete/scan with composite
// partition+clustering keys and no cross-table atomicity. Each port below
// covers one denormalized view. Lookup misses return (nil, nil); errors
// are reserved for store-level failures.

// UserRepository persists the canonical users view, keyed by user id.
type UserRepository interface {
	// Save persists a user (create or update)
	Save(ctx context.Context, user *model.User) error

	// FindByID retrieves a user by id, nil if absent
	FindByID(ctx context.Context, userID string) (*model.User, error)
}

// UserByEmailRepository persists the users_by_email reverse-lookup view,
// keyed by email. Email uniqueness is enforced by checking this view
// before insert; the store offers no native uniqueness constraint.
type UserByEmailRepository interface {
	// Save persists an email row (create or in-place update)
	Save(ctx context.Context, row *model.UserByEmail) error

	// FindByEmail retrieves the row for an email, nil if absent
	FindByEmail(ctx context.Context, email string) (*model.UserByEmail, error)

	// Delete removes the row for an email
	Delete(ctx context.Context, email string) error
}

// UserStatsRepository persists the per-user aggregate counters.
type UserStatsRepository interface {
	// Save writes the full stats row (last-writer-wins)
	Save(ctx context.Context, stats *model.UserStats) error

	// FindByUser retrieves stats for a user, nil if absent
	FindByUser(ctx context.Context, userID string) (*model.UserStats, error)
}

// PostByUserRepository persists the posts_by_user view, keyed by
// (userId, createdAt DESC, postId ASC).
type PostByUserRepository interface {
	// Save persists the post's row in this view
	Save(ctx context.Context, post *model.Post) error

	// Delete removes a row by its composite key
	Delete(ctx context.Context, key model.PostByUserKey) error

	// FindByUser scans a user's partition in clustering order; limit <= 0
	// means unbounded
	FindByUser(ctx context.Context, userID string, limit int) ([]*model.Post, error)
}

// PostByIDRepository persists the posts_by_id view, keyed by post id.
type PostByIDRepository interface {
	// Save persists the post's row in this view
	Save(ctx context.Context, post *model.Post) error

	// Delete removes the row for a post id
	Delete(ctx context.Context, postID string) error

	// FindByID retrieves a post by id, nil if absent
	FindByID(ctx context.Context, postID string) (*model.Post, error)
}

// PostByUserStatusRepository persists the posts_by_user_status view,
// keyed by (userId, status ASC, createdAt DESC, postId ASC). The status
// is a clustering component, so a status change is delete-old plus
// insert-new, never an in-place update.
type PostByUserStatusRepository interface {
	// Save persists the post's row under its current status
	Save(ctx context.Context, post *model.Post) error

	// Delete removes a row by its composite key
	Delete(ctx context.Context, key model.PostByUserStatusKey) error

	// FindByUserAndStatus scans one user+status slice in clustering order
	FindByUserAndStatus(ctx context.Context, userID, status string) ([]*model.Post, error)
}

// AdjustGuard serializes stats read-modify-write cycles per user. The
// default implementation is a process-local keyed mutex: enough for a
// single-writer deployment, not for multiple service instances sharing
// one store. That deployment needs a conditional-write or dedicated
// counter backend plugged in here.
type AdjustGuard interface {
	// Do runs fn under the guard for the given user
	Do(ctx context.Context, userID string, fn func(ctx context.Context) error) error
}
