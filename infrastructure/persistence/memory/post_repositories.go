package memory

import (
	"context"
	"strings"

	"blogstore/domain/model"
)

// PostByUserRepository is the in-memory posts_by_user view.
type PostByUserRepository struct {
	store *Store
}

// Save persists the post's row in this view
func (r *PostByUserRepository) Save(ctx context.Context, post *model.Post) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rows, ok := r.store.postsByUser[post.UserID]
	if !ok {
		rows = make(map[string]*model.Post)
		r.store.postsByUser[post.UserID] = rows
	}
	rows[byUserRowKey(post.ByUserKey())] = post.Clone()
	return nil
}

// Delete removes a row by its composite key
func (r *PostByUserRepository) Delete(ctx context.Context, key model.PostByUserKey) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if rows, ok := r.store.postsByUser[key.UserID]; ok {
		delete(rows, byUserRowKey(key))
	}
	return nil
}

// FindByUser scans a user's partition in clustering order; limit <= 0
// means unbounded
func (r *PostByUserRepository) FindByUser(ctx context.Context, userID string, limit int) ([]*model.Post, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	posts := make([]*model.Post, 0, len(r.store.postsByUser[userID]))
	for _, post := range r.store.postsByUser[userID] {
		posts = append(posts, post.Clone())
	}
	sortPosts(posts)
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

// PostByIDRepository is the in-memory posts_by_id view.
type PostByIDRepository struct {
	store *Store
}

// Save persists the post's row in this view
func (r *PostByIDRepository) Save(ctx context.Context, post *model.Post) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.postsByID[post.PostID] = post.Clone()
	return nil
}

// Delete removes the row for a post id
func (r *PostByIDRepository) Delete(ctx context.Context, postID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.postsByID, postID)
	return nil
}

// FindByID retrieves a post by id, nil if absent
func (r *PostByIDRepository) FindByID(ctx context.Context, postID string) (*model.Post, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	post, ok := r.store.postsByID[postID]
	if !ok {
		return nil, nil
	}
	return post.Clone(), nil
}

// PostByUserStatusRepository is the in-memory posts_by_user_status view.
type PostByUserStatusRepository struct {
	store *Store
}

// Save persists the post's row under its current status
func (r *PostByUserStatusRepository) Save(ctx context.Context, post *model.Post) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rows, ok := r.store.postsByStatus[post.UserID]
	if !ok {
		rows = make(map[string]*model.Post)
		r.store.postsByStatus[post.UserID] = rows
	}
	rows[byStatusRowKey(post.StatusKey(post.Status))] = post.Clone()
	return nil
}

// Delete removes a row by its composite key. The key carries the status
// the row was written under, not the post's current status.
func (r *PostByUserStatusRepository) Delete(ctx context.Context, key model.PostByUserStatusKey) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if rows, ok := r.store.postsByStatus[key.UserID]; ok {
		delete(rows, byStatusRowKey(key))
	}
	return nil
}

// FindByUserAndStatus scans one user+status slice in clustering order
func (r *PostByUserStatusRepository) FindByUserAndStatus(ctx context.Context, userID, status string) ([]*model.Post, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	prefix := escapeStatus(status) + "#"
	posts := make([]*model.Post, 0)
	for key, post := range r.store.postsByStatus[userID] {
		if strings.HasPrefix(key, prefix) {
			posts = append(posts, post.Clone())
		}
	}
	sortPosts(posts)
	return posts, nil
}
