package services

import (
	"context"

	"go.uber.org/zap"

	"blogstore/application/fanout"
	"blogstore/application/ports"
	"blogstore/domain/model"
	pkgerrors "blogstore/pkg/errors"
)

// PostService coordinates the fanout of every post write across the three
// post views and drives the stats counters on status transitions. The
// views are written one by one with no cross-table atomicity: a failure
// partway through leaves the earlier writes in place, surfaced to the
// caller as a fanout.StepError. Nothing is retried or rolled back here.
type PostService struct {
	userRepo ports.UserRepository
	byUser   ports.PostByUserRepository
	byID     ports.PostByIDRepository
	byStatus ports.PostByUserStatusRepository
	stats    *StatsService
	logger   *zap.Logger
}

// NewPostService creates a new post service
func NewPostService(
	userRepo ports.UserRepository,
	byUser ports.PostByUserRepository,
	byID ports.PostByIDRepository,
	byStatus ports.PostByUserStatusRepository,
	stats *StatsService,
	logger *zap.Logger,
) *PostService {
	return &PostService{
		userRepo: userRepo,
		byUser:   byUser,
		byID:     byID,
		byStatus: byStatus,
		stats:    stats,
		logger:   logger,
	}
}

// CreatePost writes a new post, with identical field values, to all three
// post views and increments the owner's stats. The owning user must
// exist; the existence check is a plain read, not atomic with the writes.
func (s *PostService) CreatePost(ctx context.Context, userID, title, content, status string, tags []string) (*model.Post, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, pkgerrors.NewNotFoundError("user")
	}

	post, err := model.NewPost(userID, title, content, status, tags)
	if err != nil {
		return nil, err
	}

	plan := fanout.NewPlan("create_post", s.logger).
		Then("put posts_by_user", func(ctx context.Context) error {
			return s.byUser.Save(ctx, post)
		}).
		Then("put posts_by_id", func(ctx context.Context) error {
			return s.byID.Save(ctx, post)
		}).
		Then("put posts_by_user_status", func(ctx context.Context) error {
			return s.byStatus.Save(ctx, post)
		}).
		Then("increment stats", func(ctx context.Context) error {
			return s.stats.Adjust(ctx, userID, post.Status, +1)
		})

	if _, err := plan.Apply(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("Post created",
		zap.String("postID", post.PostID),
		zap.String("userID", userID),
		zap.String("status", post.Status),
	)
	return post, nil
}

// UpdatePost applies the non-nil fields of the update over the stored
// post and fans the result out to the views. A status change moves the
// posts_by_user_status row: delete under the old status key, insert under
// the new one, with a double stats adjustment.
func (s *PostService) UpdatePost(ctx context.Context, userID, postID string, update model.PostUpdate) (*model.Post, error) {
	post, err := s.findUserPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	oldStatus := post.Status
	post.Apply(update)

	if _, err := s.updatePlan(post, oldStatus, post.Status != oldStatus).Apply(ctx); err != nil {
		return nil, err
	}
	return post, nil
}

// PublishPost forces the post's status to PUBLISHED, carrying title,
// content and tags over unchanged. It always takes the status-change
// path (old status row deleted, PUBLISHED row inserted, stats adjusted
// both ways), matching updatePost's transition semantics.
func (s *PostService) PublishPost(ctx context.Context, userID, postID string) (*model.Post, error) {
	post, err := s.findUserPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	oldStatus := post.Status
	status := model.StatusPublished
	post.Apply(model.PostUpdate{Status: &status})

	if _, err := s.updatePlan(post, oldStatus, true).Apply(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("Post published",
		zap.String("postID", post.PostID),
		zap.String("userID", userID),
		zap.String("previousStatus", oldStatus),
	)
	return post, nil
}

// DeletePost removes the post from all three views and decrements the
// stats bucket for its last status. The deletes are not atomic; after a
// successful return no view contains the post.
func (s *PostService) DeletePost(ctx context.Context, userID, postID string) error {
	post, err := s.findUserPost(ctx, userID, postID)
	if err != nil {
		return err
	}

	plan := fanout.NewPlan("delete_post", s.logger).
		Then("delete posts_by_user", func(ctx context.Context) error {
			return s.byUser.Delete(ctx, post.ByUserKey())
		}).
		Then("delete posts_by_id", func(ctx context.Context) error {
			return s.byID.Delete(ctx, post.PostID)
		}).
		Then("delete posts_by_user_status", func(ctx context.Context) error {
			return s.byStatus.Delete(ctx, post.StatusKey(post.Status))
		}).
		Then("decrement stats", func(ctx context.Context) error {
			return s.stats.Adjust(ctx, userID, post.Status, -1)
		})

	_, err = plan.Apply(ctx)
	return err
}

// GetUserPosts returns a user's posts in createdAt-descending order.
// limit <= 0 returns the whole partition.
func (s *PostService) GetUserPosts(ctx context.Context, userID string, limit int) ([]*model.Post, error) {
	return s.byUser.FindByUser(ctx, userID, limit)
}

// GetUserPostsByStatus reads the posts_by_user_status view directly; the
// view exists precisely so this query never scans the full partition.
func (s *PostService) GetUserPostsByStatus(ctx context.Context, userID, status string) ([]*model.Post, error) {
	return s.byStatus.FindByUserAndStatus(ctx, userID, status)
}

// GetPostByID looks a post up in posts_by_id. A miss is (nil, nil), not
// an error.
func (s *PostService) GetPostByID(ctx context.Context, postID string) (*model.Post, error) {
	return s.byID.FindByID(ctx, postID)
}

// findUserPost locates a post by scanning the user's posts_by_user
// partition and filtering on postID. The store has no composite
// user+post index, so the O(posts-per-user) scan is the only lookup path
// for updates and deletes. It is also what recovers the immutable
// createdAt needed to rebuild clustering keys.
func (s *PostService) findUserPost(ctx context.Context, userID, postID string) (*model.Post, error) {
	posts, err := s.byUser.FindByUser(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		if p.PostID == postID {
			return p, nil
		}
	}
	return nil, pkgerrors.NewNotFoundError("post")
}

// updatePlan builds the fanout for an already-mutated post. The observed
// write order is fixed: posts_by_user, then posts_by_id, then the status
// view. When the status changed, the old status row is deleted under a
// key rebuilt from the stored createdAt; recomputing it would orphan
// the old row.
func (s *PostService) updatePlan(post *model.Post, oldStatus string, statusChanged bool) *fanout.Plan {
	plan := fanout.NewPlan("update_post", s.logger).
		Then("put posts_by_user", func(ctx context.Context) error {
			return s.byUser.Save(ctx, post)
		}).
		Then("put posts_by_id", func(ctx context.Context) error {
			return s.byID.Save(ctx, post)
		})

	if statusChanged {
		plan.
			Then("delete old posts_by_user_status", func(ctx context.Context) error {
				return s.byStatus.Delete(ctx, post.StatusKey(oldStatus))
			}).
			Then("put new posts_by_user_status", func(ctx context.Context) error {
				return s.byStatus.Save(ctx, post)
			}).
			Then("decrement old status stats", func(ctx context.Context) error {
				return s.stats.Adjust(ctx, post.UserID, oldStatus, -1)
			}).
			Then("increment new status stats", func(ctx context.Context) error {
				return s.stats.Adjust(ctx, post.UserID, post.Status, +1)
			})
	} else {
		plan.Then("put posts_by_user_status", func(ctx context.Context) error {
			return s.byStatus.Save(ctx, post)
		})
	}

	return plan
}
