package services

import (
	"context"

	"go.uber.org/zap"

	"blogstore/application/fanout"
	"blogstore/application/ports"
	"blogstore/domain/model"
	pkgerrors "blogstore/pkg/errors"
)

// UserService coordinates the two-view user fanout (users and
// users_by_email) and the zeroed stats row created with every user.
// Email uniqueness is a check-then-act against users_by_email: two
// concurrent creates with the same email can both pass the check, so the
// guarantee is best-effort only.
type UserService struct {
	userRepo  ports.UserRepository
	emailRepo ports.UserByEmailRepository
	statsRepo ports.UserStatsRepository
	logger    *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo ports.UserRepository,
	emailRepo ports.UserByEmailRepository,
	statsRepo ports.UserStatsRepository,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		emailRepo: emailRepo,
		statsRepo: statsRepo,
		logger:    logger,
	}
}

// UserWithStats pairs a user with their aggregate counters.
type UserWithStats struct {
	User  *model.User
	Stats *model.UserStats
}

// CreateUser creates a user, its email reverse-lookup row and a zeroed
// stats row. Fails with a conflict if the email is already bound.
func (s *UserService) CreateUser(ctx context.Context, name, email string) (*model.User, error) {
	existing, err := s.emailRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, pkgerrors.NewConflictError("email already exists: " + email)
	}

	user, err := model.NewUser(name, email)
	if err != nil {
		return nil, err
	}

	plan := fanout.NewPlan("create_user", s.logger).
		Then("put users", func(ctx context.Context) error {
			return s.userRepo.Save(ctx, user)
		}).
		Then("put users_by_email", func(ctx context.Context) error {
			return s.emailRepo.Save(ctx, user.EmailRow())
		}).
		Then("init user_stats", func(ctx context.Context) error {
			return s.statsRepo.Save(ctx, model.NewUserStats(user.ID))
		})

	if _, err := plan.Apply(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("userID", user.ID),
		zap.String("email", user.Email),
	)
	return user, nil
}

// UserUpdate carries a partial user update; nil fields are left alone.
type UserUpdate struct {
	Name  *string
	Email *string
}

// UpdateUser updates the canonical user row and keeps users_by_email in
// step. An email change re-checks uniqueness, then moves the email row:
// write users, delete the old email key, insert the new one. A name-only
// change updates the existing email row in place.
func (s *UserService) UpdateUser(ctx context.Context, userID string, update UserUpdate) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, pkgerrors.NewNotFoundError("user")
	}

	oldEmail := user.Email
	emailChanged := update.Email != nil && *update.Email != oldEmail

	if emailChanged {
		existing, err := s.emailRepo.FindByEmail(ctx, *update.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, pkgerrors.NewConflictError("email already exists: " + *update.Email)
		}
	}

	user.ApplyUpdate(update.Name, update.Email)

	plan := fanout.NewPlan("update_user", s.logger).
		Then("put users", func(ctx context.Context) error {
			return s.userRepo.Save(ctx, user)
		})

	if emailChanged {
		plan.
			Then("delete old users_by_email", func(ctx context.Context) error {
				return s.emailRepo.Delete(ctx, oldEmail)
			}).
			Then("put new users_by_email", func(ctx context.Context) error {
				return s.emailRepo.Save(ctx, user.EmailRow())
			})
	} else if update.Name != nil {
		plan.Then("update users_by_email name", func(ctx context.Context) error {
			return s.emailRepo.Save(ctx, user.EmailRow())
		})
	}

	if _, err := plan.Apply(ctx); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves the canonical user, nil on a miss.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// GetUserByEmail resolves an email through users_by_email and then loads
// the canonical user row.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row, err := s.emailRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	return s.userRepo.FindByID(ctx, row.UserID)
}

// GetUserWithStats loads the user (missing user is an error) and their
// stats (a missing stats row is a valid zeroed default, not an error).
func (s *UserService) GetUserWithStats(ctx context.Context, userID string) (*UserWithStats, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, pkgerrors.NewNotFoundError("user")
	}

	stats, err := s.statsRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = model.NewUserStats(userID)
	}

	return &UserWithStats{User: user, Stats: stats}, nil
}
