package services

import (
	"context"

	"github.com/lanblog/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByMobile(ctx context.Context, mobile string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdateProfile(ctx context.Context, user types.User) (types.User, error)
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
}

// UserService encapsulates profile use-cases.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile applies the submitted profile fields on top of the
// stored user. Empty fields keep their current values; a new avatar
// key replaces the old one.
func (s *UserService) UpdateProfile(ctx context.Context, id int, username, bio, avatarKey string) (types.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.User{}, err
	}

	if username != "" {
		user.Username = username
	}
	if bio != "" {
		user.Bio = bio
	}
	if avatarKey != "" {
		user.AvatarKey = avatarKey
	}

	return s.repo.UpdateProfile(ctx, user)
}
