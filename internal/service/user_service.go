package service

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
)

type IUserService interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUser(ctx context.Context, userID int) (*model.User, error)
	UpdateProfile(ctx context.Context, userID int, name, phone, address string) (*model.User, error)
}

type UserService struct {
	userRepo db.IUserRepository
}

func NewUserService(userRepo db.IUserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (u *UserService) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	return u.userRepo.CreateUser(ctx, user)
}

func (u *UserService) GetUser(ctx context.Context, userID int) (*model.User, error) {
	return u.userRepo.GetUserByID(ctx, userID)
}

// UpdateProfile 更新個人資料 email與role不在這裡改
func (u *UserService) UpdateProfile(ctx context.Context, userID int, name, phone, address string) (*model.User, error) {
	user, err := u.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name != "" {
		user.UserName = name
	}
	user.UserPhone = phone
	user.UserAddress = address

	if err := u.userRepo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

var _ IUserService = (*UserService)(nil)
