package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
)

// ErrUserNotFound 用戶不存在
var ErrUserNotFound = errors.New("user not found")

type IUserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUserByID(ctx context.Context, userID int) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
}

type UserRepo struct {
	db *DbDao
}

func NewUserRepo(db *DbDao) *UserRepo {
	return &UserRepo{db: db}
}

// Create - 創建用戶
func (s *UserRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Read - 根據ID查詢用戶
func (s *UserRepo) GetUserByID(ctx context.Context, userID int) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrUserNotFound, userID)
		}
		return nil, err
	}
	return &user, nil
}

// Read - 根據Email查詢用戶
func (s *UserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("user_email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, email)
		}
		return nil, err
	}
	return &user, nil
}

// Update - 更新用戶
func (s *UserRepo) UpdateUser(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).Save(user).Error
}

var _ IUserRepository = (*UserRepo)(nil)
