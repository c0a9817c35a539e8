package dto

import (
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

type UserDTO struct {
	UserID  int    `json:"user_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Role    string `json:"role"`
}

type UpdateProfileDTO struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func ConvertUserToDTO(user *model.User) UserDTO {
	return UserDTO{
		UserID:  user.UserID,
		Name:    user.UserName,
		Email:   user.UserEmail,
		Phone:   user.UserPhone,
		Address: user.UserAddress,
		Role:    string(user.Role),
	}
}
