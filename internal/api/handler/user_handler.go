package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/util"
)

type UserHandler struct {
	userService service.IUserService
}

func NewUserHandler(userService service.IUserService) *UserHandler {
	if userService == nil {
		panic("userService cannot be nil")
	}
	return &UserHandler{
		userService: userService,
	}
}

// Me - 取得自己的用戶資料
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	payload := util.GetTokenPayloadFromContext(r.Context())

	user, err := h.userService.GetUser(r.Context(), payload.UserID)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			api.ErrorJSON(w, http.StatusNotFound, err, "user not found")
			return
		}
		api.ErrorJSON(w, http.StatusInternalServerError, err, "failed to get user")
		return
	}

	api.SuccessJSON(w, dto.ConvertUserToDTO(user), nil)
}

// UpdateProfile - 更新自己的個人資料
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	payload := util.GetTokenPayloadFromContext(r.Context())

	var updateDTO dto.UpdateProfileDTO
	if err := json.NewDecoder(r.Body).Decode(&updateDTO); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err, "invalid request body")
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), payload.UserID, updateDTO.Name, updateDTO.Phone, updateDTO.Address)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			api.ErrorJSON(w, http.StatusNotFound, err, "user not found")
			return
		}
		api.ErrorJSON(w, http.StatusInternalServerError, err, "failed to update profile")
		return
	}

	api.SuccessJSON(w, dto.ConvertUserToDTO(user), nil)
}
