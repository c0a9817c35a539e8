package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/util"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	cartService service.ICartService
}

func NewCartHandler(cartService service.ICartService) *CartHandler {
	if cartService == nil {
		panic("cartService cannot be nil")
	}
	return &CartHandler{
		cartService: cartService,
	}
}

// GetCart - 取得購物車 金額以目前商品價格計算
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	payload := util.GetTokenPayloadFromContext(r.Context())

	cart, err := h.cartService.GetCart(r.Context(), payload.UserID)
	if err != nil {
		api.ErrorJSON(w, http.StatusInternalServerError, err, "failed to get cart")
		return
	}

	api.SuccessJSON(w, dto.ConvertCartToDTO(cart), nil)
}

// AddItem - 加入購物車 同商品會累加數量
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	payload := util.GetTokenPayloadFromContext(r.Context())

	var addDTO dto.AddCartItemDTO
	if err := json.NewDecoder(r.Body).Decode(&addDTO); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err, "invalid request body")
		return
	}
	if addDTO.ProductID == "" || addDTO.Quantity <= 0 {
		api.ErrorJSON(w, http.StatusBadRequest, nil, "product_id and positive quantity are required")
		return
	}

	err := h.cartService.AddItem(r.Context(), payload.UserID, model.CartItem{
		ProductID: addDTO.ProductID,
		Quantity:  addDTO.Quantity,
		Size:      addDTO.Size,
		Color:     addDTO.Color,
	})
	if err != nil {
		if errors.Is(err, db.ErrProductNotFound) {
			api.ErrorJSON(w, http.StatusNotFound, err, "product not found")
			return
		}
		api.ErrorJSON(w, http.StatusInternalServerError, err, "failed to add cart item")
		return
	}

	api.SuccessJSON(w, nil, nil)
}

// UpdateQuantity - 調整購物車內商品數量 減到0會移除該項
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	payload := util.GetTokenPayloadFromContext(r.Context())
	productID := chi.URLParam(r, "productID")

	var updateDTO dto.UpdateCartQuantityDTO
	if err := json.NewDecoder(r.Body).Decode(&updateDTO); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err, "invalid request body")
		return
	}

	err := h.cartService.UpdateQuantity(r.Context(), payload.UserID, productID, updateDTO.Delta)
	if err != nil {
		switch {
		case errors.Is(err, redis_repo.ErrCartItemNotFound):
			api.ErrorJSON(w, http.StatusNotFound, err, "cart item not found")
		case errors.Is(err, redis_repo.ErrInsufficientQuantity):
			api.ErrorJSON(w, http.StatusBadRequest, err, "quantity cannot go below zero")
		default:
			api.ErrorJSON(w, http.StatusInternalServerError, err, "failed to update cart item")
		}
		return
	}

	api.SuccessJSON(w, nil, nil)
}

// RemoveItem - 移除購物車內商品
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	payload := util.GetTokenPayloadFromContext(r.Context())
	productID := chi.URLParam(r, "productID")

	err := h.cartService.RemoveItem(r.Context(), payload.UserID, productID)
	if err != nil {
		if errors.Is(err, redis_repo.ErrCartItemNotFound) {
			api.ErrorJSON(w, http.StatusNotFound, err, "cart item not found")
			return
		}
		api.ErrorJSON(w, http.StatusInternalServerError, err, "failed to remove cart item")
		return
	}

	api.SuccessJSON(w, nil, nil)
}

// Clear - 清空購物車
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	payload := util.GetTokenPayloadFromContext(r.Context())

	if err := h.cartService.Clear(r.Context(), payload.UserID); err != nil {
		api.ErrorJSON(w, http.StatusInternalServerError, err, "failed to clear cart")
		return
	}

	api.SuccessJSON(w, nil, nil)
}
