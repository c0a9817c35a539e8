package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	productService service.IProductService
}

func NewProductHandler(productService service.IProductService) *ProductHandler {
	if productService == nil {
		panic("productService cannot be nil")
	}
	return &ProductHandler{
		productService: productService,
	}
}

// GetProducts - 分頁取得商品列表
func (h *ProductHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	page := parseIntQuery(r, "page", constants.DefaultPaging)
	pageSize := parseIntQuery(r, "page_size", constants.DefaultPagingSize)

	products, total, err := h.productService.GetProductsPaginated(r.Context(), page, pageSize)
	if err != nil {
		api.ErrorJSON(w, http.StatusInternalServerError, err, "failed to list products")
		return
	}

	api.SuccessJSON(w, dto.ConvertProductsToDTO(products), dto.PagingMeta{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	})
}

// GetProduct - 取得單一商品
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	product, err := h.productService.GetProduct(r.Context(), productID)
	if err != nil {
		if errors.Is(err, db.ErrProductNotFound) {
			api.ErrorJSON(w, http.StatusNotFound, err, "product not found")
			return
		}
		api.ErrorJSON(w, http.StatusInternalServerError, err, "failed to get product")
		return
	}

	api.SuccessJSON(w, dto.ConvertProductToDTO(product), nil)
}

// CreateProduct - 創建商品 admin限定
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var createDTO dto.CreateProductDTO
	if err := json.NewDecoder(r.Body).Decode(&createDTO); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err, "invalid request body")
		return
	}
	if createDTO.Name == "" {
		api.ErrorJSON(w, http.StatusBadRequest, nil, "product name is required")
		return
	}

	product, err := createDTO.ToModel()
	if err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err, "invalid price")
		return
	}

	if err := h.productService.CreateProduct(r.Context(), product); err != nil {
		api.ErrorJSON(w, http.StatusInternalServerError, err, "failed to create product")
		return
	}

	api.CreatedJSON(w, dto.ConvertProductToDTO(product))
}

// UpdateProduct - 更新商品資料 庫存不在這裡改
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	existing, err := h.productService.GetProduct(r.Context(), productID)
	if err != nil {
		if errors.Is(err, db.ErrProductNotFound) {
			api.ErrorJSON(w, http.StatusNotFound, err, "product not found")
			return
		}
		api.ErrorJSON(w, http.StatusInternalServerError, err, "failed to get product")
		return
	}

	var updateDTO dto.CreateProductDTO
	if err := json.NewDecoder(r.Body).Decode(&updateDTO); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err, "invalid request body")
		return
	}

	price, err := decimal.NewFromString(updateDTO.Price)
	if err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err, "invalid price")
		return
	}

	existing.Name = updateDTO.Name
	existing.Description = updateDTO.Description
	existing.Price = price
	existing.Image = updateDTO.Image
	existing.Category = updateDTO.Category
	existing.Brand = updateDTO.Brand
	existing.Colors = updateDTO.Colors
	existing.Sizes = updateDTO.Sizes
	existing.Featured = updateDTO.Featured

	if err := h.productService.UpdateProduct(r.Context(), existing); err != nil {
		api.ErrorJSON(w, http.StatusInternalServerError, err, "failed to update product")
		return
	}

	api.SuccessJSON(w, dto.ConvertProductToDTO(existing), nil)
}

// DeleteProduct - 刪除商品 admin限定
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	if err := h.productService.DeleteProduct(r.Context(), productID); err != nil {
		switch {
		case errors.Is(err, db.ErrProductNotFound):
			api.ErrorJSON(w, http.StatusNotFound, err, "product not found")
		case errors.Is(err, db.ErrProductReferenced):
			api.ErrorJSON(w, http.StatusConflict, err, "product is referenced by orders")
		default:
			api.ErrorJSON(w, http.StatusInternalServerError, err, "failed to delete product")
		}
		return
	}

	api.SuccessJSON(w, nil, nil)
}

func parseIntQuery(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
