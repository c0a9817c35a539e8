package redis_repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrCartItemNotFound 購物車內無此商品
	ErrCartItemNotFound = errors.New("cart item not found")
	// ErrInsufficientQuantity 扣減後數量為負
	ErrInsufficientQuantity = errors.New("insufficient quantity")
)

// ICartRepository 購物車操作介面
// 購物車只存在redis 結構為 hash: field=productID value=json(cartLine)
type ICartRepository interface {
	Get(ctx context.Context, userID int) (*model.Cart, error)
	SetItem(ctx context.Context, userID int, item model.CartItem) error
	UpdateQuantity(ctx context.Context, userID int, productID string, delta int) error
	RemoveItem(ctx context.Context, userID int, productID string) error
	Clear(ctx context.Context, userID int) error
}

type CartRepo struct {
	cartCache *redis.Client
}

func NewCartRepo(cartCache *redis.Client) *CartRepo {
	return &CartRepo{cartCache: cartCache}
}

func generateCartItemKey(userID int) string {
	return fmt.Sprintf("cart:%d:items", userID)
}

// cartLine hash value 的儲存格式
type cartLine struct {
	Quantity int    `json:"quantity"`
	Size     string `json:"size,omitempty"`
	Color    string `json:"color,omitempty"`
}

// Get 取得整個購物車 空購物車回傳零個項目而非錯誤
func (r *CartRepo) Get(ctx context.Context, userID int) (*model.Cart, error) {
	itemsKey := generateCartItemKey(userID)

	fields, err := r.cartCache.HGetAll(ctx, itemsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}

	cart := &model.Cart{UserID: userID}
	for productID, raw := range fields {
		var line cartLine
		if err := json.Unmarshal([]byte(raw), &line); err != nil {
			return nil, fmt.Errorf("invalid cart line for product %s: %w", productID, err)
		}
		if line.Quantity > 0 {
			cart.Items = append(cart.Items, model.CartItem{
				ProductID: productID,
				Quantity:  line.Quantity,
				Size:      line.Size,
				Color:     line.Color,
			})
		}
	}

	return cart, nil
}

// SetItem 加入購物車 已存在同商品時累加數量並覆寫 size/color
// 使用 Lua 腳本確保原子性
func (r *CartRepo) SetItem(ctx context.Context, userID int, item model.CartItem) error {
	if item.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be >= 1", ErrInsufficientQuantity)
	}

	itemsKey := generateCartItemKey(userID)

	luaScript := `
		local key = KEYS[1]
		local product_id = ARGV[1]
		local quantity = tonumber(ARGV[2])
		local size = ARGV[3]
		local color = ARGV[4]

		local current = redis.call('HGET', key, product_id)
		if current then
			local line = cjson.decode(current)
			quantity = quantity + tonumber(line.quantity)
		end

		local line = {quantity = quantity}
		if size ~= '' then line.size = size end
		if color ~= '' then line.color = color end

		redis.call('HSET', key, product_id, cjson.encode(line))
		return quantity
	`

	err := r.cartCache.Eval(ctx, luaScript, []string{itemsKey},
		item.ProductID, item.Quantity, item.Size, item.Color).Err()
	if err != nil {
		return fmt.Errorf("failed to add item to cart: %w", err)
	}
	return nil
}

// UpdateQuantity 原子增減購物車商品數量 減到0時直接移除
func (r *CartRepo) UpdateQuantity(ctx context.Context, userID int, productID string, delta int) error {
	itemsKey := generateCartItemKey(userID)

	luaScript := `
		local key = KEYS[1]
		local product_id = ARGV[1]
		local delta = tonumber(ARGV[2])

		local current = redis.call('HGET', key, product_id)
		if not current then
			return -1  -- 商品不在購物車
		end

		local line = cjson.decode(current)
		local quantity = tonumber(line.quantity) + delta
		if quantity < 0 then
			return -2  -- 商品數量不足
		end
		if quantity == 0 then
			redis.call('HDEL', key, product_id)
			return 0
		end

		line.quantity = quantity
		redis.call('HSET', key, product_id, cjson.encode(line))
		return quantity
	`

	result, err := r.cartCache.Eval(ctx, luaScript, []string{itemsKey}, productID, delta).Result()
	if err != nil {
		return fmt.Errorf("failed to update cart quantity: %w", err)
	}

	switch v := result.(type) {
	case int64:
		if v == -1 {
			return fmt.Errorf("%w: product %s", ErrCartItemNotFound, productID)
		}
		if v == -2 {
			return fmt.Errorf("%w: product %s", ErrInsufficientQuantity, productID)
		}
		return nil
	default:
		return fmt.Errorf("unexpected result type: %T", result)
	}
}

// RemoveItem 從購物車中刪除指定商品
func (r *CartRepo) RemoveItem(ctx context.Context, userID int, productID string) error {
	itemsKey := generateCartItemKey(userID)

	removed, err := r.cartCache.HDel(ctx, itemsKey, productID).Result()
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if removed == 0 {
		return fmt.Errorf("%w: product %s", ErrCartItemNotFound, productID)
	}
	return nil
}

// Clear 清空購物車 訂單成立後呼叫
func (r *CartRepo) Clear(ctx context.Context, userID int) error {
	itemsKey := generateCartItemKey(userID)

	if err := r.cartCache.Del(ctx, itemsKey).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

var _ ICartRepository = (*CartRepo)(nil)
