package token

import (
	"errors"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/google/uuid"
)

var (
	ErrExpiredToken = errors.New("token has expired")
	ErrInvalidToken = errors.New("token is invalid")
)

// Payload token內容 驗證通過後放進request context
type Payload struct {
	ID        uuid.UUID  `json:"id"`
	UserID    int        `json:"user_id"`
	Role      model.Role `json:"role"`
	IssuedAt  time.Time  `json:"issued_at"`
	ExpiredAt time.Time  `json:"expired_at"`
}

func NewPayload(userID int, role model.Role, duration time.Duration) (*Payload, error) {
	tokenID, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Payload{
		ID:        tokenID,
		UserID:    userID,
		Role:      role,
		IssuedAt:  now,
		ExpiredAt: now.Add(duration),
	}, nil
}

// Valid 過期檢查
func (payload *Payload) Valid() error {
	if time.Now().After(payload.ExpiredAt) {
		return ErrExpiredToken
	}
	return nil
}
