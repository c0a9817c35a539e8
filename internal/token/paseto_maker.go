package token

import (
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/o1egl/paseto"
)

const symmetricKeySize = 32

// Maker 發放與驗證access token
type Maker interface {
	CreateToken(userID int, role model.Role, duration time.Duration) (string, *Payload, error)
	VerifyToken(token string) (*Payload, error)
}

// PasetoMaker paseto v2 local mode
type PasetoMaker struct {
	paseto       *paseto.V2
	symmetricKey []byte
}

func NewPasetoMaker(symmetricKey string) (*PasetoMaker, error) {
	if len(symmetricKey) != symmetricKeySize {
		return nil, fmt.Errorf("invalid key size: must be exactly %d characters", symmetricKeySize)
	}

	return &PasetoMaker{
		paseto:       paseto.NewV2(),
		symmetricKey: []byte(symmetricKey),
	}, nil
}

func (maker *PasetoMaker) CreateToken(userID int, role model.Role, duration time.Duration) (string, *Payload, error) {
	payload, err := NewPayload(userID, role, duration)
	if err != nil {
		return "", nil, err
	}

	token, err := maker.paseto.Encrypt(maker.symmetricKey, payload, nil)
	return token, payload, err
}

func (maker *PasetoMaker) VerifyToken(token string) (*Payload, error) {
	payload := &Payload{}

	if err := maker.paseto.Decrypt(token, maker.symmetricKey, payload, nil); err != nil {
		return nil, ErrInvalidToken
	}
	if err := payload.Valid(); err != nil {
		return nil, err
	}

	return payload, nil
}

var _ Maker = (*PasetoMaker)(nil)
