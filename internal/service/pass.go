package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vogiaan1904/spotqueue/config"
	"github.com/vogiaan1904/spotqueue/internal/models"
)

// PassSigner issues and checks the signed ticket pass a user shows at the
// center counter.
type PassSigner interface {
	Sign(t models.QueueTicket) (string, time.Time, error)
	Verify(token string) (*PassClaims, error)
}

type passClaims struct {
	TicketID     string `json:"ticket_id"`
	CenterID     string `json:"center_id"`
	TicketNumber int64  `json:"ticket_number"`
	jwt.RegisteredClaims
}

type jwtPassSigner struct {
	conf config.PassConfig
	now  func() time.Time
}

func NewPassSigner(conf config.PassConfig) PassSigner {
	return &jwtPassSigner{
		conf: conf,
		now:  time.Now,
	}
}

func (s *jwtPassSigner) Sign(t models.QueueTicket) (string, time.Time, error) {
	now := s.now()
	expAt := now.Add(s.conf.Expiry)

	claims := passClaims{
		TicketID:     t.ID,
		CenterID:     t.CenterID,
		TicketNumber: t.TicketNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   t.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString([]byte(s.conf.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign pass: %w", err)
	}

	return tokenStr, expAt, nil
}

func (s *jwtPassSigner) Verify(token string) (*PassClaims, error) {
	if token == "" {
		return nil, ErrPassEmpty
	}

	var claims passClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrPassUnexpectedSignature
		}
		return []byte(s.conf.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, ErrPassUnexpectedSignature) {
			return nil, fmt.Errorf("%w: %w", ErrPassInvalid, ErrPassUnexpectedSignature)
		}
		return nil, fmt.Errorf("%w: %v", ErrPassInvalid, err)
	}

	if !parsed.Valid || claims.TicketID == "" {
		return nil, ErrPassInvalid
	}

	out := &PassClaims{
		TicketID:     claims.TicketID,
		CenterID:     claims.CenterID,
		TicketNumber: claims.TicketNumber,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}

	return out, nil
}
