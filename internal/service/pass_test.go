package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vogiaan1904/spotqueue/config"
	"github.com/vogiaan1904/spotqueue/internal/models"
)

func TestPassSigner_SignAndVerify(t *testing.T) {
	s := NewPassSigner(config.PassConfig{Secret: "s3cret", Expiry: time.Hour})
	ticket := models.QueueTicket{ID: "t-1", CenterID: "1", TicketNumber: 16}

	token, expAt, err := s.Sign(ticket)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expAt, 5*time.Second)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "t-1", claims.TicketID)
	assert.Equal(t, "1", claims.CenterID)
	assert.Equal(t, int64(16), claims.TicketNumber)
	assert.WithinDuration(t, expAt, claims.ExpiresAt, time.Second)
}

func TestPassSigner_VerifyRejects(t *testing.T) {
	s := NewPassSigner(config.PassConfig{Secret: "s3cret", Expiry: time.Hour})
	ticket := models.QueueTicket{ID: "t-1", CenterID: "1", TicketNumber: 1}

	t.Run("wrong secret", func(t *testing.T) {
		other := NewPassSigner(config.PassConfig{Secret: "other", Expiry: time.Hour})
		token, _, err := other.Sign(ticket)
		require.NoError(t, err)

		_, err = s.Verify(token)
		assert.ErrorIs(t, err, ErrPassInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		signer := &jwtPassSigner{
			conf: config.PassConfig{Secret: "s3cret", Expiry: time.Minute},
			now:  func() time.Time { return time.Now().Add(-time.Hour) },
		}
		token, _, err := signer.Sign(ticket)
		require.NoError(t, err)

		_, err = s.Verify(token)
		assert.ErrorIs(t, err, ErrPassInvalid)
	})

	t.Run("unexpected signing method", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"ticket_id": "t-1"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = s.Verify(token)
		assert.ErrorIs(t, err, ErrPassInvalid)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := s.Verify("")
		assert.ErrorIs(t, err, ErrPassEmpty)
	})
}
