package jwttoken

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "lodgeguard/pkg/domain"
	dErrors "lodgeguard/pkg/domain-errors"
)

func TestIssueAndValidate(t *testing.T) {
	svc := New("test-key", "lodgeguard")
	actor := id.Actor{ID: uuid.New(), Role: id.RoleLandlord}

	token, err := svc.Issue(actor, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, actor.ID.String(), claims.Subject)
	assert.Equal(t, "landlord", claims.Role)
}

func TestValidateRejects(t *testing.T) {
	actor := id.Actor{ID: uuid.New(), Role: id.RoleStudent}

	t.Run("wrong key", func(t *testing.T) {
		token, err := New("key-a", "lodgeguard").Issue(actor, time.Hour)
		require.NoError(t, err)
		_, err = New("key-b", "lodgeguard").ValidateToken(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token, err := New("key", "someone-else").Issue(actor, time.Hour)
		require.NoError(t, err)
		_, err = New("key", "lodgeguard").ValidateToken(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("expired", func(t *testing.T) {
		past := time.Now().Add(-2 * time.Hour)
		token, err := New("key", "lodgeguard", WithClock(func() time.Time { return past })).Issue(actor, time.Hour)
		require.NoError(t, err)
		_, err = New("key", "lodgeguard").ValidateToken(token)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expired")
	})
}
