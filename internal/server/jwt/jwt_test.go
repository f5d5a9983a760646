package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_IssueValidate(t *testing.T) {
	svc := NewService("secret", time.Hour)

	token, err := svc.Issue("user-1")
	require.NoError(t, err)

	sub, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
}

func TestService_Validate_Rejects(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewService("secret", time.Minute, WithClock(func() time.Time { return now }))

	token, err := issuer.Issue("user-1")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewService("other", time.Minute, WithClock(func() time.Time { return now })).Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewService("secret", time.Minute, WithClock(func() time.Time { return now.Add(time.Hour) }))
		_, err := later.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Validate("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestService_Issue_EmptySubject(t *testing.T) {
	_, err := NewService("secret", 0).Issue("")
	assert.Error(t, err)
}

func TestService_NoExpiry(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	token, err := NewService("secret", 0, WithClock(func() time.Time { return now })).Issue("user-1")
	require.NoError(t, err)

	farFuture := NewService("secret", 0, WithClock(func() time.Time { return now.AddDate(10, 0, 0) }))
	sub, err := farFuture.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
}
