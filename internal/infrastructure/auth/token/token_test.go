package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/InsureDoc-Intelligence/internal/config"
	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(config.AuthConfig{JWTSecret: "s3cret", Issuer: "insuredoc", TokenTTL: time.Hour})
	require.NoError(t, err)
	return m
}

func TestNewManager_RequiresSecret(t *testing.T) {
	_, err := NewManager(config.AuthConfig{})
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestIssueAndVerify(t *testing.T) {
	m := newTestManager(t)
	uid, tid := uuid.New(), uuid.New()

	raw, issued, err := m.Issue(uid, tid)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)

	claims, err := m.Verify(raw)
	require.NoError(t, err)

	gotUser, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uid, gotUser)
	gotTenant, err := claims.Tenant()
	require.NoError(t, err)
	assert.Equal(t, tid, gotTenant)
	assert.Equal(t, issued.ID, claims.ID)
	assert.Equal(t, "insuredoc", claims.Issuer)
	assert.InDelta(t, time.Hour.Seconds(), claims.Remaining(time.Now()).Seconds(), 5)
}

func TestVerify_Expired(t *testing.T) {
	m := newTestManager(t)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, _, err := m.Issue(uuid.New(), uuid.New())
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.True(t, errors.IsCode(err, errors.ErrCodeTokenExpired))
}

func TestVerify_WrongSecret(t *testing.T) {
	raw, _, err := newTestManager(t).Issue(uuid.New(), uuid.New())
	require.NoError(t, err)

	other, err := NewManager(config.AuthConfig{JWTSecret: "other", Issuer: "insuredoc"})
	require.NoError(t, err)
	_, err = other.Verify(raw)
	assert.ErrorIs(t, err, ErrTokenSignature)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	m := newTestManager(t)
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID: "x", Subject: uuid.NewString(), Issuer: "insuredoc",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Verify(raw)
	assert.Error(t, err)
}

func TestVerify_WrongIssuer(t *testing.T) {
	other, err := NewManager(config.AuthConfig{JWTSecret: "s3cret", Issuer: "someone-else"})
	require.NoError(t, err)
	raw, _, err := other.Issue(uuid.New(), uuid.New())
	require.NoError(t, err)

	_, err = newTestManager(t).Verify(raw)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestVerify_Garbage(t *testing.T) {
	_, err := newTestManager(t).Verify("not-a-token")
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestClaims_Remaining(t *testing.T) {
	now := time.Now()
	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))}}
	assert.Zero(t, c.Remaining(now))
	assert.Zero(t, (&Claims{}).Remaining(now))
}
