package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/arnavshah/crew-scheduler-api/pkg/config"
	"github.com/arnavshah/crew-scheduler-api/pkg/database"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:       "jwt-secret",
		APIMasterSecret: "master-secret",
		TokenTTLHours:   1,
		BcryptCost:      bcrypt.MinCost,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService(testConfig())

	token, err := svc.CreateToken("admin")
	require.NoError(t, err)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestVerifyTokenRejects(t *testing.T) {
	svc := NewService(testConfig())

	other := testConfig()
	other.JWTSecret = "another-secret"
	foreign, err := NewService(other).CreateToken("admin")
	require.NoError(t, err)

	_, err = svc.VerifyToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := jwt.NewWithClaims(jwtAlgorithm, &Claims{
		Username: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("jwt-secret"))
	require.NoError(t, err)
	_, err = svc.VerifyToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.VerifyToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHMACKeys(t *testing.T) {
	svc := NewService(testConfig())

	key := svc.GenerateHMACKey("corner-shop")
	assert.True(t, strings.HasPrefix(key, "corner-shop."))

	userID, err := svc.VerifyHMACKey(key)
	require.NoError(t, err)
	assert.Equal(t, "corner-shop", userID)

	_, err = svc.VerifyHMACKey("corner-shop.deadbeef")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = svc.VerifyHMACKey("no-separator")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = svc.VerifyHMACKey("a.b.c")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestLoginAndEnsureAdmin(t *testing.T) {
	db, err := database.Open(&config.Config{DataPath: "file:auth_login?mode=memory&cache=shared"})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	svc := NewService(testConfig())
	require.NoError(t, svc.EnsureAdminExists(db, "owner", "s3cret"))
	require.NoError(t, svc.EnsureAdminExists(db, "someone-else", "x"))

	var count int64
	db.Model(&database.MasterUser{}).Count(&count)
	assert.Equal(t, int64(1), count)

	token, err := svc.Login(db, "owner", "s3cret")
	require.NoError(t, err)
	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "owner", claims.Username)

	_, err = svc.Login(db, "owner", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(db, "someone-else", "x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
