package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/arnavshah/crew-scheduler-api/pkg/config"
	"github.com/arnavshah/crew-scheduler-api/pkg/database"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidKey         = errors.New("invalid key format")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

var jwtAlgorithm = jwt.SigningMethodHS256

// Claims represents the JWT claims
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service signs admin tokens and crew API keys
type Service struct {
	jwtSecret    []byte
	masterSecret []byte
	tokenTTL     time.Duration
	bcryptCost   int
}

// NewService builds the auth service from configuration
func NewService(cfg *config.Config) *Service {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		jwtSecret:    []byte(cfg.JWTSecret),
		masterSecret: []byte(cfg.APIMasterSecret),
		tokenTTL:     cfg.TokenTTL(),
		bcryptCost:   cost,
	}
}

// HashPassword hashes a password using bcrypt
func (s *Service) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CreateToken creates a new JWT token for a user
func (s *Service) CreateToken(username string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString(s.jwtSecret)
}

// VerifyToken verifies a JWT token
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwtAlgorithm {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Login checks credentials against the master users table and issues a token
func (s *Service) Login(db *gorm.DB, username, password string) (string, error) {
	var user database.MasterUser
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !CheckPasswordHash(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return s.CreateToken(user.Username)
}

// EnsureAdminExists creates the configured admin when no admin exists yet
func (s *Service) EnsureAdminExists(db *gorm.DB, username, password string) error {
	var count int64
	if err := db.Model(&database.MasterUser{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return err
	}

	user := database.MasterUser{
		Username:     username,
		PasswordHash: hash,
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	slog.Info("default admin user created", "username", username)
	return nil
}

func (s *Service) sign(userID string) string {
	h := hmac.New(sha256.New, s.masterSecret)
	h.Write([]byte(userID))
	return hex.EncodeToString(h.Sum(nil))
}

// GenerateHMACKey creates a signed API key using HMAC-SHA256
func (s *Service) GenerateHMACKey(userID string) string {
	return userID + "." + s.sign(userID)
}

// VerifyHMACKey validates an HMAC-signed API key and returns its user id
func (s *Service) VerifyHMACKey(key string) (string, error) {
	userID, providedSignature, ok := strings.Cut(key, ".")
	if !ok || userID == "" || strings.Contains(providedSignature, ".") {
		return "", ErrInvalidKey
	}

	// constant-time comparison
	if !hmac.Equal([]byte(providedSignature), []byte(s.sign(userID))) {
		return "", ErrInvalidSignature
	}

	return userID, nil
}
