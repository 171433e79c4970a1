package services

import (
	"errors"
	"fmt"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/kvfile"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// Fields of the admin credentials file.
const (
	AdminUsernameField = "username"
	AdminPasswordField = "password"
)

// ErrInvalidCredentials is returned for a wrong username or password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// MinPasswordLength is the shortest password ChangePassword accepts.
const MinPasswordLength = 8

// AdminService authenticates the store administrator against the
// credentials file and issues signed tokens.
type AdminService struct {
	credentials *kvfile.File
	jwtSecret   []byte
	tokenTTL    time.Duration
}

// NewAdminService creates a new AdminService.
func NewAdminService(credentials *kvfile.File, jwtSecret string, tokenTTL time.Duration) *AdminService {
	return &AdminService{
		credentials: credentials,
		jwtSecret:   []byte(jwtSecret),
		tokenTTL:    tokenTTL,
	}
}

// Login checks username and password and returns a JWT token.
func (s *AdminService) Login(username, password string) (string, error) {
	storedUser, ok, err := s.credentials.Get(AdminUsernameField)
	if err != nil {
		return "", err
	}
	if !ok || storedUser != username {
		return "", ErrInvalidCredentials
	}
	if err := s.verifyPassword(password); err != nil {
		return "", err
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  username,
		"role": "admin",
		"exp":  now.Add(s.tokenTTL).Unix(),
		"iat":  now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AdminService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid || claims["role"] != "admin" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// ChangePassword replaces the stored hash once current is verified.
func (s *AdminService) ChangePassword(current, next string) error {
	if err := s.verifyPassword(current); err != nil {
		return err
	}
	if len(next) < MinPasswordLength {
		return apperr.Newf(apperr.Validation, "admin.change_password", "the new password must have at least %d characters", MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.credentials.Set(AdminPasswordField, string(hash))
}

func (s *AdminService) verifyPassword(password string) error {
	hash, ok, err := s.credentials.Get(AdminPasswordField)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.Persistence, "admin.verify", "credentials file has no password entry")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
