package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims carried by both token classes. Tokens
// carry only the user identity; roles are resolved from the database on each
// request so revoking admin access takes effect immediately.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTManager signs and validates the access/refresh token pair. The two
// classes use distinct HS256 secrets so a leaked refresh secret cannot mint
// access tokens and vice versa.
type JWTManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewJWTManager creates a JWT manager with per-class secrets and expiries.
func NewJWTManager(accessSecret, refreshSecret string, accessExpiry, refreshExpiry time.Duration) *JWTManager {
	return &JWTManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// GenerateAccessToken creates a signed short-lived access token for userID.
func (m *JWTManager) GenerateAccessToken(userID string) (string, error) {
	token, err := m.generate(userID, m.accessSecret, m.accessExpiry)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return token, nil
}

// GenerateRefreshToken creates a signed long-lived refresh token for userID.
func (m *JWTManager) GenerateRefreshToken(userID string) (string, error) {
	token, err := m.generate(userID, m.refreshSecret, m.refreshExpiry)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}
	return token, nil
}

func (m *JWTManager) generate(userID string, secret []byte, expiry time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			Issuer:    "gatepass",
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ValidateAccessToken parses and validates an access token, returning the
// user ID it was issued for.
func (m *JWTManager) ValidateAccessToken(tokenString string) (string, error) {
	userID, err := m.validate(tokenString, m.accessSecret)
	if err != nil {
		return "", fmt.Errorf("parse access token: %w", err)
	}
	return userID, nil
}

// ValidateRefreshToken parses and validates a refresh token, returning the
// user ID it was issued for.
func (m *JWTManager) ValidateRefreshToken(tokenString string) (string, error) {
	userID, err := m.validate(tokenString, m.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("parse refresh token: %w", err)
	}
	return userID, nil
}

func (m *JWTManager) validate(tokenString string, secret []byte) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}
	if claims.UserID == "" {
		return "", fmt.Errorf("token missing user id")
	}

	return claims.UserID, nil
}
