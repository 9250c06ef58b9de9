package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	audienceSession      = "session"
	audienceRegistration = "registration"
)

// SessionClaims identify a logged-in user.
type SessionClaims struct {
	UserID   uint   `json:"uid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// RegistrationClaims carry a verified Google identity that has no account yet.
type RegistrationClaims struct {
	ExternalIDHash string `json:"ext"`
	Name           string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func GenerateSessionToken(userID uint, username, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(userID),
			Audience:  jwt.ClaimStrings{audienceSession},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func ParseSessionToken(tokenStr, secret string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := parse(tokenStr, secret, audienceSession, claims); err != nil {
		return nil, err
	}
	if claims.UserID == 0 {
		return nil, errors.New("identifiant utilisateur manquant")
	}
	return claims, nil
}

func GenerateRegistrationToken(externalIDHash, name, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := RegistrationClaims{
		ExternalIDHash: externalIDHash,
		Name:           name,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{audienceRegistration},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func ParseRegistrationToken(tokenStr, secret string) (*RegistrationClaims, error) {
	claims := &RegistrationClaims{}
	if err := parse(tokenStr, secret, audienceRegistration, claims); err != nil {
		return nil, err
	}
	if claims.ExternalIDHash == "" {
		return nil, errors.New("identité externe manquante")
	}
	return claims, nil
}

func parse(tokenStr, secret, audience string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("signature invalide")
		}
		return []byte(secret), nil
	}, jwt.WithAudience(audience), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return err
	}
	if !token.Valid {
		return errors.New("token invalide")
	}
	return nil
}
