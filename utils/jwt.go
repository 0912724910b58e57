package utils

import (
	"errors"
	"os"
	"time"

	"courtside/models"

	"github.com/golang-jwt/jwt"
)

// Load the secret from an environment variable; SetJWTSecret overrides it from config.
var secretKey = []byte(getSecret())

func getSecret() string {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "courtside-dev-secret"
	}
	return secret
}

// SetJWTSecret replaces the signing secret. Empty values are ignored.
func SetJWTSecret(secret string) {
	if secret != "" {
		secretKey = []byte(secret)
	}
}

// GenerateToken creates a signed HS256 token carrying the subject and role.
// Tokens are normally issued by the identity provider; this is used by tests and tooling.
func GenerateToken(subject string, role models.Role, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": string(role),
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey)
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey, nil
	})
}

// PrincipalFromToken extracts the caller identity from a valid token.
func PrincipalFromToken(tokenString string) (models.Principal, error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return models.Principal{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Principal{}, errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return models.Principal{}, errors.New("token does not contain a valid 'sub' claim")
	}

	role := models.RoleUser
	if raw, ok := claims["role"].(string); ok && raw != "" {
		role = models.Role(raw)
	}
	if !role.Valid() {
		return models.Principal{}, errors.New("token carries an unknown role")
	}
	return models.Principal{UserID: sub, Role: role}, nil
}
