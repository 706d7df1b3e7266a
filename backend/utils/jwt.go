package utils

import (
	"strings"
	"time"

	"courseplatform/backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const (
	RoleUser     = "user"
	RoleLecturer = "lecturer"
	RoleAdmin    = "admin"
)

// Principal is what the rest of the app knows about the caller: a user id
// and a role. Anonymous callers have ID 0 and an empty role.
type Principal struct {
	UserID uint
	Role   string
}

func (p Principal) Authenticated() bool { return p.UserID != 0 }

const principalKey = "principal"

func GenerateJWTToken(userID uint, role string, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(time.Hour * 72).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ParseToken validates a token and returns the principal in it.
func ParseToken(tokenString string, cfg *config.Config) (Principal, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return Principal{}, Unauthorized("Missing authorization token")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, Unauthorized("Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return Principal{}, Unauthorized("Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Principal{}, Unauthorized("Invalid token claims")
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok || userIDFloat <= 0 {
		return Principal{}, Unauthorized("Invalid user ID in token")
	}
	role, _ := claims["role"].(string)
	if role == "" {
		role = RoleUser
	}

	return Principal{UserID: uint(userIDFloat), Role: role}, nil
}

// ExtractPrincipal reads the Authorization header of the request.
func ExtractPrincipal(c *fiber.Ctx, cfg *config.Config) (Principal, error) {
	return ParseToken(c.Get("Authorization"), cfg)
}

func SetPrincipal(c *fiber.Ctx, p Principal) {
	c.Locals(principalKey, p)
}

// CurrentPrincipal returns the principal stored by the auth middleware, or
// the anonymous principal.
func CurrentPrincipal(c *fiber.Ctx) Principal {
	p, _ := c.Locals(principalKey).(Principal)
	return p
}
