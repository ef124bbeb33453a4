package middleware

import (
	"billing-api/internal/config"
	"billing-api/internal/response"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware validates the bearer token and stores the authenticated
// user id in the request context. Payment endpoints trust this identity, not
// anything in the request body.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get bearer token
		authHeader := c.GetHeader("Authorization")
		token := strings.TrimPrefix(authHeader, "Bearer ")

		// If not passed via header, try to get from query parameters
		if token == "" || token == authHeader {
			token = c.Query("token")
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, response.Error("Missing bearer token"))
			c.Abort()
			return
		}

		userID, err := parseUserToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, response.Error("Invalid token"))
			c.Abort()
			return
		}

		// Store user ID and additional info in context
		c.Set("user_id", userID)
		c.Set("request_time", time.Now())
		c.Next()
	}
}

// parseUserToken validates an HS256 token and returns its subject
func parseUserToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("token has no subject")
	}

	return subject, nil
}
