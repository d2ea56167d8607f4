package server

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	httpHandlers "github.com/todoflow/core/internal/adapters/http"
	"github.com/todoflow/core/internal/application/services"
	"github.com/todoflow/core/internal/domain/entities"
)

// SessionClaims are the verified claims carried by a session token. The
// subject is the identity provider's user id.
type SessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// sessionMiddleware verifies the bearer token and loads the caller's user
// record into the request context. It short-circuits with the typed
// UNAUTHORIZED / USER_NOT_FOUND envelopes; handlers behind it can assume
// CurrentUser is set.
func (s *Server) sessionMiddleware(userService *services.UserService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return httpHandlers.Unauthorized()
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return httpHandlers.Unauthorized()
			}

			claims, err := s.verifyToken(tokenString)
			if err != nil {
				s.logger.LogSecurityEvent("invalid_token", "", c.RealIP(), map[string]interface{}{
					"error": err.Error(),
				})
				return httpHandlers.Unauthorized()
			}

			user, err := userService.GetUser(c.Request().Context(), claims.Subject)
			if err != nil {
				if err == entities.ErrUserNotFound {
					s.logger.LogSecurityEvent("unknown_user", claims.Subject, c.RealIP(), nil)
				}
				return httpHandlers.FromDomain(err)
			}

			httpHandlers.SetCurrentUser(c, user)

			return next(c)
		}
	}
}

func (s *Server) verifyToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.Auth.Secret), nil
	}, jwt.WithIssuer(s.config.Auth.Issuer))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	return claims, nil
}
