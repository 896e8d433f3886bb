package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/campusshelf/library-system/internal/core/domain"
	"github.com/campusshelf/library-system/internal/core/ports"
)

// Context keys set by Auth.
const (
	KeyUserID    = "user_id"
	KeyRole      = "role"
	KeyTokenID   = "token_id"
	KeyTokenExp  = "token_exp"
	bearerScheme = "bearer"
)

// Auth validates the JWT, refuses revoked tokens and injects the claims into
// the echo context. KeyRole holds the account's current role, which can
// differ from the role claim once an admin has changed it.
func Auth(jwtSecret string, blocklist ports.TokenBlocklist, users ports.UserRepository, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], bearerScheme) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			sub, _ := claims.GetSubject()
			role, _ := claims["role"].(string)
			jti, _ := claims["jti"].(string)
			exp, _ := claims.GetExpirationTime()
			if sub == "" || role == "" || jti == "" || exp == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "incomplete token claims")
			}

			revoked, err := blocklist.IsRevoked(c.Request().Context(), jti)
			if err != nil {
				log.Error().Err(err).Str("token_id", jti).Msg("blocklist lookup failed")
				return echo.NewHTTPError(http.StatusServiceUnavailable, "cannot verify token")
			}
			if revoked {
				return echo.NewHTTPError(http.StatusUnauthorized, "token has been revoked")
			}

			user, err := users.FindByID(c.Request().Context(), sub)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "account no longer exists")
				}
				log.Error().Err(err).Str("user_id", sub).Msg("account lookup failed")
				return echo.NewHTTPError(http.StatusServiceUnavailable, "cannot verify token")
			}
			if string(user.Role) != role {
				log.Debug().Str("user_id", sub).Str("token_role", role).Str("role", string(user.Role)).Msg("token role is stale")
			}

			c.Set(KeyUserID, sub)
			c.Set(KeyRole, string(user.Role))
			c.Set(KeyTokenID, jti)
			c.Set(KeyTokenExp, exp.Time.In(time.UTC))

			return next(c)
		}
	}
}
