// Package middleware authenticates callers from a bearer token.
package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"MedShare/apperr"
	"MedShare/models"
	"MedShare/role"

	util "github.com/KanapuramVaishnavi/Core/util"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/logger"
)

const actorKey = "actor"

type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func SignToken(secret string, actor models.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name:  actor.Name,
		Email: actor.Email,
		Phone: actor.Phone,
		Role:  role.Normalize(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

/*
* Read the bearer token from the Authorization header
* Verify the HS256 signature and expiry
* Put the actor on the context for the handlers
 */
func Authenticate(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, util.FailedResponse(errors.New(apperr.AUTHENTICATION_MISSING)))
			return
		}
		claims := &Claims{}
		_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || claims.Subject == "" {
			logger.Warningf("Rejected token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, util.FailedResponse(errors.New(apperr.INVALID_TOKEN)))
			return
		}
		c.Set(actorKey, models.Actor{
			ID:    claims.Subject,
			Name:  claims.Name,
			Email: claims.Email,
			Phone: claims.Phone,
			Role:  role.Normalize(claims.Role),
		})
		c.Next()
	}
}

// ActorFrom returns the authenticated caller, or the zero Actor on public
// routes.
func ActorFrom(c *gin.Context) models.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(models.Actor); ok {
			return actor
		}
	}
	return models.Actor{}
}
