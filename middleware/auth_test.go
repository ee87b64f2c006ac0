package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"MedShare/models"
	"MedShare/role"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func newRouter(got *models.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", Authenticate(secret), func(c *gin.Context) {
		*got = ActorFrom(c)
		c.Status(http.StatusNoContent)
	})
	return r
}

func call(r *gin.Engine, header string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAuthenticateValidToken(t *testing.T) {
	var got models.Actor
	r := newRouter(&got)
	token, err := SignToken(secret, models.Actor{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: "ADMIN"}, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, call(r, "Bearer "+token))
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, role.Admin, got.Role)
}

func TestAuthenticateRejects(t *testing.T) {
	var got models.Actor
	r := newRouter(&got)
	expired, err := SignToken(secret, models.Actor{ID: "u1"}, -time.Minute)
	require.NoError(t, err)
	forged, err := SignToken("other-secret", models.Actor{ID: "u1"}, time.Hour)
	require.NoError(t, err)
	anonymous, err := SignToken(secret, models.Actor{}, time.Hour)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing":   "",
		"no bearer": expired,
		"expired":   "Bearer " + expired,
		"forged":    "Bearer " + forged,
		"no sub":    "Bearer " + anonymous,
		"garbage":   "Bearer abc.def",
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, call(r, header))
		})
	}
	assert.Empty(t, got.ID)
}

func TestActorFromPublicRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, models.Actor{}, ActorFrom(c))
}
