package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/franciscosanchezn/store-ratings-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildLimitedRouter(limit int, period time.Duration) *gin.Engine {
	r := gin.New()
	r.Use(RateLimit(limit, period))
	r.GET("/t", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func doLimitedReq(r http.Handler, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/t", http.NoBody)
	req.RemoteAddr = ip + ":4321"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitBlocksAfterLimit(t *testing.T) {
	r := buildLimitedRouter(2, time.Minute)

	require.Equal(t, http.StatusOK, doLimitedReq(r, "10.0.0.1").Code)
	require.Equal(t, http.StatusOK, doLimitedReq(r, "10.0.0.1").Code)

	w := doLimitedReq(r, "10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, models.ErrTooManyRequests, decodeError(t, w).Code)

	// other clients keep their own budget
	assert.Equal(t, http.StatusOK, doLimitedReq(r, "10.0.0.2").Code)
}

func TestRateLimitSetsHeaders(t *testing.T) {
	r := buildLimitedRouter(5, time.Minute)

	w := doLimitedReq(r, "10.0.0.3")
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitDisabled(t *testing.T) {
	r := buildLimitedRouter(0, time.Minute)
	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, doLimitedReq(r, "10.0.0.4").Code)
	}
}
