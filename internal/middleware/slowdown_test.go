package middleware

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedWaits struct {
	waits []time.Duration
}

func (r *recordedWaits) wait(_ context.Context, d time.Duration) {
	r.waits = append(r.waits, d)
}

func buildSlowRouter(after int, delay time.Duration, waits *recordedWaits) *gin.Engine {
	r := gin.New()
	r.Use(slowDown(after, delay, time.Minute, waits.wait))
	r.GET("/t", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestSlowDownDelaysAfterThreshold(t *testing.T) {
	waits := &recordedWaits{}
	r := buildSlowRouter(2, 500*time.Millisecond, waits)

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, doLimitedReq(r, "10.0.1.1").Code)
	}
	assert.Empty(t, waits.waits)

	require.Equal(t, http.StatusOK, doLimitedReq(r, "10.0.1.1").Code)
	require.Equal(t, http.StatusOK, doLimitedReq(r, "10.0.1.1").Code)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second}, waits.waits)

	// other clients are not delayed
	require.Equal(t, http.StatusOK, doLimitedReq(r, "10.0.1.2").Code)
	assert.Len(t, waits.waits, 2)
}

func TestSlowDownDisabled(t *testing.T) {
	waits := &recordedWaits{}
	r := buildSlowRouter(0, time.Second, waits)
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doLimitedReq(r, "10.0.1.3").Code)
	}
	assert.Empty(t, waits.waits)
}

func TestWaitContextStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	waitContext(ctx, time.Minute)
	assert.Less(t, time.Since(start), time.Second)
}
