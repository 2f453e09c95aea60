package middleware

import (
	"context"
	"math"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// SlowDown delays requests from a client IP once it made more than after
// requests in the current period. The n-th request over the threshold waits
// n times delay. A non-positive after, delay or period disables it.
func SlowDown(after int, delay, period time.Duration) gin.HandlerFunc {
	return slowDown(after, delay, period, waitContext)
}

func slowDown(after int, delay, period time.Duration, wait func(ctx context.Context, d time.Duration)) gin.HandlerFunc {
	if after <= 0 || delay <= 0 || period <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	store := memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          "store_ratings_slowdown",
		CleanUpInterval: limiter.DefaultCleanUpInterval,
	})
	// the store only counts hits, this rate is never reached
	rate := limiter.Rate{Period: period, Limit: math.MaxInt64}

	return func(c *gin.Context) {
		state, err := store.Increment(c.Request.Context(), c.ClientIP(), 1, rate)
		if err != nil {
			logrus.WithError(err).Warn("Slow down counter unavailable")
			c.Next()
			return
		}

		hits := state.Limit - state.Remaining
		if over := hits - int64(after); over > 0 {
			wait(c.Request.Context(), time.Duration(over)*delay)
		}
		c.Next()
	}
}

// waitContext sleeps for d or until ctx is done
func waitContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
