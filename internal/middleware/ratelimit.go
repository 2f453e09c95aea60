package middleware

import (
	"net/http"
	"time"

	"github.com/franciscosanchezn/store-ratings-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

const msgTooManyRequests = "Too many requests, please try again later"

// RateLimit allows at most limit requests per client IP in every period.
// A non-positive limit disables limiting.
func RateLimit(limit int, period time.Duration) gin.HandlerFunc {
	if limit <= 0 || period <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	rate := limiter.Rate{Period: period, Limit: int64(limit)}
	store := memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          "store_ratings",
		CleanUpInterval: limiter.DefaultCleanUpInterval,
	})

	return mgin.NewMiddleware(
		limiter.New(store, rate),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			abortWithError(c, http.StatusTooManyRequests, models.ErrTooManyRequests, msgTooManyRequests)
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			_ = c.Error(err)
			abortWithError(c, http.StatusInternalServerError, models.ErrInternalServer, "Internal server error")
		}),
	)
}
