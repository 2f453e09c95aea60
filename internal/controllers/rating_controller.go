package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/store-ratings-api/internal/services"
	"github.com/gin-gonic/gin"
)

type RatingController struct {
	ratingService services.RatingService
}

func NewRatingController(ratingService services.RatingService) *RatingController {
	return &RatingController{ratingService: ratingService}
}

// SubmitRating godoc
// @Summary Rate a store
// @Description Creates the caller's rating for a store or replaces the previous one
// @Tags ratings
// @Accept json
// @Produce json
// @Param rating body services.RatingInput true "Store and score"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /ratings [post]
func (rc *RatingController) SubmitRating(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input services.RatingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, msgInvalidBody)
		return
	}

	rating, err := rc.ratingService.SubmitRating(c.Request.Context(), user.ID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Rating submitted successfully", ID: rating.ID})
}
