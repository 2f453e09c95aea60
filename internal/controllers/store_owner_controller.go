package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/store-ratings-api/internal/services"
	"github.com/gin-gonic/gin"
)

type StoreOwnerController struct {
	storeService services.StoreService
}

func NewStoreOwnerController(storeService services.StoreService) *StoreOwnerController {
	return &StoreOwnerController{storeService: storeService}
}

// Dashboard godoc
// @Summary Store owner dashboard
// @Description The caller's store, its average rating and every rating with the rater's name
// @Tags store-owner
// @Produce json
// @Success 200 {object} models.OwnerDashboard
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /store-owner/dashboard [get]
func (sc *StoreOwnerController) Dashboard(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	dashboard, err := sc.storeService.OwnerDashboard(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
