package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/store-ratings-api/internal/models"
	"github.com/franciscosanchezn/store-ratings-api/internal/services"
	"github.com/gin-gonic/gin"
)

// UserController serves the regular user's store browser and account settings
type UserController struct {
	userService  services.UserService
	storeService services.StoreService
}

func NewUserController(userService services.UserService, storeService services.StoreService) *UserController {
	return &UserController{userService: userService, storeService: storeService}
}

// ListStores godoc
// @Summary Browse stores
// @Description Every store with its average rating and the caller's own rating
// @Tags user
// @Produce json
// @Param name query string false "Name contains"
// @Param address query string false "Address contains"
// @Success 200 {array} models.UserStoreView
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /user/stores [get]
func (uc *UserController) ListStores(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var filter models.StoreFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBadRequest(c, "Invalid query parameters")
		return
	}

	stores, err := uc.storeService.ListStoresForUser(c.Request.Context(), user.ID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stores)
}

// ChangePassword godoc
// @Summary Change own password
// @Tags user
// @Accept json
// @Produce json
// @Param passwords body services.ChangePasswordInput true "Current and new password"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /user/password [put]
func (uc *UserController) ChangePassword(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input services.ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, msgInvalidBody)
		return
	}

	if err := uc.userService.ChangePassword(c.Request.Context(), user.ID, input); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Password updated successfully"})
}
