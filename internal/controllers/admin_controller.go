package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/store-ratings-api/internal/models"
	"github.com/franciscosanchezn/store-ratings-api/internal/services"
	"github.com/gin-gonic/gin"
)

// AdminController serves the administrator dashboard and user/store management
type AdminController struct {
	userService      services.UserService
	storeService     services.StoreService
	dashboardService services.DashboardService
}

func NewAdminController(userService services.UserService, storeService services.StoreService, dashboardService services.DashboardService) *AdminController {
	return &AdminController{
		userService:      userService,
		storeService:     storeService,
		dashboardService: dashboardService,
	}
}

type CreateUserRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Address  string      `json:"address"`
	Role     models.Role `json:"role"`
}

type CreateStoreRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	OwnerID uint   `json:"owner_id"`
}

// Dashboard godoc
// @Summary Platform totals
// @Tags admin
// @Produce json
// @Success 200 {object} models.DashboardStats
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /admin/dashboard [get]
func (ac *AdminController) Dashboard(c *gin.Context) {
	stats, err := ac.dashboardService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListUsers godoc
// @Summary List users
// @Description Every user, newest first, with the average rating of the stores they own
// @Tags admin
// @Produce json
// @Param name query string false "Name contains"
// @Param email query string false "Email contains"
// @Param address query string false "Address contains"
// @Param role query string false "Exact role"
// @Success 200 {array} models.UserListItem
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /admin/users [get]
func (ac *AdminController) ListUsers(c *gin.Context) {
	var filter models.UserFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBadRequest(c, "Invalid query parameters")
		return
	}

	users, err := ac.userService.ListUsers(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// ListStores godoc
// @Summary List stores
// @Description Every store with its average rating
// @Tags admin
// @Produce json
// @Param name query string false "Name contains"
// @Param email query string false "Email contains"
// @Param address query string false "Address contains"
// @Success 200 {array} models.StoreSummary
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /admin/stores [get]
func (ac *AdminController) ListStores(c *gin.Context) {
	var filter models.StoreFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBadRequest(c, "Invalid query parameters")
		return
	}

	stores, err := ac.storeService.ListStores(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stores)
}

// CreateUser godoc
// @Summary Create a user of any role
// @Tags admin
// @Accept json
// @Produce json
// @Param user body CreateUserRequest true "New user"
// @Success 201 {object} MessageResponse
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /admin/users [post]
func (ac *AdminController) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, msgInvalidBody)
		return
	}

	user, err := ac.userService.CreateUser(c.Request.Context(), services.NewUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Address:  req.Address,
		Role:     req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MessageResponse{Message: "User created successfully", ID: user.ID})
}

// CreateStore godoc
// @Summary Create a store
// @Tags admin
// @Accept json
// @Produce json
// @Param store body CreateStoreRequest true "New store"
// @Success 201 {object} MessageResponse
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /admin/stores [post]
func (ac *AdminController) CreateStore(c *gin.Context) {
	var req CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, msgInvalidBody)
		return
	}

	store, err := ac.storeService.CreateStore(c.Request.Context(), services.NewStoreInput{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
		OwnerID: req.OwnerID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MessageResponse{Message: "Store created successfully", ID: store.ID})
}

// DeleteUser godoc
// @Summary Delete a user
// @Description Removes a non admin user with their stores and ratings
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /admin/users/{id} [delete]
func (ac *AdminController) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ac.userService.DeleteUser(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "User deleted successfully"})
}

// DeleteStore godoc
// @Summary Delete a store
// @Description Removes a store and its ratings
// @Tags admin
// @Produce json
// @Param id path int true "Store ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /admin/stores/{id} [delete]
func (ac *AdminController) DeleteStore(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ac.storeService.DeleteStore(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Store deleted successfully"})
}
