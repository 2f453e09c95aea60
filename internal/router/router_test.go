package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/franciscosanchezn/store-ratings-api/internal/auth"
	"github.com/franciscosanchezn/store-ratings-api/internal/config"
	"github.com/franciscosanchezn/store-ratings-api/internal/models"
	"github.com/franciscosanchezn/store-ratings-api/internal/services"
	"github.com/franciscosanchezn/store-ratings-api/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	tokens *auth.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, func(*config.Config) {})
}

func newTestServerWith(t *testing.T, configure func(cfg *config.Config)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	tokens := auth.NewTokenManager("router-test-secret", time.Hour)
	registry := services.NewRegistry(db, services.NewBcryptHasher(bcrypt.MinCost), tokens)
	cfg := &config.Config{
		APIBasePath:       "/api",
		CORSOrigins:       []string{"http://localhost:3000"},
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
	}
	configure(cfg)

	return &testServer{t: t, db: db, router: New(cfg, registry, tokens), tokens: tokens}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	return s.serve(req, token)
}

func (s *testServer) serve(req *http.Request, token string) *httptest.ResponseRecorder {
	s.t.Helper()
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) tokenFor(user *models.User) string {
	s.t.Helper()
	token, _, err := s.tokens.Issue(user.ID)
	require.NoError(s.t, err)
	return token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestRegisterLoginRateScenario(t *testing.T) {
	s := newTestServer(t)
	owner := testutil.CreateUser(t, s.db, "Olive Owner", "olive@example.com", "Owner@123", models.RoleStoreOwner)
	store := testutil.CreateStore(t, s.db, "Olive's Deli", "deli@example.com", owner.ID)

	w := s.do(http.MethodPost, "/api/register", "", map[string]string{
		"name": "Ann Lee", "email": "ann@x.com", "password": "Secret1!", "address": "1 Rd",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "User registered successfully", decode[map[string]any](t, w)["message"])

	w = s.do(http.MethodPost, "/api/login", "", map[string]string{"email": "ann@x.com", "password": "Secret1!"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode[services.LoginResult](t, w)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, "Ann Lee", login.User.Name)
	assert.Equal(t, models.RoleUser, login.User.Role)

	w = s.do(http.MethodPost, "/api/ratings", login.Token, map[string]any{"store_id": store.ID, "rating": 6})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Rating must be between 1 and 5", decode[models.APIError](t, w).Message)

	w = s.do(http.MethodPost, "/api/ratings", login.Token, map[string]any{"store_id": store.ID, "rating": 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Rating submitted successfully", decode[map[string]any](t, w)["message"])

	w = s.do(http.MethodGet, "/api/user/stores", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stores := decode[[]models.UserStoreView](t, w)
	require.Len(t, stores, 1)
	require.NotNil(t, stores[0].UserRating)
	assert.Equal(t, 5, *stores[0].UserRating)

	// resubmitting overwrites rather than adding a row
	w = s.do(http.MethodPost, "/api/ratings", login.Token, map[string]any{"store_id": store.ID, "rating": 2})
	require.Equal(t, http.StatusOK, w.Code)
	var count int64
	require.NoError(t, s.db.Model(&models.Rating{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRegisterRejections(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "Taken", "taken@example.com", "Taken@123", models.RoleUser)

	testCases := []struct {
		name        string
		body        any
		expectedMsg string
	}{
		{name: "duplicate email", body: map[string]string{"name": "Someone", "email": "taken@example.com", "password": "Secret1!", "address": "x"}, expectedMsg: "Email already exists"},
		{name: "weak password", body: map[string]string{"name": "Someone", "email": "new@example.com", "password": "secret", "address": "x"}, expectedMsg: "Password must be 8-16 chars with uppercase and special char"},
		{name: "short name", body: map[string]string{"name": "S", "email": "new@example.com", "password": "Secret1!", "address": "x"}, expectedMsg: "Name must be 2-60 characters"},
		{name: "malformed body", body: "not an object", expectedMsg: "Invalid request body"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/api/register", "", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.expectedMsg, decode[models.APIError](t, w).Message)
		})
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "Jane", "jane@example.com", "Secret1!", models.RoleUser)

	w := s.do(http.MethodPost, "/api/login", "", map[string]string{"email": "jane@example.com", "password": "Wrong1!!"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decode[models.APIError](t, w).Message)
}

func TestAuthorizationGate(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateUser(t, s.db, "Root", "root@example.com", "Admin@123", models.RoleAdmin)
	user := testutil.CreateUser(t, s.db, "Jane", "jane@example.com", "Secret1!", models.RoleUser)
	owner := testutil.CreateUser(t, s.db, "Olive", "olive@example.com", "Owner@123", models.RoleStoreOwner)

	testCases := []struct {
		name           string
		method         string
		path           string
		token          string
		expectedStatus int
		expectedMsg    string
	}{
		{name: "no token", method: http.MethodGet, path: "/api/admin/dashboard", expectedStatus: http.StatusUnauthorized, expectedMsg: "Access token required"},
		{name: "bad token", method: http.MethodGet, path: "/api/admin/dashboard", token: "garbage", expectedStatus: http.StatusUnauthorized, expectedMsg: "Invalid token"},
		{name: "user on admin route", method: http.MethodGet, path: "/api/admin/dashboard", token: s.tokenFor(user), expectedStatus: http.StatusForbidden, expectedMsg: "Admin access required"},
		{name: "admin on user route", method: http.MethodGet, path: "/api/user/stores", token: s.tokenFor(admin), expectedStatus: http.StatusForbidden, expectedMsg: "User access required"},
		{name: "user on owner route", method: http.MethodGet, path: "/api/store-owner/dashboard", token: s.tokenFor(user), expectedStatus: http.StatusForbidden, expectedMsg: "Store owner access required"},
		{name: "owner on password route", method: http.MethodPut, path: "/api/user/password", token: s.tokenFor(owner), expectedStatus: http.StatusForbidden, expectedMsg: "User access required"},
		{name: "admin dashboard", method: http.MethodGet, path: "/api/admin/dashboard", token: s.tokenFor(admin), expectedStatus: http.StatusOK},
		{name: "owner without store", method: http.MethodGet, path: "/api/store-owner/dashboard", token: s.tokenFor(owner), expectedStatus: http.StatusNotFound, expectedMsg: "No store found for this user"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, decode[models.APIError](t, w).Message)
			}
		})
	}
}

func TestDeletedUserTokenIsRejected(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateUser(t, s.db, "Root", "root@example.com", "Admin@123", models.RoleAdmin)
	user := testutil.CreateUser(t, s.db, "Jane", "jane@example.com", "Secret1!", models.RoleUser)
	userToken := s.tokenFor(user)

	w := s.do(http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", user.ID), s.tokenFor(admin), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/user/stores", userToken, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token", decode[models.APIError](t, w).Message)
}

func TestAdminManagement(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateUser(t, s.db, "Root", "root@example.com", "Admin@123", models.RoleAdmin)
	token := s.tokenFor(admin)

	w := s.do(http.MethodPost, "/api/admin/users", token, map[string]string{
		"name": "Olive Owner", "email": "olive@example.com", "password": "Owner@123", "address": "3 Lane", "role": "store_owner",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	assert.Equal(t, "User created successfully", created["message"])
	ownerID := uint(created["id"].(float64))

	w = s.do(http.MethodPost, "/api/admin/stores", token, map[string]any{
		"name": "Olive's Deli", "email": "deli@example.com", "address": "3 Lane", "owner_id": ownerID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	storeID := uint(decode[map[string]any](t, w)["id"].(float64))

	w = s.do(http.MethodPost, "/api/admin/stores", token, map[string]any{
		"name": "Copy", "email": "deli@example.com", "address": "3 Lane", "owner_id": ownerID,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.ErrConflict, decode[models.APIError](t, w).Code)

	w = s.do(http.MethodGet, "/api/admin/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.DashboardStats{TotalUsers: 2, TotalStores: 1}, decode[models.DashboardStats](t, w))

	w = s.do(http.MethodGet, "/api/admin/users?role=store_owner", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	users := decode[[]models.UserListItem](t, w)
	require.Len(t, users, 1)
	assert.Equal(t, ownerID, users[0].ID)

	w = s.do(http.MethodGet, "/api/admin/stores?name=deli", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.StoreSummary](t, w), 1)

	t.Run("admin cannot be deleted", func(t *testing.T) {
		w := s.do(http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", admin.ID), token, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Cannot delete admin user", decode[models.APIError](t, w).Message)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := s.do(http.MethodDelete, "/api/admin/stores/abc", token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete store then it is gone", func(t *testing.T) {
		w := s.do(http.MethodDelete, fmt.Sprintf("/api/admin/stores/%d", storeID), token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Store deleted successfully", decode[map[string]any](t, w)["message"])

		w = s.do(http.MethodDelete, fmt.Sprintf("/api/admin/stores/%d", storeID), token, nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Store not found", decode[models.APIError](t, w).Message)
	})
}

func TestStoreOwnerDashboard(t *testing.T) {
	s := newTestServer(t)
	owner := testutil.CreateUser(t, s.db, "Olive", "olive@example.com", "Owner@123", models.RoleStoreOwner)
	rater := testutil.CreateUser(t, s.db, "Jane Rater", "jane@example.com", "Secret1!", models.RoleUser)
	store := testutil.CreateStore(t, s.db, "Olive's Deli", "deli@example.com", owner.ID)
	testutil.CreateRating(t, s.db, rater.ID, store.ID, 4)

	w := s.do(http.MethodGet, "/api/store-owner/dashboard", s.tokenFor(owner), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	dashboard := decode[models.OwnerDashboard](t, w)
	assert.Equal(t, store.ID, dashboard.Store.ID)
	assert.InDelta(t, 4.0, dashboard.AverageRating, 0.0001)
	require.Len(t, dashboard.Ratings, 1)
	assert.Equal(t, "Jane Rater", dashboard.Ratings[0].UserName)
}

func TestChangePasswordEndpoint(t *testing.T) {
	s := newTestServer(t)
	user := testutil.CreateUser(t, s.db, "Jane", "jane@example.com", "Secret1!", models.RoleUser)
	token := s.tokenFor(user)

	w := s.do(http.MethodPut, "/api/user/password", token, map[string]string{"currentPassword": "Wrong1!!", "newPassword": "Fresh@456"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Current password is incorrect", decode[models.APIError](t, w).Message)

	w = s.do(http.MethodPut, "/api/user/password", token, map[string]string{"currentPassword": "Secret1!", "newPassword": "Fresh@456"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/login", "", map[string]string{"email": "jane@example.com", "password": "Fresh@456"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/health", "/api/health"} {
		w := s.do(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "OK", decode[map[string]any](t, w)["status"])
	}

	w := s.do(http.MethodGet, "/api/nope", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found", decode[models.APIError](t, w).Message)
}

func TestRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	login := func(s *testServer, i int) int {
		req := httptest.NewRequest(http.MethodPost, "/api/login", http.NoBody)
		req.RemoteAddr = "203.0.113.9:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		return s.serve(req, "").Code
	}

	t.Run("untrusted peer shares one budget", func(t *testing.T) {
		s := newTestServerWith(t, func(cfg *config.Config) { cfg.RateLimitRequests = 2 })

		codes := make([]int, 0, 4)
		for i := 1; i <= 4; i++ {
			codes = append(codes, login(s, i))
		}
		assert.Equal(t, []int{http.StatusBadRequest, http.StatusBadRequest, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
	})

	t.Run("trusted proxy forwards client addresses", func(t *testing.T) {
		s := newTestServerWith(t, func(cfg *config.Config) {
			cfg.RateLimitRequests = 2
			cfg.TrustedProxies = []string{"203.0.113.9"}
		})

		for i := 1; i <= 4; i++ {
			assert.Equal(t, http.StatusBadRequest, login(s, i))
		}
	})
}

func TestLargeIDIsNotFound(t *testing.T) {
	s := newTestServer(t)
	admin := testutil.CreateUser(t, s.db, "Root", "root@example.com", "Admin@123", models.RoleAdmin)
	token := s.tokenFor(admin)

	w := s.do(http.MethodDelete, "/api/admin/users/99999999999", token, nil)
	require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	assert.Equal(t, "User not found", decode[models.APIError](t, w).Message)

	w = s.do(http.MethodDelete, "/api/admin/stores/99999999999", token, nil)
	require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())

	w = s.do(http.MethodDelete, "/api/admin/users/99999999999999999999", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResponsesCarrySecurityHeaders(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'self'")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
