package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/recipepal/server/internal/database"
	"github.com/recipepal/server/internal/middleware"
	"github.com/recipepal/server/internal/service"
)

// setupTestRouter wires the real handlers and services over an in-memory
// sqlite database, mirroring the production route setup minus rate limiting.
func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	authService := service.NewAuthService(db, "test-secret")
	recipeService := service.NewRecipeService(db)

	router := gin.New()
	router.GET("/health", HealthHandler(db))

	v1 := router.Group("/api/v1")
	NewAuthHandler(authService).RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authService))
	NewRecipeHandler(recipeService).RegisterRoutes(protected)

	return router
}

// performRequest sends a JSON request through the router. An empty token
// leaves the Authorization header unset.
func performRequest(router *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		req = httptest.NewRequest(method, path, bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// registerTestUser registers a user through the API and returns the token.
func registerTestUser(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()

	w := performRequest(router, "POST", "/api/v1/auth/register", map[string]interface{}{
		"email":    email,
		"password": "pw123",
		"name":     "Test User",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func soupRequest() map[string]interface{} {
	return map[string]interface{}{
		"title":        "Soup",
		"servings":     4,
		"instructions": "Boil.",
		"ingredients": []map[string]interface{}{
			{"name": "Water", "amount": 2, "unit": "L"},
		},
		"tags": []string{"soup", "quick"},
	}
}
