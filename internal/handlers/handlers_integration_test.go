package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"ecofinds/internal/handlers"
	"ecofinds/internal/middleware"
	"ecofinds/internal/models"
	"ecofinds/internal/repositories"
	"ecofinds/internal/services"
	"ecofinds/pkg/kvstore"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

// setupApp wires the full Local-mode stack over a throwaway key-value store.
func setupApp(t *testing.T) (*fiber.App, *services.SessionService, error) {
	t.Helper()

	kv, err := kvstore.Open(filepath.Join(t.TempDir(), "ecofinds.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open local store: %w", err)
	}

	session := services.NewSessionService(nil, kv, "test_jwt_secret")
	session.Initialize(context.Background())

	localProducts := repositories.NewLocalProductRepository(kv)
	localCart := repositories.NewLocalCartRepository(kv)
	localPurchases := repositories.NewLocalPurchaseRepository(kv)
	localProfiles := repositories.NewLocalProfileRepository(kv)

	state := services.NewState()
	productService := services.NewProductService(session, nil, localProducts, state)
	purchaseService := services.NewPurchaseService(session, nil, localPurchases, state)
	cartService := services.NewCartService(session, nil, localCart, productService, purchaseService, state, nil)
	profileService := services.NewProfileService(session, nil, localProfiles)
	dashboardService := services.NewDashboardService(productService, purchaseService)

	app := fiber.New()
	authRequired := middleware.AuthRequired(session)
	apiV1 := app.Group("/api/v1")

	handlers.NewAuthHandler(session, state).RegisterRoutes(apiV1, authRequired)
	handlers.NewProductHandler(productService).RegisterRoutes(apiV1, authRequired)
	handlers.NewCartHandler(cartService).RegisterRoutes(apiV1, authRequired)
	handlers.NewPurchaseHandler(purchaseService).RegisterRoutes(apiV1, authRequired)
	handlers.NewProfileHandler(profileService).RegisterRoutes(apiV1, authRequired)
	handlers.NewDashboardHandler(dashboardService).RegisterRoutes(apiV1, authRequired)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy", "mode": session.Mode().String()})
	})

	return app, session, nil
}

// TestMain suppresses logging during tests for cleaner output.
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// doJSON performs one request with an optional JSON body and bearer token.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	defer resp.Body.Close()
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// registerUser signs up a user and returns their token and id.
func registerUser(t *testing.T, app *fiber.App, username, email string) (string, string) {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "password123",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var registerResp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	decode(t, resp, &registerResp)
	assert.NotEmpty(t, registerResp.Token)
	assert.NotEmpty(t, registerResp.User.ID)
	return registerResp.Token, registerResp.User.ID
}

func TestHealthReportsMode(t *testing.T) {
	app, _, err := setupApp(t)
	assert.NoError(t, err)

	resp := doJSON(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var health map[string]string
	decode(t, resp, &health)
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "local", health["mode"])
}

func TestAuthFlow(t *testing.T) {
	app, session, err := setupApp(t)
	assert.NoError(t, err)

	token, userID := registerUser(t, app, "alice", "alice@example.com")

	// The issued token carries the user's identity
	claims, err := session.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, userID, claims["user_id"])
	assert.Equal(t, "alice", claims["username"])

	// /auth/me reflects the session
	resp := doJSON(t, app, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var meResp struct {
		User models.User `json:"user"`
		Mode string      `json:"mode"`
	}
	decode(t, resp, &meResp)
	assert.Equal(t, userID, meResp.User.ID)
	assert.Equal(t, "local", meResp.Mode)

	// Logout, then a fresh login keeps the registered identity
	resp = doJSON(t, app, http.MethodPost, "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var loginResp struct {
		User models.User `json:"user"`
	}
	decode(t, resp, &loginResp)
	assert.Equal(t, userID, loginResp.User.ID)

	// Requests without a token are rejected
	resp = doJSON(t, app, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

type productListResponse struct {
	Products []models.Product `json:"products"`
	Source   string           `json:"source"`
}

func TestMarketplaceFlow(t *testing.T) {
	app, _, err := setupApp(t)
	assert.NoError(t, err)

	// An empty marketplace shows the sample catalog
	resp := doJSON(t, app, http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var listResp productListResponse
	decode(t, resp, &listResp)
	assert.Len(t, listResp.Products, 4)
	assert.Equal(t, "local", listResp.Source)

	// Alice lists a lamp
	aliceToken, aliceID := registerUser(t, app, "alice", "alice@example.com")
	resp = doJSON(t, app, http.MethodPost, "/api/v1/products", aliceToken, map[string]interface{}{
		"title":       "Desk Lamp",
		"description": "Warm brass desk lamp",
		"price":       20.0,
		"category":    "Furniture",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var createResp struct {
		Product models.Product `json:"product"`
	}
	decode(t, resp, &createResp)
	lampID := createResp.Product.ID
	assert.NotEmpty(t, lampID)
	assert.Equal(t, aliceID, createResp.Product.OwnerID)

	// The first write copies the samples into the catalog
	resp = doJSON(t, app, http.MethodGet, "/api/v1/products", "", nil)
	decode(t, resp, &listResp)
	assert.Len(t, listResp.Products, 5)
	assert.Equal(t, lampID, listResp.Products[0].ID)

	// Search and category filters
	resp = doJSON(t, app, http.MethodGet, "/api/v1/products?search=lamp", "", nil)
	decode(t, resp, &listResp)
	assert.Len(t, listResp.Products, 1)
	assert.Equal(t, lampID, listResp.Products[0].ID)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/products?category=Books", "", nil)
	decode(t, resp, &listResp)
	assert.Len(t, listResp.Products, 1)
	assert.Equal(t, "sample-4", listResp.Products[0].ID)

	// Featured is capped at four, newest first
	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/featured", "", nil)
	decode(t, resp, &listResp)
	assert.Len(t, listResp.Products, 4)
	assert.Equal(t, lampID, listResp.Products[0].ID)

	// Bob signs up and shops
	doJSON(t, app, http.MethodPost, "/api/v1/auth/logout", aliceToken, nil).Body.Close()
	bobToken, _ := registerUser(t, app, "bob", "bob@example.com")

	// Bob cannot edit or delete Alice's listing
	resp = doJSON(t, app, http.MethodPut, "/api/v1/products/"+lampID, bobToken, map[string]interface{}{
		"title":    "Hijacked Lamp",
		"price":    1.0,
		"category": "Furniture",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
	resp = doJSON(t, app, http.MethodDelete, "/api/v1/products/"+lampID, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// Add to cart; a second add of the same product conflicts
	resp = doJSON(t, app, http.MethodPost, "/api/v1/cart/items", bobToken, map[string]string{"product_id": lampID})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var addResp struct {
		Item models.CartItem `json:"item"`
	}
	decode(t, resp, &addResp)
	assert.Equal(t, 1, addResp.Item.Quantity)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/cart/items", bobToken, map[string]string{"product_id": lampID})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Quantity change moves the snapshot total
	resp = doJSON(t, app, http.MethodPatch, "/api/v1/cart/items/"+addResp.Item.ID, bobToken, map[string]int{"quantity": 2})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var cartResp struct {
		Items []models.CartItem `json:"items"`
		Total float64           `json:"total"`
	}
	resp.Body.Close()
	resp = doJSON(t, app, http.MethodGet, "/api/v1/cart", bobToken, nil)
	decode(t, resp, &cartResp)
	assert.Len(t, cartResp.Items, 1)
	assert.Equal(t, 40.0, cartResp.Total)

	// Checkout converts the cart into purchases and empties it
	resp = doJSON(t, app, http.MethodPost, "/api/v1/cart/checkout", bobToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var checkoutResp struct {
		Purchases []models.Purchase `json:"purchases"`
	}
	decode(t, resp, &checkoutResp)
	assert.Len(t, checkoutResp.Purchases, 1)
	assert.Equal(t, 2, checkoutResp.Purchases[0].Quantity)
	assert.Equal(t, 20.0, checkoutResp.Purchases[0].Price)
	assert.Equal(t, aliceID, checkoutResp.Purchases[0].SellerID)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/cart", bobToken, nil)
	decode(t, resp, &cartResp)
	assert.Empty(t, cartResp.Items)
	assert.Equal(t, 0.0, cartResp.Total)

	// Purchase history survives the cart
	resp = doJSON(t, app, http.MethodGet, "/api/v1/purchases", bobToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var purchasesResp struct {
		Purchases []models.Purchase `json:"purchases"`
	}
	decode(t, resp, &purchasesResp)
	assert.Len(t, purchasesResp.Purchases, 1)

	// Bob's dashboard counts the purchase
	resp = doJSON(t, app, http.MethodGet, "/api/v1/dashboard", bobToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var dashResp struct {
		Stats services.DashboardStats `json:"stats"`
	}
	decode(t, resp, &dashResp)
	assert.Equal(t, 0, dashResp.Stats.ActiveListings)
	assert.Equal(t, 1, dashResp.Stats.ItemsPurchased)
	assert.Equal(t, 1, dashResp.Stats.ItemsReused)
	assert.InDelta(t, 2.3, dashResp.Stats.CO2SavedKg, 0.0001)

	// Alice's dashboard sees the sale
	doJSON(t, app, http.MethodPost, "/api/v1/auth/logout", bobToken, nil).Body.Close()
	resp = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var loginResp struct {
		Token string `json:"token"`
	}
	decode(t, resp, &loginResp)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/dashboard", loginResp.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &dashResp)
	assert.Equal(t, 1, dashResp.Stats.ActiveListings)
	assert.Equal(t, 40.0, dashResp.Stats.TotalSales)
	assert.Equal(t, 0, dashResp.Stats.ItemsPurchased)
	assert.Equal(t, 1, dashResp.Stats.ItemsReused)
}

func TestProfileFlow(t *testing.T) {
	app, _, err := setupApp(t)
	assert.NoError(t, err)

	token, userID := registerUser(t, app, "carol", "carol@example.com")

	// A never-saved profile is synthesized from the session identity
	resp := doJSON(t, app, http.MethodGet, "/api/v1/profile", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var profileResp struct {
		Profile models.Profile `json:"profile"`
	}
	decode(t, resp, &profileResp)
	assert.Equal(t, userID, profileResp.Profile.ID)
	assert.Equal(t, "carol", profileResp.Profile.Username)

	// Saving and reloading round-trips
	resp = doJSON(t, app, http.MethodPut, "/api/v1/profile", token, map[string]string{
		"username": "GreenCarol",
		"bio":      "Thrifting since 2019",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/v1/profile", token, nil)
	decode(t, resp, &profileResp)
	assert.Equal(t, "GreenCarol", profileResp.Profile.Username)
	assert.Equal(t, "Thrifting since 2019", profileResp.Profile.Bio)

	// An invalid profile is rejected
	resp = doJSON(t, app, http.MethodPut, "/api/v1/profile", token, map[string]string{
		"username": "ab",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestProductOwnerLifecycle(t *testing.T) {
	app, _, err := setupApp(t)
	assert.NoError(t, err)

	token, _ := registerUser(t, app, "dana", "dana@example.com")

	resp := doJSON(t, app, http.MethodPost, "/api/v1/products", token, map[string]interface{}{
		"title":    "Record Player",
		"price":    60.0,
		"category": "Electronics",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var createResp struct {
		Product models.Product `json:"product"`
	}
	decode(t, resp, &createResp)
	playerID := createResp.Product.ID
	assert.NotEmpty(t, playerID)
	assert.Nil(t, createResp.Product.UpdatedAt)

	// The owner can edit their listing, and the edit is stamped
	resp = doJSON(t, app, http.MethodPut, "/api/v1/products/"+playerID, token, map[string]interface{}{
		"title":    "Record Player (serviced)",
		"price":    55.0,
		"category": "Electronics",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updateResp struct {
		Product models.Product `json:"product"`
	}
	decode(t, resp, &updateResp)
	assert.Equal(t, "Record Player (serviced)", updateResp.Product.Title)
	assert.Equal(t, 55.0, updateResp.Product.Price)
	assert.NotNil(t, updateResp.Product.UpdatedAt)

	// The edit is visible on a fresh read
	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/"+playerID, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var getResp struct {
		Product models.Product `json:"product"`
	}
	decode(t, resp, &getResp)
	assert.Equal(t, "Record Player (serviced)", getResp.Product.Title)
	assert.Equal(t, 55.0, getResp.Product.Price)

	// Deleting removes the listing from the catalog entirely
	resp = doJSON(t, app, http.MethodDelete, "/api/v1/products/"+playerID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/v1/products", "", nil)
	var listResp productListResponse
	decode(t, resp, &listResp)
	for _, p := range listResp.Products {
		assert.NotEqual(t, playerID, p.ID)
	}

	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/"+playerID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestTokenBoundToActiveSession(t *testing.T) {
	app, _, err := setupApp(t)
	assert.NoError(t, err)

	eveToken, _ := registerUser(t, app, "eve", "eve@example.com")

	// After logout the still-unexpired token no longer grants access
	doJSON(t, app, http.MethodPost, "/api/v1/auth/logout", eveToken, nil).Body.Close()
	resp := doJSON(t, app, http.MethodGet, "/api/v1/auth/me", eveToken, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Nor does it grant access to a session signed in as someone else
	frankToken, frankID := registerUser(t, app, "frank", "frank@example.com")
	resp = doJSON(t, app, http.MethodGet, "/api/v1/auth/me", eveToken, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/v1/auth/me", frankToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var meResp struct {
		User models.User `json:"user"`
	}
	decode(t, resp, &meResp)
	assert.Equal(t, frankID, meResp.User.ID)
}
