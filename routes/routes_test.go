package routes

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chars3/caplink-store/auth"
	"github.com/chars3/caplink-store/database/dbtest"
	"github.com/chars3/caplink-store/events"
	"github.com/chars3/caplink-store/services/cart"
	"github.com/chars3/caplink-store/services/favorite"
	"github.com/chars3/caplink-store/services/order"
	"github.com/chars3/caplink-store/services/product"
	"github.com/chars3/caplink-store/services/user"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiClient struct {
	t *testing.T
	h http.Handler
}

func newAPI(t *testing.T) *apiClient {
	db := dbtest.Open(t)
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	hub := events.NewHub(nil)
	r := NewRouter(Deps{
		Users:                 user.NewService(db, tokens),
		Products:              product.NewService(db, 0),
		Carts:                 cart.NewService(db),
		Orders:                order.NewService(db, hub),
		Favorites:             favorite.NewService(db),
		Hub:                   hub,
		Tokens:                tokens,
		CheckoutRatePerMinute: 100,
	})
	return &apiClient{t: t, h: r}
}

func (a *apiClient) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.h.ServeHTTP(w, req)
	return w
}

func (a *apiClient) decode(w *httptest.ResponseRecorder, v interface{}) {
	a.t.Helper()
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (a *apiClient) register(email, role string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/auth/register", "", gin.H{
		"email": email, "password": "password1", "name": email, "role": role,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var session struct {
		AccessToken string `json:"access_token"`
	}
	a.decode(w, &session)
	return session.AccessToken
}

func (a *apiClient) createProduct(token, name, price string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/products", token, gin.H{
		"name": name, "description": name + " desc", "price": price, "image_url": "https://img.example.com/" + name + ".png",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var p struct {
		ID string `json:"id"`
	}
	a.decode(w, &p)
	return p.ID
}

func TestHealth(t *testing.T) {
	api := newAPI(t)
	w := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAuthFlow(t *testing.T) {
	api := newAPI(t)
	token := api.register("ann@example.com", "CLIENT")

	w := api.do(http.MethodPost, "/auth/register", "", gin.H{"email": "ann@example.com", "password": "password1", "name": "Ann"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(http.MethodPost, "/auth/register", "", gin.H{"email": "bad", "password": "x", "name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/auth/login", "", gin.H{"email": "ann@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodPost, "/auth/login", "", gin.H{"email": "ann@example.com", "password": "password1"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	api.decode(w, &me)
	assert.Equal(t, "ann@example.com", me.Email)
	assert.Equal(t, "CLIENT", me.Role)
	assert.NotContains(t, w.Body.String(), "password")

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/users/me", "", nil).Code)
}

func TestShoppingFlow(t *testing.T) {
	api := newAPI(t)
	seller := api.register("sam@example.com", "SELLER")
	buyer := api.register("cara@example.com", "CLIENT")

	alpha := api.createProduct(seller, "Alpha", "10.00")
	beta := api.createProduct(seller, "Beta", "4.00")

	// Clients cannot manage products.
	w := api.do(http.MethodPost, "/products", buyer, gin.H{"name": "x", "description": "x", "price": "1", "image_url": "https://x.io/x.png"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPost, "/orders/checkout", buyer, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "EMPTY_CART")

	w = api.do(http.MethodPost, "/cart", buyer, gin.H{"product_id": alpha, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/cart", buyer, gin.H{"product_id": "00000000-0000-0000-0000-000000000000", "quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/cart", buyer, gin.H{"product_id": alpha, "quantity": 3}).Code)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/cart", buyer, gin.H{"product_id": beta, "quantity": 5}).Code)

	w = api.do(http.MethodPost, "/orders/checkout", buyer, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var placed struct {
		ID     string `json:"id"`
		Total  string `json:"total"`
		Status string `json:"status"`
	}
	api.decode(w, &placed)
	assert.True(t, decimal.RequireFromString(placed.Total).Equal(decimal.NewFromInt(50)), placed.Total)
	assert.Equal(t, "COMPLETED", placed.Status)

	w = api.do(http.MethodGet, "/cart", buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var c struct {
		Items []interface{} `json:"items"`
	}
	api.decode(w, &c)
	assert.Empty(t, c.Items)

	w = api.do(http.MethodGet, "/orders?page=1&limit=5", buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
		Meta struct {
			Total      int `json:"total"`
			TotalPages int `json:"total_pages"`
		} `json:"meta"`
	}
	api.decode(w, &history)
	require.Len(t, history.Data, 1)
	assert.Equal(t, placed.ID, history.Data[0].ID)
	assert.Equal(t, 1, history.Meta.Total)
	assert.Equal(t, 1, history.Meta.TotalPages)

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/orders/"+placed.ID, buyer, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/orders/"+placed.ID, seller, nil).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/orders?limit=1000", buyer, nil).Code)

	// Seller analytics.
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/orders/dashboard", buyer, nil).Code)

	w = api.do(http.MethodGet, "/orders/dashboard", seller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		TotalProducts int    `json:"total_products"`
		TotalSold     int    `json:"total_sold"`
		TotalRevenue  string `json:"total_revenue"`
		Best          *struct {
			ID string `json:"id"`
		} `json:"best_selling_product"`
	}
	api.decode(w, &stats)
	assert.Equal(t, 2, stats.TotalProducts)
	assert.Equal(t, 8, stats.TotalSold)
	assert.True(t, decimal.RequireFromString(stats.TotalRevenue).Equal(decimal.NewFromInt(50)), stats.TotalRevenue)
	require.NotNil(t, stats.Best)
	assert.Equal(t, beta, stats.Best.ID)

	w = api.do(http.MethodGet, "/orders/seller/sales?page=1&limit=1&search=ALP", seller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sales struct {
		Data []struct {
			ProductID string `json:"product_id"`
		} `json:"data"`
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	api.decode(w, &sales)
	require.Len(t, sales.Data, 1)
	assert.Equal(t, alpha, sales.Data[0].ProductID)
	assert.Equal(t, 1, sales.Meta.Total)
}

func TestCartItemOwnership(t *testing.T) {
	api := newAPI(t)
	seller := api.register("sam@example.com", "SELLER")
	cara := api.register("cara@example.com", "CLIENT")
	dan := api.register("dan@example.com", "CLIENT")
	alpha := api.createProduct(seller, "Alpha", "10.00")

	w := api.do(http.MethodPost, "/cart", cara, gin.H{"product_id": alpha, "quantity": 1})
	require.Equal(t, http.StatusCreated, w.Code)
	var item struct {
		ID string `json:"id"`
	}
	api.decode(w, &item)

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, "/cart/"+item.ID, dan, nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodDelete, "/cart/"+item.ID, cara, nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodDelete, "/cart", cara, nil).Code)
}

func TestProductManagement(t *testing.T) {
	api := newAPI(t)
	sam := api.register("sam@example.com", "SELLER")
	sue := api.register("sue@example.com", "SELLER")
	buyer := api.register("cara@example.com", "CLIENT")
	mug := api.createProduct(sam, "Mug", "5.00")

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPatch, "/products/"+mug, sue, gin.H{"price": "1.00"}).Code)

	w := api.do(http.MethodPatch, "/products/"+mug, sam, gin.H{"price": "6.50"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(http.MethodGet, "/products/"+mug, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p struct {
		Price      string `json:"price"`
		SellerName string `json:"seller_name"`
	}
	api.decode(w, &p)
	assert.True(t, decimal.RequireFromString(p.Price).Equal(decimal.RequireFromString("6.50")), p.Price)
	assert.Equal(t, "sam@example.com", p.SellerName)

	w = api.do(http.MethodPost, "/favorites/"+mug, buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Added to favorites")

	w = api.do(http.MethodGet, "/products?search=mug", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), mug)

	require.Equal(t, http.StatusOK, api.do(http.MethodDelete, "/products/"+mug, sam, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/products/"+mug, "", nil).Code)

	w = api.do(http.MethodGet, "/favorites", buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var favorites []interface{}
	api.decode(w, &favorites)
	assert.Empty(t, favorites)
}

func TestUploadAndExport(t *testing.T) {
	api := newAPI(t)
	seller := api.register("sam@example.com", "SELLER")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "products.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("name,description,price,imageUrl\nMug,Tall,12.50,https://img/mug.png\nBad,,zero,\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/products/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+seller)
	w := httptest.NewRecorder()
	api.h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"message":"Import completed","imported":1,"skipped":1}`, w.Body.String())

	w = api.do(http.MethodGet, "/products/export", seller, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=products.xlsx", w.Header().Get("Content-Disposition"))
	assert.NotZero(t, w.Body.Len())
}
