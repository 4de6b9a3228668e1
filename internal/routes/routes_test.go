package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grocery-mart/internal/auth"
	"grocery-mart/internal/cache"
	"grocery-mart/internal/config"
	"grocery-mart/internal/repository/memory"
	"grocery-mart/internal/service"
)

type api struct {
	t      *testing.T
	router *gin.Engine
	jwt    *auth.JWTVerifier
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier, err := auth.NewJWTVerifier("test-secret")
	require.NoError(t, err)

	c := cache.New(time.Minute)
	t.Cleanup(c.Close)

	cfg := &config.Config{
		CORSOrigins:   []string{"*"},
		RedirectDelay: 3 * time.Second,
	}
	svc := service.New(memory.New().Set(), c, service.Options{
		UndoWindow:     10 * time.Second,
		MostSellerTopN: 5,
		AdminEmails:    []string{"admin@mart.test"},
	})

	router := gin.New()
	RegisterRoutes(router, cfg, svc, verifier)
	return &api{t: t, router: router, jwt: verifier}
}

func (a *api) token(uid, email string) string {
	a.t.Helper()
	tok, err := a.jwt.Issue(auth.Identity{UID: uid, Email: email}, time.Hour)
	require.NoError(a.t, err)
	return tok
}

func (a *api) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
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
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	out := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestAPI_CheckoutFlow(t *testing.T) {
	a := newAPI(t)
	admin := a.token("admin-1", "admin@mart.test")
	user := a.token("user-1", "shopper@mart.test")

	w := a.do(http.MethodPost, "/v1/admin/products", admin, map[string]interface{}{
		"name": "Mango", "category": "fruit", "price": 60, "discounted_price": 50, "available_quantity": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	productID := decode(t, w)["id"].(string)

	w = a.do(http.MethodPost, "/v1/cart/items/"+productID, user, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = a.do(http.MethodPost, "/v1/cart/items/"+productID+"/increment", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cart := decode(t, w)
	assert.Equal(t, 100.0, cart["total_amount"])
	assert.Equal(t, 2.0, cart["total_items"])

	w = a.do(http.MethodPost, "/v1/cart/items/"+productID, user, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(http.MethodPost, "/v1/checkout", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	orderID := decode(t, w)["order_id"].(string)

	w = a.do(http.MethodPost, "/v1/checkout/"+orderID+"/pay", user, map[string]interface{}{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "no address yet")

	w = a.do(http.MethodPost, "/v1/addresses", user, map[string]interface{}{
		"name": "Asha", "phone": "9876543210", "line1": "4 Lake View", "city": "Pune",
		"state": "MH", "pincode": "411001", "address_type": "home",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["default_address"])

	w = a.do(http.MethodPost, "/v1/checkout/"+orderID+"/pay", user, map[string]interface{}{"amount": 100})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	receipt := decode(t, w)
	assert.Equal(t, 3000.0, receipt["redirect_after_ms"])

	w = a.do(http.MethodGet, "/v1/products/"+productID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	product := decode(t, w)
	assert.Equal(t, 0.0, product["available_quantity"])
	assert.Equal(t, true, product["most_seller"])

	w = a.do(http.MethodPut, "/v1/admin/orders/"+orderID+"/status", admin, map[string]string{"status": "shipped"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Shipped", decode(t, w)["order_status"])

	w = a.do(http.MethodGet, "/v1/admin/most-sellers/export", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
}

func TestAPI_AuthAndRoles(t *testing.T) {
	a := newAPI(t)
	user := a.token("user-1", "shopper@mart.test")

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/v1/cart", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/v1/cart", "garbage", nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/v1/admin/users", user, nil).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/healthz", "", nil).Code)
}

func TestAPI_RemoveAndUndo(t *testing.T) {
	a := newAPI(t)
	admin := a.token("admin-1", "admin@mart.test")
	user := a.token("user-1", "shopper@mart.test")

	w := a.do(http.MethodPost, "/v1/admin/products", admin, map[string]interface{}{
		"name": "Rice", "category": "grains", "price": 70, "available_quantity": 5,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	productID := decode(t, w)["id"].(string)

	require.Equal(t, http.StatusOK, a.do(http.MethodPost, "/v1/cart/items/"+productID, user, nil).Code)

	w = a.do(http.MethodDelete, "/v1/cart/items/"+productID, user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	token := decode(t, w)["undo_token"].(string)

	w = a.do(http.MethodPost, "/v1/cart/undo", user, map[string]string{"undo_token": token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decode(t, w)["total_items"])

	w = a.do(http.MethodPost, "/v1/cart/undo", user, map[string]string{"undo_token": token})
	assert.Equal(t, http.StatusGone, w.Code)

	w = a.do(http.MethodPost, "/v1/cart/items/not-an-id", user, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
