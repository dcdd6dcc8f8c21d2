package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eklart/internal/handler"
	"eklart/internal/model"
	"eklart/internal/router"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const apiTestSecret = "integration-test-secret"

// newAPIServer builds the full HTTP stack on top of a containerised database.
func newAPIServer(t *testing.T, env *testEnv) *httptest.Server {
	t.Helper()

	logger := zerolog.Nop()
	h := router.New(
		handler.NewArticleHandler(env.Catalog, logger),
		handler.NewCartHandler(env.Cart, logger),
		handler.NewOrderHandler(env.Checkout, logger),
		apiTestSecret,
		logger,
	)

	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return server
}

// shopperToken signs a bearer token for the given shopper.
func shopperToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(apiTestSecret))
	require.NoError(t, err)
	return signed
}

// doJSON performs an authenticated request and decodes the JSON response.
func doJSON(t *testing.T, server *httptest.Server, method, path, token string, body, out any) int {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(encoded)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, server.URL+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestAPIShoppingFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	env := setupEnv(t)
	server := newAPIServer(t, env)

	basket := seedArticle(t, env.Pool, "Woven Basket", 5000, 10)
	userID := uuid.New()
	token := shopperToken(t, userID)

	// Browse the catalogue without a token.
	var articles []model.Article
	status := doJSON(t, server, http.MethodGet, "/api/articles", "", nil, &articles)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, articles, 1)
	assert.Equal(t, "Woven Basket", articles[0].Name)

	// The cart requires authentication.
	status = doJSON(t, server, http.MethodGet, "/api/cart", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// Add two units, then check out.
	var view model.CartView
	status = doJSON(t, server, http.MethodPost, "/api/cart", token,
		map[string]any{"articleId": basket.ID.String(), "quantity": 2}, &view)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 10000.0, view.Subtotal)

	var receipt model.OrderReceipt
	status = doJSON(t, server, http.MethodPost, "/api/orders", token, map[string]any{
		"firstName":     "Awa",
		"lastName":      "Diallo",
		"email":         "awa.diallo@example.com",
		"phone":         "+22990000001",
		"address":       "Rue 12, Quartier Zongo",
		"city":          "Cotonou",
		"paymentMethod": "kkiapay",
	}, &receipt)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 12500.0, receipt.Total)
	assert.Equal(t, 2500.0, receipt.Shipping)

	// Stock moved and the cart is empty again.
	assert.Equal(t, 8, articleStock(t, env.Pool, basket.ID))

	status = doJSON(t, server, http.MethodGet, "/api/cart", token, nil, &view)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, view.Lines)

	// Order history shows the placed order.
	var summaries []model.OrderSummary
	status = doJSON(t, server, http.MethodGet, "/api/orders", token, nil, &summaries)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, summaries, 1)
	assert.Equal(t, receipt.OrderNumber, summaries[0].OrderNumber)
}

func TestAPICartMergeAndMutations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	env := setupEnv(t)
	server := newAPIServer(t, env)

	basket := seedArticle(t, env.Pool, "Woven Basket", 5000, 20)
	cloth := seedArticle(t, env.Pool, "Indigo Cloth", 7000, 20)
	userID := uuid.New()
	token := shopperToken(t, userID)

	var view model.CartView
	status := doJSON(t, server, http.MethodPost, "/api/cart", token,
		map[string]any{"articleId": basket.ID.String(), "quantity": 2}, &view)
	require.Equal(t, http.StatusOK, status)

	// Merge a locally accumulated cart into the persisted one.
	status = doJSON(t, server, http.MethodPost, "/api/cart/merge", token, map[string]any{
		"items": []map[string]any{
			{"articleId": basket.ID.String(), "quantity": 3},
			{"articleId": cloth.ID.String(), "quantity": 1},
		},
	}, &view)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, view.Lines, 2)

	quantities := make(map[string]int, len(view.Lines))
	for _, line := range view.Lines {
		quantities[line.ArticleID.String()] = line.Quantity
	}
	assert.Equal(t, 5, quantities[basket.ID.String()])
	assert.Equal(t, 1, quantities[cloth.ID.String()])

	// Update and remove individual lines.
	status = doJSON(t, server, http.MethodPut, fmt.Sprintf("/api/cart/%s", basket.ID), token,
		map[string]any{"quantity": 1}, &view)
	require.Equal(t, http.StatusOK, status)

	status = doJSON(t, server, http.MethodDelete, fmt.Sprintf("/api/cart/%s", cloth.ID), token, nil, &view)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 1, view.Lines[0].Quantity)

	status = doJSON(t, server, http.MethodDelete, "/api/cart/clear", token, nil, &view)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, view.Lines)
}

func TestAPICheckoutErrorMapping(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	env := setupEnv(t)
	server := newAPIServer(t, env)

	scarce := seedArticle(t, env.Pool, "Carved Mask", 15000, 1)
	userID := uuid.New()
	token := shopperToken(t, userID)

	var view model.CartView
	status := doJSON(t, server, http.MethodPost, "/api/cart", token,
		map[string]any{"articleId": scarce.ID.String(), "quantity": 1}, &view)
	require.Equal(t, http.StatusOK, status)

	// Drain the stock behind the cart's back to trigger a conflict.
	_, err := env.Pool.Exec(context.Background(), `UPDATE articles SET stock = 0 WHERE id = $1`, scarce.ID)
	require.NoError(t, err)

	var errResp model.ErrorResponse
	status = doJSON(t, server, http.MethodPost, "/api/orders", token, map[string]any{
		"firstName":     "Awa",
		"lastName":      "Diallo",
		"email":         "awa.diallo@example.com",
		"phone":         "+22990000001",
		"address":       "Rue 12, Quartier Zongo",
		"city":          "Cotonou",
		"paymentMethod": "kkiapay",
	}, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, model.ErrCodeInsufficientStock, errResp.Error)
	assert.Equal(t, "Carved Mask", errResp.Article)

	// A missing shipping field is a validation error.
	errResp = model.ErrorResponse{}
	status = doJSON(t, server, http.MethodPost, "/api/orders", token, map[string]any{
		"firstName":     "Awa",
		"paymentMethod": "kkiapay",
	}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, model.ErrCodeValidation, errResp.Error)
}
