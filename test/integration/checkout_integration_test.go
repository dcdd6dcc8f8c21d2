package integration

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"eklart/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	env := setupEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	basket := seedArticle(t, env.Pool, "Woven Basket", 5000, 10)

	view, err := env.Cart.Add(ctx, userID, basket.ID, 2)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 10000.0, view.Subtotal)

	receipt, err := env.Checkout.PlaceOrder(ctx, userID, &model.CheckoutRequest{
		ShippingDetails: shippingDetails(),
		PaymentMethod:   "kkiapay",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(receipt.OrderNumber, "CMD-"))
	assert.Len(t, receipt.OrderNumber, len("CMD-")+8)
	assert.Equal(t, 10000.0, receipt.Subtotal)
	assert.Equal(t, 2500.0, receipt.Shipping)
	assert.Equal(t, 0.0, receipt.Discount)
	assert.Equal(t, 12500.0, receipt.Total)
	require.Len(t, receipt.Items, 1)
	assert.Equal(t, "Woven Basket", receipt.Items[0].Name)
	assert.Equal(t, 5000.0, receipt.Items[0].UnitPrice)
	assert.Equal(t, 2, receipt.Items[0].Quantity)

	// Stock decremented, cart emptied, order and line persisted.
	assert.Equal(t, 8, articleStock(t, env.Pool, basket.ID))

	view, err = env.Cart.Get(ctx, userID)
	require.NoError(t, err)
	assert.True(t, view.IsEmpty())

	assert.Equal(t, 1, countRows(t, env.Pool, "orders"))
	assert.Equal(t, 1, countRows(t, env.Pool, "order_lines"))

	// The buyer profile was created from the shipping details.
	buyer, err := env.Buyers.GetByUserID(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, buyer)
	assert.Equal(t, "Awa", buyer.FirstName)
	assert.Equal(t, "Cotonou", buyer.City)

	// The receipt is reflected in the order history.
	summaries, err := env.Checkout.ListOrders(ctx, userID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, receipt.OrderNumber, summaries[0].OrderNumber)
	assert.Equal(t, 12500.0, summaries[0].Total)
	assert.Equal(t, model.OrderStatusPending, summaries[0].Status)
}

func TestCheckoutConcurrentLastUnit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	env := setupEnv(t)
	ctx := context.Background()

	lastUnit := seedArticle(t, env.Pool, "Bronze Pendant", 8000, 1)

	userA := uuid.New()
	userB := uuid.New()
	for _, userID := range []uuid.UUID{userA, userB} {
		_, err := env.Cart.Add(ctx, userID, lastUnit.ID, 1)
		require.NoError(t, err)
	}

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i, userID := range []uuid.UUID{userA, userB} {
		wg.Add(1)
		go func(i int, userID uuid.UUID) {
			defer wg.Done()
			_, err := env.Checkout.PlaceOrder(ctx, userID, &model.CheckoutRequest{
				ShippingDetails: shippingDetails(),
				PaymentMethod:   "kkiapay",
			})
			results[i] = err
		}(i, userID)
	}
	wg.Wait()

	// Exactly one order wins the last unit.
	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var domainErr *model.DomainError
		if errors.As(err, &domainErr) {
			assert.Equal(t, model.ErrCodeInsufficientStock, domainErr.Code)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, articleStock(t, env.Pool, lastUnit.ID))
	assert.Equal(t, 1, countRows(t, env.Pool, "orders"))
}

func TestCheckoutAtomicOnStockFailure(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	env := setupEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	cloth := seedArticle(t, env.Pool, "Indigo Cloth", 7000, 5)
	scarce := seedArticle(t, env.Pool, "Carved Mask", 15000, 1)
	pottery := seedArticle(t, env.Pool, "Clay Pot", 3000, 4)

	for _, add := range []struct {
		id  uuid.UUID
		qty int
	}{
		{cloth.ID, 2},
		{scarce.ID, 3}, // exceeds stock
		{pottery.ID, 1},
	} {
		_, err := env.Cart.Add(ctx, userID, add.id, add.qty)
		require.NoError(t, err)
	}

	_, err := env.Checkout.PlaceOrder(ctx, userID, &model.CheckoutRequest{
		ShippingDetails: shippingDetails(),
		PaymentMethod:   "kkiapay",
	})
	require.Error(t, err)

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeInsufficientStock, domainErr.Code)
	assert.Equal(t, "Carved Mask", domainErr.Article)

	// Nothing was persisted and no stock moved.
	assert.Equal(t, 0, countRows(t, env.Pool, "orders"))
	assert.Equal(t, 0, countRows(t, env.Pool, "order_lines"))
	assert.Equal(t, 5, articleStock(t, env.Pool, cloth.ID))
	assert.Equal(t, 1, articleStock(t, env.Pool, scarce.ID))
	assert.Equal(t, 4, articleStock(t, env.Pool, pottery.ID))

	// The cart survives the failed checkout for a retry.
	view, err := env.Cart.Get(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, view.Lines, 3)
}

func TestCheckoutFreezesPrices(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	env := setupEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	bowl := seedArticle(t, env.Pool, "Calabash Bowl", 4000, 6)

	_, err := env.Cart.Add(ctx, userID, bowl.ID, 1)
	require.NoError(t, err)

	receipt, err := env.Checkout.PlaceOrder(ctx, userID, &model.CheckoutRequest{
		ShippingDetails: shippingDetails(),
		PaymentMethod:   "cash_on_delivery",
	})
	require.NoError(t, err)
	assert.Equal(t, 4000.0, receipt.Items[0].UnitPrice)

	// A later catalogue price change must not touch the stored line.
	_, err = env.Pool.Exec(ctx, `UPDATE articles SET price = 9000 WHERE id = $1`, bowl.ID)
	require.NoError(t, err)

	var unitPrice float64
	err = env.Pool.QueryRow(ctx,
		`SELECT unit_price FROM order_lines WHERE article_id = $1`, bowl.ID).Scan(&unitPrice)
	require.NoError(t, err)
	assert.Equal(t, 4000.0, unitPrice)

	summaries, err := env.Checkout.ListOrders(ctx, userID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Len(t, summaries[0].Items, 1)
	assert.Equal(t, 4000.0, summaries[0].Items[0].UnitPrice)
}

func TestCheckoutEmptyCart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	env := setupEnv(t)

	_, err := env.Checkout.PlaceOrder(context.Background(), uuid.New(), &model.CheckoutRequest{
		ShippingDetails: shippingDetails(),
		PaymentMethod:   "kkiapay",
	})
	require.ErrorIs(t, err, model.ErrCartEmpty)
}

func TestCartMergePersistence(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	env := setupEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	basket := seedArticle(t, env.Pool, "Woven Basket", 5000, 20)
	cloth := seedArticle(t, env.Pool, "Indigo Cloth", 7000, 20)

	_, err := env.Cart.Add(ctx, userID, basket.ID, 2)
	require.NoError(t, err)

	view, err := env.Cart.Merge(ctx, userID, []model.CartItemInput{
		{ArticleID: basket.ID, Quantity: 3},
		{ArticleID: cloth.ID, Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)

	quantities := make(map[uuid.UUID]int, len(view.Lines))
	for _, line := range view.Lines {
		quantities[line.ArticleID] = line.Quantity
	}
	assert.Equal(t, 5, quantities[basket.ID])
	assert.Equal(t, 1, quantities[cloth.ID])
}
