package repository

import (
	"context"
	"testing"

	"eklart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartRepository_AddItem_Accumulates(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewCartRepository(pool, logger)

	article := testArticle("Carved bowl", 5000, 10)
	seedArticles(t, pool, []model.Article{article})

	ctx := context.Background()
	userID := uuid.New()

	// First add inserts
	item, err := repo.AddItem(ctx, userID, article.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)

	// Second add increments the same row rather than duplicating it
	item, err = repo.AddItem(ctx, userID, article.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	items, err := repo.GetItems(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestCartRepository_SetQuantity(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewCartRepository(pool, logger)

	article := testArticle("Carved bowl", 5000, 10)
	seedArticles(t, pool, []model.Article{article})

	ctx := context.Background()
	userID := uuid.New()

	_, err := repo.AddItem(ctx, userID, article.ID, 2)
	require.NoError(t, err)

	// Set replaces the quantity outright, it is not additive
	err = repo.SetQuantity(ctx, userID, article.ID, 7)
	require.NoError(t, err)

	items, err := repo.GetItems(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)

	// Unknown article
	err = repo.SetQuantity(ctx, userID, uuid.New(), 1)
	assert.ErrorIs(t, err, model.ErrCartItemNotFound)
}

func TestCartRepository_RemoveItem(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewCartRepository(pool, logger)

	article := testArticle("Carved bowl", 5000, 10)
	seedArticles(t, pool, []model.Article{article})

	ctx := context.Background()
	userID := uuid.New()

	_, err := repo.AddItem(ctx, userID, article.ID, 2)
	require.NoError(t, err)

	err = repo.RemoveItem(ctx, userID, article.ID)
	require.NoError(t, err)

	items, err := repo.GetItems(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)

	// Removing again reports not found
	err = repo.RemoveItem(ctx, userID, article.ID)
	assert.ErrorIs(t, err, model.ErrCartItemNotFound)
}

func TestCartRepository_Clear(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewCartRepository(pool, logger)

	a1 := testArticle("Carved bowl", 5000, 10)
	a2 := testArticle("Woven basket", 3500, 4)
	seedArticles(t, pool, []model.Article{a1, a2})

	ctx := context.Background()
	userID := uuid.New()
	otherUser := uuid.New()

	_, err := repo.AddItem(ctx, userID, a1.ID, 1)
	require.NoError(t, err)
	_, err = repo.AddItem(ctx, userID, a2.ID, 2)
	require.NoError(t, err)
	_, err = repo.AddItem(ctx, otherUser, a1.ID, 3)
	require.NoError(t, err)

	err = repo.Clear(ctx, userID)
	require.NoError(t, err)

	items, err := repo.GetItems(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)

	// Other shoppers' carts are untouched
	items, err = repo.GetItems(ctx, otherUser)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCartRepository_Merge(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewCartRepository(pool, logger)

	articleA := testArticle("Carved bowl", 5000, 10)
	articleB := testArticle("Woven basket", 3500, 4)
	seedArticles(t, pool, []model.Article{articleA, articleB})

	ctx := context.Background()
	userID := uuid.New()

	// Server cart holds {A: 2}
	_, err := repo.AddItem(ctx, userID, articleA.ID, 2)
	require.NoError(t, err)

	// Local cart holds {A: 3, B: 1}
	err = repo.Merge(ctx, userID, []model.CartItemInput{
		{ArticleID: articleA.ID, Quantity: 3},
		{ArticleID: articleB.ID, Quantity: 1},
	})
	require.NoError(t, err)

	items, err := repo.GetItems(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	quantities := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		quantities[item.ArticleID] = item.Quantity
	}
	assert.Equal(t, 5, quantities[articleA.ID])
	assert.Equal(t, 1, quantities[articleB.ID])
}

func TestCartRepository_Merge_Empty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewCartRepository(pool, logger)

	ctx := context.Background()

	err := repo.Merge(ctx, uuid.New(), nil)
	assert.NoError(t, err)
}

func TestCartRepository_Merge_UnknownArticleRollsBack(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewCartRepository(pool, logger)

	article := testArticle("Carved bowl", 5000, 10)
	seedArticles(t, pool, []model.Article{article})

	ctx := context.Background()
	userID := uuid.New()

	// Second item violates the articles FK, so the whole merge must fail
	err := repo.Merge(ctx, userID, []model.CartItemInput{
		{ArticleID: article.ID, Quantity: 1},
		{ArticleID: uuid.New(), Quantity: 1},
	})
	require.Error(t, err)

	items, err := repo.GetItems(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
