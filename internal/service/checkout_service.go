package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"eklart/internal/model"
	"eklart/internal/promo"
	"eklart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderNumberPrefix and orderNumberLength shape the externally visible
// order identifier, e.g. CMD-7KQ2M9XV.
const (
	orderNumberPrefix = "CMD-"
	orderNumberLength = 8
	orderNumberChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// checkoutService implements CheckoutService.
type checkoutService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	articleRepo repository.ArticleRepository
	buyerRepo   repository.BuyerRepository
	validator   promo.Validator
	shippingFee float64
	logger      zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	articleRepo repository.ArticleRepository,
	buyerRepo repository.BuyerRepository,
	validator promo.Validator,
	shippingFee float64,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		articleRepo: articleRepo,
		buyerRepo:   buyerRepo,
		validator:   validator,
		shippingFee: shippingFee,
		logger:      logger.With().Str("service", "checkout").Logger(),
	}
}

// PlaceOrder validates the shopper's cart against live stock, persists the
// order with its lines, decrements stock and clears the cart as one atomic
// transaction. Any failure past BeginTx rolls the whole transaction back:
// no order, no lines, no stock mutation, cart untouched.
func (s *checkoutService) PlaceOrder(ctx context.Context, userID uuid.UUID, req *model.CheckoutRequest) (*model.OrderReceipt, error) {
	if err := validateCheckoutRequest(req); err != nil {
		return nil, err
	}

	// A valid promo code waives the shipping fee
	discount := 0.0
	if req.PromoCode != nil && *req.PromoCode != "" {
		if err := s.validator.Validate(ctx, *req.PromoCode); err != nil {
			s.logger.Warn().
				Str("promo_code", *req.PromoCode).
				Err(err).
				Msg("invalid promo code")
			return nil, err
		}
		discount = s.shippingFee
		s.logger.Debug().Str("promo_code", *req.PromoCode).Msg("promo code validated, shipping waived")
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin checkout transaction")
		return nil, model.ErrOrderPlacement
	}

	// Ensure the transaction is rolled back on any error path
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback checkout transaction")
			}
		}
	}()

	// Resolve the buyer profile, creating it on first checkout, and apply
	// the submitted shipping details.
	buyer, err := s.buyerRepo.GetOrCreate(ctx, tx, userID)
	if err != nil {
		return nil, model.ErrOrderPlacement
	}
	if err = s.buyerRepo.UpdateShipping(ctx, tx, buyer.ID, req.ShippingDetails); err != nil {
		return nil, model.ErrOrderPlacement
	}

	// Read the cart and its articles at a consistent point
	items, err := s.cartRepo.GetItemsTx(ctx, tx, userID)
	if err != nil {
		return nil, model.ErrOrderPlacement
	}
	if len(items) == 0 {
		err = model.ErrCartEmpty
		return nil, err
	}

	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ArticleID
	}

	articles, err := s.articleRepo.GetByIDsTx(ctx, tx, ids)
	if err != nil {
		return nil, model.ErrOrderPlacement
	}

	byID := make(map[uuid.UUID]model.Article, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
	}

	// Verify every line against available stock before writing anything,
	// so the caller learns which article is short.
	subtotal := 0.0
	for _, item := range items {
		article, ok := byID[item.ArticleID]
		if !ok {
			err = model.ErrArticleNotFound
			return nil, err
		}
		if article.Stock < item.Quantity {
			s.logger.Warn().
				Str("article_id", article.ID.String()).
				Int("stock", article.Stock).
				Int("requested", item.Quantity).
				Msg("checkout refused, insufficient stock")
			err = model.NewInsufficientStockError(article.Name)
			return nil, err
		}
		subtotal += article.Price * float64(item.Quantity)
	}

	total := subtotal + s.shippingFee - discount

	orderNumber, err := generateOrderNumber()
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to generate order number")
		return nil, model.ErrOrderPlacement
	}

	now := time.Now()
	order := &model.Order{
		ID:            uuid.New(),
		ClientID:      buyer.ID,
		OrderNumber:   orderNumber,
		OrderDate:     now,
		TotalAmount:   total,
		Status:        model.OrderStatusPending,
		PaymentMethod: req.PaymentMethod,
		PromoCode:     req.PromoCode,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, model.ErrOrderPlacement
	}

	// Freeze unit prices into order lines and decrement stock. The guarded
	// decrement is what keeps two concurrent checkouts from both taking
	// the last unit: the losing transaction fails here and rolls back.
	lines := make([]model.OrderLine, len(items))
	receiptItems := make([]model.ReceiptLine, len(items))
	for i, item := range items {
		article := byID[item.ArticleID]
		lines[i] = model.OrderLine{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ArticleID: article.ID,
			Quantity:  item.Quantity,
			UnitPrice: article.Price,
		}
		receiptItems[i] = model.ReceiptLine{
			ArticleID: article.ID,
			Name:      article.Name,
			UnitPrice: article.Price,
			Quantity:  item.Quantity,
		}
	}

	if err = s.orderRepo.CreateOrderLines(ctx, tx, lines); err != nil {
		return nil, model.ErrOrderPlacement
	}

	for _, line := range lines {
		if err = s.articleRepo.DecrementStock(ctx, tx, line.ArticleID, line.Quantity); err != nil {
			if err == model.ErrInsufficientStock {
				// Lost a race for the last units since the pre-check
				err = model.NewInsufficientStockError(byID[line.ArticleID].Name)
				return nil, err
			}
			return nil, model.ErrOrderPlacement
		}
	}

	if err = s.cartRepo.ClearTx(ctx, tx, userID); err != nil {
		return nil, model.ErrOrderPlacement
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_number", orderNumber).Msg("failed to commit checkout transaction")
		return nil, model.ErrOrderPlacement
	}

	s.logger.Info().
		Str("order_number", orderNumber).
		Str("user_id", userID.String()).
		Int("line_count", len(lines)).
		Float64("total", total).
		Msg("order placed")

	return &model.OrderReceipt{
		OrderNumber: orderNumber,
		Date:        order.OrderDate,
		Items:       receiptItems,
		Subtotal:    subtotal,
		Shipping:    s.shippingFee,
		Discount:    discount,
		Total:       total,
	}, nil
}

// ListOrders retrieves the shopper's order history, newest first. Line
// names come from the live catalogue for display; prices stay frozen.
func (s *checkoutService) ListOrders(ctx context.Context, userID uuid.UUID) ([]model.OrderSummary, error) {
	buyer, err := s.buyerRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if buyer == nil {
		// Never checked out, so no history
		return []model.OrderSummary{}, nil
	}

	orders, linesByOrder, err := s.orderRepo.ListByClient(ctx, buyer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	idSet := make(map[uuid.UUID]bool)
	var articleIDs []uuid.UUID
	for _, lines := range linesByOrder {
		for _, line := range lines {
			if !idSet[line.ArticleID] {
				idSet[line.ArticleID] = true
				articleIDs = append(articleIDs, line.ArticleID)
			}
		}
	}

	articles, err := s.articleRepo.GetByIDs(ctx, articleIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	names := make(map[uuid.UUID]string, len(articles))
	for _, a := range articles {
		names[a.ID] = a.Name
	}

	summaries := make([]model.OrderSummary, 0, len(orders))
	for _, order := range orders {
		summary := model.OrderSummary{
			ID:          order.ID,
			OrderNumber: order.OrderNumber,
			Date:        order.OrderDate,
			Total:       order.TotalAmount,
			Status:      order.Status,
		}
		for _, line := range linesByOrder[order.ID] {
			summary.Items = append(summary.Items, model.ReceiptLine{
				ArticleID: line.ArticleID,
				Name:      names[line.ArticleID],
				UnitPrice: line.UnitPrice,
				Quantity:  line.Quantity,
			})
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// validateCheckoutRequest checks the shipping form for presence of every
// required field.
func validateCheckoutRequest(req *model.CheckoutRequest) error {
	if req == nil {
		return model.NewValidationError("request", "checkout request is required")
	}

	fields := []struct {
		name  string
		value string
	}{
		{"firstName", req.FirstName},
		{"lastName", req.LastName},
		{"email", req.Email},
		{"phone", req.Phone},
		{"address", req.Address},
		{"city", req.City},
		{"paymentMethod", req.PaymentMethod},
	}

	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return model.NewValidationError(f.name, fmt.Sprintf("%s is required", f.name))
		}
	}

	if !strings.Contains(req.Email, "@") {
		return model.NewValidationError("email", "email is not valid")
	}

	return nil
}

// generateOrderNumber builds a CMD-prefixed identifier with a random
// suffix. 36^8 possible suffixes make collisions negligible; the unique
// index on order_number is the backstop.
func generateOrderNumber() (string, error) {
	var sb strings.Builder
	sb.WriteString(orderNumberPrefix)

	max := big.NewInt(int64(len(orderNumberChars)))
	for i := 0; i < orderNumberLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		sb.WriteByte(orderNumberChars[n.Int64()])
	}

	return sb.String(), nil
}
