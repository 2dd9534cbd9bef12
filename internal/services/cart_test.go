package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stylemate/platform/internal/cache"
	appErrors "github.com/stylemate/platform/internal/errors"
	"github.com/stylemate/platform/internal/models"
	repository "github.com/stylemate/platform/internal/repositories"
	service "github.com/stylemate/platform/internal/services"
)

func newCartFixture() (*repository.MockCartRepository, *repository.MockProductRepository, *repository.MockCouponRepository, *cache.MockCache, service.CartService) {
	mockRepo := repository.NewMockCartRepository()
	mockProducts := repository.NewMockProductRepository()
	mockCoupons := repository.NewMockCouponRepository()
	mockCache := cache.NewMockCache()
	svc := service.NewCartService(mockRepo, mockProducts, mockCoupons, mockCache)

	return mockRepo, mockProducts, mockCoupons, mockCache, svc
}

func TestGetCart(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	cacheKey := cache.Key(cache.CartKeyPrefix, customerID.String())

	t.Run("Success - Cache Miss Loads From Repository", func(t *testing.T) {
		// Arrange
		mockRepo, _, _, mockCache, svc := newCartFixture()
		items := []models.CartItem{{ID: uuid.New(), Quantity: 2, UnitPrice: 49900}}
		mockCache.On("Get", ctx, cacheKey, mock.Anything).Return(false, nil).Once()
		mockRepo.On("GetItems", ctx, customerID).Return(items, nil).Once()
		mockCache.On("Set", ctx, cacheKey, mock.Anything, time.Duration(0)).Return(nil).Once()

		// Act
		cart, err := svc.GetCart(ctx, customerID)

		// Assert
		assert.NoError(t, err)
		assert.Len(t, cart.Items, 1)
		assert.EqualValues(t, 99800, cart.Subtotal())
		mockRepo.AssertExpectations(t)
		mockCache.AssertExpectations(t)
	})

	t.Run("Success - Cache Hit Skips Repository", func(t *testing.T) {
		// Arrange
		mockRepo, _, _, mockCache, svc := newCartFixture()
		mockCache.On("Get", ctx, cacheKey, mock.Anything).Return(true, nil).Once()

		// Act
		cart, err := svc.GetCart(ctx, customerID)

		// Assert
		assert.NoError(t, err)
		assert.NotNil(t, cart)
		mockRepo.AssertNotCalled(t, "GetItems", mock.Anything, mock.Anything)
		mockCache.AssertExpectations(t)
	})

	t.Run("Failure - Database Error", func(t *testing.T) {
		// Arrange
		mockRepo, _, _, mockCache, svc := newCartFixture()
		mockCache.On("Get", ctx, cacheKey, mock.Anything).Return(false, nil).Once()
		mockRepo.On("GetItems", ctx, customerID).Return(nil, errors.New("connection reset")).Once()

		// Act
		cart, err := svc.GetCart(ctx, customerID)

		// Assert
		assert.Error(t, err)
		assert.Nil(t, cart)
		var appErr *appErrors.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrCodeDatabaseError, appErr.Code)
	})
}

func TestAddItem(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	productID := uuid.New()
	cacheKey := cache.Key(cache.CartKeyPrefix, customerID.String())

	availableProduct := &models.Product{ID: productID, Name: "Argan Hair Oil", Price: 49900, Stock: 5, Available: true}

	t.Run("Success - New Line", func(t *testing.T) {
		// Arrange
		mockRepo, mockProducts, _, mockCache, svc := newCartFixture()
		mockProducts.On("GetByID", ctx, productID).Return(availableProduct, nil).Once()
		mockRepo.On("GetItemByProduct", ctx, customerID, productID).Return(nil, sql.ErrNoRows).Once()
		mockRepo.On("Upsert", ctx, customerID, productID, 2).
			Return(&models.CartItem{ID: uuid.New(), ProductID: productID, Quantity: 2}, nil).Once()
		mockCache.On("Delete", ctx, cacheKey).Return(nil).Once()

		// Act
		item, err := svc.AddItem(ctx, customerID, &models.AddCartItemRequest{ProductID: productID, Quantity: 2})

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, 2, item.Quantity)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Success - Existing Line Quantity Clamped To Stock", func(t *testing.T) {
		// Arrange: 4 already in the cart, adding 3 more, but only 5 in stock.
		mockRepo, mockProducts, _, mockCache, svc := newCartFixture()
		mockProducts.On("GetByID", ctx, productID).Return(availableProduct, nil).Once()
		mockRepo.On("GetItemByProduct", ctx, customerID, productID).
			Return(&models.CartItem{ID: uuid.New(), ProductID: productID, Quantity: 4}, nil).Once()
		mockRepo.On("Upsert", ctx, customerID, productID, 5).
			Return(&models.CartItem{ID: uuid.New(), ProductID: productID, Quantity: 5}, nil).Once()
		mockCache.On("Delete", ctx, cacheKey).Return(nil).Once()

		// Act
		item, err := svc.AddItem(ctx, customerID, &models.AddCartItemRequest{ProductID: productID, Quantity: 3})

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, 5, item.Quantity)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Success - Quantity Clamped To Absolute Ceiling", func(t *testing.T) {
		// Arrange: plenty of stock, but never more than 10 per line.
		deepStock := &models.Product{ID: productID, Price: 49900, Stock: 500, Available: true}
		mockRepo, mockProducts, _, mockCache, svc := newCartFixture()
		mockProducts.On("GetByID", ctx, productID).Return(deepStock, nil).Once()
		mockRepo.On("GetItemByProduct", ctx, customerID, productID).Return(nil, sql.ErrNoRows).Once()
		mockRepo.On("Upsert", ctx, customerID, productID, models.MaxLineQuantity).
			Return(&models.CartItem{Quantity: models.MaxLineQuantity}, nil).Once()
		mockCache.On("Delete", ctx, cacheKey).Return(nil).Once()

		// Act
		item, err := svc.AddItem(ctx, customerID, &models.AddCartItemRequest{ProductID: productID, Quantity: 25})

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, models.MaxLineQuantity, item.Quantity)
	})

	t.Run("Failure - Product Unavailable", func(t *testing.T) {
		// Arrange
		_, mockProducts, _, _, svc := newCartFixture()
		unavailable := &models.Product{ID: productID, Stock: 5, Available: false}
		mockProducts.On("GetByID", ctx, productID).Return(unavailable, nil).Once()

		// Act
		item, err := svc.AddItem(ctx, customerID, &models.AddCartItemRequest{ProductID: productID, Quantity: 1})

		// Assert
		assert.Error(t, err)
		assert.Nil(t, item)
		var appErr *appErrors.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrCodeBadRequest, appErr.Code)
	})

	t.Run("Failure - Product Not Found", func(t *testing.T) {
		// Arrange
		_, mockProducts, _, _, svc := newCartFixture()
		mockProducts.On("GetByID", ctx, productID).Return(nil, sql.ErrNoRows).Once()

		// Act
		item, err := svc.AddItem(ctx, customerID, &models.AddCartItemRequest{ProductID: productID, Quantity: 1})

		// Assert
		assert.Error(t, err)
		assert.Nil(t, item)
		var appErr *appErrors.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
	})
}

func TestUpdateItem(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	itemID := uuid.New()
	cacheKey := cache.Key(cache.CartKeyPrefix, customerID.String())

	t.Run("Success - Zero Quantity Removes The Line", func(t *testing.T) {
		// Arrange
		mockRepo, _, _, mockCache, svc := newCartFixture()
		mockRepo.On("DeleteItem", ctx, itemID, customerID).Return(nil).Once()
		mockCache.On("Delete", ctx, cacheKey).Return(nil).Once()

		// Act
		item, err := svc.UpdateItem(ctx, customerID, itemID, &models.UpdateCartItemRequest{Quantity: 0})

		// Assert
		assert.NoError(t, err)
		assert.Nil(t, item)
		mockRepo.AssertNotCalled(t, "SetQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Success - Quantity Clamped To Stock", func(t *testing.T) {
		// Arrange
		mockRepo, _, _, mockCache, svc := newCartFixture()
		existing := &models.CartItem{ID: itemID, Quantity: 1, Stock: 3}
		updated := &models.CartItem{ID: itemID, Quantity: 3, Stock: 3}
		mockRepo.On("GetItem", ctx, itemID, customerID).Return(existing, nil).Once()
		mockRepo.On("SetQuantity", ctx, itemID, customerID, 3).Return(nil).Once()
		mockCache.On("Delete", ctx, cacheKey).Return(nil).Once()
		mockRepo.On("GetItem", ctx, itemID, customerID).Return(updated, nil).Once()

		// Act
		item, err := svc.UpdateItem(ctx, customerID, itemID, &models.UpdateCartItemRequest{Quantity: 7})

		// Assert
		assert.NoError(t, err)
		assert.Equal(t, 3, item.Quantity)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Failure - Item Not Found", func(t *testing.T) {
		// Arrange
		mockRepo, _, _, _, svc := newCartFixture()
		mockRepo.On("GetItem", ctx, itemID, customerID).Return(nil, sql.ErrNoRows).Once()

		// Act
		item, err := svc.UpdateItem(ctx, customerID, itemID, &models.UpdateCartItemRequest{Quantity: 2})

		// Assert
		assert.Error(t, err)
		assert.Nil(t, item)
		var appErr *appErrors.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
	})
}

func TestApplyCoupon(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()

	items := []models.CartItem{{ID: uuid.New(), Quantity: 2, UnitPrice: 65000}}

	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockRepo, _, mockCoupons, _, svc := newCartFixture()
		coupon := &models.Coupon{Code: "GLOW20", PercentOff: 20, Active: true, ExpiresAt: time.Now().Add(time.Hour)}
		mockCoupons.On("GetByCode", ctx, "GLOW20").Return(coupon, nil).Once()
		mockRepo.On("GetItems", ctx, customerID).Return(items, nil).Once()

		// Act
		result, err := svc.ApplyCoupon(ctx, customerID, &models.ApplyCouponRequest{Code: "GLOW20"})

		// Assert
		assert.NoError(t, err)
		assert.EqualValues(t, 130000, result.Subtotal)
		assert.EqualValues(t, 26000, result.Discount)
		assert.EqualValues(t, 104000, result.Payable)
	})

	t.Run("Failure - Expired Coupon", func(t *testing.T) {
		// Arrange
		_, _, mockCoupons, _, svc := newCartFixture()
		coupon := &models.Coupon{Code: "OLD10", PercentOff: 10, Active: true, ExpiresAt: time.Now().Add(-time.Hour)}
		mockCoupons.On("GetByCode", ctx, "OLD10").Return(coupon, nil).Once()

		// Act
		result, err := svc.ApplyCoupon(ctx, customerID, &models.ApplyCouponRequest{Code: "OLD10"})

		// Assert
		assert.Error(t, err)
		assert.Nil(t, result)
		var appErr *appErrors.AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrCodeValidation, appErr.Code)
	})

	t.Run("Failure - Empty Cart", func(t *testing.T) {
		// Arrange
		mockRepo, _, mockCoupons, _, svc := newCartFixture()
		coupon := &models.Coupon{Code: "GLOW20", PercentOff: 20, Active: true, ExpiresAt: time.Now().Add(time.Hour)}
		mockCoupons.On("GetByCode", ctx, "GLOW20").Return(coupon, nil).Once()
		mockRepo.On("GetItems", ctx, customerID).Return([]models.CartItem{}, nil).Once()

		// Act
		result, err := svc.ApplyCoupon(ctx, customerID, &models.ApplyCouponRequest{Code: "GLOW20"})

		// Assert
		assert.Error(t, err)
		assert.Nil(t, result)
	})
}
