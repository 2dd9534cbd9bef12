package service

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/stylemate/platform/internal/api/middleware"
	"github.com/stylemate/platform/internal/cache"
	"github.com/stylemate/platform/internal/errors"
	"github.com/stylemate/platform/internal/models"
	repository "github.com/stylemate/platform/internal/repositories"
)

type CartService interface {
	GetCart(ctx context.Context, customerID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, customerID uuid.UUID, req *models.AddCartItemRequest) (*models.CartItem, error)
	UpdateItem(ctx context.Context, customerID, itemID uuid.UUID, req *models.UpdateCartItemRequest) (*models.CartItem, error)
	RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) error
	ApplyCoupon(ctx context.Context, customerID uuid.UUID, req *models.ApplyCouponRequest) (*models.CouponResult, error)
}

type cartService struct {
	repo        repository.CartRepository
	productRepo repository.ProductRepository
	couponRepo  repository.CouponRepository
	cache       cache.Cache
	now         func() time.Time
}

func NewCartService(repo repository.CartRepository, productRepo repository.ProductRepository, couponRepo repository.CouponRepository, c cache.Cache) CartService {
	return &cartService{
		repo:        repo,
		productRepo: productRepo,
		couponRepo:  couponRepo,
		cache:       c,
		now:         time.Now,
	}
}

func (s *cartService) GetCart(ctx context.Context, customerID uuid.UUID) (*models.Cart, error) {

	cacheKey := cache.Key(cache.CartKeyPrefix, customerID.String())

	cached := &models.Cart{}
	if hit, err := s.cache.Get(ctx, cacheKey, cached); err == nil && hit {
		return cached, nil
	}

	items, err := s.repo.GetItems(ctx, customerID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load cart").WithError(err)
	}

	cart := &models.Cart{Items: items}

	if err := s.cache.Set(ctx, cacheKey, cart, 0); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to cache cart", "error", err.Error())
	}

	return cart, nil
}

// AddItem creates a line for the product or raises the existing line's
// quantity, clamped to the min(stock, 10) ceiling.
func (s *cartService) AddItem(ctx context.Context, customerID uuid.UUID, req *models.AddCartItemRequest) (*models.CartItem, error) {

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Product not found").WithError(err)
		}
		return nil, errors.DatabaseError("Failed to load product").WithError(err)
	}

	if !product.Available || product.Stock < 1 {
		return nil, errors.BadRequestError("Product is currently unavailable")
	}

	quantity := req.Quantity

	existing, err := s.repo.GetItemByProduct(ctx, customerID, req.ProductID)
	if err != nil && !stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.DatabaseError("Failed to load cart item").WithError(err)
	}
	if existing != nil {
		quantity += existing.Quantity
	}

	quantity = clampQuantity(quantity, product.Stock)

	item, err := s.repo.Upsert(ctx, customerID, req.ProductID, quantity)
	if err != nil {
		return nil, errors.DatabaseError("Failed to add item to cart").WithError(err)
	}

	s.invalidateCart(ctx, customerID)

	return item, nil
}

// UpdateItem sets an absolute quantity. Zero or negative removes the line;
// anything above the ceiling is clamped down to it.
func (s *cartService) UpdateItem(ctx context.Context, customerID, itemID uuid.UUID, req *models.UpdateCartItemRequest) (*models.CartItem, error) {

	if req.Quantity <= 0 {
		if err := s.RemoveItem(ctx, customerID, itemID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	item, err := s.repo.GetItem(ctx, itemID, customerID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Cart item not found").WithError(err)
		}
		return nil, errors.DatabaseError("Failed to load cart item").WithError(err)
	}

	quantity := clampQuantity(req.Quantity, item.Stock)

	if err := s.repo.SetQuantity(ctx, itemID, customerID, quantity); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Cart item not found").WithError(err)
		}
		return nil, errors.DatabaseError("Failed to update cart item").WithError(err)
	}

	s.invalidateCart(ctx, customerID)

	return s.getUpdatedItem(ctx, itemID, customerID)
}

func (s *cartService) RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) error {

	if err := s.repo.DeleteItem(ctx, itemID, customerID); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NotFoundError("Cart item not found").WithError(err)
		}
		return errors.DatabaseError("Failed to remove cart item").WithError(err)
	}

	s.invalidateCart(ctx, customerID)

	return nil
}

func (s *cartService) ApplyCoupon(ctx context.Context, customerID uuid.UUID, req *models.ApplyCouponRequest) (*models.CouponResult, error) {

	coupon, err := s.couponRepo.GetByCode(ctx, req.Code)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.ValidationError("Invalid coupon code").WithError(err)
		}
		return nil, errors.DatabaseError("Failed to look up coupon").WithError(err)
	}

	if !coupon.Usable(s.now()) {
		return nil, errors.ValidationError("Coupon is expired or inactive")
	}

	items, err := s.repo.GetItems(ctx, customerID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load cart").WithError(err)
	}

	if len(items) == 0 {
		return nil, errors.BadRequestError("Cart is empty")
	}

	cart := &models.Cart{Items: items}
	subtotal := cart.Subtotal()
	discount := models.PercentOf(subtotal, coupon.PercentOff)

	return &models.CouponResult{
		Code:       coupon.Code,
		PercentOff: coupon.PercentOff,
		Subtotal:   subtotal,
		Discount:   discount,
		Payable:    subtotal - discount,
	}, nil
}

func (s *cartService) getUpdatedItem(ctx context.Context, itemID, customerID uuid.UUID) (*models.CartItem, error) {
	item, err := s.repo.GetItem(ctx, itemID, customerID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load cart item").WithError(err)
	}

	return item, nil
}

func (s *cartService) invalidateCart(ctx context.Context, customerID uuid.UUID) {
	if err := s.cache.Delete(ctx, cache.Key(cache.CartKeyPrefix, customerID.String())); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to invalidate cart cache", "error", err.Error())
	}
}

func clampQuantity(quantity, stock int) int {
	ceiling := min(stock, models.MaxLineQuantity)

	return max(1, min(quantity, ceiling))
}
