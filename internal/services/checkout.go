package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stylemate/platform/internal/api/middleware"
	"github.com/stylemate/platform/internal/cache"
	"github.com/stylemate/platform/internal/errors"
	"github.com/stylemate/platform/internal/models"
	repository "github.com/stylemate/platform/internal/repositories"
	"github.com/stylemate/platform/pkg/payments"
)

type CheckoutService interface {
	Checkout(ctx context.Context, customerID uuid.UUID) (*models.CheckoutSummary, error)
}

type checkoutService struct {
	cartRepo repository.CartRepository
	payments payments.Client
	cache    cache.Cache
	currency string
}

func NewCheckoutService(cartRepo repository.CartRepository, paymentsClient payments.Client, c cache.Cache, currency string) CheckoutService {
	return &checkoutService{
		cartRepo: cartRepo,
		payments: paymentsClient,
		cache:    c,
		currency: currency,
	}
}

// Checkout prices the cart (flat 18% tax, free delivery), opens a payment
// intent for the total, and empties the cart.
func (s *checkoutService) Checkout(ctx context.Context, customerID uuid.UUID) (*models.CheckoutSummary, error) {

	items, err := s.cartRepo.GetItems(ctx, customerID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load cart").WithError(err)
	}

	if len(items) == 0 {
		return nil, errors.BadRequestError("Cart is empty")
	}

	for _, item := range items {
		if !item.Available {
			return nil, errors.BadRequestError(fmt.Sprintf("%s is no longer available", item.ProductName))
		}
	}

	cart := &models.Cart{Items: items}
	subtotal := cart.Subtotal()
	tax := models.TaxOn(subtotal)
	total := subtotal + tax + models.DeliveryCharge

	intent, err := s.payments.CreatePaymentIntent(total, s.currency,
		fmt.Sprintf("Stylemate order of %d items (%s) for customer %s",
			cart.ItemCount(), models.FormatMinor(total, "₹"), customerID))
	if err != nil {
		return nil, errors.ThirdPartyError("Failed to initiate payment").WithError(err)
	}

	if err := s.cartRepo.DeleteAll(ctx, customerID); err != nil {
		return nil, errors.DatabaseError("Failed to clear cart").WithError(err)
	}

	if err := s.cache.Delete(ctx, cache.Key(cache.CartKeyPrefix, customerID.String())); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to invalidate cart cache", "error", err.Error())
	}

	return &models.CheckoutSummary{
		Subtotal:        subtotal,
		Tax:             tax,
		DeliveryCharge:  models.DeliveryCharge,
		Total:           total,
		PaymentIntentID: intent.ID,
	}, nil
}
