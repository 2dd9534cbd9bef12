// Package mocks provides testify mocks for the service interfaces, used by
// the handler tests.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stylemate/platform/internal/models"
)

type UserService struct {
	mock.Mock
}

func (m *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LoginResponse), args.Error(1)
}

func (m *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserService) RequestOTP(ctx context.Context, req *models.OTPRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *UserService) VerifyOTP(ctx context.Context, req *models.OTPVerifyRequest) (bool, error) {
	args := m.Called(ctx, req)
	return args.Bool(0), args.Error(1)
}

type AppointmentService struct {
	mock.Mock
}

func (m *AppointmentService) AvailableSlots(ctx context.Context, req *models.AvailableSlotsRequest) (*models.SlotsResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SlotsResponse), args.Error(1)
}

func (m *AppointmentService) Reschedule(ctx context.Context, customerID, appointmentID uuid.UUID, req *models.RescheduleRequest) (*models.Appointment, error) {
	args := m.Called(ctx, customerID, appointmentID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *AppointmentService) List(ctx context.Context, customerID uuid.UUID, scope string) ([]models.Appointment, error) {
	args := m.Called(ctx, customerID, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Appointment), args.Error(1)
}

func (m *AppointmentService) Cancel(ctx context.Context, customerID, appointmentID uuid.UUID) error {
	args := m.Called(ctx, customerID, appointmentID)
	return args.Error(0)
}

type CartService struct {
	mock.Mock
}

func (m *CartService) GetCart(ctx context.Context, customerID uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *CartService) AddItem(ctx context.Context, customerID uuid.UUID, req *models.AddCartItemRequest) (*models.CartItem, error) {
	args := m.Called(ctx, customerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartItem), args.Error(1)
}

func (m *CartService) UpdateItem(ctx context.Context, customerID, itemID uuid.UUID, req *models.UpdateCartItemRequest) (*models.CartItem, error) {
	args := m.Called(ctx, customerID, itemID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartItem), args.Error(1)
}

func (m *CartService) RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) error {
	args := m.Called(ctx, customerID, itemID)
	return args.Error(0)
}

func (m *CartService) ApplyCoupon(ctx context.Context, customerID uuid.UUID, req *models.ApplyCouponRequest) (*models.CouponResult, error) {
	args := m.Called(ctx, customerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CouponResult), args.Error(1)
}

type CheckoutService struct {
	mock.Mock
}

func (m *CheckoutService) Checkout(ctx context.Context, customerID uuid.UUID) (*models.CheckoutSummary, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CheckoutSummary), args.Error(1)
}
