package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stylemate/platform/internal/models"
)

// Testify mocks for the repository interfaces, used by the service tests.

type MockUserRepository struct {
	mock.Mock
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)

	return args.Error(0)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.User), args.Error(1)
}

type MockAppointmentRepository struct {
	mock.Mock
}

func NewMockAppointmentRepository() *MockAppointmentRepository {
	return &MockAppointmentRepository{}
}

func (m *MockAppointmentRepository) GetByID(ctx context.Context, id, customerID uuid.UUID) (*models.Appointment, error) {
	args := m.Called(ctx, id, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, scope string) ([]models.Appointment, error) {
	args := m.Called(ctx, customerID, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) ListBookedSlots(ctx context.Context, salonID uuid.UUID, staffID *uuid.UUID, date string) ([]BookedSlot, error) {
	args := m.Called(ctx, salonID, staffID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]BookedSlot), args.Error(1)
}

func (m *MockAppointmentRepository) GetSalonHours(ctx context.Context, salonID uuid.UUID) (*models.SalonHours, error) {
	args := m.Called(ctx, salonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.SalonHours), args.Error(1)
}

func (m *MockAppointmentRepository) GetService(ctx context.Context, serviceID uuid.UUID) (*models.SalonService, error) {
	args := m.Called(ctx, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.SalonService), args.Error(1)
}

func (m *MockAppointmentRepository) Reschedule(ctx context.Context, id, customerID uuid.UUID, date, bookingTime string) (*models.Appointment, error) {
	args := m.Called(ctx, id, customerID, date, bookingTime)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) Cancel(ctx context.Context, id, customerID uuid.UUID) error {
	args := m.Called(ctx, id, customerID)

	return args.Error(0)
}

type MockCartRepository struct {
	mock.Mock
}

func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{}
}

func (m *MockCartRepository) GetItems(ctx context.Context, customerID uuid.UUID) ([]models.CartItem, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.CartItem), args.Error(1)
}

func (m *MockCartRepository) GetItem(ctx context.Context, itemID, customerID uuid.UUID) (*models.CartItem, error) {
	args := m.Called(ctx, itemID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.CartItem), args.Error(1)
}

func (m *MockCartRepository) GetItemByProduct(ctx context.Context, customerID, productID uuid.UUID) (*models.CartItem, error) {
	args := m.Called(ctx, customerID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.CartItem), args.Error(1)
}

func (m *MockCartRepository) Upsert(ctx context.Context, customerID, productID uuid.UUID, quantity int) (*models.CartItem, error) {
	args := m.Called(ctx, customerID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.CartItem), args.Error(1)
}

func (m *MockCartRepository) SetQuantity(ctx context.Context, itemID, customerID uuid.UUID, quantity int) error {
	args := m.Called(ctx, itemID, customerID, quantity)

	return args.Error(0)
}

func (m *MockCartRepository) DeleteItem(ctx context.Context, itemID, customerID uuid.UUID) error {
	args := m.Called(ctx, itemID, customerID)

	return args.Error(0)
}

func (m *MockCartRepository) DeleteAll(ctx context.Context, customerID uuid.UUID) error {
	args := m.Called(ctx, customerID)

	return args.Error(0)
}

type MockProductRepository struct {
	mock.Mock
}

func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{}
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Product), args.Error(1)
}

type MockRateLimitRepository struct {
	mock.Mock
}

func NewMockRateLimitRepository() *MockRateLimitRepository {
	return &MockRateLimitRepository{}
}

func (m *MockRateLimitRepository) CheckLoginRateLimit(ctx context.Context, username string) (bool, int, int, error) {
	args := m.Called(ctx, username)

	return args.Bool(0), args.Int(1), args.Int(2), args.Error(3)
}

type MockOTPRepository struct {
	mock.Mock
}

func NewMockOTPRepository() *MockOTPRepository {
	return &MockOTPRepository{}
}

func (m *MockOTPRepository) StoreCode(ctx context.Context, email, code string, ttl time.Duration) error {
	args := m.Called(ctx, email, code, ttl)

	return args.Error(0)
}

func (m *MockOTPRepository) ConsumeCode(ctx context.Context, email, code string) (bool, error) {
	args := m.Called(ctx, email, code)

	return args.Bool(0), args.Error(1)
}

type MockCouponRepository struct {
	mock.Mock
}

func NewMockCouponRepository() *MockCouponRepository {
	return &MockCouponRepository{}
}

func (m *MockCouponRepository) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Coupon), args.Error(1)
}
