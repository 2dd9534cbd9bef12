package payments

import (
	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v81"
)

type MockClient struct {
	mock.Mock
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) CreatePaymentIntent(amount int64, currency string, description string) (*stripe.PaymentIntent, error) {
	args := m.Called(amount, currency, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*stripe.PaymentIntent), args.Error(1)
}
