package email

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockService is a testify mock for the email Service interface.
type MockService struct {
	mock.Mock
}

func NewMockService() *MockService {
	return &MockService{}
}

func (m *MockService) Send(ctx context.Context, msg *Message) error {
	args := m.Called(ctx, msg)

	return args.Error(0)
}
