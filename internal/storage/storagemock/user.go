package storagemock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/taskhub/taskhub/internal/model"
)

// MockUserRepository is a mock implementation of storage.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

// NewMockUserRepository creates a new user repository mock that asserts its
// expectations on test cleanup.
func NewMockUserRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUserRepository {
	m := &MockUserRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockUserRepository) CreateUser(ctx context.Context, u model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockUserRepository) ListUsers(ctx context.Context, role model.Role) ([]model.User, error) {
	args := m.Called(ctx, role)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, u model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}
