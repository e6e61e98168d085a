// Package notifymock provides a testify mock for the notifier.
package notifymock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/taskhub/taskhub/internal/model"
)

// MockNotifier is a mock implementation of notify.Notifier.
type MockNotifier struct {
	mock.Mock
}

// NewMockNotifier creates a new notifier mock that asserts its expectations
// on test cleanup.
func NewMockNotifier(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockNotifier {
	m := &MockNotifier{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockNotifier) TaskCreated(ctx context.Context, task model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockNotifier) TaskCompleted(ctx context.Context, task model.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}
