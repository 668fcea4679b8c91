// test/mock/access.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/prismworks/prism/api/authz"
	"github.com/prismworks/prism/api/model"
)

// MockAccessService is a mock implementation of service.IAccessService
type MockAccessService struct {
	mock.Mock
}

func (m *MockAccessService) CheckAccess(ctx context.Context, identity model.CallerIdentity, permission, bucket string) (authz.Decision, error) {
	args := m.Called(ctx, identity, permission, bucket)
	return args.Get(0).(authz.Decision), args.Error(1)
}

func (m *MockAccessService) InvalidateUser(ctx context.Context, orgID, userID string) (int, error) {
	args := m.Called(ctx, orgID, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockAccessService) InvalidateUsers(ctx context.Context, orgID string, userIDs []string) (int, error) {
	args := m.Called(ctx, orgID, userIDs)
	return args.Int(0), args.Error(1)
}

func (m *MockAccessService) BreakerStatus(ctx context.Context) (authz.BreakerStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(authz.BreakerStatus), args.Error(1)
}
