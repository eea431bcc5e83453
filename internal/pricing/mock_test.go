package pricing

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/price-check/internal/history"
	"github.com/sells-group/price-check/internal/model"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Fetch(ctx context.Context, worldID, itemID uint32) (*model.MarketSnapshot, error) {
	args := m.Called(ctx, worldID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MarketSnapshot), args.Error(1)
}

func (m *mockSource) Close() {
	m.Called()
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, item *model.PricedItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) Record(ctx context.Context, worldID uint32, item *model.PricedItem) error {
	args := m.Called(ctx, worldID, item)
	return args.Error(0)
}

func (m *mockRecorder) Recent(ctx context.Context, limit int) ([]history.Entry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]history.Entry), args.Error(1)
}

func (m *mockRecorder) Migrate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockRecorder) Close() error {
	return m.Called().Error(0)
}
