package mocks

import (
	"context"

	"github.com/benmeehan/geo-alarm/pkg/location"
	"github.com/stretchr/testify/mock"
)

// MockSource is a mock implementation of the location.Source interface.
// Callbacks passed to Watch are kept so tests can deliver readings by hand.
type MockSource struct {
	mock.Mock

	OnReading location.ReadingFunc
	OnError   location.ErrorFunc
}

func (m *MockSource) GetCurrentReading(ctx context.Context, opts location.Options) (location.Location, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).(location.Location), args.Error(1)
}

func (m *MockSource) Watch(opts location.Options, onReading location.ReadingFunc, onError location.ErrorFunc) (location.WatchHandle, error) {
	args := m.Called(opts, onReading, onError)
	if args.Error(1) == nil {
		m.OnReading = onReading
		m.OnError = onError
	}
	return args.Get(0).(location.WatchHandle), args.Error(1)
}

func (m *MockSource) Unwatch(handle location.WatchHandle) {
	m.Called(handle)
}
