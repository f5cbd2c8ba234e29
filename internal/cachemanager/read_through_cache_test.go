package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCacheManager[K ~string, V any] struct {
	mock.Mock
}

func (m *mockCacheManager[K, V]) Get(ctx context.Context, key K) (V, bool) {
	args := m.Called(ctx, key)
	v, _ := args.Get(0).(V)
	return v, args.Bool(1)
}

func (m *mockCacheManager[K, V]) GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool) {
	args := m.Called(ctx, key, ttl)
	v, _ := args.Get(0).(V)
	return v, args.Bool(1)
}

func (m *mockCacheManager[K, V]) Set(ctx context.Context, key K, value V, ttl time.Duration) {
	m.Called(ctx, key, value, ttl)
}

func (m *mockCacheManager[K, V]) Delete(ctx context.Context, keys ...K) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func (m *mockCacheManager[K, V]) Flush(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func loadDescriptor(calls *int) func(ctx context.Context, name string) (*cachedDescriptor, error) {
	return func(ctx context.Context, name string) (*cachedDescriptor, error) {
		*calls++
		if name == "" {
			return nil, errors.New("empty class name")
		}
		return &cachedDescriptor{Name: name}, nil
	}
}

func TestReadThroughCache_Get_WithCacheDisabled(t *testing.T) {
	managerMock := &mockCacheManager[string, *cachedDescriptor]{}
	calls := 0
	rtc := NewReadThroughCache[string, *cachedDescriptor, string](managerMock, loadDescriptor(&calls), true)

	d, err := rtc.Get(context.Background(), "Book", "Book", time.Minute)
	require.NoError(t, err)
	require.Equal(t, "Book", d.Name)
	require.Equal(t, 1, calls)
	managerMock.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestReadThroughCache_Get_Miss(t *testing.T) {
	managerMock := &mockCacheManager[string, *cachedDescriptor]{}
	managerMock.On("Get", mock.Anything, "Book").Return(nil, false).Once()
	managerMock.On("Set", mock.Anything, "Book", mock.AnythingOfType("*cachemanager.cachedDescriptor"), time.Minute).Once()

	calls := 0
	rtc := NewReadThroughCache[string, *cachedDescriptor, string](managerMock, loadDescriptor(&calls), false)

	d, err := rtc.Get(context.Background(), "Book", "Book", time.Minute)
	require.NoError(t, err)
	require.Equal(t, "Book", d.Name)
	require.Equal(t, 1, calls)
	managerMock.AssertExpectations(t)
}

func TestReadThroughCache_Get_Hit(t *testing.T) {
	managerMock := &mockCacheManager[string, *cachedDescriptor]{}
	managerMock.On("Get", mock.Anything, "Book").Return(&cachedDescriptor{Name: "cached"}, true).Once()

	calls := 0
	rtc := NewReadThroughCache[string, *cachedDescriptor, string](managerMock, loadDescriptor(&calls), false)

	d, err := rtc.Get(context.Background(), "Book", "Book", time.Minute)
	require.NoError(t, err)
	require.Equal(t, "cached", d.Name)
	require.Zero(t, calls)
	managerMock.AssertExpectations(t)
}

func TestReadThroughCache_Get_ErrorNotCached(t *testing.T) {
	managerMock := &mockCacheManager[string, *cachedDescriptor]{}
	managerMock.On("Get", mock.Anything, "").Return(nil, false).Once()

	calls := 0
	rtc := NewReadThroughCache[string, *cachedDescriptor, string](managerMock, loadDescriptor(&calls), false)

	_, err := rtc.Get(context.Background(), "", "", time.Minute)
	require.Error(t, err)
	managerMock.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReadThroughCache_GetWithRefresh_InMemory(t *testing.T) {
	cache := NewInMemoryCacheManager[string, *cachedDescriptor]("descriptors", DefaultExpiration, DefaultCleanupInterval)
	calls := 0
	rtc := NewReadThroughCache[string, *cachedDescriptor, string](cache, loadDescriptor(&calls), false)
	ctx := context.Background()

	first, err := rtc.GetWithRefresh(ctx, "Book", "Book", time.Minute)
	require.NoError(t, err)
	second, err := rtc.GetWithRefresh(ctx, "Book", "Book", time.Minute)
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Equal(t, 1, calls)

	require.NoError(t, rtc.Invalidate(ctx, "Book"))
	_, err = rtc.Get(ctx, "Book", "Book", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}
